package models

// Security is one row of the tracked-security list.
// The list is static configuration read once at batch start.
//
// Fields:
//   - Name: account/display name (e.g., "Acme Corp").
//   - Ticker: provider identifier used to fetch price history.
//   - Currency: native currency code the raw price is quoted in (e.g., "USD", "INR", "EUR").
//   - Exchange: stock exchange / instrument code, carried through to the output.
type Security struct {
	Name     string
	Ticker   string
	Currency string
	Exchange string
}
