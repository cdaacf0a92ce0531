package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"indexpulse/internal/domain/models"
)

// ErrNoSecurities signals that the security list was missing, unreadable, or
// empty. The batch cannot proceed without it.
var ErrNoSecurities = errors.New("security list is empty")

// securityHeaders enforces strict column ordering for the security-list
// workbook. If the header doesn't match exactly (order + count), the read
// must fail.
var securityHeaders = []string{"name", "ticker", "currency", "exchange"}

// ReadSecurities loads the tracked-security list from the first sheet of a
// workbook inside the store's directory.
//
// Behavior:
//   - Validates the header row strictly (order and count).
//   - Tolerates blank rows (skipped).
//   - Trims whitespace around every cell; the currency code is uppercased.
//   - Returns ErrNoSecurities when the file yields no data rows.
func (s *ArtifactStore) ReadSecurities(filename string) ([]models.Security, error) {
	f, err := excelize.OpenFile(s.Path(filename))
	if err != nil {
		return nil, fmt.Errorf("open security list: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read security list: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoSecurities
	}

	header := rows[0]
	if len(header) < len(securityHeaders) {
		return nil, fmt.Errorf("invalid header length: expected %d, got %d", len(securityHeaders), len(header))
	}
	for i, h := range securityHeaders {
		if !strings.EqualFold(strings.TrimSpace(header[i]), h) {
			return nil, fmt.Errorf("invalid header at col %d: expected %q, got %q", i+1, h, header[i])
		}
	}

	var securities []models.Security
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		sec := models.Security{
			Name:     cell(row, 0),
			Ticker:   cell(row, 1),
			Currency: strings.ToUpper(cell(row, 2)),
			Exchange: cell(row, 3),
		}
		if sec.Ticker == "" {
			continue
		}
		securities = append(securities, sec)
	}
	if len(securities) == 0 {
		return nil, ErrNoSecurities
	}
	return securities, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cell returns the trimmed cell at index i, tolerating short rows
// (excelize trims trailing empty cells).
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
