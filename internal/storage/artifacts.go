package storage

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"indexpulse/internal/domain/models"
)

const dateLayout = "2006-01-02"

// metricHeaders is the exact column order of the per-batch metrics artifact.
var metricHeaders = []string{
	"Account name",
	"Currency",
	"Stock exchange / Instrument code",
	"Ticker",
	"Date",
	"End. share price",
	"1-month",
	"3-month",
	"1-year",
	"YTD",
	"USD/EURO",
	"USD/INR",
	"USD End Price",
	"USD Beg. Price",
}

// averageHeaders is the column order of the averages artifact.
var averageHeaders = []string{"Date", "1-Month", "3-Month", "1-Year", "YTD"}

// ArtifactStore reads and writes the batch's spreadsheet artifacts inside a
// single directory: the security list (input), one metrics workbook per run,
// and the averages workbook.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Path resolves a filename inside the store's directory.
func (s *ArtifactStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

// WriteMetrics writes one metrics artifact: a header row followed by one row
// per (security, date). Nil metric values become empty cells.
func (s *ArtifactStore) WriteMetrics(filename string, rows []models.MetricRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &metricHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		record := []interface{}{
			r.AccountName,
			r.Currency,
			r.Exchange,
			r.Ticker,
			r.Date.Format(dateLayout),
			optCell(r.EndPrice),
			optCell(r.OneMonth),
			optCell(r.ThreeMonth),
			optCell(r.OneYear),
			optCell(r.YTD),
			optCell(r.UsdEuro),
			optCell(r.UsdInr),
			optCell(r.USDEnd),
			optCell(r.USDBeg),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(s.Path(filename)); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// ReadMetrics reads a metrics artifact back, the inverse of WriteMetrics.
// Used by the averages pass and by the API mode.
func (s *ArtifactStore) ReadMetrics(filename string) ([]models.MetricRow, error) {
	f, err := excelize.OpenFile(s.Path(filename))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	raw, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var rows []models.MetricRow
	for n, rec := range raw[1:] {
		if isBlankRow(rec) {
			continue
		}
		date, err := time.Parse(dateLayout, cell(rec, 4))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid date: %w", filename, n+2, err)
		}
		row := models.MetricRow{
			AccountName: cell(rec, 0),
			Currency:    cell(rec, 1),
			Exchange:    cell(rec, 2),
			Ticker:      cell(rec, 3),
			Date:        date,
		}
		optFields := []struct {
			idx int
			dst **float64
		}{
			{5, &row.EndPrice},
			{6, &row.OneMonth},
			{7, &row.ThreeMonth},
			{8, &row.OneYear},
			{9, &row.YTD},
			{10, &row.UsdEuro},
			{11, &row.UsdInr},
			{12, &row.USDEnd},
			{13, &row.USDBeg},
		}
		for _, fld := range optFields {
			v, err := parseOpt(cell(rec, fld.idx))
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", filename, n+2, fld.idx+1, err)
			}
			*fld.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteAverages writes the averages artifact: one row per date with the four
// cross-sectional means.
func (s *ArtifactStore) WriteAverages(filename string, rows []models.AverageRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	if err := f.SetSheetRow(sheet, "A1", &averageHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		record := []interface{}{
			r.Date.Format(dateLayout),
			optCell(r.OneMonth),
			optCell(r.ThreeMonth),
			optCell(r.OneYear),
			optCell(r.YTD),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(s.Path(filename)); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}

// ReadAverages reads an averages artifact back, the inverse of WriteAverages.
func (s *ArtifactStore) ReadAverages(filename string) ([]models.AverageRow, error) {
	f, err := excelize.OpenFile(s.Path(filename))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	raw, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var rows []models.AverageRow
	for n, rec := range raw[1:] {
		if isBlankRow(rec) {
			continue
		}
		date, err := time.Parse(dateLayout, cell(rec, 0))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid date: %w", filename, n+2, err)
		}
		row := models.AverageRow{Date: date}
		for _, fld := range []struct {
			idx int
			dst **float64
		}{
			{1, &row.OneMonth},
			{2, &row.ThreeMonth},
			{3, &row.OneYear},
			{4, &row.YTD},
		} {
			v, err := parseOpt(cell(rec, fld.idx))
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", filename, n+2, fld.idx+1, err)
			}
			*fld.dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// optCell maps a nil value to an empty spreadsheet cell.
func optCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// parseOpt parses an optional numeric cell; empty means nil.
func parseOpt(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return &v, nil
}
