// Package fetcher loads identifier lists from spreadsheet sources.
package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-audit-cli/internal/textutil"
)

// XLSXOptions configures the XLSX parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads an XLSX file and returns all rows as string slices.
func ReadXLSX(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.Rows))
	for _, row := range sheet.Rows {
		rows = append(rows, rowToStrings(row))
	}
	return rows, nil
}

// ReadIdentifiers pulls the identifier column out of a workbook. The
// first row is treated as a header and column names are matched
// case-insensitively. Blank cells are dropped, numeric identifiers lose
// the spreadsheet's trailing ".0", and duplicates keep their first
// position.
func ReadIdentifiers(path, sheet, column string) ([]string, error) {
	rows, err := ReadXLSX(path, XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet)
	}

	col := -1
	for i, name := range rows[0] {
		if strings.EqualFold(textutil.Clean(name), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, eris.Errorf("xlsx: column %q not found in sheet %q", column, sheet)
	}

	seen := make(map[string]struct{})
	var ids []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		id := cleanIdentifier(row[col])
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	zap.L().Info("loaded identifiers",
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Int("count", len(ids)))

	return ids, nil
}

// cleanIdentifier normalizes one raw cell value. Numeric cells come back
// from the parser as floats, so "1234567.0" means "1234567".
func cleanIdentifier(raw string) string {
	id := textutil.Clean(raw)
	if strings.HasSuffix(id, ".0") {
		trimmed := strings.TrimSuffix(id, ".0")
		if trimmed != "" && strings.IndexFunc(trimmed, notDigit) < 0 {
			id = trimmed
		}
	}
	return id
}

func notDigit(r rune) bool { return r < '0' || r > '9' }

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
