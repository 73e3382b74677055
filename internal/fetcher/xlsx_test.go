package fetcher

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]string) string {
	t.Helper()

	f := xlsx.NewFile()
	sh, err := f.AddSheet(sheet)
	require.NoError(t, err)

	for _, cells := range rows {
		row := sh.AddRow()
		for _, c := range cells {
			row.AddCell().SetString(c)
		}
	}

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadIdentifiers(t *testing.T) {
	path := writeWorkbook(t, "Order", [][]string{
		{"SKU", "PARTNUMBER", "QTY"},
		{"a", "1234567", "1"},
		{"b", "  2000123  ", "2"},
		{"c", "", "3"},
		{"d", "1234567", "4"}, // duplicate
		{"e", "7654321.0", "5"},
		{"f", "AB-99", "6"},
	})

	ids, err := ReadIdentifiers(path, "Order", "partnumber")
	require.NoError(t, err)

	assert.Equal(t, []string{"1234567", "2000123", "7654321", "AB-99"}, ids)
}

func TestReadIdentifiers_ColumnMissing(t *testing.T) {
	path := writeWorkbook(t, "Order", [][]string{
		{"SKU", "QTY"},
		{"a", "1"},
	})

	_, err := ReadIdentifiers(path, "Order", "PARTNUMBER")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PARTNUMBER")
}

func TestReadIdentifiers_SheetMissing(t *testing.T) {
	path := writeWorkbook(t, "Order", [][]string{{"PARTNUMBER"}})

	_, err := ReadIdentifiers(path, "Nope", "PARTNUMBER")
	assert.Error(t, err)
}

func TestReadIdentifiers_ShortRows(t *testing.T) {
	path := writeWorkbook(t, "Order", [][]string{
		{"SKU", "PARTNUMBER"},
		{"only-sku"},
		{"b", "42"},
	})

	ids, err := ReadIdentifiers(path, "Order", "PARTNUMBER")
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, ids)
}

func TestCleanIdentifier(t *testing.T) {
	cases := map[string]string{
		"1234567.0": "1234567",
		"1234567":   "1234567",
		"AB-12.0":   "AB-12.0", // not purely numeric, keep as-is
		"  77  ":    "77",
		"":          "",
		" ":    "",
		".0":        ".0",
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanIdentifier(in), "%q", in)
	}
}
