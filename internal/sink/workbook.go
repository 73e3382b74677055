package sink

import (
	"context"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/catalog-audit-cli/internal/model"
	"github.com/sells-group/catalog-audit-cli/internal/textutil"
)

const (
	spacerWidth  = 2.0
	widthPadding = 1.2
	redFont      = "FFFF0000"
)

// Workbook writes classification events into an XLSX sheet, one column
// per category with a blank spacer column between them. The file is
// saved after every append so an interrupted run keeps everything
// recorded so far.
type Workbook struct {
	mu       sync.Mutex
	path     string
	file     *xlsx.File
	sheet    *xlsx.Sheet
	nextRow  map[model.Category]int
	colWidth map[int]float64
	log      *zap.Logger
}

// NewWorkbook opens or creates the workbook at path and prepares the
// category columns on the named sheet. An existing sheet is resumed:
// appends continue below whatever rows are already filled.
func NewWorkbook(path, sheetName string) (*Workbook, error) {
	w := &Workbook{
		path:     path,
		nextRow:  make(map[model.Category]int),
		colWidth: make(map[int]float64),
		log:      zap.L().Named("sink"),
	}

	if _, err := os.Stat(path); err == nil {
		f, err := xlsx.OpenFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "sink: open workbook %s", path)
		}
		w.file = f
	} else {
		w.file = xlsx.NewFile()
	}

	sheet, ok := w.file.Sheet[sheetName]
	if !ok {
		var err error
		sheet, err = w.file.AddSheet(sheetName)
		if err != nil {
			return nil, eris.Wrapf(err, "sink: add sheet %q", sheetName)
		}
	}
	w.sheet = sheet

	w.initColumns()
	if err := w.save(); err != nil {
		return nil, err
	}
	return w, nil
}

// Append records one event at the first free row of its category column.
func (w *Workbook) Append(_ context.Context, ev model.Event) error {
	if !ev.Category.Valid() {
		return eris.Errorf("sink: unknown category %q", ev.Category)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	col := columnOf(ev.Category)
	row := w.nextRow[ev.Category]

	w.sheet.Cell(row, col).SetString(ev.Identifier)
	w.nextRow[ev.Category] = row + 1
	w.fitColumn(col, ev.Identifier)

	return w.save()
}

// Finalize highlights identifiers that landed in more than one of the
// anomaly columns and saves the workbook one last time. The catalog
// membership columns are left out of the duplicate pass since an item
// missing from the catalog trivially appears nowhere else.
func (w *Workbook) Finalize(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cells := make(map[string][]*xlsx.Cell)
	for _, cat := range model.Categories[:5] {
		col := columnOf(cat)
		for row := 1; row < w.nextRow[cat]; row++ {
			cell := w.sheet.Cell(row, col)
			id := textutil.Clean(cell.String())
			if id == "" {
				continue
			}
			cells[id] = append(cells[id], cell)
		}
	}

	highlighted := 0
	for id, cs := range cells {
		if len(cs) < 2 {
			continue
		}
		highlighted++
		w.log.Debug("highlighting repeated identifier", zap.String("identifier", id), zap.Int("columns", len(cs)))
		for _, cell := range cs {
			style := xlsx.NewStyle()
			style.Font.Bold = true
			style.Font.Color = redFont
			style.ApplyFont = true
			cell.SetStyle(style)
		}
	}
	if highlighted > 0 {
		w.log.Info("highlighted repeated identifiers", zap.Int("count", highlighted))
	}

	return w.save()
}

// initColumns writes the bold header row, sets the spacer widths and
// finds the first free row of each category column.
func (w *Workbook) initColumns() {
	header := xlsx.NewStyle()
	header.Font.Bold = true
	header.ApplyFont = true

	for _, cat := range model.Categories {
		col := columnOf(cat)

		cell := w.sheet.Cell(0, col)
		cell.SetString(cat.Header())
		cell.SetStyle(header)
		w.fitColumn(col, cat.Header())

		if col+1 < len(model.Categories)*2 {
			w.sheet.SetColWidth(col+1, col+1, spacerWidth)
		}

		row := 1
		for row < len(w.sheet.Rows) {
			cells := w.sheet.Rows[row].Cells
			if col >= len(cells) || textutil.Clean(cells[col].String()) == "" {
				break
			}
			w.fitColumn(col, cells[col].String())
			row++
		}
		w.nextRow[cat] = row
	}
}

// fitColumn widens a column to the longest value written to it.
func (w *Workbook) fitColumn(col int, value string) {
	width := float64(len(value)) * widthPadding
	if width <= w.colWidth[col] {
		return
	}
	w.colWidth[col] = width
	w.sheet.SetColWidth(col, col, width)
}

func (w *Workbook) save() error {
	if err := w.file.Save(w.path); err != nil {
		return eris.Wrapf(err, "sink: save workbook %s", w.path)
	}
	return nil
}

// columnOf maps a category to its sheet column, skipping a spacer
// column between categories.
func columnOf(cat model.Category) int {
	for i, c := range model.Categories {
		if c == cat {
			return i * 2
		}
	}
	return 0
}
