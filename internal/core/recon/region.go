package recon

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// CellRegion exposes the minimum a sheet must provide for extraction: text,
// a bold flag and a numeric reading per 1-based (row, column) address. It
// exists so the engine can run against in-memory fixtures without a real
// workbook.
type CellRegion interface {
	// Name identifies the sheet for error reporting.
	Name() string
	// Text returns the trimmed cell text, "" for empty or out-of-range cells.
	Text(row, col int) string
	// IsBold reports whether the cell is rendered bold.
	IsBold(row, col int) bool
	// Number returns the cell's numeric value; false when the cell is empty
	// or not numeric.
	Number(row, col int) (float64, bool)
	// LastRow returns the last row with a non-empty cell in the column, 0
	// when the column is entirely empty.
	LastRow(col int) int
}

// MemoryCell is one cell of a MemoryRegion.
type MemoryCell struct {
	Text string
	Bold bool
}

// MemoryRegion is a CellRegion over in-memory cells, used by tests and as
// the backing store for .xls sheets (whose reader exposes no font data).
type MemoryRegion struct {
	name string
	rows [][]MemoryCell
}

// NewMemoryRegion builds a region from 1-based addressable rows; rows[0]
// maps to sheet row 1.
func NewMemoryRegion(name string, rows [][]MemoryCell) *MemoryRegion {
	return &MemoryRegion{name: name, rows: rows}
}

func (m *MemoryRegion) Name() string { return m.name }

func (m *MemoryRegion) cell(row, col int) (MemoryCell, bool) {
	if row < 1 || row > len(m.rows) {
		return MemoryCell{}, false
	}
	r := m.rows[row-1]
	if col < 1 || col > len(r) {
		return MemoryCell{}, false
	}
	return r[col-1], true
}

func (m *MemoryRegion) Text(row, col int) string {
	c, ok := m.cell(row, col)
	if !ok {
		return ""
	}
	return strings.TrimSpace(c.Text)
}

func (m *MemoryRegion) IsBold(row, col int) bool {
	c, ok := m.cell(row, col)
	return ok && c.Bold
}

func (m *MemoryRegion) Number(row, col int) (float64, bool) {
	return parseAmount(m.Text(row, col))
}

func (m *MemoryRegion) LastRow(col int) int {
	last := 0
	for i := range m.rows {
		if m.Text(i+1, col) != "" {
			last = i + 1
		}
	}
	return last
}

// SheetRegion is a CellRegion over one sheet of an open .xlsx workbook.
// Cell text is cached at construction; bold flags are read live from the
// workbook's style table.
type SheetRegion struct {
	f     *excelize.File
	sheet string
	rows  [][]string
}

// NewSheetRegion caches the sheet's cell text. The sheet must exist.
func NewSheetRegion(f *excelize.File, sheet string) (*SheetRegion, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return &SheetRegion{f: f, sheet: sheet, rows: rows}, nil
}

func (s *SheetRegion) Name() string { return s.sheet }

func (s *SheetRegion) Text(row, col int) string {
	if row < 1 || row > len(s.rows) {
		return ""
	}
	r := s.rows[row-1]
	if col < 1 || col > len(r) {
		return ""
	}
	return strings.TrimSpace(r[col-1])
}

func (s *SheetRegion) IsBold(row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	styleID, err := s.f.GetCellStyle(s.sheet, cell)
	if err != nil {
		return false
	}
	style, err := s.f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	return style.Font != nil && style.Font.Bold
}

func (s *SheetRegion) Number(row, col int) (float64, bool) {
	return parseAmount(s.Text(row, col))
}

func (s *SheetRegion) LastRow(col int) int {
	last := 0
	for i := range s.rows {
		if s.Text(i+1, col) != "" {
			last = i + 1
		}
	}
	return last
}

// openRegion loads one sheet of a workbook as a CellRegion, trying .xlsx
// first and falling back to .xls, mirroring how mixed-format exports arrive
// in practice. Legacy .xls sheets carry no font information, so their bold
// flags read false and the bold filtering rule only bites for .xlsx.
func openRegion(data []byte, sheet string) (CellRegion, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err == nil {
		if !sheetExists(f, sheet) {
			return nil, fmt.Errorf("sheet %q not found in workbook", sheet)
		}
		return NewSheetRegion(f, sheet)
	}

	workbook, xerr := xls.OpenReader(bytes.NewReader(data))
	if xerr != nil {
		return nil, fmt.Errorf("unsupported workbook file format")
	}
	for i := range workbook.GetSheets() {
		sh, serr := workbook.GetSheet(i)
		if serr != nil {
			continue
		}
		if strings.TrimSpace(sh.GetName()) != sheet {
			continue
		}
		var rows [][]MemoryCell
		for _, row := range sh.GetRows() {
			var cells []MemoryCell
			for _, cell := range row.GetCols() {
				cells = append(cells, MemoryCell{Text: cell.GetString()})
			}
			rows = append(rows, cells)
		}
		return NewMemoryRegion(sheet, rows), nil
	}
	return nil, fmt.Errorf("sheet %q not found in workbook", sheet)
}

func sheetExists(f *excelize.File, sheet string) bool {
	for _, name := range f.GetSheetList() {
		if name == sheet {
			return true
		}
	}
	return false
}

// readAll buffers an uploaded workbook so it can be opened more than once.
func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return data, nil
}
