package workbook

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrUnsupported = errors.New("unsupported workbook format")

// Sheet is a named grid of raw cell text. Rows may be ragged.
type Sheet struct {
	Name string
	Rows [][]string
}

// Cell returns the text at an A1-style coordinate, or "" when out of range.
func (s Sheet) Cell(axis string) string {
	col, row, err := excelize.CellNameToCoordinates(axis)
	if err != nil {
		return ""
	}

	return s.At(row-1, col-1)
}

// At returns the text at zero-based row and column indices.
func (s Sheet) At(row, col int) string {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return ""
	}

	return s.Rows[row][col]
}

type Workbook struct {
	Name   string
	Sheets []Sheet
}

// SheetNames lists sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}

	return names
}

// Load reads a workbook, picking the format from the file extension.
// Spreadsheets are read whole into memory.
func Load(name string, r io.Reader) (*Workbook, error) {
	var (
		sheets []Sheet
		err    error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		sheets, err = readXLSX(r)
	case ".csv", ".txt":
		sheets, err = readCSV(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	if err != nil {
		return nil, err
	}

	return &Workbook{Name: name, Sheets: sheets}, nil
}

func readXLSX(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var sheets []Sheet

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}

		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}

	return sheets, nil
}
