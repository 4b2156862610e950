package bulkimport

import (
	"bytes"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Job-abort errors: the only failures that stop a job before row processing.
var (
	ErrMalformedFile = errors.New("file cannot be read as a spreadsheet")
	ErrEmptyFile     = errors.New("spreadsheet contains no data rows")
)

type (
	// Cell is one spreadsheet cell. Present distinguishes a column that exists
	// in the file from one that does not, so an empty string is never
	// conflated with a missing column.
	Cell struct {
		Value   string
		Present bool
	}

	// RawRow is one data row keyed by lower-cased, trimmed header. Number is
	// the 1-based position in the sheet; data rows start at 2.
	RawRow struct {
		Number int
		cells  map[string]Cell
	}
)

func (r RawRow) Cell(header string) Cell {
	return r.cells[header]
}

// Value returns the trimmed cell value for the given header, or "".
func (r RawRow) Value(header string) string {
	return strings.TrimSpace(r.cells[header].Value)
}

// Has reports whether the row carries a non-empty value for the given header.
func (r RawRow) Has(header string) bool {
	c := r.cells[header]
	return c.Present && strings.TrimSpace(c.Value) != ""
}

// ReadWorkbook decodes an uploaded spreadsheet buffer into ordered raw rows.
// Only the first sheet is read; its first row is the header row. Headers are
// lower-cased and trimmed so downstream field matching tolerates the
// inconsistent casing and spacing of hand-edited files.
func ReadWorkbook(buf []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(buf))
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFile, err.Error())
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFile, err.Error())
	}
	if len(rows) < 2 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	raws := make([]RawRow, 0, len(rows)-1)
	for i, row := range rows[1:] {
		raw := RawRow{Number: i + 2, cells: make(map[string]Cell, len(headers))}
		for j, header := range headers {
			if header == "" {
				continue
			}
			cell := Cell{Present: true}
			if j < len(row) {
				cell.Value = row[j]
			}
			raw.cells[header] = cell
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
