package soc

import (
	"strings"

	"course-api/lib/htmlutil"
)

// Width is the number of columns of a schedule table.
const Width = 10

// column indices of a schedule table row
const (
	colNumber = iota
	colTitle
	colUnits
	colLabel
	colDays
	colBegin
	colEnd
	colRoom
	colLocation
	colInstructor
)

// Row is a tokenized table row. A nil entry marks an empty cell so that it can
// be told apart from a cell that is missing entirely (past the end of the row).
type Row []*string

// Tokenize returns one entry per cell of el, whitespace-only cells become nil.
func Tokenize(el Element) Row {
	row := make(Row, len(el.Cells))
	for i, raw := range el.Cells {
		row[i] = cellValue(raw)
	}
	return row
}

func cellValue(raw string) *string {
	text := htmlutil.CleanText(raw)
	if text == "" {
		return nil
	}
	return &text
}

// Present reports whether the i-th field exists and is non-empty.
func (r Row) Present(i int) bool {
	return i >= 0 && i < len(r) && r[i] != nil
}

// Field returns the i-th field, or "" when it is empty or missing.
func (r Row) Field(i int) string {
	if !r.Present(i) {
		return ""
	}
	return *r[i]
}

// allPresent reports whether every field in [from, to) is present.
func (r Row) allPresent(from, to int) bool {
	for i := from; i < to; i++ {
		if !r.Present(i) {
			return false
		}
	}
	return true
}

// nonePresent reports whether no field from `from` onward is present.
func (r Row) nonePresent(from int) bool {
	for i := from; i < len(r); i++ {
		if r[i] != nil {
			return false
		}
	}
	return true
}

// Pad returns r right-padded with empty fields to at least width fields.
func (r Row) Pad(width int) Row {
	for len(r) < width {
		r = append(r, nil)
	}
	return r
}

func (r Row) set(i int, value *string) {
	if value == nil {
		r[i] = nil
		return
	}
	copied := *value
	r[i] = &copied
}

// Strings renders the row for logging, empty fields as "".
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i := range r {
		out[i] = r.Field(i)
	}
	return out
}

func (r Row) String() string {
	return "[" + strings.Join(r.Strings(), ", ") + "]"
}

// NewRow builds a row out of plain strings, "" becomes an empty field.
func NewRow(fields ...string) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = cellValue(f)
	}
	return row
}
