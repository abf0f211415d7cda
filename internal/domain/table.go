package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Kind is the inferred type of a column.
type Kind int

const (
	KindText Kind = iota
	KindNumeric
)

func (k Kind) String() string {
	if k == KindNumeric {
		return "numeric"
	}
	return "text"
}

// missingTokens are the cell spellings read as a missing value.
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
	"#NA":  true,
	"<NA>": true,
}

// IsMissing reports whether a raw cell counts as a missing value.
func IsMissing(cell string) bool {
	return missingTokens[strings.TrimSpace(cell)]
}

// Column is a named, row-aligned sequence of cells.
type Column struct {
	Name string
	Kind Kind
	// Cells holds the raw text of every row.
	Cells []string
	// Values holds the parsed number of every row for numeric columns; missing
	// and infinite cells are NaN.
	Values []float64
}

// Missing reports whether row i of the column is missing.
func (c *Column) Missing(i int) bool {
	if c.Kind == KindNumeric {
		return math.IsNaN(c.Values[i])
	}
	return IsMissing(c.Cells[i])
}

// Numbers returns the non-missing values of a numeric column in row order.
func (c *Column) Numbers() []float64 {
	if c.Kind != KindNumeric {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Table is an in-memory, column-oriented view of one uploaded file.
// It lives for a single render pass.
type Table struct {
	Columns []Column
	rows    int
}

// NewTable builds a table from a header and row-major records, inferring column kinds.
// Short records are padded with missing cells.
func NewTable(header []string, records [][]string) *Table {
	t := &Table{Columns: make([]Column, len(header)), rows: len(records)}
	for j, name := range header {
		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = rec[j]
			}
		}
		t.Columns[j] = newColumn(name, cells)
	}
	return t
}

func newColumn(name string, cells []string) Column {
	values := make([]float64, len(cells))
	numeric := true
	for i, cell := range cells {
		if IsMissing(cell) {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			numeric = false
			break
		}
		// Infinities, spelled out or overflowed, cannot be plotted.
		if math.IsInf(v, 0) {
			values[i] = math.NaN()
			continue
		}
		values[i] = v
	}
	if !numeric {
		return Column{Name: name, Kind: KindText, Cells: cells}
	}
	return Column{Name: name, Kind: KindNumeric, Cells: cells, Values: values}
}

// Len returns the number of data rows.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in file order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Row returns the raw cells of row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j := range t.Columns {
		row[j] = t.Columns[j].Cells[i]
	}
	return row
}

// Head returns the first n rows (all rows when n <= 0 or n exceeds the length).
func (t *Table) Head(n int) [][]string {
	if n <= 0 || n > t.rows {
		n = t.rows
	}
	rows := make([][]string, n)
	for i := range n {
		rows[i] = t.Row(i)
	}
	return rows
}

// Filter returns a new table holding only the rows for which keep returns true, in order.
func (t *Table) Filter(keep func(i int) bool) *Table {
	var records [][]string
	for i := range t.rows {
		if keep(i) {
			records = append(records, t.Row(i))
		}
	}
	return NewTable(t.Names(), records)
}

// FilterFold keeps the rows whose column value equals value case-insensitively.
// A missing column yields a SchemaError.
func (t *Table) FilterFold(column, value string) (*Table, error) {
	col, ok := t.Column(column)
	if !ok {
		return nil, &SchemaError{Missing: []string{column}, Required: []string{column}}
	}
	want := strings.ToLower(strings.TrimSpace(value))
	return t.Filter(func(i int) bool {
		return strings.ToLower(strings.TrimSpace(col.Cells[i])) == want
	}), nil
}
