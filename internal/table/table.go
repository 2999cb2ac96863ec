// Package table holds the in-memory dataset both jobs work on.
//
// A Table is loaded once from a delimited text file, never mutated, and then
// handed to the profile, export and store packages. Columns keep the order of
// the source header and rows keep the order of the source file.
package table

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind is the inferred type of a column.
type Kind int

const (
	Text Kind = iota
	Int64
	Float64
	Bool
)

func (k Kind) String() string {
	switch k {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	default:
		return "object"
	}
}

// ErrSourceNotFound is returned when the source file does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// ErrNoColumns is returned for an empty source file.
var ErrNoColumns = errors.New("no columns to parse from file")

// ParseError reports malformed delimited text.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Column is a named, typed sequence of cells.
type Column struct {
	Name string
	Kind Kind

	cells []string
	valid []bool
}

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.cells) }

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool { return !c.valid[i] }

// Raw returns cell i exactly as read from the source.
func (c *Column) Raw(i int) string { return c.cells[i] }

// NullCount returns the number of missing cells.
func (c *Column) NullCount() int {
	n := 0
	for _, ok := range c.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Int returns cell i of an Int64 column.
func (c *Column) Int(i int) (int64, bool) {
	if !c.valid[i] || c.Kind != Int64 {
		return 0, false
	}
	v, ok := parseInt(c.cells[i])
	return v, ok
}

// Float returns cell i of a numeric column as float64.
func (c *Column) Float(i int) (float64, bool) {
	if !c.valid[i] || (c.Kind != Float64 && c.Kind != Int64) {
		return 0, false
	}
	return parseFloat(c.cells[i])
}

// Bool returns cell i of a Bool column.
func (c *Column) Bool(i int) (bool, bool) {
	if !c.valid[i] || c.Kind != Bool {
		return false, false
	}
	return parseBool(c.cells[i])
}

// Text returns cell i, or false if it is missing.
func (c *Column) Text(i int) (string, bool) {
	if !c.valid[i] {
		return "", false
	}
	return c.cells[i], true
}

// Floats returns the non-missing values of a numeric column in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.cells))
	for i := range c.cells {
		if v, ok := c.Float(i); ok {
			out = append(out, v)
		}
	}
	return out
}

// Format renders cell i the way the CSV export writes it: missing cells are
// empty, floats use their shortest round-trip form, booleans are True/False.
func (c *Column) Format(i int) string {
	if !c.valid[i] {
		return ""
	}
	switch c.Kind {
	case Int64:
		v, _ := parseInt(c.cells[i])
		return strconv.FormatInt(v, 10)
	case Float64:
		v, _ := parseFloat(c.cells[i])
		return FormatFloat(v)
	case Bool:
		if v, _ := parseBool(c.cells[i]); v {
			return "True"
		}
		return "False"
	default:
		return c.cells[i]
	}
}

// Table is an ordered collection of equally long columns.
type Table struct {
	Columns []*Column

	rows int
}

// NumRows returns the number of records.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Shape formats the table dimensions as "(rows, cols)".
func (t *Table) Shape() string {
	return fmt.Sprintf("(%d, %d)", t.rows, len(t.Columns))
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// FromRecords builds a Table from a header and data rows. Duplicate and
// empty header names are made unique, short rows are padded with missing
// cells and column kinds are inferred. A row longer than the header is an
// error.
func FromRecords(header []string, records [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, ErrNoColumns
	}

	names := uniqueNames(header)
	cols := make([]*Column, len(names))
	for j, name := range names {
		cols[j] = &Column{
			Name:  name,
			cells: make([]string, len(records)),
			valid: make([]bool, len(records)),
		}
	}

	for i, rec := range records {
		if len(rec) > len(names) {
			// header is line 1
			return nil, &ParseError{
				Line: i + 2,
				Err:  fmt.Errorf("expected %d fields, saw %d", len(names), len(rec)),
			}
		}
		for j, col := range cols {
			if j >= len(rec) {
				continue
			}
			col.cells[i] = rec[j]
			col.valid[i] = !IsMissing(rec[j])
		}
	}

	for _, col := range cols {
		col.Kind = inferKind(col.cells, col.valid)
	}

	return &Table{Columns: cols, rows: len(records)}, nil
}

// uniqueNames renames empty headers to "Unnamed: i" and suffixes repeats
// with ".1", ".2", ... so every column can be addressed by name.
func uniqueNames(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}

	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		if n, dup := seen[h]; dup {
			for {
				n++
				name = h + "." + strconv.Itoa(n)
				if !taken[name] {
					break
				}
			}
			seen[h] = n
		} else {
			seen[h] = 0
		}
		taken[name] = true
		names[i] = name
	}
	return names
}
