// Package dataset loads uploaded tables and documents and answers
// questions about their shape.
package dataset

import (
	"fmt"
	"strings"
)

// Table is an immutable in-memory sheet: a header row and string cells.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table from raw rows where rows[0] is the header.
// Short rows are padded with empty cells; extra cells are dropped.
func NewTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("the file has no header row")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		if isBlankRow(r) {
			continue
		}
		row := make([]string, len(header))
		copy(row, r)
		data = append(data, row)
	}

	return &Table{Columns: header, Rows: data}, nil
}

func isBlankRow(r []string) bool {
	for _, cell := range r {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ColumnIndex returns the position of an exact column name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}
