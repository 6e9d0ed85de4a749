package table

import "strings"

// Row is one record of the input, one field per column.
type Row []string

// Table is a header plus the rows that followed it, in input order.
//
// Tables are not modified after loading. Head and Tail return views that share
// storage with the receiver.
type Table struct {
	Header []string `json:"header" yaml:"header"`
	Rows   []Row    `json:"rows" yaml:"rows"`
}

// Len returns the number of rows, excluding the header.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of header columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Head returns a view of the first n rows. n larger than Len returns every row;
// negative n returns all rows except the last -n.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = max(len(t.Rows)+n, 0)
	}
	n = min(n, len(t.Rows))
	return &Table{Header: t.Header, Rows: t.Rows[:n:n]}
}

// Tail returns a view of the last n rows. Negative n returns all rows except
// the first -n.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		n = max(len(t.Rows)+n, 0)
	}
	n = min(n, len(t.Rows))
	return &Table{Header: t.Header, Rows: t.Rows[len(t.Rows)-n:]}
}

// ColumnIndex returns the position of the first header equal to name, ignoring
// case, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// Column returns a copy of every value under the named column. Rows too short
// to reach the column contribute an empty string.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, true
}

// Mismatched returns the indices of rows whose field count differs from the
// header. Only lenient loads can produce such rows.
func (t *Table) Mismatched() []int {
	var out []int
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			out = append(out, i)
		}
	}
	return out
}

// Records returns the header followed by every row, the shape encoding/csv works with.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for _, row := range t.Rows {
		out = append(out, row)
	}
	return out
}
