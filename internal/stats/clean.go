package stats

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabload/internal/table"
)

// How selects which rows DropMissing removes.
type How int

const (
	// Any drops a row holding at least one missing field.
	Any How = iota
	// All drops a row only when every field is missing.
	All
)

// ParseHow converts "any" or "all" to a How.
func ParseHow(s string) (How, error) {
	switch strings.ToLower(s) {
	case "any":
		return Any, nil
	case "all":
		return All, nil
	default:
		return Any, fmt.Errorf("unknown drop mode %q (want any or all)", s)
	}
}

// DropMissing returns a table without the rows selected by how. Rows shorter
// than the header have missing trailing fields.
func DropMissing(t *table.Table, how How) *table.Table {
	out := &table.Table{Header: t.Header}
	for _, row := range t.Rows {
		missing := 0
		for i := range t.Header {
			if i >= len(row) || IsMissing(row[i]) {
				missing++
			}
		}
		drop := missing > 0
		if how == All {
			drop = missing == len(t.Header)
		}
		if !drop {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// FillMissing returns a copy of t with every missing field replaced by value.
// Short rows are padded to the header width.
func FillMissing(t *table.Table, value string) *table.Table {
	out := copyPadded(t)
	for _, row := range out.Rows {
		for i := range row {
			if IsMissing(row[i]) {
				row[i] = value
			}
		}
	}
	return out
}

// ForwardFill returns a copy of t where each missing field takes the last
// present value above it in the same column. Leading gaps stay missing.
func ForwardFill(t *table.Table) *table.Table {
	out := copyPadded(t)
	for col := range out.Header {
		last, seen := "", false
		for _, row := range out.Rows {
			if IsMissing(row[col]) {
				if seen {
					row[col] = last
				}
				continue
			}
			last, seen = row[col], true
		}
	}
	return out
}

// BackwardFill returns a copy of t where each missing field takes the next
// present value below it in the same column. Trailing gaps stay missing.
func BackwardFill(t *table.Table) *table.Table {
	out := copyPadded(t)
	for col := range out.Header {
		next, seen := "", false
		for i := len(out.Rows) - 1; i >= 0; i-- {
			row := out.Rows[i]
			if IsMissing(row[col]) {
				if seen {
					row[col] = next
				}
				continue
			}
			next, seen = row[col], true
		}
	}
	return out
}

// copyPadded deep-copies the rows of t, padding short rows with empty fields.
// Fields past the header width are kept.
func copyPadded(t *table.Table) *table.Table {
	out := &table.Table{
		Header: t.Header,
		Rows:   make([]table.Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c := make(table.Row, max(len(row), len(t.Header)))
		copy(c, row)
		out.Rows[i] = c
	}
	return out
}
