package stats

import "github.com/JonMunkholm/tabload/internal/table"

// ColumnCount is the number of missing fields in one column.
type ColumnCount struct {
	Column  string `json:"column" yaml:"column"`
	Missing int    `json:"missing" yaml:"missing"`
}

// NullCounts returns the missing-field count of every column, in header order.
// A row too short to reach a column counts as missing there.
func NullCounts(t *table.Table) []ColumnCount {
	out := make([]ColumnCount, len(t.Header))
	for i, h := range t.Header {
		out[i].Column = h
	}
	for _, row := range t.Rows {
		for i := range t.Header {
			if i >= len(row) || IsMissing(row[i]) {
				out[i].Missing++
			}
		}
	}
	return out
}

// TotalMissing sums the per-column counts.
func TotalMissing(counts []ColumnCount) int {
	total := 0
	for _, c := range counts {
		total += c.Missing
	}
	return total
}
