package stats

import (
	"math"
	"slices"

	"github.com/JonMunkholm/tabload/internal/table"
)

// ColumnSummary holds the descriptive statistics of one numeric column.
type ColumnSummary struct {
	Column string   `json:"column" yaml:"column"`
	Count  int      `json:"count" yaml:"count"`
	Mean   float64  `json:"mean" yaml:"mean"`
	Std    *float64 `json:"std" yaml:"std"` // nil when Count is 1
	Min    float64  `json:"min" yaml:"min"`
	Q25    float64  `json:"25%" yaml:"25%"`
	Median float64  `json:"50%" yaml:"50%"`
	Q75    float64  `json:"75%" yaml:"75%"`
	Max    float64  `json:"max" yaml:"max"`
}

// Summary is the result of Describe.
type Summary struct {
	Columns []ColumnSummary `json:"columns" yaml:"columns"`

	// Skipped lists columns holding at least one non-numeric value, or no values.
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles and
// max for every column whose non-missing values all parse as numbers. Missing
// values are left out of every statistic.
func Describe(t *table.Table) Summary {
	var s Summary
	for i, h := range t.Header {
		values, ok := numericColumn(t, i)
		if !ok {
			s.Skipped = append(s.Skipped, h)
			continue
		}
		s.Columns = append(s.Columns, summarize(h, values))
	}
	return s
}

func numericColumn(t *table.Table, idx int) ([]float64, bool) {
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx >= len(row) || IsMissing(row[idx]) {
			continue
		}
		v, ok := ParseNumber(row[idx])
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, len(values) > 0
}

func summarize(name string, values []float64) ColumnSummary {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := float64(len(sorted))
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / n

	// sample standard deviation (n-1)
	var std *float64
	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - mean) * (v - mean)
		}
		sd := math.Sqrt(sq / (n - 1))
		std = &sd
	}

	return ColumnSummary{
		Column: name,
		Count:  len(sorted),
		Mean:   mean,
		Std:    std,
		Min:    sorted[0],
		Q25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between the two closest ranks of sorted.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
