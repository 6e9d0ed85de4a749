// Package render writes tables and their statistics for people or programs:
// an aligned text grid, JSON, YAML, or (for tables) CSV.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/tabload/internal/stats"
	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

// ParseFormat validates a format name. Empty means Text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return Text, nil
	case Text, JSON, YAML, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, yaml or csv)", s)
	}
}

// Table writes t in format f.
func Table(w io.Writer, t *table.Table, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, t)
	case YAML:
		return writeYAML(w, t)
	case CSV:
		return table.Write(w, t, table.DefaultDelimiter)
	default:
		width := t.Width()
		for _, row := range t.Rows {
			width = max(width, len(row))
		}
		rows := make([][]string, len(t.Rows))
		for i, row := range t.Rows {
			rows[i] = pad(row, width)
		}
		return writeGrid(w, pad(t.Header, width), rows)
	}
}

// Summary writes the result of stats.Describe. The text form puts one
// statistic per line and one column per numeric input column.
func Summary(w io.Writer, s stats.Summary, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, s)
	case YAML:
		return writeYAML(w, s)
	case CSV:
		return fmt.Errorf("csv output is only available for tables")
	}

	header := []string{""}
	for _, c := range s.Columns {
		header = append(header, c.Column)
	}
	stat := func(name string, get func(stats.ColumnSummary) string) []string {
		row := []string{name}
		for _, c := range s.Columns {
			row = append(row, get(c))
		}
		return row
	}
	rows := [][]string{
		stat("count", func(c stats.ColumnSummary) string { return strconv.Itoa(c.Count) }),
		stat("mean", func(c stats.ColumnSummary) string { return formatFloat(c.Mean) }),
		stat("std", func(c stats.ColumnSummary) string {
			if c.Std == nil {
				return "NaN"
			}
			return formatFloat(*c.Std)
		}),
		stat("min", func(c stats.ColumnSummary) string { return formatFloat(c.Min) }),
		stat("25%", func(c stats.ColumnSummary) string { return formatFloat(c.Q25) }),
		stat("50%", func(c stats.ColumnSummary) string { return formatFloat(c.Median) }),
		stat("75%", func(c stats.ColumnSummary) string { return formatFloat(c.Q75) }),
		stat("max", func(c stats.ColumnSummary) string { return formatFloat(c.Max) }),
	}
	if err := writeGrid(w, header, rows); err != nil {
		return err
	}
	if len(s.Skipped) > 0 {
		_, err := fmt.Fprintf(w, "non-numeric columns: %s\n", strings.Join(s.Skipped, ", "))
		return err
	}
	return nil
}

// NullCounts writes the missing-value count of every column.
func NullCounts(w io.Writer, counts []stats.ColumnCount, f Format) error {
	switch f {
	case JSON:
		return writeJSON(w, counts)
	case YAML:
		return writeYAML(w, counts)
	case CSV:
		return fmt.Errorf("csv output is only available for tables")
	}

	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Column, strconv.Itoa(c.Missing)}
	}
	return writeGrid(w, []string{"Column", "Missing"}, rows)
}

// Metas writes one line per stored table.
func Metas(w io.Writer, metas []store.Meta, f Format) error {
	switch f {
	case JSON:
		if metas == nil {
			metas = []store.Meta{}
		}
		return writeJSON(w, metas)
	case YAML:
		return writeYAML(w, metas)
	case CSV:
		return fmt.Errorf("csv output is only available for tables")
	}

	rows := make([][]string, len(metas))
	for i, m := range metas {
		rows[i] = []string{
			m.ID.String(),
			m.Name,
			strconv.Itoa(m.Columns),
			strconv.Itoa(m.Rows),
			m.CreatedAt.Format(time.RFC3339),
		}
	}
	return writeGrid(w, []string{"ID", "Name", "Columns", "Rows", "Created"}, rows)
}

func writeGrid(w io.Writer, header []string, rows [][]string) error {
	grid := tablewriter.NewWriter(w)
	grid.Header(header)
	for _, row := range rows {
		if err := grid.Append(row); err != nil {
			return fmt.Errorf("render row: %w", err)
		}
	}
	return grid.Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func pad(fields []string, width int) []string {
	if len(fields) >= width {
		return fields
	}
	out := make([]string, width)
	copy(out, fields)
	return out
}

// formatFloat mirrors the fixed/scientific switch of common dataframe printers.
func formatFloat(v float64) string {
	if v != 0 && (math.Abs(v) >= 1e6 || math.Abs(v) < 1e-4) {
		return strconv.FormatFloat(v, 'e', 6, 64)
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
