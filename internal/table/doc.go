// Package table loads delimiter-separated text into an in-memory Table.
//
// A Table is the pairing of a header (the first record of the input) with the
// ordered rows that follow it. Every field stays text: nothing is trimmed,
// coerced or reordered. Parsing goes through encoding/csv, so quoted fields may
// contain the delimiter or line breaks.
//
// Loading is a single sequential pass over one reader. Any failure (I/O,
// invalid UTF-8, malformed quoting, or a ragged row in strict mode) aborts the
// load and no partial table is returned.
//
// Field-count consistency is a caller choice:
//
//	t, err := table.Load("data.csv", table.Options{Strict: true})
//
// In the default lenient mode ragged rows are kept as-is and reported by
// Table.Mismatched so callers can flag them.
package table
