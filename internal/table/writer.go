package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Write encodes t to w: the header line, then every row in order. Fields that
// contain the delimiter, quotes or line breaks are quoted.
func Write(w io.Writer, t *Table, delimiter rune) error {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	if !ValidDelimiter(delimiter) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, delimiter)
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter

	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Save writes t to the file at path, replacing any existing file.
func Save(path string, t *Table, delimiter rune) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	return Write(f, t, delimiter)
}
