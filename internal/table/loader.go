package table

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultDelimiter separates fields when Options.Delimiter is zero.
const DefaultDelimiter = ','

// Options controls how input is parsed.
type Options struct {
	// Delimiter separates fields (default ',').
	Delimiter rune

	// Strict rejects any row whose field count differs from the header.
	// When false such rows are kept and reported by Table.Mismatched.
	Strict bool

	// SanitizeUTF8 replaces invalid UTF-8 bytes with '?' instead of failing.
	SanitizeUTF8 bool
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return DefaultDelimiter
	}
	return o.Delimiter
}

// ValidDelimiter reports whether d can separate fields.
func ValidDelimiter(d rune) bool {
	return d != 0 && d != '"' && d != '\r' && d != '\n' &&
		utf8.ValidRune(d) && d != utf8.RuneError
}

// Load reads the file at path into a Table. The file is opened for the single
// read pass and closed before Load returns, on success or failure.
func Load(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return t, nil
}

// Read parses r into a Table. The first record becomes the header and every
// later line one row, in input order. A blank line after the header becomes a
// row with a single empty field.
func Read(r io.Reader, opts Options) (*Table, error) {
	return ReadContext(context.Background(), r, opts)
}

// ReadContext is Read with cancellation. Parsing stops with ctx.Err() once ctx
// is done, checked on every read of r and every record.
func ReadContext(ctx context.Context, r io.Reader, opts Options) (*Table, error) {
	delim := opts.delimiter()
	if !ValidDelimiter(delim) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, delim)
	}

	lines := &lineCounter{r: newUTF8Reader(skipBOM(&ctxReader{ctx: ctx, r: r}), opts.SanitizeUTF8)}
	cr := csv.NewReader(lines)
	cr.Comma = delim
	cr.FieldsPerRecord = -1 // width is checked here so strict mode can report it

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Header: header}

	// encoding/csv skips empty lines; they are put back as one-field rows by
	// comparing where each record starts with where the previous one ended.
	lastLine := endLine(cr, header)
	addRow := func(row Row, line int) error {
		if opts.Strict && len(row) != len(header) {
			return &FieldCountError{Line: line, Want: len(header), Got: len(row)}
		}
		t.Rows = append(t.Rows, row)
		return nil
	}
	addBlanks := func(upTo int) error {
		for line := lastLine + 1; line < upTo; line++ {
			if err := addRow(Row{""}, line); err != nil {
				return err
			}
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		start, _ := cr.FieldPos(0)
		if err := addBlanks(start); err != nil {
			return nil, err
		}
		if err := addRow(Row(record), start); err != nil {
			return nil, err
		}
		lastLine = endLine(cr, record)
	}

	if err := addBlanks(lines.total() + 1); err != nil {
		return nil, err
	}
	return t, nil
}

// endLine returns the line the record just read by cr ends on. Only a quoted
// last field can span lines, and each line break in it is kept as '\n'.
func endLine(cr *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}

// lineCounter counts the lines passed to the csv reader.
type lineCounter struct {
	r     io.Reader
	n     int64
	lines int
	last  byte
}

func (c *lineCounter) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		c.lines += bytes.Count(p[:n], []byte{'\n'})
		c.last = p[n-1]
	}
	return n, err
}

// total returns the number of lines seen, counting an unterminated last line.
func (c *lineCounter) total() int {
	if c.n > 0 && c.last != '\n' {
		return c.lines + 1
	}
	return c.lines
}

// ctxReader fails reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
