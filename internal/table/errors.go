package table

import (
	"errors"
	"fmt"
)

var (
	// ErrNoHeader is returned when the input holds no records at all.
	ErrNoHeader = errors.New("empty file: no header line")

	// ErrInvalidEncoding is matched by every DecodeError.
	ErrInvalidEncoding = errors.New("encoding error: input is not valid UTF-8")

	// ErrFieldCount is matched by every FieldCountError.
	ErrFieldCount = errors.New("field count does not match header")

	// ErrInvalidDelimiter is returned for delimiters encoding/csv cannot use.
	ErrInvalidDelimiter = errors.New("invalid delimiter")
)

// DecodeError reports the first byte that is not part of a valid UTF-8 sequence.
type DecodeError struct {
	// Offset counts bytes from the start of the input, after any BOM.
	Offset int64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s (byte offset %d)", ErrInvalidEncoding, e.Offset)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidEncoding
}

// FieldCountError reports a row whose width differs from the header in strict mode.
type FieldCountError struct {
	Line int // 1-based line in the input where the record starts
	Want int
	Got  int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("line %d: %s: want %d fields, got %d", e.Line, ErrFieldCount, e.Want, e.Got)
}

func (e *FieldCountError) Is(target error) bool {
	return target == ErrFieldCount
}
