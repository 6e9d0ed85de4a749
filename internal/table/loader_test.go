package table

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_WellFormed(t *testing.T) {
	path := writeFile(t, "a,b,c\n1,2,3\n4,5,6\n")

	tbl, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Equal(t, []Row{{"1", "2", "3"}, {"4", "5", "6"}}, tbl.Rows)
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeFile(t, "a,b,c\n")

	tbl, err := Load(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, tbl.Header)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, 0, tbl.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	tbl, err := Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})

	require.Error(t, err)
	assert.Nil(t, tbl)
	assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
}

func TestLoad_TrailingNewlineNotInLastField(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"LF", "a,b\n1,2\n"},
		{"CRLF", "a,b\r\n1,2\r\n"},
		{"no final newline", "a,b\n1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.input), Options{})
			require.NoError(t, err)
			require.Len(t, tbl.Rows, 1)
			assert.Equal(t, "b", tbl.Header[1])
			assert.Equal(t, "2", tbl.Rows[0][1])
		})
	}
}

func TestRead_ShortRowLenient(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b,c\n1,2\n4,5,6\n"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []Row{{"1", "2"}, {"4", "5", "6"}}, tbl.Rows)
	assert.Equal(t, []int{0}, tbl.Mismatched())
}

func TestRead_ShortRowStrict(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b,c\n1,2,3\n4,5\n"), Options{Strict: true})

	require.Error(t, err)
	assert.Nil(t, tbl)
	assert.ErrorIs(t, err, ErrFieldCount)

	var fcErr *FieldCountError
	require.ErrorAs(t, err, &fcErr)
	assert.Equal(t, 3, fcErr.Line)
	assert.Equal(t, 3, fcErr.Want)
	assert.Equal(t, 2, fcErr.Got)
}

func TestRead_NoTrimOrCoercion(t *testing.T) {
	tbl, err := Read(strings.NewReader("name, value\n  x , 007\n"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", " value"}, tbl.Header)
	assert.Equal(t, Row{"  x ", " 007"}, tbl.Rows[0])
}

func TestRead_QuotedFields(t *testing.T) {
	input := "id,comment\n1,\"hello, world\"\n2,\"two\nlines\"\n3,\"say \"\"hi\"\"\"\n"

	tbl, err := Read(strings.NewReader(input), Options{Strict: true})
	require.NoError(t, err)

	assert.Equal(t, []Row{
		{"1", "hello, world"},
		{"2", "two\nlines"},
		{"3", `say "hi"`},
	}, tbl.Rows)
}

func TestRead_CustomDelimiter(t *testing.T) {
	tbl, err := Read(strings.NewReader("a;b\n1,5;2\n"), Options{Delimiter: ';'})
	require.NoError(t, err)

	assert.Equal(t, Row{"1,5", "2"}, tbl.Rows[0])
}

func TestRead_InvalidDelimiter(t *testing.T) {
	for _, d := range []rune{'"', '\n', '\r', 0xFFFD} {
		_, err := Read(strings.NewReader("a,b\n"), Options{Delimiter: d})
		assert.ErrorIs(t, err, ErrInvalidDelimiter, "delimiter %q", d)
	}
}

func TestRead_Empty(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"blank lines", "\n\n\r\n"},
		{"only BOM", "\xEF\xBB\xBF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.input), Options{})
			assert.Nil(t, tbl)
			assert.ErrorIs(t, err, ErrNoHeader)
		})
	}
}

func TestRead_SkipsBOM(t *testing.T) {
	tbl, err := Read(strings.NewReader("\xEF\xBB\xBFid,name\n1,x\n"), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, tbl.Header)
}

func TestRead_InvalidUTF8(t *testing.T) {
	input := "a,b\n1,h\x80llo\n"

	tbl, err := Read(strings.NewReader(input), Options{})
	assert.Nil(t, tbl)
	require.ErrorIs(t, err, ErrInvalidEncoding)

	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, int64(strings.Index(input, "\x80")), decErr.Offset)
}

func TestRead_InvalidUTF8InHeader(t *testing.T) {
	_, err := Read(strings.NewReader("\xFFa,b\n1,2\n"), Options{})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestRead_TruncatedSequenceAtEOF(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1,\xE2\x82"), Options{})
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestRead_SanitizeUTF8(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b\n1,h\x80llo\n"), Options{SanitizeUTF8: true})
	require.NoError(t, err)

	assert.Equal(t, "h?llo", tbl.Rows[0][1])
}

func TestRead_MultibyteAcrossReads(t *testing.T) {
	input := "city,note\nZürich,€5\n"

	tbl, err := Read(iotest.OneByteReader(strings.NewReader(input)), Options{})
	require.NoError(t, err)

	assert.Equal(t, Row{"Zürich", "€5"}, tbl.Rows[0])
}

func TestRead_ReaderError(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := Read(iotest.ErrReader(boom), Options{})
	assert.ErrorIs(t, err, boom)
}

func TestLoad_PreservesOrder(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	for i := 0; i < 500; i++ {
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString("|")
		b.WriteString(string(rune('a' + i%26)))
		b.WriteString("\n")
	}
	path := writeFile(t, b.String())

	tbl, err := Load(path, Options{})
	require.NoError(t, err)
	require.Equal(t, 500, tbl.Len())
	for i, row := range tbl.Rows {
		want := strings.Repeat("x", i%7) + "|" + string(rune('a'+i%26))
		require.Equal(t, want, row[0], "row %d", i)
	}
}

func TestRead_BlankLinesKeptAsRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{"between rows", "a,b\n1,2\n\n3,4\n", []Row{{"1", "2"}, {""}, {"3", "4"}}},
		{"CRLF", "a,b\r\n1,2\r\n\r\n3,4\r\n", []Row{{"1", "2"}, {""}, {"3", "4"}}},
		{"after header", "a,b\n\n\n1,2\n", []Row{{""}, {""}, {"1", "2"}}},
		{"trailing", "a,b\n1,2\n\n", []Row{{"1", "2"}, {""}}},
		{"header only then blank", "a,b\n\n", []Row{{""}}},
		{"after multi-line field", "a,b\n\"x\ny\",2\n\n3,4\n", []Row{{"x\ny", "2"}, {""}, {"3", "4"}}},
		{"leading blanks before header", "\n\na,b\n1,2\n", []Row{{"1", "2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := Read(strings.NewReader(tt.input), Options{})
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, tbl.Header)
			assert.Equal(t, tt.want, tbl.Rows)
		})
	}
}

func TestRead_BlankLineReportedAsMismatched(t *testing.T) {
	tbl, err := Read(strings.NewReader("a,b\n1,2\n\n3,4\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, tbl.Mismatched())

	_, err = Read(strings.NewReader("a,b\n1,2\n\n3,4\n"), Options{Strict: true})
	var fce *FieldCountError
	require.ErrorAs(t, err, &fce)
	assert.Equal(t, 3, fce.Line)
	assert.Equal(t, 1, fce.Got)

	single, err := Read(strings.NewReader("a\n1\n\n2\n"), Options{Strict: true})
	require.NoError(t, err)
	assert.Equal(t, []Row{{"1"}, {""}, {"2"}}, single.Rows)
}

type slowReader struct {
	r     io.Reader
	delay time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	return s.r.Read(p)
}

func TestReadContext_StopsWhenDone(t *testing.T) {
	var b strings.Builder
	b.WriteString("a,b\n")
	for i := 0; i < 50; i++ {
		b.WriteString("1,2\n")
	}
	slow := &slowReader{r: strings.NewReader(b.String()), delay: 10 * time.Millisecond}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	tbl, err := ReadContext(ctx, iotest.OneByteReader(slow), Options{})
	assert.Nil(t, tbl)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}

func TestReadContext_AlreadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadContext(ctx, strings.NewReader("a,b\n1,2\n"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
