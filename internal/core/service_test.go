package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(opts Options) *Service {
	return NewService(store.NewMemoryStore(), opts)
}

func TestService_ImportAndGet(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	meta, err := svc.Import(ctx, "people.csv", strings.NewReader("name,age\nann,31\nbob,27\n"))
	require.NoError(t, err)
	assert.Equal(t, "people.csv", meta.Name)
	assert.Equal(t, 2, meta.Rows)
	assert.Equal(t, 2, meta.Columns)

	got, gotMeta, err := svc.Table(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta, gotMeta)
	assert.Equal(t, []string{"name", "age"}, got.Header)
	assert.Equal(t, []table.Row{{"ann", "31"}, {"bob", "27"}}, got.Rows)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestService_ImportRequiresName(t *testing.T) {
	svc := newTestService(Options{})
	_, err := svc.Import(context.Background(), "  ", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestService_ImportUsesLoaderOptions(t *testing.T) {
	svc := newTestService(Options{Loader: table.Options{Delimiter: ';', Strict: true}})
	ctx := context.Background()

	meta, err := svc.Import(ctx, "semi", strings.NewReader("a;b\n1;2\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Columns)

	_, err = svc.Import(ctx, "ragged", strings.NewReader("a;b\n1\n"))
	var fce *table.FieldCountError
	require.ErrorAs(t, err, &fce)
	assert.Equal(t, 2, fce.Line)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "failed import must not be stored")
}

func TestService_ImportLenientKeepsRaggedRows(t *testing.T) {
	svc := newTestService(Options{})
	meta, err := svc.Import(context.Background(), "ragged", strings.NewReader("a,b,c\n1,2\n4,5,6\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, meta.Rows)
}

func TestService_ImportBusy(t *testing.T) {
	svc := newTestService(Options{MaxConcurrent: 1, MaxWait: 20 * time.Millisecond})
	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.Import(context.Background(), "x", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrTooManyImports)
}

// slowReader hands out one byte per read after a delay.
type slowReader struct {
	data  string
	delay time.Duration
}

func (s *slowReader) Read(p []byte) (int, error) {
	time.Sleep(s.delay)
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:1], s.data)
	s.data = s.data[n:]
	return n, nil
}

func TestService_ImportTimeoutBoundsParsing(t *testing.T) {
	svc := newTestService(Options{Timeout: 20 * time.Millisecond})
	input := "a,b\n" + strings.Repeat("1,2\n", 50)

	start := time.Now()
	_, err := svc.Import(context.Background(), "slow", &slowReader{data: input, delay: 10 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 300*time.Millisecond)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, svc.LimiterStatus().Active)
}

func TestService_DescribeNullsExport(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	meta, err := svc.Import(ctx, "m", strings.NewReader("x,label\n1,a\n3,\nNA,c\n"))
	require.NoError(t, err)

	summary, err := svc.Describe(ctx, meta.ID)
	require.NoError(t, err)
	require.Len(t, summary.Columns, 1)
	assert.Equal(t, "x", summary.Columns[0].Column)
	assert.Equal(t, 2, summary.Columns[0].Count)
	assert.Equal(t, []string{"label"}, summary.Skipped)

	nulls, err := svc.Nulls(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, nulls[0].Missing)
	assert.Equal(t, 1, nulls[1].Missing)

	var buf bytes.Buffer
	_, err = svc.Export(ctx, meta.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, "x,label\n1,a\n3,\nNA,c\n", buf.String())
}

func TestService_Delete(t *testing.T) {
	svc := newTestService(Options{})
	ctx := context.Background()

	meta, err := svc.Import(ctx, "gone", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, meta.ID))

	_, _, err = svc.Table(ctx, meta.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, meta.ID), store.ErrNotFound)
	_, err = svc.Describe(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestService_WaitForImports(t *testing.T) {
	svc := newTestService(Options{})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, svc.WaitForImports(ctx))
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = ParseID("nope")
	assert.True(t, errors.Is(err, ErrInvalidID))
}
