package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/tabload/internal/logging"
	"github.com/JonMunkholm/tabload/internal/stats"
	"github.com/JonMunkholm/tabload/internal/store"
	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
)

// DefaultImportTimeout bounds a single import when Options.Timeout is unset.
const DefaultImportTimeout = 10 * time.Minute

// Options configures a Service.
type Options struct {
	Loader        table.Options
	MaxConcurrent int
	MaxWait       time.Duration
	Timeout       time.Duration
}

// Service is the entry point shared by the HTTP handlers and the CLI.
type Service struct {
	store   store.Store
	loader  table.Options
	limiter *ImportLimiter
	timeout time.Duration
}

// NewService creates a Service saving into st.
func NewService(st store.Store, opts Options) *Service {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:   st,
		loader:  opts.Loader,
		limiter: NewImportLimiter(opts.MaxConcurrent, opts.MaxWait),
		timeout: timeout,
	}
}

// LoaderOptions returns the parse options imports use.
func (s *Service) LoaderOptions() table.Options {
	return s.loader
}

// Import parses r and stores the result under name.
func (s *Service) Import(ctx context.Context, name string, r io.Reader) (store.Meta, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Meta{}, ErrNameRequired
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return store.Meta{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logging.WithFields(ctx, "name", name)
	start := time.Now()

	t, err := table.ReadContext(ctx, r, s.loader)
	if err != nil {
		return store.Meta{}, fmt.Errorf("import %s: %w", name, err)
	}
	if bad := t.Mismatched(); len(bad) > 0 {
		log.Warn("rows with unexpected field count",
			"count", len(bad),
			"first_row", bad[0],
			"columns", t.Width(),
		)
	}

	meta, err := s.store.Save(ctx, name, t)
	if err != nil {
		return store.Meta{}, fmt.Errorf("save %s: %w", name, err)
	}

	log.Info("table imported",
		"table_id", meta.ID,
		"rows", meta.Rows,
		"columns", meta.Columns,
		"duration", time.Since(start),
	)
	return meta, nil
}

// Table returns a stored table and its metadata.
func (s *Service) Table(ctx context.Context, id uuid.UUID) (*table.Table, store.Meta, error) {
	return s.store.Get(ctx, id)
}

// List returns all stored tables, oldest first.
func (s *Service) List(ctx context.Context) ([]store.Meta, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("table deleted", "table_id", id)
	return nil
}

// Describe summarizes the numeric columns of a stored table.
func (s *Service) Describe(ctx context.Context, id uuid.UUID) (stats.Summary, error) {
	t, _, err := s.store.Get(ctx, id)
	if err != nil {
		return stats.Summary{}, err
	}
	return stats.Describe(t), nil
}

// Nulls counts missing values per column of a stored table.
func (s *Service) Nulls(ctx context.Context, id uuid.UUID) ([]stats.ColumnCount, error) {
	t, _, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return stats.NullCounts(t), nil
}

// Export writes a stored table to w using the import delimiter.
func (s *Service) Export(ctx context.Context, id uuid.UUID, w io.Writer) (store.Meta, error) {
	t, meta, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Meta{}, err
	}
	delim := s.loader.Delimiter
	if delim == 0 {
		delim = table.DefaultDelimiter
	}
	if err := table.Write(w, t, delim); err != nil {
		return meta, fmt.Errorf("export %s: %w", id, err)
	}
	return meta, nil
}

// LimiterStatus reports import slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForImports blocks until in-flight imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ParseID parses a table id, returning ErrInvalidID on failure.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
