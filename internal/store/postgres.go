package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schema creates the two tables PostgresStore uses. Rows reference their
// table and are removed with it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS tabload_tables (
		id         uuid PRIMARY KEY,
		name       text NOT NULL,
		header     text[] NOT NULL,
		row_count  integer NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tabload_rows (
		table_id uuid NOT NULL REFERENCES tabload_tables (id) ON DELETE CASCADE,
		ordinal  integer NOT NULL,
		fields   text[] NOT NULL,
		PRIMARY KEY (table_id, ordinal)
	)`,
}

// PostgresStore is a Store backed by PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore wraps an open pool. Call EnsureSchema once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the store's tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Save writes the table header and then its rows with COPY, in one transaction.
func (s *PostgresStore) Save(ctx context.Context, name string, t *table.Table) (Meta, error) {
	meta := newMeta(name, t, s.now().UTC().Truncate(time.Microsecond))
	id := pgUUID(meta.ID)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Meta{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // no-op after commit

	header := t.Header
	if header == nil {
		header = []string{}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO tabload_tables (id, name, header, row_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, meta.Name, header, meta.Rows, meta.CreatedAt,
	); err != nil {
		return Meta{}, fmt.Errorf("insert table: %w", err)
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"tabload_rows"},
		[]string{"table_id", "ordinal", "fields"},
		pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
			fields := []string(t.Rows[i])
			if fields == nil {
				fields = []string{}
			}
			return []any{id, i, fields}, nil
		}),
	)
	if err != nil {
		return Meta{}, fmt.Errorf("copy rows: %w", err)
	}
	if int(copied) != len(t.Rows) {
		return Meta{}, fmt.Errorf("copy rows: wrote %d of %d", copied, len(t.Rows))
	}

	if err := tx.Commit(ctx); err != nil {
		return Meta{}, fmt.Errorf("commit: %w", err)
	}
	return meta, nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*table.Table, Meta, error) {
	var (
		meta   Meta
		rawID  pgtype.UUID
		header []string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, header, row_count, created_at FROM tabload_tables WHERE id = $1`,
		pgUUID(id),
	).Scan(&rawID, &meta.Name, &header, &meta.Rows, &meta.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, Meta{}, ErrNotFound
	}
	if err != nil {
		return nil, Meta{}, fmt.Errorf("get table: %w", err)
	}
	meta.ID = uuid.UUID(rawID.Bytes)
	meta.Columns = len(header)
	meta.CreatedAt = meta.CreatedAt.UTC()

	rows, err := s.pool.Query(ctx,
		`SELECT fields FROM tabload_rows WHERE table_id = $1 ORDER BY ordinal`,
		pgUUID(id),
	)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("get rows: %w", err)
	}
	fields, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return nil, Meta{}, fmt.Errorf("scan rows: %w", err)
	}

	t := &table.Table{Header: header, Rows: make([]table.Row, len(fields))}
	for i, f := range fields {
		t.Rows[i] = table.Row(f)
	}
	return t, meta, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Meta, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, cardinality(header), row_count, created_at
		   FROM tabload_tables ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var (
			m     Meta
			rawID pgtype.UUID
		)
		if err := rows.Scan(&rawID, &m.Name, &m.Columns, &m.Rows, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		m.ID = uuid.UUID(rawID.Bytes)
		m.CreatedAt = m.CreatedAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tabload_tables WHERE id = $1`, pgUUID(id))
	if err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
