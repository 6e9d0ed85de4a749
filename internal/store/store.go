// Package store keeps loaded tables so they can be fetched again by id.
//
// MemoryStore holds tables for the life of the process. PostgresStore writes
// them to two tables (see EnsureSchema) and is used whenever a database URL
// is configured.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
)

// ErrNotFound is returned when no table has the requested id.
var ErrNotFound = errors.New("table not found")

// Meta describes a stored table without its rows.
type Meta struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Columns   int       `json:"columns" yaml:"columns"`
	Rows      int       `json:"rows" yaml:"rows"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Store persists tables.
type Store interface {
	// Save stores t under a new id. Either the whole table is stored or nothing is.
	Save(ctx context.Context, name string, t *table.Table) (Meta, error)
	Get(ctx context.Context, id uuid.UUID) (*table.Table, Meta, error)
	// List returns every stored table, oldest first.
	List(ctx context.Context) ([]Meta, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

func newMeta(name string, t *table.Table, now time.Time) Meta {
	return Meta{
		ID:        uuid.New(),
		Name:      name,
		Columns:   t.Width(),
		Rows:      t.Len(),
		CreatedAt: now,
	}
}
