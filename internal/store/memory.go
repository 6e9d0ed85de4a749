package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
)

// MemoryStore is a Store backed by a map. Safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[uuid.UUID]memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	meta  Meta
	table *table.Table
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[uuid.UUID]memoryEntry),
		now:    time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, name string, t *table.Table) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}

	meta := newMeta(name, t, s.now().UTC())

	s.mu.Lock()
	s.tables[meta.ID] = memoryEntry{meta: meta, table: t}
	s.mu.Unlock()

	return meta, nil
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*table.Table, Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.tables[id]
	if !ok {
		return nil, Meta{}, ErrNotFound
	}
	return e.table, e.meta, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Meta, error) {
	s.mu.RLock()
	out := make([]Meta, 0, len(s.tables))
	for _, e := range s.tables {
		out = append(out, e.meta)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Meta) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[id]; !ok {
		return ErrNotFound
	}
	delete(s.tables, id)
	return nil
}
