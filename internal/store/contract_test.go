package store

import (
	"context"
	"testing"

	"github.com/JonMunkholm/tabload/internal/table"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runContract exercises behavior every Store must share.
func runContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		s := newStore(t)
		src := &table.Table{
			Header: []string{"a", "b", "c"},
			Rows:   []table.Row{{"1", "2", "3"}, {"4", "5"}, {"", "x,y", "line\nbreak"}},
		}

		meta, err := s.Save(ctx, "sample.csv", src)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, meta.ID)
		assert.Equal(t, "sample.csv", meta.Name)
		assert.Equal(t, 3, meta.Columns)
		assert.Equal(t, 3, meta.Rows)

		got, gotMeta, err := s.Get(ctx, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, src.Header, got.Header)
		assert.Equal(t, src.Rows, got.Rows)
		assert.Equal(t, meta.ID, gotMeta.ID)
		assert.True(t, meta.CreatedAt.Equal(gotMeta.CreatedAt))
	})

	t.Run("header only", func(t *testing.T) {
		s := newStore(t)

		meta, err := s.Save(ctx, "empty", &table.Table{Header: []string{"only"}})
		require.NoError(t, err)

		got, _, err := s.Get(ctx, meta.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"only"}, got.Header)
		assert.Empty(t, got.Rows)
	})

	t.Run("get unknown", func(t *testing.T) {
		s := newStore(t)

		_, _, err := s.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list and delete", func(t *testing.T) {
		s := newStore(t)
		first, err := s.Save(ctx, "first", &table.Table{Header: []string{"x"}})
		require.NoError(t, err)
		second, err := s.Save(ctx, "second", &table.Table{Header: []string{"y"}, Rows: []table.Row{{"1"}}})
		require.NoError(t, err)

		metas, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]uuid.UUID, len(metas))
		for i, m := range metas {
			ids[i] = m.ID
		}
		assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

		require.NoError(t, s.Delete(ctx, first.ID))
		assert.ErrorIs(t, s.Delete(ctx, first.ID), ErrNotFound)

		_, _, err = s.Get(ctx, first.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		metas, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, metas, 1)
		assert.Equal(t, second.ID, metas[0].ID)
		assert.Equal(t, 1, metas[0].Rows)
	})
}
