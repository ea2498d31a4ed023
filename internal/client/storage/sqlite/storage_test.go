package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alshehri12/grc/internal/client/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestNew_MigrationsApplied(t *testing.T) {
	s := newTestStorage(t)

	var name string
	err := s.DB().QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'local_storage'`,
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "local_storage", name)
}

func TestStorage_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	_, err := s.Get(ctx, "refresh_token")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "refresh_token", "R1"))
	got, err := s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "R1", got)

	// upsert
	require.NoError(t, s.Set(ctx, "refresh_token", "R2"))
	got, err = s.Get(ctx, "refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "R2", got)

	require.NoError(t, s.Delete(ctx, "refresh_token"))
	_, err = s.Get(ctx, "refresh_token")
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)

	assert.NoError(t, s.Delete(ctx, "refresh_token"))
}

func TestStorage_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "grc.sqlite")

	s, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "currentOrganization", `{"id":1,"name":"ACME"}`))
	require.NoError(t, s.Close())

	// Повторное открытие: миграции не должны падать на существующей схеме
	s, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, s.Close())
	}()

	got, err := s.Get(ctx, "currentOrganization")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"ACME"}`, got)
}

func TestStorage_AfterClose(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, s.Set(ctx, "k", "v"), storage.ErrStorageClosed)
}
