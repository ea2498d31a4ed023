package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alshehri12/grc/internal/client/storage/memory"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

func TestTokenStore_GetSetClear(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(memory.New(), nil)

	_, ok := store.Get(ctx, KeyAccessToken)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, KeyAccessToken, "A1"))
	value, ok := store.Get(ctx, KeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "A1", value)

	require.NoError(t, store.Clear(ctx, KeyAccessToken))
	_, ok = store.Get(ctx, KeyAccessToken)
	assert.False(t, ok)

	// повторное удаление не ошибка
	require.NoError(t, store.Clear(ctx, KeyAccessToken))
}

func TestTokenStore_Pair(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(memory.New(), nil)

	_, ok := store.Tokens(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SaveTokens(ctx, pkgapi.TokenPair{Access: "A1", Refresh: "R1"}))

	pair, ok := store.Tokens(ctx)
	require.True(t, ok)
	assert.Equal(t, "A1", pair.Access)
	assert.Equal(t, "R1", pair.Refresh)

	require.NoError(t, store.SetAccessToken(ctx, "A2"))
	access, _ := store.AccessToken(ctx)
	refresh, _ := store.RefreshToken(ctx)
	assert.Equal(t, "A2", access)
	assert.Equal(t, "R1", refresh)

	require.NoError(t, store.ClearTokens(ctx))
	_, ok = store.AccessToken(ctx)
	assert.False(t, ok)
	_, ok = store.RefreshToken(ctx)
	assert.False(t, ok)
}

func TestTokenStore_OnlyAccess(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(memory.New(), nil)

	require.NoError(t, store.SetAccessToken(ctx, "A1"))

	_, ok := store.Tokens(ctx)
	assert.False(t, ok)
	_, ok = store.AccessToken(ctx)
	assert.True(t, ok)
}

func TestTokenStore_ReadErrorIsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Storage: memory.New()}
	store := NewTokenStore(kv, nil)
	require.NoError(t, store.SetAccessToken(ctx, "A1"))

	kv.getErr = errors.New("disk gone")

	_, ok := store.AccessToken(ctx)
	assert.False(t, ok)
}

func TestTokenStore_WriteErrors(t *testing.T) {
	ctx := context.Background()
	diskErr := errors.New("disk full")
	kv := &flakyKV{Storage: memory.New(), setErr: diskErr}
	store := NewTokenStore(kv, nil)

	err := store.SaveTokens(ctx, pkgapi.TokenPair{Access: "A1", Refresh: "R1"})
	require.ErrorIs(t, err, diskErr)
	assert.Contains(t, err.Error(), KeyAccessToken)

	kv.setErr = nil
	require.NoError(t, store.SaveTokens(ctx, pkgapi.TokenPair{Access: "A1", Refresh: "R1"}))

	kv.deleteErr = diskErr
	err = store.ClearTokens(ctx)
	require.ErrorIs(t, err, diskErr)
	assert.Contains(t, err.Error(), KeyAccessToken)
	assert.Contains(t, err.Error(), KeyRefreshToken)
}
