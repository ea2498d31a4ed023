package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alshehri12/grc/internal/client/storage"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

// Ключи токенов в локальном хранилище
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
)

// TokenStore хранит пару токенов в KV хранилище.
// Содержимое токенов не проверяется.
type TokenStore struct {
	kv     storage.KVStorage
	logger *slog.Logger
}

// NewTokenStore создает хранилище токенов поверх kv
func NewTokenStore(kv storage.KVStorage, logger *slog.Logger) *TokenStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{kv: kv, logger: logger}
}

// Get возвращает значение по имени; ошибки чтения логируются и считаются отсутствием значения
func (s *TokenStore) Get(ctx context.Context, name string) (string, bool) {
	value, err := s.kv.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.WarnContext(ctx, "failed to read token", "key", name, "error", err)
		}
		return "", false
	}
	return value, value != ""
}

// Set сохраняет значение
func (s *TokenStore) Set(ctx context.Context, name, value string) error {
	if err := s.kv.Set(ctx, name, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// Clear удаляет значение; отсутствие ключа ошибкой не является
func (s *TokenStore) Clear(ctx context.Context, name string) error {
	if err := s.kv.Delete(ctx, name); err != nil {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

func (s *TokenStore) AccessToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, KeyAccessToken)
}

func (s *TokenStore) RefreshToken(ctx context.Context) (string, bool) {
	return s.Get(ctx, KeyRefreshToken)
}

func (s *TokenStore) SetAccessToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyAccessToken, token)
}

func (s *TokenStore) SetRefreshToken(ctx context.Context, token string) error {
	return s.Set(ctx, KeyRefreshToken, token)
}

// SaveTokens сохраняет обе части пары
func (s *TokenStore) SaveTokens(ctx context.Context, pair pkgapi.TokenPair) error {
	if err := s.SetAccessToken(ctx, pair.Access); err != nil {
		return err
	}
	return s.SetRefreshToken(ctx, pair.Refresh)
}

// ClearTokens удаляет оба токена, даже если удаление одного из них не удалось
func (s *TokenStore) ClearTokens(ctx context.Context) error {
	return errors.Join(
		s.Clear(ctx, KeyAccessToken),
		s.Clear(ctx, KeyRefreshToken),
	)
}

// Tokens возвращает пару, только если присутствуют оба токена
func (s *TokenStore) Tokens(ctx context.Context) (*pkgapi.TokenPair, bool) {
	access, ok := s.AccessToken(ctx)
	if !ok {
		return nil, false
	}
	refresh, ok := s.RefreshToken(ctx)
	if !ok {
		return nil, false
	}
	return &pkgapi.TokenPair{Access: access, Refresh: refresh}, true
}
