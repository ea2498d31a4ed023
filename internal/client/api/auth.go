package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alshehri12/grc/internal/models"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

// Auth endpoints of the GRC backend
const (
	PathToken        = "/auth/token/"
	PathTokenRefresh = "/auth/token/refresh/"
	PathTokenVerify  = "/auth/token/verify/"
	PathProfileMe    = "/core/profiles/me/"
)

// Login обменивает логин/пароль на пару токенов
func (c *Client) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.TokenPair, error) {
	var resp pkgapi.TokenPair
	if err := c.doRequest(ctx, http.MethodPost, PathToken, nil, req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	if resp.Access == "" || resp.Refresh == "" {
		return nil, fmt.Errorf("login request failed: incomplete token pair in response")
	}
	return &resp, nil
}

// RefreshToken обменивает refresh token на новый access token.
// Запрос идет мимо hooks, чтобы 401 здесь не запускал повторное обновление.
func (c *Client) RefreshToken(ctx context.Context, refresh string) (*pkgapi.RefreshResponse, error) {
	req, err := NewRequest(http.MethodPost, PathTokenRefresh, pkgapi.RefreshRequest{Refresh: refresh})
	if err != nil {
		return nil, err
	}

	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}

	var out pkgapi.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	if out.Access == "" {
		return nil, fmt.Errorf("refresh request failed: empty access token in response")
	}
	return &out, nil
}

// VerifyToken проверяет токен на сервере; nil означает, что токен валиден.
// Проверяемый токен передается в теле, поэтому запрос тоже идет мимо hooks:
// 401 здесь означает "токен невалиден", а не "сессия истекла".
func (c *Client) VerifyToken(ctx context.Context, token string) error {
	req, err := NewRequest(http.MethodPost, PathTokenVerify, pkgapi.VerifyRequest{Token: token})
	if err != nil {
		return err
	}
	if _, err := c.DoRaw(ctx, req); err != nil {
		return fmt.Errorf("verify request failed: %w", err)
	}
	return nil
}

// Me возвращает профиль текущего пользователя
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.doRequest(ctx, http.MethodGet, PathProfileMe, nil, nil, &profile); err != nil {
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	return &profile, nil
}
