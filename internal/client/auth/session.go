package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/alshehri12/grc/internal/client/api"
	"github.com/alshehri12/grc/internal/models"
	"github.com/alshehri12/grc/internal/validation"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

// MsgLoginFailed показывается, если сервер не сообщил причину отказа
const MsgLoginFailed = "Login failed"

// Session хранит состояние входа: профиль пользователя, флаг загрузки и последнюю ошибку.
// Признак аутентификации берется из TokenStore: наличие access token считается достаточным.
type Session struct {
	client    *api.Client
	tokens    *TokenStore
	logger    *slog.Logger
	user      *models.UserProfile
	lastError string
	mu        sync.RWMutex
	loading   bool
}

// NewSession создает сессию поверх клиента и хранилища токенов
func NewSession(client *api.Client, tokens *TokenStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// Login выполняет вход. При неудаче сообщение доступно через LastError.
func (s *Session) Login(ctx context.Context, username, password string) bool {
	s.mu.Lock()
	s.loading = true
	s.lastError = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	if err := validation.ValidateCredentials(username, password); err != nil {
		s.setError(err.Error())
		return false
	}

	pair, err := s.client.Login(ctx, pkgapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.logger.WarnContext(ctx, "login failed", "username", username, "error", err)
		msg := api.ErrorDetail(err)
		if msg == "" {
			msg = MsgLoginFailed
		}
		s.setError(msg)
		return false
	}

	if err := s.tokens.SaveTokens(ctx, *pair); err != nil {
		s.logger.ErrorContext(ctx, "failed to save tokens", "error", err)
		// частично сохраненная пара хуже отсутствующей
		if clearErr := s.tokens.ClearTokens(ctx); clearErr != nil {
			s.logger.ErrorContext(ctx, "failed to clear tokens", "error", clearErr)
		}
		s.setError(MsgLoginFailed)
		return false
	}

	_ = s.FetchUser(ctx)

	s.logger.InfoContext(ctx, "logged in", "username", username)
	return true
}

// FetchUser загружает профиль текущего пользователя.
// Ошибка логируется и не меняет состояние аутентификации.
func (s *Session) FetchUser(ctx context.Context) error {
	profile, err := s.client.Me(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch user profile", "error", err)
		return err
	}

	s.mu.Lock()
	s.user = profile
	s.mu.Unlock()

	return nil
}

// Logout локально удаляет пользователя и оба токена; сервер не вызывается
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.ClearTokens(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// Initialize восстанавливает профиль при наличии сохраненного access token
func (s *Session) Initialize(ctx context.Context) {
	if _, ok := s.tokens.AccessToken(ctx); !ok {
		return
	}
	_ = s.FetchUser(ctx)
}

// Expire сбрасывает профиль после невосстановимого 401.
// Токены к этому моменту уже удалены интерсептором.
func (s *Session) Expire() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// IsAuthenticated сообщает, сохранен ли access token. Сервером токен не проверяется.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.tokens.AccessToken(ctx)
	return ok
}

func (s *Session) CurrentUser() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// UserFullName возвращает "Имя Фамилия" или username
func (s *Session) UserFullName() string {
	return s.CurrentUser().FullName()
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Tokens возвращает сохраненную пару токенов
func (s *Session) Tokens(ctx context.Context) (*pkgapi.TokenPair, bool) {
	return s.tokens.Tokens(ctx)
}

// Verify проверяет access token на сервере
func (s *Session) Verify(ctx context.Context) bool {
	access, ok := s.tokens.AccessToken(ctx)
	if !ok {
		return false
	}
	if err := s.client.VerifyToken(ctx, access); err != nil {
		s.logger.DebugContext(ctx, "access token rejected", "error", err)
		return false
	}
	return true
}

// TokenExpiry читает exp из access token без проверки подписи
func (s *Session) TokenExpiry(ctx context.Context) (time.Time, error) {
	access, ok := s.tokens.AccessToken(ctx)
	if !ok {
		return time.Time{}, ErrNoAccessToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("access token has no exp claim")
	}
	return exp.Time, nil
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}
