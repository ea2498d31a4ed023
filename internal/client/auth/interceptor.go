package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/alshehri12/grc/internal/client/api"
)

const headerAuthorization = "Authorization"

// Interceptor подставляет access token в запросы и восстанавливает сессию после 401.
// На каждый исходный запрос выполняется не более одной попытки обновления.
type Interceptor struct {
	client    *api.Client
	tokens    *TokenStore
	logger    *slog.Logger
	onExpired func()
	group     singleflight.Group
	mu        sync.RWMutex
}

// NewInterceptor создает пару hooks для client
func NewInterceptor(client *api.Client, tokens *TokenStore, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// OnExpired задает callback, вызываемый при невосстановимом истечении сессии
func (i *Interceptor) OnExpired(fn func()) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onExpired = fn
}

// Install регистрирует hooks на клиенте.
// Вызывать после остальных hooks: inbound должен обрабатывать ответ последним.
func (i *Interceptor) Install() {
	i.client.UseRequest(i.Outbound)
	i.client.UseResponse(i.Inbound)
}

// Outbound добавляет Authorization: Bearer <access>, если токен сохранен
func (i *Interceptor) Outbound(ctx context.Context, req *api.Request) error {
	// повтор после refresh уже несет новый токен
	if req.Retried && req.Header.Get(headerAuthorization) != "" {
		return nil
	}
	if access, ok := i.tokens.AccessToken(ctx); ok {
		req.SetHeader(headerAuthorization, "Bearer "+access)
	}
	return nil
}

// Inbound обрабатывает 401: обновляет access token и повторяет исходный запрос.
// Любые другие результаты проходят без изменений.
func (i *Interceptor) Inbound(ctx context.Context, req *api.Request, resp *api.Response, err error) (*api.Response, error) {
	if err == nil || !api.IsUnauthorized(err) {
		return resp, err
	}

	// 1. Повторный 401 не восстанавливаем
	if req.Retried {
		return resp, err
	}

	// 2. Помечаем запрос
	req.Retried = true

	// 3. Без refresh token восстановление невозможно
	refresh, ok := i.tokens.RefreshToken(ctx)
	if !ok {
		i.client.Metrics().ObserveRefresh(api.RefreshSkipped)
		i.logger.DebugContext(ctx, "401 without refresh token", "path", req.Path)
		return resp, err
	}

	// 4. Обновляем access token мимо hooks
	access, refreshErr := i.refresh(ctx, refresh)
	if refreshErr != nil {
		// вызывающий перестал ждать, сессию это не завершает
		if ctx.Err() != nil {
			return nil, refreshErr
		}
		// 6. Сессия завершена, вызывающий получает исходный 401
		return nil, &SessionExpiredError{Err: err, Cause: refreshErr}
	}

	// 5. Повторяем исходный запрос с новым токеном
	req.SetHeader(headerAuthorization, "Bearer "+access)
	i.logger.DebugContext(ctx, "replaying request after token refresh", "method", req.Method, "path", req.Path)

	return i.client.Do(ctx, req)
}

// Refresh явно обновляет access token.
// Неудача завершает сессию так же, как при восстановлении после 401.
func (i *Interceptor) Refresh(ctx context.Context) (string, error) {
	refresh, ok := i.tokens.RefreshToken(ctx)
	if !ok {
		return "", ErrNoRefreshToken
	}
	access, err := i.refresh(ctx, refresh)
	if err != nil {
		if ctx.Err() != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrRefreshDenied, err)
	}
	return access, nil
}

// refresh объединяет одновременные обновления одного refresh token в один запрос.
// Запрос выполняется на контексте без отмены: отказ одного вызывающего не
// прерывает обновление для остальных. Вызывающий с отмененным ctx выходит сразу.
func (i *Interceptor) refresh(ctx context.Context, refresh string) (string, error) {
	flightCtx := context.WithoutCancel(ctx)

	ch := i.group.DoChan(refresh, func() (any, error) {
		// токены могли смениться, пока запрос ждал своей очереди
		current, ok := i.tokens.RefreshToken(flightCtx)
		if !ok {
			return "", errSessionEnded
		}
		if current != refresh {
			if access, ok := i.tokens.AccessToken(flightCtx); ok {
				return access, nil
			}
			return "", errSessionEnded
		}

		resp, err := i.client.RefreshToken(flightCtx, refresh)
		if err != nil {
			i.expire(flightCtx, err)
			return "", err
		}

		// refresh token сервер не ротирует, его не трогаем
		if err := i.tokens.SetAccessToken(flightCtx, resp.Access); err != nil {
			i.logger.WarnContext(flightCtx, "failed to persist refreshed access token", "error", err)
		}
		i.client.Metrics().ObserveRefresh(api.RefreshSuccess)
		i.logger.InfoContext(flightCtx, "access token refreshed")

		return resp.Access, nil
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("token refresh abandoned: %w", ctx.Err())
	case res := <-ch:
		if res.Shared {
			i.logger.DebugContext(ctx, "joined in-flight token refresh")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// expire очищает токены и уведомляет подписчика об истечении сессии
func (i *Interceptor) expire(ctx context.Context, cause error) {
	i.client.Metrics().ObserveRefresh(api.RefreshDenied)
	i.logger.WarnContext(ctx, "token refresh failed, session expired", "error", cause)

	if err := i.tokens.ClearTokens(ctx); err != nil {
		i.logger.ErrorContext(ctx, "failed to clear tokens", "error", err)
	}

	i.mu.RLock()
	fn := i.onExpired
	i.mu.RUnlock()

	if fn != nil {
		fn()
	}
}
