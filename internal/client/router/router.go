package router

import (
	"context"
	"log/slog"
	"sync"
)

// AuthFunc сообщает, выполнен ли вход
type AuthFunc func(ctx context.Context) bool

// Router хранит текущий маршрут и применяет Guard к каждому переходу
type Router struct {
	isAuthenticated AuthFunc
	logger          *slog.Logger
	current         Route
	mu              sync.RWMutex
}

func New(isAuthenticated AuthFunc, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		isAuthenticated: isAuthenticated,
		logger:          logger,
	}
}

// Navigate переходит по пути и возвращает решение Guard
func (r *Router) Navigate(ctx context.Context, path string) Decision {
	to := Resolve(path)
	decision := Guard(to, r.isAuthenticated(ctx))
	if decision.Redirected {
		r.logger.DebugContext(ctx, "navigation redirected", "from", to.Name, "to", decision.To.Name)
	}

	r.mu.Lock()
	r.current = decision.To
	r.mu.Unlock()

	return decision
}

// NavigateToLogin принудительно переходит на Login после истечения сессии
func (r *Router) NavigateToLogin() Route {
	login := byName[RouteLogin]

	r.mu.Lock()
	r.current = login
	r.mu.Unlock()

	return login
}

// Current возвращает текущий маршрут; до первого перехода пустой
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}
