package api

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

// sensitiveParams never appear in logs or error messages
var sensitiveParams = []string{"token", "access", "refresh", "password"}

// observe логирует обмен и обновляет метрики.
// Уровень логирования зависит от статуса; токены и тела не логируются.
func (c *Client) observe(ctx context.Context, req *Request, status, size int, d time.Duration) {
	c.metrics.observeRequest(req.Method, status, d)

	level := slog.LevelDebug
	switch {
	case status == 0 || status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	c.logger.Log(ctx, level, "HTTP request",
		"method", req.Method,
		"path", req.Path,
		"query", sanitizeQuery(req.Query),
		"request_id", req.Header.Get(HeaderRequestID),
		"retried", req.Retried,
		"status", status,
		"duration_ms", d.Milliseconds(),
		"bytes_read", size,
	)
}

// sanitizeQuery маскирует значения чувствительных параметров
func sanitizeQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	masked := make(url.Values, len(q))
	for key, values := range q {
		if isSensitive(key) {
			masked[key] = []string{"***"}
			continue
		}
		masked[key] = values
	}
	return masked.Encode()
}

func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		u.RawQuery = sanitizeQuery(u.Query())
	}
	u.User = nil
	return u.String()
}

func isSensitive(key string) bool {
	key = strings.ToLower(key)
	for _, s := range sensitiveParams {
		if strings.Contains(key, s) {
			return true
		}
	}
	return false
}
