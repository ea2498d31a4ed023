// Package fakegrc поднимает in-process имитацию GRC API для тестов:
// выдачу и обновление JWT, проверку Bearer токена и несколько защищенных маршрутов.
package fakegrc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alshehri12/grc/internal/models"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

// Сообщения об ошибках в формате Django REST framework
const (
	DetailInvalidCredentials = "No active account found with the given credentials"
	DetailTokenNotValid      = "Given token not valid for any token type"
)

var signingKey = []byte("fakegrc-test-key")

// Server имитация GRC API, смонтированная под /api
type Server struct {
	srv          *httptest.Server
	users        map[string]string
	profiles     map[string]models.UserProfile
	access       map[string]string // access token -> username
	refresh      map[string]string // refresh token -> username
	hits         map[string]int
	refreshDelay time.Duration
	refreshCalls atomic.Int64
	mu           sync.Mutex
	denyRefresh  bool
}

// New запускает сервер; он закрывается автоматически по окончании теста
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:    make(map[string]string),
		profiles: make(map[string]models.UserProfile),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		hits:     make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token/", s.handleToken)
		r.Post("/auth/token/refresh/", s.handleRefresh)
		r.Post("/auth/token/verify/", s.handleVerify)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/core/profiles/me/", s.handleMe)
			r.HandleFunc("/*", s.handleEcho)
		})
	})

	s.srv = httptest.NewServer(r)
	t.Cleanup(s.srv.Close)

	return s
}

// URL базовый адрес API (с суффиксом /api)
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// Close останавливает сервер раньше окончания теста (имитация offline)
func (s *Server) Close() {
	s.srv.Close()
}

// AddUser регистрирует пользователя с профилем
func (s *Server) AddUser(profile models.UserProfile, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[profile.Username] = password
	s.profiles[profile.Username] = profile
}

// IssueTokens выдает валидную пару токенов пользователю, минуя /auth/token/
func (s *Server) IssueTokens(username string) pkgapi.TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(username)
}

// IssueAccess выдает только access token (refresh не создается)
func (s *Server) IssueAccess(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := sign(5 * time.Minute)
	s.access[token] = username
	return token
}

// ExpireAccess делает все выданные access токены невалидными
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// DenyRefresh заставляет /auth/token/refresh/ отвечать 401
func (s *Server) DenyRefresh(deny bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.denyRefresh = deny
}

// SetRefreshDelay замедляет ответ /auth/token/refresh/
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// RefreshCalls количество обращений к /auth/token/refresh/
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Hits количество запросов по "METHOD /path"
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits общее количество запросов
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *Server) issueLocked(username string) pkgapi.TokenPair {
	pair := pkgapi.TokenPair{
		Access:  sign(5 * time.Minute),
		Refresh: sign(24 * time.Hour),
	}
	s.access[pair.Access] = username
	s.refresh[pair.Refresh] = username
	return pair
}

func sign(ttl time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, valid := s.access[token]
		s.mu.Unlock()

		if !ok || !valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": DetailTokenNotValid,
				"code":   "token_not_valid",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req pkgapi.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed request"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	password, ok := s.users[req.Username]
	if !ok || password != req.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": DetailInvalidCredentials})
		return
	}

	writeJSON(w, http.StatusOK, s.issueLocked(req.Username))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var req pkgapi.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed request"})
		return
	}

	s.mu.Lock()
	delay := s.refreshDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	username, ok := s.refresh[req.Refresh]
	if !ok || s.denyRefresh {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}

	access := sign(5 * time.Minute)
	s.access[access] = username
	writeJSON(w, http.StatusOK, pkgapi.RefreshResponse{Access: access})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req pkgapi.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "malformed request"})
		return
	}

	s.mu.Lock()
	_, ok := s.access[req.Token]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Token is invalid or expired",
			"code":   "token_not_valid",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	profile, ok := s.profiles[s.access[token]]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Profile not found"})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleEcho отвечает на любой защищенный маршрут описанием запроса
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"method": r.Method,
		"path":   strings.TrimPrefix(r.URL.Path, "/api"),
		"query":  r.URL.RawQuery,
		"body":   body,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
