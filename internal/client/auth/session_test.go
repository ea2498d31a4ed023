package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alshehri12/grc/internal/client/api"
	"github.com/alshehri12/grc/internal/client/storage/memory"
	"github.com/alshehri12/grc/internal/testutil/fakegrc"
	pkgapi "github.com/alshehri12/grc/pkg/api"
)

func TestSession_Login_Success(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	ok := e.session.Login(ctx, "alice", "correct")

	require.True(t, ok)
	assert.True(t, e.session.IsAuthenticated(ctx))
	assert.Empty(t, e.session.LastError())
	assert.False(t, e.session.Loading())

	require.NotNil(t, e.session.CurrentUser())
	assert.Equal(t, "alice", e.session.CurrentUser().Username)
	assert.Equal(t, "Alice Smith", e.session.UserFullName())

	access, ok := e.stored(t, KeyAccessToken)
	assert.True(t, ok)
	assert.NotEmpty(t, access)
	_, ok = e.stored(t, KeyRefreshToken)
	assert.True(t, ok)

	pair, ok := e.session.Tokens(ctx)
	require.True(t, ok)
	assert.Equal(t, access, pair.Access)

	assert.Equal(t, 1, e.srv.Hits(http.MethodPost, api.PathToken))
	assert.Equal(t, 1, e.srv.Hits(http.MethodGet, api.PathProfileMe))
}

func TestSession_Login_InvalidCredentials(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	ok := e.session.Login(ctx, "alice", "wrong")

	assert.False(t, ok)
	assert.False(t, e.session.IsAuthenticated(ctx))
	assert.Equal(t, fakegrc.DetailInvalidCredentials, e.session.LastError())
	assert.False(t, e.session.Loading())
	assert.Nil(t, e.session.CurrentUser())
	assert.Zero(t, e.kv.Len())
	assert.Zero(t, e.srv.RefreshCalls())
}

func TestSession_Login_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		status   int
	}{
		{
			name:     "detail",
			status:   http.StatusUnauthorized,
			body:     `{"detail":"Invalid credentials"}`,
			expected: "Invalid credentials",
		},
		{
			name:     "non field errors",
			status:   http.StatusBadRequest,
			body:     `{"non_field_errors":["Account is locked"]}`,
			expected: "Account is locked",
		},
		{
			name:     "no detail",
			status:   http.StatusInternalServerError,
			body:     `<html>oops</html>`,
			expected: MsgLoginFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStaticServer(t, tt.status, tt.body)
			ctx := context.Background()
			client := api.NewClient(server)
			tokens := NewTokenStore(memory.New(), nil)
			NewInterceptor(client, tokens, nil).Install()
			session := NewSession(client, tokens, nil)

			ok := session.Login(ctx, "alice", "wrong")

			assert.False(t, ok)
			assert.Equal(t, tt.expected, session.LastError())
			assert.False(t, session.IsAuthenticated(ctx))
		})
	}
}

func TestSession_Login_Offline(t *testing.T) {
	e := newTestEnv(t)
	e.srv.Close()

	ok := e.session.Login(context.Background(), "alice", "correct")

	assert.False(t, ok)
	assert.Equal(t, MsgLoginFailed, e.session.LastError())
}

func TestSession_Login_ValidationFailsWithoutNetwork(t *testing.T) {
	e := newTestEnv(t)

	ok := e.session.Login(context.Background(), "", "pw")

	assert.False(t, ok)
	assert.Contains(t, e.session.LastError(), "username cannot be empty")
	assert.Zero(t, e.srv.TotalHits())
}

func TestSession_Login_ClearsPreviousError(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	require.False(t, e.session.Login(ctx, "alice", "wrong"))
	require.NotEmpty(t, e.session.LastError())

	require.True(t, e.session.Login(ctx, "alice", "correct"))
	assert.Empty(t, e.session.LastError())
}

func TestSession_Login_SaveFailure(t *testing.T) {
	srv := fakegrc.New(t)
	srv.AddUser(testProfile(), "correct")
	ctx := context.Background()

	kv := &flakyKV{Storage: memory.New(), setErr: errors.New("read-only")}
	client := api.NewClient(srv.URL())
	tokens := NewTokenStore(kv, nil)
	session := NewSession(client, tokens, nil)

	ok := session.Login(ctx, "alice", "correct")

	assert.False(t, ok)
	assert.Equal(t, MsgLoginFailed, session.LastError())
	assert.False(t, session.IsAuthenticated(ctx))
}

// Ошибка загрузки профиля не влияет на аутентификацию
func TestSession_Login_ProfileFailureKeepsSession(t *testing.T) {
	srv := fakegrc.New(t)
	ctx := context.Background()
	kv := memory.New()
	client := api.NewClient(srv.URL())
	tokens := NewTokenStore(kv, nil)
	NewInterceptor(client, tokens, nil).Install()
	session := NewSession(client, tokens, nil)

	// пользователь без профиля: /core/profiles/me/ отвечает 404
	srv.AddUser(testProfile(), "correct")
	require.NoError(t, tokens.SaveTokens(ctx, srv.IssueTokens("ghost")))

	err := session.FetchUser(ctx)

	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusNotFound))
	assert.True(t, session.IsAuthenticated(ctx))
	assert.Nil(t, session.CurrentUser())
}

func TestSession_Logout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.True(t, e.session.Login(ctx, "alice", "correct"))
	before := e.srv.TotalHits()

	// logout не зависит от доступности сервера
	e.srv.Close()
	require.NoError(t, e.session.Logout(ctx))

	assert.False(t, e.session.IsAuthenticated(ctx))
	assert.Nil(t, e.session.CurrentUser())
	assert.Empty(t, e.session.UserFullName())
	assert.Zero(t, e.kv.Len())
	assert.Equal(t, before, e.srv.TotalHits())

	_, ok := e.session.Tokens(ctx)
	assert.False(t, ok)
}

func TestSession_Logout_StorageError(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{Storage: memory.New(), deleteErr: errors.New("locked")}
	session := NewSession(api.NewClient("http://127.0.0.1:1"), NewTokenStore(kv, nil), nil)

	err := session.Logout(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear tokens")
}

// Initialize с одним access token восстанавливает профиль без повторного входа
func TestSession_Initialize(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, e.kv.Set(ctx, KeyAccessToken, e.srv.IssueAccess("alice")))

	e.session.Initialize(ctx)

	require.NotNil(t, e.session.CurrentUser())
	assert.Equal(t, "alice", e.session.CurrentUser().Username)
	assert.True(t, e.session.IsAuthenticated(ctx))
	assert.Zero(t, e.srv.Hits(http.MethodPost, api.PathToken))
}

func TestSession_Initialize_Empty(t *testing.T) {
	e := newTestEnv(t)

	e.session.Initialize(context.Background())

	assert.Nil(t, e.session.CurrentUser())
	assert.Zero(t, e.srv.TotalHits())
}

func TestSession_Expire(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	require.True(t, e.session.Login(ctx, "alice", "correct"))

	e.session.Expire()

	assert.Nil(t, e.session.CurrentUser())
	// токены удаляет интерсептор, Expire их не трогает
	assert.True(t, e.session.IsAuthenticated(ctx))
}

func TestSession_Verify(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	assert.False(t, e.session.Verify(ctx))

	require.True(t, e.session.Login(ctx, "alice", "correct"))
	assert.True(t, e.session.Verify(ctx))

	e.srv.ExpireAccess()
	assert.False(t, e.session.Verify(ctx))
	// проверка токена не запускает обновление
	assert.Zero(t, e.srv.RefreshCalls())
	assert.True(t, e.session.IsAuthenticated(ctx))
}

func TestSession_TokenExpiry(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.session.TokenExpiry(ctx)
	require.ErrorIs(t, err, ErrNoAccessToken)

	require.True(t, e.session.Login(ctx, "alice", "correct"))
	exp, err := e.session.TokenExpiry(ctx)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), exp, time.Minute)

	require.NoError(t, e.tokens.SaveTokens(ctx, pkgapi.TokenPair{Access: "not-a-jwt", Refresh: "R1"}))
	_, err = e.session.TokenExpiry(ctx)
	require.Error(t, err)
}
