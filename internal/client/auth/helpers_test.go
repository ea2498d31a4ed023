package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alshehri12/grc/internal/client/api"
	"github.com/alshehri12/grc/internal/client/storage"
	"github.com/alshehri12/grc/internal/client/storage/memory"
	"github.com/alshehri12/grc/internal/models"
	"github.com/alshehri12/grc/internal/testutil/fakegrc"
)

// testEnv собирает клиент так же, как CLI: request id, затем пара auth hooks
type testEnv struct {
	srv         *fakegrc.Server
	client      *api.Client
	kv          *memory.Storage
	tokens      *TokenStore
	interceptor *Interceptor
	session     *Session
	expired     atomic.Int32
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := &testEnv{srv: fakegrc.New(t), kv: memory.New()}
	e.srv.AddUser(models.UserProfile{
		ID:        1,
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	}, "correct")

	e.client = api.NewClient(e.srv.URL())
	e.tokens = NewTokenStore(e.kv, nil)
	e.interceptor = NewInterceptor(e.client, e.tokens, nil)
	e.session = NewSession(e.client, e.tokens, nil)

	e.client.UseRequest(api.RequestIDHook)
	e.interceptor.Install()
	e.interceptor.OnExpired(func() {
		e.expired.Add(1)
		e.session.Expire()
	})

	return e
}

func (e *testEnv) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, err := e.kv.Get(context.Background(), key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", false
	}
	if err != nil {
		t.Fatalf("kv get %s: %v", key, err)
	}
	return value, true
}

// flakyKV возвращает заданные ошибки поверх memory хранилища
type flakyKV struct {
	*memory.Storage
	getErr    error
	setErr    error
	deleteErr error
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Storage.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Storage.Set(ctx, key, value)
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Storage.Delete(ctx, key)
}

func testProfile() models.UserProfile {
	return models.UserProfile{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Smith"}
}

// newStaticServer отвечает одинаково на любой запрос
func newStaticServer(t *testing.T, status int, body string) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server.URL
}
