package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alshehri12/grc/internal/client/auth"
	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/storage"
	"github.com/alshehri12/grc/internal/client/storage/memory"
	"github.com/alshehri12/grc/internal/models"
	"github.com/alshehri12/grc/internal/testutil/fakegrc"
)

// cliEnv один fake сервер и одно хранилище на несколько запусков grc
type cliEnv struct {
	srv *fakegrc.Server
	kv  *memory.Storage
	out *iocli.Buffer
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv(EnvPassword, "")

	e := &cliEnv{srv: fakegrc.New(t), kv: memory.New(), out: iocli.NewBuffer()}
	e.srv.AddUser(models.UserProfile{
		ID:        1,
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
	}, "correct")
	return e
}

// run выполняет grc с аргументами и возвращает код возврата и stderr
func (e *cliEnv) run(t *testing.T, args ...string) (int, string) {
	t.Helper()

	var stderr bytes.Buffer
	args = append(args, "--server", e.srv.URL(), "--storage", "memory")
	code := Execute(context.Background(), Options{
		IO:        e.out,
		Storage:   e.kv,
		LogOutput: io.Discard,
		ErrOutput: &stderr,
		Build:     BuildInfo{Version: "1.2.3", BuildDate: "2026-01-01", GitCommit: "abc123"},
	}, args)
	return code, stderr.String()
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	code, stderr := e.run(t, "login", "-u", "alice", "--password", "correct")
	require.Equal(t, 0, code, stderr)
	e.out.Reset()
}

func (e *cliEnv) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	value, err := e.kv.Get(context.Background(), key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return "", false
	}
	require.NoError(t, err)
	return value, true
}

func (e *cliEnv) hasTokens(t *testing.T) bool {
	t.Helper()
	_, access := e.stored(t, auth.KeyAccessToken)
	_, refresh := e.stored(t, auth.KeyRefreshToken)
	return access && refresh
}
