package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/testutil/fakegrc"
)

func writePasswordFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "password.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestReadPassword_Priority env > файл > параметр > интерактивный ввод
func TestReadPassword_Priority(t *testing.T) {
	file := writePasswordFile(t, "file_password\n")

	tests := []struct {
		name      string
		env       string
		passwords Passwords
		prompt    []string
		want      string
	}{
		{
			name:      "env wins over everything",
			env:       "env_password",
			passwords: Passwords{FromFile: file, FromArgs: "cli_password"},
			want:      "env_password",
		},
		{
			name:      "file wins over cli param",
			passwords: Passwords{FromFile: file, FromArgs: "cli_password"},
			want:      "file_password",
		},
		{
			name:      "cli param",
			passwords: Passwords{FromArgs: "cli_password"},
			want:      "cli_password",
		},
		{
			name:   "interactive prompt",
			prompt: []string{"typed_password"},
			want:   "typed_password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPassword, tt.env)
			out := iocli.NewBuffer().WithPasswords(tt.prompt...)

			password, err := readPassword(out, tt.passwords)

			require.NoError(t, err)
			assert.Equal(t, tt.want, password)
		})
	}
}

func TestReadPassword_Errors(t *testing.T) {
	t.Setenv(EnvPassword, "")

	t.Run("missing file", func(t *testing.T) {
		_, err := readPassword(iocli.NewBuffer(), Passwords{FromFile: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read password file")
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := readPassword(iocli.NewBuffer(), Passwords{FromFile: writePasswordFile(t, "  \n")})
		require.EqualError(t, err, "password file is empty")
	})

	t.Run("empty prompt", func(t *testing.T) {
		_, err := readPassword(iocli.NewBuffer().WithPasswords(""), Passwords{})
		require.EqualError(t, err, "password cannot be empty")
	})

	t.Run("stdin closed", func(t *testing.T) {
		_, err := readPassword(iocli.NewBuffer(), Passwords{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read password from stdin")
	})
}

func TestLogin(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "login", "-u", "alice", "--password", "correct")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "✓ Login successful!")
	assert.Contains(t, e.out.String(), "Signed in as: Alice Smith")
	assert.True(t, e.hasTokens(t))
	assert.Equal(t, 1, e.srv.Hits("GET", "/core/profiles/me/"))
}

func TestLogin_Interactive(t *testing.T) {
	e := newCLIEnv(t)
	e.out.WithInputs("alice").WithPasswords("correct")

	code, stderr := e.run(t, "login")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "Username: ")
	assert.Contains(t, e.out.String(), "Password: ")
	assert.True(t, e.hasTokens(t))
}

func TestLogin_PasswordFromEnv(t *testing.T) {
	e := newCLIEnv(t)
	t.Setenv(EnvPassword, "correct")

	code, stderr := e.run(t, "login", "-u", "alice")

	require.Equal(t, 0, code, stderr)
	assert.True(t, e.hasTokens(t))
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "login", "-u", "alice", "--password", "wrong")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "login failed: "+fakegrc.DetailInvalidCredentials)
	assert.False(t, e.hasTokens(t))
}

func TestLogin_InvalidUsernameSkipsServer(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "login", "-u", "bad name", "--password", "x")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "login failed")
	assert.Zero(t, e.srv.TotalHits())
}

func TestLogin_AlreadyAuthenticated(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)

	code, stderr := e.run(t, "login", "-u", "alice", "--password", "correct")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, ErrAlreadyAuthenticated.Error())
	assert.Equal(t, 1, e.srv.Hits("POST", "/auth/token/"))
}

func TestLogout(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	hits := e.srv.TotalHits()

	code, stderr := e.run(t, "logout")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "✓ Logged out")
	assert.False(t, e.hasTokens(t))
	assert.Equal(t, hits, e.srv.TotalHits(), "logout must not call the server")

	code, stderr = e.run(t, "list", "risk.risks")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, ErrNotAuthenticated.Error())
}

func TestStatus(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "status")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "Status: Not authenticated")
	assert.Zero(t, e.srv.TotalHits())

	e.login(t)
	code, stderr = e.run(t, "status")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "Status: Authenticated")
	assert.Contains(t, e.out.String(), "User: Alice Smith (alice)")
	assert.Contains(t, e.out.String(), "Access token expires:")
}

func TestStatus_SessionExpired(t *testing.T) {
	e := newCLIEnv(t)
	e.login(t)
	e.srv.ExpireAccess()
	e.srv.DenyRefresh(true)

	code, stderr := e.run(t, "status")

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), MsgSessionExpired)
	assert.NotContains(t, e.out.String(), "Status: Authenticated")
	assert.False(t, e.hasTokens(t))
}

func TestWhoami(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "whoami")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, ErrNotAuthenticated.Error())

	e.login(t)
	code, stderr = e.run(t, "whoami")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), `"username": "alice"`)
}

func TestRefreshAndVerify(t *testing.T) {
	e := newCLIEnv(t)

	code, stderr := e.run(t, "refresh")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, ErrNotAuthenticated.Error())

	e.login(t)
	before, _ := e.stored(t, "access_token")

	code, stderr = e.run(t, "refresh")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "✓ Access token refreshed")
	after, _ := e.stored(t, "access_token")
	assert.NotEqual(t, before, after)

	code, stderr = e.run(t, "verify")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, e.out.String(), "✓ Access token is valid")
}
