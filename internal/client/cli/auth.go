package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alshehri12/grc/internal/client/auth"
	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/router"
)

// EnvPassword переменная окружения с паролем для неинтерактивного входа
const EnvPassword = "GRC_PASSWORD"

type appFunc func() *App

// Passwords источники пароля для login
type Passwords struct {
	FromFile string
	FromArgs string
}

func loginCmd(app appFunc) *cobra.Command {
	var (
		username  string
		passwords Passwords
	)

	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in and store the session tokens",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: routePath(router.RouteLogin)},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			a.io.Println("=== Login ===")
			a.io.Println()

			if username == "" {
				var err error
				username, err = a.io.ReadInput("Username: ")
				if err != nil {
					return fmt.Errorf("failed to read username: %w", err)
				}
			}

			password, err := readPassword(a.io, passwords)
			if err != nil {
				return fmt.Errorf("failed to get password: %w", err)
			}

			a.io.Println("Authenticating...")

			if !a.session.Login(cmd.Context(), username, password) {
				return fmt.Errorf("login failed: %s", a.session.LastError())
			}

			a.router.Navigate(cmd.Context(), routePath(router.RouteDashboard))

			a.io.Println()
			a.io.Println("✓ Login successful!")
			if name := a.session.UserFullName(); name != "" {
				a.io.Printf("Signed in as: %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVar(&passwords.FromFile, "password-file", "", "read password from file")
	cmd.Flags().StringVar(&passwords.FromArgs, "password", "", "password (not recommended, use "+EnvPassword+" or --password-file)")

	return cmd
}

// readPassword берет пароль по приоритету:
// 1. переменная окружения GRC_PASSWORD
// 2. файл --password-file
// 3. параметр --password
// 4. интерактивный ввод
func readPassword(out iocli.IO, passwords Passwords) (string, error) {
	if envPassword := os.Getenv(EnvPassword); envPassword != "" {
		return envPassword, nil
	}

	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	password, err := out.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func logoutCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session (no server call)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			a.router.NavigateToLogin()
			a.io.Println("✓ Logged out")
			return nil
		},
	}
}

func statusCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			a.io.Println("=== Authentication Status ===")
			a.io.Println()
			a.io.Printf("Server: %s\n", a.client.BaseURL())

			if !a.session.IsAuthenticated(ctx) {
				a.io.Println("Status: Not authenticated")
				a.io.Println()
				a.io.Println("Run 'grc login' to authenticate.")
				return nil
			}

			a.session.Initialize(ctx)
			if a.Expired() {
				return nil
			}

			a.io.Println("Status: Authenticated")
			if user := a.session.CurrentUser(); user != nil {
				a.io.Printf("User: %s (%s)\n", user.FullName(), user.Username)
			}

			exp, err := a.session.TokenExpiry(ctx)
			switch {
			case err != nil:
				a.io.Printf("Access token expiry: unknown (%v)\n", err)
			case time.Until(exp) > 0:
				a.io.Printf("Access token expires: %s (in %s)\n", exp.Format(time.RFC3339), time.Until(exp).Round(time.Second))
			default:
				a.io.Println("⚠️  Access token has expired; it will be refreshed on the next request.")
			}

			if _, ok := a.session.Tokens(ctx); !ok {
				a.io.Println("⚠️  No refresh token stored; the session ends when the access token expires.")
			}
			return nil
		},
	}
}

func whoamiCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:         "whoami",
		Short:       "Show the profile of the current user",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationRoute: routePath(router.RouteProfile)},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.session.FetchUser(cmd.Context()); err != nil {
				return err
			}
			return iocli.PrintValue(a.io, a.session.CurrentUser())
		},
	}
}

func refreshCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the refresh token for a new access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if _, err := a.interceptor.Refresh(cmd.Context()); err != nil {
				if errors.Is(err, auth.ErrNoRefreshToken) {
					return ErrNotAuthenticated
				}
				return err
			}
			a.io.Println("✓ Access token refreshed")
			return nil
		},
	}
}

func verifyCmd(app appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Ask the server whether the stored access token is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if !a.session.IsAuthenticated(cmd.Context()) {
				return ErrNotAuthenticated
			}
			if !a.session.Verify(cmd.Context()) {
				a.io.Println("✗ Access token is not valid")
				return fmt.Errorf("access token rejected by server")
			}
			a.io.Println("✓ Access token is valid")
			return nil
		},
	}
}

func routePath(name string) string {
	r, _ := router.ByName(name)
	return r.Path
}
