package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alshehri12/grc/internal/client/auth"
	"github.com/alshehri12/grc/internal/client/config"
	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/router"
	"github.com/alshehri12/grc/internal/client/storage"
)

// Аннотации команд
const (
	// annotationRoute маршрут, который показывает команда; по нему работает Guard
	annotationRoute = "route"
	// annotationResourceRoute маршрут выводится из имени ресурса в первом аргументе
	annotationResourceRoute = "resourceRoute"
	// annotationSkipApp команде не нужны ни конфигурация, ни хранилище
	annotationSkipApp = "skipApp"
)

var (
	// ErrNotAuthenticated команда требует входа
	ErrNotAuthenticated = errors.New("not logged in, run 'grc login' first")
	// ErrAlreadyAuthenticated вход уже выполнен
	ErrAlreadyAuthenticated = errors.New("already logged in, run 'grc logout' first")
)

// BuildInfo версия бинарника, задается через ldflags
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Options позволяют тестам подменить окружение команды
type Options struct {
	IO        iocli.IO
	Storage   storage.KVStorage
	LogOutput io.Writer
	ErrOutput io.Writer
	Build     BuildInfo
}

type globalFlags struct {
	configPath string
	server     string
	dbPath     string
	driver     string
	logLevel   string
}

// NewRootCmd собирает дерево команд grc.
// Хранилище, открытое командой, закрывает возвращаемая функция.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	if opts.IO == nil {
		opts.IO = iocli.NewStdio()
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}

	var (
		flags globalFlags
		app   *App
	)

	root := &cobra.Command{
		Use:   "grc",
		Short: "Terminal client for the GRC platform",
		Long: `grc talks to the GRC backend (governance, risk, BCM, compliance,
workflow) with a persistent session: tokens are stored locally and the
access token is refreshed transparently when it expires.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationSkipApp] == "true" {
				return nil
			}

			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(opts.LogOutput, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			}))

			app, err = NewApp(cmd.Context(), cfg, opts.IO, logger, opts.Storage)
			if err != nil {
				return err
			}

			return guard(cmd.Context(), app, routeFor(cmd, args))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "path to config file (default: $CONFIG_PATH or ./grc.yaml)")
	pf.StringVar(&flags.server, "server", "", "API base URL (overrides GRC_API_URL)")
	pf.StringVar(&flags.dbPath, "db", "", "path to local database")
	pf.StringVar(&flags.driver, "storage", "", "local storage driver: bolt, sqlite or memory")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	appFn := func() *App { return app }

	root.AddCommand(
		loginCmd(appFn),
		logoutCmd(appFn),
		statusCmd(appFn),
		whoamiCmd(appFn),
		refreshCmd(appFn),
		verifyCmd(appFn),
		resourcesCmd(appFn),
		listCmd(appFn),
		showCmd(appFn),
		createCmd(appFn),
		updateCmd(appFn),
		deleteCmd(appFn),
		actionCmd(appFn),
		tasksCmd(appFn),
		approvalsCmd(appFn),
		approveCmd(appFn),
		rejectCmd(appFn),
		notificationsCmd(appFn),
		dashboardCmd(appFn),
		prefsCmd(appFn),
		versionCmd(opts),
	)

	closeApp := func() error {
		if app == nil {
			return nil
		}
		return app.Close()
	}

	return root, closeApp
}

// Execute запускает команду и переводит ошибки в код возврата
func Execute(ctx context.Context, opts Options, args []string) int {
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}
	root, closeApp := NewRootCmd(opts)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := closeApp(); closeErr != nil {
		slog.Error("failed to close storage", "error", closeErr)
	}
	if err == nil {
		return 0
	}

	// сообщение об истечении сессии уже выведено
	if !errors.Is(err, auth.ErrRefreshDenied) {
		fmt.Fprintf(opts.ErrOutput, "Error: %v\n", err)
	}
	return 1
}

func loadConfig(flags globalFlags) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	// флаги важнее файла и окружения
	if flags.server != "" {
		cfg.APIURL = flags.server
	}
	if flags.dbPath != "" {
		cfg.Storage.Path = flags.dbPath
	}
	if flags.driver != "" {
		cfg.Storage.Driver = flags.driver
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// routeFor возвращает путь экрана команды; пустая строка означает команду без Guard
func routeFor(cmd *cobra.Command, args []string) string {
	if route, ok := cmd.Annotations[annotationRoute]; ok {
		return route
	}
	if cmd.Annotations[annotationResourceRoute] == "true" && len(args) > 0 {
		return resourceRoute(args[0])
	}
	return ""
}

// guard применяет router.Guard к маршруту команды
func guard(ctx context.Context, app *App, path string) error {
	if path == "" {
		return nil
	}

	decision := app.router.Navigate(ctx, path)
	if !decision.Redirected {
		return nil
	}

	switch decision.To.Name {
	case router.RouteLogin:
		return ErrNotAuthenticated
	case router.RouteDashboard:
		return ErrAlreadyAuthenticated
	default:
		return fmt.Errorf("navigation to %s redirected to %s", path, decision.To.Path)
	}
}
