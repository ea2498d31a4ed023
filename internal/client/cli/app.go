package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/alshehri12/grc/internal/client/api"
	"github.com/alshehri12/grc/internal/client/auth"
	"github.com/alshehri12/grc/internal/client/config"
	"github.com/alshehri12/grc/internal/client/iocli"
	"github.com/alshehri12/grc/internal/client/prefs"
	"github.com/alshehri12/grc/internal/client/router"
	"github.com/alshehri12/grc/internal/client/storage"
	"github.com/alshehri12/grc/internal/client/storage/boltdb"
	"github.com/alshehri12/grc/internal/client/storage/memory"
	"github.com/alshehri12/grc/internal/client/storage/sqlite"
)

// MsgSessionExpired выводится, когда сессию не удалось восстановить
const MsgSessionExpired = "Session expired. Run 'grc login' to sign in again."

// App связывает компоненты клиента для одного запуска CLI
type App struct {
	cfg         *config.Config
	io          iocli.IO
	logger      *slog.Logger
	kv          storage.KVStorage
	client      *api.Client
	tokens      *auth.TokenStore
	interceptor *auth.Interceptor
	session     *auth.Session
	router      *router.Router
	prefs       *prefs.Store
	ownsKV      bool
	expired     atomic.Bool
}

// NewApp открывает хранилище и собирает клиент.
// kv != nil подменяет хранилище из конфигурации (закрывать его будет вызывающий).
func NewApp(ctx context.Context, cfg *config.Config, out iocli.IO, logger *slog.Logger, kv storage.KVStorage) (*App, error) {
	app := &App{cfg: cfg, io: out, logger: logger, kv: kv}

	if app.kv == nil {
		opened, err := OpenStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		app.kv = opened
		app.ownsKV = true
	}

	app.client = api.NewClient(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
	)
	app.tokens = auth.NewTokenStore(app.kv, logger)
	app.interceptor = auth.NewInterceptor(app.client, app.tokens, logger)
	app.session = auth.NewSession(app.client, app.tokens, logger)
	app.router = router.New(app.session.IsAuthenticated, logger)
	app.prefs = prefs.New(app.kv, logger)

	// порядок важен: auth hooks регистрируются последними
	app.client.UseRequest(api.RequestIDHook)
	app.interceptor.Install()
	app.interceptor.OnExpired(app.onSessionExpired)

	return app, nil
}

// onSessionExpired сбрасывает сессию и отправляет пользователя на вход
func (a *App) onSessionExpired() {
	a.expired.Store(true)
	a.session.Expire()
	a.router.NavigateToLogin()
	a.io.Println(MsgSessionExpired)
}

// Expired сообщает, завершилась ли сессия во время выполнения команды
func (a *App) Expired() bool {
	return a.expired.Load()
}

func (a *App) Close() error {
	if !a.ownsKV {
		return nil
	}
	return a.kv.Close()
}

// OpenStorage открывает хранилище выбранного драйвера
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (storage.KVStorage, error) {
	switch cfg.Driver {
	case config.DriverBolt:
		s, err := boltdb.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, nil
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, cfg.Driver)
	}
}
