package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"polyglot/internal/config"
	"polyglot/internal/db"
	"polyglot/internal/handler"
	transport "polyglot/internal/http"
	"polyglot/internal/logger"
	"polyglot/internal/network"
	"polyglot/internal/repository"
	"polyglot/internal/scheduler"
	"polyglot/internal/service"
	"polyglot/internal/service/ai"
)

const (
	shutdownTimeout  = 10 * time.Second
	minSweepInterval = time.Second
	maxSweepInterval = 5 * time.Minute
)

// App holds the wired services of one Polyglot process.
type App struct {
	cfg config.Config
	db  *sql.DB

	Translator service.TranslationService
	Settings   service.SettingsService
	Sessions   service.SessionManager

	router *echo.Echo
}

// New opens the database and wires every service. The stored AI settings are
// applied before New returns; a provider that cannot be built is logged and
// translations fail until the settings are fixed through the API.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	httpClient, err := network.NewHTTPClient(cfg.ProxyURL, cfg.RequestTimeout)
	if err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("build http client: %w", err)
	}

	settingsRepo := repository.NewSettingsRepository(dbConn)
	providers := ai.NewHolder(nil)
	rateLimiter := ai.NewRateLimiter(cfg.RateLimit)

	settingsService := service.NewSettingsService(settingsRepo, providers, rateLimiter, service.AISettings{
		Provider:  cfg.AI.Provider,
		APIKey:    cfg.AI.APIKey,
		BaseURL:   cfg.AI.BaseURL,
		Model:     cfg.AI.Model,
		RateLimit: cfg.RateLimit,
	}, httpClient)
	if err := settingsService.Apply(ctx); err != nil {
		logger.Warn("apply ai settings failed", "module", "app", "action", "init", "resource", "settings", "result", "failed", "error", err)
	}

	translationService := service.NewTranslationService(providers, rateLimiter, cfg.RequestTimeout)
	sessionManager := service.NewSessionManager(translationService, service.SessionOptions{Delay: cfg.Debounce}, cfg.SessionIdle)

	router := transport.NewRouter(transport.Handlers{
		Languages: handler.NewLanguageHandler(),
		Translate: handler.NewTranslateHandler(translationService),
		Sessions:  handler.NewSessionHandler(sessionManager),
		Settings:  handler.NewSettingsHandler(settingsService),
	}, transport.RouterOptions{
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
	})

	return &App{
		cfg:        cfg,
		db:         dbConn,
		Translator: translationService,
		Settings:   settingsService,
		Sessions:   sessionManager,
		router:     router,
	}, nil
}

// Handler returns the HTTP handler serving the API, docs, metrics and the
// static front-end.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP and sweeps idle sessions until ctx is cancelled or the
// server fails, then shuts both down and closes every open session.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	sched := scheduler.New(a.Sessions, sweepInterval(a.cfg.SessionIdle))

	g.Go(func() error {
		logger.Info("http server listening", "module", "app", "action", "start", "resource", "http", "result", "ok", "addr", a.cfg.Addr)
		if err := a.router.Start(a.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sched.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.router.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		logger.Info("http server stopped", "module", "app", "action", "stop", "resource", "http", "result", "ok")
		return nil
	})

	err := g.Wait()
	a.Sessions.CloseAll()
	return err
}

// Close closes every session and the database.
func (a *App) Close() error {
	a.Sessions.CloseAll()
	return a.db.Close()
}

// sweepInterval checks for idle sessions twice per idle timeout.
func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 2
	if interval < minSweepInterval {
		return minSweepInterval
	}
	if interval > maxSweepInterval {
		return maxSweepInterval
	}
	return interval
}
