// Package server wires the application together: configuration, the
// credential store, password hashing, token management, the identity
// service and the HTTP server, with graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"usermgmt/internal/auth"
	"usermgmt/internal/config"
	"usermgmt/internal/httpapi"
	"usermgmt/internal/logging"
	"usermgmt/internal/migrations"
	"usermgmt/internal/users"
)

type App struct {
	cfg    *config.Config
	logger logging.Logger
	db     *sql.DB // nil in the testing environment
	router *gin.Engine
}

// NewApp builds every component by explicit construction. A missing
// signing configuration or an unreachable database fails here, before
// the server starts accepting requests.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	switch cfg.Env {
	case config.EnvDev:
		gin.SetMode(gin.DebugMode)
	case config.EnvTesting:
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	var (
		repo users.Repository
		db   *sql.DB
	)
	if cfg.Env == config.EnvTesting {
		repo = users.NewInMemoryRepository()
	} else {
		db, err = openDB(context.Background(), cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		repo = users.NewPostgresRepository(db)
	}

	svc := users.NewService(repo, auth.NewBcryptHasher(0), tokens)
	router := httpapi.NewRouter(logger, svc, tokens)

	return &App{cfg: cfg, logger: logger, db: db, router: router}, nil
}

// Router exposes the HTTP handler, mainly for tests.
func (a *App) Router() *gin.Engine {
	return a.router
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}

func (a *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is canceled or an OS signal arrives,
// then shuts the server down gracefully and closes the database.
func (a *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	a.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      a.router,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info(ctx, "starting HTTP server", "addr", a.cfg.HTTP.Addr, "env", a.cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info(ctx, "stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.closeDB(ctx)
		return err
	case err := <-errCh:
		a.closeDB(ctx)
		return err
	}
}

func (a *App) closeDB(ctx context.Context) {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn(ctx, "closing database", "error", err.Error())
	}
}
