// Package app assembles the sheetdesk server from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/govalyteams/sheetdesk/internal/api"
	"github.com/govalyteams/sheetdesk/internal/api/handler"
	"github.com/govalyteams/sheetdesk/internal/api/metrics"
	"github.com/govalyteams/sheetdesk/internal/core/domain"
	"github.com/govalyteams/sheetdesk/internal/core/ports"
	"github.com/govalyteams/sheetdesk/internal/core/service"
	"github.com/govalyteams/sheetdesk/internal/infrastructure/db/memory"
	mongoinfra "github.com/govalyteams/sheetdesk/internal/infrastructure/db/mongo"
	redisinfra "github.com/govalyteams/sheetdesk/internal/infrastructure/db/redis"
	"github.com/govalyteams/sheetdesk/internal/infrastructure/queue"
	"github.com/govalyteams/sheetdesk/internal/pkg/config"
)

// App owns the HTTP server and every backing connection.
type App struct {
	cfg        *config.Config
	log        zerolog.Logger
	echo       *echo.Echo
	accounts   *service.AccountService
	serializer *queue.Serializer
	closers    []func(context.Context) error
}

// Option customises New.
type Option func(*options)

type options struct {
	registry *prometheus.Registry
}

// WithRegistry serves /metrics from reg instead of the global registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

type storage struct {
	accounts    ports.AccountRepository
	sheets      ports.SheetRepository
	audit       ports.AuditRepository
	idempotency ports.IdempotencyStore
	health      map[string]handler.Pinger
}

// New connects the configured backends and builds the router. On error,
// anything already opened is closed again.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, log: log}
	st, err := a.openStorage(ctx)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.serializer = queue.NewSerializer(cfg.Serializer.Workers, log.With().Str("component", "serializer").Logger(),
		queue.WithDepthObserver(metrics.ObserveQueueDepth))

	collab := service.Collaborators{
		Idempotency: st.idempotency,
		Audit:       st.audit,
		Serializer:  a.serializer,
	}
	tokens := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	a.accounts = service.NewAccountService(st.accounts, tokens, cfg.Auth.BcryptCost, collab, log.With().Str("component", "accounts").Logger())
	sheets := service.NewSheetService(st.sheets, st.accounts, collab, log.With().Str("component", "sheets").Logger())

	if cfg.Bootstrap.Username != "" {
		if _, _, err := a.Bootstrap(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Password); err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	deps := api.Deps{
		Accounts:  a.accounts,
		Sheets:    sheets,
		JWTSecret: cfg.Auth.JWTSecret,
		Logger:    log,
		Health:    st.health,
	}
	if o.registry != nil {
		deps.Registerer, deps.Gatherer = o.registry, o.registry
	}
	a.echo = api.NewRouter(deps)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (*storage, error) {
	st := &storage{health: map[string]handler.Pinger{}}

	switch a.cfg.Store.Backend {
	case config.BackendMongo:
		client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{
			URI:      a.cfg.Mongo.URI,
			Database: a.cfg.Mongo.Database,
			Timeout:  a.cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		if err := mongoinfra.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		st.accounts = mongoinfra.NewAccountRepository(db)
		st.sheets = mongoinfra.NewSheetRepository(db)
		st.audit = mongoinfra.NewAuditRepository(db)
		st.health["mongo"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) })
		a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("using mongo store")

	default:
		store := memory.NewStore()
		st.accounts, st.sheets, st.audit = store.Accounts(), store.Sheets(), store.Audit()
		st.idempotency = store.Idempotency().WithTTL(a.cfg.Store.IdempotencyTTL)
		st.health["store"] = handler.PingFunc(func(context.Context) error { return nil })
		a.log.Warn().Msg("using in-memory store, data is lost on restart")
	}

	if a.cfg.Redis.Addr != "" {
		rc, err := redisinfra.Connect(ctx, redisinfra.Config{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rc.Close() })
		st.idempotency = redisinfra.NewIdempotencyStore(rc, a.cfg.Store.IdempotencyTTL)
		st.health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rc.Ping(ctx).Err() })
	} else if st.idempotency == nil {
		st.idempotency = memory.NewStore().Idempotency().WithTTL(a.cfg.Store.IdempotencyTTL)
		a.log.Warn().Msg("REDIS_ADDR not set, idempotency keys are kept in process")
	}
	return st, nil
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler { return a.echo }

// Bootstrap seeds the first CEO account if the identity store is empty.
func (a *App) Bootstrap(ctx context.Context, username, password string) (*domain.Account, bool, error) {
	account, created, err := a.accounts.Bootstrap(ctx, username, password)
	if err != nil {
		return nil, false, fmt.Errorf("bootstrap: %w", err)
	}
	if created {
		a.log.Info().Str("username", account.Username).Str("account_id", account.ID).Msg("bootstrap account created")
	}
	return account, created, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           a.echo,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("env", a.cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := a.Close(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("failed to close backends")
	}
	if serveErr != nil {
		return fmt.Errorf("serve: %w", serveErr)
	}
	return nil
}

// Close drains the serializer and closes backends in reverse order.
func (a *App) Close(ctx context.Context) error {
	if a.serializer != nil {
		a.serializer.Stop()
		a.serializer = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
