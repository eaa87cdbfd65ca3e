// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Digital Hub HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire services, the notification hub and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/digitalhub/internal/api"
	"github.com/taibuivan/digitalhub/internal/news"
	"github.com/taibuivan/digitalhub/internal/notify"
	"github.com/taibuivan/digitalhub/internal/platform/cache"
	"github.com/taibuivan/digitalhub/internal/platform/config"
	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/mail"
	"github.com/taibuivan/digitalhub/internal/platform/metrics"
	"github.com/taibuivan/digitalhub/internal/platform/middleware"
	"github.com/taibuivan/digitalhub/internal/platform/migration"
	pgstore "github.com/taibuivan/digitalhub/internal/platform/postgres"
	"github.com/taibuivan/digitalhub/internal/platform/ratelimit"
	redisstore "github.com/taibuivan/digitalhub/internal/platform/redis"
	"github.com/taibuivan/digitalhub/internal/platform/sec"
	"github.com/taibuivan/digitalhub/internal/users/account"
	"github.com/taibuivan/digitalhub/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("mail_enabled", cfg.MailEnabled()),
	)

	// Root context for background workers (hub relay, limiter janitor).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup gets a 30s deadline so misconfiguration fails fast.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_failed", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(startupCtx, cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Security ───────────────────────────────────────────────────────
	tokens, err := sec.NewTokenService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer)
	must(log, err, "initialize jwt service")
	hasher := sec.NewPasswordHasher(cfg.BcryptCost, cfg.HashWorkers)
	m := metrics.New()

	// ── 7. Notifications ──────────────────────────────────────────────────
	hub := notify.NewHub(rdb, log)
	must(log, hub.Start(rootCtx), "start notification hub")

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	var resetNotifier auth.ResetNotifier = mail.NewLogNotifier(log)
	if cfg.MailEnabled() {
		resetNotifier = mail.NewSMTPNotifier(mail.SMTPConfig{
			Host:     cfg.EmailHost,
			Port:     cfg.EmailPort,
			Username: cfg.EmailUser,
			Password: cfg.EmailPassword,
			From:     cfg.EmailFrom,
			ResetURL: cfg.PasswordResetURL,
		}, log)
	}

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewTokenBlacklist(rdb),
		auth.NewResetTokenStore(rdb),
		resetNotifier,
		tokens,
		hasher,
		m,
		log,
	)
	authWindow := ratelimit.NewWindow(rdb, constants.RedisPrefixAuthLimit, cfg.AuthRateLimitMax, cfg.RateLimitWindow)

	accountService := account.NewService(account.NewAccountRepository(pool), log)

	store := cache.NewStore(rdb)
	newsService := news.NewService(news.NewPostgresRepository(pool), store, hub, cfg.NewsCacheTTL, log)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckCache: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Metrics:   m.Handler(),
		Auth:      auth.NewHandler(authService, middleware.AuthRateLimit(authWindow)),
		Account:   account.NewHandler(accountService),
		News:      news.NewHandler(newsService, cache.NewResponseCache(store).Middleware(cfg.CacheTTL)),
		Notify:    notify.NewHandler(hub, cfg.CORSOrigins),
	}

	server := api.NewServer(rootCtx, cfg, log, m, authService, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	// Hijacked WebSocket sessions are not tracked by http.Server, so the hub
	// context is cancelled first to close them.
	rootCancel()
	<-hub.Done()

	log.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the JSON logger tagged with the application name.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors must be returned
// and handled explicitly (never panic).
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
