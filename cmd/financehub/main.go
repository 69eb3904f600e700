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

	"github.com/hibiken/asynq"

	"github.com/financehub/financehub/internal/app"
	"github.com/financehub/financehub/internal/auth"
	"github.com/financehub/financehub/internal/closures"
	"github.com/financehub/financehub/internal/dashboard"
	"github.com/financehub/financehub/internal/observability"
	"github.com/financehub/financehub/internal/operations"
	"github.com/financehub/financehub/internal/platform/cache"
	"github.com/financehub/financehub/internal/platform/db"
	"github.com/financehub/financehub/internal/rates"
	"github.com/financehub/financehub/internal/rbac"
	"github.com/financehub/financehub/internal/settings"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/stores"
	"github.com/financehub/financehub/internal/users"
	"github.com/financehub/financehub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app.LoadDotEnv(slog.Default())
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()
	if err := db.Migrate(ctx, dbpool); err != nil {
		logger.Error("migrate schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpts := cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	redisClient, err := cache.New(ctx, redisOpts)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(redisOpts.AsynqOpts())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	svc := app.NewServices(app.ServiceDeps{
		Config:   cfg,
		Pool:     dbpool,
		Redis:    redisClient,
		Logger:   logger,
		Notifier: jobClient,
		Metrics:  metrics,
	})
	if err := svc.Settings.Load(ctx); err != nil {
		logger.Warn("load settings, using defaults", slog.Any("error", err))
	}

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	lockout := auth.NewLockout(redisClient, svc.Settings)
	authService := auth.NewService(svc.Users, lockout, logger.With(slog.String("module", "auth")))

	var provisioner auth.Provisioner
	if cfg.AuthAutoProvision {
		provisioner = svc.Users
	}
	authenticator := auth.NewAuthenticator(tokens, sessionManager, svc.Users, provisioner, logger)
	rbacMiddleware := rbac.Middleware{Logger: logger}

	inspector := asynq.NewInspector(redisOpts.AsynqOpts())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Authenticator:  authenticator,
		Metrics:        metrics,
		Readiness: map[string]app.Pinger{
			"postgres": dbpool,
			"redis":    app.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
		},
		AuthHandler:       auth.NewHandler(logger, authService, tokens, sessionManager, csrfManager, svc.Users, rbacMiddleware, app.LoginLimiter(10)),
		StoresHandler:     stores.NewHandler(logger, svc.Stores, rbacMiddleware),
		OperationsHandler: operations.NewHandler(logger, svc.Operations, rbacMiddleware),
		ClosuresHandler:   closures.NewHandler(logger, svc.Closures, shared.NewIdempotencyStore(dbpool), svc.Settings, rbacMiddleware),
		UsersHandler:      users.NewHandler(logger, svc.Users, rbacMiddleware),
		RolesHandler:      rbac.NewRolesHandler(rbacMiddleware),
		SettingsHandler:   settings.NewHandler(logger, svc.Settings, rbacMiddleware),
		RatesHandler:      rates.NewHandler(logger, svc.Rates, rbacMiddleware),
		DashboardHandler:  dashboard.NewHandler(logger, svc.Dashboard, rbacMiddleware),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
