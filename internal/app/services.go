package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/financehub/financehub/internal/closures"
	"github.com/financehub/financehub/internal/dashboard"
	"github.com/financehub/financehub/internal/observability"
	"github.com/financehub/financehub/internal/operations"
	"github.com/financehub/financehub/internal/rates"
	"github.com/financehub/financehub/internal/settings"
	"github.com/financehub/financehub/internal/shared"
	"github.com/financehub/financehub/internal/stores"
	"github.com/financehub/financehub/internal/users"
)

// Services holds the domain services shared by the server, the worker and the CLI.
type Services struct {
	Audit      *shared.AuditLogger
	Settings   *settings.Service
	Rates      *rates.Service
	Stores     *stores.Service
	Operations *operations.Service
	Closures   *closures.Service
	Users      *users.Service
	Dashboard  *dashboard.Service
}

// ServiceDeps lists the infrastructure the services run on. Notifier and Metrics
// are optional.
type ServiceDeps struct {
	Config   *Config
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Logger   *slog.Logger
	Notifier closures.Notifier
	Metrics  *observability.Metrics
}

// NewServices wires repositories into services. Settings start at their defaults;
// callers load stored values with Settings.Load.
func NewServices(deps ServiceDeps) *Services {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	audit := shared.NewAuditLogger(deps.Pool)
	loc := cfg.Location()

	settingsSvc := settings.NewService(settings.NewRepository(deps.Pool), audit, logger.With(slog.String("module", "settings")))

	rateOpts := []rates.Option{rates.WithLocation(loc), rates.WithAudit(audit)}
	if deps.Redis != nil {
		rateOpts = append(rateOpts, rates.WithCache(deps.Redis, cfg.RateCacheTTL))
	}
	ratesSvc := rates.NewService(
		rates.NewRepository(deps.Pool),
		rates.NewClient(cfg.RateSourceURL, cfg.RateSourceTimeout),
		logger.With(slog.String("module", "rates")),
		rateOpts...,
	)

	closureOpts := []closures.Option{closures.WithRates(ratesSvc)}
	if deps.Notifier != nil {
		closureOpts = append(closureOpts, closures.WithNotifier(deps.Notifier))
	}
	if deps.Metrics != nil {
		closureOpts = append(closureOpts, closures.WithObserver(deps.Metrics))
	}

	return &Services{
		Audit:      audit,
		Settings:   settingsSvc,
		Rates:      ratesSvc,
		Stores:     stores.NewService(stores.NewRepository(deps.Pool), audit, logger.With(slog.String("module", "stores"))),
		Operations: operations.NewService(operations.NewRepository(deps.Pool), ratesSvc, audit, logger.With(slog.String("module", "operations"))),
		Closures:   closures.NewService(closures.NewRepository(deps.Pool), logger.With(slog.String("module", "closures")), closureOpts...),
		Users: users.NewService(users.NewRepository(deps.Pool), logger.With(slog.String("module", "users")),
			users.WithSecurityPolicy(settingsSvc),
			users.WithAudit(audit),
			users.WithAutoProvision(cfg.AuthAutoProvision),
		),
		Dashboard: dashboard.NewService(dashboard.NewRepository(deps.Pool), loc, logger.With(slog.String("module", "dashboard"))),
	}
}
