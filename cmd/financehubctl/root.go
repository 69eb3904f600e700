package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/financehub/financehub/internal/app"
	"github.com/financehub/financehub/internal/platform/cache"
	"github.com/financehub/financehub/internal/platform/db"
	"github.com/financehub/financehub/internal/rbac"
)

var rootCmd = &cobra.Command{
	Use:   "financehubctl",
	Short: "Operational commands for FinanceHub",
	Long: `financehubctl applies the schema, seeds demo data, manages accounts,
drives background jobs and previews closures against the configured database.

Configuration is read from the same environment variables as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// systemPrincipal is the actor recorded for changes made from the command line.
var systemPrincipal = &rbac.Principal{ID: "financehubctl", Email: "financehubctl", Role: rbac.RoleDirector, Active: true}

type cliRuntime struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

// openRuntime loads configuration and connects to Postgres, plus Redis when asked.
func openRuntime(ctx context.Context, withRedis bool) (*cliRuntime, error) {
	app.LoadDotEnv(nil)
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	rt := &cliRuntime{cfg: cfg, logger: app.NewLogger(cfg)}
	rt.pool, err = db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return nil, err
	}
	if withRedis {
		rt.redis, err = cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			rt.pool.Close()
			return nil, err
		}
	}
	return rt, nil
}

func (rt *cliRuntime) services() *app.Services {
	return app.NewServices(app.ServiceDeps{Config: rt.cfg, Pool: rt.pool, Redis: rt.redis, Logger: rt.logger})
}

func (rt *cliRuntime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	rt.pool.Close()
}
