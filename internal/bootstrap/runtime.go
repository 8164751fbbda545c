// Package bootstrap wires the process-level dependencies shared by the
// server and the command-line tools.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"journals/internal/cache"
	"journals/internal/config"
	"journals/internal/database"
	"journals/internal/middleware"
	"journals/internal/models"
	"journals/internal/observability"
	"journals/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedIfEmpty fills an empty development database with demo data.
	SeedIfEmpty bool
}

// Runtime is the set of initialized process dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	// ShutdownTracing flushes pending spans.
	ShutdownTracing func(context.Context) error
}

// InitRuntime starts tracing, connects to the database and Redis, and
// optionally seeds a development database.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := observability.InitTracing(TracingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// A nil client means Redis is unreachable and features degrade.
	cache.InitRedis(cfg.RedisURL)

	if opts.SeedIfEmpty && !cfg.IsProduction() {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, fmt.Errorf("failed to seed development data: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), ShutdownTracing: shutdownTracing}, nil
}

// TracingConfig maps application config onto the tracer settings.
func TracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName:    "journals-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	}
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return nil
	}
	sum, err := seed.NewSeeder(db, seed.DefaultOptions()).Run(ctx)
	if err != nil {
		return err
	}
	middleware.Logger.Info("seeded empty development database",
		slog.Int("users", sum.Users),
		slog.Int("journals", sum.Journals),
	)
	return nil
}
