// internal/app/bootstrap.go
//
// Process bootstrap shared by cmd/web and cmd/seed.
//
// Workflow
// --------
//   1. Build a Vault client when VAULT_ADDR is set so `vault:` references
//      in configuration resolve.
//   2. config.Load (.env, YAML, GUESTLIST_* overrides, secrets).
//   3. Start the rotating logger.
//   4. Open the database pool and, when configured, apply migrations.
//
// The returned close func releases the pool and flushes the logger.

package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yanizio/guestlist/internal/config"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/vault"
)

// Bootstrap prepares a *core.Env from configuration.  tee mirrors log
// output to stdout.
func Bootstrap(ctx context.Context, tee bool) (*core.Env, func(), error) {
	var resolve config.SecretResolver
	if os.Getenv("VAULT_ADDR") != "" {
		cli, err := vault.New()
		if err != nil {
			return nil, nil, fmt.Errorf("vault client: %w", err)
		}
		resolve = cli.Resolve
	}

	cfg, err := config.Load(ctx, resolve)
	if err != nil {
		return nil, nil, err
	}

	log, err := logger.New(cfg.Log.Dir, cfg.Log.Level, tee)
	if err != nil {
		return nil, nil, fmt.Errorf("start logger: %w", err)
	}

	log.Infow("connecting to database", "driver", cfg.Database.Driver)
	db, err := database.Open(ctx, database.Options{
		Driver:   cfg.Database.Driver,
		DSN:      cfg.Database.DSN,
		Password: cfg.Database.Password,
		MaxOpen:  cfg.Database.MaxOpen,
		MaxIdle:  cfg.Database.MaxIdle,
	})
	if err != nil {
		_ = log.Sync()
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, db, cfg.Database.Driver); err != nil {
			_ = db.Close()
			_ = log.Sync()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Infow("schema up to date")
	}

	env := &core.Env{DB: db, Log: log, Config: cfg, Now: core.SystemClock}
	closeFn := func() {
		if err := db.Close(); err != nil {
			log.Warnw("close database", "error", err)
		}
		_ = log.Sync()
		_ = zap.L().Sync()
	}
	return env, closeFn, nil
}

// RunningInTTY reports whether stdout is a character device.
func RunningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
