// Package database centralises sqlx connection helpers.  Two drivers are
// supported: go-sql-driver/mysql for production (also works with MariaDB)
// and modernc.org/sqlite for development and single-node installs.
//
// Public entry points:
//
//	Open(ctx, opts)           – open, tune, and ping a pool.
//	Migrate(ctx, db, driver)  – apply embedded schema migrations.
//	WithTx(ctx, db, fn)       – run fn inside one transaction.
//
// Open pings the database before returning so callers can fail fast during
// bootstrap.  Callers should Close() the returned *sqlx.DB when no longer
// needed.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Options carries everything Open needs.  Password, when non-empty, is
// spliced into a MySQL DSN so the DSN itself can live in plain config.
type Options struct {
	Driver   string
	DSN      string
	Password string
	MaxOpen  int
	MaxIdle  int
}

// Open returns a *sqlx.DB with a 30-minute connection lifetime.
func Open(ctx context.Context, o Options) (*sqlx.DB, error) {
	dsn, err := buildDSN(o)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(o.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Driver, err)
	}

	maxOpen, maxIdle := o.MaxOpen, o.MaxIdle
	if maxOpen <= 0 {
		maxOpen = 15
	}
	if maxIdle < 0 {
		maxIdle = 0
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", o.Driver, err)
	}
	return db, nil
}

// buildDSN normalises the driver-specific connection string.
func buildDSN(o Options) (string, error) {
	switch o.Driver {
	case DriverMySQL:
		return mysqlDSN(o.DSN, o.Password)
	case DriverSQLite:
		return sqliteDSN(o.DSN), nil
	default:
		return "", fmt.Errorf("database: unsupported driver %q", o.Driver)
	}
}

// mysqlDSN parses dsn, injects the password, and forces parseTime so
// DATETIME columns scan into time.Time.
func mysqlDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// sqliteDSN turns on foreign keys (needed for ON DELETE CASCADE) and a busy
// timeout for every pooled connection, and stores times in the fixed-width
// SQLite text format so expiry comparisons order correctly.
func sqliteDSN(dsn string) string {
	var pragmas []string
	if !strings.Contains(dsn, "foreign_keys") {
		pragmas = append(pragmas, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "busy_timeout") {
		pragmas = append(pragmas, "_pragma=busy_timeout(5000)")
	}
	if !strings.Contains(dsn, "_time_format") {
		pragmas = append(pragmas, "_time_format=sqlite")
	}
	if len(pragmas) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pragmas, "&")
}
