// Package db opens the Postgres pool backing the documents gateway.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"resume-builder/internal/shared/telemetry"
)

// ErrNoDatabaseURL is returned by Connect when no connection string is configured.
var ErrNoDatabaseURL = errors.New("DATABASE_URL is empty")

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
}

var openDB = sql.Open

// DefaultServerOptions sizes the pool for cmd/api. Editor saves and dashboard
// loads are short single-row or single-owner queries.
func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    8,
		MaxIdleConns:    4,
		ConnMaxIdleTime: 5 * time.Minute,
		ConnMaxLifetime: 30 * time.Minute,
		PingTimeout:     3 * time.Second,
	}
}

// DefaultMigrateOptions returns defaults for short-lived CLI migrations.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 10 * time.Minute,
		PingTimeout:     10 * time.Second,
	}
}

type envOverride struct {
	key   string
	apply func(o *Options, raw string) error
}

var envOverrides = []envOverride{
	{"DB_MAX_OPEN_CONNS", intSetter(func(o *Options, v int) { o.MaxOpenConns = v })},
	{"DB_MAX_IDLE_CONNS", intSetter(func(o *Options, v int) { o.MaxIdleConns = v })},
	{"DB_CONN_MAX_LIFETIME", durationSetter(func(o *Options, v time.Duration) { o.ConnMaxLifetime = v })},
	{"DB_CONN_MAX_IDLE_TIME", durationSetter(func(o *Options, v time.Duration) { o.ConnMaxIdleTime = v })},
	{"DB_PING_TIMEOUT", durationSetter(func(o *Options, v time.Duration) { o.PingTimeout = v })},
}

// OptionsFromEnv overrides defaults with DB_* env vars if present. Invalid
// values are logged and skipped.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	for _, o := range envOverrides {
		raw := strings.TrimSpace(os.Getenv(o.key))
		if raw == "" {
			continue
		}
		if err := o.apply(&opts, raw); err != nil {
			telemetry.Warn("db.env invalid", map[string]any{"key": o.key, "value": raw, "err": err.Error()})
		}
	}
	return opts
}

func intSetter(set func(*Options, int)) func(*Options, string) error {
	return func(o *Options, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("must not be negative")
		}
		set(o, v)
		return nil
	}
}

func durationSetter(set func(*Options, time.Duration)) func(*Options, string) error {
	return func(o *Options, raw string) error {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		set(o, v)
		return nil
	}
}

// normalized fills zero values with the server defaults.
func (o Options) normalized() Options {
	def := DefaultServerOptions()
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = def.MaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = def.MaxIdleConns
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = def.ConnMaxLifetime
	}
	if o.PingTimeout <= 0 {
		o.PingTimeout = def.PingTimeout
	}
	return o
}

// Connect opens the pool for databaseURL and verifies connectivity.
// The returned *sql.DB is shared by the gateway and the health check.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, ErrNoDatabaseURL
	}

	database, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	opts = opts.normalized()
	database.SetMaxOpenConns(opts.MaxOpenConns)
	database.SetMaxIdleConns(opts.MaxIdleConns)
	database.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		database.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	telemetry.Info("db.connected", PoolStats(database))
	return database, nil
}

// PoolStats summarizes the pool for logs and the health endpoint.
func PoolStats(database *sql.DB) map[string]any {
	if database == nil {
		return map[string]any{}
	}
	s := database.Stats()
	return map[string]any{
		"open":    s.OpenConnections,
		"inUse":   s.InUse,
		"idle":    s.Idle,
		"waits":   s.WaitCount,
		"maxOpen": s.MaxOpenConnections,
		"waitMs":  s.WaitDuration.Milliseconds(),
	}
}
