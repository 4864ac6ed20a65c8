// Package database wraps a pgx-backed *sql.DB with transaction helpers.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/itemtree/pkg/logger"
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
	pingTimeout            = 5 * time.Second
)

// Database is a connection pool shared by all repositories.
type Database struct {
	db *sql.DB
}

// PoolOptions tunes the pool. Zero values fall back to defaults.
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewPool opens a pool for dsn using the pgx stdlib driver and verifies it with a ping.
func NewPool(ctx context.Context, dsn string, log logger.Logger, opts ...PoolOptions) (*Database, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	o := PoolOptions{}
	if len(opts) > 0 {
		o = opts[0]
	}
	db.SetMaxOpenConns(orDefault(o.MaxOpenConns, defaultMaxOpenConns))
	db.SetMaxIdleConns(orDefault(o.MaxIdleConns, defaultMaxIdleConns))
	lifetime := o.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = defaultConnMaxLifetime
	}
	db.SetConnMaxLifetime(lifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	log.Debug("database pool opened",
		"max_open_conns", orDefault(o.MaxOpenConns, defaultMaxOpenConns),
		"max_idle_conns", orDefault(o.MaxIdleConns, defaultMaxIdleConns),
	)
	return New(db), nil
}

// New wraps an existing *sql.DB. Tests pass a sqlmock connection here.
func New(db *sql.DB) *Database {
	return &Database{db: db}
}

// DB returns the underlying pool for non-transactional queries.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise; fn's error is returned unchanged.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("database: rollback: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close closes the pool.
func (d *Database) Close() error {
	return d.db.Close()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
