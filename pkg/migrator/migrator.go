// Package migrator applies embedded goose migrations.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/ghuser/itemtree/pkg/logger"
)

// Migrator runs one module's migrations against a database.
type Migrator struct {
	provider *goose.Provider
	log      logger.Logger
}

// Status is the state of a single migration file.
type Status struct {
	Version   int64     `json:"version"`
	Path      string    `json:"path"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

// New returns a Migrator over the *.sql files at the root of files.
func New(db *sql.DB, files fs.FS, log logger.Logger) (*Migrator, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, files)
	if err != nil {
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	return &Migrator{provider: p, log: log}, nil
}

// Versions lists the versions of every known migration file in order.
func (m *Migrator) Versions() []int64 {
	sources := m.provider.ListSources()
	out := make([]int64, 0, len(sources))
	for _, s := range sources {
		out = append(out, s.Version)
	}
	return out
}

// Up applies all pending migrations and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	results, err := m.provider.Up(ctx)
	for _, r := range results {
		m.logResult(ctx, r)
	}
	if err != nil {
		return len(results), fmt.Errorf("migrate up: %w", err)
	}
	return len(results), nil
}

// Down rolls back the most recent migration.
func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if r != nil {
		m.logResult(ctx, r)
	}
	if err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status reports every migration and whether it has been applied.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	states, err := m.provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	out := make([]Status, 0, len(states))
	for _, s := range states {
		out = append(out, Status{
			Version:   s.Source.Version,
			Path:      s.Source.Path,
			Applied:   s.State == goose.StateApplied,
			AppliedAt: s.AppliedAt,
		})
	}
	return out, nil
}

func (m *Migrator) logResult(ctx context.Context, r *goose.MigrationResult) {
	if r.Error != nil {
		m.log.ErrorContext(ctx, "migration failed",
			"version", r.Source.Version, "direction", r.Direction, "error", r.Error)
		return
	}
	m.log.InfoContext(ctx, "migration applied",
		"version", r.Source.Version, "direction", r.Direction, "duration", r.Duration)
}
