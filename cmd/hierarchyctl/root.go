package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	itemmigrations "github.com/ghuser/itemtree/migrations/item"
	"github.com/ghuser/itemtree/pkg/app"
	"github.com/ghuser/itemtree/pkg/config"
	"github.com/ghuser/itemtree/pkg/database"
	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/pkg/migrator"
	itemServices "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
	"github.com/ghuser/itemtree/services/item/infrastructure/persistence/postgres"
)

// hierarchy is the read side of the item store the commands need.
type hierarchy interface {
	VerifyIntegrity(ctx context.Context, tenantID uuid.UUID) (*domainsvcs.IntegrityReport, error)
	GetTree(ctx context.Context, tenantID uuid.UUID, rootID *uuid.UUID) ([]*domainsvcs.TreeNode, error)
	Statistics(ctx context.Context, tenantID uuid.UUID) (*models.Statistics, error)
}

type migrationRunner interface {
	Up(ctx context.Context) (int, error)
	Down(ctx context.Context) error
	Status(ctx context.Context) ([]migrator.Status, error)
}

// backend is what a command operates on; close releases it.
type backend struct {
	store      hierarchy
	tenants    repositories.TenantLookup
	migrations migrationRunner
	close      func()
}

type opener func(ctx context.Context, databaseURL string) (*backend, error)

func newRootCmd(open opener) *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:           "hierarchyctl",
		Short:         "Inspect item hierarchies: integrity, trees and statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "Postgres DSN (default: DEFINITION_DATABASE_URL)")

	connect := func(cmd *cobra.Command) (*backend, error) {
		b, err := open(cmd.Context(), databaseURL)
		if err != nil {
			return nil, withCode(exitDB, err)
		}
		return b, nil
	}

	cmd.AddCommand(newVerifyCmd(connect))
	cmd.AddCommand(newTreeCmd(connect))
	cmd.AddCommand(newStatsCmd(connect))
	cmd.AddCommand(newMigrateCmd(connect))
	return cmd
}

// openDatabase wires the Postgres-backed hierarchy store. Logs go to stderr
// so stdout carries only command output.
func openDatabase(ctx context.Context, databaseURL string) (*backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if databaseURL == "" {
		databaseURL = cfg.DefinitionDatabaseURL
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel)

	db, err := database.NewPool(ctx, databaseURL, log, database.PoolOptions{MaxOpenConns: 4, MaxIdleConns: 1})
	if err != nil {
		return nil, err
	}
	migrations, err := migrator.New(db.DB(), itemmigrations.FS, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a := &app.Application{Config: cfg, Db: db, Logger: log}
	return &backend{
		store:      itemServices.New(a).Hierarchy,
		tenants:    postgres.NewReferenceRepository(db),
		migrations: migrations,
		close:      func() { _ = db.Close() },
	}, nil
}

func parseTenant(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, withCode(exitUsage, fmt.Errorf("invalid --tenant: %w", err))
	}
	return id, nil
}

func Execute() {
	if err := newRootCmd(openDatabase).Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
