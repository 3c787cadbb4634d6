// Command migrate applies the numbered SQL migrations to BigQuery or Postgres
// and records them in a schema_migrations table.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/dvloznov/fingenius/internal/config"
	"github.com/dvloznov/fingenius/internal/logger"
)

// migrator is a backend that can run SQL and track applied migrations.
type migrator interface {
	EnsureSchemaMigrationsTable(ctx context.Context) error
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
	Execute(ctx context.Context, m Migration) error
	Record(ctx context.Context, m Migration, appliedBy string) error
	Close() error
}

func main() {
	cfg := config.FromEnv()

	driver := flag.String("driver", cfg.StorageBackend, "Migration target: bigquery or postgres")
	projectID := flag.String("project", cfg.GCPProjectID, "GCP project ID (bigquery)")
	datasetID := flag.String("dataset", cfg.BQDataset, "BigQuery dataset ID")
	databaseURL := flag.String("database-url", cfg.DatabaseURL, "Postgres connection URL")
	appliedBy := flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
	migrationsDir := flag.String("migrations", "", "Path to migrations directory (default migrations/<driver>)")
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	ctx := logger.WithContext(context.Background(), log)

	dir := *migrationsDir
	if dir == "" {
		dir = "migrations/" + *driver
	}

	var (
		m   migrator
		err error
	)
	switch *driver {
	case config.BackendBigQuery:
		if *projectID == "" {
			log.Fatal().Msg("-project (or GCP_PROJECT_ID) is required for bigquery")
		}
		m, err = newBigQueryMigrator(ctx, *projectID, *datasetID)
	case config.BackendPostgres:
		m, err = newPostgresMigrator(ctx, *databaseURL)
	default:
		log.Fatal().Str("driver", *driver).Msg("Unsupported driver, use bigquery or postgres")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer m.Close()

	resolved, err := resolveMigrationsDir(dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to locate migrations")
	}

	if err := run(ctx, m, resolved, map[string]string{
		"PROJECT_ID": *projectID,
		"DATASET_ID": *datasetID,
	}, *appliedBy); err != nil {
		log.Error().Err(err).Msg("Migration failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, m migrator, dir string, vars map[string]string, appliedBy string) error {
	log := logger.FromContext(ctx)

	if err := m.EnsureSchemaMigrationsTable(ctx); err != nil {
		return err
	}

	migrations, err := readMigrations(dir, vars, log)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(migrations)).Str("dir", dir).Msg("Found migration files")

	applied, err := m.AppliedMigrations(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("count", len(applied)).Msg("Found already applied migrations")

	pending, err := pendingMigrations(migrations, applied)
	if err != nil {
		return err
	}

	for _, migration := range pending {
		log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("Applying migration")

		if err := m.Execute(ctx, migration); err != nil {
			return err
		}
		if err := m.Record(ctx, migration, appliedBy); err != nil {
			return err
		}
	}

	if len(pending) == 0 {
		log.Info().Msg("No new migrations to apply. Database is up to date.")
	} else {
		log.Info().Int("applied", len(pending)).Msg("Migrations applied")
	}
	return nil
}
