package main

import (
	"context"
	"fmt"

	"github.com/dvloznov/fingenius/internal/infra/postgres"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresMigrator struct {
	db *pgxpool.Pool
}

func newPostgresMigrator(ctx context.Context, databaseURL string) (*postgresMigrator, error) {
	pool, err := postgres.ConnectDB(ctx, databaseURL, logger.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	return &postgresMigrator{db: pool}, nil
}

func (p *postgresMigrator) Close() error {
	p.db.Close()
	return nil
}

func (p *postgresMigrator) EnsureSchemaMigrationsTable(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			checksum   TEXT,
			applied_by TEXT
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	return nil
}

func (p *postgresMigrator) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	rows, err := p.db.Query(ctx, `
		SELECT version, name, applied_at, COALESCE(checksum, ''), COALESCE(applied_by, '')
		FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var am AppliedMigration
		if err := rows.Scan(&am.Version, &am.Name, &am.AppliedAt, &am.Checksum, &am.AppliedBy); err != nil {
			return nil, fmt.Errorf("scanning applied migration: %w", err)
		}
		applied = append(applied, am)
	}
	return applied, rows.Err()
}

// Execute runs the migration as a single simple-protocol batch.
func (p *postgresMigrator) Execute(ctx context.Context, m Migration) error {
	if _, err := p.db.Exec(ctx, m.SQL); err != nil {
		return fmt.Errorf("migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

func (p *postgresMigrator) Record(ctx context.Context, m Migration, appliedBy string) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO schema_migrations (version, name, checksum, applied_by)
		VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, appliedBy)
	if err != nil {
		return fmt.Errorf("record migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}
