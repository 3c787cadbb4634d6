package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

type bigQueryMigrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

func newBigQueryMigrator(ctx context.Context, projectID, datasetID string) (*bigQueryMigrator, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create BigQuery client: %w", err)
	}
	return &bigQueryMigrator{client: client, projectID: projectID, datasetID: datasetID}, nil
}

func (b *bigQueryMigrator) Close() error { return b.client.Close() }

func (b *bigQueryMigrator) table() string {
	return fmt.Sprintf("`%s.%s.schema_migrations`", b.projectID, b.datasetID)
}

func (b *bigQueryMigrator) EnsureSchemaMigrationsTable(ctx context.Context) error {
	return b.run(ctx, b.client.Query(`
		CREATE TABLE IF NOT EXISTS `+b.table()+` (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`))
}

func (b *bigQueryMigrator) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	it, err := b.client.Query(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM ` + b.table() + `
		ORDER BY version ASC
	`).Read(ctx)
	if err != nil {
		// If table doesn't exist yet, return empty list
		if strings.Contains(err.Error(), "Not found") {
			return nil, nil
		}
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64
			Name      string
			AppliedAt time.Time `bigquery:"applied_at"`
			Checksum  bigquery.NullString
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}
	return applied, nil
}

func (b *bigQueryMigrator) Execute(ctx context.Context, m Migration) error {
	if err := b.run(ctx, b.client.Query(m.SQL)); err != nil {
		return fmt.Errorf("migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

func (b *bigQueryMigrator) Record(ctx context.Context, m Migration, appliedBy string) error {
	q := b.client.Query(`
		INSERT INTO ` + b.table() + `
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: m.Version},
		{Name: "name", Value: m.Name},
		{Name: "checksum", Value: m.Checksum},
		{Name: "applied_by", Value: appliedBy},
	}
	if err := b.run(ctx, q); err != nil {
		return fmt.Errorf("record migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return nil
}

func (b *bigQueryMigrator) run(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
