// Package bigquery is the BigQuery-backed implementation of repository.Store.
//
// Rows that are updated or deleted later (users, single transactions,
// settings) are written with DML, because streamed rows cannot be modified
// while they sit in the streaming buffer. Append-only data (bulk imports and
// reports) goes through the streaming Inserter.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/fingenius/internal/repository"
)

const (
	usersTable          = "users"
	transactionsTable   = "transactions"
	reportSettingsTable = "report_settings"
	reportsTable        = "reports"
)

// Store holds a shared BigQuery client to avoid creating a new connection
// for each operation.
type Store struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

// NewStore creates a store with its own client for projectID.
func NewStore(ctx context.Context, projectID, datasetID string) (*Store, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewStore: creating client: %w", err)
	}
	return NewStoreWithClient(client, projectID, datasetID), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client *bigquery.Client, projectID, datasetID string) *Store {
	return &Store{client: client, projectID: projectID, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// table returns the fully qualified, backtick-quoted table name.
func (s *Store) table(name string) string {
	return qualifiedTable(s.projectID, s.datasetID, name)
}

func qualifiedTable(projectID, datasetID, name string) string {
	return fmt.Sprintf("`%s.%s.%s`", projectID, datasetID, name)
}

// inserter uses the fully qualified table to avoid project ID issues.
func (s *Store) inserter(name string) *bigquery.Inserter {
	return s.client.DatasetInProject(s.projectID, s.datasetID).Table(name).Inserter()
}

// runDML runs a DML statement and waits for it. It returns the number of
// affected rows when BigQuery reports it.
func runDML(ctx context.Context, q *bigquery.Query) (int64, error) {
	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return qs.NumDMLAffectedRows, nil
	}
	return 0, nil
}

// count reads a single COUNT(*) AS total row.
func count(ctx context.Context, q *bigquery.Query) (int, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("query read: %w", err)
	}
	var r countRow
	if err := it.Next(&r); err != nil {
		return 0, fmt.Errorf("iter next: %w", err)
	}
	return int(r.Total), nil
}

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)
