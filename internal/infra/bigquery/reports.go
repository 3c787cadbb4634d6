package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/fingenius/internal/domain"
	"google.golang.org/api/iterator"
)

const reportColumns = `
	report_id, user_id, title, description, period_month, period_start, period_end,
	status, payload, created_ts`

// InsertReport implements repository.ReportRepository. Reports are never
// updated, so they are streamed.
func (s *Store) InsertReport(ctx context.Context, report *domain.Report) error {
	row, err := reportToRow(report)
	if err != nil {
		return fmt.Errorf("InsertReport: %w", err)
	}
	if err := s.inserter(reportsTable).Put(ctx, row); err != nil {
		return fmt.Errorf("InsertReport: inserting row: %w", err)
	}
	return nil
}

// ListReports implements repository.ReportRepository.
func (s *Store) ListReports(ctx context.Context, userID string, page domain.Page) ([]*domain.Report, int, error) {
	page = page.Normalize()

	cq := s.client.Query(`SELECT COUNT(*) AS total FROM ` + s.table(reportsTable) + ` WHERE user_id = @user_id`)
	cq.Parameters = []bigquery.QueryParameter{{Name: "user_id", Value: userID}}
	total, err := count(ctx, cq)
	if err != nil {
		return nil, 0, fmt.Errorf("ListReports: counting: %w", err)
	}

	q := s.client.Query(`
		SELECT ` + reportColumns + `
		FROM ` + s.table(reportsTable) + `
		WHERE user_id = @user_id
		ORDER BY created_ts DESC, report_id DESC
		LIMIT @limit OFFSET @offset
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "user_id", Value: userID},
		{Name: "limit", Value: int64(page.PageSize)},
		{Name: "offset", Value: int64(page.Offset())},
	}

	reports, err := readReports(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("ListReports: %w", err)
	}
	return reports, total, nil
}

// ListReportsSince implements repository.ReportRepository.
func (s *Store) ListReportsSince(ctx context.Context, since time.Time) ([]*domain.Report, error) {
	q := s.client.Query(`
		SELECT ` + reportColumns + `
		FROM ` + s.table(reportsTable) + `
		WHERE created_ts >= @since
		ORDER BY created_ts, report_id
	`)
	q.Parameters = []bigquery.QueryParameter{{Name: "since", Value: since}}

	reports, err := readReports(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListReportsSince: %w", err)
	}
	return reports, nil
}

func readReports(ctx context.Context, q *bigquery.Query) ([]*domain.Report, error) {
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("query read: %w", err)
	}

	var reports []*domain.Report
	for {
		var r ReportRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iter next: %w", err)
		}
		rep, err := rowToReport(&r)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
