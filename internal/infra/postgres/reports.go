package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/jackc/pgx/v5"
)

const reportColumns = `id, user_id, title, description, period_start, period_end, status, payload, created_at`

// InsertReport implements repository.ReportRepository.
func (s *Store) InsertReport(ctx context.Context, report *domain.Report) error {
	payload, err := json.Marshal(report.Payload)
	if err != nil {
		return fmt.Errorf("InsertReport: marshal payload: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		report.ID, report.UserID, report.Title, report.Description,
		report.PeriodStart, report.PeriodEnd, string(report.Status), payload, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertReport: %w", err)
	}
	return nil
}

// ListReports implements repository.ReportRepository.
func (s *Store) ListReports(ctx context.Context, userID string, page domain.Page) ([]*domain.Report, int, error) {
	page = page.Normalize()

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListReports: counting: %w", err)
	}

	reports, err := s.queryReports(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		userID, page.PageSize, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("ListReports: %w", err)
	}
	return reports, total, nil
}

// ListReportsSince implements repository.ReportRepository.
func (s *Store) ListReportsSince(ctx context.Context, since time.Time) ([]*domain.Report, error) {
	reports, err := s.queryReports(ctx, `
		SELECT `+reportColumns+` FROM reports
		WHERE created_at >= $1
		ORDER BY created_at, id`, since)
	if err != nil {
		return nil, fmt.Errorf("ListReportsSince: %w", err)
	}
	return reports, nil
}

func (s *Store) queryReports(ctx context.Context, query string, args ...any) ([]*domain.Report, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var (
		r       domain.Report
		status  string
		payload []byte
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.PeriodStart, &r.PeriodEnd, &status, &payload, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Status = domain.ReportStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &r.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal payload of %s: %w", r.ID, err)
		}
	}
	return &r, nil
}
