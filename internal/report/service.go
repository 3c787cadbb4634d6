package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/google/uuid"
)

// Service exposes the user-facing report operations.
type Service struct {
	users      repository.UserRepository
	settings   repository.ReportSettingRepository
	reports    repository.ReportRepository
	summarizer Summarizer
	insights   InsightSource
	now        func() time.Time
}

// NewService creates a report service.
func NewService(
	users repository.UserRepository,
	settings repository.ReportSettingRepository,
	reports repository.ReportRepository,
	summarizer Summarizer,
	insights InsightSource,
) *Service {
	return &Service{
		users:      users,
		settings:   settings,
		reports:    reports,
		summarizer: summarizer,
		insights:   insights,
		now:        time.Now,
	}
}

// Preview aggregates and generates insights for an arbitrary period without
// storing or sending anything. A nil Summary in the payload means no activity.
func (s *Service) Preview(ctx context.Context, userID string, start, end time.Time) (*domain.ReportPayload, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("Preview: %w", err)
	}

	summary, err := s.summarizer.Aggregate(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("Preview: %w", err)
	}

	return &domain.ReportPayload{
		Summary:  summary,
		Insights: s.insights.Generate(ctx, summary),
	}, nil
}

// ListReports returns one page of the user's reports, newest first.
func (s *Service) ListReports(ctx context.Context, userID string, page domain.Page) ([]*domain.Report, domain.Pagination, error) {
	page = page.Normalize()
	reports, total, err := s.reports.ListReports(ctx, userID, page)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("ListReports: %w", err)
	}
	return reports, domain.NewPagination(page, total), nil
}

// GetSetting returns the user's report setting.
func (s *Service) GetSetting(ctx context.Context, userID string) (*domain.ReportSetting, error) {
	setting, err := s.settings.GetReportSettingByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetSetting: %w", err)
	}
	return setting, nil
}

// SettingUpdate is a partial update; nil fields are left unchanged.
type SettingUpdate struct {
	Frequency *domain.ReportFrequency
	IsEnabled *bool
}

// UpdateSetting updates the user's setting, creating it with defaults first if
// the user has none.
func (s *Service) UpdateSetting(ctx context.Context, userID string, update SettingUpdate) (*domain.ReportSetting, error) {
	if update.Frequency != nil && !update.Frequency.Valid() {
		return nil, fmt.Errorf("UpdateSetting: %w: %q", domain.ErrInvalidFrequency, *update.Frequency)
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("UpdateSetting: %w", err)
	}

	now := s.now()
	setting, err := s.settings.GetReportSettingByUser(ctx, userID)
	created := false
	switch {
	case errors.Is(err, domain.ErrNotFound):
		setting = domain.NewDefaultReportSetting(uuid.NewString(), userID, now)
		created = true
	case err != nil:
		return nil, fmt.Errorf("UpdateSetting: loading setting: %w", err)
	}

	if update.Frequency != nil {
		setting.Frequency = *update.Frequency
	}
	if update.IsEnabled != nil {
		setting.IsEnabled = *update.IsEnabled
	}
	setting.UpdatedAt = now

	if created {
		err = s.settings.CreateReportSetting(ctx, setting)
	} else {
		err = s.settings.UpdateReportSetting(ctx, setting)
	}
	if err != nil {
		return nil, fmt.Errorf("UpdateSetting: saving setting: %w", err)
	}

	return setting, nil
}
