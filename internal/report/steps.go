package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/mailer"
	"github.com/dvloznov/fingenius/internal/repository"
)

// Step is one stage of a single user's report run.
type Step interface {
	Execute(ctx context.Context, run *UserRun) error
}

// UserRun holds the state carried across the steps for one user.
type UserRun struct {
	Setting     *domain.ReportSetting
	User        *domain.User
	PeriodStart time.Time
	PeriodEnd   time.Time
	Now         time.Time

	Summary   *domain.Summary
	Insights  domain.InsightOutcome
	Delivered bool
	Report    *domain.Report
}

// AggregateStep builds the period summary. A nil summary is not an error.
type AggregateStep struct {
	Summarizer Summarizer
}

func (s *AggregateStep) Execute(ctx context.Context, run *UserRun) error {
	summary, err := s.Summarizer.Aggregate(ctx, run.User.ID, run.PeriodStart, run.PeriodEnd)
	if err != nil {
		return err
	}
	run.Summary = summary
	return nil
}

// InsightStep asks for insights when there is a summary.
type InsightStep struct {
	Insights InsightSource
}

func (s *InsightStep) Execute(ctx context.Context, run *UserRun) error {
	if run.Summary == nil {
		run.Insights = domain.InsightOutcome{Status: domain.InsightsNotRequested, Items: []string{}}
		return nil
	}
	run.Insights = s.Insights.Generate(ctx, run.Summary)
	return nil
}

// DeliverStep emails the report. Delivery errors only mark the run as undelivered.
type DeliverStep struct {
	Mailer Mailer
}

func (s *DeliverStep) Execute(ctx context.Context, run *UserRun) error {
	if run.Summary == nil {
		return nil
	}
	log := logger.FromContext(ctx)

	msg, err := mailer.RenderReport(run.User.Email, mailer.ReportEmail{
		UserName:    run.User.Name,
		Title:       MonthlyTitle(run.PeriodStart),
		PeriodLabel: run.Summary.PeriodLabel,
		Summary:     run.Summary,
		Insights:    run.Insights.Items,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", run.User.ID).Msg("Failed to render report email")
		return nil
	}

	if err := s.Mailer.Send(ctx, msg); err != nil {
		log.Warn().Err(err).Str("user_id", run.User.ID).Msg("Report email delivery failed")
		return nil
	}

	run.Delivered = true
	log.Info().Str("user_id", run.User.ID).Msg("Report email sent")
	return nil
}

// PersistStep stores the report with its final status.
type PersistStep struct {
	Reports repository.ReportRepository
	NewID   func() string
}

func (s *PersistStep) Execute(ctx context.Context, run *UserRun) error {
	insights := run.Insights
	if insights.Items == nil {
		insights.Items = []string{}
	}

	report := &domain.Report{
		ID:          s.NewID(),
		UserID:      run.User.ID,
		Title:       MonthlyTitle(run.PeriodStart),
		Description: "Automated monthly financial report",
		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		Status:      domain.StatusFor(run.Summary != nil, run.Delivered),
		Payload: domain.ReportPayload{
			Summary:  run.Summary,
			Insights: insights,
		},
		CreatedAt: run.Now,
	}

	if err := s.Reports.InsertReport(ctx, report); err != nil {
		return err
	}
	run.Report = report
	return nil
}

// TouchSettingStep records that the setting was processed, and when it was last sent.
type TouchSettingStep struct {
	Settings repository.ReportSettingRepository
}

func (s *TouchSettingStep) Execute(ctx context.Context, run *UserRun) error {
	var sentAt *time.Time
	if run.Delivered {
		now := run.Now
		sentAt = &now
	}
	return s.Settings.MarkReportSettingProcessed(ctx, run.Setting.ID, run.Now, sentAt)
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially and stops at the first error.
func (p *Pipeline) Execute(ctx context.Context, run *UserRun) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, run); err != nil {
			return fmt.Errorf("report step %d (%T) failed: %w", i+1, step, err)
		}
	}
	return nil
}
