package report

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/fingenius/internal/domain"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/repository"
	"github.com/google/uuid"
)

// Result is the outcome of one batch run.
type Result struct {
	Success        bool      `json:"success"`
	ProcessedCount int       `json:"processedCount"`
	FailedCount    int       `json:"failedCount"`
	SkippedCount   int       `json:"skippedCount"`
	Error          string    `json:"error,omitempty"`
	PeriodStart    time.Time `json:"periodStart"`
	PeriodEnd      time.Time `json:"periodEnd"`
}

// Runner generates, emails and stores the previous month's report for every
// user with an enabled setting. Users are processed one at a time and a
// failure for one user never stops the batch.
//
// The configured frequency is stored but not enacted: every run covers the
// previous calendar month. Re-running for the same month stores another report.
type Runner struct {
	settings repository.ReportSettingRepository
	pipeline *Pipeline
	now      func() time.Time
	location *time.Location
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithLocation sets the location used to compute month boundaries. Defaults to UTC.
func WithLocation(loc *time.Location) RunnerOption {
	return func(r *Runner) { r.location = loc }
}

// WithIDGenerator overrides uuid-based report IDs.
func WithIDGenerator(newID func() string) RunnerOption {
	return func(r *Runner) {
		for _, step := range r.pipeline.steps {
			if p, ok := step.(*PersistStep); ok {
				p.NewID = newID
			}
		}
	}
}

// NewRunner wires the standard aggregate, insight, deliver, persist and touch steps.
func NewRunner(
	settings repository.ReportSettingRepository,
	reports repository.ReportRepository,
	summarizer Summarizer,
	insights InsightSource,
	mail Mailer,
	opts ...RunnerOption,
) *Runner {
	r := &Runner{
		settings: settings,
		pipeline: NewPipeline(
			&AggregateStep{Summarizer: summarizer},
			&InsightStep{Insights: insights},
			&DeliverStep{Mailer: mail},
			&PersistStep{Reports: reports, NewID: uuid.NewString},
			&TouchSettingStep{Settings: settings},
		),
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every enabled setting. It reports Success=false only when the
// settings cannot be read at all.
func (r *Runner) Run(ctx context.Context) Result {
	log := logger.FromContext(ctx)

	now := r.now().In(r.location)
	start, end := PreviousMonth(now)
	result := Result{PeriodStart: start, PeriodEnd: end}

	log.Info().
		Time("period_start", start).
		Time("period_end", end).
		Msg("Starting report run")

	rows, err := r.settings.ListEnabledSettingsWithOwner(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load report settings")
		result.Error = "Report process failed"
		return result
	}

	for _, row := range rows {
		if row.Owner == nil {
			log.Warn().Str("setting_id", row.Setting.ID).Msg("User not found for report setting, skipping")
			result.SkippedCount++
			continue
		}

		if err := r.runUser(ctx, row, start, end, now); err != nil {
			log.Error().
				Err(err).
				Str("user_id", row.Owner.ID).
				Str("setting_id", row.Setting.ID).
				Msg("Failed to process report")
			result.FailedCount++
			continue
		}

		result.ProcessedCount++
	}

	result.Success = true
	log.Info().
		Int("processed", result.ProcessedCount).
		Int("failed", result.FailedCount).
		Int("skipped", result.SkippedCount).
		Msg("Report run completed")

	return result
}

func (r *Runner) runUser(ctx context.Context, row domain.SettingWithOwner, start, end, now time.Time) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicError{value: p}
		}
	}()

	ctx = logger.WithContext(ctx, logger.FromContext(ctx).With().Str("user_id", row.Owner.ID).Logger())

	run := &UserRun{
		Setting:     row.Setting,
		User:        row.Owner,
		PeriodStart: start,
		PeriodEnd:   end,
		Now:         now,
	}
	if err := r.pipeline.Execute(ctx, run); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("report_id", run.Report.ID).
		Str("status", string(run.Report.Status)).
		Msg("Processed report")
	return nil
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic while processing report: %v", p.value)
}
