package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/dvloznov/fingenius/internal/report"
)

// ReportRunner runs one report batch.
type ReportRunner interface {
	Run(ctx context.Context) report.Result
}

// ErrBatchFailed is returned when the batch could not start at all, which is
// the only case worth retrying. Per-user failures are already isolated.
var ErrBatchFailed = errors.New("report batch failed")

// NewGenerateReportsHandler returns a JobHandler that runs the batch and
// records its Result on the job.
func NewGenerateReportsHandler(runner ReportRunner) JobHandler {
	return func(ctx context.Context, job Job) error {
		reportJob, ok := job.(*GenerateReportsJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log := logger.FromContext(ctx).With().
			Str("job_id", reportJob.JobID).
			Str("triggered_by", reportJob.TriggeredBy).
			Int("attempt", reportJob.RetryCount+1).
			Logger()
		log.Info().Msg("Processing report job")

		result := runner.Run(logger.WithContext(ctx, log))
		reportJob.Result = &result

		if !result.Success {
			log.Error().Str("error", result.Error).Msg("Report job failed")
			return fmt.Errorf("%w: %s", ErrBatchFailed, result.Error)
		}

		log.Info().
			Int("processed", result.ProcessedCount).
			Int("failed", result.FailedCount).
			Int("skipped", result.SkippedCount).
			Msg("Report job completed")
		return nil
	}
}
