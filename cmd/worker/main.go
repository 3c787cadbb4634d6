// Command worker runs the monthly report batch on a cron schedule.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/fingenius/internal/app"
	"github.com/dvloznov/fingenius/internal/config"
	"github.com/dvloznov/fingenius/internal/jobs"
	"github.com/dvloznov/fingenius/internal/jobs/inmemory"
	"github.com/dvloznov/fingenius/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	runNow := flag.Bool("run-now", false, "Enqueue one report run at startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid timezone")
	}

	// In production the queue can be replaced with Cloud Tasks or Pub/Sub.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(10, jobStore)

	log.Info().
		Str("schedule", cfg.ReportSchedule).
		Str("timezone", loc.String()).
		Str("backend", cfg.StorageBackend).
		Msg("Starting worker service")

	if err := jobQueue.Start(ctx, jobs.NewGenerateReportsHandler(application.Runner)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduleReports(ctx, scheduler, cfg.ReportSchedule, jobQueue); err != nil {
		log.Fatal().Err(err).Msg("Invalid REPORT_SCHEDULE")
	}
	scheduler.Start()

	if *runNow {
		if err := jobQueue.PublishGenerateReports(ctx, &jobs.GenerateReportsJob{TriggeredBy: jobs.TriggerManual}); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue startup run")
		}
	}

	log.Info().Msg("Worker service started, waiting for schedule...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Stop scheduling first so no new job lands while draining.
	<-scheduler.Stop().Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}
	cancel()

	logLastResult(ctx, log, jobStore)
	log.Info().Msg("Worker service exited")
}

// scheduleReports registers a cron entry that enqueues one report run per tick.
func scheduleReports(ctx context.Context, c *cron.Cron, spec string, pub jobs.Publisher) (cron.EntryID, error) {
	log := logger.FromContext(ctx)
	return c.AddFunc(spec, func() {
		job := &jobs.GenerateReportsJob{TriggeredBy: jobs.TriggerSchedule}
		if err := pub.PublishGenerateReports(ctx, job); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue scheduled report run")
			return
		}
		log.Info().Str("job_id", job.JobID).Msg("Enqueued scheduled report run")
	})
}

func logLastResult(ctx context.Context, log zerolog.Logger, store *inmemory.Store) {
	result, ok := store.LastResult(ctx)
	if !ok {
		return
	}
	log.Info().
		Bool("success", result.Success).
		Int("processed", result.ProcessedCount).
		Int("failed", result.FailedCount).
		Int("skipped", result.SkippedCount).
		Msg("Last report run")
}
