package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/atrium-dev/atrium/internal/config"
	"github.com/atrium-dev/atrium/internal/tasks"
)

// StartCleanupScheduler runs a periodic check (every minute) and enqueues a
// cleanup sweep whenever the configured cron schedule fires
func StartCleanupScheduler(client *asynq.Client, cfg *config.Config, logger zerolog.Logger) {
	schedule := parseCleanupSchedule(cfg.Uploads.CleanupSchedule)
	if schedule == nil {
		logger.Warn().
			Str("cleanup_schedule", cfg.Uploads.CleanupSchedule).
			Msg("Invalid cleanup schedule, document cleanup disabled")
		return
	}

	next := schedule.Next(time.Now())
	logger.Info().
		Str("cleanup_schedule", cfg.Uploads.CleanupSchedule).
		Time("next_cleanup_at", next).
		Msg("Document cleanup scheduler started")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		if now.Before(next) {
			continue
		}

		task, err := tasks.NewDocumentCleanupTask()
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create cleanup task")
		} else if _, err := client.Enqueue(task, asynq.Queue("low"), asynq.Timeout(10*time.Minute)); err != nil {
			logger.Error().Err(err).Msg("Failed to enqueue cleanup task")
		} else {
			logger.Info().Msg("Cleanup sweep enqueued")
		}

		next = schedule.Next(now)
	}
}

// parseCleanupSchedule parses a standard 5-field cron expression
func parseCleanupSchedule(expr string) cron.Schedule {
	if expr == "" {
		return nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil
	}
	return schedule
}
