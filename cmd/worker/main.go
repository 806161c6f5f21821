package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finbotdev/finbot/internal/jobs"
	"github.com/finbotdev/finbot/internal/jobs/inmemory"
	"github.com/finbotdev/finbot/internal/logger"
	"github.com/finbotdev/finbot/internal/store"
)

// The worker scans for due reminders and dispatches one notification job per
// reminder per day. Delivery here is the log stream; a chat platform adapter
// would hook into the same handler.
func main() {
	_ = godotenv.Load()

	var (
		dbPath   = flag.String("db", envOr("FINBOT_DB_PATH", "finbot.db"), "SQLite database path")
		interval = flag.Duration("interval", time.Hour, "how often to scan for due reminders")
	)
	flag.Parse()

	log := logger.New()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db_path", *dbPath).Msg("Failed to open database")
	}
	defer st.Close()

	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	log.Info().Dur("interval", *interval).Msg("Starting reminder worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := func(ctx context.Context, job jobs.Job) error {
		notify, ok := job.(*jobs.NotifyReminderJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", notify.JobID).
			Int64("reminder_id", notify.ReminderID).
			Str("user_id", notify.UserID).
			Str("due_date", notify.DueDate).
			Str("text", notify.Text).
			Msg("Reminder due")
		return nil
	}

	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job queue")
	}

	// notified tracks reminder ids already dispatched today so a reminder
	// fires once per day, not once per scan.
	notified := make(map[int64]string)

	scan := func() {
		today := time.Now().Format("2006-01-02")
		due, err := st.DueReminders(ctx, today)
		if err != nil {
			log.Error().Err(err).Msg("Scanning due reminders failed")
			return
		}

		for _, r := range due {
			if notified[r.ID] == today {
				continue
			}
			job := &jobs.NotifyReminderJob{
				ReminderID: r.ID,
				UserID:     r.UserID,
				Text:       r.Text,
				DueDate:    r.DueDate,
				Category:   r.Category,
			}
			if err := jobQueue.PublishNotifyReminder(ctx, job); err != nil {
				log.Error().Err(err).Int64("reminder_id", r.ID).Msg("Publishing reminder job failed")
				continue
			}
			notified[r.ID] = today
		}
	}

	scan()
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			scan()
		case <-quit:
			log.Info().Msg("Shutting down worker...")

			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := jobQueue.Stop(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Error stopping job queue")
			}
			log.Info().Msg("Worker exited")
			return
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
