// Package job schedules background maintenance with cron.
package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"ChatCRM/internal/config"
	"ChatCRM/internal/lib/sl"
)

type MessageCleaner interface {
	CleanupMessages(ctx context.Context, olderThan time.Duration, keepPerRoom int) (int64, error)
}

// StartCleanup runs message retention nightly. The newest messages of each
// room survive regardless of age so history never empties completely.
func StartCleanup(conf *config.Config, cleaner MessageCleaner, log *slog.Logger) *cron.Cron {
	logger := log.With(sl.Module("job.cleanup"))

	c := cron.New()
	_, err := c.AddFunc("0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		olderThan := time.Duration(conf.Chat.RetentionDays) * 24 * time.Hour
		deleted, err := cleaner.CleanupMessages(ctx, olderThan, conf.Chat.RetentionKeep)
		if err != nil {
			logger.Error("retention cleanup failed", sl.Err(err))
			return
		}
		logger.Info("retention cleanup done", slog.Int64("deleted", deleted))
	})
	if err != nil {
		logger.Error("failed to schedule cleanup", sl.Err(err))
		return c
	}

	c.Start()
	logger.Info("cleanup job scheduled",
		slog.Int("retention_days", conf.Chat.RetentionDays),
		slog.Int("keep_per_room", conf.Chat.RetentionKeep),
	)
	return c
}
