package views

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type counter interface {
	Incr(ctx context.Context, postId string, viewedAt time.Time) error
}

func recordPostView(stats counter, log *slog.Logger) func(postId, viewedAt string) error {
	return func(postId, viewedAt string) error {
		at, err := time.Parse(time.RFC3339, viewedAt)
		if err != nil {
			return fmt.Errorf("bad view timestamp %q: %w", viewedAt, err)
		}
		if err := stats.Incr(context.Background(), postId, at); err != nil {
			log.Error("Failed to record post view", slog.String("post_id", postId), slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}

// RunWorker consumes recordPostView tasks until the worker is stopped.
func RunWorker(brokerUrl string, stats *RedisStats, log *slog.Logger) error {
	consumerTag := "post_views_worker"

	server, err := newBrokerServer(brokerUrl)
	if err != nil {
		return err
	}
	err = server.RegisterTasks(map[string]interface{}{
		RecordPostViewTask: recordPostView(stats, log),
	})
	if err != nil {
		return err
	}

	worker := server.NewWorker(consumerTag, 0)
	worker.SetErrorHandler(func(err error) {
		log.Error("Something went wrong", slog.String("error", err.Error()))
	})

	log.Info("Starting view events worker", slog.String("queue", "post_views"))
	return worker.Launch()
}
