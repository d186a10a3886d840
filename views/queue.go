package views

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RichardKnop/machinery/v1"
	machineryconfig "github.com/RichardKnop/machinery/v1/config"
	"github.com/RichardKnop/machinery/v1/tasks"
)

func newBrokerServer(brokerUrl string) (*machinery.Server, error) {
	cnf := &machineryconfig.Config{
		DefaultQueue:    "post_views",
		ResultsExpireIn: 3600,
		Broker:          brokerUrl,
		ResultBackend:   brokerUrl,
		Redis: &machineryconfig.RedisConfig{
			MaxIdle:                3,
			IdleTimeout:            240,
			ReadTimeout:            15,
			WriteTimeout:           15,
			ConnectTimeout:         15,
			NormalTasksPollPeriod:  1000,
			DelayedTasksPollPeriod: 500,
		},
	}
	return machinery.NewServer(cnf)
}

func createRecordPostViewTask(postId string, viewedAt time.Time) *tasks.Signature {
	return &tasks.Signature{
		Name: RecordPostViewTask,
		Args: []tasks.Arg{
			{
				Type:  "string",
				Value: postId,
			},
			{
				Type:  "string",
				Value: viewedAt.UTC().Format(time.RFC3339),
			},
		},
	}
}

// QueueRecorder sends one recordPostView task per view.
type QueueRecorder struct {
	server *machinery.Server
	log    *slog.Logger
}

func NewQueueRecorder(brokerUrl string, log *slog.Logger) (*QueueRecorder, error) {
	server, err := newBrokerServer(brokerUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to start view events broker: %w", err)
	}
	return &QueueRecorder{server: server, log: log}, nil
}

func (q *QueueRecorder) Record(ctx context.Context, postId string, viewedAt time.Time) error {
	_, err := q.server.SendTaskWithContext(ctx, createRecordPostViewTask(postId, viewedAt))
	if err != nil {
		return fmt.Errorf("failed to enqueue view of post %s: %w", postId, err)
	}
	q.log.Debug("Enqueued post view", slog.String("post_id", postId))
	return nil
}
