// Package views records post detail views outside the request path: the
// server enqueues a machinery task per view and the worker aggregates daily
// per-post counters in Redis.
package views

import (
	"context"
	"time"
)

const (
	RecordPostViewTask = "recordPostView"
	DayLayout          = "2006-01-02"
)

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, string, time.Time) error {
	return nil
}
