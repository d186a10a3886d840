package handlers

import (
	"log/slog"
	"net/http"
	"publicblog/metrics"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const RequestIdHeader = "X-Request-Id"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// AccessLog logs every request and feeds the HTTP metrics, labelled by
// route template so path ids do not explode cardinality.
func AccessLog(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestId := r.Header.Get(RequestIdHeader)
			if requestId == "" {
				requestId = uuid.New().String()
			}
			w.Header().Set(RequestIdHeader, requestId)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.ObserveHTTPRequest(route, r.Method, rec.status, start)
			log.Info("HTTP request",
				slog.String("request_id", requestId),
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.Int("status", rec.status),
				slog.Duration("duration", time.Since(start)))
		})
	}
}
