package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"publicblog/storage"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const INTERNAL_ERROR_MESSAGE = "internal error"

type ViewRecorder interface {
	Record(ctx context.Context, postId string, viewedAt time.Time) error
}

type ViewStats interface {
	Daily(ctx context.Context, day time.Time) (map[string]int64, error)
}

type HTTPHandler struct {
	Storage storage.Storage
	Views   ViewRecorder
	// Stats is nil when view stats are not collected.
	Stats    ViewStats
	Log      *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewHTTPHandler(s storage.Storage, views ViewRecorder, stats ViewStats, log *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		Storage:  s,
		Views:    views,
		Stats:    stats,
		Log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.Storage.Ping(r.Context()); err != nil {
		h.Log.Error("Health check failed", slog.String("error", err.Error()))
		h.writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	rawResponse, err := json.Marshal(v)
	if err != nil {
		h.Log.Error("Failed to dump response to json", slog.String("error", err.Error()))
		http.Error(w, INTERNAL_ERROR_MESSAGE, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(rawResponse); err != nil {
		h.Log.Warn("Failed to write response", slog.String("error", err.Error()))
	}
}
