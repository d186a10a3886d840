package handlers

import (
	"fmt"
	"net/http"
	"publicblog/views"
	"time"
)

type ViewStatsResponse struct {
	Day   string           `json:"day"`
	Views map[string]int64 `json:"views"`
}

func (h *HTTPHandler) HandleViewStats(w http.ResponseWriter, r *http.Request) {
	day := h.now().UTC()
	if cgiDay := r.URL.Query().Get("day"); cgiDay != "" {
		var err error
		day, err = time.Parse(views.DayLayout, cgiDay)
		if err != nil {
			h.writeError(w, r, newStatusError(http.StatusBadRequest, "invalid day", err))
			return
		}
	}

	counters, err := h.Stats.Daily(r.Context(), day)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("daily view stats: %w", err))
		return
	}
	h.writeJSON(w, http.StatusOK, ViewStatsResponse{
		Day:   day.Format(views.DayLayout),
		Views: counters,
	})
}
