package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"publicblog/metrics"
	"publicblog/storage"
	"publicblog/storage/models"
	"publicblog/utils"
)

type GetPostRequestData struct {
	PostId   string `json:"postId" validate:"required"`
	TimeZone string `json:"timeZone"`
}

type PostDetail struct {
	Post       *models.Post `json:"post"`
	CreateDate string       `json:"createDate"`
	UpdateDate string       `json:"updateDate"`
}

type GetPostResponse struct {
	Message string     `json:"message"`
	Post    PostDetail `json:"post"`
}

func notFoundPost(err error) error {
	if errors.Is(err, storage.NotFoundError) || errors.Is(err, storage.InvalidIdError) {
		// 401 is what existing clients expect for a missing post.
		return newStatusError(http.StatusUnauthorized, "no post found", err)
	}
	return err
}

// HandleGetPost returns a post and counts the view.
func (h *HTTPHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	var data GetPostRequestData
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		h.writeError(w, r, newStatusError(http.StatusBadRequest, "invalid request body", err))
		return
	}
	if err := h.validate.Struct(&data); err != nil {
		h.writeError(w, r, newStatusError(http.StatusBadRequest, "postId is required", err))
		return
	}

	post, err := h.Storage.GetPost(r.Context(), data.PostId)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("get post: %w", notFoundPost(err)))
		return
	}
	views, err := h.Storage.IncrementViews(r.Context(), data.PostId)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("increment views: %w", notFoundPost(err)))
		return
	}
	post.Views = views
	metrics.PostViewsTotal.Inc()
	h.recordView(r, post.Id)

	updateDate := ""
	if post.UpdatedAt != nil {
		updateDate = utils.FormatDate(*post.UpdatedAt, data.TimeZone)
	}

	h.writeJSON(w, http.StatusOK, GetPostResponse{
		Message: "post got",
		Post: PostDetail{
			Post:       post,
			CreateDate: utils.FormatDate(post.CreatedAt, data.TimeZone),
			UpdateDate: updateDate,
		},
	})
}

func (h *HTTPHandler) recordView(r *http.Request, postId string) {
	if err := h.Views.Record(r.Context(), postId, h.now()); err != nil {
		metrics.ViewEventsTotal.WithLabelValues("failed").Inc()
		h.Log.Warn("Failed to record view event", slog.String("post_id", postId), slog.String("error", err.Error()))
		return
	}
	metrics.ViewEventsTotal.WithLabelValues("sent").Inc()
}
