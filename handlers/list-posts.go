package handlers

import (
	"fmt"
	"math"
	"net/http"
	"publicblog/storage"
	"publicblog/storage/models"
	"publicblog/utils"
	"strconv"
)

const PostsPerPage = 7

type ListPostsQuery struct {
	Page     int `validate:"gte=1"`
	CatId    string
	Search   string
	TimeZone string
}

type PostListEntry struct {
	Image    string      `json:"image"`
	PostId   string      `json:"postId"`
	Title    string      `json:"title"`
	Desc     string      `json:"desc"`
	Date     string      `json:"date"`
	User     *models.Ref `json:"user"`
	Category *models.Ref `json:"category"`
}

type ListPostsResponse struct {
	Message     string          `json:"message"`
	Posts       []PostListEntry `json:"posts"`
	TotalItem   int64           `json:"totalItem"`
	TotalPage   int64           `json:"totalPage"`
	CurrentPage int             `json:"currentPage"`
}

func totalPages(totalItem int64) int64 {
	return (totalItem + PostsPerPage - 1) / PostsPerPage
}

func (h *HTTPHandler) parseListPostsQuery(r *http.Request) (*ListPostsQuery, error) {
	params := r.URL.Query()
	query := &ListPostsQuery{
		Page:     1,
		CatId:    params.Get("catId"),
		Search:   params.Get("search"),
		TimeZone: params.Get("timeZone"),
	}
	if cgiPage := params.Get("page"); cgiPage != "" {
		page, err := strconv.Atoi(cgiPage)
		if err != nil {
			return nil, newStatusError(http.StatusBadRequest, "invalid page", err)
		}
		query.Page = page
	}
	if err := h.validate.Struct(query); err != nil {
		return nil, newStatusError(http.StatusBadRequest, "invalid page", err)
	}
	return query, nil
}

// HandleListPosts serves one page of published posts, newest first.
func (h *HTTPHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	query, err := h.parseListPostsQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filter := storage.NewPostFilter(query.CatId, query.Search)

	totalItem, err := h.Storage.CountPublished(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("count published posts: %w", err))
		return
	}

	// A page whose offset does not fit in int64 is past any collection.
	if int64(query.Page-1) > math.MaxInt64/PostsPerPage {
		h.writeError(w, r, newStatusError(http.StatusNotFound, "no post available", nil))
		return
	}
	skip := int64(query.Page-1) * PostsPerPage
	posts, err := h.Storage.FindPublished(r.Context(), filter, skip, PostsPerPage)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("find published posts: %w", err))
		return
	}
	// An out-of-range page is reported the same way as an empty result.
	if len(posts) == 0 {
		h.writeError(w, r, newStatusError(http.StatusNotFound, "no post available", nil))
		return
	}

	entries := make([]PostListEntry, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, PostListEntry{
			Image:    p.Image,
			PostId:   p.Id,
			Title:    p.Title,
			Desc:     p.Desc,
			Date:     utils.FormatDate(p.CreatedAt, query.TimeZone),
			User:     p.User,
			Category: p.Category,
		})
	}

	h.writeJSON(w, http.StatusOK, ListPostsResponse{
		Message:     "all post got",
		Posts:       entries,
		TotalItem:   totalItem,
		TotalPage:   totalPages(totalItem),
		CurrentPage: query.Page,
	})
}
