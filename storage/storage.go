package storage

import (
	"context"
	"errors"
	"fmt"
	"publicblog/storage/models"
	"regexp"
)

var (
	InternalError  = errors.New("storage internal error")
	ClientError    = errors.New("storage client error")
	NotFoundError  = fmt.Errorf("%w.not_found", ClientError)
	InvalidIdError = fmt.Errorf("%w.invalid_id", ClientError)
)

// AllCategories is the catId sentinel that disables category filtering.
const AllCategories = "All"

// PostFilter selects published posts. An empty CategoryId matches every
// category; Search is a literal, case-insensitive substring of title or tag.
type PostFilter struct {
	CategoryId string
	Search     string
}

func NewPostFilter(catId, search string) PostFilter {
	if catId == AllCategories {
		catId = ""
	}
	return PostFilter{CategoryId: catId, Search: search}
}

// SearchPattern is the regular expression both backends match title and tag
// against. The caller adds case folding.
func (f PostFilter) SearchPattern() string {
	return regexp.QuoteMeta(f.Search)
}

type Storage interface {
	CountPublished(ctx context.Context, filter PostFilter) (int64, error)
	FindPublished(ctx context.Context, filter PostFilter, skip, limit int64) ([]models.PostListItem, error)
	GetPost(ctx context.Context, postId string) (*models.Post, error)
	IncrementViews(ctx context.Context, postId string) (int64, error)
	Ping(ctx context.Context) error
}
