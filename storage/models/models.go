package models

import (
	"time"
)

type Status string

const (
	StatusDraft   Status = "draft"
	StatusPublish Status = "publish"
)

// Ref is an expanded reference to a user or a category.
type Ref struct {
	Id   string `json:"_id"`
	Name string `json:"name"`
}

type Post struct {
	Id        string     `json:"_id"`
	Title     string     `json:"title"`
	Desc      string     `json:"desc"`
	Image     string     `json:"image"`
	Tag       string     `json:"tag"`
	Category  string     `json:"category,omitempty"`
	User      *Ref       `json:"user"`
	Status    Status     `json:"status"`
	Views     int64      `json:"views"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// PostListItem is a post as it appears on a list page, with both the user
// and the category expanded.
type PostListItem struct {
	Id        string
	Title     string
	Desc      string
	Image     string
	User      *Ref
	Category  *Ref
	CreatedAt time.Time
}
