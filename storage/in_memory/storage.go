package in_memory

import (
	"context"
	"fmt"
	"publicblog/storage"
	"publicblog/storage/models"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type InMemoryStorage struct {
	mut        sync.RWMutex
	posts      map[string]*models.Post
	users      map[string]string
	categories map[string]string
}

func (s *InMemoryStorage) AddUser(name string) string {
	s.mut.Lock()
	defer s.mut.Unlock()
	id := uuid.New().String()
	s.users[id] = name
	return id
}

func (s *InMemoryStorage) AddCategory(name string) string {
	s.mut.Lock()
	defer s.mut.Unlock()
	id := uuid.New().String()
	s.categories[id] = name
	return id
}

// AddPost stores a copy of post. A missing Id is generated, a zero CreatedAt
// is set to now.
func (s *InMemoryStorage) AddPost(post models.Post) models.Post {
	s.mut.Lock()
	defer s.mut.Unlock()
	if post.Id == "" {
		post.Id = uuid.New().String()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.User != nil {
		post.User = &models.Ref{Id: post.User.Id}
	}
	s.posts[post.Id] = &post
	return post
}

func (s *InMemoryStorage) CountPublished(_ context.Context, filter storage.PostFilter) (int64, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	matched, err := s.matching(filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

func (s *InMemoryStorage) FindPublished(
	_ context.Context, filter storage.PostFilter, skip, limit int64) ([]models.PostListItem, error) {

	s.mut.RLock()
	defer s.mut.RUnlock()
	matched, err := s.matching(filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Id > matched[j].Id
	})

	items := make([]models.PostListItem, 0)
	if skip < 0 || skip >= int64(len(matched)) {
		return items, nil
	}
	end := int64(len(matched))
	if limit >= 0 && limit < end-skip {
		end = skip + limit
	}
	for _, p := range matched[skip:end] {
		item := models.PostListItem{
			Id:        p.Id,
			Title:     p.Title,
			Desc:      p.Desc,
			Image:     p.Image,
			CreatedAt: p.CreatedAt,
			User:      s.expandUser(p.User),
		}
		if name, found := s.categories[p.Category]; found {
			item.Category = &models.Ref{Id: p.Category, Name: name}
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *InMemoryStorage) GetPost(_ context.Context, postId string) (*models.Post, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	p, found := s.posts[postId]
	if !found {
		return nil, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	result := *p
	result.User = s.expandUser(p.User)
	return &result, nil
}

func (s *InMemoryStorage) IncrementViews(_ context.Context, postId string) (int64, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	p, found := s.posts[postId]
	if !found {
		return 0, fmt.Errorf("no post with id %v: %w", postId, storage.NotFoundError)
	}
	p.Views++
	return p.Views, nil
}

func (s *InMemoryStorage) Ping(_ context.Context) error {
	return nil
}

func (s *InMemoryStorage) matching(filter storage.PostFilter) ([]*models.Post, error) {
	search, err := regexp.Compile("(?i)" + filter.SearchPattern())
	if err != nil {
		return nil, fmt.Errorf("failed to compile search %q: %s, %w", filter.Search, err.Error(), storage.InternalError)
	}
	matched := make([]*models.Post, 0)
	for _, p := range s.posts {
		if p.Status != models.StatusPublish {
			continue
		}
		if filter.CategoryId != "" && p.Category != filter.CategoryId {
			continue
		}
		if !search.MatchString(p.Title) && !search.MatchString(p.Tag) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func (s *InMemoryStorage) expandUser(ref *models.Ref) *models.Ref {
	if ref == nil {
		return nil
	}
	name, found := s.users[ref.Id]
	if !found {
		return nil
	}
	return &models.Ref{Id: ref.Id, Name: name}
}

func CreateInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		posts:      make(map[string]*models.Post),
		users:      make(map[string]string),
		categories: make(map[string]string),
	}
}
