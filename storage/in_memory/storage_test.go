package in_memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"publicblog/storage"
	"publicblog/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func TestFindPublished(t *testing.T) {
	s := CreateInMemoryStorage()
	user := s.AddUser("bob")
	cat := s.AddCategory("news")
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		s.AddPost(models.Post{
			Id:        string(rune('a' + i)),
			Title:     "Title",
			Category:  cat,
			User:      &models.Ref{Id: user},
			Status:    models.StatusPublish,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	s.AddPost(models.Post{Id: "draft", Title: "Title", Status: models.StatusDraft, CreatedAt: base})

	t.Run("SortedNewestFirst", func(t *testing.T) {
		items, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 0, 3)
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, "e", items[0].Id)
		assert.Equal(t, "d", items[1].Id)
		assert.Equal(t, "c", items[2].Id)
		assert.Equal(t, &models.Ref{Id: user, Name: "bob"}, items[0].User)
		assert.Equal(t, &models.Ref{Id: cat, Name: "news"}, items[0].Category)
	})

	t.Run("SkipPastEnd", func(t *testing.T) {
		items, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 7, 7)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("PartialLastPage", func(t *testing.T) {
		items, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 3, 7)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "a", items[1].Id)
	})

	t.Run("NegativeSkip", func(t *testing.T) {
		items, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), -9223372036854775802, 7)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("LimitPastMaxInt", func(t *testing.T) {
		items, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 4, 9223372036854775807)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].Id)
	})

	t.Run("CountIgnoresDrafts", func(t *testing.T) {
		count, err := s.CountPublished(ctx, storage.NewPostFilter("All", "title"))
		require.NoError(t, err)
		assert.Equal(t, int64(5), count)
	})

	t.Run("UnknownCategory", func(t *testing.T) {
		count, err := s.CountPublished(ctx, storage.NewPostFilter("nope", ""))
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestFindPublished_EqualTimestamps(t *testing.T) {
	s := CreateInMemoryStorage()
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "d", "a", "c"} {
		s.AddPost(models.Post{Id: id, Title: "same", Status: models.StatusPublish, CreatedAt: created})
	}

	for i := 0; i < 5; i++ {
		first, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 0, 2)
		require.NoError(t, err)
		second, err := s.FindPublished(ctx, storage.NewPostFilter("All", ""), 2, 2)
		require.NoError(t, err)

		require.Len(t, first, 2)
		require.Len(t, second, 2)
		assert.Equal(t, []string{"d", "c", "b", "a"},
			[]string{first[0].Id, first[1].Id, second[0].Id, second[1].Id})
	}
}

func TestGetPost(t *testing.T) {
	s := CreateInMemoryStorage()
	p := s.AddPost(models.Post{Title: "x", User: &models.Ref{Id: "ghost"}, Status: models.StatusDraft})

	t.Run("Found", func(t *testing.T) {
		post, err := s.GetPost(ctx, p.Id)
		require.NoError(t, err)
		assert.Equal(t, "x", post.Title)
		assert.False(t, post.CreatedAt.IsZero())
		// dangling user reference is dropped
		assert.Nil(t, post.User)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.GetPost(ctx, "missing")
		assert.True(t, errors.Is(err, storage.NotFoundError))
	})
}

func TestIncrementViews(t *testing.T) {
	s := CreateInMemoryStorage()
	p := s.AddPost(models.Post{Title: "hot", Status: models.StatusPublish})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.IncrementViews(ctx, p.Id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	views, err := s.IncrementViews(ctx, p.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(51), views)

	_, err = s.IncrementViews(ctx, "missing")
	assert.True(t, errors.Is(err, storage.NotFoundError))
}

func TestLoadSeed(t *testing.T) {
	seed := `{
		"users": [{"_id": "u1", "name": "carol"}],
		"categories": [{"_id": "c1", "name": "travel"}],
		"posts": [
			{"_id": "p1", "title": "Lisbon", "tag": "europe", "category": "c1", "user": "u1",
			 "status": "publish", "views": 3, "createdAt": "2024-02-01T10:00:00Z"},
			{"_id": "p2", "title": "Drafty", "category": "c1", "user": "u1",
			 "status": "draft", "createdAt": "2024-02-02T10:00:00Z", "updatedAt": "2024-02-03T10:00:00Z"}
		]
	}`
	s := CreateInMemoryStorage()
	require.NoError(t, s.LoadSeed(strings.NewReader(seed)))

	items, err := s.FindPublished(ctx, storage.NewPostFilter("c1", "EUROPE"), 0, 7)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].Id)
	assert.Equal(t, "carol", items[0].User.Name)
	assert.Equal(t, "travel", items[0].Category.Name)

	draft, err := s.GetPost(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, draft.UpdatedAt)
	assert.Equal(t, 3, draft.UpdatedAt.Day())

	assert.Error(t, CreateInMemoryStorage().LoadSeed(strings.NewReader(`{"posts": [`)))
}
