package in_memory

import (
	"fmt"
	"io"
	"os"
	"publicblog/storage/models"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type seedRef struct {
	Id   string `json:"_id"`
	Name string `json:"name"`
}

type seedPost struct {
	Id        string        `json:"_id"`
	Title     string        `json:"title"`
	Desc      string        `json:"desc"`
	Image     string        `json:"image"`
	Tag       string        `json:"tag"`
	Category  string        `json:"category"`
	User      string        `json:"user"`
	Status    models.Status `json:"status"`
	Views     int64         `json:"views"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt *time.Time    `json:"updatedAt"`
}

// Seed is the fixture format accepted by LoadSeed. Posts reference users and
// categories by their _id.
type Seed struct {
	Users      []seedRef  `json:"users"`
	Categories []seedRef  `json:"categories"`
	Posts      []seedPost `json:"posts"`
}

func (s *InMemoryStorage) LoadSeed(r io.Reader) error {
	var seed Seed
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("failed to decode seed: %w", err)
	}

	s.mut.Lock()
	for _, u := range seed.Users {
		s.users[u.Id] = u.Name
	}
	for _, c := range seed.Categories {
		s.categories[c.Id] = c.Name
	}
	s.mut.Unlock()

	for _, p := range seed.Posts {
		if p.Views < 0 {
			return fmt.Errorf("post %s has negative views", p.Id)
		}
		post := models.Post{
			Id:        p.Id,
			Title:     p.Title,
			Desc:      p.Desc,
			Image:     p.Image,
			Tag:       p.Tag,
			Category:  p.Category,
			Status:    p.Status,
			Views:     p.Views,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		}
		if p.User != "" {
			post.User = &models.Ref{Id: p.User}
		}
		s.AddPost(post)
	}
	return nil
}

func (s *InMemoryStorage) LoadSeedFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.LoadSeed(f)
}
