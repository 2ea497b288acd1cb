package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/haven/core/story"
)

type storyRepository struct {
	db *DB
}

var _ story.Repository = (*storyRepository)(nil) // interface compliance check

func NewStoryRepository(db *DB) *storyRepository {
	return &storyRepository{db: db}
}

func (repo *storyRepository) CreateStory(ctx context.Context, s story.Story) (story.Story, error) {
	s.AuthorName = ""
	err := repo.db.write(ctx, func(t *tables) error {
		t.stories = append(t.stories, s)
		return nil
	})
	return s, err
}

func (repo *storyRepository) ListStories(_ context.Context, category string) ([]story.Story, error) {
	stories := make([]story.Story, 0)
	_ = repo.db.read(func(t *tables) error {
		for i := len(t.stories) - 1; i >= 0; i-- {
			s := t.stories[i]
			if category != "" && s.Category != category {
				continue
			}
			s.AuthorName = t.accounts[s.AccountID].FullName
			stories = append(stories, s)
		}
		return nil
	})
	sort.SliceStable(stories, func(i, j int) bool { return stories[i].CreatedAt.After(stories[j].CreatedAt) })
	return stories, nil
}
