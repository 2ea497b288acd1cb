package story

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
)

type (
	Repository interface {
		CreateStory(ctx context.Context, s Story) (Story, error)
		// ListStories returns the stories of the `category`, or every story if it is empty, newest first.
		ListStories(ctx context.Context, category string) ([]Story, error)
	}

	// Service is the community stories feed.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, author account.Account, ns NewStory) (Story, error) {
	s, err := svc.repo.CreateStory(ctx, Story{
		ID:        uuid.NewString(),
		AccountID: author.ID,
		Content:   ns.Content,
		Category:  ns.Category,
		Image:     ns.Image,
		Anonymous: ns.Anonymous,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Story{}, errors.Wrap(err, "creating story")
	}
	s.AuthorName = author.FullName
	return s, nil
}

// List returns the feed; an empty or "all" category lists every story.
func (svc *Service) List(ctx context.Context, category string) ([]Story, error) {
	category = core.CleanString(category, true /* lower */)
	if category == CategoryAll {
		category = ""
	}
	return svc.repo.ListStories(ctx, category)
}
