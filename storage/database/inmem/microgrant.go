package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/haven/core/microgrant"
)

type micrograntRepository struct {
	db *DB
}

var _ microgrant.Repository = (*micrograntRepository)(nil) // interface compliance check

func NewMicrograntRepository(db *DB) *micrograntRepository {
	return &micrograntRepository{db: db}
}

func (repo *micrograntRepository) CreateApplication(ctx context.Context, app microgrant.Application) (microgrant.Application, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		t.applications[app.ID] = app
		return nil
	})
	return app, err
}

func (repo *micrograntRepository) GetApplication(_ context.Context, id string) (microgrant.Application, error) {
	var (
		app microgrant.Application
		ok  bool
	)
	_ = repo.db.read(func(t *tables) error {
		app, ok = t.applications[id]
		return nil
	})
	if !ok {
		return microgrant.Application{}, microgrant.ErrNotFound
	}
	return app, nil
}

// applicationsOf returns the applications of the account, oldest first.
func (repo *micrograntRepository) applicationsOf(accountID string) []microgrant.Application {
	apps := make([]microgrant.Application, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, app := range t.applications {
			if app.AccountID == accountID {
				apps = append(apps, app)
			}
		}
		return nil
	})
	sort.Slice(apps, func(i, j int) bool {
		if !apps[i].SubmittedAt.Equal(apps[j].SubmittedAt) {
			return apps[i].SubmittedAt.Before(apps[j].SubmittedAt)
		}
		return apps[i].ID < apps[j].ID
	})
	return apps
}

func (repo *micrograntRepository) ListApplications(_ context.Context, accountID string) ([]microgrant.Application, error) {
	apps := repo.applicationsOf(accountID)
	for i, j := 0, len(apps)-1; i < j; i, j = i+1, j-1 {
		apps[i], apps[j] = apps[j], apps[i]
	}
	return apps, nil
}

func (repo *micrograntRepository) FirstApplication(_ context.Context, accountID string) (microgrant.Application, error) {
	apps := repo.applicationsOf(accountID)
	if len(apps) == 0 {
		return microgrant.Application{}, microgrant.ErrNotFound
	}
	return apps[0], nil
}

func (repo *micrograntRepository) UpdateApplication(ctx context.Context, app microgrant.Application) (microgrant.Application, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.applications[app.ID]; !ok {
			return microgrant.ErrNotFound
		}
		t.applications[app.ID] = app
		return nil
	})
	if err != nil {
		return microgrant.Application{}, err
	}
	return app, nil
}

func (repo *micrograntRepository) CreateSuccessStory(ctx context.Context, s microgrant.SuccessStory) (microgrant.SuccessStory, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		t.successes = append(t.successes, s)
		return nil
	})
	return s, err
}

func (repo *micrograntRepository) ListSuccessStories(_ context.Context, status microgrant.StoryStatus) ([]microgrant.SuccessStory, error) {
	stories := make([]microgrant.SuccessStory, 0)
	_ = repo.db.read(func(t *tables) error {
		for i := len(t.successes) - 1; i >= 0; i-- {
			if s := t.successes[i]; s.Status == status {
				stories = append(stories, s)
			}
		}
		return nil
	})
	sort.SliceStable(stories, func(i, j int) bool { return stories[i].CreatedAt.After(stories[j].CreatedAt) })
	return stories, nil
}

func (repo *micrograntRepository) SetSuccessStoryStatus(ctx context.Context, id string, status microgrant.StoryStatus) (microgrant.SuccessStory, error) {
	var updated microgrant.SuccessStory
	err := repo.db.write(ctx, func(t *tables) error {
		for i := range t.successes {
			if t.successes[i].ID == id {
				t.successes[i].Status = status
				updated = t.successes[i]
				return nil
			}
		}
		return microgrant.ErrStoryNotFound
	})
	if err != nil {
		return microgrant.SuccessStory{}, err
	}
	return updated, nil
}
