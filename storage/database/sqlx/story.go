package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

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
	q := `INSERT INTO stories (id, account_id, content, category, image, anonymous, created_at)
		VALUES (:id, :account_id, :content, :category, :image, :anonymous, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, s); err != nil {
		return story.Story{}, errors.Wrap(err, "inserting story")
	}
	return s, nil
}

func (repo *storyRepository) ListStories(ctx context.Context, category string) ([]story.Story, error) {
	q := `SELECT s.id, s.account_id, a.full_name AS author_name, s.content, s.category, s.image, s.anonymous, s.created_at
		FROM stories s JOIN accounts a ON a.id = s.account_id
		WHERE $1::text = '' OR s.category = $1::text
		ORDER BY s.created_at DESC`
	stories := make([]story.Story, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &stories, q, category); err != nil {
		return nil, errors.Wrap(err, "listing stories")
	}
	return stories, nil
}
