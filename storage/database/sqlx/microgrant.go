package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/microgrant"
)

const applicationColumns = `id, account_id, full_name, location, business_name, business_description, grant_amount,
	budget_breakdown, status, additional_info_required, additional_info_response, submitted_at, updated_at`

type micrograntRepository struct {
	db *DB
}

var _ microgrant.Repository = (*micrograntRepository)(nil) // interface compliance check

func NewMicrograntRepository(db *DB) *micrograntRepository {
	return &micrograntRepository{db: db}
}

func (repo *micrograntRepository) CreateApplication(ctx context.Context, app microgrant.Application) (microgrant.Application, error) {
	q := `INSERT INTO microgrant_applications (` + applicationColumns + `) VALUES (
		:id, :account_id, :full_name, :location, :business_name, :business_description, :grant_amount,
		:budget_breakdown, :status, :additional_info_required, :additional_info_response, :submitted_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, app); err != nil {
		return microgrant.Application{}, errors.Wrap(err, "inserting microgrant application")
	}
	return app, nil
}

func (repo *micrograntRepository) GetApplication(ctx context.Context, id string) (microgrant.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM microgrant_applications WHERE id = $1`
	var app microgrant.Application
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &app, q, id); err != nil {
		return microgrant.Application{}, trapNoRowsErr(err, microgrant.ErrNotFound, "finding microgrant application")
	}
	return app, nil
}

func (repo *micrograntRepository) ListApplications(ctx context.Context, accountID string) ([]microgrant.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM microgrant_applications WHERE account_id = $1 ORDER BY submitted_at DESC`
	apps := make([]microgrant.Application, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &apps, q, accountID); err != nil {
		return nil, errors.Wrap(err, "listing microgrant applications")
	}
	return apps, nil
}

func (repo *micrograntRepository) FirstApplication(ctx context.Context, accountID string) (microgrant.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM microgrant_applications WHERE account_id = $1 ORDER BY submitted_at LIMIT 1`
	var app microgrant.Application
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &app, q, accountID); err != nil {
		return microgrant.Application{}, trapNoRowsErr(err, microgrant.ErrNotFound, "finding first microgrant application")
	}
	return app, nil
}

func (repo *micrograntRepository) UpdateApplication(ctx context.Context, app microgrant.Application) (microgrant.Application, error) {
	q := `UPDATE microgrant_applications SET
		full_name = :full_name, location = :location, business_name = :business_name,
		business_description = :business_description, grant_amount = :grant_amount, budget_breakdown = :budget_breakdown,
		status = :status, additional_info_required = :additional_info_required,
		additional_info_response = :additional_info_response, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, app)
	if err != nil {
		return microgrant.Application{}, errors.Wrap(err, "updating microgrant application")
	}
	if err = checkAffected(res, microgrant.ErrNotFound, "updating microgrant application"); err != nil {
		return microgrant.Application{}, err
	}
	return app, nil
}

const successStoryColumns = `id, account_id, name, business, amount, story, image, status, created_at`

func (repo *micrograntRepository) CreateSuccessStory(ctx context.Context, s microgrant.SuccessStory) (microgrant.SuccessStory, error) {
	q := `INSERT INTO success_stories (` + successStoryColumns + `)
		VALUES (:id, :account_id, :name, :business, :amount, :story, :image, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, s); err != nil {
		return microgrant.SuccessStory{}, errors.Wrap(err, "inserting success story")
	}
	return s, nil
}

func (repo *micrograntRepository) ListSuccessStories(ctx context.Context, status microgrant.StoryStatus) ([]microgrant.SuccessStory, error) {
	q := `SELECT ` + successStoryColumns + ` FROM success_stories WHERE status = $1 ORDER BY created_at DESC`
	stories := make([]microgrant.SuccessStory, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &stories, q, status); err != nil {
		return nil, errors.Wrap(err, "listing success stories")
	}
	return stories, nil
}

func (repo *micrograntRepository) SetSuccessStoryStatus(ctx context.Context, id string, status microgrant.StoryStatus) (microgrant.SuccessStory, error) {
	q := `UPDATE success_stories SET status = $2 WHERE id = $1 RETURNING ` + successStoryColumns
	var s microgrant.SuccessStory
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &s, q, id, status); err != nil {
		return microgrant.SuccessStory{}, trapNoRowsErr(err, microgrant.ErrStoryNotFound, "updating success story status")
	}
	return s, nil
}
