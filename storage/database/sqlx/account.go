package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/account"
)

const accountColumns = "id, full_name, email, password_hash, role, mentor_id, created_at, updated_at, last_login"

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	q := `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1 AND NOT (id::text = ANY($2)))`
	var exists bool
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &exists, q, email, pq.StringArray(excludedIDs)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return account.ErrEmailExists
	}
	return nil
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	q := `INSERT INTO accounts (` + accountColumns + `)
		VALUES (:id, :full_name, :email, :password_hash, :role, :mentor_id, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, acc); err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "inserting account")
	}
	return acc, nil
}

func (repo *accountRepository) GetAccount(ctx context.Context, filter account.GetFilter) (account.Account, error) {
	var (
		q   = `SELECT ` + accountColumns + ` FROM accounts WHERE `
		arg string
	)
	switch {
	case filter.ID != "":
		q, arg = q+"id = $1", filter.ID
	case filter.Email != "":
		q, arg = q+"email = $1", filter.Email
	default:
		return account.Account{}, account.ErrNotFound
	}

	var acc account.Account
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &acc, q, arg); err != nil {
		return account.Account{}, trapNoRowsErr(err, account.ErrNotFound, "finding account")
	}
	return acc, nil
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	q := `UPDATE accounts SET
		full_name = :full_name, email = :email, password_hash = :password_hash, role = :role,
		mentor_id = :mentor_id, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, acc)
	if err != nil {
		if isUniqueViolation(err) {
			return account.Account{}, account.ErrEmailExists
		}
		return account.Account{}, errors.Wrap(err, "updating account")
	}
	if err = checkAffected(res, account.ErrNotFound, "updating account"); err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) ClearMentees(ctx context.Context, mentorID string) error {
	q := `UPDATE accounts SET mentor_id = NULL, updated_at = NOW() WHERE mentor_id = $1`
	_, err := repo.db.exec(ctx).ExecContext(ctx, q, mentorID)
	return errors.Wrap(err, "clearing mentees")
}

func (repo *accountRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := repo.db.exec(ctx).ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return checkAffected(res, account.ErrNotFound, "deleting account")
}
