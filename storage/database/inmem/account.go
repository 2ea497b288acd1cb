package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/haven/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func emailTaken(t *tables, email string, excludedIDs ...string) bool {
	for _, acc := range t.accounts {
		if !strings.EqualFold(acc.Email, email) {
			continue
		}
		excluded := false
		for _, id := range excludedIDs {
			if acc.ID == id {
				excluded = true
				break
			}
		}
		if !excluded {
			return true
		}
	}
	return false
}

func (repo *accountRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	return repo.db.read(func(t *tables) error {
		if emailTaken(t, email, excludedIDs...) {
			return account.ErrEmailExists
		}
		return nil
	})
}

func (repo *accountRepository) CreateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if emailTaken(t, acc.Email) {
			return account.ErrEmailExists
		}
		t.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) GetAccount(_ context.Context, filter account.GetFilter) (account.Account, error) {
	var found account.Account
	err := repo.db.read(func(t *tables) error {
		if filter.ID != "" {
			acc, ok := t.accounts[filter.ID]
			if !ok {
				return account.ErrNotFound
			}
			found = acc
			return nil
		}
		if filter.Email != "" {
			for _, acc := range t.accounts {
				if acc.Email == filter.Email {
					found = acc
					return nil
				}
			}
		}
		return account.ErrNotFound
	})
	return found, err
}

func (repo *accountRepository) UpdateAccount(ctx context.Context, acc account.Account) (account.Account, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.accounts[acc.ID]; !ok {
			return account.ErrNotFound
		}
		if emailTaken(t, acc.Email, acc.ID) {
			return account.ErrEmailExists
		}
		t.accounts[acc.ID] = acc
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}
	return acc, nil
}

func (repo *accountRepository) ClearMentees(ctx context.Context, mentorID string) error {
	return repo.db.write(ctx, func(t *tables) error {
		clearMentees(t, mentorID)
		return nil
	})
}

func clearMentees(t *tables, mentorID string) {
	for id, acc := range t.accounts {
		if acc.MentorID != nil && *acc.MentorID == mentorID {
			acc.MentorID = nil
			t.accounts[id] = acc
		}
	}
}

// DeleteAccount removes the account and cascades to everything it owns.
func (repo *accountRepository) DeleteAccount(ctx context.Context, id string) error {
	return repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.accounts[id]; !ok {
			return account.ErrNotFound
		}
		delete(t.accounts, id)
		clearMentees(t, id)
		for _, rows := range t.profiles {
			delete(rows, id)
		}

		notifs := t.notifications[:0]
		for _, n := range t.notifications {
			if n.AccountID != id {
				notifs = append(notifs, n)
			}
		}
		t.notifications = notifs

		moods := t.moods[:0]
		for _, m := range t.moods {
			if m.AccountID != id {
				moods = append(moods, m)
			}
		}
		t.moods = moods

		journal := t.journal[:0]
		for _, e := range t.journal {
			if e.AccountID != id {
				journal = append(journal, e)
			}
		}
		t.journal = journal

		posts := t.posts[:0]
		deletedPosts := make(map[string]struct{})
		for _, p := range t.posts {
			if p.AccountID != id {
				posts = append(posts, p)
			} else {
				deletedPosts[p.ID] = struct{}{}
			}
		}
		t.posts = posts

		replies := t.replies[:0]
		for _, r := range t.replies {
			if _, ok := deletedPosts[r.PostID]; r.AccountID != id && !ok {
				replies = append(replies, r)
			}
		}
		t.replies = replies

		for appID, app := range t.applications {
			if app.AccountID == id {
				delete(t.applications, appID)
			}
		}
		for eID, e := range t.enrollments {
			if e.AccountID == id {
				delete(t.enrollments, eID)
			}
		}

		successes := t.successes[:0]
		for _, ss := range t.successes {
			if ss.AccountID != id {
				successes = append(successes, ss)
			}
		}
		t.successes = successes

		stories := t.stories[:0]
		for _, st := range t.stories {
			if st.AccountID != id {
				stories = append(stories, st)
			}
		}
		t.stories = stories
		return nil
	})
}
