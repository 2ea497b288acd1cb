package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/healing"
)

type healingRepository struct {
	db *DB
}

var _ healing.Repository = (*healingRepository)(nil) // interface compliance check

func NewHealingRepository(db *DB) *healingRepository {
	return &healingRepository{db: db}
}

func (repo *healingRepository) CreateMoodCheckIn(ctx context.Context, m healing.MoodCheckIn) (healing.MoodCheckIn, error) {
	q := `INSERT INTO mood_checkins (id, account_id, mood, created_at) VALUES (:id, :account_id, :mood, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, m); err != nil {
		return healing.MoodCheckIn{}, errors.Wrap(err, "inserting mood check-in")
	}
	return m, nil
}

func (repo *healingRepository) LatestMoodCheckIn(ctx context.Context, accountID string) (healing.MoodCheckIn, error) {
	q := `SELECT id, account_id, mood, created_at FROM mood_checkins WHERE account_id = $1 ORDER BY created_at DESC LIMIT 1`
	var m healing.MoodCheckIn
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &m, q, accountID); err != nil {
		return healing.MoodCheckIn{}, trapNoRowsErr(err, healing.ErrNotFound, "finding latest mood check-in")
	}
	return m, nil
}

func (repo *healingRepository) CreateJournalEntry(ctx context.Context, e healing.JournalEntry) (healing.JournalEntry, error) {
	q := `INSERT INTO journal_entries (id, account_id, content, anonymous, created_at)
		VALUES (:id, :account_id, :content, :anonymous, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, e); err != nil {
		return healing.JournalEntry{}, errors.Wrap(err, "inserting journal entry")
	}
	return e, nil
}

func (repo *healingRepository) ListJournalEntries(ctx context.Context, accountID string) ([]healing.JournalEntry, error) {
	q := `SELECT id, account_id, content, anonymous, created_at FROM journal_entries WHERE account_id = $1 ORDER BY created_at DESC`
	entries := make([]healing.JournalEntry, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &entries, q, accountID); err != nil {
		return nil, errors.Wrap(err, "listing journal entries")
	}
	return entries, nil
}

func (repo *healingRepository) CountJournalEntriesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	q := `SELECT COUNT(*) FROM journal_entries WHERE account_id = $1 AND created_at >= $2`
	var count int
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &count, q, accountID, since.UTC()); err != nil {
		return 0, errors.Wrap(err, "counting journal entries")
	}
	return count, nil
}

func (repo *healingRepository) CreateSupportPost(ctx context.Context, p healing.SupportPost) (healing.SupportPost, error) {
	q := `INSERT INTO support_posts (id, account_id, content, anonymous, category, created_at)
		VALUES (:id, :account_id, :content, :anonymous, :category, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, p); err != nil {
		return healing.SupportPost{}, errors.Wrap(err, "inserting support post")
	}
	return p, nil
}

func (repo *healingRepository) GetSupportPost(ctx context.Context, id string) (healing.SupportPost, error) {
	q := `SELECT id, account_id, content, anonymous, category, created_at FROM support_posts WHERE id = $1`
	var p healing.SupportPost
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &p, q, id); err != nil {
		return healing.SupportPost{}, trapNoRowsErr(err, healing.ErrNotFound, "finding support post")
	}
	return p, nil
}

func (repo *healingRepository) ListSupportPosts(ctx context.Context) ([]healing.SupportPost, error) {
	exec := repo.db.exec(ctx)

	posts := make([]healing.SupportPost, 0)
	q := `SELECT id, account_id, content, anonymous, category, created_at FROM support_posts ORDER BY created_at DESC`
	if err := sqlx.SelectContext(ctx, exec, &posts, q); err != nil {
		return nil, errors.Wrap(err, "listing support posts")
	}
	if len(posts) == 0 {
		return posts, nil
	}

	var replies []healing.SupportReply
	q = `SELECT id, post_id, account_id, content, created_at FROM support_replies ORDER BY created_at`
	if err := sqlx.SelectContext(ctx, exec, &replies, q); err != nil {
		return nil, errors.Wrap(err, "listing support replies")
	}

	byPost := make(map[string][]healing.SupportReply, len(posts))
	for _, r := range replies {
		byPost[r.PostID] = append(byPost[r.PostID], r)
	}
	for i := range posts {
		if posts[i].Replies = byPost[posts[i].ID]; posts[i].Replies == nil {
			posts[i].Replies = []healing.SupportReply{}
		}
	}
	return posts, nil
}

func (repo *healingRepository) CreateSupportReply(ctx context.Context, r healing.SupportReply) (healing.SupportReply, error) {
	q := `INSERT INTO support_replies (id, post_id, account_id, content, created_at)
		VALUES (:id, :post_id, :account_id, :content, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, r); err != nil {
		return healing.SupportReply{}, errors.Wrap(err, "inserting support reply")
	}
	return r, nil
}
