package inmemdb

import (
	"context"
	"sort"
	"time"

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
	err := repo.db.write(ctx, func(t *tables) error {
		t.moods = append(t.moods, m)
		return nil
	})
	return m, err
}

func (repo *healingRepository) LatestMoodCheckIn(_ context.Context, accountID string) (healing.MoodCheckIn, error) {
	var (
		latest healing.MoodCheckIn
		found  bool
	)
	_ = repo.db.read(func(t *tables) error {
		for _, m := range t.moods {
			if m.AccountID == accountID && (!found || !m.Timestamp.Before(latest.Timestamp)) {
				latest, found = m, true
			}
		}
		return nil
	})
	if !found {
		return healing.MoodCheckIn{}, healing.ErrNotFound
	}
	return latest, nil
}

func (repo *healingRepository) CreateJournalEntry(ctx context.Context, e healing.JournalEntry) (healing.JournalEntry, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		t.journal = append(t.journal, e)
		return nil
	})
	return e, err
}

func (repo *healingRepository) ListJournalEntries(_ context.Context, accountID string) ([]healing.JournalEntry, error) {
	entries := make([]healing.JournalEntry, 0)
	_ = repo.db.read(func(t *tables) error {
		for i := len(t.journal) - 1; i >= 0; i-- {
			if e := t.journal[i]; e.AccountID == accountID {
				entries = append(entries, e)
			}
		}
		return nil
	})
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries, nil
}

func (repo *healingRepository) CountJournalEntriesSince(_ context.Context, accountID string, since time.Time) (int, error) {
	var count int
	_ = repo.db.read(func(t *tables) error {
		for _, e := range t.journal {
			if e.AccountID == accountID && !e.Timestamp.Before(since) {
				count++
			}
		}
		return nil
	})
	return count, nil
}

func (repo *healingRepository) CreateSupportPost(ctx context.Context, p healing.SupportPost) (healing.SupportPost, error) {
	p.Replies = nil
	err := repo.db.write(ctx, func(t *tables) error {
		t.posts = append(t.posts, p)
		return nil
	})
	return p, err
}

func (repo *healingRepository) GetSupportPost(_ context.Context, id string) (healing.SupportPost, error) {
	var (
		post  healing.SupportPost
		found bool
	)
	_ = repo.db.read(func(t *tables) error {
		for _, p := range t.posts {
			if p.ID == id {
				post, found = p, true
				break
			}
		}
		return nil
	})
	if !found {
		return healing.SupportPost{}, healing.ErrNotFound
	}
	return post, nil
}

func (repo *healingRepository) ListSupportPosts(_ context.Context) ([]healing.SupportPost, error) {
	posts := make([]healing.SupportPost, 0)
	_ = repo.db.read(func(t *tables) error {
		byPost := make(map[string][]healing.SupportReply)
		for _, r := range t.replies {
			byPost[r.PostID] = append(byPost[r.PostID], r)
		}
		for i := len(t.posts) - 1; i >= 0; i-- {
			p := t.posts[i]
			p.Replies = append([]healing.SupportReply{}, byPost[p.ID]...)
			sort.SliceStable(p.Replies, func(i, j int) bool { return p.Replies[i].CreatedAt.Before(p.Replies[j].CreatedAt) })
			posts = append(posts, p)
		}
		return nil
	})
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (repo *healingRepository) CreateSupportReply(ctx context.Context, r healing.SupportReply) (healing.SupportReply, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		for _, p := range t.posts {
			if p.ID == r.PostID {
				t.replies = append(t.replies, r)
				return nil
			}
		}
		return healing.ErrPostNotFound
	})
	if err != nil {
		return healing.SupportReply{}, err
	}
	return r, nil
}
