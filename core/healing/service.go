package healing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("not found")
	ErrPostNotFound = core.NewNotFoundError("support post not found")
)

type (
	Repository interface {
		CreateMoodCheckIn(ctx context.Context, m MoodCheckIn) (MoodCheckIn, error)
		// LatestMoodCheckIn fails with ErrNotFound when the account never checked in.
		LatestMoodCheckIn(ctx context.Context, accountID string) (MoodCheckIn, error)
		CreateJournalEntry(ctx context.Context, e JournalEntry) (JournalEntry, error)
		// ListJournalEntries returns the entries of the account, newest first.
		ListJournalEntries(ctx context.Context, accountID string) ([]JournalEntry, error)
		CountJournalEntriesSince(ctx context.Context, accountID string, since time.Time) (int, error)
		CreateSupportPost(ctx context.Context, p SupportPost) (SupportPost, error)
		GetSupportPost(ctx context.Context, id string) (SupportPost, error)
		// ListSupportPosts returns every post with its replies, newest post first and replies oldest first.
		ListSupportPosts(ctx context.Context) ([]SupportPost, error)
		CreateSupportReply(ctx context.Context, r SupportReply) (SupportReply, error)
	}

	// Notifier is told about new journal entries.
	Notifier interface {
		JournalEntryCreated(ctx context.Context, accountID string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
	}
)

func NewService(repo Repository, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

func (svc *Service) CheckInMood(ctx context.Context, accountID string, nm NewMoodCheckIn) (MoodCheckIn, error) {
	return svc.repo.CreateMoodCheckIn(ctx, MoodCheckIn{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Mood:      nm.Mood,
		Timestamp: time.Now().UTC(),
	})
}

func (svc *Service) LatestMood(ctx context.Context, accountID string) (MoodCheckIn, error) {
	return svc.repo.LatestMoodCheckIn(ctx, accountID)
}

// CreateJournalEntry stores the entry, then notifies its author.
func (svc *Service) CreateJournalEntry(ctx context.Context, accountID string, nj NewJournalEntry) (JournalEntry, error) {
	entry, err := svc.repo.CreateJournalEntry(ctx, JournalEntry{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Content:   nj.Content,
		Anonymous: nj.Anonymous,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return JournalEntry{}, errors.Wrap(err, "creating journal entry")
	}
	svc.notifier.JournalEntryCreated(ctx, accountID)
	return entry, nil
}

func (svc *Service) ListJournalEntries(ctx context.Context, accountID string) ([]JournalEntry, error) {
	return svc.repo.ListJournalEntries(ctx, accountID)
}

func (svc *Service) CountJournalEntriesSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	return svc.repo.CountJournalEntriesSince(ctx, accountID, since)
}

func (svc *Service) CreatePost(ctx context.Context, accountID string, np NewSupportPost) (SupportPost, error) {
	anonymous := true
	if np.Anonymous != nil {
		anonymous = *np.Anonymous
	}
	post, err := svc.repo.CreateSupportPost(ctx, SupportPost{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Content:   np.Content,
		Anonymous: anonymous,
		Category:  np.Category,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return SupportPost{}, errors.Wrap(err, "creating support post")
	}
	post.Replies = []SupportReply{}
	return post, nil
}

func (svc *Service) ListPosts(ctx context.Context) ([]SupportPost, error) {
	return svc.repo.ListSupportPosts(ctx)
}

// Reply adds a reply to the post `postID`.
func (svc *Service) Reply(ctx context.Context, postID, accountID string, nr NewSupportReply) (SupportReply, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return SupportReply{}, ErrPostNotFound
	}
	if _, err := svc.repo.GetSupportPost(ctx, postID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return SupportReply{}, ErrPostNotFound
		}
		return SupportReply{}, errors.Wrap(err, "finding support post")
	}
	return svc.repo.CreateSupportReply(ctx, SupportReply{
		ID:        uuid.NewString(),
		PostID:    postID,
		AccountID: accountID,
		Content:   nr.Content,
		CreatedAt: time.Now().UTC(),
	})
}
