package inmemdb

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
	"github.com/trezcool/haven/core/profile"
	"github.com/trezcool/haven/core/story"
)

func newAccount(t *testing.T, repo *accountRepository, email string, role account.Role) account.Account {
	now := time.Now().UTC()
	acc, err := repo.CreateAccount(context.Background(), account.Account{
		ID:        uuid.NewString(),
		FullName:  "Test " + string(role),
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return acc
}

func TestDB_InTx(t *testing.T) {
	ctx := context.Background()
	db := Open()
	accRepo := NewAccountRepository(db)
	profRepo := NewProfileRepository(db)

	t.Run("rolled back on error", func(t *testing.T) {
		errBoom := errors.New("boom")
		id := uuid.NewString()
		err := db.InTx(ctx, func(ctx context.Context) error {
			_, err := accRepo.CreateAccount(ctx, account.Account{ID: id, Email: "rollback@test.cd", Role: account.RoleYouth})
			require.NoError(t, err)
			require.NoError(t, profRepo.EnsureProfile(ctx, profile.NewYouth(id)))
			return errBoom
		})
		assert.Equal(t, errBoom, err)

		_, err = accRepo.GetAccount(ctx, account.GetFilter{ID: id})
		assert.Equal(t, account.ErrNotFound, err)
		_, err = profRepo.GetProfile(ctx, account.RoleYouth, id)
		assert.Equal(t, profile.ErrNotFound, err)
	})

	t.Run("committed", func(t *testing.T) {
		id := uuid.NewString()
		err := db.InTx(ctx, func(ctx context.Context) error {
			if _, err := accRepo.CreateAccount(ctx, account.Account{ID: id, Email: "commit@test.cd", Role: account.RoleDonor}); err != nil {
				return err
			}
			// nested transactions join the outer one
			return db.InTx(ctx, func(ctx context.Context) error {
				return profRepo.EnsureProfile(ctx, profile.NewDonor(id))
			})
		})
		require.NoError(t, err)

		_, err = accRepo.GetAccount(ctx, account.GetFilter{ID: id})
		assert.NoError(t, err)
		_, err = profRepo.GetProfile(ctx, account.RoleDonor, id)
		assert.NoError(t, err)
	})
}

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewAccountRepository(db)
	notifRepo := NewNotificationRepository(db)

	mentor := newAccount(t, repo, "mentor@test.cd", account.RoleMentor)
	youth := newAccount(t, repo, "youth@test.cd", account.RoleYouth)
	youth.MentorID = &mentor.ID
	_, err := repo.UpdateAccount(ctx, youth)
	require.NoError(t, err)

	t.Run("email uniqueness", func(t *testing.T) {
		assert.Equal(t, account.ErrEmailExists, repo.CheckEmailUniqueness(ctx, "YOUTH@test.cd"))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "youth@test.cd", youth.ID))
		assert.NoError(t, repo.CheckEmailUniqueness(ctx, "new@test.cd"))

		_, err := repo.CreateAccount(ctx, account.Account{ID: uuid.NewString(), Email: "mentor@test.cd"})
		assert.Equal(t, account.ErrEmailExists, err)
	})

	t.Run("get by email", func(t *testing.T) {
		got, err := repo.GetAccount(ctx, account.GetFilter{Email: "mentor@test.cd"})
		require.NoError(t, err)
		assert.Equal(t, mentor.ID, got.ID)
	})

	t.Run("delete cascades", func(t *testing.T) {
		_, err := notifRepo.CreateNotification(ctx, notification.Notification{ID: uuid.NewString(), AccountID: mentor.ID, Message: "hi"})
		require.NoError(t, err)
		storyRepo := NewStoryRepository(db)
		_, err = storyRepo.CreateStory(ctx, story.Story{ID: uuid.NewString(), AccountID: mentor.ID, Category: story.CategoryHope})
		require.NoError(t, err)
		grantRepo := NewMicrograntRepository(db)
		_, err = grantRepo.CreateSuccessStory(ctx, microgrant.SuccessStory{ID: uuid.NewString(), AccountID: mentor.ID, Status: microgrant.StoryApproved})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteAccount(ctx, mentor.ID))
		assert.Equal(t, account.ErrNotFound, repo.DeleteAccount(ctx, mentor.ID))

		got, err := repo.GetAccount(ctx, account.GetFilter{ID: youth.ID})
		require.NoError(t, err)
		assert.Nil(t, got.MentorID)

		notifs, err := notifRepo.ListNotifications(ctx, mentor.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, notifs)
		stories, err := storyRepo.ListStories(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, stories)
		successes, err := grantRepo.ListSuccessStories(ctx, microgrant.StoryApproved)
		require.NoError(t, err)
		assert.Empty(t, successes)
	})
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := Open()
	repo := NewProfileRepository(db)
	mentor := newAccount(t, NewAccountRepository(db), "mentor@test.cd", account.RoleMentor)

	t.Run("ensure keeps the existing profile", func(t *testing.T) {
		p := profile.NewMentor(mentor.ID)
		p.Bio = "first"
		require.NoError(t, repo.EnsureProfile(ctx, p))
		require.NoError(t, repo.EnsureProfile(ctx, profile.NewMentor(mentor.ID)))

		got, err := repo.GetProfile(ctx, account.RoleMentor, mentor.ID)
		require.NoError(t, err)
		assert.Equal(t, "first", got.(*profile.Mentor).Bio)
	})

	t.Run("returned profiles are copies", func(t *testing.T) {
		got, err := repo.GetProfile(ctx, account.RoleMentor, mentor.ID)
		require.NoError(t, err)
		got.(*profile.Mentor).Expertise = append(got.(*profile.Mentor).Expertise, "Law")

		again, err := repo.GetProfile(ctx, account.RoleMentor, mentor.ID)
		require.NoError(t, err)
		assert.Empty(t, again.(*profile.Mentor).Expertise)
	})

	t.Run("mentor directory", func(t *testing.T) {
		cards, err := repo.ListMentors(ctx)
		require.NoError(t, err)
		require.Len(t, cards, 1)
		assert.Equal(t, mentor.ID, cards[0].ID)
		assert.True(t, cards[0].Available)

		_, err = repo.GetMentor(ctx, uuid.NewString())
		assert.Equal(t, profile.ErrNotFound, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeleteProfile(ctx, account.RoleMentor, mentor.ID))
		assert.Equal(t, profile.ErrNotFound, repo.DeleteProfile(ctx, account.RoleMentor, mentor.ID))
	})
}

func TestNotificationRepository_ListNotifications(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(Open())
	accountID := uuid.NewString()
	now := time.Now().UTC()

	for i := 0; i < 7; i++ {
		_, err := repo.CreateNotification(ctx, notification.Notification{
			ID:        uuid.NewString(),
			AccountID: accountID,
			Message:   string(rune('a' + i)),
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := repo.CreateNotification(ctx, notification.Notification{ID: uuid.NewString(), AccountID: uuid.NewString(), CreatedAt: now})
	require.NoError(t, err)

	all, err := repo.ListNotifications(ctx, accountID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	latest, err := repo.ListNotifications(ctx, accountID, 5)
	require.NoError(t, err)
	require.Len(t, latest, 5)
	assert.Equal(t, "g", latest[0].Message)
	assert.Equal(t, "c", latest[4].Message)
}

func TestHealingRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewHealingRepository(Open())
	accountID := uuid.NewString()
	now := time.Now().UTC()

	_, err := repo.LatestMoodCheckIn(ctx, accountID)
	assert.Equal(t, healing.ErrNotFound, err)

	for i, mood := range []string{"Sad", "Okay", "Happy"} {
		_, err = repo.CreateMoodCheckIn(ctx, healing.MoodCheckIn{ID: uuid.NewString(), AccountID: accountID, Mood: mood, Timestamp: now.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}
	latest, err := repo.LatestMoodCheckIn(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, "Happy", latest.Mood)

	_, err = repo.CreateJournalEntry(ctx, healing.JournalEntry{ID: uuid.NewString(), AccountID: accountID, Timestamp: now.Add(-8 * 24 * time.Hour)})
	require.NoError(t, err)
	_, err = repo.CreateJournalEntry(ctx, healing.JournalEntry{ID: uuid.NewString(), AccountID: accountID, Timestamp: now})
	require.NoError(t, err)
	count, err := repo.CountJournalEntriesSince(ctx, accountID, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	post, err := repo.CreateSupportPost(ctx, healing.SupportPost{ID: uuid.NewString(), AccountID: accountID, CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.CreateSupportReply(ctx, healing.SupportReply{ID: uuid.NewString(), PostID: post.ID, AccountID: accountID, Content: "hang in there", CreatedAt: now})
	require.NoError(t, err)
	_, err = repo.CreateSupportReply(ctx, healing.SupportReply{ID: uuid.NewString(), PostID: uuid.NewString()})
	assert.Equal(t, healing.ErrPostNotFound, err)

	posts, err := repo.ListSupportPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Len(t, posts[0].Replies, 1)
	assert.Equal(t, "hang in there", posts[0].Replies[0].Content)
}

func TestMicrograntRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMicrograntRepository(Open())
	accountID := uuid.NewString()
	now := time.Now().UTC()

	_, err := repo.FirstApplication(ctx, accountID)
	assert.Equal(t, microgrant.ErrNotFound, err)

	first, err := repo.CreateApplication(ctx, microgrant.Application{ID: uuid.NewString(), AccountID: accountID, SubmittedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	second, err := repo.CreateApplication(ctx, microgrant.Application{ID: uuid.NewString(), AccountID: accountID, SubmittedAt: now})
	require.NoError(t, err)

	got, err := repo.FirstApplication(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	apps, err := repo.ListApplications(ctx, accountID)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, second.ID, apps[0].ID)
}

func TestLearningRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewLearningRepository(Open())
	accountID := uuid.NewString()

	course, err := repo.CreateCourse(ctx, learning.Course{ID: uuid.NewString(), Title: "Business Basics"})
	require.NoError(t, err)

	e, err := repo.CreateEnrollment(ctx, learning.Enrollment{ID: uuid.NewString(), AccountID: accountID, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, "Business Basics", e.CourseTitle)

	_, err = repo.CreateEnrollment(ctx, learning.Enrollment{ID: uuid.NewString(), AccountID: accountID, CourseID: course.ID})
	assert.Equal(t, learning.ErrAlreadyEnrolled, err)

	_, err = repo.GetEnrollment(ctx, uuid.NewString())
	assert.Equal(t, learning.ErrEnrollmentNotFound, err)
}
