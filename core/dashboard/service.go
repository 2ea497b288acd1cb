package dashboard

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/account"
	"github.com/trezcool/haven/core/healing"
	"github.com/trezcool/haven/core/learning"
	"github.com/trezcool/haven/core/microgrant"
	"github.com/trezcool/haven/core/notification"
)

const (
	weeklyJournalGoal     = 5
	journalWindow         = 7 * 24 * time.Hour
	noCourseTitle         = "No course enrolled"
	noMicrograntStatus    = "Not Applied"
	mentorshipSessionTime = "Tomorrow, 2PM"
	unknownMoodEmoji      = "❓"
)

var moodEmojis = map[string]string{
	"Sad":        "😢",
	"Worried":    "😕",
	"Neutral":    "😐",
	"Okay":       "🙂",
	"Happy":      "😄",
	"Peaceful":   "😌",
	"Frustrated": "😤",
	"Anxious":    "😰",
}

type (
	Mood struct {
		Label *string `json:"label"`
		Emoji *string `json:"emoji"`
	}

	NotificationItem struct {
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}

	// View is the dashboard of a youth account.
	View struct {
		Name                      string             `json:"name"`
		Mood                      Mood               `json:"mood"`
		JournalEntriesThisWeek    int                `json:"journal_entries_this_week"`
		JournalProgressPercent    int                `json:"journal_progress_percent"`
		CourseTitle               string             `json:"course_title"`
		CourseProgressPercent     int                `json:"course_progress_percent"`
		MicrograntStatus          string             `json:"microgrant_status"`
		MicrograntProgressPercent int                `json:"microgrant_progress_percent"`
		MentorshipSessionTime     string             `json:"mentorship_session_time"`
		Notifications             []NotificationItem `json:"notifications"`
	}
)

type (
	Healing interface {
		LatestMood(ctx context.Context, accountID string) (healing.MoodCheckIn, error)
		CountJournalEntriesSince(ctx context.Context, accountID string, since time.Time) (int, error)
	}

	Learning interface {
		ListEnrollments(ctx context.Context, accountID string) ([]learning.Enrollment, error)
	}

	Microgrants interface {
		First(ctx context.Context, accountID string) (microgrant.Application, error)
	}

	Notifications interface {
		Latest(ctx context.Context, accountID string, n int) ([]notification.Notification, error)
	}

	// Service aggregates, per request, the activity of a youth account. It never writes.
	Service struct {
		healing          Healing
		learning         Learning
		microgrants      Microgrants
		notifications    Notifications
		notificationsMax int
		now              func() time.Time
	}
)

func NewService(
	healingSvc Healing,
	learningSvc Learning,
	micrograntSvc Microgrants,
	notificationSvc Notifications,
	conf *core.Config,
) *Service {
	return &Service{
		healing:          healingSvc,
		learning:         learningSvc,
		microgrants:      micrograntSvc,
		notifications:    notificationSvc,
		notificationsMax: conf.Server.DashboardNotificationsMax,
		now:              time.Now,
	}
}

// Get returns the dashboard of `acc`, or nil if its role has none (every role but youth).
func (svc *Service) Get(ctx context.Context, acc account.Account) (*View, error) {
	if !acc.IsYouth() {
		return nil, nil
	}

	view := &View{
		Name:                  acc.FullName,
		MentorshipSessionTime: mentorshipSessionTime,
	}

	// each task writes its own fields of `view`
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		mood, err := svc.healing.LatestMood(ctx, acc.ID)
		if err != nil {
			if errors.Cause(err) == healing.ErrNotFound {
				return nil
			}
			return errors.Wrap(err, "getting latest mood")
		}
		view.Mood = MoodOf(mood.Mood)
		return nil
	})
	g.Go(func() error {
		count, err := svc.healing.CountJournalEntriesSince(ctx, acc.ID, svc.now().Add(-journalWindow))
		if err != nil {
			return errors.Wrap(err, "counting journal entries")
		}
		view.JournalEntriesThisWeek = count
		view.JournalProgressPercent = JournalProgressPercent(count)
		return nil
	})
	g.Go(func() error {
		enrollments, err := svc.learning.ListEnrollments(ctx, acc.ID)
		if err != nil {
			return errors.Wrap(err, "listing enrollments")
		}
		view.CourseTitle, view.CourseProgressPercent = courseProgress(enrollments)
		return nil
	})
	g.Go(func() error {
		view.MicrograntStatus = noMicrograntStatus
		app, err := svc.microgrants.First(ctx, acc.ID)
		if err != nil {
			if errors.Cause(err) == microgrant.ErrNotFound {
				return nil
			}
			return errors.Wrap(err, "getting microgrant application")
		}
		view.MicrograntStatus = app.Status.Label()
		view.MicrograntProgressPercent = app.Status.ProgressPercent()
		return nil
	})
	g.Go(func() error {
		notifs, err := svc.notifications.Latest(ctx, acc.ID, svc.notificationsMax)
		if err != nil {
			return errors.Wrap(err, "listing notifications")
		}
		view.Notifications = make([]NotificationItem, 0, len(notifs))
		for _, n := range notifs {
			view.Notifications = append(view.Notifications, NotificationItem{Message: n.Message, Timestamp: n.CreatedAt})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

// MoodOf maps a mood label to its emoji; unknown labels get a question mark.
func MoodOf(label string) Mood {
	emoji, ok := moodEmojis[label]
	if !ok {
		emoji = unknownMoodEmoji
	}
	return Mood{Label: &label, Emoji: &emoji}
}

// JournalProgressPercent is the share of the weekly journaling goal reached by `count` entries, capped at 100.
func JournalProgressPercent(count int) int {
	pct := int(math.RoundToEven(100 * float64(count) / weeklyJournalGoal))
	if pct > 100 {
		return 100
	}
	return pct
}

func courseProgress(enrollments []learning.Enrollment) (string, int) {
	if len(enrollments) == 0 {
		return noCourseTitle, 0
	}
	var total int
	for _, e := range enrollments {
		total += e.Progress
	}
	return enrollments[0].CourseTitle, int(math.RoundToEven(float64(total) / float64(len(enrollments))))
}
