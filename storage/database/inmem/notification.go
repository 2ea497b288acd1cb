package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/haven/core/notification"
)

type notificationRepository struct {
	db *DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		t.notifications = append(t.notifications, n)
		return nil
	})
	return n, err
}

func (repo *notificationRepository) ListNotifications(_ context.Context, accountID string, limit int) ([]notification.Notification, error) {
	notifs := make([]notification.Notification, 0)
	_ = repo.db.read(func(t *tables) error {
		// latest inserted first among equal timestamps
		for i := len(t.notifications) - 1; i >= 0; i-- {
			if n := t.notifications[i]; n.AccountID == accountID {
				notifs = append(notifs, n)
			}
		}
		return nil
	})
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	if limit > 0 && len(notifs) > limit {
		notifs = notifs[:limit]
	}
	return notifs, nil
}
