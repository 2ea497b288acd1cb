package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

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
	q := `INSERT INTO notifications (id, account_id, message, created_at) VALUES (:id, :account_id, :message, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, n); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo *notificationRepository) ListNotifications(ctx context.Context, accountID string, limit int) ([]notification.Notification, error) {
	q := `SELECT id, account_id, message, created_at FROM notifications WHERE account_id = $1 ORDER BY created_at DESC, id`
	args := []interface{}{accountID}
	if limit > 0 {
		q += " LIMIT $2"
		args = append(args, limit)
	}

	notifs := make([]notification.Notification, 0)
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &notifs, q, args...); err != nil {
		return nil, errors.Wrap(err, "listing notifications")
	}
	return notifs, nil
}
