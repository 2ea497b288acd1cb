package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core"
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		// ListNotifications returns the notifications of the account, newest first. A limit <= 0 means no limit.
		ListNotifications(ctx context.Context, accountID string, limit int) ([]Notification, error)
	}

	// Publisher forwards stored notifications to other systems.
	Publisher interface {
		Publish(ctx context.Context, n Notification) error
	}

	// Service stores the notifications fired by domain events.
	// Emitting is best effort: failures are logged and never reach the caller.
	Service struct {
		repo      Repository
		publisher Publisher
		logger    core.Logger
	}
)

func NewService(repo Repository, logger core.Logger, publisher ...Publisher) *Service {
	svc := &Service{repo: repo, logger: logger}
	if len(publisher) > 0 {
		svc.publisher = publisher[0]
	}
	return svc
}

// JournalEntryCreated notifies the author of a new journal entry.
func (svc *Service) JournalEntryCreated(ctx context.Context, accountID string) {
	svc.emit(ctx, accountID, journalEntryCreatedText)
}

// MicrograntUpdated notifies the applicant of a modified microgrant application, carrying its current `status`.
func (svc *Service) MicrograntUpdated(ctx context.Context, accountID, status string) {
	svc.emit(ctx, accountID, fmt.Sprintf(micrograntUpdatedFormat, HumanizeStatus(status)))
}

func (svc *Service) emit(ctx context.Context, accountID, msg string) {
	n, err := svc.repo.CreateNotification(ctx, Notification{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		svc.logger.Error("emitting notification", errors.Wrap(err, "creating notification"), map[string]interface{}{
			"account_id": accountID,
			"message":    msg,
		})
		return
	}

	if svc.publisher != nil {
		if err = svc.publisher.Publish(ctx, n); err != nil {
			svc.logger.Warn("publishing notification", errors.Wrap(err, "publishing notification"), map[string]interface{}{
				"notification_id": n.ID,
			})
		}
	}
}

func (svc *Service) List(ctx context.Context, accountID string) ([]Notification, error) {
	return svc.repo.ListNotifications(ctx, accountID, 0)
}

// Latest returns the `n` most recent notifications of the account.
func (svc *Service) Latest(ctx context.Context, accountID string, n int) ([]Notification, error) {
	if n <= 0 {
		return []Notification{}, nil
	}
	return svc.repo.ListNotifications(ctx, accountID, n)
}
