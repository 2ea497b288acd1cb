package broker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/trezcool/haven/core"
	"github.com/trezcool/haven/core/notification"
)

const notificationCreatedKey = "notification.created"

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher forwards events to a RabbitMQ topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
}

var _ notification.Publisher = (*Publisher)(nil)

// NewPublisher connects to the broker and declares the events exchange.
func NewPublisher(conf *core.Config) (*Publisher, error) {
	conn, err := amqp.Dial(conf.AMQP.URL)
	if err != nil {
		return nil, errors.Wrap(err, "dialing rabbitmq")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening channel")
	}
	if err = ch.ExchangeDeclare(conf.AMQP.Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declaring exchange")
	}
	return &Publisher{conn: conn, ch: ch, exchange: conf.AMQP.Exchange}, nil
}

type notificationEvent struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Publish sends `n` with the "notification.created" routing key.
func (p *Publisher) Publish(ctx context.Context, n notification.Notification) error {
	return p.publishJSON(ctx, notificationCreatedKey, notificationEvent{
		ID:        n.ID,
		AccountID: n.AccountID,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
	})
}

func (p *Publisher) publishJSON(ctx context.Context, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	return errors.Wrapf(err, "publishing %s", key)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
