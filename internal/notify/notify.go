package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/minitodo/apiserver/config"
	"github.com/minitodo/apiserver/internal/mq"
	"go.uber.org/zap"
)

// Message is an outbound email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Notifier delivers messages to users.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, msg Message) error { return f(ctx, msg) }

var errMissingRecipient = errors.New("message has no recipient")

// Open builds the notifier selected by cfg.Notify.Driver and wraps it in an
// Async dispatcher. The memory driver queues in process and runs its own
// Relay to the provider DeliveryDriver picks. Closing the result drains pending messages and releases
// any broker connection.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Async, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var next Notifier
	switch cfg.Notify.Driver {
	case "rabbitmq", "pubsub":
		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		next = NewQueue(queue, cfg.Notify.Topic)
	case "memory":
		local, err := newLocalRelay(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		next = local
	default:
		delivery, err := NewDelivery(cfg.Notify.Driver, cfg.Mail, logger)
		if err != nil {
			return nil, err
		}
		next = delivery
	}
	return NewAsync(next, cfg.Notify.Workers, cfg.Notify.QueueSize, logger), nil
}

// NewDelivery returns a notifier that hands messages to a mail provider.
func NewDelivery(driver string, cfg config.MailConfig, logger *zap.Logger) (Notifier, error) {
	switch driver {
	case "sendgrid":
		return NewSendGrid(cfg)
	case "smtp":
		return NewSMTP(cfg)
	case "log", "":
		return NewLog(logger), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", driver)
	}
}

// DeliveryDriver picks the mail provider a queue relay should use when the
// notifier driver itself is a broker.
func DeliveryDriver(cfg config.MailConfig) string {
	switch {
	case cfg.SendGridAPIKey != "":
		return "sendgrid"
	case cfg.SMTPHost != "":
		return "smtp"
	default:
		return "log"
	}
}
