package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/minitodo/apiserver/config"
	"github.com/minitodo/apiserver/internal/mq"
	"go.uber.org/zap"
)

const messageKind = "email"

// Queue publishes messages to a broker topic for a Relay to deliver.
type Queue struct {
	mq    *mq.MQ
	topic string
}

func NewQueue(queue *mq.MQ, topic string) *Queue {
	return &Queue{mq: queue, topic: topic}
}

func (q *Queue) Notify(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errMissingRecipient
	}
	if _, err := q.mq.PublishJSON(ctx, q.topic, messageKind, msg); err != nil {
		return fmt.Errorf("publish email: %w", err)
	}
	return nil
}

func (q *Queue) Close() error {
	return q.mq.Close()
}

// Relay consumes messages published by a Queue and hands them to delivery.
// Malformed messages are logged and acknowledged; delivery failures are
// returned to the broker for redelivery.
func Relay(ctx context.Context, queue *mq.MQ, topic string, delivery Notifier, logger *zap.Logger) error {
	return queue.Subscribe(ctx, topic, func(ctx context.Context, raw mq.Message) error {
		if kind := raw.Attributes[mq.AttrKind]; kind != "" && kind != messageKind {
			logger.Warn("skipping message", zap.String("id", raw.ID), zap.String("kind", kind))
			return nil
		}
		msg, err := mq.DecodeJSON[Message](raw)
		if err != nil {
			logger.Error("dropping malformed message", zap.Error(err))
			return nil
		}
		if err := delivery.Notify(ctx, msg); err != nil {
			logger.Warn("delivery failed", zap.String("id", raw.ID), zap.String("to", msg.To), zap.Error(err))
			return err
		}
		logger.Debug("delivered", zap.String("id", raw.ID), zap.String("to", msg.To))
		return nil
	})
}

// localRelay is a Queue on the in-process broker with its Relay running
// alongside it.
type localRelay struct {
	*Queue
	done chan struct{}
}

func newLocalRelay(ctx context.Context, cfg config.Config, logger *zap.Logger) (*localRelay, error) {
	delivery, err := NewDelivery(DeliveryDriver(cfg.Mail), cfg.Mail, logger)
	if err != nil {
		return nil, err
	}
	queue, err := mq.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	local := &localRelay{Queue: NewQueue(queue, cfg.Notify.Topic), done: make(chan struct{})}
	go func() {
		defer close(local.done)
		err := Relay(context.WithoutCancel(ctx), queue, cfg.Notify.Topic, delivery, logger)
		if err != nil && !errors.Is(err, mq.ErrClosed) {
			logger.Error("relay stopped", zap.Error(err))
		}
	}()
	return local, nil
}

// Close closes the broker and waits for the relay to hand off what was
// still queued.
func (l *localRelay) Close() error {
	err := l.Queue.Close()
	<-l.done
	return err
}
