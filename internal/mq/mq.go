package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/minitodo/apiserver/config"
)

// Attribute keys set on every message published through PublishJSON.
const (
	AttrContentType = "content-type"
	AttrKind        = "kind"
)

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Open connects to the broker selected by the notifier driver: rabbitmq,
// pubsub or the in-process memory broker.
func Open(ctx context.Context, cfg config.Config) (*MQ, error) {
	switch cfg.Notify.Driver {
	case "rabbitmq":
		client, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		return New(client), nil
	case "pubsub":
		client, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, fmt.Errorf("pubsub: %w", err)
		}
		return New(client), nil
	case "memory":
		return New(NewMemoryBackend(cfg.Notify.QueueSize)), nil
	default:
		return nil, fmt.Errorf("driver %q has no message queue", cfg.Notify.Driver)
	}
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// PublishJSON encodes v and publishes it tagged with kind.
func (m *MQ) PublishJSON(ctx context.Context, channel, kind string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", kind, err)
	}
	return m.backend.Publish(ctx, channel, data, map[string]string{
		AttrContentType: "application/json",
		AttrKind:        kind,
	})
}

// Subscribe consumes messages from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}

// DecodeJSON unmarshals a message published with PublishJSON.
func DecodeJSON[T any](msg Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		return v, fmt.Errorf("decode message %s: %w", msg.ID, err)
	}
	return v, nil
}
