package mq

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrClosed is returned by a closed in-process backend.
var ErrClosed = errors.New("mq closed")

// MemoryBackend is an in-process broker. A message a handler rejects is
// requeued at the tail of its channel once, then dropped. After Close,
// Publish fails and subscribers hand the messages still buffered to their
// handler before returning ErrClosed.
type MemoryBackend struct {
	mu       sync.Mutex
	channels map[string]chan Message
	size     int
	closed   chan struct{}
	once     sync.Once
}

func NewMemoryBackend(size int) *MemoryBackend {
	if size < 1 {
		size = 64
	}
	return &MemoryBackend{
		channels: make(map[string]chan Message),
		size:     size,
		closed:   make(chan struct{}),
	}
}

func (b *MemoryBackend) channel(name string) chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.channels[name]
	if !ok {
		ch = make(chan Message, b.size)
		b.channels[name] = ch
	}
	return ch
}

// Publish enqueues data on the named channel, blocking while it is full.
func (b *MemoryBackend) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("memory channel is required")
	}
	select {
	case <-b.closed:
		return "", ErrClosed
	default:
	}

	msg := Message{ID: uuid.NewString(), Data: data, Attributes: attrs}
	select {
	case <-b.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	case b.channel(channel) <- msg:
		return msg.ID, nil
	}
}

// Subscribe consumes the named channel until ctx ends or the backend closes.
func (b *MemoryBackend) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("memory channel is required")
	}
	ch := b.channel(channel)
	for {
		select {
		case <-b.closed:
			drain(ctx, ch, handler)
			return ErrClosed
		default:
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.closed:
			drain(ctx, ch, handler)
			return ErrClosed
		case msg := <-ch:
			if err := handler(ctx, msg); err != nil && msg.Attributes[attrRedelivered] == "" {
				select {
				case ch <- redelivery(msg):
				default:
				}
			}
		}
	}
}

const attrRedelivered = "redelivered"

func redelivery(msg Message) Message {
	attrs := make(map[string]string, len(msg.Attributes)+1)
	for key, value := range msg.Attributes {
		attrs[key] = value
	}
	attrs[attrRedelivered] = "true"
	msg.Attributes = attrs
	return msg
}

func drain(ctx context.Context, ch chan Message, handler Handler) {
	for {
		select {
		case msg := <-ch:
			_ = handler(ctx, msg)
		default:
			return
		}
	}
}

func (b *MemoryBackend) Close() error {
	b.once.Do(func() { close(b.closed) })
	return nil
}
