package mq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/minitodo/apiserver/config"
	"google.golang.org/api/option"
)

// AttrDeliveryAttempt is set on messages handed to a Pub/Sub subscriber.
const AttrDeliveryAttempt = "delivery-attempt"

// PubSubClient carries notification jobs over Google Cloud Pub/Sub. Each
// channel is a topic with a single pull subscription named after it; both
// are created on first use and topic handles are reused across publishes.
type PubSubClient struct {
	client             *pubsub.Client
	subscriptionSuffix string
	maxOutstanding     int
	maxAttempts        int

	mu     sync.Mutex
	topics map[string]*pubsub.Topic

	attemptsMu sync.Mutex
	attempts   map[string]int
}

// NewPubSubClient constructs a Pub/Sub client from config.
func NewPubSubClient(ctx context.Context, cfg config.PubSubConfig) (*PubSubClient, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("pubsub project id is required")
	}

	var opts []option.ClientOption
	if strings.TrimSpace(cfg.CredentialsFile) != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, err
	}
	return newPubSubClient(client, cfg), nil
}

func newPubSubClient(client *pubsub.Client, cfg config.PubSubConfig) *PubSubClient {
	maxAttempts := cfg.MaxDeliveryAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &PubSubClient{
		client:             client,
		subscriptionSuffix: cfg.SubscriptionSuffix,
		maxOutstanding:     cfg.MaxOutstanding,
		maxAttempts:        maxAttempts,
		topics:             make(map[string]*pubsub.Topic),
		attempts:           make(map[string]int),
	}
}

// Publish sends data to the channel's topic and waits for the server ack.
func (p *PubSubClient) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if strings.TrimSpace(channel) == "" {
		return "", errors.New("pubsub channel is required")
	}

	topic, err := p.topic(ctx, channel)
	if err != nil {
		return "", err
	}
	id, err := topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish to %s: %w", channel, err)
	}
	return id, nil
}

// Subscribe pulls from the channel's subscription. A message the handler
// rejects is nacked for redelivery until it has been tried maxAttempts
// times, then acked and dropped.
func (p *PubSubClient) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if strings.TrimSpace(channel) == "" {
		return errors.New("pubsub channel is required")
	}

	topic, err := p.topic(ctx, channel)
	if err != nil {
		return err
	}
	sub, err := p.subscription(ctx, SubscriptionName(channel, p.subscriptionSuffix), topic)
	if err != nil {
		return err
	}
	if p.maxOutstanding > 0 {
		sub.ReceiveSettings.MaxOutstandingMessages = p.maxOutstanding
	}

	return sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		attempt := p.attempt(msg.ID)
		attrs := make(map[string]string, len(msg.Attributes)+1)
		for key, value := range msg.Attributes {
			attrs[key] = value
		}
		attrs[AttrDeliveryAttempt] = strconv.Itoa(attempt)

		err := handler(ctx, Message{ID: msg.ID, Data: msg.Data, Attributes: attrs})
		if err != nil && attempt < p.maxAttempts {
			msg.Nack()
			return
		}
		p.forget(msg.ID)
		msg.Ack()
	})
}

// Close flushes pending publishes and closes the client.
func (p *PubSubClient) Close() error {
	p.mu.Lock()
	for name, topic := range p.topics {
		topic.Stop()
		delete(p.topics, name)
	}
	p.mu.Unlock()
	return p.client.Close()
}

func (p *PubSubClient) topic(ctx context.Context, name string) (*pubsub.Topic, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if topic, ok := p.topics[name]; ok {
		return topic, nil
	}

	topic := p.client.Topic(name)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("topic %s: %w", name, err)
	}
	if !exists {
		if topic, err = p.client.CreateTopic(ctx, name); err != nil {
			return nil, fmt.Errorf("create topic %s: %w", name, err)
		}
	}
	p.topics[name] = topic
	return topic, nil
}

func (p *PubSubClient) subscription(ctx context.Context, name string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub := p.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscription %s: %w", name, err)
	}
	if !exists {
		sub, err = p.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{Topic: topic})
		if err != nil {
			return nil, fmt.Errorf("create subscription %s: %w", name, err)
		}
	}
	return sub, nil
}

// attempt counts deliveries of id seen by this process.
func (p *PubSubClient) attempt(id string) int {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()
	p.attempts[id]++
	return p.attempts[id]
}

func (p *PubSubClient) forget(id string) {
	p.attemptsMu.Lock()
	defer p.attemptsMu.Unlock()
	delete(p.attempts, id)
}

// SubscriptionName is the pull subscription used for channel.
func SubscriptionName(channel, suffix string) string {
	if suffix == "" {
		return channel
	}
	return channel + suffix
}
