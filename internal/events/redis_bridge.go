package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBridge relays change events between service instances over Redis
// pub/sub. Events published locally are forwarded to the channel; events
// received from other instances are re-published locally as SourceRemote.
type RedisBridge struct {
	client     *redis.Client
	channel    string
	origin     string
	dispatcher Dispatcher
	logger     *zap.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	done   chan struct{}
}

// NewRedisBridge creates a bridge with a unique origin identifier.
func NewRedisBridge(client *redis.Client, channel string, dispatcher Dispatcher, logger *zap.Logger) *RedisBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBridge{
		client:     client,
		channel:    channel,
		origin:     uuid.NewString(),
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Origin identifies this instance on the channel.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// Forward publishes a locally observed event to the channel. Remote events
// are not forwarded again.
func (b *RedisBridge) Forward(ctx context.Context, event Event) error {
	if event.Source == SourceRemote {
		return nil
	}
	event.Origin = b.origin
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Start subscribes to the channel and registers Forward on the dispatcher.
func (b *RedisBridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub != nil {
		return nil
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.pubsub = pubsub
	b.done = make(chan struct{})
	b.dispatcher.SubscribeAll(b.Forward)

	go b.relay(ctx, pubsub.Channel(), b.done)
	b.logger.Info("change bridge subscribed", zap.String("channel", b.channel), zap.String("origin", b.origin))
	return nil
}

// Stop closes the subscription and waits for the relay loop to exit.
func (b *RedisBridge) Stop() {
	b.mu.Lock()
	pubsub, done := b.pubsub, b.done
	b.pubsub = nil
	b.mu.Unlock()

	if pubsub == nil {
		return
	}
	if err := pubsub.Close(); err != nil {
		b.logger.Warn("closing change bridge", zap.Error(err))
	}
	<-done
}

func (b *RedisBridge) relay(ctx context.Context, messages <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range messages {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.Warn("dropping malformed change event", zap.Error(err))
			continue
		}
		if event.Origin == b.origin {
			continue
		}
		event.Source = SourceRemote
		if err := b.dispatcher.Publish(ctx, event); err != nil {
			b.logger.Warn("relaying change event", zap.String("event_id", event.ID), zap.Error(err))
		}
	}
}
