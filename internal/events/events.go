package events

import (
	"context"
	"encoding/json"
	"subsidy/config"
	"subsidy/internal/database"
	"subsidy/internal/logger"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	TypeRequestStateChanged = "request.state.changed"
	TypeRequestAssigned     = "request.assigned"
)

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventBus publishes lifecycle events over the cache server's pubsub so that
// websocket clients on any instance see them.
type EventBus struct {
	cache  database.CacheClient
	log    logger.Logger
	cancel context.CancelFunc
	ctx    context.Context
}

func New(cache database.CacheClient, config config.Config) *EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBus{
		cache:  cache,
		log:    logger.New("events"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (b *EventBus) Publish(channel string, event Event) error {
	log := b.log.Function("Publish")

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "event", event)
	}

	if b.cache == nil {
		log.Debug("event bus has no cache client, dropping event", "type", event.Type)
		return nil
	}

	if err := b.cache.Do(b.ctx,
		b.cache.B().Publish().Channel(channel).Message(string(payload)).Build()).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel, "type", event.Type)
	}

	return nil
}

// Subscribe delivers events published on channel to handler until the bus is
// closed. Blocks; run it on its own goroutine.
func (b *EventBus) Subscribe(channel string, handler func(Event)) error {
	log := b.log.Function("Subscribe")

	if b.cache == nil {
		return log.Error("event bus has no cache client")
	}

	return b.cache.Receive(b.ctx,
		b.cache.B().Subscribe().Channel(channel).Build(),
		func(msg valkey.PubSubMessage) {
			var event Event
			if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
				log.Er("failed to decode event", err, "channel", channel)
				return
			}
			handler(event)
		},
	)
}

func (b *EventBus) Close() error {
	b.cancel()
	return nil
}
