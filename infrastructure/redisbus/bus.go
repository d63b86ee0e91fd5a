// Package redisbus carries committed domain events between hub instances
// over a Redis pub/sub channel. Every instance publishes what its services
// commit and replays what it receives into its local hub.
package redisbus

import (
	"chirp-hub/contract"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient creates a Redis client from a redis:// url and checks the connection.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %v", errors.ErrInvalidConfig, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

type publishClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Publisher is the EventPublisher used by services when the bus is enabled.
type Publisher struct {
	client  publishClient
	channel string
	now     func() time.Time
}

func NewPublisher(client *redis.Client, channel string) *Publisher {
	return &Publisher{client: client, channel: channel, now: time.Now}
}

func (p *Publisher) Publish(ctx context.Context, e event.DomainEvent) error {
	data, err := event.Encode(e, p.now())
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type(), err)
	}
	return nil
}

// Source is a worker relaying bus events into the local hub.
type Source struct {
	log     *slog.Logger
	client  *redis.Client
	channel string
	sink    contract.EventPublisher
}

func NewSource(log *slog.Logger, client *redis.Client, channel string, sink contract.EventPublisher) *Source {
	return &Source{log: log, client: client, channel: channel, sink: sink}
}

// Run subscribes to the channel until ctx ends. A closed subscription is an
// error so the supervisor restarts the worker.
func (s *Source) Run(ctx context.Context) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.channel, err)
	}
	s.log.Info("Subscribed to event bus", "channel", s.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("subscription to %s closed", s.channel)
			}
			if err := s.handle(ctx, []byte(msg.Payload)); err != nil {
				return err
			}
		}
	}
}

// handle drops payloads it cannot decode and stops only when the hub does.
func (s *Source) handle(ctx context.Context, payload []byte) error {
	e, err := event.Decode(payload)
	if err != nil {
		s.log.Warn("Dropped undecodable bus event", "channel", s.channel, "error", err)
		return nil
	}
	if err := s.sink.Publish(ctx, e); err != nil {
		if errors.Is(err, errors.ErrHubStopped) || ctx.Err() != nil {
			return nil
		}
		s.log.Error("Unable to relay bus event", "event", e.Type(), "error", err)
	}
	return nil
}
