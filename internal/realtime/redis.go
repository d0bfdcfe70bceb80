package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisFeed carries change events over Redis pub/sub. Unlike the Postgres
// feed nothing publishes on its own: writers must call Publish after commit.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return f.client.Publish(ctx, channelName(e.Table), payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, tables ...string) (Subscription, error) {
	channels := make([]string, len(tables))
	for i, t := range tables {
		channels[i] = channelName(t)
	}

	ps := f.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so connection errors surface here.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %v: %w", channels, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan Event, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go sub.loop()
	return sub, nil
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan Event
	quit   chan struct{}
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) Events() <-chan Event { return s.events }

// Err is always nil: go-redis reconnects a dropped pub/sub connection itself.
func (s *redisSubscription) Err() error { return nil }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.quit)
		err = s.ps.Close()
		<-s.done
	})
	return err
}

func (s *redisSubscription) loop() {
	defer close(s.done)
	defer close(s.events)

	for msg := range s.ps.Channel() {
		e, err := decodeNotification(msg.Channel, msg.Payload)
		if err != nil {
			log.Printf("WARNING: %v", err)
			continue
		}
		select {
		case s.events <- e:
		case <-s.quit:
			return
		}
	}
}
