package realtime

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

var errSubscriptionClosed = errors.New("subscription closed")

// Reloader rebuilds the order snapshot from the backend.
type Reloader interface {
	Reload(ctx context.Context) error
}

// BridgeOptions tune reload pacing. Zero values fall back to 250ms between
// reloads and a 2s re-subscribe back-off.
type BridgeOptions struct {
	MinInterval time.Duration
	Backoff     time.Duration
}

// Bridge keeps the store in sync with the backend: every change event on
// orders or order_items, and every Trigger call, leads to a full reload.
// Requests arriving while a reload is pending collapse into one.
type Bridge struct {
	feed        Changefeed
	reloader    Reloader
	tables      []string
	minInterval time.Duration
	backoff     time.Duration

	trigger chan struct{}
}

func NewBridge(feed Changefeed, reloader Reloader, opts BridgeOptions) *Bridge {
	if opts.MinInterval <= 0 {
		opts.MinInterval = 250 * time.Millisecond
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	return &Bridge{
		feed:        feed,
		reloader:    reloader,
		tables:      []string{TableOrders, TableOrderItems},
		minInterval: opts.MinInterval,
		backoff:     opts.Backoff,
		trigger:     make(chan struct{}, 1),
	}
}

// Trigger requests a reload without blocking.
func (b *Bridge) Trigger() {
	select {
	case b.trigger <- struct{}{}:
	default:
	}
}

// Run subscribes and serves reloads until ctx is cancelled, then releases
// the subscription.
func (b *Bridge) Run(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.subscribeLoop(ctx)
	}()

	b.reloadLoop(ctx)
	<-done
}

func (b *Bridge) reloadLoop(ctx context.Context) {
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.trigger:
		}

		if wait := b.minInterval - time.Since(last); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		if err := b.reloader.Reload(ctx); err != nil && ctx.Err() == nil {
			log.Printf("ERROR: reload orders: %v", err)
		}
		last = time.Now()
	}
}

func (b *Bridge) subscribeLoop(ctx context.Context) {
	channel := strings.Join(b.tables, ",")
	for {
		sub, err := b.feed.Subscribe(ctx, b.tables...)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("ERROR: %v", &SubscriptionError{Channel: channel, Err: err})
		} else {
			// Changes made while unsubscribed were never delivered.
			b.Trigger()
			b.consume(ctx, sub)
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}
			err = sub.Err()
			if err == nil {
				err = errSubscriptionClosed
			}
			log.Printf("ERROR: %v", &SubscriptionError{Channel: channel, Err: err})
		}

		timer := time.NewTimer(b.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (b *Bridge) consume(ctx context.Context, sub Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			b.Trigger()
		}
	}
}
