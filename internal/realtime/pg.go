package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGFeed listens for the notifications raised by the notify_table_change
// trigger. Each subscription holds one pooled connection for its lifetime.
type PGFeed struct {
	pool *pgxpool.Pool
}

func NewPGFeed(pool *pgxpool.Pool) *PGFeed {
	return &PGFeed{pool: pool}
}

func (f *PGFeed) Subscribe(ctx context.Context, tables ...string) (Subscription, error) {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire listen conn: %w", err)
	}
	for _, t := range tables {
		channel := pgx.Identifier{channelName(t)}.Sanitize()
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			conn.Release()
			return nil, fmt.Errorf("listen %s: %w", channel, err)
		}
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &pgSubscription{
		conn:   conn,
		cancel: cancel,
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	go sub.loop(subCtx)
	return sub, nil
}

type pgSubscription struct {
	conn   *pgxpool.Conn
	cancel context.CancelFunc
	events chan Event
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (s *pgSubscription) Events() <-chan Event { return s.events }

func (s *pgSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *pgSubscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *pgSubscription) loop(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)
	defer func() {
		// A connection interrupted mid-wait is closed by pgx; the pool
		// discards closed connections on release.
		_, _ = s.conn.Exec(context.Background(), "UNLISTEN *")
		s.conn.Release()
	}()

	for {
		n, err := s.conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
			}
			return
		}

		e, err := decodeNotification(n.Channel, n.Payload)
		if err != nil {
			// Still a change on that table; the payload is informational.
			e = Event{Table: strings.TrimSuffix(n.Channel, "_changes")}
		}
		select {
		case s.events <- e:
		case <-ctx.Done():
			return
		}
	}
}

// decodeNotification parses the {table, op, id} payload. The table falls
// back to the channel name when the payload omits it.
func decodeNotification(channel, payload string) (Event, error) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return Event{}, fmt.Errorf("decode %s payload: %w", channel, err)
	}
	if e.Table == "" {
		e.Table = strings.TrimSuffix(channel, "_changes")
	}
	return e, nil
}
