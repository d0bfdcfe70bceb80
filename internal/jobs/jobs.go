// Package jobs runs the periodic background work: the fallback order poll
// and the idle cart sweep.
package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Trigger requests an order reload. Satisfied by *realtime.Bridge.
type Trigger interface {
	Trigger()
}

// Sweeper drops idle cart sessions. Satisfied by *cart.Registry.
type Sweeper interface {
	Sweep(ttl time.Duration) int
}

type Config struct {
	PollInterval  time.Duration
	SweepInterval time.Duration
	CartIdleTTL   time.Duration
}

// Start schedules both jobs and starts the scheduler. Call Shutdown on the
// result to stop it.
func Start(cfg Config, poll Trigger, carts Sweeper) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("new scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(cfg.PollInterval),
		gocron.NewTask(poll.Trigger),
		gocron.WithName("order-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule order poll: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			if n := carts.Sweep(cfg.CartIdleTTL); n > 0 {
				log.Printf("swept %d idle cart(s)", n)
			}
		}),
		gocron.WithName("cart-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule cart sweep: %w", err)
	}

	s.Start()
	return s, nil
}
