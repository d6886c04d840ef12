package cache

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"mouscache/internal/common/logging"
)

// DefaultReapSchedule is used when NewReaper gets an empty schedule.
const DefaultReapSchedule = "@every 1m"

// Purger is implemented by caches that can drop expired entries on demand.
type Purger interface {
	PurgeExpired() int
}

// Reaper periodically purges expired objects. It is optional: without it
// expired objects are only dropped when read.
type Reaper struct {
	target   Purger
	schedule string
	cron     *cron.Cron
	logger   logging.Logger

	mu      sync.Mutex
	running bool
}

// NewReaper validates schedule (standard cron or @every/@hourly descriptors).
func NewReaper(target Purger, schedule string, logger logging.Logger) (*Reaper, error) {
	if target == nil {
		return nil, fmt.Errorf("reaper target is required")
	}
	if schedule == "" {
		schedule = DefaultReapSchedule
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	c := cron.New()
	r := &Reaper{
		target:   target,
		schedule: schedule,
		cron:     c,
		logger:   logger.WithFields(logging.Field{Key: "component", Value: "reaper"}),
	}

	if _, err := c.AddFunc(schedule, func() { r.Reap() }); err != nil {
		return nil, fmt.Errorf("invalid reaper schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Reap runs one purge immediately and returns the number of entries dropped.
func (r *Reaper) Reap() int {
	purged := r.target.PurgeExpired()
	r.logger.Debug("Purged expired entries",
		logging.Field{Key: "purged", Value: purged},
		logging.Field{Key: "schedule", Value: r.schedule},
	)
	return purged
}

// Start begins the schedule. Calling it twice is a no-op.
func (r *Reaper) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.cron.Start()
	r.running = true
	r.logger.Info("Reaper started", logging.Field{Key: "schedule", Value: r.schedule})
}

// Stop halts the schedule and waits for a running purge to finish.
func (r *Reaper) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info("Reaper stopped")
}
