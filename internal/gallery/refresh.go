package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Refreshable is anything whose snapshot can be rebuilt on a schedule.
type Refreshable interface {
	Refresh(ctx context.Context) error
}

// Refresher runs Refresh on a cron schedule until its context ends or Stop
// is called. Runs never overlap; a tick that lands during a run is dropped.
type Refresher struct {
	logger   *slog.Logger
	target   Refreshable
	schedule string
	timezone string

	mu      sync.Mutex
	cron    *cron.Cron
	stop    chan struct{}
	watcher chan struct{}
	running sync.Mutex
}

func NewRefresher(logger *slog.Logger, target Refreshable, schedule, timezone string) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		logger:   logger,
		target:   target,
		schedule: schedule,
		timezone: timezone,
	}
}

func (r *Refresher) Validate() error {
	if r.target == nil {
		return fmt.Errorf("refresh target is required")
	}
	if r.schedule == "" {
		return fmt.Errorf("cron schedule is required")
	}
	if _, err := cron.ParseStandard(r.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule: %w", err)
	}
	if r.timezone != "" {
		if _, err := time.LoadLocation(r.timezone); err != nil {
			return fmt.Errorf("invalid timezone: %w", err)
		}
	}
	return nil
}

func (r *Refresher) Start(ctx context.Context) error {
	if err := r.Validate(); err != nil {
		return err
	}
	location := time.UTC
	if r.timezone != "" {
		tz, err := time.LoadLocation(r.timezone)
		if err != nil {
			return err
		}
		location = tz
	}

	c := cron.New(cron.WithLocation(location))
	if _, err := c.AddFunc(r.schedule, func() { r.runOnce(ctx) }); err != nil {
		return err
	}

	r.mu.Lock()
	if r.cron != nil {
		r.mu.Unlock()
		return fmt.Errorf("refresher already started")
	}
	stop := make(chan struct{})
	watcher := make(chan struct{})
	r.cron = c
	r.stop = stop
	r.watcher = watcher
	r.mu.Unlock()

	c.Start()
	r.logger.Info("gallery refresher started", "schedule", r.schedule, "timezone", location.String())

	// ends on Stop or ctx, whichever comes first
	go func() {
		defer close(watcher)
		select {
		case <-ctx.Done():
			r.Stop()
		case <-stop:
		}
	}()
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	stop := r.stop
	r.cron = nil
	r.stop = nil
	r.mu.Unlock()
	if c == nil {
		return
	}
	close(stop)
	<-c.Stop().Done()
}

func (r *Refresher) runOnce(ctx context.Context) {
	if !r.running.TryLock() {
		r.logger.Debug("gallery refresh already running, skipping tick")
		return
	}
	defer r.running.Unlock()
	if err := r.target.Refresh(ctx); err != nil {
		r.logger.Error("gallery refresh failed", "error", err)
	}
}
