package quota

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultResetSchedule resets counters at midnight on the first of each month.
const DefaultResetSchedule = "0 0 1 * *"

// ResetStore zeroes usage counters
type ResetStore interface {
	ResetUsage(ctx context.Context) (int64, error)
}

// Resetter clears usage counters on a cron schedule.
type Resetter struct {
	cron    *cron.Cron
	store   ResetStore
	timeout time.Duration
}

// NewResetter validates a standard five-field cron schedule and registers the reset job.
func NewResetter(store ResetStore, schedule string) (*Resetter, error) {
	if schedule == "" {
		schedule = DefaultResetSchedule
	}

	r := &Resetter{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		store:   store,
		timeout: time.Minute,
	}
	if _, err := r.cron.AddFunc(schedule, func() { _ = r.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid usage reset schedule %q: %w", schedule, err)
	}
	return r, nil
}

// Start runs the schedule in the background
func (r *Resetter) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running reset to finish
func (r *Resetter) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Next returns when the reset will next run
func (r *Resetter) Next() time.Time {
	entries := r.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now().UTC())
}

// RunOnce resets every counter immediately
func (r *Resetter) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.store.ResetUsage(ctx)
	if err != nil {
		log.Printf("[quota] usage reset failed: %v", err)
		return err
	}
	log.Printf("[quota] reset usage for %d users", n)
	return nil
}
