// Package coord runs the dashboard's background auto-refresh.
package coord

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/dashboard/internal/logging"
)

// DefaultInterval is the time between refresh cycles.
const DefaultInterval = 5 * time.Minute

// refresher is satisfied by the dashboard controller.
type refresher interface {
	Refresh(ctx context.Context) error
}

// Coordinator re-issues the feed and trending intents on a fixed period
// while auto-refresh is enabled.
// Uses context cancellation as the ONLY stop mechanism.
type Coordinator struct {
	refresher refresher
	interval  time.Duration
	enabled   func() bool // consulted every tick; nil means always on
	wg        sync.WaitGroup
}

// NewCoordinator creates a Coordinator. interval <= 0 uses DefaultInterval.
func NewCoordinator(r refresher, interval time.Duration, enabled func() bool) *Coordinator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coordinator{
		refresher: r,
		interval:  interval,
		enabled:   enabled,
	}
}

// Start begins background refreshing. Call with a cancellable context.
// The first refresh happens one interval after Start; the initial load is
// the caller's mount.
func (c *Coordinator) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.tick(ctx)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
// Call after canceling the context passed to Start.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

func (c *Coordinator) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if c.enabled != nil && !c.enabled() {
		logging.Debug("coord: auto-refresh disabled, skipping")
		return
	}
	if err := c.refresher.Refresh(ctx); err != nil {
		logging.Warn("coord: auto-refresh failed", "error", err)
	}
}
