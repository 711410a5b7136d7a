// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// ManualClock is a Clock whose Sleep advances time instantly. Tests use it
// to assert on accumulated delay without real sleeps.
type ManualClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
	naps  int
}

// NewManualClock returns a clock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept += d
	c.naps++
	return nil
}

// Elapsed returns the total time slept.
func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slept
}

// Naps returns how many times Sleep advanced the clock.
func (c *ManualClock) Naps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.naps
}
