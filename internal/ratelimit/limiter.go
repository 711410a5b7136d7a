// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit enforces a minimum delay between successive outbound
// calls made by one adapter instance.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time so tests can measure delays without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Limiter blocks each call to Wait until at least Delay has passed since the
// previous one. The first call never blocks. A Limiter is not shared across
// adapters.
type Limiter struct {
	delay time.Duration
	clock Clock
	lim   *rate.Limiter
}

// New returns a limiter with the given minimum delay. A nil clock uses real
// time; a non-positive delay disables limiting.
func New(delay time.Duration, clock Clock) *Limiter {
	if clock == nil {
		clock = SystemClock{}
	}
	l := &Limiter{delay: delay, clock: clock}
	if delay > 0 {
		l.lim = rate.NewLimiter(rate.Every(delay), 1)
	}
	return l
}

// Delay returns the configured minimum delay.
func (l *Limiter) Delay() time.Duration { return l.delay }

// Wait blocks until the next call is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return ctx.Err()
	}
	now := l.clock.Now()
	r := l.lim.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("rate limiter cannot grant a token")
	}
	d := r.DelayFrom(now)
	if d <= 0 {
		return nil
	}
	if err := l.clock.Sleep(ctx, d); err != nil {
		r.CancelAt(l.clock.Now())
		return err
	}
	return nil
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
