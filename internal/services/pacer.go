package services

import (
	"context"
	"time"
)

// Pacer delays between simulation steps. Wait returns ctx.Err() when the
// context ends first.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context) error

func (f PacerFunc) Wait(ctx context.Context) error { return f(ctx) }

// IntervalPacer waits a fixed wall-clock interval per step.
type IntervalPacer struct {
	Interval time.Duration
}

func (p IntervalPacer) Wait(ctx context.Context) error {
	if p.Interval <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.Interval)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
