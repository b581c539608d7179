// Package tracker generates a time-indexed reference from a trajectory by
// advancing gamma at the segment's progress rate.
package tracker

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/zeusync/autopilot/internal/core/trajectory"
)

var ErrInvalidTick = errors.New("tick must be positive")

// Option configures a Tracker.
type Option func(*Tracker)

// WithStartGamma sets the initial progress. It defaults to the lower bound.
func WithStartGamma(gamma float64) Option {
	return func(t *Tracker) { t.gamma = gamma }
}

// WithLoop keeps the tracker running past the upper bound instead of stopping.
// Useful for closed shapes such as circles.
func WithLoop(loop bool) Option {
	return func(t *Tracker) { t.loop = loop }
}

// Tracker is safe for concurrent use, though a single control loop usually owns it.
type Tracker struct {
	traj   trajectory.ParametricTrajectory
	bounds trajectory.Bounds

	mu    sync.Mutex
	gamma float64
	loop  bool
	done  bool
}

func New(traj trajectory.ParametricTrajectory, opts ...Option) *Tracker {
	b := traj.Bounds()
	t := &Tracker{traj: traj, bounds: b, gamma: b.Min}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Gamma returns the current progress.
func (t *Tracker) Gamma() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gamma
}

// Done reports whether a non-looping tracker has reached the end of the segment.
func (t *Tracker) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Step samples the trajectory at the current gamma and then advances gamma by
// ProgressRate·dt.
func (t *Tracker) Step(dt time.Duration) trajectory.Sample {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := trajectory.Evaluate(t.traj, t.gamma)
	if t.done {
		return s
	}

	next := t.gamma + s.ProgressRate*dt.Seconds()
	switch {
	case t.loop:
		span := t.bounds.Max - t.bounds.Min
		if span > 0 {
			next = t.bounds.Min + math.Mod(next-t.bounds.Min, span)
			if next < t.bounds.Min {
				next += span
			}
		}
	case next > t.bounds.Max || next < t.bounds.Min:
		next = t.bounds.Clamp(next)
		t.done = true
	}
	t.gamma = next
	return s
}

// Run calls Step every tick and passes the sample to emit. It returns when ctx
// is done, when emit fails, or after the final sample of a non-looping run.
func (t *Tracker) Run(ctx context.Context, tick time.Duration, emit func(trajectory.Sample) error) error {
	if tick <= 0 {
		return ErrInvalidTick
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		wasDone := t.Done()
		if err := emit(t.Step(tick)); err != nil {
			return err
		}
		if wasDone {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
