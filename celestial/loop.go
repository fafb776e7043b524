package celestial

import (
	"context"
	"sync"
	"time"
)

// Clock supplies wall time to the frame loop.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FrameClock converts a Clock into elapsed seconds since it was created.
// The value never decreases even if the underlying clock steps back.
type FrameClock struct {
	clock Clock
	start time.Time

	mu   sync.Mutex
	last float64
}

// NewFrameClock starts counting from the clock's current time.
func NewFrameClock(clock Clock) *FrameClock {
	return &FrameClock{clock: clock, start: clock.Now()}
}

// Elapsed returns the seconds since the clock was started.
func (c *FrameClock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.clock.Now().Sub(c.start).Seconds()
	if elapsed < c.last {
		return c.last
	}
	c.last = elapsed
	return elapsed
}

// Stepper advances a simulation to an elapsed time. FrameUpdater is the
// plain implementation.
type Stepper interface {
	Step(t float64) Frame
}

// Pacer blocks until the next frame may run. *rate.Limiter satisfies it.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Loop drives a Stepper once per frame from an injected clock.
type Loop struct {
	Stepper Stepper
	Clock   *FrameClock
	Pacer   Pacer

	// OnFrame, if set, receives every frame after it has been computed.
	OnFrame func(Frame)
}

// Tick reads the clock once and runs a single frame.
func (l *Loop) Tick() Frame {
	return l.StepAt(l.Clock.Elapsed())
}

// StepAt runs a single frame at elapsed seconds t without reading the
// clock. Synthetic runs use it to keep time in float64 seconds, which
// outlasts the ~292 year range of time.Duration.
func (l *Loop) StepAt(t float64) Frame {
	frame := l.Stepper.Step(t)
	if l.OnFrame != nil {
		l.OnFrame(frame)
	}
	return frame
}

// Run ticks until ctx is done. Without a Pacer it runs as fast as it can.
// The returned error is the context's error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.Pacer != nil {
			if err := l.Pacer.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.Tick()
	}
}
