package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/Versifine/strider/internal/physics"
)

// MaxFrameDT is the longest frame FrameClock reports, in seconds.
const MaxFrameDT = 0.1

type Ticker interface {
	Tick(dt float64, input physics.InputSampler) (physics.Result, error)
}

type Summary struct {
	Frames   int
	Elapsed  float64
	Final    physics.Transform
	Grounded bool
	Landings int
	Takeoffs int
	Unstuck  int
}

// Run plays the script against t, one Tick per frame. onFrame may be nil.
// Cancellation is checked between frames.
func Run(ctx context.Context, t Ticker, s *Script, onFrame func(i int, res physics.Result)) (Summary, error) {
	var sum Summary
	if t == nil || s == nil {
		return sum, fmt.Errorf("ticker and script are required")
	}
	frames, err := s.compile()
	if err != nil {
		return sum, err
	}

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := t.Tick(f.dt, f.sampler)
		if err != nil {
			return sum, fmt.Errorf("frame %d: %w", i, err)
		}

		sum.Frames++
		sum.Elapsed += f.dt
		sum.Final = res.Transform
		sum.Grounded = res.Grounded
		if res.Landed {
			sum.Landings++
		}
		if res.LeftGround {
			sum.Takeoffs++
		}
		if res.Unstuck() {
			sum.Unstuck++
		}
		if onFrame != nil {
			onFrame(i, res)
		}
	}
	return sum, nil
}

// FrameClock measures the wall-clock time between frames.
type FrameClock struct {
	now  func() time.Time
	last time.Time
}

func NewFrameClock() *FrameClock {
	return &FrameClock{now: time.Now}
}

// Tick returns seconds since the previous Tick, clamped to MaxFrameDT.
// The first call returns 0.
func (c *FrameClock) Tick() float64 {
	now := c.now()
	if c.last.IsZero() {
		c.last = now
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt < 0 {
		return 0
	}
	if dt > MaxFrameDT {
		return MaxFrameDT
	}
	return dt
}
