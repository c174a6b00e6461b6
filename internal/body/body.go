package body

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/event"
	"github.com/Versifine/strider/internal/physics"
)

// TransformSink receives the applied transform once per tick. It must not
// call back into the Body.
type TransformSink interface {
	ApplyTransform(t physics.Transform)
}

type Publisher interface {
	Publish(eventName string, evt any)
}

type Body struct {
	mu     sync.Mutex
	state  physics.State
	tuning physics.Tuning
	ground physics.GroundQuery
	sink   TransformSink
	bus    Publisher
	last   physics.Result
}

func New(
	spawn mgl64.Vec3,
	tuning physics.Tuning,
	ground physics.GroundQuery,
	sink TransformSink,
	bus Publisher,
) *Body {
	return &Body{
		state:  physics.NewState(spawn, tuning),
		tuning: tuning,
		ground: ground,
		sink:   sink,
		bus:    bus,
		last:   physics.Result{HighestZ: physics.NoFloor},
	}
}

func (b *Body) Tick(dt float64, input physics.InputSampler) (physics.Result, error) {
	if b == nil {
		return physics.Result{}, fmt.Errorf("body is nil")
	}
	if b.ground == nil {
		return physics.Result{}, fmt.Errorf("ground query is nil")
	}

	b.mu.Lock()
	res := physics.Step(&b.state, b.tuning, physics.Frame{
		DT:     dt,
		Input:  input,
		Ground: b.ground,
	})
	vv := b.state.VerticalVelocity
	b.last = res
	b.mu.Unlock()

	if b.sink != nil {
		b.sink.ApplyTransform(res.Transform)
	}
	b.publishTransitions(res, vv)

	return res, nil
}

func (b *Body) publishTransitions(res physics.Result, vv float64) {
	evt := event.GroundEvent{
		Position:         res.Transform.Position,
		VerticalVelocity: vv,
		HighestZ:         res.HighestZ,
	}
	var name string
	switch {
	case res.Landed:
		name = event.EventLanded
	case res.LeftGround:
		name = event.EventLeftGround
	case res.Unstuck():
		name = event.EventUnstuck
	default:
		return
	}
	slog.Debug("Ground transition", "event", name, "branch", res.Branch.String(), "z", res.Transform.Position.Z())
	if b.bus != nil {
		b.bus.Publish(name, evt)
	}
}

func (b *Body) PhysicsState() physics.State {
	if b == nil {
		return physics.State{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Body) LastResult() physics.Result {
	if b == nil {
		return physics.Result{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func (b *Body) Tuning() physics.Tuning {
	if b == nil {
		return physics.Tuning{}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tuning
}

// SetTuning swaps tuning between frames. The current state is kept.
func (b *Body) SetTuning(tuning physics.Tuning) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.tuning = tuning
	b.mu.Unlock()
	slog.Info("Controller tuning updated",
		"height", tuning.Height,
		"walk_speed", tuning.WalkSpeed,
		"run_speed", tuning.RunSpeed,
		"floor_tag", tuning.FloorTag,
	)
}

// SetLocalPosition teleports the player. It drops vertical velocity and
// leaves the player airborne so the next tick resolves the ground afresh.
func (b *Body) SetLocalPosition(pos mgl64.Vec3) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.state.Position = pos
	b.state.VerticalVelocity = 0
	b.state.Grounded = false
	t := b.state.Transform()
	b.mu.Unlock()
	if b.sink != nil {
		b.sink.ApplyTransform(t)
	}
}

// FloorBelow casts the ground ray from the current position and reports
// the highest floor-tagged hit, or physics.NoFloor.
func (b *Body) FloorBelow() float64 {
	if b == nil || b.ground == nil {
		return physics.NoFloor
	}
	b.mu.Lock()
	origin := physics.RayOrigin(b.state.Position, b.tuning)
	tag := b.tuning.FloorTag
	b.mu.Unlock()
	return physics.HighestFloorZ(b.ground.CastRay(origin, physics.Down), tag)
}
