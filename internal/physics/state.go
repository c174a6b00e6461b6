package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Body-local unit directions. +Y is forward, +X is right, +Z is up.
var (
	LocalForward  = mgl64.Vec3{0, 1, 0}
	LocalBackward = mgl64.Vec3{0, -1, 0}
	LocalLeft     = mgl64.Vec3{-1, 0, 0}
	LocalRight    = mgl64.Vec3{1, 0, 0}
	Down          = mgl64.Vec3{0, 0, -1}
)

type Key int

const (
	KeyForward Key = iota
	KeyBackward
	KeyLeft
	KeyRight
	KeyJump
	KeyRun
)

func (k Key) String() string {
	switch k {
	case KeyForward:
		return "forward"
	case KeyBackward:
		return "backward"
	case KeyLeft:
		return "left"
	case KeyRight:
		return "right"
	case KeyJump:
		return "jump"
	case KeyRun:
		return "run"
	default:
		return fmt.Sprintf("key(%d)", int(k))
	}
}

// InputSampler is read once per frame by Step.
type InputSampler interface {
	PointerDelta() (dx, dy float64)
	IsHeld(key Key) bool
}

// Hit is one intersection of the ground ray with level geometry.
type Hit struct {
	Point mgl64.Vec3
	Group string
}

// GroundQuery casts a ray against the static level and returns every hit.
// Hits are not ordered.
type GroundQuery interface {
	CastRay(origin, direction mgl64.Vec3) []Hit
}

// InputState is a plain snapshot of one frame of input.
type InputState struct {
	Forward   bool
	Backward  bool
	Left      bool
	Right     bool
	Jump      bool
	Run       bool
	PointerDX float64
	PointerDY float64
}

func (in InputState) PointerDelta() (float64, float64) {
	return in.PointerDX, in.PointerDY
}

func (in InputState) IsHeld(key Key) bool {
	switch key {
	case KeyForward:
		return in.Forward
	case KeyBackward:
		return in.Backward
	case KeyLeft:
		return in.Left
	case KeyRight:
		return in.Right
	case KeyJump:
		return in.Jump
	case KeyRun:
		return in.Run
	default:
		return false
	}
}

type Tuning struct {
	Height           float64
	WalkSpeed        float64
	RunSpeed         float64
	InitialSpeed     float64
	JumpVelocity     float64
	Gravity          float64
	MouseSensitivity float64
	RayOffset        float64
	FloorTag         string
	// PitchLimit clamps pitch to [-PitchLimit, PitchLimit] degrees.
	// Zero leaves pitch unclamped.
	PitchLimit float64
}

func DefaultTuning() Tuning {
	return Tuning{
		Height:           DefaultHeight,
		WalkSpeed:        DefaultWalkSpeed,
		RunSpeed:         DefaultRunSpeed,
		InitialSpeed:     DefaultInitialSpeed,
		JumpVelocity:     DefaultJumpVelocity,
		Gravity:          DefaultGravity,
		MouseSensitivity: DefaultMouseSensitivity,
		RayOffset:        DefaultRayOffset,
		FloorTag:         DefaultFloorTag,
	}
}

// State is the controller state. Angles are in degrees.
type State struct {
	Position         mgl64.Vec3
	Heading          float64
	CameraHeading    float64
	Pitch            float64
	Speed            float64
	VerticalVelocity float64
	Grounded         bool
	MoveIntent       mgl64.Vec3
}

// NewState returns an airborne state at spawn with no movement intent.
func NewState(spawn mgl64.Vec3, tuning Tuning) State {
	return State{
		Position: spawn,
		Speed:    tuning.InitialSpeed,
	}
}

// Transform is what the controller pushes to the camera and renderer.
type Transform struct {
	Position      mgl64.Vec3
	Heading       float64
	CameraHeading float64
	Pitch         float64
}

func (s *State) Transform() Transform {
	return Transform{
		Position:      s.Position,
		Heading:       s.Heading,
		CameraHeading: s.CameraHeading,
		Pitch:         s.Pitch,
	}
}
