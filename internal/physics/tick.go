package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// UnstuckEpsilon is the smallest stuck-branch lift that counts as freeing
// the player. Resting players can take the stuck branch every frame with a
// correction of a few ulps.
const UnstuckEpsilon = 1e-6

// Frame is everything one Step consumes besides the controller state.
type Frame struct {
	DT     float64
	Input  InputSampler
	Ground GroundQuery
}

type Result struct {
	Transform Transform
	Branch    Branch
	HighestZ  float64
	// Correction is the Z change applied by ground resolution.
	Correction float64
	Grounded   bool
	Landed     bool
	LeftGround bool
}

// Unstuck reports whether the stuck branch moved the player up out of the
// floor by more than UnstuckEpsilon.
func (r Result) Unstuck() bool {
	return r.Branch == BranchStuck && math.Abs(r.Correction) > UnstuckEpsilon
}

// Step advances the controller by one frame: orientation, movement intent,
// horizontal displacement, ground query and ground resolution, in that order.
func Step(state *State, tuning Tuning, frame Frame) Result {
	if state == nil {
		return Result{Branch: BranchNone, HighestZ: NoFloor}
	}

	dt := frame.DT
	if dt < 0 {
		dt = 0
	}
	input := frame.Input
	if input == nil {
		input = InputState{}
	}

	dx, dy := input.PointerDelta()
	UpdateOrientation(state, tuning, dx, dy)

	if state.Grounded {
		UpdateIntent(state, tuning, input)
	}
	ApplyHorizontal(state, dt)

	var hits []Hit
	if frame.Ground != nil {
		hits = frame.Ground.CastRay(RayOrigin(state.Position, tuning), Down)
	}
	highestZ := HighestFloorZ(hits, tuning.FloorTag)

	wasGrounded := state.Grounded
	zBefore := state.Position.Z()
	branch := ResolveGround(state, tuning, highestZ, dt)

	return Result{
		Transform:  state.Transform(),
		Branch:     branch,
		HighestZ:   highestZ,
		Correction: state.Position.Z() - zBefore,
		Grounded:   state.Grounded,
		Landed:     !wasGrounded && state.Grounded,
		LeftGround: wasGrounded && !state.Grounded,
	}
}

// UpdateOrientation applies a pointer delta in pixels. The pointer always
// turns the head; while grounded the head yaw is folded into the body so
// turning in the air only swivels the camera.
func UpdateOrientation(state *State, tuning Tuning, dx, dy float64) {
	state.CameraHeading -= dx * tuning.MouseSensitivity
	state.Pitch -= dy * tuning.MouseSensitivity
	if tuning.PitchLimit > 0 {
		state.Pitch = mgl64.Clamp(state.Pitch, -tuning.PitchLimit, tuning.PitchLimit)
	}

	if state.Grounded {
		state.Heading += state.CameraHeading
		state.CameraHeading = 0
	}
}

// UpdateIntent rebuilds speed and movement intent from held keys and
// applies the jump kick. Callers only invoke it while grounded; the intent
// from the last grounded frame carries through a jump.
func UpdateIntent(state *State, tuning Tuning, input InputSampler) {
	if input.IsHeld(KeyRun) {
		state.Speed = tuning.RunSpeed
	} else {
		state.Speed = tuning.WalkSpeed
	}

	intent := mgl64.Vec3{}
	if input.IsHeld(KeyForward) {
		intent = intent.Add(LocalForward)
	}
	if input.IsHeld(KeyBackward) {
		intent = intent.Add(LocalBackward)
	}
	if input.IsHeld(KeyLeft) {
		intent = intent.Add(LocalLeft)
	}
	if input.IsHeld(KeyRight) {
		intent = intent.Add(LocalRight)
	}
	state.MoveIntent = intent

	if input.IsHeld(KeyJump) {
		state.VerticalVelocity = tuning.JumpVelocity
	}
}

// ApplyHorizontal normalizes the stored intent in place and moves the
// player by Speed*dt along it, rotated by the body heading.
func ApplyHorizontal(state *State, dt float64) {
	if state.MoveIntent.Dot(state.MoveIntent) == 0 {
		return
	}
	state.MoveIntent = state.MoveIntent.Normalize()

	local := state.MoveIntent.Mul(state.Speed * dt)
	world := mgl64.Rotate2D(mgl64.DegToRad(state.Heading)).Mul2x1(local.Vec2())
	state.Position = state.Position.Add(world.Vec3(local.Z()))
}

// RayOrigin is where the ground ray starts: RayOffset below the player origin.
func RayOrigin(pos mgl64.Vec3, tuning Tuning) mgl64.Vec3 {
	return pos.Sub(mgl64.Vec3{0, 0, tuning.RayOffset})
}
