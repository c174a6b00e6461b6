package physics

// Branch names the ground-resolution rule that fired on a step.
type Branch int

const (
	BranchNone Branch = iota
	BranchFalling
	BranchStuck
	BranchResidual
)

func (b Branch) String() string {
	switch b {
	case BranchFalling:
		return "falling"
	case BranchStuck:
		return "stuck"
	case BranchResidual:
		return "residual"
	default:
		return "none"
	}
}

// HighestFloorZ returns the highest Z among hits on the floor group, or
// NoFloor when none of the hits qualify.
func HighestFloorZ(hits []Hit, floorTag string) float64 {
	highest := NoFloor
	for _, hit := range hits {
		if hit.Group != floorTag {
			continue
		}
		if z := hit.Point.Z(); z > highest {
			highest = z
		}
	}
	return highest
}

// ResolveGround is the Airborne/Grounded state machine. Exactly one branch
// fires per call, checked in order:
//
//	falling:  floor below the feet, or still rising
//	stuck:    feet below the floor
//	residual: resting with leftover vertical velocity
//	none:     resting on the floor
func ResolveGround(state *State, tuning Tuning, highestZ, dt float64) Branch {
	z := state.Position.Z()
	feet := z - tuning.Height
	rest := highestZ + tuning.Height

	switch {
	case highestZ < feet || state.VerticalVelocity > 0:
		newZ := z + state.VerticalVelocity*dt
		if newZ > rest {
			state.Position[2] = newZ
			state.VerticalVelocity -= tuning.Gravity * dt
			state.Grounded = false
		} else {
			// Vertical velocity survives this clamp; the residual branch
			// clears it once the player is resting.
			state.Position[2] = rest
			state.Grounded = true
		}
		return BranchFalling
	case highestZ > feet:
		state.Position[2] = rest
		state.VerticalVelocity = 0
		state.Grounded = true
		return BranchStuck
	case state.VerticalVelocity != 0:
		state.VerticalVelocity = 0
		state.Grounded = true
		return BranchResidual
	}
	return BranchNone
}
