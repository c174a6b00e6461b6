package event

import "github.com/go-gl/mathgl/mgl64"

const (
	EventLanded     = "player.landed"
	EventLeftGround = "player.airborne"
	EventUnstuck    = "player.unstuck"
)

// GroundEvent describes a grounded-state transition or a stuck-under-floor
// correction.
type GroundEvent struct {
	Position         mgl64.Vec3
	VerticalVelocity float64
	HighestZ         float64
}
