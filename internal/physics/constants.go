package physics

import "math"

const (
	DefaultHeight           = 1.8
	DefaultWalkSpeed        = 5.0
	DefaultRunSpeed         = 10.0
	DefaultInitialSpeed     = 50.0
	DefaultJumpVelocity     = 5.0
	DefaultGravity          = 9.81
	DefaultMouseSensitivity = 0.1
	DefaultRayOffset        = 0.2
	DefaultFloorTag         = "Cube"
)

// NoFloor is reported by HighestFloorZ when no floor-tagged hit was found.
// It compares lower than any real floor height.
var NoFloor = math.Inf(-1)
