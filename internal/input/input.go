package input

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Versifine/strider/internal/physics"
)

// Window is the host window the pointer lives in.
type Window interface {
	Pointer() (x, y float64)
	Size() (width, height int)
	// WarpPointer moves the pointer and reports whether it succeeded.
	// It typically fails while the window is not focused.
	WarpPointer(x, y float64) bool
}

// Recentering turns an absolute pointer into per-frame deltas by warping
// the pointer back to the window centre after each read.
type Recentering struct {
	Window Window
}

// PointerDelta returns the pointer offset from the window centre in pixels.
// If the pointer cannot be re-centred the frame reports no movement.
func (r Recentering) PointerDelta() (float64, float64) {
	if r.Window == nil {
		return 0, 0
	}
	x, y := r.Window.Pointer()
	w, h := r.Window.Size()
	cx, cy := float64(w)/2, float64(h)/2
	if !r.Window.WarpPointer(cx, cy) {
		slog.Debug("pointer re-centre failed", "width", w, "height", h)
		return 0, 0
	}
	return x - cx, y - cy
}

type PointerSource interface {
	PointerDelta() (dx, dy float64)
}

// KeyFunc reports whether a key is held this frame.
type KeyFunc func(key physics.Key) bool

// Sampler joins a pointer source and a key predicate into a
// physics.InputSampler.
type Sampler struct {
	Pointer PointerSource
	Held    KeyFunc
}

func (s Sampler) PointerDelta() (float64, float64) {
	if s.Pointer == nil {
		return 0, 0
	}
	return s.Pointer.PointerDelta()
}

func (s Sampler) IsHeld(key physics.Key) bool {
	if s.Held == nil {
		return false
	}
	return s.Held(key)
}

var keyNames = map[string]physics.Key{
	"forward":  physics.KeyForward,
	"backward": physics.KeyBackward,
	"back":     physics.KeyBackward,
	"left":     physics.KeyLeft,
	"right":    physics.KeyRight,
	"jump":     physics.KeyJump,
	"run":      physics.KeyRun,
}

func ParseKey(name string) (physics.Key, error) {
	key, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", name)
	}
	return key, nil
}

// HeldSet is a KeyFunc backed by a fixed set of keys.
func HeldSet(keys ...physics.Key) KeyFunc {
	set := make(map[physics.Key]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return func(key physics.Key) bool {
		return set[key]
	}
}
