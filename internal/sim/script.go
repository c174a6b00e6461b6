package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/strider/internal/input"
	"github.com/Versifine/strider/internal/physics"
)

const DefaultDT = 1.0 / 60.0

// Script is a timeline of held keys and pointer motion.
//
//	dt: 0.016
//	segments:
//	  - frames: 60
//	    hold: [forward, run]
//	    pointer: [4, 0]
type Script struct {
	DT       float64   `yaml:"dt"`
	Segments []Segment `yaml:"segments"`
}

type Segment struct {
	Frames  int       `yaml:"frames"`
	DT      float64   `yaml:"dt"`
	Hold    []string  `yaml:"hold"`
	Pointer []float64 `yaml:"pointer"`
}

// frame is one compiled script step.
type frame struct {
	dt      float64
	sampler physics.InputSampler
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return s, nil
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if _, err := s.compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Frames returns the total frame count of the script.
func (s *Script) Frames() int {
	n := 0
	for _, seg := range s.Segments {
		n += seg.Frames
	}
	return n
}

func (s *Script) compile() ([]frame, error) {
	if len(s.Segments) == 0 {
		return nil, fmt.Errorf("script has no segments")
	}
	base := s.DT
	if base == 0 {
		base = DefaultDT
	}
	if base < 0 {
		return nil, fmt.Errorf("dt must be positive, got %v", base)
	}

	frames := make([]frame, 0, s.Frames())
	for i, seg := range s.Segments {
		if seg.Frames <= 0 {
			return nil, fmt.Errorf("segment %d: frames must be positive, got %d", i, seg.Frames)
		}
		dt := seg.DT
		if dt == 0 {
			dt = base
		}
		if dt < 0 {
			return nil, fmt.Errorf("segment %d: dt must be positive, got %v", i, dt)
		}

		keys := make([]physics.Key, 0, len(seg.Hold))
		for _, name := range seg.Hold {
			k, err := input.ParseKey(name)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			keys = append(keys, k)
		}

		var ptr constantPointer
		switch len(seg.Pointer) {
		case 0:
		case 2:
			ptr = constantPointer{dx: seg.Pointer[0], dy: seg.Pointer[1]}
		default:
			return nil, fmt.Errorf("segment %d: pointer needs 2 values, got %d", i, len(seg.Pointer))
		}

		sampler := input.Sampler{Pointer: ptr, Held: input.HeldSet(keys...)}
		for f := 0; f < seg.Frames; f++ {
			frames = append(frames, frame{dt: dt, sampler: sampler})
		}
	}
	return frames, nil
}

type constantPointer struct {
	dx, dy float64
}

func (p constantPointer) PointerDelta() (float64, float64) {
	return p.dx, p.dy
}
