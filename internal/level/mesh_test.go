package level

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/physics"
)

var down = mgl64.Vec3{0, 0, -1}

func demoLevelPath() string {
	return filepath.Join("..", "..", "levels", "demo.yaml")
}

func TestFlatSingleHit(t *testing.T) {
	m := Flat(0.5, 10, "Cube")
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}

	hits := m.CastRay(mgl64.Vec3{1, 2, 5}, down)
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if hits[0].Group != "Cube" {
		t.Fatalf("group = %q, want Cube", hits[0].Group)
	}
	if !hits[0].Point.ApproxEqualThreshold(mgl64.Vec3{1, 2, 0.5}, 1e-12) {
		t.Fatalf("point = %v, want (1,2,0.5)", hits[0].Point)
	}
}

func TestFlatReportsExactPlaneZ(t *testing.T) {
	for _, z := range []float64{0.25, 0.7, -0.4, 1.1, 2.7} {
		m := Flat(z, 10, "Cube")
		for _, x := range []float64{-7.3, -0.01, 0, 0.08, 3.14159, 9.9} {
			for _, y := range []float64{-9.2, -0.3, 0, 1.6e-15, 4.56} {
				origin := mgl64.Vec3{x, y, z + 1.6 + x*1e-3}
				for _, hit := range m.CastRay(origin, down) {
					if hit.Point.Z() != z {
						t.Fatalf("hit z = %.17g from (%v,%v), want exactly %v", hit.Point.Z(), x, y, z)
					}
				}
			}
		}
	}
}

func TestCastRayMissesOutsideAndBehind(t *testing.T) {
	m := Flat(0, 1, "Cube")

	if hits := m.CastRay(mgl64.Vec3{5, 5, 5}, down); len(hits) != 0 {
		t.Fatalf("outside hits = %d, want 0", len(hits))
	}
	if hits := m.CastRay(mgl64.Vec3{0.2, 0.5, -1}, down); len(hits) != 0 {
		t.Fatalf("below-floor hits = %d, want 0", len(hits))
	}
	if hits := m.CastRay(mgl64.Vec3{0.2, 0.5, 1}, mgl64.Vec3{}); hits != nil {
		t.Fatalf("zero direction hits = %v, want nil", hits)
	}
	var nilMesh *Mesh
	if hits := nilMesh.CastRay(mgl64.Vec3{}, down); hits != nil {
		t.Fatalf("nil mesh hits = %v, want nil", hits)
	}
}

func TestCastRayMaxDistance(t *testing.T) {
	m := Flat(0, 1, "Cube")
	m.MaxDistance = 1

	if hits := m.CastRay(mgl64.Vec3{0.2, 0.5, 5}, down); len(hits) != 0 {
		t.Fatalf("hits = %d, want 0 beyond max distance", len(hits))
	}
	if hits := m.CastRay(mgl64.Vec3{0.2, 0.5, 0.5}, down); len(hits) != 1 {
		t.Fatalf("hits = %d, want 1 within max distance", len(hits))
	}
}

func TestBoxReportsTopAndBottom(t *testing.T) {
	m := NewMesh()
	m.AddBox("Cube", mgl64.Vec3{-1, -1, -1}, mgl64.Vec3{1, 1, 0.7})
	if m.Len() != 12 {
		t.Fatalf("Len() = %d, want 12", m.Len())
	}

	hits := m.CastRay(mgl64.Vec3{0.3, 0.4, 10}, down)
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if got := physics.HighestFloorZ(hits, "Cube"); math.Abs(got-0.7) > 1e-12 {
		t.Fatalf("highest = %v, want 0.7", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing group name",
			content: "groups:\n  - boxes:\n      - min: [0, 0, 0]\n        max: [1, 1, 1]\n",
			wantErr: "name is empty",
		},
		{
			name:    "short coordinate",
			content: "groups:\n  - name: Cube\n    boxes:\n      - min: [0, 0]\n        max: [1, 1, 1]\n",
			wantErr: "want 3 coordinates",
		},
		{
			name:    "inverted box",
			content: "groups:\n  - name: Cube\n    boxes:\n      - min: [0, 0, 2]\n        max: [1, 1, 1]\n",
			wantErr: "max below min",
		},
		{
			name:    "quad with three points",
			content: "groups:\n  - name: Cube\n    quads:\n      - [[0, 0, 0], [1, 0, 0], [1, 1, 0]]\n",
			wantErr: "want 4 points",
		},
		{
			name:    "invalid yaml",
			content: "groups: [\n",
			wantErr: "yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Parse() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseTrianglesAndGroups(t *testing.T) {
	content := `max_distance: 50
groups:
  - name: Wall
    triangles:
      - [[0, 0, 3], [4, 0, 3], [0, 4, 3]]
  - name: Cube
    triangles:
      - [[0, 0, 1], [4, 0, 1], [0, 4, 1]]
`
	m, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.MaxDistance != 50 {
		t.Fatalf("MaxDistance = %v, want 50", m.MaxDistance)
	}
	groups := m.Groups()
	if len(groups) != 2 || groups[0] != "Cube" || groups[1] != "Wall" {
		t.Fatalf("Groups() = %v, want [Cube Wall]", groups)
	}

	hits := m.CastRay(mgl64.Vec3{1, 1, 10}, down)
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want 2", len(hits))
	}
	if got := physics.HighestFloorZ(hits, "Cube"); math.Abs(got-1) > 1e-12 {
		t.Fatalf("highest floor = %v, want 1 (wall ignored)", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load() error = %v, want not-exist", err)
	}
}

func TestDemoLevelRampAndPlatform(t *testing.T) {
	m, err := Load(demoLevelPath())
	if err != nil {
		t.Fatalf("Load(demo) error: %v", err)
	}

	cases := []struct {
		x, y float64
		want float64
	}{
		{0, 0, 0.7},
		{7.5, 0.5, 1.7},
		{12, 0, 2.7},
		{0, 12, -5},
		{-5.5, 0, 0.7}, // wall top is not floor
	}
	for _, c := range cases {
		hits := m.CastRay(mgl64.Vec3{c.x, c.y, 20}, down)
		got := physics.HighestFloorZ(hits, physics.DefaultFloorTag)
		if math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("floor at (%v,%v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestWalkUpRampOntoPlatform(t *testing.T) {
	m, err := Load(demoLevelPath())
	if err != nil {
		t.Fatalf("Load(demo) error: %v", err)
	}
	tuning := physics.DefaultTuning()
	state := physics.NewState(mgl64.Vec3{0, 0, 3}, tuning)
	// Heading -90 points the body's forward axis along +X.
	state.Heading = -90

	landed := false
	for i := 0; i < 200 && state.Position.X() < 12.5; i++ {
		res := physics.Step(&state, tuning, physics.Frame{
			DT:     0.02,
			Input:  physics.InputState{Forward: true},
			Ground: m,
		})
		if res.Landed {
			landed = true
		}
	}

	if !landed {
		t.Fatalf("never landed after spawn")
	}
	if state.Position.X() < 12.5 {
		t.Fatalf("position.x = %.3f, want >= 12.5", state.Position.X())
	}
	if math.Abs(state.Position.Z()-(2.7+tuning.Height)) > 1e-9 {
		t.Fatalf("position.z = %.6f, want %.6f on platform", state.Position.Z(), 2.7+tuning.Height)
	}
	if !state.Grounded {
		t.Fatalf("grounded = false, want true on platform")
	}
}
