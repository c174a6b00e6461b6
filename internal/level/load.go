package level

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	MaxDistance float64       `yaml:"max_distance"`
	Groups      []groupFormat `yaml:"groups"`
}

type groupFormat struct {
	Name      string        `yaml:"name"`
	Boxes     []boxFormat   `yaml:"boxes"`
	Quads     [][][]float64 `yaml:"quads"`
	Triangles [][][]float64 `yaml:"triangles"`
}

type boxFormat struct {
	Min []float64 `yaml:"min"`
	Max []float64 `yaml:"max"`
}

func Load(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	mesh, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse level %s: %w", path, err)
	}
	return mesh, nil
}

func Parse(data []byte) (*Mesh, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	mesh := NewMesh()
	mesh.MaxDistance = f.MaxDistance
	for gi, g := range f.Groups {
		if g.Name == "" {
			return nil, fmt.Errorf("group %d: name is empty", gi)
		}
		for bi, b := range g.Boxes {
			lo, err := vec3(b.Min)
			if err != nil {
				return nil, fmt.Errorf("group %s box %d min: %w", g.Name, bi, err)
			}
			hi, err := vec3(b.Max)
			if err != nil {
				return nil, fmt.Errorf("group %s box %d max: %w", g.Name, bi, err)
			}
			if hi.X() < lo.X() || hi.Y() < lo.Y() || hi.Z() < lo.Z() {
				return nil, fmt.Errorf("group %s box %d: max below min", g.Name, bi)
			}
			mesh.AddBox(g.Name, lo, hi)
		}
		for qi, q := range g.Quads {
			pts, err := points(q, 4)
			if err != nil {
				return nil, fmt.Errorf("group %s quad %d: %w", g.Name, qi, err)
			}
			mesh.AddQuad(g.Name, pts[0], pts[1], pts[2], pts[3])
		}
		for ti, tri := range g.Triangles {
			pts, err := points(tri, 3)
			if err != nil {
				return nil, fmt.Errorf("group %s triangle %d: %w", g.Name, ti, err)
			}
			mesh.AddTriangle(g.Name, pts[0], pts[1], pts[2])
		}
	}
	return mesh, nil
}

func points(raw [][]float64, n int) ([]mgl64.Vec3, error) {
	if len(raw) != n {
		return nil, fmt.Errorf("want %d points, got %d", n, len(raw))
	}
	out := make([]mgl64.Vec3, n)
	for i, p := range raw {
		v, err := vec3(p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func vec3(raw []float64) (mgl64.Vec3, error) {
	if len(raw) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("want 3 coordinates, got %d", len(raw))
	}
	return mgl64.Vec3{raw[0], raw[1], raw[2]}, nil
}
