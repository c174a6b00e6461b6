package level

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Versifine/strider/internal/physics"
)

const rayEpsilon = 1e-9

type Triangle struct {
	A     mgl64.Vec3
	B     mgl64.Vec3
	C     mgl64.Vec3
	Group string
}

// Mesh is a static, group-tagged triangle soup. It implements
// physics.GroundQuery.
type Mesh struct {
	triangles []Triangle
	// MaxDistance limits ray length. Zero means unbounded.
	MaxDistance float64
}

func NewMesh(triangles ...Triangle) *Mesh {
	return &Mesh{triangles: append([]Triangle(nil), triangles...)}
}

// Flat returns a single square floor at height z spanning [-half, half]
// on X and Y.
func Flat(z, half float64, group string) *Mesh {
	m := NewMesh()
	m.AddQuad(group,
		mgl64.Vec3{-half, -half, z},
		mgl64.Vec3{half, -half, z},
		mgl64.Vec3{half, half, z},
		mgl64.Vec3{-half, half, z},
	)
	return m
}

func (m *Mesh) Len() int {
	return len(m.triangles)
}

func (m *Mesh) AddTriangle(group string, a, b, c mgl64.Vec3) {
	m.triangles = append(m.triangles, Triangle{A: a, B: b, C: c, Group: group})
}

// AddQuad adds the planar quad p0-p1-p2-p3 as two triangles.
func (m *Mesh) AddQuad(group string, p0, p1, p2, p3 mgl64.Vec3) {
	m.AddTriangle(group, p0, p1, p2)
	m.AddTriangle(group, p0, p2, p3)
}

// AddBox adds the six faces of an axis-aligned box.
func (m *Mesh) AddBox(group string, lo, hi mgl64.Vec3) {
	c := func(x, y, z float64) mgl64.Vec3 { return mgl64.Vec3{x, y, z} }
	x0, y0, z0 := lo.Elem()
	x1, y1, z1 := hi.Elem()

	m.AddQuad(group, c(x0, y0, z1), c(x1, y0, z1), c(x1, y1, z1), c(x0, y1, z1)) // top
	m.AddQuad(group, c(x0, y0, z0), c(x0, y1, z0), c(x1, y1, z0), c(x1, y0, z0)) // bottom
	m.AddQuad(group, c(x0, y0, z0), c(x1, y0, z0), c(x1, y0, z1), c(x0, y0, z1))
	m.AddQuad(group, c(x1, y0, z0), c(x1, y1, z0), c(x1, y1, z1), c(x1, y0, z1))
	m.AddQuad(group, c(x1, y1, z0), c(x0, y1, z0), c(x0, y1, z1), c(x1, y1, z1))
	m.AddQuad(group, c(x0, y1, z0), c(x0, y0, z0), c(x0, y0, z1), c(x0, y1, z1))
}

// Groups returns the distinct group names in the mesh, sorted.
func (m *Mesh) Groups() []string {
	seen := make(map[string]struct{})
	for _, tri := range m.triangles {
		seen[tri.Group] = struct{}{}
	}
	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// CastRay returns every triangle the ray passes through, in mesh order.
func (m *Mesh) CastRay(origin, direction mgl64.Vec3) []physics.Hit {
	if m == nil || direction.Dot(direction) == 0 {
		return nil
	}
	dir := direction.Normalize()

	var hits []physics.Hit
	for _, tri := range m.triangles {
		t, u, v, ok := intersect(origin, dir, tri)
		if !ok {
			continue
		}
		if m.MaxDistance > 0 && t > m.MaxDistance {
			continue
		}
		// Built from the triangle so a horizontal face reports its exact Z.
		point := tri.A.Add(tri.B.Sub(tri.A).Mul(u)).Add(tri.C.Sub(tri.A).Mul(v))
		hits = append(hits, physics.Hit{
			Point: point,
			Group: tri.Group,
		})
	}
	return hits
}

// intersect is Möller–Trumbore, double sided. t is the distance along dir,
// u and v the barycentric weights of B and C.
func intersect(origin, dir mgl64.Vec3, tri Triangle) (t, u, v float64, ok bool) {
	e1 := tri.B.Sub(tri.A)
	e2 := tri.C.Sub(tri.A)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, 0, 0, false
	}
	inv := 1.0 / det

	s := origin.Sub(tri.A)
	u = s.Dot(p) * inv
	if u < -rayEpsilon || u > 1+rayEpsilon {
		return 0, 0, 0, false
	}
	q := s.Cross(e1)
	v = dir.Dot(q) * inv
	if v < -rayEpsilon || u+v > 1+rayEpsilon {
		return 0, 0, 0, false
	}
	t = e2.Dot(q) * inv
	if t < 0 {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
