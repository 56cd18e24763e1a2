package outline

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Mesh is an indexed triangle list in object space. The ID is stable for the
// lifetime of the mesh and keys backend-side uploads.
type Mesh struct {
	ID        uuid.UUID
	Label     string
	Positions []mgl32.Vec3
	Indices   []uint32

	bounds [2]mgl32.Vec3
}

// NewMesh validates indices and computes the object-space bounds.
func NewMesh(label string, positions []mgl32.Vec3, indices []uint32) (*Mesh, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: mesh %q index count %d is not a multiple of 3", ErrInvalidConfig, label, len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("%w: mesh %q index %d out of range (%d vertices)", ErrInvalidConfig, label, idx, len(positions))
		}
	}
	m := &Mesh{
		ID:        uuid.New(),
		Label:     label,
		Positions: positions,
		Indices:   indices,
	}
	if len(positions) > 0 {
		min, max := positions[0], positions[0]
		for _, p := range positions[1:] {
			for i := 0; i < 3; i++ {
				if p[i] < min[i] {
					min[i] = p[i]
				}
				if p[i] > max[i] {
					max[i] = p[i]
				}
			}
		}
		m.bounds = [2]mgl32.Vec3{min, max}
	}
	return m, nil
}

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Bounds is the object-space AABB as {min, max}.
func (m *Mesh) Bounds() [2]mgl32.Vec3 { return m.bounds }

// WorldBounds transforms the eight corners of the object-space AABB.
func (m *Mesh) WorldBounds(model mgl32.Mat4) [2]mgl32.Vec3 {
	b := m.bounds
	var min, max mgl32.Vec3
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b[i&1][0], b[(i>>1)&1][1], b[(i>>2)&1][2]}
		w := model.Mul4x1(corner.Vec4(1)).Vec3()
		if i == 0 {
			min, max = w, w
			continue
		}
		for k := 0; k < 3; k++ {
			if w[k] < min[k] {
				min[k] = w[k]
			}
			if w[k] > max[k] {
				max[k] = w[k]
			}
		}
	}
	return [2]mgl32.Vec3{min, max}
}

// Quad is a unit square in the XY plane centred on the origin.
func Quad() *Mesh {
	m, _ := NewMesh("quad", []mgl32.Vec3{
		{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0},
	}, []uint32{0, 1, 2, 0, 2, 3})
	return m
}

// Cube is a unit cube centred on the origin.
func Cube() *Mesh {
	min, max := float32(-0.5), float32(0.5)
	positions := []mgl32.Vec3{
		{min, min, min}, {max, min, min}, {max, max, min}, {min, max, min},
		{min, min, max}, {max, min, max}, {max, max, max}, {min, max, max},
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 1, 5, 0, 5, 4, // bottom
		3, 7, 6, 3, 6, 2, // top
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
	}
	m, _ := NewMesh("cube", positions, indices)
	return m
}

// DrawItem is one mesh instance flagged for outlining.
type DrawItem struct {
	Mesh    *Mesh
	Model   mgl32.Mat4
	Enabled bool
}

// NewDrawItem places mesh with the given transform.
func NewDrawItem(mesh *Mesh, t *Transform) DrawItem {
	return DrawItem{Mesh: mesh, Model: t.ObjectToWorld(), Enabled: true}
}
