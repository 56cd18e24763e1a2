package outline

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// View is one outline consumer, typically a camera: where it looks from, what
// it outlines and how.
type View struct {
	Name       string
	ViewMatrix mgl32.Mat4
	// Projection maps view space to WebGPU clip space (depth 0..1).
	Projection mgl32.Mat4
	Items      []DrawItem
	Style      Style
}

func (v *View) ViewProjection() mgl32.Mat4 {
	return v.Projection.Mul4(v.ViewMatrix)
}

// Visible returns the enabled items whose world bounds intersect the frustum.
func (v *View) Visible() []DrawItem {
	planes := ExtractFrustum(v.ViewProjection())
	out := make([]DrawItem, 0, len(v.Items))
	for _, item := range v.Items {
		if !item.Enabled || item.Mesh == nil || item.Mesh.TriangleCount() == 0 {
			continue
		}
		if !AABBInFrustum(item.Mesh.WorldBounds(item.Model), planes) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// PerspectiveZO is mgl32.Perspective remapped from OpenGL depth (-1..1) to
// WebGPU depth (0..1).
func PerspectiveZO(fovy, aspect, near, far float32) mgl32.Mat4 {
	remap := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return remap.Mul4(mgl32.Perspective(fovy, aspect, near, far))
}

// OrthoZO is mgl32.Ortho remapped to WebGPU depth.
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	remap := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0.5, 0,
		0, 0, 0.5, 1,
	}
	return remap.Mul4(mgl32.Ortho(left, right, bottom, top, near, far))
}

// ExtractFrustum extracts the 6 planes of the frustum from a view-projection
// matrix with 0..1 clip depth. Planes are Left, Right, Bottom, Top, Near, Far
// with normals pointing inside: Ax + By + Cz + D >= 0.
func ExtractFrustum(vp mgl32.Mat4) [6]mgl32.Vec4 {
	row := func(r int) mgl32.Vec4 {
		return mgl32.Vec4{vp.At(r, 0), vp.At(r, 1), vp.At(r, 2), vp.At(r, 3)}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	planes := [6]mgl32.Vec4{
		r3.Add(r0), // left
		r3.Sub(r0), // right
		r3.Add(r1), // bottom
		r3.Sub(r1), // top
		r2,         // near (z >= 0)
		r3.Sub(r2), // far
	}

	for i := range planes {
		length := float32(math.Sqrt(float64(planes[i][0]*planes[i][0] + planes[i][1]*planes[i][1] + planes[i][2]*planes[i][2])))
		if length > 0 {
			planes[i] = planes[i].Mul(1.0 / length)
		}
	}
	return planes
}

// AABBInFrustum reports whether any part of the box may be inside. For each
// plane the most inside corner is tested; if even that one is behind the
// plane the whole box is outside.
func AABBInFrustum(aabb [2]mgl32.Vec3, planes [6]mgl32.Vec4) bool {
	for _, plane := range planes {
		var p mgl32.Vec3
		for k := 0; k < 3; k++ {
			if plane[k] > 0 {
				p[k] = aabb[1][k]
			} else {
				p[k] = aabb[0][k]
			}
		}
		if plane[0]*p[0]+plane[1]*p[1]+plane[2]*p[2]+plane[3] < 0 {
			return false
		}
	}
	return true
}

// ProjectToScreen maps an object-space point through mvp to framebuffer
// pixels (origin top-left, y down). ok is false when the point is behind the
// eye.
func ProjectToScreen(mvp mgl32.Mat4, p mgl32.Vec3, dims Dimensions) (x, y float32, ok bool) {
	return ClipToScreen(mvp.Mul4x1(p.Vec4(1)), dims)
}

// ClipToScreen performs the perspective divide and viewport transform of a
// clip-space position.
func ClipToScreen(clip mgl32.Vec4, dims Dimensions) (x, y float32, ok bool) {
	if clip.W() <= 0 {
		return 0, 0, false
	}
	ndcX := clip.X() / clip.W()
	ndcY := clip.Y() / clip.W()
	x = (ndcX*0.5 + 0.5) * dims.Width
	y = (0.5 - ndcY*0.5) * dims.Height
	return x, y, true
}
