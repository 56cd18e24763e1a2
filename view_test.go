package outline

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrustumCulling(t *testing.T) {
	// Camera at origin looking down -Z, 90 degree FOV, near 1, far 100.
	proj := PerspectiveZO(mgl32.DegToRad(90), 1.0, 1.0, 100.0)
	view := mgl32.LookAtV(
		mgl32.Vec3{0, 0, 0},
		mgl32.Vec3{0, 0, -1},
		mgl32.Vec3{0, 1, 0},
	)
	planes := ExtractFrustum(proj.Mul4(view))

	tests := []struct {
		name     string
		aabbMin  mgl32.Vec3
		aabbMax  mgl32.Vec3
		expected bool
	}{
		{"Inside (center)", mgl32.Vec3{-1, -1, -10}, mgl32.Vec3{1, 1, -5}, true},
		{"Outside (Left)", mgl32.Vec3{-20, -1, -10}, mgl32.Vec3{-15, 1, -5}, false},
		{"Outside (Right)", mgl32.Vec3{15, -1, -10}, mgl32.Vec3{20, 1, -5}, false},
		{"Outside (Top)", mgl32.Vec3{-1, 15, -10}, mgl32.Vec3{1, 20, -5}, false},
		{"Outside (Behind/Near)", mgl32.Vec3{-1, -1, 2}, mgl32.Vec3{1, 1, 5}, false},
		{"Outside (Far)", mgl32.Vec3{-1, -1, -200}, mgl32.Vec3{1, 1, -150}, false},
		{"Intersecting (Left Plane)", mgl32.Vec3{-12, -1, -10}, mgl32.Vec3{-8, 1, -5}, true},
		{"Intersecting (Near Plane)", mgl32.Vec3{-0.5, -0.5, -2}, mgl32.Vec3{0.5, 0.5, 0.5}, true},
		{"Intersecting (Far Plane)", mgl32.Vec3{-1, -1, -150}, mgl32.Vec3{1, 1, -50}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AABBInFrustum([2]mgl32.Vec3{tc.aabbMin, tc.aabbMax}, planes)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestView_Visible(t *testing.T) {
	quad := Quad()
	empty, err := NewMesh("empty", nil, nil)
	require.NoError(t, err)

	place := func(x, y float32) *Transform {
		tr := NewTransform()
		tr.Position = mgl32.Vec3{x, y, 0}
		tr.Scale = mgl32.Vec3{10, 10, 1}
		return tr
	}
	onscreen := NewDrawItem(quad, place(32, 32))
	disabled := NewDrawItem(quad, place(16, 16))
	disabled.Enabled = false
	offscreen := NewDrawItem(quad, place(500, 32))

	v := &View{
		Name:       "main",
		ViewMatrix: mgl32.Ident4(),
		Projection: OrthoZO(0, 64, 64, 0, -1, 1),
		Items: []DrawItem{
			onscreen,
			disabled,
			offscreen,
			{Mesh: nil, Model: mgl32.Ident4(), Enabled: true},
			{Mesh: empty, Model: mgl32.Ident4(), Enabled: true},
		},
	}

	visible := v.Visible()
	require.Len(t, visible, 1)
	assert.Same(t, quad, visible[0].Mesh)
	assert.Equal(t, onscreen.Model, visible[0].Model)
}

func TestProjectToScreen(t *testing.T) {
	dims, err := NewDimensions(64, 32)
	require.NoError(t, err)

	ortho := OrthoZO(0, 64, 32, 0, -1, 1)
	x, y, ok := ProjectToScreen(ortho, mgl32.Vec3{10, 20, 0}, dims)
	require.True(t, ok)
	assert.InDelta(t, 10, x, 1e-4)
	assert.InDelta(t, 20, y, 1e-4)

	proj := PerspectiveZO(mgl32.DegToRad(90), 2, 0.1, 100)
	x, y, ok = ProjectToScreen(proj, mgl32.Vec3{0, 0, -5}, dims)
	require.True(t, ok)
	assert.InDelta(t, 32, x, 1e-4)
	assert.InDelta(t, 16, y, 1e-4)

	// Above the optical axis lands in the upper half of the framebuffer.
	_, y, ok = ProjectToScreen(proj, mgl32.Vec3{0, 1, -5}, dims)
	require.True(t, ok)
	assert.Less(t, y, float32(16))

	_, _, ok = ProjectToScreen(proj, mgl32.Vec3{0, 0, 5}, dims)
	assert.False(t, ok, "points behind the eye are rejected")
}

func TestPerspectiveZO_DepthRange(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(60), 1, 1, 100)
	ndcZ := func(z float32) float32 {
		clip := proj.Mul4x1(mgl32.Vec4{0, 0, z, 1})
		return clip.Z() / clip.W()
	}
	assert.InDelta(t, 0, ndcZ(-1), 1e-5)
	assert.InDelta(t, 1, ndcZ(-100), 1e-4)
}
