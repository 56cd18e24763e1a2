package outline

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform places a mesh in the world. Rotation is applied after scale and
// before translation.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() *Transform {
	return &Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Rotate turns the transform by angle radians about axis, on top of its
// current rotation.
func (t *Transform) Rotate(angle float32, axis mgl32.Vec3) *Transform {
	t.Rotation = mgl32.QuatRotate(angle, axis.Normalize()).Mul(t.Rotation).Normalize()
	return t
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.Elem()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.Elem()))
}
