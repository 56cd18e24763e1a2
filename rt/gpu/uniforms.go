package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/outline"
	"github.com/go-gl/mathgl/mgl32"
)

// uniformStride is the dynamic offset alignment of uniform buffers.
const uniformStride = 256

const (
	mat4Size   = 64
	paramsSize = 32
)

// jumpTable holds the jump distances 2^0 .. 2^MaxJumpExponent, one per
// uniformStride slot, as i32.
func jumpTable() []byte {
	buf := make([]byte, (outline.MaxJumpExponent+1)*uniformStride)
	for e := 0; e <= outline.MaxJumpExponent; e++ {
		binary.LittleEndian.PutUint32(buf[e*uniformStride:], uint32(1)<<e)
	}
	return buf
}

// jumpOffset is the dynamic offset of step in the jump table.
func jumpOffset(step uint32) (uint32, error) {
	if step == 0 || step&(step-1) != 0 || step > 1<<outline.MaxJumpExponent {
		return 0, fmt.Errorf("%w: jump distance %d not in table", outline.ErrInvalidConfig, step)
	}
	return uint32(outline.JumpExponent(step)) * uniformStride, nil
}

// putMat4 writes m column-major, matching WGSL mat4x4<f32>.
func putMat4(buf []byte, m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
}

func viewBytes(viewProj mgl32.Mat4) []byte {
	buf := make([]byte, mat4Size)
	putMat4(buf, viewProj)
	return buf
}

// modelBytes packs one model matrix per uniformStride slot, reusing buf.
func modelBytes(buf []byte, items []outline.DrawItem) []byte {
	n := len(items) * uniformStride
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	clear(buf)
	for i, item := range items {
		putMat4(buf[i*uniformStride:], item.Model)
	}
	return buf
}

// paramsBytes packs the composite uniform: vec4 color, f32 width, f32
// knockout flag, padded to 32 bytes.
func paramsBytes(style outline.Style, knockout bool) []byte {
	buf := style.Bytes()
	if knockout {
		binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(1))
	}
	return buf
}
