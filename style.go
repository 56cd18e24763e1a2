package outline

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FalloffBand is the width in pixels of the smooth transition at the outer
// edge of an outline.
const FalloffBand float32 = 1

// Style is the per-consumer outline appearance.
type Style struct {
	// Color is straight (non-premultiplied) RGBA in [0, 1].
	Color [4]float32
	// Width is the outline width in pixels.
	Width float32
}

// DefaultStyle returns a lavender, 32 pixel wide outline.
func DefaultStyle() Style {
	c, _ := ColorFromHex("b4a2c8")
	return Style{Color: c, Width: 32}
}

func (s Style) Validate() error {
	for i, c := range s.Color {
		if math.IsNaN(float64(c)) || c < 0 || c > 1 {
			return fmt.Errorf("%w: style color component %d = %v outside [0, 1]", ErrInvalidConfig, i, c)
		}
	}
	if math.IsNaN(float64(s.Width)) || math.IsInf(float64(s.Width), 0) || s.Width < 0 {
		return fmt.Errorf("%w: style width %v", ErrInvalidConfig, s.Width)
	}
	return nil
}

// Bytes packs the uniform: vec4 color followed by f32 width, padded to 32 bytes.
func (s Style) Bytes() []byte {
	buf := make([]byte, 32)
	for i, c := range s.Color {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c))
	}
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(s.Width))
	return buf
}

// ColorFromHex parses "rrggbb" or "rrggbbaa", with or without a leading '#'.
func ColorFromHex(hex string) ([4]float32, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return [4]float32{}, fmt.Errorf("%w: bad hex color %q", ErrInvalidConfig, hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [4]float32{}, fmt.Errorf("%w: bad hex color %q: %v", ErrInvalidConfig, hex, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return [4]float32{
		float32(v>>24&0xff) / 255,
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}

// Opacity maps a distance to the nearest seed onto outline coverage: 1 inside
// the width, 0 beyond it, with a smoothstep over FalloffBand centred on width.
func Opacity(distance, width float32) float32 {
	if math.IsInf(float64(distance), 1) {
		return 0
	}
	half := FalloffBand / 2
	return 1 - smoothstep(width-half, width+half, distance)
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := (x - edge0) / (edge1 - edge0)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}
