package outline

import "math"

// SeedScale is the fixed-point scale of a normalized signed 16-bit channel:
// the stored integer q represents q / SeedScale.
const SeedScale = 32767

// SeedTexel is one seed buffer texel: two signed 16-bit fixed-point channels
// holding the normalized x and y of the nearest known seed.
type SeedTexel [2]int16

// Sentinel marks a texel that has not observed any seed. It is the encoding of
// the normalized coordinate (-1, -1).
var Sentinel = SeedTexel{-SeedScale, -SeedScale}

// IsSentinel reports whether t carries no seed. Valid encodings are never
// negative, so any negative channel is treated as the sentinel.
func (t SeedTexel) IsSentinel() bool {
	return t[0] < 0 || t[1] < 0
}

// PixelCenter returns the framebuffer coordinate of the centre of pixel (x, y).
func PixelCenter(x, y int) (float32, float32) {
	return float32(x) + 0.5, float32(y) + 0.5
}

// EncodeSeed maps a pixel-space coordinate to its fixed-point texel using the
// linear transform q = round(p * inv_size * SeedScale).
func EncodeSeed(px, py float32, dims Dimensions) SeedTexel {
	return SeedTexel{
		encodeChannel(px * dims.InvWidth),
		encodeChannel(py * dims.InvHeight),
	}
}

func encodeChannel(v float32) int16 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int16(math.Round(float64(v) * SeedScale))
}

// DecodeSeed inverts EncodeSeed. ok is false for the sentinel.
func DecodeSeed(t SeedTexel, dims Dimensions) (px, py float32, ok bool) {
	if t.IsSentinel() {
		return 0, 0, false
	}
	px = float32(t[0]) / SeedScale * dims.Width
	py = float32(t[1]) / SeedScale * dims.Height
	return px, py, true
}

// SeedDistance returns the Euclidean distance in pixels from (px, py) to the
// seed stored in t. The sentinel is infinitely far away.
func SeedDistance(t SeedTexel, px, py float32, dims Dimensions) float32 {
	sx, sy, ok := DecodeSeed(t, dims)
	if !ok {
		return float32(math.Inf(1))
	}
	dx, dy := sx-px, sy-py
	return float32(math.Sqrt(float64(dx*dx + dy*dy)))
}
