package outline

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MaxExtent is the largest width or height the seed encoding can address with
// sub-pixel precision.
const MaxExtent = SeedScale

// Dimensions describes the current output resolution. It is immutable for the
// duration of a frame and is read by every pass that converts between pixel
// and normalized coordinates.
type Dimensions struct {
	Width     float32
	Height    float32
	InvWidth  float32
	InvHeight float32
}

// NewDimensions builds the descriptor for a width×height target.
func NewDimensions(width, height uint32) (Dimensions, error) {
	if width == 0 || height == 0 {
		return Dimensions{}, fmt.Errorf("%w: zero-sized dimensions %dx%d", ErrInvalidConfig, width, height)
	}
	if width > MaxExtent || height > MaxExtent {
		return Dimensions{}, fmt.Errorf("%w: dimensions %dx%d exceed %d", ErrInvalidConfig, width, height, MaxExtent)
	}
	return Dimensions{
		Width:     float32(width),
		Height:    float32(height),
		InvWidth:  1 / float32(width),
		InvHeight: 1 / float32(height),
	}, nil
}

// Size returns the integer extent.
func (d Dimensions) Size() (width, height uint32) {
	return uint32(d.Width), uint32(d.Height)
}

func (d Dimensions) IsZero() bool {
	return d.Width == 0 || d.Height == 0
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", uint32(d.Width), uint32(d.Height))
}

// Bytes packs the uniform as four little-endian f32 values:
// width, height, inv_width, inv_height.
func (d Dimensions) Bytes() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(d.Width))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(d.Height))
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(d.InvWidth))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(d.InvHeight))
	return buf
}
