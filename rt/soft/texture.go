// Package soft is the CPU rendition of the outline pipeline. It runs the same
// four passes as the GPU backend on in-memory buffers and is used for
// headless rendering and as the executable reference for tests.
package soft

import (
	"fmt"
	"image"

	"github.com/gekko3d/outline"
	"github.com/gekko3d/outline/rt/resource"
)

// SeedBuffer is a row-major grid of seed texels.
type SeedBuffer struct {
	Width, Height int
	Pix           []outline.SeedTexel
}

// NewSeedBuffer returns a buffer cleared to the sentinel.
func NewSeedBuffer(width, height int) *SeedBuffer {
	b := &SeedBuffer{Width: width, Height: height, Pix: make([]outline.SeedTexel, width*height)}
	b.Fill(outline.Sentinel)
	return b
}

func (b *SeedBuffer) At(x, y int) outline.SeedTexel { return b.Pix[y*b.Width+x] }

func (b *SeedBuffer) Set(x, y int, t outline.SeedTexel) { b.Pix[y*b.Width+x] = t }

func (b *SeedBuffer) Fill(t outline.SeedTexel) {
	for i := range b.Pix {
		b.Pix[i] = t
	}
}

// Seeded counts texels that hold a seed.
func (b *SeedBuffer) Seeded() int {
	n := 0
	for _, t := range b.Pix {
		if !t.IsSentinel() {
			n++
		}
	}
	return n
}

// Texture is one software allocation: a mask or a seed buffer.
type Texture struct {
	Mask  *image.Alpha
	Seeds *SeedBuffer
}

type allocator struct{}

func (allocator) Allocate(key resource.Key) (*Texture, error) {
	w, h := int(key.Width), int(key.Height)
	switch key.Format {
	case outline.FormatMask:
		return &Texture{Mask: image.NewAlpha(image.Rect(0, 0, w, h))}, nil
	case outline.FormatSeed:
		return &Texture{Seeds: NewSeedBuffer(w, h)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", outline.ErrUnsupportedFormat, key)
	}
}

func (allocator) Release(t *Texture) {
	if t == nil {
		return
	}
	t.Mask = nil
	t.Seeds = nil
}

// Analytic coverage replaces the multisampled mask, so no
// resource.MaskMultisample texture is requested.
var templates = []resource.Template{
	{Purpose: resource.Mask, Format: outline.FormatMask, SampleCount: 1},
	{Purpose: resource.SeedPrimary, Format: outline.FormatSeed, SampleCount: 1},
	{Purpose: resource.SeedSecondary, Format: outline.FormatSeed, SampleCount: 1},
}
