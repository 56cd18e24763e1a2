package soft

import (
	"image"

	"github.com/gekko3d/outline"
)

// initSeeds writes, for every texel, its own encoded pixel centre if the mask
// is fully covered there and the sentinel otherwise.
func initSeeds(dst *SeedBuffer, mask *image.Alpha, dims outline.Dimensions, workers int) {
	parallelRows(dst.Height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := mask.Pix[y*mask.Stride : y*mask.Stride+dst.Width]
			for x, a := range row {
				if a == outline.FullCoverage {
					px, py := outline.PixelCenter(x, y)
					dst.Set(x, y, outline.EncodeSeed(px, py, dims))
				} else {
					dst.Set(x, y, outline.Sentinel)
				}
			}
		}
	})
}

// jumpOffsets are visited in this order; on equal distance the earlier tap
// wins, so the texel's own value is preferred.
var jumpOffsets = [9][2]int{
	{0, 0},
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// jumpFlood runs one iteration with distance step: every texel of dst takes
// the nearest seed seen by the nine taps of src at offsets {-step, 0, step}².
// Taps outside the buffer are ignored and the sentinel never wins.
func jumpFlood(dst, src *SeedBuffer, step int, dims outline.Dimensions, workers int) {
	w, h := src.Width, src.Height
	parallelRows(h, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				px, py := outline.PixelCenter(x, y)
				best := outline.Sentinel
				bestDist := float32(0)
				for _, o := range jumpOffsets {
					sx, sy := x+o[0]*step, y+o[1]*step
					if sx < 0 || sy < 0 || sx >= w || sy >= h {
						continue
					}
					t := src.Pix[sy*w+sx]
					if t.IsSentinel() {
						continue
					}
					d := outline.SeedDistance(t, px, py, dims)
					if best.IsSentinel() || d < bestDist {
						best, bestDist = t, d
					}
				}
				dst.Pix[y*w+x] = best
			}
		}
	})
}
