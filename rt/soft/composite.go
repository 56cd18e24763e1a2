package soft

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gekko3d/outline"
	"golang.org/x/image/draw"
)

// checkTarget rejects targets that cannot receive a blended color outline.
func checkTarget(dst draw.Image, dims outline.Dimensions) error {
	switch dst.(type) {
	case *image.Alpha, *image.Alpha16, *image.Gray, *image.Gray16, *image.Paletted:
		return fmt.Errorf("%w: %T has no color channels to blend into", outline.ErrUnsupportedFormat, dst)
	}
	w, h := dims.Size()
	b := dst.Bounds()
	if b.Dx() != int(w) || b.Dy() != int(h) {
		return fmt.Errorf("%w: target is %dx%d, dimensions are %s", outline.ErrResourceMismatch, b.Dx(), b.Dy(), dims)
	}
	return nil
}

// outlineCoverage fills cov with the outline opacity of every pixel. With
// knockout the opacity is scaled by the uncovered fraction of the mask. It
// reports whether any pixel has non-zero opacity.
func outlineCoverage(cov *image.Alpha, seeds *SeedBuffer, mask *image.Alpha, style outline.Style, knockout bool, dims outline.Dimensions, workers int) bool {
	touched := make([]bool, seeds.Height)
	parallelRows(seeds.Height, workers, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			row := cov.Pix[y*cov.Stride : y*cov.Stride+seeds.Width]
			for x := range row {
				px, py := outline.PixelCenter(x, y)
				a := outline.Opacity(outline.SeedDistance(seeds.At(x, y), px, py, dims), style.Width)
				if knockout {
					a *= 1 - float32(mask.Pix[y*mask.Stride+x])/outline.FullCoverage
				}
				v := uint8(a*255 + 0.5)
				row[x] = v
				if v != 0 {
					touched[y] = true
				}
			}
		}
	})
	for _, t := range touched {
		if t {
			return true
		}
	}
	return false
}

func styleColor(s outline.Style) color.NRGBA64 {
	c := func(v float32) uint16 { return uint16(v*0xffff + 0.5) }
	return color.NRGBA64{R: c(s.Color[0]), G: c(s.Color[1]), B: c(s.Color[2]), A: c(s.Color[3])}
}

// compositeOutline blends the style color over dst with the coverage in cov
// as mask: dst = color·α + dst·(1−α) with α = opacity · color alpha. dst is
// never cleared, so pixels with zero coverage keep their content.
func compositeOutline(dst draw.Image, cov *image.Alpha, style outline.Style) {
	src := &image.Uniform{C: styleColor(style)}
	draw.DrawMask(dst, dst.Bounds(), src, image.Point{}, cov, image.Point{}, draw.Over)
}
