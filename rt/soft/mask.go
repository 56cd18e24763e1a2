package soft

import (
	"image"

	"github.com/gekko3d/outline"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

type screenVertex struct{ x, y float32 }

// maxClipped is the vertex count of a triangle clipped by two planes.
const maxClipped = 5

// depthPlanes are the near (z >= 0) and far (z <= w) planes of WebGPU clip
// space, as signed distances of a clip-space position.
var depthPlanes = [2]func(v mgl32.Vec4) float32{
	func(v mgl32.Vec4) float32 { return v.Z() },
	func(v mgl32.Vec4) float32 { return v.W() - v.Z() },
}

// clipDepth clips the polygon in against the depth planes and returns the
// part in front of the near plane and behind the far plane. Positions on the
// near plane have w > 0 for every projection with a positive near distance,
// so the result can be divided safely.
func clipDepth(in []mgl32.Vec4, scratch *[2][maxClipped]mgl32.Vec4) []mgl32.Vec4 {
	poly := in
	for i, dist := range depthPlanes {
		out := scratch[i][:0]
		for k := range poly {
			a, b := poly[k], poly[(k+1)%len(poly)]
			da, db := dist(a), dist(b)
			if da >= 0 {
				out = append(out, a)
			}
			if (da >= 0) != (db >= 0) {
				t := da / (da - db)
				out = append(out, a.Add(b.Sub(a).Mul(t)))
			}
		}
		if len(out) < 3 {
			return nil
		}
		poly = out
	}
	return poly
}

// rasterizeMask draws the silhouettes of items into dst: 0 where nothing is
// drawn, FullCoverage where a pixel is fully inside the union of the projected
// triangles and partial coverage along the edges. Triangles are clipped to
// the depth range first, so geometry reaching behind the eye still covers the
// part of the screen it crosses. All triangles go into one path with the same
// winding, so overlapping and adjacent triangles saturate instead of summing
// or cancelling, and drawing an item twice changes nothing. It returns the
// number of triangles drawn.
func rasterizeMask(z *vector.Rasterizer, dst *image.Alpha, items []outline.DrawItem, viewProj mgl32.Mat4, dims outline.Dimensions) int {
	clear(dst.Pix)

	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	z.Reset(w, h)
	z.DrawOp = draw.Src

	drawn := 0
	var (
		tri     [3]mgl32.Vec4
		scratch [2][maxClipped]mgl32.Vec4
		screen  [maxClipped]screenVertex
	)
	for _, item := range items {
		mvp := viewProj.Mul4(item.Model)
		pos, idx := item.Mesh.Positions, item.Mesh.Indices
		for i := 0; i+2 < len(idx); i += 3 {
			for k := 0; k < 3; k++ {
				tri[k] = mvp.Mul4x1(pos[idx[i+k]].Vec4(1))
			}
			poly := clipDepth(tri[:], &scratch)
			if poly == nil {
				continue
			}
			pts := screen[:0]
			for _, v := range poly {
				x, y, ok := outline.ClipToScreen(v, dims)
				if !ok {
					pts = nil
					break
				}
				pts = append(pts, screenVertex{x, y})
			}

			// The clipped polygon is convex: fan it from its first vertex.
			for k := 1; k+1 < len(pts); k++ {
				a, b, c := pts[0], pts[k], pts[k+1]
				area := (b.x-a.x)*(c.y-a.y) - (c.x-a.x)*(b.y-a.y)
				if area == 0 {
					continue
				}
				if area < 0 {
					b, c = c, b
				}
				z.MoveTo(a.x, a.y)
				z.LineTo(b.x, b.y)
				z.LineTo(c.x, c.y)
				z.ClosePath()
				drawn++
			}
		}
	}
	if drawn == 0 {
		return 0
	}
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return drawn
}
