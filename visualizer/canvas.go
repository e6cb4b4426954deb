// Package visualizer implements the interactive chart engine: a full-range overview
// strip with a draggable selection window, and a detail view of the selected range.
// Every type in this package must be used from a single goroutine.
package visualizer

import (
	"image/color"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

// Canvas is the rendering sink the chart draws into. Implementations must not retain
// the point slices passed to them.
type Canvas interface {
	StrokePolyline(pts []f32.Point, c color.NRGBA, width float32)
	FillRect(r geom.Rect, c color.NRGBA)
	FillCircle(center f32.Point, radius float32, c color.NRGBA)
}

// withAlpha scales the alpha of c by a.
func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = uint8(uint16(c.A) * uint16(a) / 255)
	return c
}

// flipInto appends the points of p mirrored through m to dst[:0].
func flipInto(dst []f32.Point, p geom.Polyline, m f32.Affine2D) []f32.Point {
	dst = dst[:0]
	for _, pt := range p.Points() {
		dst = append(dst, m.Transform(pt))
	}
	return dst
}
