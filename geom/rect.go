// Package geom provides the small amount of planar geometry the chart engine needs
// on top of gioui.org/f32: axis-aligned rectangles, measurable polylines, and
// rectangle-to-rectangle affine transforms.
package geom

import (
	"fmt"

	"gioui.org/f32"
)

// Rect is an axis-aligned rectangle in pixel space. Min is the top-left corner and
// Max the bottom-right one.
type Rect struct {
	Min, Max f32.Point
}

// R is shorthand for building a Rect from its edges.
func R(left, top, right, bottom float32) Rect {
	return Rect{
		Min: f32.Pt(left, top),
		Max: f32.Pt(right, bottom),
	}
}

func (r Rect) Dx() float32 { return r.Max.X - r.Min.X }
func (r Rect) Dy() float32 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y
}

// Contains reports whether p lies within r. The left and top edges are inclusive, the
// right and bottom ones exclusive, and an empty rectangle contains nothing.
func (r Rect) Contains(p f32.Point) bool {
	return !r.Empty() &&
		p.X >= r.Min.X && p.X < r.Max.X &&
		p.Y >= r.Min.Y && p.Y < r.Max.Y
}

// Inset moves the left and right edges inward by dx and the top and bottom edges
// inward by dy. Negative values grow the rectangle.
func (r Rect) Inset(dx, dy float32) Rect {
	return R(r.Min.X+dx, r.Min.Y+dy, r.Max.X-dx, r.Max.Y-dy)
}

// Offset translates the rectangle.
func (r Rect) Offset(dx, dy float32) Rect {
	d := f32.Pt(dx, dy)
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

func (r Rect) Center() f32.Point {
	return f32.Pt((r.Min.X+r.Max.X)*.5, (r.Min.Y+r.Max.Y)*.5)
}

// Transform maps both corners through m and returns the normalized result.
func (r Rect) Transform(m f32.Affine2D) Rect {
	a := m.Transform(r.Min)
	b := m.Transform(r.Max)
	return R(min(a.X, b.X), min(a.Y, b.Y), max(a.X, b.X), max(a.Y, b.Y))
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g)-(%g,%g)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// RectToRect returns the transform that maps src onto dst, scaling each axis
// independently so that the edges coincide. An axis on which src has no extent is
// translated but not scaled.
func RectToRect(src, dst Rect) f32.Affine2D {
	sx := float32(1)
	if w := src.Dx(); w != 0 {
		sx = dst.Dx() / w
	}
	sy := float32(1)
	if h := src.Dy(); h != 0 {
		sy = dst.Dy() / h
	}
	ox := dst.Min.X - src.Min.X*sx
	oy := dst.Min.Y - src.Min.Y*sy
	return f32.NewAffine2D(sx, 0, ox, 0, sy, oy)
}

// FlipY returns the transform that mirrors points vertically around the horizontal
// center line of r.
func FlipY(r Rect) f32.Affine2D {
	return f32.NewAffine2D(1, 0, 0, 0, -1, r.Min.Y+r.Max.Y)
}
