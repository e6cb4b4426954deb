package geom

import (
	"math"
	"sort"

	"gioui.org/f32"
)

// Polyline is an open path of straight segments that can be measured by arc length.
// The zero value is an empty polyline.
type Polyline struct {
	points []f32.Point
	// lengths[i] is the arc length from points[0] to points[i].
	lengths []float32
}

// NewPolyline takes ownership of points.
func NewPolyline(points []f32.Point) Polyline {
	p := Polyline{points: points}
	p.measure()
	return p
}

func (p *Polyline) measure() {
	p.lengths = p.lengths[:0]
	var total float32
	for i, pt := range p.points {
		if i > 0 {
			total += dist(p.points[i-1], pt)
		}
		p.lengths = append(p.lengths, total)
	}
}

func dist(a, b f32.Point) float32 {
	d := b.Sub(a)
	return float32(math.Hypot(float64(d.X), float64(d.Y)))
}

// Points returns the vertices of the polyline. The slice must not be modified.
func (p Polyline) Points() []f32.Point {
	return p.points
}

// Len returns the number of vertices.
func (p Polyline) Len() int {
	return len(p.points)
}

// Length returns the total arc length.
func (p Polyline) Length() float32 {
	if len(p.lengths) == 0 {
		return 0
	}
	return p.lengths[len(p.lengths)-1]
}

// Clone returns a deep copy of p.
func (p Polyline) Clone() Polyline {
	return Polyline{
		points:  append([]f32.Point(nil), p.points...),
		lengths: append([]float32(nil), p.lengths...),
	}
}

// segmentAt returns the index i of the segment points[i]->points[i+1] containing
// the (clamped) distance d.
func (p Polyline) segmentAt(d float32) int {
	i := sort.Search(len(p.lengths), func(i int) bool {
		return p.lengths[i] >= d
	})
	return max(min(i, len(p.points)-1)-1, 0)
}

func (p Polyline) clampDistance(d float32) float32 {
	return max(0, min(d, p.Length()))
}

// PosTan returns the position and unit tangent at the given arc length distance from
// the start. Distances outside of [0, Length] are clamped. An empty polyline yields
// zero values, and a single point has a zero tangent.
func (p Polyline) PosTan(distance float32) (pos, tan f32.Point) {
	switch len(p.points) {
	case 0:
		return f32.Point{}, f32.Point{}
	case 1:
		return p.points[0], f32.Point{}
	}
	d := p.clampDistance(distance)
	i := p.segmentAt(d)
	a, b := p.points[i], p.points[i+1]
	segLen := p.lengths[i+1] - p.lengths[i]
	if segLen == 0 {
		return a, f32.Point{}
	}
	t := (d - p.lengths[i]) / segLen
	dir := b.Sub(a).Div(segLen)
	return a.Add(b.Sub(a).Mul(t)), dir
}

// Segment returns the part of the polyline between the start and end arc length
// distances. Distances are clamped to [0, Length]; an empty polyline is returned when
// start >= end.
func (p Polyline) Segment(start, end float32) Polyline {
	start = p.clampDistance(start)
	end = p.clampDistance(end)
	if start >= end || len(p.points) < 2 {
		return Polyline{}
	}
	first, _ := p.PosTan(start)
	last, _ := p.PosTan(end)
	out := []f32.Point{first}
	for i := p.segmentAt(start) + 1; i < len(p.points) && p.lengths[i] < end; i++ {
		if p.lengths[i] > start {
			out = append(out, p.points[i])
		}
	}
	out = append(out, last)
	return NewPolyline(out)
}

// Bounds returns the smallest rectangle containing every vertex.
func (p Polyline) Bounds() Rect {
	if len(p.points) == 0 {
		return Rect{}
	}
	r := Rect{Min: p.points[0], Max: p.points[0]}
	for _, pt := range p.points[1:] {
		r.Min.X = min(r.Min.X, pt.X)
		r.Min.Y = min(r.Min.Y, pt.Y)
		r.Max.X = max(r.Max.X, pt.X)
		r.Max.Y = max(r.Max.Y, pt.Y)
	}
	return r
}

// Transform maps every vertex through m in place.
func (p *Polyline) Transform(m f32.Affine2D) {
	for i, pt := range p.points {
		p.points[i] = m.Transform(pt)
	}
	p.measure()
}
