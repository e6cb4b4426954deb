// Package axis maps chart values onto pixel ranges and computes human-friendly tick
// positions for them.
package axis

import "math"

// Math is a linear mapping between a value range and a pixel range. The value range
// also carries the number of equidistant samples laid out along the axis, which allows
// translating pixels into sample indices.
//
// The zero value maps nothing; both SetSize and SetValues must be called before use.
type Math struct {
	start, end float32
	top, low   int64
	points     int
}

// SetSize configures the pixel range of the axis.
func (m *Math) SetSize(start, end float32) {
	m.start = start
	m.end = end
}

// SetValues configures the value range of the axis and the number of samples spread
// over it. Will panic if top == low, as such a domain cannot be mapped onto pixels.
func (m *Math) SetValues(top, low int64, points int) {
	if top == low {
		panic("axis: degenerate value range")
	}
	m.top = top
	m.low = low
	m.points = points
}

// Start returns the first pixel of the axis.
func (m *Math) Start() float32 { return m.start }

// End returns the last pixel of the axis.
func (m *Math) End() float32 { return m.end }

// Top returns the configured top value.
func (m *Math) Top() int64 { return m.top }

// Low returns the configured low value.
func (m *Math) Low() int64 { return m.low }

// Points returns the configured sample count.
func (m *Math) Points() int { return m.points }

// Length returns the pixel length of the axis.
func (m *Math) Length() float32 {
	return m.end - m.start
}

// PixelsPerValue returns how many pixels a single value unit occupies.
func (m *Math) PixelsPerValue() float64 {
	return m.PixelsPerValueFor(m.top, m.low)
}

// PixelsPerValueFor returns how many pixels a single value unit would occupy if the
// axis spanned [low, top] instead of the configured range.
func (m *Math) PixelsPerValueFor(top, low int64) float64 {
	return float64(m.Length()) / float64(top-low)
}

// ValueToPixel converts a value into its pixel position on the axis.
func (m *Math) ValueToPixel(v int64) float32 {
	return float32(float64(v-m.low)*m.PixelsPerValue() + float64(m.start))
}

// PixelToFloat is the exact inverse of ValueToPixel. An axis without pixel length maps
// everything onto its low value.
func (m *Math) PixelToFloat(p float32) float64 {
	length := float64(m.Length())
	if length == 0 {
		return float64(m.low)
	}
	return float64(p-m.start)*float64(m.top-m.low)/length + float64(m.low)
}

// PixelToValue converts a pixel position into the nearest value.
func (m *Math) PixelToValue(p float32) int64 {
	return int64(math.Round(m.PixelToFloat(p)))
}

// PixelsPerPoint returns the spacing between consecutive samples. Will panic if fewer
// than two samples are configured.
func (m *Math) PixelsPerPoint() float32 {
	if m.points < 2 {
		panic("axis: need at least two points to space them")
	}
	return m.Length() / float32(m.points-1)
}

// PixelToPointPosition converts a pixel position into a fractional sample index.
func (m *Math) PixelToPointPosition(p float32) float32 {
	return (p - m.start) / m.PixelsPerPoint()
}

// PixelToRoundPointPosition converts a pixel position into the nearest sample index,
// with halves rounding up.
func (m *Math) PixelToRoundPointPosition(p float32) int {
	return int(math.Floor(float64(m.PixelToPointPosition(p)) + .5))
}
