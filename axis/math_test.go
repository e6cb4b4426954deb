package axis

import (
	"math"
	"testing"
)

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("expected %s to panic", name)
		}
	}()
	f()
}

func TestMathRoundTrip(t *testing.T) {
	type testcase struct {
		name       string
		start, end float32
		top, low   int64
		points     int
	}
	for _, tc := range []testcase{
		{name: "small", start: 10, end: 110, top: 1000, low: 0, points: 11},
		{name: "negative", start: 0, end: 300, top: 50, low: -250, points: 4},
		{name: "timestamps", start: 32, end: 1032, top: 1553040000000, low: 1542412800000, points: 112},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var m Math
			m.SetSize(tc.start, tc.end)
			m.SetValues(tc.top, tc.low, tc.points)
			// Rounding to the nearest value moves a pixel by at most half a value.
			tolerance := math.Max(m.PixelsPerValue()/2, 1e-3) + 1e-3
			for p := tc.start; p <= tc.end; p += .5 {
				exact := m.PixelToFloat(p)
				back := float64(m.ValueToPixel(int64(math.Round(exact))))
				if math.Abs(back-float64(p)) > tolerance {
					t.Errorf("expected pixel %f to survive round trip, got %f", p, back)
				}
				if v := m.PixelToValue(p); v != int64(math.Round(exact)) {
					t.Errorf("expected PixelToValue(%f) to round %f, got %d", p, exact, v)
				}
			}
			if got := m.ValueToPixel(tc.low); got != tc.start {
				t.Errorf("expected low value at %f, got %f", tc.start, got)
			}
			if got := m.ValueToPixel(tc.top); math.Abs(float64(got-tc.end)) > 1e-3 {
				t.Errorf("expected top value at %f, got %f", tc.end, got)
			}
		})
	}
}

func TestMathPointPositions(t *testing.T) {
	var m Math
	m.SetSize(10, 110)
	m.SetValues(1000, 0, 11)
	if ppp := m.PixelsPerPoint(); ppp != 10 {
		t.Errorf("expected 10 pixels per point, got %f", ppp)
	}
	if ppv := m.PixelsPerValueFor(100, 0); ppv != 1 {
		t.Errorf("expected 1 pixel per value for [0,100], got %f", ppv)
	}
	type expectation struct {
		pixel    float32
		position float32
		rounded  int
	}
	for _, e := range []expectation{
		{pixel: 10, position: 0, rounded: 0},
		{pixel: 14.9, position: .49, rounded: 0},
		{pixel: 15, position: .5, rounded: 1},
		{pixel: 57, position: 4.7, rounded: 5},
		{pixel: 110, position: 10, rounded: 10},
	} {
		if got := m.PixelToPointPosition(e.pixel); math.Abs(float64(got-e.position)) > 1e-4 {
			t.Errorf("expected pixel %f at position %f, got %f", e.pixel, e.position, got)
		}
		if got := m.PixelToRoundPointPosition(e.pixel); got != e.rounded {
			t.Errorf("expected pixel %f at rounded position %d, got %d", e.pixel, e.rounded, got)
		}
	}
}

func TestMathPreconditions(t *testing.T) {
	var m Math
	m.SetSize(0, 100)
	expectPanic(t, "degenerate domain", func() {
		m.SetValues(5, 5, 10)
	})
	m.SetValues(10, 0, 1)
	expectPanic(t, "single point spacing", func() {
		m.PixelsPerPoint()
	})
}
