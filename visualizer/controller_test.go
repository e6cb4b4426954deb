package visualizer

import (
	"errors"
	"image/color"
	"slices"
	"testing"
	"time"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/backend"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

const day = int64(24 * time.Hour / time.Millisecond)

func series(id string, samples ...int64) backend.Series {
	return backend.Series{
		ID:      id,
		Name:    "Series " + id,
		Samples: samples,
		Top:     slices.Max(samples),
		Low:     slices.Min(samples),
		Color:   color.NRGBA{R: 0x3c, G: 0xc2, B: 0x3f, A: 0xff},
	}
}

func chartOf(ss ...backend.Series) backend.Chart {
	n := len(ss[0].Samples)
	var x backend.Axis
	for i := 0; i < n; i++ {
		x.Values = append(x.Values, int64(i)*day)
	}
	x.Top, x.Low = x.Values[n-1], x.Values[0]
	return backend.Chart{X: x, Series: ss}
}

func testChart() backend.Chart {
	return chartOf(
		series("A", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		series("B", 20, 18, 16, 14, 12, 10, 8, 6, 4, 2),
		series("C", 1, 3, 1, 3, 1, 3, 1, 3, 1, 3),
	)
}

// newTestController returns a controller over testChart laid out so that the lines
// span x in [5, 105] and y in [0, 60].
func newTestController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController(testChart(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.SetSize(110, 60, Paddings{Left: 5, Right: 5})
	return c
}

// pixelOf returns the x pixel of sample i of the test controller.
func pixelOf(i int) float32 {
	return 5 + float32(i)*100/9
}

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-3 && d > -1e-3
}

type recorder struct {
	strokes [][]f32.Point
	colors  []color.NRGBA
	rects   []geom.Rect
	circles []f32.Point
	radii   []float32
}

func (r *recorder) StrokePolyline(pts []f32.Point, c color.NRGBA, width float32) {
	r.strokes = append(r.strokes, slices.Clone(pts))
	r.colors = append(r.colors, c)
}

func (r *recorder) FillRect(rect geom.Rect, c color.NRGBA) {
	r.rects = append(r.rects, rect)
}

func (r *recorder) FillCircle(center f32.Point, radius float32, c color.NRGBA) {
	r.circles = append(r.circles, center)
	r.radii = append(r.radii, radius)
}

func TestNewControllerValidation(t *testing.T) {
	mismatched := testChart()
	mismatched.Series[1] = series("B", 1, 2, 3)
	duplicate := testChart()
	duplicate.Series[2].ID = "A"
	unordered := testChart()
	unordered.X.Values = slices.Clone(unordered.X.Values)
	unordered.X.Values[4] = unordered.X.Values[3]

	cases := []struct {
		name  string
		chart backend.Chart
	}{
		{name: "no series", chart: backend.Chart{X: testChart().X}},
		{name: "one sample", chart: chartOf(series("A", 4))},
		{name: "length mismatch", chart: mismatched},
		{name: "duplicate id", chart: duplicate},
		{name: "x not increasing", chart: unordered},
		{name: "flat domain", chart: chartOf(series("A", 5, 5, 5), series("B", 5, 5, 5))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewController(tc.chart, Options{})
			if !errors.Is(err, ErrInvalidChart) {
				t.Errorf("expected ErrInvalidChart, got %v", err)
			}
		})
	}
}

func TestControllerLayout(t *testing.T) {
	c := newTestController(t)
	if got := c.GraphBounds(); got != geom.R(5, 0, 105, 60) {
		t.Errorf("expected graph (5,0)-(105,60), got %v", got)
	}
	if got := c.LinesBounds(); got != c.GraphBounds() {
		t.Errorf("expected lines bounds %v, got %v", c.GraphBounds(), got)
	}
	a, _ := c.Line("A")
	pts := a.Path().Points()
	if len(pts) != 10 {
		t.Fatalf("expected 10 points, got %d", len(pts))
	}
	for i, pt := range pts {
		if !approx(pt.X, pixelOf(i)) {
			t.Errorf("point %d: expected x %v, got %v", i, pixelOf(i), pt.X)
		}
		if want := float32(i) * 3; !approx(pt.Y, want) {
			t.Errorf("point %d: expected y %v, got %v", i, want, pt.Y)
		}
	}
}

func TestControllerSetSizeNoop(t *testing.T) {
	c := newTestController(t)
	a, _ := c.Line("A")
	before := &a.Path().Points()[0]
	c.SetSize(110, 60, Paddings{Left: 5, Right: 5})
	if after := &a.Path().Points()[0]; after != before {
		t.Errorf("expected the geometry to be kept when the size did not change")
	}
	c.SetSize(210, 60, Paddings{Left: 5, Right: 5})
	if got := a.Path().Points()[9].X; !approx(got, 205) {
		t.Errorf("expected the last point at 205 after resizing, got %v", got)
	}
}

func TestSelectIndexRange(t *testing.T) {
	c := newTestController(t)
	sel := c.Select(pixelOf(2), pixelOf(7))
	if sel.Full {
		t.Errorf("expected a partial selection")
	}
	if sel.Start != 2 || sel.End != 7 {
		t.Errorf("expected indices [2, 7], got [%d, %d]", sel.Start, sel.End)
	}
	var wantX []int64
	for i := int64(2); i <= 7; i++ {
		wantX = append(wantX, i*day)
	}
	if !slices.Equal(sel.X, wantX) {
		t.Errorf("expected x %v, got %v", wantX, sel.X)
	}
	segA, ok := sel.Segment("A")
	if !ok {
		t.Fatalf("expected a segment for A")
	}
	if want := []int64{2, 3, 4, 5, 6, 7}; !slices.Equal(segA.Values, want) {
		t.Errorf("expected A values %v, got %v", want, segA.Values)
	}
	if len(sel.Positions) != 6 || !approx(sel.Positions[0], pixelOf(2)) {
		t.Errorf("expected positions to start at %v, got %v", pixelOf(2), sel.Positions)
	}
	if sel.Top != 16 || sel.Low != 1 {
		t.Errorf("expected extrema (16, 1), got (%d, %d)", sel.Top, sel.Low)
	}
}

func TestSelectFullWidth(t *testing.T) {
	c := newTestController(t)
	g := c.GraphBounds()
	sel := c.Select(g.Min.X, g.Max.X)
	if !sel.Full {
		t.Errorf("expected a full selection")
	}
	if sel.Len() != 10 || sel.Top != 20 || sel.Low != 0 {
		t.Errorf("expected 10 samples over (20, 0), got %d over (%d, %d)", sel.Len(), sel.Top, sel.Low)
	}
	if want := geom.R(5, 0, 105, 60); sel.Bounds != want {
		t.Errorf("expected bounds %v, got %v", want, sel.Bounds)
	}
	for _, seg := range sel.Segments {
		l, _ := c.Line(seg.ID)
		if !slices.Equal(seg.Path.Points(), l.Path().Points()) {
			t.Errorf("%s: expected the whole line", seg.ID)
		}
	}
	// Segments are snapshots.
	sel.Segments[0].Path.Transform(geom.RectToRect(g, g.Offset(10, 10)))
	if l, _ := c.Line("A"); approx(l.Path().Points()[0].X, sel.Segments[0].Path.Points()[0].X) {
		t.Errorf("expected the selection not to alias the line geometry")
	}
}

func TestSelectSliceTolerance(t *testing.T) {
	c := newTestController(t)
	left, right := pixelOf(2)+3.3, pixelOf(7)-4.1
	sel := c.Select(left, right)
	ppp := float32(100) / 9
	if d := sel.Positions[0] - left; d > ppp/2 || d < -ppp/2 {
		t.Errorf("expected the first position within half a spacing of %v, got %v", left, sel.Positions[0])
	}
	for _, seg := range sel.Segments {
		l, _ := c.Line(seg.ID)
		step := l.Path().Length() / c.GraphBounds().Dx()
		pts := seg.Path.Points()
		first, last := pts[0], pts[len(pts)-1]
		if first.X < left-1e-3 || first.X > left+step+1e-3 {
			t.Errorf("%s: expected the segment to start within %v of %v, got %v", seg.ID, step, left, first.X)
		}
		if last.X > right+1e-3 || last.X < right-step-1e-3 {
			t.Errorf("%s: expected the segment to end within %v of %v, got %v", seg.ID, step, right, last.X)
		}
	}
}

func TestSetLineVisibleTransition(t *testing.T) {
	c := newTestController(t)
	if !c.SetLineVisible("B", false) {
		t.Fatalf("expected hiding B to start a transition")
	}
	if top, low := c.Domain(); top != 9 || low != 0 {
		t.Errorf("expected domain (9, 0), got (%d, %d)", top, low)
	}
	if c.Visible("B") || !c.Animating() {
		t.Errorf("expected B hidden and animating")
	}
	t0 := time.Unix(0, 0)
	c.Tick(t0)
	c.Tick(t0.Add(500 * time.Millisecond))
	b, _ := c.Line("B")
	if a := b.Alpha(); a == 0 || a == 255 {
		t.Errorf("expected B halfway faded, got alpha %d", a)
	}
	if got := c.LinesBounds(); got.Max.Y <= 60 {
		t.Errorf("expected the lines bounds to grow towards the new domain, got %v", got)
	}
	if c.Tick(t0.Add(time.Second)) {
		t.Errorf("expected the transition to finish")
	}
	if b.Alpha() != 0 || c.Animating() {
		t.Errorf("expected B transparent and no animation, got alpha %d", b.Alpha())
	}
	if got := c.LinesBounds(); got != c.GraphBounds() {
		t.Errorf("expected lines bounds reset to %v, got %v", c.GraphBounds(), got)
	}
	a, _ := c.Line("A")
	if got := a.Path().Points()[9].Y; !approx(got, 60) {
		t.Errorf("expected A to reach the top of the new domain, got %v", got)
	}
}

func TestSetLineVisibleRapidToggle(t *testing.T) {
	c := newTestController(t)
	fresh := newTestController(t)
	t0 := time.Unix(0, 0)
	c.SetLineVisible("B", false)
	c.Tick(t0)
	c.Tick(t0.Add(300 * time.Millisecond))
	if !c.SetLineVisible("B", true) {
		t.Fatalf("expected showing B during its fade-out to be accepted")
	}
	c.Tick(t0.Add(310 * time.Millisecond))
	c.Tick(t0.Add(2 * time.Second))
	if c.Animating() {
		t.Fatalf("expected the transition to finish")
	}
	for _, want := range fresh.Lines() {
		got, _ := c.Line(want.ID())
		if got.Alpha() != 255 {
			t.Errorf("%s: expected alpha 255, got %d", want.ID(), got.Alpha())
		}
		for i, pt := range got.Path().Points() {
			if w := want.Path().Points()[i]; !approx(pt.X, w.X) || !approx(pt.Y, w.Y) {
				t.Errorf("%s: point %d expected %v, got %v", want.ID(), i, w, pt)
			}
		}
	}
}

func TestSetLineVisibleRefusals(t *testing.T) {
	c := newTestController(t)
	if c.SetLineVisible("nope", false) {
		t.Errorf("expected unknown ids to be refused")
	}
	if c.SetLineVisible("A", true) {
		t.Errorf("expected showing a visible line to be refused")
	}
	if !c.SetLineVisible("A", false) || !c.SetLineVisible("B", false) {
		t.Fatalf("expected hiding A and B to be accepted")
	}
	if c.SetLineVisible("C", false) {
		t.Errorf("expected hiding the last visible line to be refused")
	}
	if !c.Visible("C") {
		t.Errorf("expected C to stay visible")
	}
	if top, low := c.Domain(); top != 3 || low != 1 {
		t.Errorf("expected domain (3, 1), got (%d, %d)", top, low)
	}

	flat, err := NewController(chartOf(series("A", 0, 5, 9), series("F", 5, 5, 5)), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flat.SetLineVisible("A", false) {
		t.Errorf("expected a toggle leaving a single value domain to be refused")
	}
	if top, low := flat.Domain(); top != 9 || low != 0 {
		t.Errorf("expected domain (9, 0), got (%d, %d)", top, low)
	}
}

func TestControllerEmission(t *testing.T) {
	c := newTestController(t)
	var got []*Selection
	c.SetConsumer(ConsumerFunc(func(s *Selection) { got = append(got, s) }))
	c.ComputeSelection(pixelOf(5), pixelOf(9))
	if len(got) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(got))
	}
	c.SetLineVisible("A", false)
	t0 := time.Unix(0, 0)
	c.Tick(t0)
	c.Tick(t0.Add(time.Second))
	if c.Tick(t0.Add(2 * time.Second)) {
		t.Errorf("expected no further frames")
	}
	if len(got) != 4 {
		t.Errorf("expected 4 selections, got %d", len(got))
	}
	last := got[len(got)-1]
	if _, ok := last.Segment("A"); ok {
		t.Errorf("expected the hidden line to be absent once transparent")
	}
	if seg, _ := last.Segment("B"); !seg.Visible || seg.Alpha != 255 {
		t.Errorf("expected B visible and opaque, got %+v", seg)
	}
}

func TestControllerResizeDuringTransition(t *testing.T) {
	c := newTestController(t)
	c.SetLineVisible("B", false)
	t0 := time.Unix(0, 0)
	c.Tick(t0)
	c.Tick(t0.Add(100 * time.Millisecond))
	c.SetSize(220, 60, Paddings{Left: 10, Right: 10, Lines: 2})
	if c.Animating() {
		t.Errorf("expected the resize to complete the transition")
	}
	b, _ := c.Line("B")
	if b.Alpha() != 0 {
		t.Errorf("expected B transparent, got %d", b.Alpha())
	}
	if want := geom.R(10, 2, 210, 58); c.LinesBounds() != want {
		t.Errorf("expected lines bounds %v, got %v", want, c.LinesBounds())
	}
}

func TestControllerDraw(t *testing.T) {
	c := newTestController(t)
	c.SetLineVisible("C", false)
	c.Tick(time.Unix(0, 0))
	c.Tick(time.Unix(5, 0))
	var r recorder
	c.Draw(&r)
	if len(r.strokes) != 2 {
		t.Fatalf("expected 2 strokes, got %d", len(r.strokes))
	}
	// A starts at the lowest value, which is drawn at the bottom.
	if first := r.strokes[0][0]; !approx(first.Y, 60) {
		t.Errorf("expected A to start at the bottom, got %v", first)
	}
	if r.colors[0].A != 0xff {
		t.Errorf("expected an opaque stroke, got %v", r.colors[0])
	}
}
