package visualizer

import (
	"testing"
	"time"
)

func newTestViewer(t *testing.T) (*Viewer, *Controller) {
	t.Helper()
	c := newTestController(t)
	v := NewViewer(ViewerOptions{})
	v.SetSize(200, 120, 20)
	g := c.GraphBounds()
	v.OnSelectionChanged(c.Select(g.Min.X, g.Max.X))
	return v, c
}

func TestViewerInspect(t *testing.T) {
	v, _ := newTestViewer(t)
	in, ok := v.Inspect(70)
	if !ok {
		t.Fatalf("expected an inspection")
	}
	if in.Index != 3 || in.X != 3*day {
		t.Errorf("expected sample 3, got %d (%d)", in.Index, in.X)
	}
	if !approx(in.Pos, 600.0/9) {
		t.Errorf("expected the marker at %v, got %v", 600.0/9, in.Pos)
	}
	want := map[string]int64{"A": 3, "B": 14, "C": 3}
	if len(in.Values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(in.Values))
	}
	for _, iv := range in.Values {
		if iv.Value != want[iv.ID] {
			t.Errorf("%s: expected %d, got %d", iv.ID, want[iv.ID], iv.Value)
		}
		// The domain 0..20 spans 100 pixels, drawn bottom up.
		if y := 100 - float32(iv.Value)*5; !approx(iv.Pos.Y, y) {
			t.Errorf("%s: expected y %v, got %v", iv.ID, y, iv.Pos.Y)
		}
	}
	if _, ok := v.Inspect(250); ok {
		t.Errorf("expected positions outside the graph to be ignored")
	}
	v.ClearInspection()
	if _, ok := v.Inspection(); ok {
		t.Errorf("expected the inspection to be cleared")
	}
}

func TestViewerYTicks(t *testing.T) {
	v, _ := newTestViewer(t)
	ticks := v.YTicks()
	if len(ticks) != 5 {
		t.Fatalf("expected 5 ticks, got %d", len(ticks))
	}
	for i, tick := range ticks {
		if want := int64(4 * i); tick.Value != want {
			t.Errorf("tick %d: expected %d, got %d", i, want, tick.Value)
		}
		if want := 100 - float32(tick.Value)*5; !approx(tick.Pos, want) {
			t.Errorf("tick %d: expected position %v, got %v", i, want, tick.Pos)
		}
	}
	if ticks[1].Label != "4" {
		t.Errorf("expected label 4, got %q", ticks[1].Label)
	}
}

func TestViewerXLabels(t *testing.T) {
	v, _ := newTestViewer(t)
	labels := v.XLabels()
	if len(labels) != 5 {
		t.Fatalf("expected 5 labels, got %d", len(labels))
	}
	first, last := labels[0], labels[len(labels)-1]
	if first.Label != "Jan 1" || last.Label != "Jan 10" {
		t.Errorf("expected Jan 1 to Jan 10, got %s to %s", first.Label, last.Label)
	}
	if !approx(first.Pos, 0) || !approx(last.Pos, 200) {
		t.Errorf("expected labels at the graph edges, got %v and %v", first.Pos, last.Pos)
	}
}

func TestViewerBoundsAnimation(t *testing.T) {
	v, c := newTestViewer(t)
	v.Inspect(70)
	v.OnSelectionChanged(c.Select(pixelOf(2), pixelOf(7)))
	if _, ok := v.Inspection(); ok {
		t.Errorf("expected a new selection to clear the inspection")
	}
	if !v.Animating() {
		t.Fatalf("expected changed extrema to animate")
	}
	t0 := time.Unix(0, 0)
	v.Tick(t0)
	if v.Tick(t0.Add(300 * time.Millisecond)) {
		t.Errorf("expected the animation to finish")
	}
	// Domain 0..16 over 100 pixels.
	if d := v.displayed; !approx(d.Min.Y, 6.25) || !approx(d.Max.Y, 100) {
		t.Errorf("expected displayed bounds from 6.25 to 100, got %v", d)
	}
	if d := v.displayed; d.Min.X != 0 || d.Max.X != 200 {
		t.Errorf("expected the full graph width, got %v", d)
	}

	// Same extrema: no new animation.
	v.OnSelectionChanged(c.Select(pixelOf(2), pixelOf(7)))
	if v.Animating() {
		t.Errorf("expected unchanged extrema not to animate")
	}
}

func TestViewerDraw(t *testing.T) {
	v, _ := newTestViewer(t)
	var r recorder
	v.Draw(&r)
	if len(r.strokes) != 3 || len(r.rects) != 5 || len(r.circles) != 0 {
		t.Errorf("expected 3 strokes, 5 grid lines and no markers, got %d, %d, %d", len(r.strokes), len(r.rects), len(r.circles))
	}
	// A starts at zero, the bottom of the domain.
	if first := r.strokes[0][0]; !approx(first.X, 0) || !approx(first.Y, 100) {
		t.Errorf("expected A to start at (0, 100), got %v", first)
	}
	v.Inspect(70)
	r = recorder{}
	v.Draw(&r)
	if len(r.rects) != 6 || len(r.circles) != 3 {
		t.Errorf("expected a marker and 3 dots, got %d rectangles and %d dots", len(r.rects), len(r.circles))
	}
}

func TestViewerUnsized(t *testing.T) {
	c := newTestController(t)
	v := NewViewer(ViewerOptions{})
	g := c.GraphBounds()
	v.OnSelectionChanged(c.Select(g.Min.X, g.Max.X))
	if _, ok := v.Inspect(10); ok {
		t.Errorf("expected no inspection before layout")
	}
	if v.YTicks() != nil {
		t.Errorf("expected no ticks before layout")
	}
	v.SetSize(200, 120, 20)
	if len(v.YTicks()) != 5 {
		t.Errorf("expected ticks once laid out")
	}
}
