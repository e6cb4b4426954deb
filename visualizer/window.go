package visualizer

import (
	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

// DragMode is the part of the selection window being dragged.
type DragMode uint8

const (
	DragNone DragMode = iota
	DragBody
	DragLeft
	DragRight
)

func (m DragMode) String() string {
	switch m {
	case DragBody:
		return "body"
	case DragLeft:
		return "left"
	case DragRight:
		return "right"
	default:
		return "none"
	}
}

const (
	minWidthFactor     = 0.2
	borderWidthFactor  = 0.1
	borderHeightFactor = 0.02
)

// Window is the selected range of the overview strip. It always lies within the graph
// rectangle and is never narrower than a fifth of it.
type Window struct {
	Bounds geom.Rect

	graph        geom.Rect
	placed       bool
	minWidth     float32
	borderWidth  float32
	borderHeight float32
	touchPadding float32
}

// SetGraph fits the window into graph. The first call places it at the right edge
// with the minimum width; later calls keep its relative position.
func (w *Window) SetGraph(graph geom.Rect, touchPadding float32) {
	old := w.graph
	w.graph = graph
	w.touchPadding = touchPadding
	w.minWidth = graph.Dx() * minWidthFactor
	w.borderWidth = w.minWidth * borderWidthFactor
	w.borderHeight = max(1, graph.Dy()*borderHeightFactor)

	if !w.placed || old.Dx() <= 0 {
		w.Bounds = geom.R(graph.Max.X-w.minWidth, graph.Min.Y, graph.Max.X, graph.Max.Y)
		w.placed = true
		return
	}
	left := remap(w.Bounds.Min.X, old, graph)
	right := remap(w.Bounds.Max.X, old, graph)
	if w.Bounds.Min.X == old.Min.X {
		left = graph.Min.X
	}
	if w.Bounds.Max.X == old.Max.X {
		right = graph.Max.X
	}
	if right-left < w.minWidth {
		left = right - w.minWidth
		if left < graph.Min.X {
			left = graph.Min.X
			right = left + w.minWidth
		}
	}
	w.Bounds = geom.R(left, graph.Min.Y, right, graph.Max.Y)
}

// remap moves x from the horizontal range of old to the same relative position in
// graph, multiplying before dividing so that simple ratios stay exact.
func remap(x float32, old, graph geom.Rect) float32 {
	rel := float64(x-old.Min.X) * float64(graph.Dx()) / float64(old.Dx())
	return graph.Min.X + float32(rel)
}

func (w *Window) Left() float32 { return w.Bounds.Min.X }
func (w *Window) Right() float32 { return w.Bounds.Max.X }
func (w *Window) Width() float32 { return w.Bounds.Dx() }

func (w *Window) MinWidth() float32 { return w.minWidth }
func (w *Window) BorderWidth() float32 { return w.borderWidth }
func (w *Window) BorderHeight() float32 { return w.borderHeight }

// LeftTouch returns the hit zone of the left edge.
func (w *Window) LeftTouch() geom.Rect {
	b := w.Bounds
	return geom.R(b.Min.X, b.Min.Y, b.Min.X+w.borderWidth, b.Max.Y).Inset(-w.touchPadding, 0)
}

// RightTouch returns the hit zone of the right edge.
func (w *Window) RightTouch() geom.Rect {
	b := w.Bounds
	return geom.R(b.Max.X-w.borderWidth, b.Min.Y, b.Max.X, b.Max.Y).Inset(-w.touchPadding, 0)
}

// HitTest returns the part of the window under p. Only x is considered, so presses
// anywhere in the strip's height hit the window. The edges win over the body and the
// left edge wins over the right one where their zones overlap.
func (w *Window) HitTest(p f32.Point) DragMode {
	switch {
	case within(p.X, w.LeftTouch()):
		return DragLeft
	case within(p.X, w.RightTouch()):
		return DragRight
	case within(p.X, w.Bounds):
		return DragBody
	}
	return DragNone
}

func within(x float32, r geom.Rect) bool {
	return x >= r.Min.X && x < r.Max.X
}

// Move translates the window by dx, stopping exactly at the graph edges, and reports
// whether it moved.
func (w *Window) Move(dx float32) bool {
	b := &w.Bounds
	switch {
	case dx < 0:
		if b.Min.X == w.graph.Min.X {
			return false
		}
		left := max(b.Min.X+dx, w.graph.Min.X)
		b.Max.X += left - b.Min.X
		b.Min.X = left
	case dx > 0:
		if b.Max.X == w.graph.Max.X {
			return false
		}
		right := min(b.Max.X+dx, w.graph.Max.X)
		b.Min.X += right - b.Max.X
		b.Max.X = right
	default:
		return false
	}
	return true
}

// ScaleLeft drags the left edge by dx, stopping at the graph edge and at the minimum
// width, and reports whether it moved.
func (w *Window) ScaleLeft(dx float32) bool {
	b := &w.Bounds
	switch {
	case dx < 0:
		if b.Min.X == w.graph.Min.X {
			return false
		}
		b.Min.X = max(b.Min.X+dx, w.graph.Min.X)
	case dx > 0:
		limit := b.Max.X - w.minWidth
		if b.Min.X >= limit {
			return false
		}
		b.Min.X = min(b.Min.X+dx, limit)
	default:
		return false
	}
	return true
}

// ScaleRight drags the right edge by dx, stopping at the graph edge and at the
// minimum width, and reports whether it moved.
func (w *Window) ScaleRight(dx float32) bool {
	b := &w.Bounds
	switch {
	case dx > 0:
		if b.Max.X == w.graph.Max.X {
			return false
		}
		b.Max.X = min(b.Max.X+dx, w.graph.Max.X)
	case dx < 0:
		limit := b.Min.X + w.minWidth
		if b.Max.X <= limit {
			return false
		}
		b.Max.X = max(b.Max.X+dx, limit)
	default:
		return false
	}
	return true
}
