package visualizer

import (
	"image/color"
	"math"
	"time"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/anim"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

const holderTouch = "touch"

// OverviewOptions configures an Overview. Zero fields take their defaults.
type OverviewOptions struct {
	// TouchPadding widens the edge hit zones on both sides. Defaults to 8.
	TouchPadding float32
	// VerticalPadding separates the graph from the top and bottom of the strip.
	// Defaults to 4.
	VerticalPadding float32
	// MoveThreshold is the smallest horizontal drag acted upon. Defaults to 5.
	MoveThreshold float32
	// TouchDuration is how long the touch indicator takes to appear. Defaults to
	// 200ms.
	TouchDuration time.Duration

	ShadeColor color.NRGBA
	FrameColor color.NRGBA
	TouchColor color.NRGBA
}

func (o OverviewOptions) withDefaults() OverviewOptions {
	if o.TouchPadding <= 0 {
		o.TouchPadding = 8
	}
	if o.VerticalPadding <= 0 {
		o.VerticalPadding = 4
	}
	if o.MoveThreshold <= 0 {
		o.MoveThreshold = 5
	}
	if o.TouchDuration <= 0 {
		o.TouchDuration = 200 * time.Millisecond
	}
	if o.ShadeColor == (color.NRGBA{}) {
		o.ShadeColor = color.NRGBA{R: 0xf0, G: 0xf5, B: 0xf8, A: 0xc0}
	}
	if o.FrameColor == (color.NRGBA{}) {
		o.FrameColor = color.NRGBA{R: 0xc0, G: 0xd1, B: 0xe1, A: 0xff}
	}
	if o.TouchColor == (color.NRGBA{}) {
		o.TouchColor = color.NRGBA{R: 0xc0, G: 0xd1, B: 0xe1, A: 0x60}
	}
	return o
}

// Overview is the full-range strip: every line of the controller beneath a draggable
// selection window. Accepted drags make the controller emit a new selection.
type Overview struct {
	ctrl *Controller
	opts OverviewOptions

	win               Window
	width, height     float32
	padLeft, padRight float32
	sized             bool

	mode  DragMode
	prevX float32

	touch  anim.Animation
	touchX float32
	scale  float32
}

func NewOverview(ctrl *Controller, opts OverviewOptions) *Overview {
	o := &Overview{ctrl: ctrl, opts: opts.withDefaults()}
	o.touch.Duration = o.opts.TouchDuration
	return o
}

func (o *Overview) Controller() *Controller { return o.ctrl }

// Window returns a copy of the selection window.
func (o *Overview) Window() Window { return o.win }

func (o *Overview) Mode() DragMode { return o.mode }

// TouchScale returns the current size of the touch indicator in [0, 1].
func (o *Overview) TouchScale() float32 { return o.scale }

// SetSize lays out the strip and emits the selection for the resulting window.
func (o *Overview) SetSize(width, height, padLeft, padRight float32) {
	if o.sized && width == o.width && height == o.height && padLeft == o.padLeft && padRight == o.padRight {
		return
	}
	o.width, o.height = width, height
	o.padLeft, o.padRight = padLeft, padRight
	vp := o.opts.VerticalPadding
	border := max(1, (height-2*vp)*borderHeightFactor)
	o.ctrl.SetSize(width, height, Paddings{
		Left:   padLeft,
		Right:  padRight,
		Top:    vp,
		Bottom: vp,
		Lines:  float32(math.Round(float64(border + o.ctrl.opts.LineWidth/2))),
	})
	graph := o.ctrl.GraphBounds()
	if graph.Empty() {
		o.sized = false
		return
	}
	o.sized = true
	o.win.SetGraph(graph, o.opts.TouchPadding)
	o.ctrl.ComputeSelection(o.win.Left(), o.win.Right())
}

// Press starts a drag if (x, y) hits the window and reports whether it did.
func (o *Overview) Press(x, y float32) bool {
	if !o.sized {
		return false
	}
	o.mode = o.win.HitTest(f32.Pt(x, y))
	if o.mode == DragNone {
		return false
	}
	o.prevX = x
	o.touchX = x
	o.animateTouch(1)
	return true
}

// Move continues a drag and reports whether the window changed. Movements shorter
// than the move threshold are ignored and accumulate towards the next one.
func (o *Overview) Move(x, y float32) bool {
	if o.mode == DragNone {
		return false
	}
	dx := x - o.prevX
	if abs(dx) < o.opts.MoveThreshold {
		return false
	}
	var moved bool
	switch o.mode {
	case DragBody:
		moved = o.win.Move(dx)
	case DragLeft:
		moved = o.win.ScaleLeft(dx)
	case DragRight:
		moved = o.win.ScaleRight(dx)
	}
	if !moved {
		return false
	}
	o.prevX = x
	o.touchX = x
	o.ctrl.ComputeSelection(o.win.Left(), o.win.Right())
	return true
}

// Release ends a drag and reports whether one was in progress.
func (o *Overview) Release(x, y float32) bool {
	if o.mode == DragNone {
		return false
	}
	o.Cancel()
	return true
}

// Cancel ends a drag without a final position.
func (o *Overview) Cancel() {
	o.mode = DragNone
	o.animateTouch(0)
}

func (o *Overview) animateTouch(to float32) {
	o.touch.Start(map[string]anim.Holder{holderTouch: {From: o.scale, To: to}})
}

// Tick advances the controller and the touch indicator and reports whether further
// frames are needed.
func (o *Overview) Tick(now time.Time) bool {
	more := o.ctrl.Tick(now)
	if o.touch.Running() {
		finished := o.touch.Advance(now)
		o.scale = o.touch.Value(holderTouch)
		more = more || !finished
	}
	return more
}

// Draw renders the lines, the shading outside the window, the window frame and the
// touch indicator.
func (o *Overview) Draw(c Canvas) {
	if !o.sized {
		return
	}
	o.ctrl.Draw(c)
	g := o.ctrl.GraphBounds()
	b := o.win.Bounds
	if b.Min.X > g.Min.X {
		c.FillRect(geom.R(g.Min.X, g.Min.Y, b.Min.X, g.Max.Y), o.opts.ShadeColor)
	}
	if b.Max.X < g.Max.X {
		c.FillRect(geom.R(b.Max.X, g.Min.Y, g.Max.X, g.Max.Y), o.opts.ShadeColor)
	}
	bw, bh := o.win.BorderWidth(), o.win.BorderHeight()
	c.FillRect(geom.R(b.Min.X, b.Min.Y, b.Min.X+bw, b.Max.Y), o.opts.FrameColor)
	c.FillRect(geom.R(b.Max.X-bw, b.Min.Y, b.Max.X, b.Max.Y), o.opts.FrameColor)
	c.FillRect(geom.R(b.Min.X+bw, b.Min.Y, b.Max.X-bw, b.Min.Y+bh), o.opts.FrameColor)
	c.FillRect(geom.R(b.Min.X+bw, b.Max.Y-bh, b.Max.X-bw, b.Max.Y), o.opts.FrameColor)
	if o.scale > 0 {
		r := o.height / 2
		c.FillCircle(f32.Pt(o.touchX, r), r*o.scale, o.opts.TouchColor)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
