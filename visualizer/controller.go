package visualizer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/anim"
	"git.sr.ht/~whereswaldon/telechart/axis"
	"git.sr.ht/~whereswaldon/telechart/backend"
	"git.sr.ht/~whereswaldon/telechart/extrema"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

// ErrInvalidChart is returned by NewController for charts that cannot be displayed.
var ErrInvalidChart = errors.New("invalid chart")

const (
	holderAlphaPrefix = "line_alpha_"
	holderTop         = "top"
	holderBottom      = "bottom"
)

// Options configures a Controller.
type Options struct {
	// LineWidth is the stroke width of the lines. Defaults to 2.
	LineWidth float32
	// Duration is the length of visibility transitions. Defaults to one second.
	Duration time.Duration
}

func (o Options) withDefaults() Options {
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	if o.Duration <= 0 {
		o.Duration = time.Second
	}
	return o
}

// Paddings describe the space around the graph rectangle. Lines are additionally
// inset vertically by the Lines padding so that strokes never touch the graph edges.
type Paddings struct {
	Left, Right, Top, Bottom float32
	Lines                    float32
}

// Consumer receives selection snapshots.
type Consumer interface {
	OnSelectionChanged(*Selection)
}

// ConsumerFunc adapts a function to the Consumer interface.
type ConsumerFunc func(*Selection)

func (f ConsumerFunc) OnSelectionChanged(s *Selection) { f(s) }

// Controller owns the pixel geometry of every series of a chart in the overview
// strip. It animates visibility changes by fading the toggled lines and warping the
// remaining ones onto the new Y domain, and slices the geometry for a selected pixel
// range.
type Controller struct {
	chart backend.Chart
	opts  Options

	lines map[string]*Line
	order []string

	tracker      extrema.Tracker
	xMath, yMath axis.Math

	graph      geom.Rect
	linesInset float32
	sized      bool
	// expected is where lines belong at rest, current is where the geometry of the
	// attached lines sits right now.
	expected, current geom.Rect
	// baseTop and baseLow are the domain the attached lines were last laid out for.
	baseTop, baseLow int64

	animation anim.Animation

	consumer          Consumer
	selLeft, selRight float32
	hasSelection      bool

	scratch []f32.Point
}

// NewController validates chart and prepares a controller for it with every series
// visible. The chart must have at least one series and two samples, series of equal
// length with unique ids, strictly increasing x values and a Y domain that is not a
// single value.
func NewController(chart backend.Chart, opts Options) (*Controller, error) {
	if err := validate(chart); err != nil {
		return nil, err
	}
	c := &Controller{
		chart: chart,
		opts:  opts.withDefaults(),
		lines: make(map[string]*Line, len(chart.Series)),
	}
	c.animation.Duration = c.opts.Duration
	for _, s := range chart.Series {
		c.lines[s.ID] = &Line{series: s, alpha: 255, visible: true}
		c.order = append(c.order, s.ID)
		c.tracker.Add(s.Top, s.Low)
	}
	if c.tracker.Top() == c.tracker.Low() {
		return nil, fmt.Errorf("%w: every sample equals %d", ErrInvalidChart, c.tracker.Top())
	}
	n := chart.Len()
	c.xMath.SetValues(chart.X.Top, chart.X.Low, n)
	c.yMath.SetValues(c.tracker.Top(), c.tracker.Low(), n)
	c.baseTop, c.baseLow = c.tracker.Top(), c.tracker.Low()
	return c, nil
}

func validate(chart backend.Chart) error {
	n := chart.Len()
	switch {
	case len(chart.Series) == 0:
		return fmt.Errorf("%w: no series", ErrInvalidChart)
	case n < 2:
		return fmt.Errorf("%w: %d samples, need at least 2", ErrInvalidChart, n)
	}
	for i := 1; i < n; i++ {
		if chart.X.Values[i] <= chart.X.Values[i-1] {
			return fmt.Errorf("%w: x values not increasing at index %d", ErrInvalidChart, i)
		}
	}
	seen := make(map[string]bool, len(chart.Series))
	for _, s := range chart.Series {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate series %q", ErrInvalidChart, s.ID)
		}
		seen[s.ID] = true
		if len(s.Samples) != n {
			return fmt.Errorf("%w: series %q has %d samples, x has %d", ErrInvalidChart, s.ID, len(s.Samples), n)
		}
	}
	return nil
}

// SetConsumer registers the receiver of selection snapshots. Passing nil disables
// emission.
func (c *Controller) SetConsumer(consumer Consumer) {
	c.consumer = consumer
}

// Chart returns the chart being displayed.
func (c *Controller) Chart() backend.Chart { return c.chart }

// Options returns the effective options.
func (c *Controller) Options() Options { return c.opts }

// GraphBounds returns the graph rectangle established by the last SetSize.
func (c *Controller) GraphBounds() geom.Rect { return c.graph }

// LinesBounds returns where the geometry of the lines that are not fading currently
// sits. It equals the graph inset by the lines padding whenever no animation runs.
func (c *Controller) LinesBounds() geom.Rect { return c.current }

// Domain returns the Y range of the visible series.
func (c *Controller) Domain() (top, low int64) {
	return c.tracker.Top(), c.tracker.Low()
}

// Lines returns the lines in chart order.
func (c *Controller) Lines() []*Line {
	out := make([]*Line, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.lines[id])
	}
	return out
}

// Line returns the line of the series with the given id.
func (c *Controller) Line(id string) (*Line, bool) {
	l, ok := c.lines[id]
	return l, ok
}

// Visible reports whether the series is shown or fading in. Unknown ids are never
// visible.
func (c *Controller) Visible(id string) bool {
	l, ok := c.lines[id]
	return ok && l.visible
}

// Animating reports whether a visibility transition is in progress.
func (c *Controller) Animating() bool {
	return c.animation.Running()
}

// SetSize lays out the lines inside a width by height area. Calls that do not change
// the resulting rectangle are ignored. A resize during a transition completes it
// immediately.
func (c *Controller) SetSize(width, height float32, p Paddings) {
	graph := geom.R(p.Left, p.Top, width-p.Right, height-p.Bottom)
	if c.sized && graph == c.graph && p.Lines == c.linesInset {
		return
	}
	c.graph = graph
	c.linesInset = p.Lines
	if graph.Empty() {
		c.sized = false
		return
	}
	if c.animation.Running() {
		c.animation.Finish()
	}
	c.expected = graph.Inset(0, p.Lines)
	c.xMath.SetSize(c.expected.Min.X, c.expected.Max.X)
	c.yMath.SetSize(c.expected.Min.Y, c.expected.Max.Y)
	c.sized = true
	c.settle()
}

// settle ends every transition and lays all lines out canonically for the current
// domain.
func (c *Controller) settle() {
	for _, l := range c.lines {
		l.transition = transitionNone
		l.alpha = l.targetAlpha()
		c.layout(l)
	}
	c.current = c.expected
	c.baseTop, c.baseLow = c.yMath.Top(), c.yMath.Low()
}

// layout rebuilds the geometry of l from its samples: one point per sample, spaced
// evenly over the lines rectangle.
func (c *Controller) layout(l *Line) {
	samples := l.series.Samples
	ppp := c.xMath.PixelsPerPoint()
	pts := make([]f32.Point, len(samples))
	for i, v := range samples {
		pts[i] = f32.Pt(c.xMath.Start()+ppp*float32(i), c.yMath.ValueToPixel(v))
	}
	l.path = geom.NewPolyline(pts)
	l.space = valueSpace{rect: c.expected, top: c.yMath.Top(), low: c.yMath.Low()}
}

// SetLineVisible starts showing or hiding the series with the given id and reports
// whether a transition was started. It refuses unknown ids, lines already heading to
// the requested state, and hiding the last visible line or any change that would
// leave the visible series spanning a single value.
func (c *Controller) SetLineVisible(id string, visible bool) bool {
	l, ok := c.lines[id]
	if !ok || l.visible == visible {
		return false
	}
	s := l.series
	if visible {
		c.tracker.Add(s.Top, s.Low)
	} else {
		c.tracker.Remove(s.Top, s.Low)
		if c.tracker.Empty() {
			c.tracker.Add(s.Top, s.Low)
			log.Printf("visualizer: refusing to hide %q, it is the last visible line", id)
			return false
		}
	}
	top, low := c.tracker.Top(), c.tracker.Low()
	if top == low {
		if visible {
			c.tracker.Remove(s.Top, s.Low)
		} else {
			c.tracker.Add(s.Top, s.Low)
		}
		log.Printf("visualizer: refusing to toggle %q, visible lines would span only %d", id, top)
		return false
	}
	l.visible = visible
	if visible {
		l.transition = transitionShow
	} else {
		l.transition = transitionHide
	}
	c.yMath.SetValues(top, low, c.chart.Len())

	if !c.sized {
		c.settle()
		return true
	}
	c.restart()
	c.emit()
	return true
}

// restart (re)starts the visibility animation from the present state towards the
// current domain.
func (c *Controller) restart() {
	holders := make(map[string]anim.Holder)
	for _, id := range c.order {
		l := c.lines[id]
		switch l.transition {
		case transitionShow:
			// A line fading in is placed where it ends up.
			c.layout(l)
		case transitionNone:
			continue
		}
		holders[holderAlphaPrefix+id] = anim.Holder{From: float32(l.alpha), To: float32(l.targetAlpha())}
	}
	// The attached lines represent the base domain; find where it lies under the new
	// mapping.
	target := geom.R(
		c.expected.Min.X, c.yMath.ValueToPixel(c.baseLow),
		c.expected.Max.X, c.yMath.ValueToPixel(c.baseTop),
	)
	if target != c.current {
		holders[holderTop] = anim.Holder{From: c.current.Min.Y, To: target.Min.Y}
		holders[holderBottom] = anim.Holder{From: c.current.Max.Y, To: target.Max.Y}
	}
	c.animation.Cancel()
	c.animation.Start(holders)
}

// attached reports whether l follows the bounds animation.
func attached(l *Line) bool {
	return l.visible && l.transition == transitionNone
}

// Tick advances the visibility animation to now and reports whether further frames
// are needed. Every tick of a running animation emits a selection.
func (c *Controller) Tick(now time.Time) bool {
	if !c.animation.Running() {
		return false
	}
	finished := c.animation.Advance(now)
	for _, id := range c.order {
		l := c.lines[id]
		if l.transition == transitionNone {
			continue
		}
		a := c.animation.Value(holderAlphaPrefix + id)
		l.alpha = uint8(math.Round(float64(min(max(a, 0), 255))))
	}
	if c.animation.Has(holderTop) {
		next := geom.R(
			c.expected.Min.X, c.animation.Value(holderTop),
			c.expected.Max.X, c.animation.Value(holderBottom),
		)
		m := geom.RectToRect(c.current, next)
		for _, l := range c.lines {
			if !attached(l) {
				continue
			}
			l.path.Transform(m)
			l.space = valueSpace{rect: next, top: c.baseTop, low: c.baseLow}
		}
		c.current = next
	}
	if finished {
		c.settle()
	}
	c.emit()
	return !finished
}

// ComputeSelection records the selected pixel range and emits the selection for it
// to the consumer, if any.
func (c *Controller) ComputeSelection(left, right float32) {
	c.selLeft, c.selRight = left, right
	c.hasSelection = true
	c.emit()
}

func (c *Controller) emit() {
	if c.consumer == nil || !c.hasSelection || !c.sized {
		return
	}
	c.consumer.OnSelectionChanged(c.Select(c.selLeft, c.selRight))
}

// Select builds the selection snapshot for the pixel range [left, right] without
// recording or emitting it. The range is clamped to the graph. Will panic if the
// controller has not been sized.
func (c *Controller) Select(left, right float32) *Selection {
	if !c.sized {
		panic("visualizer: selecting on an unsized controller")
	}
	left = max(left, c.graph.Min.X)
	right = max(min(right, c.graph.Max.X), left)
	fromStart := left == c.graph.Min.X
	toEnd := right == c.graph.Max.X
	full := fromStart && toEnd

	n := c.chart.Len()
	start, end := 0, n-1
	if !full {
		start = min(max(c.xMath.PixelToRoundPointPosition(left), 0), n-1)
		end = min(max(c.xMath.PixelToRoundPointPosition(right), start), n-1)
	}
	sel := &Selection{
		X:     slices.Clone(c.chart.X.Values[start : end+1]),
		Start: start,
		End:   end,
		Full:  full,
	}
	ppp := c.xMath.PixelsPerPoint()
	for i := start; i <= end; i++ {
		sel.Positions = append(sel.Positions, c.xMath.Start()+ppp*float32(i))
	}

	top, low := int64(math.MinInt64), int64(math.MaxInt64)
	found := false
	for _, id := range c.order {
		l := c.lines[id]
		if !l.drawn() {
			continue
		}
		seg := Segment{
			ID:      id,
			Name:    l.series.Name,
			Color:   l.series.Color,
			Alpha:   l.alpha,
			Visible: l.visible,
			Values:  slices.Clone(l.series.Samples[start : end+1]),
		}
		if full {
			seg.Path = l.path.Clone()
		} else {
			seg.Path = c.slice(l.path, left, right, fromStart, toEnd)
			if l.visible && seg.Path.Len() > 0 {
				// Larger values sit lower in the unflipped geometry.
				b := seg.Path.Bounds()
				top = max(top, l.space.valueAt(b.Max.Y))
				low = min(low, l.space.valueAt(b.Min.Y))
				found = true
			}
		}
		sel.Segments = append(sel.Segments, seg)
	}
	if full || !found {
		top, low = c.tracker.Top(), c.tracker.Low()
	}
	sel.Top, sel.Low = top, low
	sel.Bounds = geom.R(left, c.yMath.ValueToPixel(low), right, c.yMath.ValueToPixel(top))
	return sel
}

// slice extracts the part of p within [left, right] by walking its arc length from
// both ends in steps of length/graph width. The cut points therefore land within one
// step of the requested pixels.
func (c *Controller) slice(p geom.Polyline, left, right float32, fromStart, toEnd bool) geom.Polyline {
	total := p.Length()
	step := total / c.graph.Dx()
	if step <= 0 || total <= 0 {
		return p.Clone()
	}
	startD, endD := float32(0), total
	foundStart, foundEnd := fromStart, toEnd
	for d := float32(0); d < total && !(foundStart && foundEnd); d += step {
		if !foundStart {
			if pos, _ := p.PosTan(d); pos.X >= left {
				startD = d
				foundStart = true
			}
		}
		if !foundEnd {
			if pos, _ := p.PosTan(total - d); pos.X <= right {
				endD = total - d
				foundEnd = true
			}
		}
	}
	return p.Segment(startD, endD)
}

// Draw strokes every line that is not fully transparent, flipped so that larger
// values point up.
func (c *Controller) Draw(canvas Canvas) {
	if !c.sized {
		return
	}
	flip := geom.FlipY(c.expected)
	for _, id := range c.order {
		l := c.lines[id]
		if l.alpha == 0 {
			continue
		}
		c.scratch = flipInto(c.scratch, l.path, flip)
		canvas.StrokePolyline(c.scratch, withAlpha(l.series.Color, l.alpha), c.opts.LineWidth)
	}
}
