package visualizer

import (
	"image/color"
	"strconv"
	"time"

	"gioui.org/f32"
	"git.sr.ht/~whereswaldon/telechart/anim"
	"git.sr.ht/~whereswaldon/telechart/axis"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

// DateLayout formats x values, which are unix milliseconds, for labels.
const DateLayout = "Jan 2"

// ViewerOptions configures a Viewer. Zero fields take their defaults.
type ViewerOptions struct {
	// LineWidth defaults to 2.
	LineWidth float32
	// Duration is the length of Y bounds animations. Defaults to 300ms.
	Duration time.Duration
	// GridWidth defaults to 1.
	GridWidth float32
	// MarkerRadius is the radius of the dots on inspected samples. Defaults to 5.
	MarkerRadius float32

	GridColor   color.NRGBA
	MarkerColor color.NRGBA
}

func (o ViewerOptions) withDefaults() ViewerOptions {
	if o.LineWidth <= 0 {
		o.LineWidth = 2
	}
	if o.Duration <= 0 {
		o.Duration = 300 * time.Millisecond
	}
	if o.GridWidth <= 0 {
		o.GridWidth = 1
	}
	if o.MarkerRadius <= 0 {
		o.MarkerRadius = 5
	}
	if o.GridColor == (color.NRGBA{}) {
		o.GridColor = color.NRGBA{R: 0xe7, G: 0xe8, B: 0xe9, A: 0xff}
	}
	if o.MarkerColor == (color.NRGBA{}) {
		o.MarkerColor = color.NRGBA{R: 0xcf, G: 0xd7, B: 0xdd, A: 0xff}
	}
	return o
}

// Tick is a labelled position along an axis. Pos is a screen coordinate.
type Tick struct {
	Value int64
	Label string
	Pos   float32
}

// InspectedValue is the sample of one series at an inspected position.
type InspectedValue struct {
	ID    string
	Name  string
	Color color.NRGBA
	Value int64
	Pos   f32.Point
}

// Inspection describes the samples at one index of the selection.
type Inspection struct {
	Index  int
	X      int64
	Label  string
	Pos    float32
	Values []InspectedValue
}

// Viewer is the detail view of a selection. It rescales the selected segments into
// its own rectangle over a Y domain that always includes zero, animating changes of
// the selection's extrema.
type Viewer struct {
	opts ViewerOptions

	graph geom.Rect
	sized bool

	xMath, yMath   axis.Math
	xScale, yScale *axis.Scale

	sel *Selection
	// displayed is where the selection bounds are drawn right now.
	displayed geom.Rect
	animation anim.Animation
	segments  []geom.Polyline

	inspection Inspection
	inspecting bool

	scratch []f32.Point
}

func NewViewer(opts ViewerOptions) *Viewer {
	v := &Viewer{
		opts:   opts.withDefaults(),
		xScale: axis.RelativeScale(0.2),
		yScale: axis.RelativeScale(0.2),
	}
	v.animation.Duration = v.opts.Duration
	return v
}

// GraphBounds returns the rectangle the segments are drawn into.
func (v *Viewer) GraphBounds() geom.Rect { return v.graph }

// Selection returns the selection being displayed, if any.
func (v *Viewer) Selection() *Selection { return v.sel }

func (v *Viewer) Animating() bool { return v.animation.Running() }

// SetSize lays the viewer out in a width by height area, keeping labelSpace free at
// the bottom for the x labels.
func (v *Viewer) SetSize(width, height, labelSpace float32) {
	graph := geom.R(0, 0, width, height-labelSpace)
	if v.sized && graph == v.graph {
		return
	}
	v.graph = graph
	if graph.Empty() {
		v.sized = false
		return
	}
	v.sized = true
	v.xMath.SetSize(graph.Min.X, graph.Max.X)
	v.yMath.SetSize(graph.Min.Y, graph.Max.Y)
	v.xScale.SetAxisLength(graph.Dx())
	v.yScale.SetAxisLength(graph.Dy())
	v.animation.Cancel()
	v.configure(nil)
}

// OnSelectionChanged displays sel. It implements Consumer.
func (v *Viewer) OnSelectionChanged(sel *Selection) {
	prev := v.sel
	v.sel = sel
	v.inspecting = false
	v.configure(prev)
}

// configure adapts the axes to the selection and starts a bounds animation when its
// extrema differ from those of prev.
func (v *Viewer) configure(prev *Selection) {
	sel := v.sel
	if !v.sized || sel == nil || sel.Len() == 0 {
		return
	}
	n := sel.Len()
	low := min(0, sel.Low)
	top := max(sel.Top, low+1)
	v.yMath.SetValues(top, low, n)
	v.yScale.SetMinMax(top, low)
	if n >= 2 {
		v.xMath.SetValues(sel.X[n-1], sel.X[0], n)
		v.xScale.SetMinMax(sel.X[n-1], sel.X[0])
	}

	target := geom.R(
		v.graph.Min.X, v.yMath.ValueToPixel(sel.Low),
		v.graph.Max.X, v.yMath.ValueToPixel(sel.Top),
	)
	switch {
	case prev == nil:
		v.animation.Cancel()
		v.displayed = target
	case prev.Top != sel.Top || prev.Low != sel.Low:
		// Start from where the new bounds appear under the current mapping.
		from := sel.Bounds.Transform(geom.RectToRect(prev.Bounds, v.displayed))
		v.animation.Start(map[string]anim.Holder{
			holderTop:    {From: from.Min.Y, To: target.Min.Y},
			holderBottom: {From: from.Max.Y, To: target.Max.Y},
		})
		v.displayed = geom.R(target.Min.X, from.Min.Y, target.Max.X, from.Max.Y)
	case !v.animation.Running():
		v.displayed = target
	}
	v.remap()
}

// remap places the selected segments onto the displayed bounds.
func (v *Viewer) remap() {
	m := geom.RectToRect(v.sel.Bounds, v.displayed)
	v.segments = v.segments[:0]
	for _, seg := range v.sel.Segments {
		p := seg.Path.Clone()
		p.Transform(m)
		v.segments = append(v.segments, p)
	}
}

// Tick advances the bounds animation and reports whether further frames are needed.
func (v *Viewer) Tick(now time.Time) bool {
	if !v.animation.Running() {
		return false
	}
	finished := v.animation.Advance(now)
	v.displayed.Min.Y = v.animation.Value(holderTop)
	v.displayed.Max.Y = v.animation.Value(holderBottom)
	if v.sel != nil {
		v.remap()
	}
	return !finished
}

// valueMath maps values onto the displayed bounds.
func (v *Viewer) valueMath() axis.Math {
	if v.sel.Top == v.sel.Low {
		return v.yMath
	}
	var m axis.Math
	m.SetSize(v.displayed.Min.Y, v.displayed.Max.Y)
	m.SetValues(v.sel.Top, v.sel.Low, v.sel.Len())
	return m
}

// screenY flips an unflipped y coordinate so that larger values point up.
func (v *Viewer) screenY(y float32) float32 {
	return v.graph.Min.Y + v.graph.Max.Y - y
}

// positionOf returns the screen x of the selected sample i.
func (v *Viewer) positionOf(i int) float32 {
	m := geom.RectToRect(v.sel.Bounds, v.displayed)
	return m.Transform(f32.Pt(v.sel.Positions[i], 0)).X
}

func (v *Viewer) ready() bool {
	return v.sized && v.sel != nil && v.sel.Len() > 0
}

// YTicks returns the horizontal grid lines within the graph, bottom first.
func (v *Viewer) YTicks() []Tick {
	if !v.ready() {
		return nil
	}
	vm := v.valueMath()
	var ticks []Tick
	for i := 0; i < v.yScale.Count(); i++ {
		value := v.yScale.ValueAt(i)
		y := vm.ValueToPixel(value)
		if y < v.graph.Min.Y || y > v.graph.Max.Y {
			continue
		}
		ticks = append(ticks, Tick{
			Value: value,
			Label: strconv.FormatInt(value, 10),
			Pos:   v.screenY(y),
		})
	}
	return ticks
}

// XLabels returns date labels for samples spread evenly over the selection, always
// including the first and the last one.
func (v *Viewer) XLabels() []Tick {
	if !v.ready() {
		return nil
	}
	n := v.sel.Len()
	count := min(max(v.xScale.Count(), 2), n)
	if n == 1 {
		count = 1
	}
	labels := make([]Tick, 0, count)
	for i := 0; i < count; i++ {
		idx := 0
		if count > 1 {
			idx = (i*(n-1) + (count-1)/2) / (count - 1)
		}
		x := v.sel.X[idx]
		labels = append(labels, Tick{
			Value: x,
			Label: FormatDate(x),
			Pos:   v.positionOf(idx),
		})
	}
	return labels
}

// FormatDate formats unix milliseconds in UTC.
func FormatDate(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DateLayout)
}

// Inspect selects the sample nearest to the screen x coordinate and returns the
// values of the visible series there.
func (v *Viewer) Inspect(x float32) (Inspection, bool) {
	if !v.ready() || x < v.graph.Min.X || x > v.graph.Max.X {
		return Inspection{}, false
	}
	n := v.sel.Len()
	idx := 0
	if n >= 2 {
		idx = min(max(v.xMath.PixelToRoundPointPosition(x), 0), n-1)
	}
	vm := v.valueMath()
	pos := v.positionOf(idx)
	in := Inspection{
		Index: idx,
		X:     v.sel.X[idx],
		Label: FormatDate(v.sel.X[idx]),
		Pos:   pos,
	}
	for _, seg := range v.sel.Segments {
		if !seg.Visible {
			continue
		}
		value := seg.Values[idx]
		in.Values = append(in.Values, InspectedValue{
			ID:    seg.ID,
			Name:  seg.Name,
			Color: seg.Color,
			Value: value,
			Pos:   f32.Pt(pos, v.screenY(vm.ValueToPixel(value))),
		})
	}
	v.inspection = in
	v.inspecting = true
	return in, true
}

// Inspection returns the last inspection unless it was cleared since.
func (v *Viewer) Inspection() (Inspection, bool) {
	return v.inspection, v.inspecting
}

func (v *Viewer) ClearInspection() {
	v.inspecting = false
}

// Draw renders the grid, the inspection marker, the segments and the dots on the
// inspected samples. Labels are left to the caller.
func (v *Viewer) Draw(c Canvas) {
	if !v.ready() {
		return
	}
	g := v.graph
	hw := v.opts.GridWidth / 2
	for _, t := range v.YTicks() {
		c.FillRect(geom.R(g.Min.X, t.Pos-hw, g.Max.X, t.Pos+hw), v.opts.GridColor)
	}
	if v.inspecting {
		p := v.inspection.Pos
		c.FillRect(geom.R(p-hw, g.Min.Y, p+hw, g.Max.Y), v.opts.MarkerColor)
	}
	flip := geom.FlipY(g)
	for i, seg := range v.sel.Segments {
		if seg.Alpha == 0 {
			continue
		}
		v.scratch = flipInto(v.scratch, v.segments[i], flip)
		c.StrokePolyline(v.scratch, withAlpha(seg.Color, seg.Alpha), v.opts.LineWidth)
	}
	if v.inspecting {
		for _, iv := range v.inspection.Values {
			c.FillCircle(iv.Pos, v.opts.MarkerRadius, iv.Color)
		}
	}
}
