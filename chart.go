package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"git.sr.ht/~whereswaldon/telechart/backend"
	"git.sr.ht/~whereswaldon/telechart/geom"
	"git.sr.ht/~whereswaldon/telechart/visualizer"
	"golang.org/x/exp/constraints"
)

const overviewHeight = unit.Dp(48)

// ChartView shows one chart: the detail viewer above the overview strip and a legend
// whose swatches toggle series.
type ChartView struct {
	chart    backend.Chart
	ctrl     *visualizer.Controller
	overview *visualizer.Overview
	viewer   *visualizer.Viewer
	Enabled  []*widget.Bool
	keyTable component.GridState

	// overviewTag and viewerTag are the pointer event targets of the two graphs.
	overviewTag, viewerTag bool
	canvas                 gioCanvas
}

// NewChartView prepares the visualization of chart, sizing strokes for metric.
func NewChartView(metric unit.Metric, chart backend.Chart) (*ChartView, error) {
	chart = withPalette(chart)
	lineWidth := float32(metric.Dp(2))
	ctrl, err := visualizer.NewController(chart, visualizer.Options{LineWidth: lineWidth})
	if err != nil {
		return nil, fmt.Errorf("failed preparing chart: %w", err)
	}
	c := &ChartView{
		chart: chart,
		ctrl:  ctrl,
		overview: visualizer.NewOverview(ctrl, visualizer.OverviewOptions{
			TouchPadding:    float32(metric.Dp(8)),
			VerticalPadding: float32(metric.Dp(4)),
		}),
		viewer: visualizer.NewViewer(visualizer.ViewerOptions{
			LineWidth:    lineWidth,
			GridWidth:    float32(metric.Dp(1)),
			MarkerRadius: float32(metric.Dp(4)),
		}),
	}
	ctrl.SetConsumer(c.viewer)
	for range chart.Series {
		c.Enabled = append(c.Enabled, &widget.Bool{Value: true})
	}
	return c, nil
}

func (c *ChartView) Update(gtx C) {
	for i, enabled := range c.Enabled {
		if !enabled.Update(gtx) {
			continue
		}
		id := c.chart.Series[i].ID
		if !c.ctrl.SetLineVisible(id, enabled.Value) {
			enabled.Value = c.ctrl.Visible(id)
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &c.overviewTag,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Press:
			c.overview.Press(e.Position.X, e.Position.Y)
		case pointer.Drag:
			c.overview.Move(e.Position.X, e.Position.Y)
		case pointer.Release:
			c.overview.Release(e.Position.X, e.Position.Y)
		case pointer.Cancel:
			c.overview.Cancel()
		}
	}
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &c.viewerTag,
			Kinds:  pointer.Enter | pointer.Leave | pointer.Move | pointer.Press | pointer.Drag | pointer.Cancel,
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch e.Kind {
		case pointer.Leave, pointer.Cancel:
			c.viewer.ClearInspection()
		default:
			c.viewer.Inspect(e.Position.X)
		}
	}
	// Both must advance every frame.
	moreOverview := c.overview.Tick(gtx.Now)
	moreViewer := c.viewer.Tick(gtx.Now)
	if moreOverview || moreViewer {
		gtx.Execute(op.InvalidateCmd{})
	}
}

func rec(gtx C, w layout.Widget) (D, op.CallOp) {
	macro := op.Record(gtx.Ops)
	dims := w(gtx)
	call := macro.Stop()
	return dims, call
}

func (c *ChartView) Layout(gtx C, th *material.Theme) D {
	c.Update(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			return c.layoutViewer(gtx, th)
		}),
		layout.Rigid(layout.Spacer{Height: 8}.Layout),
		layout.Rigid(c.layoutOverview),
		layout.Rigid(layout.Spacer{Height: 8}.Layout),
		layout.Rigid(func(gtx C) D {
			return c.layoutControls(gtx, th)
		}),
	)
}

func (c *ChartView) layoutOverview(gtx C) D {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(overviewHeight))
	c.overview.SetSize(float32(size.X), float32(size.Y), 0, 0)
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, &c.overviewTag)
	c.canvas.ops = gtx.Ops
	c.overview.Draw(c.canvas)
	return D{Size: size}
}

func (c *ChartView) layoutViewer(gtx C, th *material.Theme) D {
	size := gtx.Constraints.Max
	gtx.Constraints.Min = image.Point{}
	label := material.Caption(th, "Jan 10")
	label.Color.A = 150
	labelDims, _ := rec(gtx, label.Layout)
	labelSpace := labelDims.Size.Y
	c.viewer.SetSize(float32(size.X), float32(size.Y), float32(labelSpace))

	graphSize := image.Pt(size.X, size.Y-labelSpace)
	area := clip.Rect{Max: graphSize}.Push(gtx.Ops)
	event.Op(gtx.Ops, &c.viewerTag)
	c.canvas.ops = gtx.Ops
	c.viewer.Draw(c.canvas)
	area.Pop()

	for _, tick := range c.viewer.YTicks() {
		label.Text = tick.Label
		dims, call := rec(gtx, label.Layout)
		stack := op.Offset(image.Pt(gtx.Dp(2), int(floor(tick.Pos))-dims.Size.Y)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
	for _, tick := range c.viewer.XLabels() {
		label.Text = tick.Label
		dims, call := rec(gtx, label.Layout)
		x := clamp(int(tick.Pos)-dims.Size.X/2, 0, max(size.X-dims.Size.X, 0))
		stack := op.Offset(image.Pt(x, graphSize.Y)).Push(gtx.Ops)
		call.Add(gtx.Ops)
		stack.Pop()
	}
	if in, ok := c.viewer.Inspection(); ok {
		c.layoutInspection(gtx, th, in, graphSize)
	}
	return D{Size: size}
}

// layoutInspection draws the values under the inspection marker, largest first, on
// whichever side of the marker has more room.
func (c *ChartView) layoutInspection(gtx C, th *material.Theme, in visualizer.Inspection, graphSize image.Point) {
	children := []layout.FlexChild{
		layout.Rigid(material.Body2(th, in.Label).Layout),
	}
	values := []int64{}
	for _, iv := range in.Values {
		iv := iv
		insertIdx, _ := slices.BinarySearch(values, iv.Value)
		values = slices.Insert(values, insertIdx, iv.Value)
		children = slices.Insert(children, len(children)-insertIdx, layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(material.Body2(th, strconv.FormatInt(iv.Value, 10)+" "+iv.Name).Layout),
				layout.Rigid(layout.Spacer{Width: 8}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					size := image.Pt(gtx.Dp(8), gtx.Dp(8))
					paint.FillShape(gtx.Ops, iv.Color, clip.Ellipse{Max: size}.Op(gtx.Ops))
					return D{Size: size}
				}),
			)
		}))
	}
	gtx.Constraints.Min = image.Point{}
	infoDims, infoCall := rec(gtx, func(gtx C) D {
		return layout.Background{}.Layout(gtx,
			func(gtx layout.Context) layout.Dimensions {
				paint.FillShape(gtx.Ops, color.NRGBA{R: 255, G: 255, B: 255, A: 200}, clip.Rect{Max: gtx.Constraints.Min}.Op())
				return D{Size: gtx.Constraints.Min}
			},
			func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(10).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{
						Axis:      layout.Vertical,
						Alignment: layout.End,
					}.Layout(gtx, children...)
				})
			},
		)
	})
	gap := gtx.Dp(8)
	x := int(in.Pos)
	pos := image.Point{}
	if x > graphSize.X-x {
		pos.X = max(x-gap-infoDims.Size.X, 0)
	} else {
		pos.X = min(x+gap, graphSize.X-infoDims.Size.X)
	}
	defer op.Offset(pos).Push(gtx.Ops).Pop()
	infoCall.Add(gtx.Ops)
}

func (c *ChartView) layoutControls(gtx C, th *material.Theme) D {
	table := component.Table(th, &c.keyTable)
	table.HScrollbarStyle.Indicator.MinorWidth = 0
	table.HScrollbarStyle.Track.MinorPadding = 0
	table.VScrollbarStyle.Indicator.MinorWidth = 0
	table.VScrollbarStyle.Track.MinorPadding = 0
	colorColWidth := gtx.Dp(50)
	valueColWidth := gtx.Dp(100)
	nameColWidth := gtx.Constraints.Max.X - colorColWidth - 2*valueColWidth - gtx.Dp(table.VScrollbarStyle.Width())
	rowHeight := gtx.Sp(20)
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, rowHeight*(len(c.chart.Series)+1)+gtx.Dp(4))
	const (
		colorCol = iota
		seriesNameCol
		lowCol
		topCol
		numCols
	)
	return table.Layout(gtx, len(c.chart.Series), numCols,
		func(axis layout.Axis, index, constraint int) int {
			if axis == layout.Vertical {
				return min(constraint, rowHeight)
			}

			var size int
			switch index {
			case colorCol:
				size = colorColWidth
			case seriesNameCol:
				size = nameColWidth
			case lowCol, topCol:
				size = valueColWidth
			}
			return min(size, constraint)
		},
		func(gtx layout.Context, index int) layout.Dimensions {
			var l material.LabelStyle
			switch index {
			case colorCol:
				l = material.Body1(th, "Shown")
			case seriesNameCol:
				l = material.Body1(th, "Series")
				l.Alignment = text.Middle
			case lowCol:
				l = material.Body1(th, "Lowest")
				l.Alignment = text.End
			case topCol:
				l = material.Body1(th, "Highest")
				l.Alignment = text.End
			default:
				l = material.Body1(th, "???")
			}
			l.Color = th.ContrastFg
			return layout.Background{}.Layout(gtx,
				func(gtx layout.Context) layout.Dimensions {
					paint.FillShape(gtx.Ops, th.ContrastBg, clip.Rect{Max: gtx.Constraints.Max}.Op())
					return D{Size: gtx.Constraints.Min}
				}, func(gtx layout.Context) layout.Dimensions {
					return l.Layout(gtx)
				},
			)
		},
		func(gtx layout.Context, row, col int) (dims layout.Dimensions) {
			defer func() {
				dims.Size = gtx.Constraints.Constrain(dims.Size)
			}()
			series := c.chart.Series[row]
			dims = layout.UniformInset(2).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				enabled := c.ctrl.Visible(series.ID)
				disabledAlpha := uint8(100)
				switch col {
				case colorCol:
					return c.Enabled[row].Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
							sideLen := gtx.Dp(10)
							sz := image.Pt(sideLen, sideLen)
							fullColor := series.Color
							if !enabled {
								fullColor.A = disabledAlpha
							}
							paint.FillShape(gtx.Ops, fullColor, clip.Rect{Max: sz}.Op())
							return D{Size: sz}
						})
					})
				case seriesNameCol:
					l := material.Body2(th, series.Name)
					if !enabled {
						l.Color.A = disabledAlpha
					}
					return l.Layout(gtx)
				case lowCol, topCol:
					v := series.Low
					if col == topCol {
						v = series.Top
					}
					l := material.Body2(th, strconv.FormatInt(v, 10))
					if !enabled {
						l.Color.A = disabledAlpha
					}
					l.Alignment = text.End
					return l.Layout(gtx)
				default:
					return D{Size: gtx.Constraints.Max}
				}
			})
			if row&1 != 0 {
				col := series.Color
				col.A = 50
				paint.FillShape(gtx.Ops, col, clip.Rect{Max: gtx.Constraints.Max}.Op())
			}
			return dims
		})
}

// gioCanvas renders chart primitives into a gio operation list.
type gioCanvas struct {
	ops *op.Ops
}

func (g gioCanvas) StrokePolyline(pts []f32.Point, c color.NRGBA, width float32) {
	if len(pts) < 2 {
		return
	}
	var p clip.Path
	p.Begin(g.ops)
	p.MoveTo(pts[0])
	for _, pt := range pts[1:] {
		p.LineTo(pt)
	}
	paint.FillShape(g.ops, c, clip.Stroke{Path: p.End(), Width: width}.Op())
}

func (g gioCanvas) FillRect(r geom.Rect, c color.NRGBA) {
	paint.FillShape(g.ops, c, clip.Rect{
		Min: image.Pt(int(floor(r.Min.X)), int(floor(r.Min.Y))),
		Max: image.Pt(int(ceil(r.Max.X)), int(ceil(r.Max.Y))),
	}.Op())
}

func (g gioCanvas) FillCircle(center f32.Point, radius float32, c color.NRGBA) {
	paint.FillShape(g.ops, c, clip.Ellipse{
		Min: image.Pt(int(floor(center.X-radius)), int(floor(center.Y-radius))),
		Max: image.Pt(int(ceil(center.X+radius)), int(ceil(center.Y+radius))),
	}.Op(g.ops))
}

func ceil[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Ceil(float64(a)))
}

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
