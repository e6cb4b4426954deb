package main

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"path/filepath"
	"strconv"

	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/telechart/backend"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

var openIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.FileFolderOpen)
	return icon
}()

var reloadIcon = func() *widget.Icon {
	icon, _ := widget.NewIcon(icons.NavigationRefresh)
	return icon
}()

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	ws         backend.WindowState
	expl       *explorer.Explorer
	invalidate func()

	th       *material.Theme
	sessions *stream.Stream[backend.Session]
	session  backend.Session

	// sessionID identifies the session the charts were built from.
	sessionID string
	charts    []*ChartView
	tab       widget.Enum

	openBtn   widget.Clickable
	reloadBtn widget.Clickable
	loading   bool
	results   chan error
	loadErr   string
}

func NewUI(ws backend.WindowState, expl *explorer.Explorer, invalidate func()) *UI {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	return &UI{
		ws:         ws,
		th:         th,
		expl:       expl,
		invalidate: invalidate,
		sessions:   stream.New(ws.Controller, ws.Bundle.Datasource.Sessions),
		results:    make(chan error, 1),
	}
}

// Update the state of the UI from events and newly loaded data.
func (ui *UI) Update(gtx C) {
	ui.sessions.ReadInto(gtx, &ui.session, backend.Session{})
	if ui.session.ID != ui.sessionID {
		ui.rebuild(gtx)
	}
	select {
	case err := <-ui.results:
		ui.loading = false
		if err != nil {
			ui.loadErr = err.Error()
		}
	default:
	}
	ui.tab.Update(gtx)
	if !ui.loading && ui.openBtn.Clicked(gtx) {
		ui.load(func() error {
			return ui.ws.Bundle.Datasource.LoadFromExplorer(ui.expl)
		})
	}
	if path := ui.session.Path; !ui.loading && filepath.IsAbs(path) && ui.reloadBtn.Clicked(gtx) {
		ui.load(func() error {
			_, err := ui.ws.Bundle.Datasource.LoadFile(path)
			return err
		})
	}
}

// load runs f off the UI goroutine and reports its result on the next frame.
func (ui *UI) load(f func() error) {
	ui.loading = true
	ui.loadErr = ""
	go func() {
		ui.results <- f()
		ui.invalidate()
	}()
}

// rebuild replaces the chart views with ones for the current session.
func (ui *UI) rebuild(gtx C) {
	ui.sessionID = ui.session.ID
	ui.charts = ui.charts[:0]
	ui.loadErr = ""
	if ui.session.Err != nil {
		ui.loadErr = ui.session.Err.Error()
	}
	for i, chart := range ui.session.Charts {
		view, err := NewChartView(gtx.Metric, chart)
		if err != nil {
			log.Printf("skipping chart %d of %q: %v", i, ui.session.Path, err)
			continue
		}
		ui.charts = append(ui.charts, view)
	}
	if idx, err := strconv.Atoi(ui.tab.Value); err != nil || idx >= len(ui.charts) {
		ui.tab.Value = "0"
	}
}

type TabStyle struct {
	state  *widget.Enum
	label  material.LabelStyle
	border widget.Border
	inset  layout.Inset
	value  string
	fill   color.NRGBA
}

func Tab(th *material.Theme, state *widget.Enum, value, display string) TabStyle {
	selected := state.Value == value
	ts := TabStyle{
		state: state,
		label: material.Body1(th, display),
		inset: layout.UniformInset(2),
		border: widget.Border{
			Width: 2,
			Color: th.ContrastBg,
		},
		value: value,
	}
	ts.label.Alignment = text.Middle
	if selected {
		ts.label.Color = th.ContrastFg
		ts.fill = th.ContrastBg
	}
	return ts
}

func (t TabStyle) Layout(gtx C) D {
	return t.inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return t.border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return t.inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return t.state.Layout(gtx, t.value, func(gtx layout.Context) layout.Dimensions {
					return layout.Background{}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						paint.FillShape(gtx.Ops, t.fill, clip.Rect{Max: gtx.Constraints.Min}.Op())
						return D{Size: gtx.Constraints.Min}
					}, t.label.Layout)
				})
			})
		})
	})
}

func (ui *UI) iconButton(gtx C, btn *widget.Clickable, icon *widget.Icon, description string) D {
	if ui.loading {
		gtx = gtx.Disabled()
	}
	b := material.IconButton(ui.th, btn, icon, description)
	b.Size = 20
	b.Inset = layout.UniformInset(6)
	return b.Layout(gtx)
}

func (ui *UI) layoutToolbar(gtx C) D {
	return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return ui.iconButton(gtx, &ui.openBtn, openIcon, "Open chart file")
		}),
		layout.Rigid(func(gtx C) D {
			if !filepath.IsAbs(ui.session.Path) {
				return D{}
			}
			return layout.Inset{Left: 4}.Layout(gtx, func(gtx C) D {
				return ui.iconButton(gtx, &ui.reloadBtn, reloadIcon, "Reload chart file")
			})
		}),
		layout.Flexed(1, func(gtx C) D {
			return layout.Inset{Left: 8}.Layout(gtx, func(gtx C) D {
				l := material.Body2(ui.th, ui.session.Path)
				l.MaxLines = 1
				return l.Layout(gtx)
			})
		}),
	)
}

func (ui *UI) layoutError(gtx C) D {
	if len(ui.loadErr) == 0 {
		return D{}
	}
	l := material.Body1(ui.th, ui.loadErr)
	l.Color = color.NRGBA{R: 150, A: 255}
	return l.Layout(gtx)
}

func (ui *UI) layoutMainArea(gtx C) D {
	idx, _ := strconv.Atoi(ui.tab.Value)
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(ui.layoutToolbar),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			tabs := make([]layout.FlexChild, 0, len(ui.charts))
			for i := range ui.charts {
				tabs = append(tabs, layout.Flexed(1, Tab(ui.th, &ui.tab, strconv.Itoa(i), fmt.Sprintf("Chart %d", i+1)).Layout))
			}
			return layout.Flex{}.Layout(gtx, tabs...)
		}),
		layout.Rigid(ui.layoutError),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(8).Layout(gtx, func(gtx C) D {
				return ui.charts[idx].Layout(gtx, ui.th)
			})
		}),
	)
}

func (ui *UI) layoutStartScreen(gtx C) D {
	msg := "No chart data yet."
	if ui.session.ID != "" {
		msg = "No valid charts in " + ui.session.Path + "."
	}
	l := material.Body1(ui.th, msg)
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
		Spacing:   layout.SpaceAround,
	}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = image.Point{}
			return l.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			if ui.loading {
				gtx = gtx.Disabled()
			}
			return material.Button(ui.th, &ui.openBtn, "Open Chart File").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Min = image.Point{}
			return ui.layoutError(gtx)
		}),
	)
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	if len(ui.charts) > 0 {
		return ui.layoutMainArea(gtx)
	}
	return ui.layoutStartScreen(gtx)
}
