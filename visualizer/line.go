package visualizer

import (
	"git.sr.ht/~whereswaldon/telechart/axis"
	"git.sr.ht/~whereswaldon/telechart/backend"
	"git.sr.ht/~whereswaldon/telechart/geom"
)

type transition uint8

const (
	transitionNone transition = iota
	transitionShow
	transitionHide
)

// valueSpace records which value range a line's pixel geometry currently represents:
// low maps onto rect.Min.Y and top onto rect.Max.Y.
type valueSpace struct {
	rect     geom.Rect
	top, low int64
}

// valueAt converts a pixel y coordinate of the geometry back into a value.
func (s valueSpace) valueAt(y float32) int64 {
	var m axis.Math
	m.SetSize(s.rect.Min.Y, s.rect.Max.Y)
	m.SetValues(s.top, s.low, 0)
	return m.PixelToValue(y)
}

// Line is the pixel geometry of one series in the overview strip. Lines are owned by
// their Controller and change whenever it lays out or animates.
type Line struct {
	series     backend.Series
	path       geom.Polyline
	space      valueSpace
	alpha      uint8
	visible    bool
	transition transition
}

func (l *Line) ID() string { return l.series.ID }

func (l *Line) Series() backend.Series { return l.series }

// Path returns the unflipped geometry: larger values have larger y coordinates.
func (l *Line) Path() geom.Polyline { return l.path }

func (l *Line) Alpha() uint8 { return l.alpha }

// Visible reports whether the line is shown or fading in.
func (l *Line) Visible() bool { return l.visible }

// Transitioning reports whether the line is fading in or out.
func (l *Line) Transitioning() bool { return l.transition != transitionNone }

// drawn reports whether the line contributes anything to the picture.
func (l *Line) drawn() bool {
	return l.visible || l.alpha > 0
}

func (l *Line) targetAlpha() uint8 {
	if l.visible {
		return 255
	}
	return 0
}
