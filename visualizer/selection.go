package visualizer

import (
	"image/color"

	"git.sr.ht/~whereswaldon/telechart/geom"
)

// Segment is the selected part of one line.
type Segment struct {
	ID   string
	Name string
	// Color is the series color; Alpha is the line's current opacity on top of it.
	Color   color.NRGBA
	Alpha   uint8
	Visible bool
	// Path is in the unflipped pixel space of the overview.
	Path geom.Polyline
	// Values holds the samples of the selected index range.
	Values []int64
}

// Selection is an immutable snapshot of the selected window. All slices are owned by
// the selection.
type Selection struct {
	Segments []Segment
	// X holds the x values of the selected index range [Start, End].
	X          []int64
	Start, End int
	// Positions holds the overview x pixel of each selected sample.
	Positions []float32
	// Top and Low are the extrema of the visible segments within the selection.
	Top, Low int64
	// Bounds spans the selected pixel range horizontally and Low..Top vertically, in
	// the unflipped overview space.
	Bounds geom.Rect
	// Full reports whether the whole graph width was selected.
	Full bool
}

// Len returns the number of selected samples.
func (s *Selection) Len() int {
	return len(s.X)
}

// Segment returns the segment of the series with the given id.
func (s *Selection) Segment(id string) (Segment, bool) {
	for _, seg := range s.Segments {
		if seg.ID == id {
			return seg, true
		}
	}
	return Segment{}, false
}
