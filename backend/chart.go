package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every error describing invalid chart data.
var ErrMalformed = errors.New("malformed chart data")

// Axis is the shared x axis of a chart.
type Axis struct {
	Values   []int64
	Top, Low int64
}

// Series represents one line of a chart. Series are never modified after parsing.
type Series struct {
	// ID is the column label of the series within its chart.
	ID      string
	Name    string
	Samples []int64
	// Top and Low are the greatest and smallest sample.
	Top, Low int64
	// Color is the zero value when the data did not provide one.
	Color color.NRGBA
}

// Chart is a set of series sharing one x axis. Every series has exactly one sample per
// x value.
type Chart struct {
	X      Axis
	Series []Series
}

// Len returns the number of samples in each series.
func (c Chart) Len() int {
	return len(c.X.Values)
}

// SeriesByID returns the series with the given id.
func (c Chart) SeriesByID(id string) (Series, bool) {
	for _, s := range c.Series {
		if s.ID == id {
			return s, true
		}
	}
	return Series{}, false
}

const (
	columnTypeX    = "x"
	columnTypeLine = "line"
)

type rawChart struct {
	Columns []json.RawMessage `json:"columns"`
	Types   map[string]string `json:"types"`
	Names   map[string]string `json:"names"`
	Colors  map[string]string `json:"colors"`
}

type column struct {
	label    string
	values   []int64
	top, low int64
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}

// Parse reads a JSON array of charts. Each chart object provides its data as
// "columns", arrays holding a string label followed by integer values. The "types"
// object classifies every column as "x" or "line", "names" gives each line a display
// name, and "colors" a "#RRGGBB" color. Unknown keys are ignored.
func Parse(r io.Reader) ([]Chart, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("failed decoding chart list: %w", errors.Join(ErrMalformed, err))
	}
	charts := make([]Chart, 0, len(raws))
	for i, raw := range raws {
		if !isObject(raw) {
			continue
		}
		var rc rawChart
		if err := json.Unmarshal(raw, &rc); err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, errors.Join(ErrMalformed, err))
		}
		chart, err := rc.build()
		if err != nil {
			return nil, fmt.Errorf("chart %d: %w", i, err)
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func parseColumn(raw json.RawMessage) (column, bool, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		// Non-array entries of "columns" are skipped.
		return column{}, false, nil
	}
	var c column
	hasLabel := false
	for _, elem := range elems {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 {
			continue
		}
		switch {
		case elem[0] == '"':
			if hasLabel {
				return column{}, false, malformed("column %q has a second label", c.label)
			}
			if err := json.Unmarshal(elem, &c.label); err != nil {
				return column{}, false, errors.Join(ErrMalformed, err)
			}
			hasLabel = true
		case elem[0] == '-' || (elem[0] >= '0' && elem[0] <= '9'):
			v, err := strconv.ParseInt(string(elem), 10, 64)
			if err != nil {
				return column{}, false, malformed("invalid value %s: %v", elem, err)
			}
			if len(c.values) == 0 {
				c.top, c.low = v, v
			}
			c.top = max(c.top, v)
			c.low = min(c.low, v)
			c.values = append(c.values, v)
		}
	}
	if !hasLabel {
		return column{}, false, malformed("column without label")
	}
	return c, true, nil
}

func (rc rawChart) build() (Chart, error) {
	var chart Chart
	hasX := false
	for _, raw := range rc.Columns {
		col, ok, err := parseColumn(raw)
		if err != nil {
			return Chart{}, err
		}
		if !ok {
			continue
		}
		kind, ok := rc.Types[col.label]
		if !ok {
			return Chart{}, malformed("column %q has no type", col.label)
		}
		switch kind {
		case columnTypeX:
			if hasX {
				return Chart{}, malformed("second x column %q", col.label)
			}
			hasX = true
			chart.X = Axis{Values: col.values, Top: col.top, Low: col.low}
		case columnTypeLine:
			name, ok := rc.Names[col.label]
			if !ok {
				name = col.label
			}
			s := Series{
				ID:      col.label,
				Name:    name,
				Samples: col.values,
				Top:     col.top,
				Low:     col.low,
			}
			if hex, ok := rc.Colors[col.label]; ok {
				s.Color, err = ParseColor(hex)
				if err != nil {
					return Chart{}, fmt.Errorf("column %q: %w", col.label, err)
				}
			}
			chart.Series = append(chart.Series, s)
		default:
			return Chart{}, malformed("unsupported column type %q", kind)
		}
	}
	if !hasX {
		return Chart{}, malformed("missing x column")
	}
	for _, s := range chart.Series {
		if len(s.Samples) != chart.Len() {
			return Chart{}, malformed("column %q has %d values, x has %d", s.ID, len(s.Samples), chart.Len())
		}
	}
	return chart, nil
}

// ParseColor parses "#RRGGBB" or "#AARRGGBB" into a color.
func ParseColor(s string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, malformed("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, malformed("invalid color %q", s)
	}
	c := color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xff,
	}
	if len(hex) == 8 {
		c.A = uint8(v >> 24)
	}
	return c, nil
}
