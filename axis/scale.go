package axis

import "math"

// Scale computes "nice" tick positions for an axis. The target tick size is either
// fixed in pixels or a factor of the axis length. Use FixedScale or RelativeScale to
// construct one.
type Scale struct {
	size     float32
	factor   float32
	relative bool

	count int

	// maxValue and minValue are the extrema the ticks were last computed for.
	maxValue, minValue int64
	hasValues          bool

	thick    int64
	min, max int64
}

// FixedScale returns a scale whose ticks are roughly size pixels apart.
func FixedScale(size float32) *Scale {
	return &Scale{size: size}
}

// RelativeScale returns a scale whose ticks are roughly factor*length pixels apart,
// where length is supplied by SetAxisLength.
func RelativeScale(factor float32) *Scale {
	return &Scale{factor: factor, relative: true}
}

// SetAxisLength updates the pixel length of the axis and the resulting tick count. If
// the tick count changed and extrema were already provided, the ticks are recomputed
// for them.
func (s *Scale) SetAxisLength(length float32) {
	if s.relative {
		s.size = length * s.factor
	}
	count := 0
	if s.size > 0 {
		count = int(math.Round(float64(length / s.size)))
	}
	changed := count != s.count
	s.count = count
	if !s.hasValues {
		s.thick = 0
		return
	}
	if changed && count > 0 {
		s.compute()
	}
}

// SetMinMax computes ticks covering [min, max]. Calls with the extrema of the previous
// call are ignored, which keeps tick positions stable across repeated layouts. Will
// panic if the tick count is not positive, so SetAxisLength must be called with a
// non-zero length first.
func (s *Scale) SetMinMax(max, min int64) {
	if s.count <= 0 {
		panic("axis: tick count must be positive")
	}
	if s.hasValues && s.maxValue == max && s.minValue == min {
		return
	}
	s.maxValue = max
	s.minValue = min
	s.hasValues = true
	s.compute()
}

func (s *Scale) compute() {
	spacing := 1.0
	if span := float64(s.maxValue - s.minValue); span > 0 {
		r := NiceNum(span, false)
		spacing = NiceNum(r/float64(max(s.count-1, 1)), true)
	}
	s.min = int64(math.Floor(float64(s.minValue)/spacing) * spacing)
	s.max = int64(math.Ceil(float64(s.maxValue)/spacing) * spacing)
	s.thick = int64(math.Round(spacing))
}

// Count returns the number of ticks.
func (s *Scale) Count() int { return s.count }

// Size returns the target pixel distance between ticks.
func (s *Scale) Size() float32 { return s.size }

// Thick returns the rounded value distance between ticks, or zero if no extrema have
// been provided.
func (s *Scale) Thick() int64 { return s.thick }

// Min returns the lowest tick value.
func (s *Scale) Min() int64 { return s.min }

// Max returns the highest tick value.
func (s *Scale) Max() int64 { return s.max }

// ValueAt returns the value of the tick at position i in [0, Count).
func (s *Scale) ValueAt(i int) int64 {
	if s.count == 0 {
		return s.min
	}
	return s.max/int64(s.count)*int64(i) + s.min
}

// NiceNum returns a number of the form f*10^e with f in {1, 2, 5, 10} close to x. When
// round is true the nearest such number is chosen, otherwise the smallest one that is
// not less than x. x must be positive.
func NiceNum(x float64, round bool) float64 {
	exponent := math.Floor(math.Log10(x))
	fraction := x / math.Pow(10, exponent)
	var nice float64
	if round {
		switch {
		case fraction < 1.5:
			nice = 1
		case fraction < 3:
			nice = 2
		case fraction < 7:
			nice = 5
		default:
			nice = 10
		}
	} else {
		switch {
		case fraction <= 1:
			nice = 1
		case fraction <= 2:
			nice = 2
		case fraction <= 5:
			nice = 5
		default:
			nice = 10
		}
	}
	return nice * math.Pow(10, exponent)
}
