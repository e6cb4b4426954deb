package main

import (
	"image/color"
	"math"

	"git.sr.ht/~whereswaldon/telechart/backend"
)

// oklch is a color in the Oklch space with L in [0, 1] and H in degrees.
type oklch struct {
	L, C, H, A float32
}

// NRGBA converts to sRGB, clamping channels that fall outside the gamut.
func (c oklch) NRGBA() color.NRGBA {
	h := float64(c.H) * math.Pi / 180
	L := float64(c.L)
	a := float64(c.C) * math.Cos(h)
	b := float64(c.C) * math.Sin(h)

	l := math.Pow(L+0.3963377774*a+0.2158037573*b, 3)
	m := math.Pow(L-0.1055613458*a-0.0638541728*b, 3)
	s := math.Pow(L-0.0894841775*a-1.2914855480*b, 3)

	return color.NRGBA{
		R: srgb(4.0767416621*l - 3.3077115913*m + 0.2309699292*s),
		G: srgb(-1.2684380046*l + 2.6097574011*m - 0.3413193965*s),
		B: srgb(-0.0041960863*l - 0.7034186147*m + 1.7076147010*s),
		A: uint8(math.Round(float64(clamp(c.A, 0, 1)) * 255)),
	}
}

// srgb gamma-encodes a linear channel.
func srgb(v float64) uint8 {
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

var colors = func() []color.NRGBA {
	const target = 20
	out := []color.NRGBA{}
	for i := 0; i < target; i++ {
		c := oklch{
			L: .5,
			C: .2,
			H: float32(math.Mod(float64(i+1)*math.Phi*2*math.Pi, 1)) * 360,
			A: 1,
		}
		out = append(out, c.NRGBA())
	}
	return out
}()

// withPalette returns a copy of chart in which every series without a color (or with
// a fully transparent one) takes the next palette entry.
func withPalette(chart backend.Chart) backend.Chart {
	out := chart
	out.Series = make([]backend.Series, len(chart.Series))
	for i, s := range chart.Series {
		if s.Color.A == 0 {
			s.Color = colors[i%len(colors)]
		}
		out.Series[i] = s
	}
	return out
}
