package topshade

import (
	"image/color"
	"math"
)

// RGBA is a non-premultiplied, gamma encoded colour.
type RGBA [4]uint8

var Transparent = RGBA{0, 0, 0, 0}

func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// RGBAFromColor converts any color.Color into a non-premultiplied RGBA.
func RGBAFromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{n.R, n.G, n.B, n.A}
}

// WaterDepthToAlpha converts a depth of water into an opacity, between 182
// for a single block and 250 for 35 blocks or more.
func WaterDepthToAlpha(depth int) uint8 {
	return uint8(min(180+2*depth, 250))
}

func linear(c uint8) float64 {
	return float64(int(c)*int(c)) / (255 * 255)
}

func encode(v float64) uint8 {
	return uint8(min(math.Round(math.Sqrt(v*255*255)), 255))
}

func overAlpha(aa, ab float64) float64 {
	return aa + ab*(1-aa)
}

func overComponent(ca, aa, cb, ab, aOut float64) float64 {
	return (ca*aa + cb*ab*(1-aa)) / aOut
}

// AOverB lays colour a on top of colour b. Channels are squared into a rough
// linear space, composited with the non-premultiplied over operator and
// square rooted back.
func AOverB(a, b RGBA) RGBA {
	aa, ab := linear(a[3]), linear(b[3])
	aOut := overAlpha(aa, ab)
	if aOut == 0 {
		return Transparent
	}

	var out RGBA
	for i := 0; i < 3; i++ {
		out[i] = encode(overComponent(linear(a[i]), aa, linear(b[i]), ab, aOut))
	}
	out[3] = encode(aOut)
	return out
}

// TopShade darkens colour based on the height of the column to the north.
// Columns lower than their northern neighbour are darkest, equal ones
// slightly darker and higher ones untouched. Alpha is kept.
func TopShade(colour RGBA, height, northHeight int) RGBA {
	shade := 255
	switch {
	case height < northHeight:
		shade = 180
	case height == northHeight:
		shade = 220
	}
	return RGBA{
		uint8(int(colour[0]) * shade / 255),
		uint8(int(colour[1]) * shade / 255),
		uint8(int(colour[2]) * shade / 255),
		colour[3],
	}
}
