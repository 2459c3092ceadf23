package imaging

import "math"

func clamp(l float64) float64 {
	switch {
	case l < 0:
		return 0
	case l > 255:
		return 255
	}
	return l
}

// Brightness adds b to l.
func Brightness(l, b float64) float64 {
	return clamp(l + b)
}

// Contrast scales l around mid gray by 259(c+255)/(255(259-c)). c outside
// [-100, 100] leaves l unchanged.
func Contrast(l, c float64) float64 {
	if c < -100 || c > 100 {
		return l
	}
	factor := 259 * (c + 255) / (255 * (259 - c))
	return clamp(factor*(l-128) + 128)
}

// Gamma applies 255(l/255)^(1/g). g <= 0 leaves l unchanged.
func Gamma(l, g float64) float64 {
	if g <= 0 || math.IsNaN(g) {
		return l
	}
	return clamp(255 * math.Pow(l/255, 1/g))
}

// Levels stretches [black, white] to [0, 255]. white <= black leaves l
// unchanged.
func Levels(l, black, white float64) float64 {
	if white <= black {
		return l
	}
	return clamp((l - black) * 255 / (white - black))
}

// Tone runs every tone adjustment of p over l in order.
func (p Params) Tone(l float64) float64 {
	l = Brightness(clamp(l), p.Brightness)
	l = Contrast(l, p.Contrast)
	l = Gamma(l, p.Gamma)
	return Levels(l, p.Black, p.White)
}

func (p Params) curve() *[256]float64 {
	var c [256]float64
	for i := range c {
		c[i] = p.Tone(float64(i))
	}
	return &c
}
