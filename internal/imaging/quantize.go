package imaging

import "github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"

// bayer is the 8x8 ordered dither matrix, values 0..63.
var bayer = [8][8]float64{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

func clampRange(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

// Quantize reduces row-major luminance values to lamp states using the
// method of p.
func Quantize(lum []float64, width, height int, p Params) *bitmap.Bitmap {
	out := bitmap.New(width, height)
	if len(lum) < width*height {
		return out
	}
	t := p.Threshold
	set := func(x, y int, on bool) {
		out.Set(x, y, on != p.Invert)
	}

	switch p.Method {
	case Ordered:
		amp := 255 * clampRange(p.OrderedStrength, 0, 100) / 100
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				thr := t + (bayer[y&7][x&7]-31.5)/63*amp
				set(x, y, lum[y*width+x] >= thr)
			}
		}
	case FloydSteinberg:
		k := clampRange(p.DiffusionStrength, 0, 1)
		buf := make([]float64, len(lum))
		copy(buf, lum)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				old := buf[y*width+x]
				on := old >= t
				set(x, y, on)
				if k == 0 {
					continue
				}
				target := 0.0
				if on {
					target = 255
				}
				e := (old - target) * k
				if x+1 < width {
					buf[y*width+x+1] += e * 7 / 16
				}
				if y+1 < height {
					if x > 0 {
						buf[(y+1)*width+x-1] += e * 3 / 16
					}
					buf[(y+1)*width+x] += e * 5 / 16
					if x+1 < width {
						buf[(y+1)*width+x+1] += e * 1 / 16
					}
				}
			}
		}
	default:
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				set(x, y, lum[y*width+x] >= t)
			}
		}
	}
	return out
}
