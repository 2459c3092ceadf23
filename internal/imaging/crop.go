package imaging

import (
	"image"
	"image/color"
	stddraw "image/draw"

	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/draw"
)

// AspectRect returns the largest rectangle inside r with aspect w:h, centred
// on r. An empty r is replaced by bounds; r is clipped to bounds.
func AspectRect(r, bounds image.Rectangle, w, h int) image.Rectangle {
	if r.Empty() {
		r = bounds
	}
	r = r.Intersect(bounds)
	if r.Empty() || w <= 0 || h <= 0 {
		return r
	}
	dx, dy := r.Dx(), r.Dy()
	if dx*h > dy*w {
		dx = max(1, dy*w/h)
	} else {
		dy = max(1, dx*h/w)
	}
	x0 := r.Min.X + (r.Dx()-dx)/2
	y0 := r.Min.Y + (r.Dy()-dy)/2
	return image.Rect(x0, y0, x0+dx, y0+dy)
}

// Crop extracts the aspect-correct region of src selected by r and resamples
// its luminance to exactly w by h.
func Crop(src image.Image, r image.Rectangle, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	sr := AspectRect(r, src.Bounds(), w, h)
	if sr.Empty() {
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sr, draw.Src, nil)
	return dst
}

// Sharpen applies an unsharp mask.
func Sharpen(src *image.Gray, sigma, amount float64) *image.Gray {
	if sigma <= 0 {
		sigma = 1
	}
	g := gift.New(gift.UnsharpMask(float32(sigma), float32(amount), 0))
	dst := image.NewGray(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}

// Posterize maps src onto a median cut palette of at most levels grays.
func Posterize(src *image.Gray, levels int) *image.Gray {
	b := src.Bounds()
	q := quantize.MedianCutQuantizer{}
	pal := q.Quantize(make(color.Palette, 0, levels), src)
	if len(pal) == 0 {
		return src
	}
	pm := image.NewPaletted(b, pal)
	stddraw.Draw(pm, b, src, b.Min, stddraw.Src)

	dst := image.NewGray(b)
	stddraw.Draw(dst, b, pm, b.Min, stddraw.Src)
	return dst
}
