/*
Package imaging compiles an arbitrary image into a 1-bit lamp bitmap.

The pipeline runs in a fixed order: crop and resample to the target size,
optional sharpen and posterize, per-pixel tone mapping, and finally
quantization by threshold, ordered dithering or Floyd-Steinberg error
diffusion. Every stage is a pure function of its inputs.

An adjustment whose parameters make no sense (gamma <= 0, white <= black,
contrast outside [-100, 100]) is skipped rather than reported.
*/
package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
)

// Method is a quantization algorithm.
type Method int

const (
	Threshold Method = iota
	Ordered
	FloydSteinberg
)

var methodNames = map[Method]string{
	Threshold:      "threshold",
	Ordered:        "ordered",
	FloydSteinberg: "floyd-steinberg",
}

func (m Method) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod maps a method name to a Method. "fs" is accepted for
// floyd-steinberg.
func ParseMethod(s string) (Method, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "fs" {
		return FloydSteinberg, nil
	}
	for m, n := range methodNames {
		if n == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("imaging: unknown method %q", s)
}

// Params are the numeric settings of one compile.
type Params struct {
	// Crop is the source rectangle. It is shrunk around its centre to the
	// aspect of the target; an empty rectangle selects the largest centred
	// region of the source.
	Crop image.Rectangle

	// Sharpen is the unsharp mask amount; 0 disables it.
	Sharpen float64
	// SharpenSigma is the blur radius of the unsharp mask.
	SharpenSigma float64
	// Posterize reduces the image to that many gray levels first; values
	// below 2 disable it.
	Posterize int

	Brightness float64 // added to luminance
	Contrast   float64 // -100..100
	Gamma      float64 // 1 is identity
	Black      float64 // levels input black point
	White      float64 // levels input white point

	Method    Method
	Threshold float64 // 0..255
	// OrderedStrength scales the ordered dither amplitude, 0..100.
	OrderedStrength float64
	// DiffusionStrength scales the propagated Floyd-Steinberg error, 0..1.
	DiffusionStrength float64
	// Invert lights dark pixels instead of bright ones.
	Invert bool
}

// DefaultParams returns an identity tone curve with full strength
// Floyd-Steinberg dithering at mid threshold.
func DefaultParams() Params {
	return Params{
		SharpenSigma:      1.0,
		Gamma:             1.0,
		Black:             0,
		White:             255,
		Method:            FloydSteinberg,
		Threshold:         128,
		OrderedStrength:   100,
		DiffusionStrength: 1,
	}
}

// Compile runs the whole pipeline and returns a width by height bitmap.
func Compile(src image.Image, width, height int, p Params) *bitmap.Bitmap {
	if width <= 0 || height <= 0 {
		return bitmap.New(0, 0)
	}
	gray := Crop(src, p.Crop, width, height)
	if p.Sharpen > 0 {
		gray = Sharpen(gray, p.SharpenSigma, p.Sharpen)
	}
	if p.Posterize >= 2 {
		gray = Posterize(gray, p.Posterize)
	}

	curve := p.curve()
	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+width]
		for x, v := range row {
			lum[y*width+x] = curve[v]
		}
	}
	return Quantize(lum, width, height, p)
}
