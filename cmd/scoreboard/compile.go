package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/cptspacemanspiff/led-scoreboard/internal/bitmap"
	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
	"github.com/cptspacemanspiff/led-scoreboard/internal/imaging"
	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
)

var lampColor = color.NRGBA{R: 255, G: 176, B: 0, A: 255}

func outputFlag() cli.Flag {
	return &cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "PIX file to write"}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "Compile an image into a board-sized PIX bitmap",
		ArgsUsage: "IMAGE",
		Flags: []cli.Flag{
			outputFlag(),
			&cli.StringFlag{Name: "crop", Usage: "source rectangle x0,y0,x1,y1 (default: whole image)"},
			&cli.StringFlag{Name: "method", Usage: "threshold, ordered or floyd-steinberg"},
			&cli.Float64Flag{Name: "threshold", Usage: "quantisation threshold, 0..255"},
			&cli.Float64Flag{Name: "ordered-strength", Usage: "ordered dither strength, 0..100"},
			&cli.Float64Flag{Name: "diffusion-strength", Usage: "error diffusion strength, 0..1"},
			&cli.Float64Flag{Name: "brightness", Usage: "added to luminance"},
			&cli.Float64Flag{Name: "contrast", Usage: "contrast, -100..100"},
			&cli.Float64Flag{Name: "gamma", Usage: "gamma, 1 is identity"},
			&cli.Float64Flag{Name: "black", Usage: "levels black point"},
			&cli.Float64Flag{Name: "white", Usage: "levels white point"},
			&cli.Float64Flag{Name: "sharpen", Usage: "unsharp mask amount, 0 disables"},
			&cli.Float64Flag{Name: "sharpen-sigma", Usage: "unsharp mask radius"},
			&cli.IntFlag{Name: "posterize", Usage: "gray levels before quantisation, below 2 disables"},
			&cli.BoolFlag{Name: "invert", Usage: "light dark pixels"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			p, err := compileParams(c, cfg.ImageParams())
			if err != nil {
				return cli.Exit(err, 1)
			}
			src, err := decodeImage(c.Args().First())
			if err != nil {
				return cli.Exit(err, 1)
			}
			g := cfg.Geometry()
			bm := imaging.Compile(src, g.Width(), g.Height(), p)
			if err := writePIX(c.String("output"), bm); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

func textCommand() *cli.Command {
	return &cli.Command{
		Name:      "text",
		Usage:     "Lay out GLYPH text in the text-art font and write it as PIX",
		ArgsUsage: "TEXT",
		Flags:     []cli.Flag{outputFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			text := strings.Join(c.Args().Slice(), " ")
			font := glyph.Coarse()
			if err := logo.Check(text, font); err != nil {
				return cli.Exit(err, 1)
			}
			g := cfg.Geometry()
			if err := writePIX(c.String("output"), logo.Layout(text, font, g.Width(), g.Height())); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Render a PIX file as a PNG of the lamp grid, or as text",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "PNG file to write (default: text to stdout)"},
			&cli.BoolFlag{Name: "logical", Usage: "skip the physical cell and panel gaps"},
			&cli.IntFlag{Name: "scale", Value: 4, Usage: "PNG pixels per lamp"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
			}
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			bm, err := readPIX(c.Args().First())
			if err != nil {
				return cli.Exit(err, 1)
			}
			if !c.Bool("logical") {
				bm = physicalView(bm, cfg.Geometry(), cfg.Mechanics())
			}
			out := c.String("output")
			if out == "" {
				fmt.Fprint(c.App.Writer, bm.String())
				return nil
			}
			if err := writePNG(out, previewImage(bm, c.Int("scale"))); err != nil {
				return cli.Exit(err, 1)
			}
			return nil
		},
	}
}

// compileParams overrides base with every compiler flag set on c.
func compileParams(c *cli.Context, base imaging.Params) (imaging.Params, error) {
	p := base
	if c.IsSet("crop") {
		r, err := parseCrop(c.String("crop"))
		if err != nil {
			return p, err
		}
		p.Crop = r
	}
	if c.IsSet("method") {
		m, err := imaging.ParseMethod(c.String("method"))
		if err != nil {
			return p, err
		}
		p.Method = m
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"threshold", &p.Threshold},
		{"ordered-strength", &p.OrderedStrength},
		{"diffusion-strength", &p.DiffusionStrength},
		{"brightness", &p.Brightness},
		{"contrast", &p.Contrast},
		{"gamma", &p.Gamma},
		{"black", &p.Black},
		{"white", &p.White},
		{"sharpen", &p.Sharpen},
		{"sharpen-sigma", &p.SharpenSigma},
	}
	for _, f := range floats {
		if c.IsSet(f.name) {
			*f.dst = c.Float64(f.name)
		}
	}
	if c.IsSet("posterize") {
		p.Posterize = c.Int("posterize")
	}
	if c.IsSet("invert") {
		p.Invert = c.Bool("invert")
	}
	return p, nil
}

// parseCrop parses "x0,y0,x1,y1". An empty string selects the whole image.
func parseCrop(s string) (image.Rectangle, error) {
	if strings.TrimSpace(s) == "" {
		return image.Rectangle{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("crop %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = n
	}
	r := image.Rect(v[0], v[1], v[2], v[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("crop %q: empty rectangle", s)
	}
	return r, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func writePIX(path string, bm *bitmap.Bitmap) error {
	data, err := bitmap.MarshalPIX(bm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readPIX reads a PIX file of any size.
func readPIX(path string) (*bitmap.Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, h, err := bitmap.DecodePIXConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	bm, err := bitmap.UnmarshalPIX(data, w, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bm, nil
}

// physicalView expands bm onto the physical grid when it is exactly board
// sized. Other bitmaps are returned unchanged.
func physicalView(bm *bitmap.Bitmap, g board.Geometry, m board.Mechanics) *bitmap.Bitmap {
	if bm.Width() != g.Width() || bm.Height() != g.Height() {
		return bm
	}
	return m.Expand(bm, g)
}

func previewImage(bm *bitmap.Bitmap, scale int) image.Image {
	scale = max(scale, 1)
	src := &bitmap.Image{Bitmap: bm, On: lampColor, Off: color.Black}
	dst := image.NewRGBA(image.Rect(0, 0, bm.Width()*scale, bm.Height()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// payloadFormat returns the explicit format, or guesses it from the file
// extension.
func payloadFormat(path, explicit string) (logo.Format, error) {
	if explicit != "" {
		return logo.ParseFormat(explicit)
	}
	if strings.EqualFold(filepath.Ext(path), ".pix") {
		return logo.FormatPIX, nil
	}
	return logo.FormatGlyph, nil
}

// checkPayload rejects payloads the display could never show.
func checkPayload(f logo.Format, data []byte, g board.Geometry) error {
	switch f {
	case logo.FormatPIX:
		_, err := bitmap.UnmarshalPIX(data, g.Width(), g.Height())
		return err
	case logo.FormatGlyph:
		if len(bytes.TrimSpace(data)) == 0 {
			return fmt.Errorf("empty GLYPH payload")
		}
		return nil
	}
	return fmt.Errorf("%w: %q", logo.ErrFormat, f)
}
