package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"slices"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	dbussvc "github.com/cptspacemanspiff/led-scoreboard/internal/dbus"
)

var (
	colorHousing   = color.NRGBA{R: 12, G: 12, B: 12, A: 255}
	colorStatusTxt = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
)

func main() {
	bus := flag.String("bus", "session", "D-Bus to use, session or system")
	interval := flag.Duration("interval", 100*time.Millisecond, "poll interval")
	scale := flag.Int("scale", 4, "window pixels per lamp")
	flag.Parse()

	client, err := dbussvc.NewClient(*bus)
	if err != nil {
		log.Fatalf("Failed to connect to D-Bus: %v", err)
	}
	defer client.Close()

	a := app.New()
	win := a.NewWindow("Scoreboard")

	v := newLampView()
	status := canvas.NewText("waiting for scoreboardd", colorStatusTxt)
	status.TextSize = 12

	bg := canvas.NewRectangle(colorHousing)
	bottom := container.New(layout.NewHBoxLayout(), status, layout.NewSpacer())
	win.SetContent(container.NewBorder(nil, container.NewPadded(bottom), nil, nil, container.NewStack(bg, v.raster)))

	if f, err := client.GetFrame(true); err == nil {
		v.set(f)
		win.Resize(fyne.NewSize(float32(f.Width**scale), float32(f.Height**scale+32)))
	} else {
		win.Resize(fyne.NewSize(832, 384))
	}

	go poll(client, *interval, v, status)

	win.ShowAndRun()
}

// lampView paints the most recent physical colour frame, one rectangle of
// window pixels per lamp.
type lampView struct {
	cur    atomic.Pointer[board.ColorFrame]
	raster *canvas.Raster
}

func newLampView() *lampView {
	v := &lampView{}
	v.raster = canvas.NewRasterWithPixels(v.pixel)
	return v
}

func (v *lampView) set(f *board.ColorFrame) {
	v.cur.Store(f)
}

func (v *lampView) pixel(x, y, w, h int) color.Color {
	f := v.cur.Load()
	if f == nil || f.Width == 0 || f.Height == 0 || w <= 0 || h <= 0 {
		return colorHousing
	}
	r, g, b := f.At(x*f.Width/w, y*f.Height/h).Display()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func lit(f *board.ColorFrame) int {
	n := 0
	for _, c := range f.Lamps {
		if c.Lit() {
			n++
		}
	}
	return n
}

func poll(client *dbussvc.Client, interval time.Duration, v *lampView, status *canvas.Text) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last *board.ColorFrame
	for range ticker.C {
		f, err := client.GetFrame(true)
		var msg string
		if err != nil {
			msg = fmt.Sprintf("scoreboardd unavailable: %v", err)
		} else {
			msg = fmt.Sprintf("%dx%d lamps, %d lit", f.Width, f.Height, lit(f))
		}
		changed := err == nil && (last == nil || last.Width != f.Width || !slices.Equal(last.Lamps, f.Lamps))
		if changed {
			v.set(f)
			last = f
		}
		fyne.Do(func() {
			status.Text = msg
			status.Refresh()
			if changed {
				v.raster.Refresh()
			}
		})
	}
}
