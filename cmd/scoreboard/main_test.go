package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/logo"
	"github.com/cptspacemanspiff/led-scoreboard/internal/storage"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	missing := filepath.Join(t.TempDir(), "missing.toml")
	err := app.Run(append([]string{"scoreboard", "--config", missing}, args...))
	return out.String(), err
}

// runAppWithDB runs the app against a configuration storing its database at
// dbPath.
func runAppWithDB(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	data := "[storage]\ndb_path = \"" + dbPath + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	err := app.Run(append([]string{"scoreboard", "--config", cfgPath}, args...))
	return out.String(), err
}

func openDB(t *testing.T, path string) *storage.DB {
	t.Helper()

	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestJournalSince(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scoreboard.db")
	db := openDB(t, dbPath)

	now := time.Now().Unix()
	records := []storage.CommandRecord{
		{Timestamp: now - 7200, Line: "set home 1", OK: true},
		{Timestamp: now - 60, Line: "set home 2", OK: true},
		{Timestamp: now - 30, Line: "dance", Error: "unknown command"},
	}
	if err := db.InsertCommands(records); err != nil {
		t.Fatalf("InsertCommands() error = %v", err)
	}

	out, err := runAppWithDB(t, dbPath, "journal", "--since", "1h")
	if err != nil {
		t.Fatalf("journal error = %v", err)
	}
	if strings.Contains(out, "set home 1") {
		t.Fatalf("journal --since 1h printed an older command:\n%s", out)
	}
	if !strings.Contains(out, "set home 2") || !strings.Contains(out, "error: unknown command") {
		t.Fatalf("journal --since 1h = \n%s\nwant the recent commands", out)
	}

	out, err = runAppWithDB(t, dbPath, "journal", "--since", "3h")
	if err != nil || !strings.Contains(out, "set home 1") {
		t.Fatalf("journal --since 3h = %q, %v, want every command", out, err)
	}

	if _, err := runAppWithDB(t, dbPath, "journal", "--since=-1h"); err == nil {
		t.Fatal("journal --since -1h error = nil")
	}
}

func TestLogosDeleteDirect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scoreboard.db")
	db := openDB(t, dbPath)

	if err := db.PutLogo(storage.Logo{Name: "word", Format: logo.FormatGlyph, Payload: []byte("HI")}); err != nil {
		t.Fatalf("PutLogo() error = %v", err)
	}

	if _, err := runAppWithDB(t, dbPath, "logos", "--direct", "--delete", "word"); err != nil {
		t.Fatalf("logos --delete error = %v", err)
	}
	if got, _ := db.Logo("word"); got != nil {
		t.Fatalf("Logo(word) after delete = %+v, want nil", got)
	}
	if _, err := runAppWithDB(t, dbPath, "logos", "--direct", "--delete", "word"); err == nil {
		t.Fatal("logos --delete of a missing logo error = nil")
	}

	out, err := runAppWithDB(t, dbPath, "logos", "--direct")
	if err != nil || strings.TrimSpace(out) != "" {
		t.Fatalf("logos --direct = %q, %v, want no logos", out, err)
	}
}

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{in: "", want: image.Rectangle{}},
		{in: "1,2,30,40", want: image.Rect(1, 2, 30, 40)},
		{in: " 0, 0 ,10,10", want: image.Rect(0, 0, 10, 10)},
		{in: "1,2,3", wantErr: true},
		{in: "a,0,1,1", wantErr: true},
		{in: "5,5,5,9", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCrop(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCrop(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Fatalf("parseCrop(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTextWritesBoardSizedPIX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "home.pix")
	if _, err := runApp(t, "text", "-o", out, "HOME"); err != nil {
		t.Fatalf("text error = %v", err)
	}

	bm, err := readPIX(out)
	if err != nil {
		t.Fatalf("readPIX() error = %v", err)
	}
	g := board.DefaultGeometry()
	if bm.Width() != g.Width() || bm.Height() != g.Height() || bm.Count() == 0 {
		t.Fatalf("PIX = %dx%d with %d lit, want %dx%d with text", bm.Width(), bm.Height(), bm.Count(), g.Width(), g.Height())
	}
}

func TestCompileImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "half.png")

	img := image.NewGray(image.Rect(0, 0, 300, 140))
	for y := 0; y < 140; y++ {
		for x := 150; x < 300; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	if err := writePNG(src, img); err != nil {
		t.Fatalf("writePNG() error = %v", err)
	}

	out := filepath.Join(dir, "half.pix")
	if _, err := runApp(t, "compile", "-o", out, "--method", "threshold", src); err != nil {
		t.Fatalf("compile error = %v", err)
	}
	bm, err := readPIX(out)
	if err != nil {
		t.Fatalf("readPIX() error = %v", err)
	}
	if bm.Get(10, 35) || !bm.Get(140, 35) {
		t.Fatalf("compiled bitmap does not follow the source halves")
	}

	inverted := filepath.Join(dir, "inverted.pix")
	if _, err := runApp(t, "compile", "-o", inverted, "--method", "threshold", "--invert", src); err != nil {
		t.Fatalf("compile --invert error = %v", err)
	}
	inv, err := readPIX(inverted)
	if err != nil {
		t.Fatalf("readPIX() error = %v", err)
	}
	if !inv.Get(10, 35) || inv.Get(140, 35) {
		t.Fatalf("inverted bitmap does not complement the source halves")
	}

	if _, err := runApp(t, "compile", "-o", out, "--method", "sparkle", src); err == nil {
		t.Fatal("compile with unknown method error = nil")
	}
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	pix := filepath.Join(dir, "x.pix")
	if _, err := runApp(t, "text", "-o", pix, "X"); err != nil {
		t.Fatalf("text error = %v", err)
	}

	text, err := runApp(t, "preview", "--logical", pix)
	if err != nil {
		t.Fatalf("preview error = %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) != 70 || len(lines[0]) != 150 {
		t.Fatalf("preview = %d lines of %d, want 70 of 150", len(lines), len(lines[0]))
	}

	pngPath := filepath.Join(dir, "x.png")
	if _, err := runApp(t, "preview", "--scale", "2", "-o", pngPath, pix); err != nil {
		t.Fatalf("preview -o error = %v", err)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("png.DecodeConfig() error = %v", err)
	}
	if cfg.Width != 208*2 || cfg.Height != 88*2 {
		t.Fatalf("preview png = %dx%d, want %dx%d", cfg.Width, cfg.Height, 208*2, 88*2)
	}
}

func TestPayloadChecks(t *testing.T) {
	g := board.DefaultGeometry()

	tests := []struct {
		path, explicit string
		want           logo.Format
	}{
		{"crest.pix", "", logo.FormatPIX},
		{"CREST.PIX", "", logo.FormatPIX},
		{"word.txt", "", logo.FormatGlyph},
		{"word.txt", "pix", logo.FormatPIX},
	}
	for _, tt := range tests {
		got, err := payloadFormat(tt.path, tt.explicit)
		if err != nil || got != tt.want {
			t.Fatalf("payloadFormat(%q, %q) = %q, %v, want %q", tt.path, tt.explicit, got, err, tt.want)
		}
	}
	if _, err := payloadFormat("x", "gif"); err == nil {
		t.Fatal("payloadFormat(gif) error = nil")
	}

	if err := checkPayload(logo.FormatGlyph, []byte("  \n"), g); err == nil {
		t.Fatal("checkPayload(blank GLYPH) error = nil")
	}
	if err := checkPayload(logo.FormatPIX, []byte{1, 0, 1, 0, 0x80}, g); err == nil {
		t.Fatal("checkPayload(1x1 PIX) error = nil for a 150x70 board")
	}
}
