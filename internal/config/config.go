package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cptspacemanspiff/led-scoreboard/internal/board"
	"github.com/cptspacemanspiff/led-scoreboard/internal/glyph"
	"github.com/cptspacemanspiff/led-scoreboard/internal/imaging"
	"github.com/cptspacemanspiff/led-scoreboard/internal/layout"
)

const (
	minTiles                = 1
	maxTiles                = 256
	minCellSize             = 1
	maxCellSize             = glyph.MaxWidth
	minGap                  = 0
	maxGap                  = 64
	minPanelTiles           = 1
	maxPanelTiles           = 1024
	minMaxDelayMillis       = 0
	maxMaxDelayMillis       = 60000
	minRetentionDays        = 1
	maxRetentionDays        = 3650
	minCleanupIntervalHours = 1
	maxCleanupIntervalHours = 720
	maxPosterizeLevels      = 256
)

type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Board     BoardConfig     `toml:"board"`
	Physical  PhysicalConfig  `toml:"physical"`
	Animation AnimationConfig `toml:"animation"`
	Image     ImageConfig     `toml:"image"`
	Transport TransportConfig `toml:"transport"`
	Cleanup   CleanupConfig   `toml:"cleanup"`
	Layouts   []layout.Spec   `toml:"layouts"`
}

type StorageConfig struct {
	DBPath    string `toml:"db_path"`
	SpoolPath string `toml:"spool_path"`
}

type BoardConfig struct {
	TilesX     int `toml:"tiles_x"`
	TilesY     int `toml:"tiles_y"`
	CellWidth  int `toml:"cell_width"`
	CellHeight int `toml:"cell_height"`
	// BDFFont optionally adds glyphs from a BDF font to the board font.
	BDFFont string `toml:"bdf_font,omitempty"`
	Layout  string `toml:"layout"`
}

type PhysicalConfig struct {
	CellGapX    int `toml:"cell_gap_x"`
	CellGapY    int `toml:"cell_gap_y"`
	PanelTilesX int `toml:"panel_tiles_x"`
	PanelTilesY int `toml:"panel_tiles_y"`
	PanelGapX   int `toml:"panel_gap_x"`
	PanelGapY   int `toml:"panel_gap_y"`
}

type AnimationConfig struct {
	MaxDelayMillis int `toml:"max_delay_ms"`
}

type ImageConfig struct {
	Method            string  `toml:"method"`
	Threshold         float64 `toml:"threshold"`
	OrderedStrength   float64 `toml:"ordered_strength"`
	DiffusionStrength float64 `toml:"diffusion_strength"`
	Brightness        float64 `toml:"brightness"`
	Contrast          float64 `toml:"contrast"`
	Gamma             float64 `toml:"gamma"`
	Black             float64 `toml:"black"`
	White             float64 `toml:"white"`
	Sharpen           float64 `toml:"sharpen"`
	Posterize         int     `toml:"posterize"`
	Invert            bool    `toml:"invert"`
}

type TransportConfig struct {
	// Bus is "session" or "system".
	Bus string `toml:"bus"`
}

type CleanupConfig struct {
	RetentionDays int `toml:"retention_days"`
	IntervalHours int `toml:"interval_hours"`
}

func DefaultConfig() *Config {
	geom := board.DefaultGeometry()
	mech := board.DefaultMechanics()
	img := imaging.DefaultParams()
	return &Config{
		Storage: StorageConfig{
			DBPath:    "/var/lib/scoreboard/scoreboard.db",
			SpoolPath: "/var/lib/scoreboard/spool.jsonl",
		},
		Board: BoardConfig{
			TilesX:     geom.TilesX,
			TilesY:     geom.TilesY,
			CellWidth:  geom.CellWidth,
			CellHeight: geom.CellHeight,
			Layout:     "scores",
		},
		Physical: PhysicalConfig{
			CellGapX:    mech.CellGapX,
			CellGapY:    mech.CellGapY,
			PanelTilesX: mech.PanelTilesX,
			PanelTilesY: mech.PanelTilesY,
			PanelGapX:   mech.PanelGapX,
			PanelGapY:   mech.PanelGapY,
		},
		Animation: AnimationConfig{
			MaxDelayMillis: 2000,
		},
		Image: ImageConfig{
			Method:            img.Method.String(),
			Threshold:         img.Threshold,
			OrderedStrength:   img.OrderedStrength,
			DiffusionStrength: img.DiffusionStrength,
			Gamma:             img.Gamma,
			Black:             img.Black,
			White:             img.White,
		},
		Transport: TransportConfig{
			Bus: "session",
		},
		Cleanup: CleanupConfig{
			RetentionDays: 30,
			IntervalHours: 24,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	var err error
	sanitized.Storage.DBPath, err = sanitizePath("storage.db_path", sanitized.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	sanitized.Storage.SpoolPath, err = sanitizePath("storage.spool_path", sanitized.Storage.SpoolPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sanitized.Board.BDFFont) != "" {
		sanitized.Board.BDFFont, err = sanitizePath("board.bdf_font", sanitized.Board.BDFFont)
		if err != nil {
			return nil, err
		}
	}

	ranges := []struct {
		name     string
		value    int
		min, max int
	}{
		{"board.tiles_x", sanitized.Board.TilesX, minTiles, maxTiles},
		{"board.tiles_y", sanitized.Board.TilesY, minTiles, maxTiles},
		{"board.cell_width", sanitized.Board.CellWidth, minCellSize, maxCellSize},
		{"board.cell_height", sanitized.Board.CellHeight, minCellSize, maxCellSize},
		{"physical.cell_gap_x", sanitized.Physical.CellGapX, minGap, maxGap},
		{"physical.cell_gap_y", sanitized.Physical.CellGapY, minGap, maxGap},
		{"physical.panel_tiles_x", sanitized.Physical.PanelTilesX, minPanelTiles, maxPanelTiles},
		{"physical.panel_tiles_y", sanitized.Physical.PanelTilesY, minPanelTiles, maxPanelTiles},
		{"physical.panel_gap_x", sanitized.Physical.PanelGapX, minGap, maxGap},
		{"physical.panel_gap_y", sanitized.Physical.PanelGapY, minGap, maxGap},
		{"animation.max_delay_ms", sanitized.Animation.MaxDelayMillis, minMaxDelayMillis, maxMaxDelayMillis},
		{"image.posterize", sanitized.Image.Posterize, 0, maxPosterizeLevels},
		{"cleanup.retention_days", sanitized.Cleanup.RetentionDays, minRetentionDays, maxRetentionDays},
		{"cleanup.interval_hours", sanitized.Cleanup.IntervalHours, minCleanupIntervalHours, maxCleanupIntervalHours},
	}
	for _, r := range ranges {
		if err := validateRange(r.name, r.value, r.min, r.max); err != nil {
			return nil, err
		}
	}

	if _, err := imaging.ParseMethod(sanitized.Image.Method); err != nil {
		return nil, fmt.Errorf("image.method: %w", err)
	}
	floats := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"image.threshold", sanitized.Image.Threshold, 0, 255},
		{"image.ordered_strength", sanitized.Image.OrderedStrength, 0, 100},
		{"image.diffusion_strength", sanitized.Image.DiffusionStrength, 0, 1},
		{"image.brightness", sanitized.Image.Brightness, -255, 255},
		{"image.contrast", sanitized.Image.Contrast, -100, 100},
		{"image.sharpen", sanitized.Image.Sharpen, 0, 10},
	}
	for _, r := range floats {
		if err := validateFloatRange(r.name, r.value, r.min, r.max); err != nil {
			return nil, err
		}
	}

	switch sanitized.Transport.Bus = strings.ToLower(strings.TrimSpace(sanitized.Transport.Bus)); sanitized.Transport.Bus {
	case "session", "system":
	default:
		return nil, fmt.Errorf("transport.bus must be \"session\" or \"system\", got %q", cfg.Transport.Bus)
	}

	layouts, err := sanitized.BuildLayouts()
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(sanitized.Board.Layout); name != "" {
		found := false
		for _, l := range layouts {
			if strings.EqualFold(l.Name, name) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("board.layout %q is not a known layout", name)
		}
		sanitized.Board.Layout = name
	}

	return &sanitized, nil
}

func Save(path string, cfg *Config) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("config path must not be empty")
	}

	sanitized, err := NormalizeAndValidate(cfg)
	if err != nil {
		return err
	}

	var data bytes.Buffer
	if err := toml.NewEncoder(&data).Encode(sanitized); err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}

	dir := filepath.Dir(trimmedPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, trimmedPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpPath = ""

	return nil
}

// Geometry returns the configured board size.
func (c *Config) Geometry() board.Geometry {
	return board.Geometry{
		TilesX:     c.Board.TilesX,
		TilesY:     c.Board.TilesY,
		CellWidth:  c.Board.CellWidth,
		CellHeight: c.Board.CellHeight,
	}
}

// Mechanics returns the configured physical gaps.
func (c *Config) Mechanics() board.Mechanics {
	return board.Mechanics{
		CellGapX:    c.Physical.CellGapX,
		CellGapY:    c.Physical.CellGapY,
		PanelTilesX: c.Physical.PanelTilesX,
		PanelTilesY: c.Physical.PanelTilesY,
		PanelGapX:   c.Physical.PanelGapX,
		PanelGapY:   c.Physical.PanelGapY,
	}
}

// ImageParams returns the compiler defaults. The crop rectangle is left
// empty.
func (c *Config) ImageParams() imaging.Params {
	p := imaging.DefaultParams()
	if m, err := imaging.ParseMethod(c.Image.Method); err == nil {
		p.Method = m
	}
	p.Threshold = c.Image.Threshold
	p.OrderedStrength = c.Image.OrderedStrength
	p.DiffusionStrength = c.Image.DiffusionStrength
	p.Brightness = c.Image.Brightness
	p.Contrast = c.Image.Contrast
	p.Gamma = c.Image.Gamma
	p.Black = c.Image.Black
	p.White = c.Image.White
	p.Sharpen = c.Image.Sharpen
	p.Posterize = c.Image.Posterize
	p.Invert = c.Image.Invert
	return p
}

// BuildLayouts returns the built-in layouts followed by the configured ones.
// A configured layout replaces a built-in of the same name.
func (c *Config) BuildLayouts() ([]layout.Layout, error) {
	out := layout.Builtin()
	for i, spec := range c.Layouts {
		l, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("layouts[%d]: %w", i, err)
		}
		out = append(out, l)
	}
	return out, nil
}

func sanitizePath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}

func validateFloatRange(name string, value, min, max float64) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %g and %g, got %g", name, min, max, value)
	}

	return nil
}
