package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cptspacemanspiff/led-scoreboard/internal/config"
	dbussvc "github.com/cptspacemanspiff/led-scoreboard/internal/dbus"
	"github.com/cptspacemanspiff/led-scoreboard/internal/storage"
)

const defaultConfigPath = "/etc/scoreboard/config.toml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the TOML configuration file")
	verbose := flag.Bool("verbose", false, "enable all verbose logging (equivalent to -log=all)")
	logFlag := flag.String("log", "", "comma-separated log topics: command,animate,storage,transport,spool (or 'all')")
	resetDB := flag.Bool("reset-db", false, "delete the database and start fresh")
	queueSize := flag.Int("queue", 64, "number of bus commands buffered before SendCommand fails")
	flag.Parse()

	handler := &topicHandler{
		inner:  slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
		topics: parseTopics(*verbose, *logFlag),
	}
	logger := slog.New(handler)
	transportLog := logger.With("topic", "transport")

	cfg, err := loadConfig(logger, *configPath)
	if err != nil {
		logger.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}

	dbPath := cfg.Storage.DBPath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("create data dir", "err", err)
		os.Exit(1)
	}

	if *resetDB {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
				logger.Error("delete database", "err", err)
				os.Exit(1)
			}
		}
		logger.Info("database deleted", "path", dbPath)
		return
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	eng, err := newEngine(cfg, store, logger)
	if err != nil {
		logger.Error("build board", "err", err)
		os.Exit(1)
	}

	cmds := make(chan string, *queueSize)
	svc := dbussvc.NewService(cmds, eng.frames, store, cfg.Geometry())
	conn, err := svc.Export(cfg.Transport.Bus)
	if err != nil {
		logger.Error("export dbus service", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	transportLog.Info("D-Bus service registered", "name", "org.scoreboard.Display", "bus", cfg.Transport.Bus)

	eng.replaySpool()
	eng.cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	hupCh := make(chan os.Signal, 1)
	signal.Notify(hupCh, syscall.SIGHUP)

	g := cfg.Geometry()
	logger.Info("scoreboardd started", "tiles_x", g.TilesX, "tiles_y", g.TilesY, "layout", cfg.Board.Layout)
	interval := time.Duration(cfg.Cleanup.IntervalHours) * time.Hour
	if err := eng.run(ctx, cmds, hupCh, interval); err != nil {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
	logger.Info("shutting down")
}

// loadConfig reads path, falling back to the defaults when the file does
// not exist.
func loadConfig(logger *slog.Logger, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if os.IsNotExist(err) {
		logger.Info("config file not found, using defaults", "path", path)
		return config.NormalizeAndValidate(config.DefaultConfig())
	}
	return cfg, err
}
