package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cptspacemanspiff/led-scoreboard/internal/config"
	dbussvc "github.com/cptspacemanspiff/led-scoreboard/internal/dbus"
	"github.com/cptspacemanspiff/led-scoreboard/internal/spool"
	"github.com/cptspacemanspiff/led-scoreboard/internal/storage"
)

const defaultConfigPath = "/etc/scoreboard/config.toml"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "scoreboard"
	app.Usage = "LED scoreboard image, logo and command utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SCOREBOARD_CONFIG"},
			Value:   defaultConfigPath,
			Usage:   "path to the TOML configuration file",
		},
		&cli.StringFlag{
			Name:  "bus",
			Usage: "D-Bus to use, session or system (overrides the configuration)",
		},
	}

	app.Commands = []*cli.Command{
		compileCommand(),
		textCommand(),
		previewCommand(),
		{
			Name:      "import",
			Usage:     "Store a PIX or GLYPH payload as a named logo",
			ArgsUsage: "NAME FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Usage: "PIX or GLYPH (default: from the file extension)"},
				&cli.BoolFlag{Name: "direct", Usage: "write to the database instead of calling the daemon"},
			},
			Action: importAction,
		},
		{
			Name:  "logos",
			Usage: "List stored logos, or delete one",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "delete", Usage: "delete the named logo"},
				&cli.BoolFlag{Name: "direct", Usage: "use the database instead of calling the daemon"},
			},
			Action: logosAction,
		},
		{
			Name:  "journal",
			Usage: "Print journaled commands",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "since", Value: 24 * time.Hour, Usage: "how far back to look"},
			},
			Action: journalAction,
		},
		{
			Name:      "send",
			Usage:     "Send a command line to the display",
			ArgsUsage: "LINE...",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "spool", Usage: "append to the spool file instead of calling the daemon"},
			},
			Action: sendAction,
		},
	}

	return app
}

// loadConfig reads the configuration named by --config, falling back to the
// defaults when the file does not exist.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if os.IsNotExist(err) {
		cfg, err = config.NormalizeAndValidate(config.DefaultConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if bus := c.String("bus"); bus != "" {
		cfg.Transport.Bus = bus
	}
	return cfg, nil
}

func sendAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	line := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if c.Bool("spool") {
		if err := spool.Append(cfg.Storage.SpoolPath, time.Now(), line); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}

	client, err := dbussvc.NewClient(cfg.Transport.Bus)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer client.Close()
	if err := client.SendCommand(line); err != nil {
		return cli.Exit(fmt.Errorf("send command: %w", err), 1)
	}
	return nil
}

func importAction(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	name, path := c.Args().Get(0), c.Args().Get(1)

	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	format, err := payloadFormat(path, c.String("format"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := checkPayload(format, data, cfg.Geometry()); err != nil {
		return cli.Exit(fmt.Errorf("%s: %w", path, err), 1)
	}

	if c.Bool("direct") {
		db, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()
		l := storage.Logo{Name: name, Format: format, Payload: data, UpdatedAt: time.Now().Unix()}
		if err := db.PutLogo(l); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}

	client, err := dbussvc.NewClient(cfg.Transport.Bus)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer client.Close()
	if err := client.PutLogo(name, string(format), data); err != nil {
		return cli.Exit(fmt.Errorf("put logo: %w", err), 1)
	}
	return nil
}

func logosAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}

	if name := c.String("delete"); name != "" {
		return deleteLogo(c, cfg, name)
	}

	var infos []dbussvc.LogoInfo
	if c.Bool("direct") {
		db, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()
		logos, err := db.Logos()
		if err != nil {
			return cli.Exit(err, 1)
		}
		for _, l := range logos {
			infos = append(infos, dbussvc.LogoInfo{Name: l.Name, Format: string(l.Format), UpdatedAt: l.UpdatedAt})
		}
	} else {
		client, err := dbussvc.NewClient(cfg.Transport.Bus)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer client.Close()
		if infos, err = client.ListLogos(); err != nil {
			return cli.Exit(err, 1)
		}
	}

	for _, l := range infos {
		fmt.Fprintf(c.App.Writer, "%-20s %-6s %s\n", l.Name, l.Format, time.Unix(l.UpdatedAt, 0).Format(time.DateTime))
	}
	return nil
}

func deleteLogo(c *cli.Context, cfg *config.Config, name string) error {
	var (
		deleted bool
		err     error
	)
	if c.Bool("direct") {
		db, oerr := storage.Open(cfg.Storage.DBPath)
		if oerr != nil {
			return cli.Exit(oerr, 1)
		}
		defer db.Close()
		deleted, err = db.DeleteLogo(name)
	} else {
		client, cerr := dbussvc.NewClient(cfg.Transport.Bus)
		if cerr != nil {
			return cli.Exit(cerr, 1)
		}
		defer client.Close()
		deleted, err = client.DeleteLogo(name)
	}
	if err != nil {
		return cli.Exit(fmt.Errorf("delete logo: %w", err), 1)
	}
	if !deleted {
		return cli.Exit(fmt.Sprintf("no logo named %q", name), 1)
	}
	return nil
}

// journalAction prints the journal straight from the database.
func journalAction(c *cli.Context) error {
	since := c.Duration("since")
	if since <= 0 {
		return cli.Exit("--since must be positive", 1)
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return cli.Exit(err, 1)
	}
	defer db.Close()

	now := time.Now()
	records, err := db.CommandsInRange(now.Add(-since).Unix(), now.Unix())
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, r := range records {
		status := "ok"
		if !r.OK {
			status = "error: " + r.Error
		}
		fmt.Fprintf(c.App.Writer, "%s  %-40s %s\n", time.Unix(r.Timestamp, 0).Format(time.DateTime), r.Line, status)
	}
	return nil
}
