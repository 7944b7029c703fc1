package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/limitless/internal/app"
	"github.com/julianstephens/limitless/internal/cli"
	"github.com/julianstephens/limitless/internal/cli/badges"
	"github.com/julianstephens/limitless/internal/cli/history"
	"github.com/julianstephens/limitless/internal/cli/system"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/config"
	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/logger"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `help:"YAML config file." type:"path" env:"LIMITLESS_CONFIG"`
	DataDir    string `help:"Directory holding the daily documents." env:"LIMITLESS_DATA_DIR"`
	Addr       string `help:"HTTP listen address." env:"LIMITLESS_ADDR"`
	Storage    string `help:"Storage backend: file, sqlite, postgres or memory." env:"LIMITLESS_STORAGE"`
	Timezone   string `help:"IANA timezone that decides the current day." env:"LIMITLESS_TIMEZONE"`
	Debug      bool   `help:"Enable debug logging." env:"LIMITLESS_DEBUG"`

	Serve   system.ServeCmd   `cmd:"" help:"Serve the daily documents over HTTP." default:"1"`
	Init    system.InitCmd    `cmd:"" help:"Initialize limitless storage."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Archive history.ArchiveCmd `cmd:"" help:"Archive stale daily documents."`
	Prune   history.PruneCmd   `cmd:"" help:"Delete snapshots outside the retention window."`
	Badges  badges.BadgesCmd   `cmd:"" help:"Show badge progress and active missions."`
	History struct {
		List    history.ListCmd    `cmd:"" help:"List archived days." default:"1"`
		Show    history.ShowCmd    `cmd:"" help:"Print an archived day or one of its files."`
		Restore history.RestoreCmd `cmd:"" help:"Restore an archived day as today's documents."`
	} `cmd:"" help:"Browse and restore archived days."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Report keyring availability." default:"1"`
	} `cmd:"" help:"Manage the PostgreSQL connection string."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily document server for the Limitless protocol"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)
	command := ctx.Command()

	cfg, err := config.Load(CLI.ConfigFile)
	if err != nil {
		exit(err)
	}
	cfg.Apply(config.Overrides{
		DataDir:  CLI.DataDir,
		Addr:     CLI.Addr,
		Storage:  CLI.Storage,
		Timezone: CLI.Timezone,
		Debug:    CLI.Debug,
	})
	if err := cfg.Validate(); err != nil {
		exit(err)
	}

	if err := logger.Init(logger.Config{
		Debug:   cfg.Debug,
		Console: command == "serve",
		DataDir: cfg.DataDir,
	}); err != nil {
		exit(fmt.Errorf("failed to initialize logger: %w", err))
	}

	appCtx := &cli.Context{Config: cfg}

	// Keyring commands manage the credentials a postgres provider would need.
	if strings.HasPrefix(command, "keyring") {
		errors.Fatal(ctx.Run(appCtx))
		return
	}

	appCtx.Clock, err = clock.NewSystem(cfg.Timezone)
	if err != nil {
		errors.Fatal(err)
	}
	appCtx.Store, err = app.NewProvider(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	switch command {
	case "init", "serve", "doctor":
	default:
		if err := appCtx.Store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	_ = appCtx.Store.Close()
	errors.Fatal(err)
}

// exit reports failures that happen before the logger exists.
func exit(err error) {
	fmt.Fprintln(os.Stderr, errors.Format(err))
	os.Exit(1)
}
