package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/revu/internal/commands"
	"github.com/colonyops/revu/internal/core/config"
	"github.com/colonyops/revu/internal/core/logging"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/data/db"
	"github.com/colonyops/revu/internal/data/stores"
	"github.com/colonyops/revu/internal/integration/github"
	"github.com/colonyops/revu/internal/revu"
	"github.com/colonyops/revu/internal/view"
	"github.com/colonyops/revu/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		revuApp   = &revu.App{}
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := commands.NewRoot(flags, revuApp)
	app.Version = build()

	app.Before = func(ctx context.Context, c *cli.Command) (context.Context, error) {
		logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
		if err != nil {
			return ctx, fmt.Errorf("setup logger: %w", err)
		}
		log.Logger = logger.Hook(logging.ContextHook{})
		logCloser = closer

		cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("load config: %w", err)
		}
		flags.Config = cfg

		// Apply configured theme (validation ensures name is valid)
		if palette, ok := styles.GetPalette(cfg.UI.Theme); ok {
			styles.SetTheme(palette)
		}

		md, err := view.NewMarkdown(cfg.UI.MarkdownStyle, cfg.UI.WordWrap)
		if err != nil {
			log.Warn().Err(err).Str("style", cfg.UI.MarkdownStyle).Msg("markdown renderer unavailable, comments render as plain text")
		}

		database, err = stores.Open(cfg.DataDir)
		if err != nil {
			return ctx, fmt.Errorf("open database: %w", err)
		}

		client, err := github.New(github.Options{
			BaseURL:   cfg.GitHub.BaseURL,
			UploadURL: cfg.GitHub.UploadURL,
			Token:     cfg.Token(),
			Timeout:   cfg.GitHub.Timeout,
			PageSize:  cfg.GitHub.PageSize,
			Ignore:    cfg.Review.Ignore,
			Logger:    logging.Component("github"),
		})
		if err != nil {
			return ctx, fmt.Errorf("create github client: %w", err)
		}

		tabStore := stores.NewTabStore(database)
		tabs := revu.NewTabService(tabStore, client, md, logging.Component("tabs"), os.Stdout, os.Stderr)

		// Populate the pre-allocated App struct (commands already hold a pointer to it)
		*revuApp = *revu.NewApp(tabs, tabStore, client, cfg, database)

		return ctx, nil
	}

	app.After = func(ctx context.Context, c *cli.Command) error {
		if revuApp.Tabs != nil {
			revuApp.Tabs.LeaveAll()
		}

		if database != nil {
			if err := database.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close database")
				return err
			}
		}

		if logCloser != nil {
			logCloser()
		}
		return nil
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		_, _ = fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("error:"), runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
