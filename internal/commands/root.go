package commands

import (
	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

// NewRoot builds the revu command tree. app is populated by the caller's
// Before hook; commands only dereference it when they run.
func NewRoot(flags *Flags, app *revu.App) *cli.Command {
	root := &cli.Command{
		Name:      "revu",
		Usage:     "Review GitHub pull requests from the terminal",
		UsageText: "revu [global options] command [command options]",
		Description: `revu keeps a pending GitHub review open across commands.

Each review lives in a tab. Commands act on the most recently used tab
unless --tab selects another one by key prefix.

  revu start colonyops/revu#42
  revu open internal/app.go
  revu comment --lines 10:14 --body "can this be simplified?"
  revu submit --event request-changes`,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("REVU_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("REVU_LOG_FILE"),
				Value:       DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("REVU_CONFIG"),
				Value:       DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("REVU_DATA_DIR"),
				Value:       DefaultDataDir(),
				Destination: &flags.DataDir,
			},
			&cli.StringFlag{
				Name:        "tab",
				Aliases:     []string{"t"},
				Usage:       "tab key or key prefix (defaults to the most recently used tab)",
				Sources:     cli.EnvVars("REVU_TAB"),
				Destination: &flags.Tab,
			},
		},
	}

	root = NewStartCmd(flags, app).Register(root)
	root = NewTabsCmd(flags, app).Register(root)
	root = NewFilesCmd(flags, app).Register(root)
	root = NewCommentCmd(flags, app).Register(root)
	root = NewThreadsCmd(flags, app).Register(root)
	root = NewSubmitCmd(flags, app).Register(root)
	root = NewConfigValidateCmd(flags).Register(root)
	root = NewDoctorCmd(flags, app).Register(root)

	return root
}
