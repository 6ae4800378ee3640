package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/integration/github"
	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

type StartCmd struct {
	flags *Flags
	app   *revu.App
}

// NewStartCmd creates the start and resume commands.
func NewStartCmd(flags *Flags, app *revu.App) *StartCmd {
	return &StartCmd{flags: flags, app: app}
}

// Register adds the start and resume commands to the application.
func (cmd *StartCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "start",
			Usage:     "Open a tab and start a new pending review",
			UsageText: "revu start <owner/repo#number>",
			Description: `Creates a pending review on the pull request and opens a tab for it.
The pull request may also be given as a github.com pull request url.`,
			ArgsUsage: "<owner/repo#number>",
			Action:    cmd.runStart,
		},
		&cli.Command{
			Name:        "resume",
			Usage:       "Open a tab on your existing pending review",
			UsageText:   "revu resume <owner/repo#number>",
			Description: "Finds your pending review on the pull request and opens a tab for it.",
			ArgsUsage:   "<owner/repo#number>",
			Action:      cmd.runResume,
		},
	)

	return app
}

func (cmd *StartCmd) runStart(ctx context.Context, c *cli.Command) error {
	ref, err := cmd.ref(c)
	if err != nil {
		return err
	}

	ws, err := cmd.app.Tabs.Start(ctx, ref, newPrompter(prompterOpts{}))
	if err != nil {
		return err
	}
	return cmd.opened(c, ws, "review started")
}

func (cmd *StartCmd) runResume(ctx context.Context, c *cli.Command) error {
	ref, err := cmd.ref(c)
	if err != nil {
		return err
	}

	ws, err := cmd.app.Tabs.Resume(ctx, ref, newPrompter(prompterOpts{}))
	if err != nil {
		return err
	}
	return cmd.opened(c, ws, "review resumed")
}

func (cmd *StartCmd) ref(c *cli.Command) (github.Ref, error) {
	if c.Args().Len() != 1 {
		return github.Ref{}, fmt.Errorf("expected exactly one pull request, got %d arguments", c.Args().Len())
	}
	return github.ParseRef(c.Args().First())
}

func (cmd *StartCmd) opened(c *cli.Command, ws *revu.Workspace, what string) error {
	_, _ = fmt.Fprintf(c.Root().Writer, "%s %s on %s (tab %s)\n",
		styles.SuccessStyle.Render("✔"),
		what,
		styles.PathStyle.Render(ws.Tab.PullRequest()),
		styles.KeyStyle.Render(ws.Tab.ShortKey()),
	)
	return ws.View.RenderFiles()
}
