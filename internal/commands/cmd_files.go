package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

type FilesCmd struct {
	flags *Flags
	app   *revu.App

	wholePR bool
	side    string
	line    int
}

// NewFilesCmd creates the files, focus and open commands.
func NewFilesCmd(flags *Flags, app *revu.App) *FilesCmd {
	return &FilesCmd{flags: flags, app: app}
}

// Register adds the files, focus and open commands to the application.
func (cmd *FilesCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:        "files",
			Usage:       "List the files of the current diff",
			UsageText:   "revu files",
			Description: "Lists the changed files of the tab's diff with their hunk headers.",
			Action:      cmd.runFiles,
		},
		&cli.Command{
			Name:      "focus",
			Usage:     "Scope the diff to one commit or back to the pull request",
			UsageText: "revu focus <sha> | revu focus --pr",
			Description: `Shows the changes of a single commit against its first parent. The commit
may be given as any unique prefix of its id. --pr returns to the whole pull request.`,
			ArgsUsage: "<sha>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "pr",
					Usage:       "show the whole pull request",
					Destination: &cmd.wholePR,
				},
			},
			Action: cmd.runFocus,
		},
		&cli.Command{
			Name:        "open",
			Usage:       "Show a file of the current diff",
			UsageText:   "revu open <path> [--side RIGHT] [--line N]",
			Description: "Focuses a file of the diff and prints its changed lines with thread markers.",
			ArgsUsage:   "<path>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "side",
					Usage:       "diff side for --line (LEFT, RIGHT)",
					Value:       string(review.SideRight),
					Destination: &cmd.side,
				},
				&cli.IntFlag{
					Name:        "line",
					Usage:       "move the cursor to this line",
					Destination: &cmd.line,
				},
			},
			Action: cmd.runOpen,
		},
	)

	return app
}

func (cmd *FilesCmd) runFiles(ctx context.Context, _ *cli.Command) error {
	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(_ context.Context, ws *revu.Workspace) error {
		return ws.View.RenderFiles()
	})
}

func (cmd *FilesCmd) runFocus(ctx context.Context, c *cli.Command) error {
	commitID := c.Args().First()
	switch {
	case cmd.wholePR && commitID != "":
		return fmt.Errorf("pass either a commit or --pr, not both")
	case !cmd.wholePR && commitID == "":
		return fmt.Errorf("expected a commit id or --pr")
	}

	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(ctx context.Context, ws *revu.Workspace) error {
		if err := cmd.app.Tabs.Focus(ctx, ws, commitID, cmd.wholePR); err != nil {
			return err
		}
		return ws.View.RenderFiles()
	})
}

func (cmd *FilesCmd) runOpen(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a file path")
	}
	path := c.Args().First()

	side, err := parseSide(cmd.side)
	if err != nil {
		return err
	}

	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(ctx context.Context, ws *revu.Workspace) error {
		if err := cmd.app.Tabs.Open(ws, path); err != nil {
			return err
		}
		if cmd.line > 0 {
			if err := ws.View.MoveCursor(side, cmd.line); err != nil {
				return err
			}
		}
		return ws.View.RenderFile(ctx)
	})
}
