package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

type CommentCmd struct {
	flags *Flags
	app   *revu.App

	lines   string
	side    string
	suggest bool
	body    string
}

// NewCommentCmd creates a new comment command.
func NewCommentCmd(flags *Flags, app *revu.App) *CommentCmd {
	return &CommentCmd{flags: flags, app: app}
}

// Register adds the comment command to the application.
func (cmd *CommentCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "comment",
		Usage:     "Add a pending comment on a line range",
		UsageText: "revu comment [path] --lines a:b [--side RIGHT] [--suggest] [--body TEXT]",
		Description: `Adds a comment thread to the pending review. The range must lie inside one
diff hunk of the file. Without a path the tab's current file is used.

Without --body the comment is written in an editor form; an empty body
cancels. --suggest starts the body with a suggestion block holding the
selected lines.`,
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "lines",
				Aliases:     []string{"l"},
				Usage:       "line or range to comment on (7, 3:9)",
				Required:    true,
				Destination: &cmd.lines,
			},
			&cli.StringFlag{
				Name:        "side",
				Usage:       "diff side (LEFT, RIGHT)",
				Value:       string(review.SideRight),
				Destination: &cmd.side,
			},
			&cli.BoolFlag{
				Name:        "suggest",
				Usage:       "start with a suggestion block",
				Destination: &cmd.suggest,
			},
			&cli.StringFlag{
				Name:        "body",
				Aliases:     []string{"m"},
				Usage:       "comment text, skips the editor",
				Destination: &cmd.body,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *CommentCmd) run(ctx context.Context, c *cli.Command) error {
	start, end, err := parseLines(cmd.lines)
	if err != nil {
		return err
	}
	side, err := parseSide(cmd.side)
	if err != nil {
		return err
	}
	path := c.Args().First()

	prompter := newPrompter(prompterOpts{body: cmd.body})

	return withWorkspace(ctx, cmd.app, cmd.flags, prompter, func(ctx context.Context, ws *revu.Workspace) error {
		if path != "" {
			if err := cmd.app.Tabs.Open(ws, path); err != nil {
				return err
			}
		}

		file, ok := ws.View.CurrentFile()
		if !ok {
			return fmt.Errorf("no file open: pass a path or run 'revu open <path>' first")
		}

		created, err := cmd.app.Tabs.Comment(ctx, ws, side, start, end, cmd.suggest)
		if err != nil {
			return err
		}
		if !created {
			_, _ = fmt.Fprintln(c.Root().Writer, styles.MutedStyle.Render("comment cancelled"))
			return nil
		}

		_, _ = fmt.Fprintf(c.Root().Writer, "%s comment added on %s:%s\n",
			styles.SuccessStyle.Render("✔"), file.Path(), lineSpan(start, end))
		return nil
	})
}

func lineSpan(start, end int) string {
	if start == end {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d-%d", start, end)
}
