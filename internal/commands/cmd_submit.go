package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

type SubmitCmd struct {
	flags *Flags
	app   *revu.App

	event string
	body  string
	yes   bool
}

// NewSubmitCmd creates the submit and discard commands.
func NewSubmitCmd(flags *Flags, app *revu.App) *SubmitCmd {
	return &SubmitCmd{flags: flags, app: app}
}

// Register adds the submit and discard commands to the application.
func (cmd *SubmitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "submit",
			Usage:     "Submit the pending review",
			UsageText: "revu submit [--event comment|approve|request-changes] [--body TEXT]",
			Description: `Submits the tab's pending review with the given verdict and closes the tab.
The event defaults to review.default_event from the config file.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "event",
					Aliases:     []string{"e"},
					Usage:       "review verdict (comment, approve, request-changes)",
					Destination: &cmd.event,
				},
				&cli.StringFlag{
					Name:        "body",
					Aliases:     []string{"m"},
					Usage:       "review summary",
					Destination: &cmd.body,
				},
			},
			Action: cmd.runSubmit,
		},
		&cli.Command{
			Name:        "discard",
			Usage:       "Delete the pending review",
			UsageText:   "revu discard [--yes]",
			Description: "Deletes your pending review on the tab's pull request, with all its pending comments, and closes the tab.",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "yes",
					Aliases:     []string{"y"},
					Usage:       "do not ask for confirmation",
					Destination: &cmd.yes,
				},
			},
			Action: cmd.runDiscard,
		},
	)

	return app
}

func (cmd *SubmitCmd) runSubmit(ctx context.Context, c *cli.Command) error {
	raw := cmd.event
	if raw == "" {
		raw = cmd.app.Config.Review.DefaultEvent
	}
	event, ok := review.ParseSubmitEvent(raw)
	if !ok {
		return fmt.Errorf("invalid event %q, expected comment, approve or request-changes", raw)
	}

	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(ctx context.Context, ws *revu.Workspace) error {
		if err := cmd.app.Tabs.Submit(ctx, ws, event, cmd.body); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(c.Root().Writer, "%s review on %s submitted (%s)\n",
			styles.SuccessStyle.Render("✔"),
			styles.PathStyle.Render(ws.Tab.PullRequest()),
			strings.ToLower(strings.ReplaceAll(string(event), "_", " ")),
		)
		return nil
	})
}

func (cmd *SubmitCmd) runDiscard(ctx context.Context, c *cli.Command) error {
	ws, err := cmd.app.Tabs.Bind(ctx, cmd.flags.Tab, newPrompter(prompterOpts{yes: cmd.yes}))
	if err != nil {
		return err
	}

	deleted, err := cmd.app.Tabs.Discard(ws.Context(ctx), ws)
	if err != nil {
		if review.IsEmptyResult(err) {
			return fmt.Errorf("%w on %s: close the tab with 'revu tabs close %s'", err, ws.Tab.PullRequest(), ws.Tab.ShortKey())
		}
		return err
	}

	if !deleted {
		_, _ = fmt.Fprintln(c.Root().Writer, styles.MutedStyle.Render("review kept"))
		return nil
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "%s pending review on %s deleted\n",
		styles.SuccessStyle.Render("✔"),
		styles.PathStyle.Render(ws.Tab.PullRequest()),
	)
	return nil
}
