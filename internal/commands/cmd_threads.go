package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/revu"
	"github.com/colonyops/revu/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type ThreadsCmd struct {
	flags *Flags
	app   *revu.App

	pending    bool
	path       string
	jsonOutput bool
}

// NewThreadsCmd creates the threads and jump commands.
func NewThreadsCmd(flags *Flags, app *revu.App) *ThreadsCmd {
	return &ThreadsCmd{flags: flags, app: app}
}

// Register adds the threads and jump commands to the application.
func (cmd *ThreadsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:        "threads",
			Usage:       "List review threads",
			UsageText:   "revu threads [--pending] [--path FILE] [--json]",
			Description: "Lists the pull request's review threads ordered by file and line.",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:        "pending",
					Usage:       "only threads with unsubmitted comments",
					Destination: &cmd.pending,
				},
				&cli.StringFlag{
					Name:        "path",
					Usage:       "only threads on this file",
					Destination: &cmd.path,
				},
				&cli.BoolFlag{
					Name:        "json",
					Usage:       "output as JSON lines",
					Destination: &cmd.jsonOutput,
				},
			},
			Action: cmd.runThreads,
		},
		&cli.Command{
			Name:        "jump",
			Usage:       "Open the file and line of a thread",
			UsageText:   "revu jump <thread-id>",
			Description: "Focuses the thread's file and moves the cursor to its first line, then prints the file.",
			ArgsUsage:   "<thread-id>",
			Action:      cmd.runJump,
		},
	)

	return app
}

type commentJSON struct {
	ID        *int64    `json:"id,omitempty"`
	Author    string    `json:"author"`
	State     string    `json:"state"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type threadJSON struct {
	ID       string        `json:"id"`
	Path     string        `json:"path"`
	Side     string        `json:"side"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Resolved bool          `json:"resolved"`
	Outdated bool          `json:"outdated"`
	Pending  bool          `json:"pending"`
	Comments []commentJSON `json:"comments"`
}

func newThreadJSON(t review.Thread) threadJSON {
	anchor := t.Anchor()
	out := threadJSON{
		ID:       t.ID,
		Path:     t.Path,
		Side:     string(anchor.Side),
		Start:    anchor.Start,
		End:      anchor.End,
		Resolved: t.Resolved,
		Outdated: t.Outdated,
		Pending:  t.HasPendingComment(),
		Comments: make([]commentJSON, 0, len(t.Comments)),
	}
	for _, c := range t.Comments {
		out.Comments = append(out.Comments, commentJSON{
			ID:        c.ID,
			Author:    c.Author,
			State:     string(c.State),
			Body:      c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return out
}

func (cmd *ThreadsCmd) runThreads(ctx context.Context, c *cli.Command) error {
	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(_ context.Context, ws *revu.Workspace) error {
		threads, err := cmd.threads(ws)
		if err != nil {
			if !review.IsEmptyResult(err) {
				return err
			}
			if !cmd.jsonOutput {
				_, _ = fmt.Fprintln(c.Root().Writer, styles.MutedStyle.Render(err.Error()))
			}
			return nil
		}

		if cmd.jsonOutput {
			for _, t := range threads {
				if err := iojson.WriteLine(c.Root().Writer, newThreadJSON(t)); err != nil {
					return err
				}
			}
			return nil
		}

		return ws.View.RenderThreads(threads)
	})
}

func (cmd *ThreadsCmd) threads(ws *revu.Workspace) ([]review.Thread, error) {
	if cmd.pending && cmd.path == "" {
		return ws.Session.PendingThreads()
	}

	threads := ws.Session.SelectThreads(cmd.predicate())
	if cmd.pending && len(threads) == 0 {
		return nil, &review.EmptyResultError{What: "pending comments on " + cmd.path}
	}
	return threads, nil
}

func (cmd *ThreadsCmd) predicate() review.Predicate {
	var preds []review.Predicate
	if cmd.pending {
		preds = append(preds, review.PendingComments)
	}
	if cmd.path != "" {
		preds = append(preds, review.OnPath(cmd.path))
	}
	if len(preds) == 0 {
		return nil
	}
	return func(t review.Thread) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

func (cmd *ThreadsCmd) runJump(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a thread id")
	}
	id := c.Args().First()

	return withWorkspace(ctx, cmd.app, cmd.flags, newPrompter(prompterOpts{}), func(ctx context.Context, ws *revu.Workspace) error {
		if err := cmd.app.Tabs.Jump(ctx, ws, id); err != nil {
			return err
		}
		if _, ok := ws.View.CurrentFile(); !ok {
			return nil
		}
		return ws.View.RenderFile(ctx)
	})
}
