package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/colonyops/revu/internal/core/styles"
	"github.com/colonyops/revu/internal/core/tab"
	"github.com/colonyops/revu/internal/revu"
	"github.com/colonyops/revu/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type TabsCmd struct {
	flags *Flags
	app   *revu.App

	jsonOutput bool
}

// NewTabsCmd creates a new tabs command.
func NewTabsCmd(flags *Flags, app *revu.App) *TabsCmd {
	return &TabsCmd{flags: flags, app: app}
}

// Register adds the tabs command to the application.
func (cmd *TabsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "tabs",
		Usage:       "List open review tabs",
		UsageText:   "revu tabs [--json]",
		Description: "Lists every open tab, oldest first. The most recently used tab is the default for other commands.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
		Commands: []*cli.Command{
			{
				Name:          "close",
				Usage:         "Close a tab without touching its review",
				UsageText:     "revu tabs close <key>",
				ArgsUsage:     "<key>",
				ShellComplete: TabKeyCompleter(cmd.app),
				Action:        cmd.runClose,
			},
		},
	})

	return app
}

type tabJSON struct {
	Key         string    `json:"key"`
	PullRequest string    `json:"pull_request"`
	Left        string    `json:"left,omitempty"`
	Right       string    `json:"right,omitempty"`
	File        string    `json:"file,omitempty"`
	Side        string    `json:"side,omitempty"`
	Line        int       `json:"line,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (cmd *TabsCmd) run(ctx context.Context, c *cli.Command) error {
	tabs, err := cmd.app.Tabs.List(ctx)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tabs {
			if err := iojson.WriteLine(out, tabJSON{
				Key:         t.Key,
				PullRequest: t.PullRequest(),
				Left:        t.Left,
				Right:       t.Right,
				File:        t.CurrentFile,
				Side:        string(t.CursorSide),
				Line:        t.CursorLine,
				UpdatedAt:   t.UpdatedAt,
			}); err != nil {
				return err
			}
		}
		return nil
	}

	if len(tabs) == 0 {
		_, _ = fmt.Fprintln(out, styles.MutedStyle.Render("no open tabs"))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tPULL REQUEST\tDIFF\tFILE\tUPDATED")
	for _, t := range tabs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			t.ShortKey(),
			t.PullRequest(),
			diffLabel(t),
			fileLabel(t),
			t.UpdatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func (cmd *TabsCmd) runClose(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected a tab key")
	}

	t, err := cmd.app.Tabs.Close(ctx, c.Args().First())
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.Root().Writer, "closed tab %s (%s)\n", t.ShortKey(), t.PullRequest())
	return nil
}

func diffLabel(t tab.Tab) string {
	pair, ok := t.Pair()
	if !ok {
		return "PR"
	}
	return pair.String()
}

func fileLabel(t tab.Tab) string {
	switch {
	case t.CurrentFile == "":
		return "-"
	case t.CursorLine > 0:
		return fmt.Sprintf("%s:%d", t.CurrentFile, t.CursorLine)
	default:
		return t.CurrentFile
	}
}
