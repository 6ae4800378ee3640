package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/revu"
	"github.com/urfave/cli/v3"
)

// TabKeyCompleter returns a ShellCompleteFunc that suggests open tab keys as
// positional completions.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func TabKeyCompleter(app *revu.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		if app.Tabs == nil {
			return
		}

		tabs, err := app.Tabs.List(ctx)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, t := range tabs {
			_, _ = fmt.Fprintf(w, "%s:%s\n", t.ShortKey(), t.PullRequest())
		}
	}
}
