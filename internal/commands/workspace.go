package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/revu"
	"github.com/colonyops/revu/internal/view"
	"github.com/rs/zerolog/log"
)

// prompterOpts holds the flags that answer prompts up front.
type prompterOpts struct {
	body string
	yes  bool
}

func newPrompter(opts prompterOpts) *view.Prompter {
	return view.NewPrompter(view.PrompterOptions{
		Body:        opts.body,
		Yes:         opts.yes,
		Interactive: view.IsInteractive(),
		Accessible:  os.Getenv("ACCESSIBLE") != "",
		Input:       os.Stdin,
		Output:      os.Stderr,
	})
}

// withWorkspace attaches the selected tab, runs fn and saves the tab's view
// state afterwards, also when fn fails.
func withWorkspace(ctx context.Context, app *revu.App, flags *Flags, prompter review.Prompter, fn func(context.Context, *revu.Workspace) error) error {
	ws, err := app.Tabs.Attach(ctx, flags.Tab, prompter)
	if err != nil {
		if review.IsEmptyResult(err) {
			return fmt.Errorf("%w: the review was submitted or deleted elsewhere, close the tab with 'revu tabs close'", err)
		}
		return err
	}
	ctx = ws.Context(ctx)

	runErr := fn(ctx, ws)

	if err := app.Tabs.Save(ctx, ws); err != nil {
		if runErr == nil {
			return err
		}
		log.Error().Ctx(ctx).Err(err).Msg("failed to save tab")
	}

	return runErr
}
