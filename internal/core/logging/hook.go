package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook copies the tab key and review id from the event context onto
// log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if tab := GetTab(ctx); tab != "" {
		e.Str("tab", tab)
	}

	if id, ok := GetReviewID(ctx); ok {
		e.Int64("review_id", id)
	}
}
