package logging

import "context"

type contextKey string

const (
	tabKey      contextKey = "tab"
	reviewIDKey contextKey = "review_id"
)

// WithTab adds the editor-context (tab) key to the context.
func WithTab(ctx context.Context, tab string) context.Context {
	return context.WithValue(ctx, tabKey, tab)
}

// WithReviewID adds a remote review id to the context.
func WithReviewID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, reviewIDKey, id)
}

// GetTab retrieves the tab key from the context.
// Returns empty string if not present.
func GetTab(ctx context.Context) string {
	if tab, ok := ctx.Value(tabKey).(string); ok {
		return tab
	}
	return ""
}

// GetReviewID retrieves the review id from the context.
func GetReviewID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(reviewIDKey).(int64)
	return id, ok
}
