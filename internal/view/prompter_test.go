package view

import (
	"context"
	"testing"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_EditThread(t *testing.T) {
	plain := review.BuildPendingThread(review.PendingSeed{Path: "a.go", Side: review.SideRight, Start: 1, End: 1})
	suggestion := plain.WithBody("```suggestion\nfixed\n```")

	tests := []struct {
		name    string
		opts    PrompterOptions
		thread  review.PendingThread
		want    string
		wantErr error
	}{
		{name: "preset body", opts: PrompterOptions{Body: "nit: typo"}, thread: plain, want: "nit: typo"},
		{name: "preset body keeps suggestion", opts: PrompterOptions{Body: "try this"}, thread: suggestion, want: "try this\n\n```suggestion\nfixed\n```"},
		{name: "no terminal", opts: PrompterOptions{}, thread: plain, wantErr: ErrNotInteractive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPrompter(tt.opts).EditThread(context.Background(), tt.thread)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_Confirm(t *testing.T) {
	ok, err := NewPrompter(PrompterOptions{Yes: true}).Confirm(context.Background(), "delete?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = NewPrompter(PrompterOptions{}).Confirm(context.Background(), "delete?")
	assert.ErrorIs(t, err, ErrNotInteractive)
	assert.False(t, ok)
}

func TestMarkdown(t *testing.T) {
	var nilRenderer *Markdown
	assert.Equal(t, "**raw**", nilRenderer.Render("**raw**"))

	for _, style := range []string{StyleTheme, "notty", "dracula"} {
		md, err := NewMarkdown(style, 60)
		require.NoError(t, err, style)
		assert.Contains(t, md.Render("hello"), "hello", style)
	}
}
