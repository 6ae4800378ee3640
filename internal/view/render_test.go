package view

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineContaining(t *testing.T, out, needle string) string {
	t.Helper()
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, needle) {
			return l
		}
	}
	t.Fatalf("no line containing %q in:\n%s", needle, out)
	return ""
}

func TestRenderFiles(t *testing.T) {
	term, out, _ := newTestTerminal()
	a := &stubFile{path: "a.go", status: review.FileAdded, headers: []string{"@@ -0,0 +1,3 @@"}}
	b := &stubFile{path: "b.go", status: review.FileRemoved}
	require.NoError(t, term.OpenDiff(testPair, []review.FileEntry{a, b}))
	require.NoError(t, term.FocusFile(b))

	require.NoError(t, term.RenderFiles())

	got := out.String()
	assert.Contains(t, got, "1111111..2222222")
	assert.Contains(t, lineContaining(t, got, "a.go"), "A")
	bLine := lineContaining(t, got, "b.go")
	assert.Contains(t, bLine, ">")
	assert.Contains(t, bLine, "D")
	assert.Contains(t, got, "@@ -0,0 +1,3 @@")
}

func TestRenderFiles_Closed(t *testing.T) {
	term, _, _ := newTestTerminal()
	assert.ErrorIs(t, term.RenderFiles(), ErrNoDiff)
}

func TestRenderFile_Patch(t *testing.T) {
	term, out, _ := newTestTerminal()
	f := &patchedFile{
		stubFile: stubFile{
			path:    "main.go",
			status:  review.FileModified,
			headers: []string{"@@ -4,3 +4,3 @@ func main()"},
			ranges:  map[review.DiffSide][]review.LineRange{review.SideRight: {{Start: 4, End: 6}}},
		},
		lines: []review.DiffLine{
			{Op: review.DiffContext, Left: 4, Right: 4, Text: "keep"},
			{Op: review.DiffDelete, Left: 5, Text: "old"},
			{Op: review.DiffAdd, Right: 5, Text: "new"},
			{Op: review.DiffContext, Left: 6, Right: 6, Text: "tail"},
		},
	}
	require.NoError(t, term.OpenDiff(testPair, []review.FileEntry{f}))
	require.NoError(t, term.FocusFile(f))
	term.RenderThreadMarkers(f, []review.Thread{
		{ID: "T1", Path: "main.go", DiffSide: review.SideRight, Line: review.IntPtr(5)},
	})

	require.NoError(t, term.RenderFile(context.Background()))

	got := out.String()
	assert.Contains(t, got, "@@ -4,3 +4,3 @@ func main()")
	assert.Contains(t, lineContaining(t, got, "-old"), "5")
	assert.Contains(t, lineContaining(t, got, "+new"), "*", "thread on right line 5 is marked")
	assert.NotContains(t, lineContaining(t, got, "-old"), "*", "left line 5 is not marked")
	assert.NotContains(t, lineContaining(t, got, "tail"), "*")
}

func TestRenderFile_Ranges(t *testing.T) {
	term, out, _ := newTestTerminal()
	f := &stubFile{
		path:    "notes.txt",
		status:  review.FileModified,
		headers: []string{"@@ -2,2 +2,2 @@"},
		ranges:  map[review.DiffSide][]review.LineRange{review.SideRight: {{Start: 2, End: 3}}},
		content: review.FileContent{Right: "one\ntwo\nthree\nfour\n"},
	}
	require.NoError(t, term.OpenDiff(testPair, []review.FileEntry{f}))
	require.NoError(t, term.FocusFile(f))
	require.NoError(t, term.Select(review.SideRight, 2, 3))

	require.NoError(t, term.RenderFile(context.Background()))

	got := out.String()
	assert.Contains(t, got, "two")
	assert.Contains(t, got, "three")
	assert.NotContains(t, got, "one")
	assert.NotContains(t, got, "four")
	assert.Contains(t, lineContaining(t, got, "two"), "|", "selected lines carry the selection gutter")
}

func TestRenderFile_NoFocus(t *testing.T) {
	term, _, _ := newTestTerminal()
	require.NoError(t, term.OpenDiff(testPair, nil))
	assert.ErrorIs(t, term.RenderFile(context.Background()), ErrNoFile)
}

func TestRenderThreads(t *testing.T) {
	md, err := NewMarkdown("notty", 80)
	require.NoError(t, err)

	var out strings.Builder
	term := NewTerminal(Options{Out: &out, Markdown: md})

	reactions := make([]review.Reaction, len(review.ReactionKinds))
	for i, k := range review.ReactionKinds {
		reactions[i] = review.Reaction{Kind: k}
	}
	reactions[0].Count = 2

	threads := []review.Thread{
		{
			ID:        "PRRT_1",
			Path:      "main.go",
			DiffSide:  review.SideRight,
			Line:      review.IntPtr(9),
			StartLine: review.IntPtr(7),
			Resolved:  true,
			Comments: []review.Comment{{
				Author:    "octocat",
				State:     review.CommentSubmitted,
				Body:      "Rename this",
				Reactions: reactions,
				CreatedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
			}},
		},
		{
			ID:       "PRRT_2",
			Path:     "util.go",
			DiffSide: review.SideLeft,
			Outdated: true,
			Line:     review.IntPtr(3),
			Comments: []review.Comment{{Author: "hubot", State: review.CommentPending, Body: "Drop it"}},
		},
	}

	require.NoError(t, term.RenderThreads(threads))

	got := out.String()
	header := lineContaining(t, got, "PRRT_1")
	assert.Contains(t, header, "main.go:7-9")
	assert.Contains(t, header, "RIGHT")
	assert.Contains(t, header, "resolved")

	second := lineContaining(t, got, "PRRT_2")
	assert.Contains(t, second, "util.go:3")
	assert.Contains(t, second, "pending")
	assert.Contains(t, second, "outdated")

	assert.Contains(t, got, "2026-01-02 03:04")
	assert.Contains(t, got, "Rename")
	assert.Contains(t, got, "+1 2")
	assert.NotContains(t, got, "eyes", "empty reaction buckets are hidden")
}

func TestRenderThreads_Empty(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(Options{Out: &out})

	require.NoError(t, term.RenderThreads(nil))
	assert.Contains(t, out.String(), "no threads")
}

func TestSpanLabel(t *testing.T) {
	assert.Equal(t, "4", spanLabel(4, 4))
	assert.Equal(t, "4", spanLabel(0, 4))
	assert.Equal(t, "2-4", spanLabel(2, 4))
}
