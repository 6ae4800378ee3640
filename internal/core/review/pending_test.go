package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPendingThread(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 4, 5, 999, time.FixedZone("CET", 3600))
	commit := NewRevisionRef("0123456789abcdef0123456789abcdef01234567")

	p := BuildPendingThread(PendingSeed{
		Path:   "cmd/main.go",
		Side:   SideRight,
		Start:  3,
		End:    9,
		Commit: commit,
		Hunk:   "@@ -1,4 +1,12 @@",
		Viewer: "octocat",
		Review: ReviewRef{ID: 77, NodeID: "PRR_1"},
		Now:    now,
	})

	assert.Equal(t, "2026-03-04T14:04:05Z", p.CreatedAt())
	assert.Equal(t, Anchor{Path: "cmd/main.go", Side: SideRight, StartSide: SideRight, Start: 3, End: 9}, p.Anchor())
	assert.True(t, p.IsMultiline())
	assert.Equal(t, "@@ -1,4 +1,12 @@", p.Hunk())
	assert.Equal(t, int64(77), p.Review().ID)

	c, ok := p.FirstComment()
	require.True(t, ok)
	assert.Nil(t, c.ID)
	assert.False(t, c.Persisted())
	assert.Equal(t, CommentPending, c.State)
	assert.Equal(t, " ", c.Body)
	assert.Equal(t, "octocat", c.Author)
	assert.True(t, c.ViewerDidAuthor)
	assert.True(t, c.ViewerCanUpdate)
	assert.True(t, c.ViewerCanDelete)
	assert.Nil(t, c.ReplyTo)
	assert.Equal(t, commit, c.OriginCommit)
	assert.Equal(t, int64(77), c.ReviewID)
	assert.False(t, c.IsPending(), "blank placeholder body is not a pending comment yet")

	require.Len(t, c.Reactions, 8)
	for i, r := range c.Reactions {
		assert.Equal(t, ReactionKinds[i], r.Kind)
		assert.Zero(t, r.Count)
	}
}

func TestPendingThread_Immutable(t *testing.T) {
	p := BuildPendingThread(PendingSeed{Path: "a.go", Side: SideLeft, Start: 1, End: 1})

	c := p.Comment()
	c.Body = "mutated"
	c.Reactions[0].Count = 5

	again := p.Comment()
	assert.Equal(t, " ", again.Body)
	assert.Zero(t, again.Reactions[0].Count)

	withBody := p.WithBody("hello")
	assert.Equal(t, "hello", withBody.Comment().Body)
	assert.Equal(t, " ", p.Comment().Body, "WithBody must not modify the receiver")
}

func TestAnchored(t *testing.T) {
	var items []Anchored = []Anchored{
		BuildPendingThread(PendingSeed{Path: "a.go", Side: SideRight, Start: 2, End: 2}),
		Normalize(Thread{ID: "T", Path: "b.go", DiffSide: SideLeft, OriginalLine: IntPtr(4)}),
	}

	assert.Equal(t, "a.go", items[0].Anchor().Path)
	assert.Equal(t, 4, items[1].Anchor().Start)

	_, ok := items[1].FirstComment()
	assert.False(t, ok)
}
