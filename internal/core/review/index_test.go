package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadIndex_Replace(t *testing.T) {
	x := NewThreadIndex()
	x.Replace([]Thread{{ID: "A"}, {ID: "B"}})
	require.Equal(t, 2, x.Len())

	x.Replace([]Thread{{ID: "C", OriginalLine: IntPtr(4)}})

	assert.Equal(t, 1, x.Len())
	_, ok := x.Get("A")
	assert.False(t, ok, "A must be gone after a full replacement")
	_, ok = x.Get("B")
	assert.False(t, ok, "B must be gone after a full replacement")

	c, ok := x.Get("C")
	require.True(t, ok)
	require.NotNil(t, c.Line, "threads are normalized on insert")
	assert.Equal(t, 4, *c.Line)
}

func TestThreadIndex_Select(t *testing.T) {
	x := NewThreadIndex()
	x.Replace([]Thread{
		{ID: "T1", Path: "a.go", Comments: []Comment{{State: CommentSubmitted, Body: "done"}}},
		{ID: "T2", Path: "a.go", Comments: []Comment{{State: CommentPending, Body: "fix"}}},
		{ID: "T3", Path: "b.go", Comments: []Comment{{State: CommentPending, Body: "  "}}},
	})

	t.Run("pending comments", func(t *testing.T) {
		got := x.Select(PendingComments)
		require.Len(t, got, 1)
		assert.Equal(t, "T2", got[0].ID)
	})

	t.Run("on path", func(t *testing.T) {
		got := x.Select(OnPath("a.go"))
		require.Len(t, got, 2)
		assert.Equal(t, "T1", got[0].ID)
		assert.Equal(t, "T2", got[1].ID)
	})

	t.Run("no match is empty not nil", func(t *testing.T) {
		got := x.Select(OnPath("missing.go"))
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("nil predicate selects all", func(t *testing.T) {
		assert.Len(t, x.Select(nil), 3)
	})
}

func TestThreadIndex_SelectOrdersByPathAndLine(t *testing.T) {
	x := NewThreadIndex()
	x.Replace([]Thread{
		{ID: "z", Path: "b.go", Line: IntPtr(1)},
		{ID: "y", Path: "a.go", Line: IntPtr(30)},
		{ID: "x", Path: "a.go", Line: IntPtr(2)},
	})

	got := x.Select(nil)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	assert.Equal(t, []string{"x", "y", "z"}, ids)
}

func TestThreadIndex_Clear(t *testing.T) {
	x := NewThreadIndex()
	x.Replace([]Thread{{ID: "A"}})
	x.Clear()
	assert.Equal(t, 0, x.Len())
}
