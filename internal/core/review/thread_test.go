package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("line falls back to original line", func(t *testing.T) {
		got := Normalize(Thread{ID: "T", DiffSide: SideRight, OriginalLine: IntPtr(7), StartLine: IntPtr(5)})

		require.NotNil(t, got.Line)
		assert.Equal(t, 7, *got.Line)
		assert.Equal(t, 5, *got.StartLine, "explicit start is kept")
	})

	t.Run("missing start derives single-line anchor", func(t *testing.T) {
		got := Normalize(Thread{ID: "T", DiffSide: SideLeft, OriginalLine: IntPtr(7)})

		require.NotNil(t, got.StartLine)
		require.NotNil(t, got.OriginalStartLine)
		assert.Equal(t, 7, *got.Line)
		assert.Equal(t, 7, *got.StartLine)
		assert.Equal(t, 7, *got.OriginalStartLine)
		assert.Equal(t, SideLeft, got.StartDiffSide)
	})

	t.Run("start derives from current line not original", func(t *testing.T) {
		got := Normalize(Thread{ID: "T", DiffSide: SideRight, Line: IntPtr(12), OriginalLine: IntPtr(9)})

		assert.Equal(t, 12, *got.StartLine)
		assert.Equal(t, 9, *got.OriginalStartLine)
	})

	t.Run("no lines at all stays unset", func(t *testing.T) {
		got := Normalize(Thread{ID: "T", DiffSide: SideRight})

		assert.Nil(t, got.Line)
		assert.Nil(t, got.StartLine)
		assert.Equal(t, SideRight, got.StartDiffSide)
	})

	t.Run("does not alias input pointers", func(t *testing.T) {
		orig := IntPtr(3)
		got := Normalize(Thread{ID: "T", OriginalLine: orig})
		*got.Line = 99

		assert.Equal(t, 3, *orig)
	})
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []Thread{
		{ID: "a", DiffSide: SideRight, OriginalLine: IntPtr(7)},
		{ID: "b", DiffSide: SideLeft, Line: IntPtr(4), OriginalLine: IntPtr(2), StartLine: IntPtr(1), OriginalStartLine: IntPtr(1), StartDiffSide: SideLeft},
		{ID: "c", DiffSide: SideRight},
		{ID: "d", DiffSide: SideRight, Line: IntPtr(10)},
	}

	for _, in := range inputs {
		t.Run(in.ID, func(t *testing.T) {
			once := Normalize(in)
			twice := Normalize(once)
			assert.Equal(t, once, twice)
		})
	}
}

func TestThread_Anchor(t *testing.T) {
	th := Normalize(Thread{ID: "T", Path: "main.go", DiffSide: SideRight, Line: IntPtr(20), StartLine: IntPtr(18), StartDiffSide: SideLeft})

	assert.Equal(t, Anchor{Path: "main.go", Side: SideRight, StartSide: SideLeft, Start: 18, End: 20}, th.Anchor())
}
