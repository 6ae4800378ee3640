package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	type events struct {
		created, left, closed []string
	}

	newRegistry := func() (*Registry, *events) {
		ev := &events{}
		reg := NewRegistry(RegistryHooks{
			OnCreate: func(key string, s *Session) { ev.created = append(ev.created, key) },
			OnLeave:  func(key string) { ev.left = append(ev.left, key) },
			OnClose:  func(key string) { ev.closed = append(ev.closed, key) },
		})
		return reg, ev
	}

	t.Run("open is get-or-create", func(t *testing.T) {
		reg, ev := newRegistry()
		h := newHarness()

		a := reg.Open("tab-a", testPR, h.options())
		again := reg.Open("tab-a", testPR, h.options())
		b := reg.Open("tab-b", testPR, h.options())

		assert.Same(t, a, again)
		assert.NotSame(t, a, b)
		assert.Equal(t, []string{"tab-a", "tab-b"}, reg.Keys())
		assert.Equal(t, []string{"tab-a", "tab-b"}, ev.created)
	})

	t.Run("rebinding a key to another pull request", func(t *testing.T) {
		reg, _ := newRegistry()
		h := newHarness()

		first := reg.Open("tab-a", testPR, h.options())
		other := testPR
		other.Number = 43
		second := reg.Open("tab-a", other, h.options())

		assert.NotSame(t, first, second)
		assert.ErrorIs(t, first.Start(context.Background()), ErrSessionClosed, "replaced session is detached")
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("submitted session is replaced on open", func(t *testing.T) {
		reg, ev := newRegistry()
		h := newHarness()
		h.remote.createPayload = ReviewPayload{Review: ReviewRef{ID: 9, NodeID: "PRR_9"}}

		first := reg.Open("tab-a", testPR, h.options())
		require.NoError(t, first.Start(context.Background()))
		require.NoError(t, first.Submit(context.Background(), EventComment, ""))
		require.Equal(t, StateTerminated, first.State())

		second := reg.Open("tab-a", testPR, h.options())
		assert.NotSame(t, first, second)
		assert.Equal(t, StateUninitialized, second.State())
		require.NoError(t, second.Start(context.Background()))
		assert.Equal(t, StateActive, second.State())
		assert.Equal(t, []string{"tab-a", "tab-a"}, ev.created)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("leave detaches without closing", func(t *testing.T) {
		reg, ev := newRegistry()
		h := newHarness()

		s := reg.Open("tab-a", testPR, h.options())
		reg.Leave("tab-a")
		reg.Leave("tab-a")

		_, ok := reg.Get("tab-a")
		assert.False(t, ok)
		assert.Equal(t, []string{"tab-a"}, ev.left)
		assert.Empty(t, ev.closed)
		assert.ErrorIs(t, s.Resume(context.Background()), ErrSessionClosed)
	})

	t.Run("close closes the view", func(t *testing.T) {
		reg, ev := newRegistry()
		h := newHarness()

		s := reg.Open("tab-a", testPR, h.options())
		require.NoError(t, s.Start(context.Background()))
		require.True(t, h.view.open)

		assert.True(t, reg.Close("tab-a"))
		assert.False(t, reg.Close("tab-a"))
		assert.False(t, h.view.open)
		assert.Equal(t, []string{"tab-a"}, ev.closed)
	})

	t.Run("leave all", func(t *testing.T) {
		reg, ev := newRegistry()
		h := newHarness()

		reg.Open("tab-a", testPR, h.options())
		reg.Open("tab-b", testPR, h.options())
		reg.LeaveAll()

		assert.Zero(t, reg.Len())
		assert.ElementsMatch(t, []string{"tab-a", "tab-b"}, ev.left)
	})
}
