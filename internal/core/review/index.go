package review

import (
	"cmp"
	"slices"
)

// Predicate selects threads from a ThreadIndex.
type Predicate func(Thread) bool

// PendingComments matches threads with at least one pending, non-blank comment.
var PendingComments Predicate = Thread.HasPendingComment

// OnPath matches threads anchored to the given file.
func OnPath(path string) Predicate {
	return func(t Thread) bool { return t.Path == path }
}

// ThreadIndex stores normalized threads keyed by id.
type ThreadIndex struct {
	threads map[string]Thread
}

// NewThreadIndex returns an empty index.
func NewThreadIndex() *ThreadIndex {
	return &ThreadIndex{threads: make(map[string]Thread)}
}

// Replace discards every stored thread and inserts the given ones, normalized.
// It never merges: local-only threads must be re-added by the caller.
func (x *ThreadIndex) Replace(threads []Thread) {
	x.threads = make(map[string]Thread, len(threads))
	for _, t := range threads {
		x.threads[t.ID] = Normalize(t)
	}
}

// Clear empties the index.
func (x *ThreadIndex) Clear() {
	x.threads = make(map[string]Thread)
}

// Get returns the thread with the given id.
func (x *ThreadIndex) Get(id string) (Thread, bool) {
	t, ok := x.threads[id]
	return t, ok
}

// Len returns the number of stored threads.
func (x *ThreadIndex) Len() int {
	return len(x.threads)
}

// Select returns the threads matching pred ordered by path and line. A nil
// predicate selects everything. The result is empty, never nil, when nothing
// matches.
func (x *ThreadIndex) Select(pred Predicate) []Thread {
	out := make([]Thread, 0)
	for _, t := range x.threads {
		if pred == nil || pred(t) {
			out = append(out, t)
		}
	}

	slices.SortFunc(out, func(a, b Thread) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		if c := cmp.Compare(deref(a.StartLine), deref(b.StartLine)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	return out
}
