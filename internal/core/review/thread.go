package review

// Anchor is the location a thread is attached to.
type Anchor struct {
	Path      string
	Side      DiffSide
	StartSide DiffSide
	Start     int
	End       int
}

// Anchored is the read interface shared by persisted threads and locally
// built pending threads.
type Anchored interface {
	Anchor() Anchor
	FirstComment() (Comment, bool)
}

// Thread is a sequence of comments anchored to a line span on one side of a
// diff. The four line fields are optional as returned by the remote; see
// Normalize for how missing values are derived.
type Thread struct {
	ID        string
	Path      string
	Comments  []Comment
	DiffSide  DiffSide
	Outdated  bool
	Resolved  bool
	Collapsed bool

	StartDiffSide     DiffSide
	Line              *int
	OriginalLine      *int
	StartLine         *int
	OriginalStartLine *int
}

// Normalize fills the line fields the remote may omit:
//
//   - Line falls back to OriginalLine.
//   - A thread without StartLine is a single-line thread: StartLine, StartDiffSide
//     and OriginalStartLine take the values of Line, DiffSide and OriginalLine.
//
// Normalize is idempotent and derives nothing else.
func Normalize(t Thread) Thread {
	if t.Line == nil {
		t.Line = copyInt(t.OriginalLine)
	}
	if t.StartLine == nil {
		t.StartLine = copyInt(t.Line)
		t.StartDiffSide = t.DiffSide
		t.OriginalStartLine = copyInt(t.OriginalLine)
	}
	return t
}

// Anchor returns the thread's current-coordinate location.
func (t Thread) Anchor() Anchor {
	side := t.StartDiffSide
	if side == "" {
		side = t.DiffSide
	}
	return Anchor{
		Path:      t.Path,
		Side:      t.DiffSide,
		StartSide: side,
		Start:     deref(t.StartLine),
		End:       deref(t.Line),
	}
}

// FirstComment returns the comment that opened the thread.
func (t Thread) FirstComment() (Comment, bool) {
	if len(t.Comments) == 0 {
		return Comment{}, false
	}
	return t.Comments[0], true
}

// HasPendingComment reports whether any comment in the thread is pending with
// a non-blank body.
func (t Thread) HasPendingComment() bool {
	for _, c := range t.Comments {
		if c.IsPending() {
			return true
		}
	}
	return false
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// IntPtr returns a pointer to v. Used when building threads from remote payloads.
func IntPtr(v int) *int {
	return &v
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}
