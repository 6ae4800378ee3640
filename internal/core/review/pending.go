package review

import (
	"slices"
	"time"
)

// CreatedAtLayout is the fixed UTC timestamp format given to pending comments.
const CreatedAtLayout = "2006-01-02T15:04:05Z"

// placeholderBody stands in for the body until the user types one.
const placeholderBody = " "

// PendingSeed carries what is known about a comment before it exists remotely.
type PendingSeed struct {
	Path   string
	Side   DiffSide
	Start  int
	End    int
	Commit RevisionRef
	Hunk   string
	Viewer string
	Review ReviewRef
	Now    time.Time

	// Scope is the diff the span was validated against and Position the
	// span's last line within that diff, zero when unknown.
	Scope    RevPair
	Position int
}

// PendingThread is a transient, local-only thread. It has no remote id and is
// never stored in a ThreadIndex; once the remote create succeeds the refreshed
// thread list replaces the index contents.
type PendingThread struct {
	path      string
	side      DiffSide
	start     int
	end       int
	commit    RevisionRef
	hunk      string
	review    ReviewRef
	scope     RevPair
	position  int
	createdAt string
	comment   Comment
}

// BuildPendingThread constructs the pending thread for a new comment.
func BuildPendingThread(seed PendingSeed) PendingThread {
	now := seed.Now
	if now.IsZero() {
		now = time.Now()
	}
	createdAt := now.UTC().Format(CreatedAtLayout)
	// Round-trip through the layout so the comment carries exactly the
	// timestamp that is displayed.
	ts, _ := time.Parse(CreatedAtLayout, createdAt)

	reactions := make([]Reaction, len(ReactionKinds))
	for i, k := range ReactionKinds {
		reactions[i] = Reaction{Kind: k}
	}

	return PendingThread{
		path:      seed.Path,
		side:      seed.Side,
		start:     seed.Start,
		end:       seed.End,
		commit:    seed.Commit,
		hunk:      seed.Hunk,
		review:    seed.Review,
		scope:     seed.Scope,
		position:  seed.Position,
		createdAt: createdAt,
		comment: Comment{
			Author:          seed.Viewer,
			State:           CommentPending,
			OriginCommit:    seed.Commit,
			Body:            placeholderBody,
			ViewerCanUpdate: true,
			ViewerCanDelete: true,
			ViewerDidAuthor: true,
			Reactions:       reactions,
			ReviewID:        seed.Review.ID,
			CreatedAt:       ts,
		},
	}
}

// WithBody returns a copy whose comment body is replaced.
func (p PendingThread) WithBody(body string) PendingThread {
	p.comment.Body = body
	p.comment.Reactions = slices.Clone(p.comment.Reactions)
	return p
}

// Anchor implements Anchored.
func (p PendingThread) Anchor() Anchor {
	return Anchor{Path: p.path, Side: p.side, StartSide: p.side, Start: p.start, End: p.end}
}

// FirstComment implements Anchored. A pending thread always has exactly one
// comment.
func (p PendingThread) FirstComment() (Comment, bool) {
	return p.Comment(), true
}

// Comment returns a copy of the pending comment.
func (p PendingThread) Comment() Comment {
	c := p.comment
	c.Reactions = slices.Clone(p.comment.Reactions)
	return c
}

// Path returns the file path.
func (p PendingThread) Path() string { return p.path }

// Side returns the diff side.
func (p PendingThread) Side() DiffSide { return p.side }

// Span returns the first and last line.
func (p PendingThread) Span() (int, int) { return p.start, p.end }

// IsMultiline reports whether the thread spans more than one line.
func (p PendingThread) IsMultiline() bool { return p.start != p.end }

// Commit returns the commit the comment was made against.
func (p PendingThread) Commit() RevisionRef { return p.commit }

// Hunk returns the header of the hunk containing the span. Empty for added files.
func (p PendingThread) Hunk() string { return p.hunk }

// Review returns the owning review.
func (p PendingThread) Review() ReviewRef { return p.review }

// Scope returns the diff endpoints the span was validated against.
func (p PendingThread) Scope() RevPair { return p.scope }

// Position returns the 1-based diff position of the span's last line within
// Scope, or zero.
func (p PendingThread) Position() int { return p.position }

// CommitScoped reports whether the span was validated against a diff other
// than the pull request's own. Such comments must be anchored to the scope's
// commit rather than to the head diff.
func (p PendingThread) CommitScoped(pr RevPair) bool {
	return p.scope.Right.Commit != "" && !p.scope.Equal(pr)
}

// CreatedAt returns the creation timestamp in CreatedAtLayout.
func (p PendingThread) CreatedAt() string { return p.createdAt }
