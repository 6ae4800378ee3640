// Package review implements the pull request review session: the thread index,
// comment placement rules, pending comment construction, and the session
// lifecycle that ties them to a remote review.
package review

import (
	"strconv"
	"strings"
	"time"
)

// DiffSide identifies which half of a two-pane diff a line anchor refers to.
type DiffSide string

const (
	SideLeft  DiffSide = "LEFT"
	SideRight DiffSide = "RIGHT"
)

// IsValid reports whether s is a known diff side.
func (s DiffSide) IsValid() bool {
	return s == SideLeft || s == SideRight
}

// CommentState is the lifecycle state of a review comment.
type CommentState string

const (
	CommentPending   CommentState = "PENDING"
	CommentSubmitted CommentState = "SUBMITTED"
)

// ReactionKind is one of the fixed reaction buckets a comment carries.
type ReactionKind string

const (
	ReactionThumbsUp   ReactionKind = "THUMBS_UP"
	ReactionThumbsDown ReactionKind = "THUMBS_DOWN"
	ReactionLaugh      ReactionKind = "LAUGH"
	ReactionHooray     ReactionKind = "HOORAY"
	ReactionConfused   ReactionKind = "CONFUSED"
	ReactionHeart      ReactionKind = "HEART"
	ReactionRocket     ReactionKind = "ROCKET"
	ReactionEyes       ReactionKind = "EYES"
)

// ReactionKinds lists every reaction bucket in display order.
var ReactionKinds = []ReactionKind{
	ReactionThumbsUp,
	ReactionThumbsDown,
	ReactionLaugh,
	ReactionHooray,
	ReactionConfused,
	ReactionHeart,
	ReactionRocket,
	ReactionEyes,
}

// Reaction is a single reaction bucket with its count.
type Reaction struct {
	Kind  ReactionKind
	Count int
}

// SubmitEvent is the verdict sent when a review is submitted.
type SubmitEvent string

const (
	EventApprove        SubmitEvent = "APPROVE"
	EventComment        SubmitEvent = "COMMENT"
	EventRequestChanges SubmitEvent = "REQUEST_CHANGES"
)

// ParseSubmitEvent accepts the canonical names as well as the lower-case,
// dashed forms used on the command line ("request-changes").
func ParseSubmitEvent(s string) (SubmitEvent, bool) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	switch SubmitEvent(norm) {
	case EventApprove, EventComment, EventRequestChanges:
		return SubmitEvent(norm), true
	default:
		return "", false
	}
}

// RevisionRef identifies a commit by its full and abbreviated object id.
type RevisionRef struct {
	Commit string
	Short  string
}

// NewRevisionRef builds a ref from a full commit id, deriving the short form.
func NewRevisionRef(commit string) RevisionRef {
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return RevisionRef{Commit: commit, Short: short}
}

// RevPair is the immutable pair of diff endpoints currently shown. Changing the
// diff scope produces a new RevPair.
type RevPair struct {
	Left  RevisionRef
	Right RevisionRef
}

// NewRevPair builds a pair from two commit ids.
func NewRevPair(left, right string) RevPair {
	return RevPair{Left: NewRevisionRef(left), Right: NewRevisionRef(right)}
}

// Equal compares both endpoints by full commit id.
func (p RevPair) Equal(o RevPair) bool {
	return p.Left.Commit == o.Left.Commit && p.Right.Commit == o.Right.Commit
}

// Ref returns the endpoint shown on the given side.
func (p RevPair) Ref(side DiffSide) RevisionRef {
	if side == SideLeft {
		return p.Left
	}
	return p.Right
}

// String renders the pair as "left..right" using short ids.
func (p RevPair) String() string {
	return p.Left.Short + ".." + p.Right.Short
}

// PullRequestRef identifies the pull request a session reviews.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
	NodeID string
	Title  string
	Base   RevisionRef
	Head   RevisionRef
}

// RevPair returns the pull request's own endpoints.
func (pr PullRequestRef) RevPair() RevPair {
	return RevPair{Left: pr.Base, Right: pr.Head}
}

// String renders the pull request as owner/repo#number.
func (pr PullRequestRef) String() string {
	return pr.Owner + "/" + pr.Repo + "#" + strconv.Itoa(pr.Number)
}

// Commit is one commit of a pull request together with its first parent.
type Commit struct {
	Ref     RevisionRef
	Parent  RevisionRef
	Message string
}

// Comment is a single review comment.
type Comment struct {
	ID              *int64 // nil until the comment exists remotely
	Author          string
	State           CommentState
	ReplyTo         *int64
	OriginCommit    RevisionRef
	Body            string
	ViewerCanUpdate bool
	ViewerCanDelete bool
	ViewerDidAuthor bool
	Reactions       []Reaction
	ReviewID        int64
	CreatedAt       time.Time
}

// Persisted reports whether the comment exists remotely.
func (c Comment) Persisted() bool { return c.ID != nil }

// IsPending reports whether the comment belongs to an unsubmitted review and
// carries text.
func (c Comment) IsPending() bool {
	return c.State == CommentPending && strings.TrimSpace(c.Body) != ""
}

// ReviewRef identifies a remote review. GitHub needs both forms: the numeric id
// for REST calls and the node id for GraphQL mutations.
type ReviewRef struct {
	ID     int64
	NodeID string
}

// Review is a remote review summary returned when listing pending reviews.
type Review struct {
	Ref    ReviewRef
	Author string
	State  string
}

// ReviewPayload is the result of creating a review.
type ReviewPayload struct {
	Review  ReviewRef
	Threads []Thread
}

// PendingReviews is the result of listing a pull request's pending reviews.
type PendingReviews struct {
	Reviews []Review
	Threads []Thread
}
