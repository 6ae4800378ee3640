package review

import (
	"context"
	"strings"
)

// FileStatus is the change status of a file within a diff.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileRemoved  FileStatus = "removed"
	FileRenamed  FileStatus = "renamed"
	FileCopied   FileStatus = "copied"
	FileChanged  FileStatus = "changed"
)

// LineRange is an inclusive range of comment-eligible lines.
type LineRange struct {
	Start int
	End   int
}

// Contains reports whether [start, end] lies within the range.
func (r LineRange) Contains(start, end int) bool {
	return r.Start <= start && r.End >= end
}

// DiffOp is the kind of a unified diff line.
type DiffOp int

const (
	DiffContext DiffOp = iota
	DiffAdd
	DiffDelete
)

// DiffLine is one line of a hunk. Left and Right are the line's position on
// each side, zero on the side the line does not exist on.
type DiffLine struct {
	Hunk  int
	Op    DiffOp
	Left  int
	Right int
	Text  string
}

// Patched is implemented by file entries that carry their hunk lines.
type Patched interface {
	DiffLines() []DiffLine
}

// FileContent is the materialized text of both sides of a changed file.
type FileContent struct {
	Left  string
	Right string
}

// Lines splits the given side into lines.
func (c FileContent) Lines(side DiffSide) []string {
	text := c.Right
	if side == SideLeft {
		text = c.Left
	}
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// FileEntry is a changed file as produced by a DiffProvider. Ranges and
// HunkHeaders are aligned positionally, one entry per hunk.
type FileEntry interface {
	Path() string
	Status() FileStatus
	Ranges(side DiffSide) []LineRange
	HunkHeaders() []string
	Fetch(ctx context.Context) (FileContent, error)
}

// RemoteReviewAPI is the remote side of a review.
type RemoteReviewAPI interface {
	// CreateReview opens a new pending review on the pull request.
	CreateReview(ctx context.Context, pr PullRequestRef) (ReviewPayload, error)
	// FetchPendingReviews lists the pull request's pending reviews and all of
	// its review threads.
	FetchPendingReviews(ctx context.Context, pr PullRequestRef) (PendingReviews, error)
	// SubmitReview finalizes a pending review.
	SubmitReview(ctx context.Context, pr PullRequestRef, review ReviewRef, event SubmitEvent, body string) error
	// DeleteReview deletes a pending review.
	DeleteReview(ctx context.Context, pr PullRequestRef, review ReviewRef) error
	// AddThread creates a thread on a pending review and returns the pull
	// request's refreshed thread list.
	AddThread(ctx context.Context, pr PullRequestRef, review ReviewRef, thread PendingThread, body string) ([]Thread, error)
}

// DiffProvider lists changed files.
type DiffProvider interface {
	ChangedFiles(ctx context.Context, pr PullRequestRef) ([]FileEntry, error)
	CommitChangedFiles(ctx context.Context, pr PullRequestRef, pair RevPair) ([]FileEntry, error)
}

// Selection is the line span selected in the current diff pane.
type Selection struct {
	Side  DiffSide
	Start int
	End   int
}

// View is the presentation boundary. The session only ever hands it
// normalized data.
type View interface {
	OpenDiff(pair RevPair, files []FileEntry) error
	CloseDiff()
	RenderThreadMarkers(file FileEntry, threads []Thread)
	// CurrentFile returns the file shown in the active diff pane; false when
	// the active pane is not a diff pane.
	CurrentFile() (FileEntry, bool)
	Selection() (Selection, bool)
	FocusFile(file FileEntry) error
	MoveCursor(side DiffSide, line int) error
	Notify(msg string)
}

// Prompter is the interactive surface for editing comments and confirming
// destructive actions.
type Prompter interface {
	// EditThread lets the user edit the pending thread's body. An empty result
	// means the user cancelled.
	EditThread(ctx context.Context, thread PendingThread) (string, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}
