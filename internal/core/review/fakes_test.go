package review

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

type fakeFile struct {
	path     string
	status   FileStatus
	ranges   map[DiffSide][]LineRange
	headers  []string
	content  FileContent
	fetchErr error
	fetches  atomic.Int32
}

func (f *fakeFile) Path() string                     { return f.path }
func (f *fakeFile) Status() FileStatus               { return f.status }
func (f *fakeFile) Ranges(side DiffSide) []LineRange { return f.ranges[side] }
func (f *fakeFile) HunkHeaders() []string            { return f.headers }

func (f *fakeFile) Fetch(ctx context.Context) (FileContent, error) {
	f.fetches.Add(1)
	return f.content, f.fetchErr
}

// patchedFile is a fakeFile that also carries its hunk lines.
type patchedFile struct {
	*fakeFile
	lines []DiffLine
}

func (f *patchedFile) DiffLines() []DiffLine { return f.lines }

type fakeRemote struct {
	mu sync.Mutex

	createPayload ReviewPayload
	createErr     error
	pending       PendingReviews
	pendingErr    error
	submitErr     error
	deleteErr     error
	addThreads    []Thread
	addErr        error

	// block, when set, is waited on inside FetchPendingReviews.
	block chan struct{}

	creates   int
	submitted []SubmitEvent
	deleted   []ReviewRef
	added     []PendingThread
	bodies    []string
}

func (r *fakeRemote) CreateReview(ctx context.Context, pr PullRequestRef) (ReviewPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	return r.createPayload, r.createErr
}

func (r *fakeRemote) FetchPendingReviews(ctx context.Context, pr PullRequestRef) (PendingReviews, error) {
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return PendingReviews{}, ctx.Err()
		}
	}
	return r.pending, r.pendingErr
}

func (r *fakeRemote) SubmitReview(ctx context.Context, pr PullRequestRef, review ReviewRef, event SubmitEvent, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.submitErr != nil {
		return r.submitErr
	}
	r.submitted = append(r.submitted, event)
	return nil
}

func (r *fakeRemote) DeleteReview(ctx context.Context, pr PullRequestRef, review ReviewRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deleted = append(r.deleted, review)
	return nil
}

func (r *fakeRemote) AddThread(ctx context.Context, pr PullRequestRef, review ReviewRef, thread PendingThread, body string) ([]Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return nil, r.addErr
	}
	r.added = append(r.added, thread)
	r.bodies = append(r.bodies, body)
	return r.addThreads, nil
}

type fakeDiffs struct {
	prFiles     []FileEntry
	commitFiles []FileEntry
	err         error
	commitCalls []RevPair
}

func (d *fakeDiffs) ChangedFiles(ctx context.Context, pr PullRequestRef) ([]FileEntry, error) {
	return d.prFiles, d.err
}

func (d *fakeDiffs) CommitChangedFiles(ctx context.Context, pr PullRequestRef, pair RevPair) ([]FileEntry, error) {
	d.commitCalls = append(d.commitCalls, pair)
	return d.commitFiles, d.err
}

type fakeView struct {
	open      bool
	opened    []RevPair
	closes    int
	current   FileEntry
	selection *Selection
	markers   map[string][]Thread
	focused   string
	cursor    Selection
	focusErr  error
	notices   []string
}

func (v *fakeView) OpenDiff(pair RevPair, files []FileEntry) error {
	v.open = true
	v.opened = append(v.opened, pair)
	return nil
}

func (v *fakeView) CloseDiff() {
	v.open = false
	v.closes++
}

func (v *fakeView) RenderThreadMarkers(file FileEntry, threads []Thread) {
	if v.markers == nil {
		v.markers = make(map[string][]Thread)
	}
	v.markers[file.Path()] = threads
}

func (v *fakeView) CurrentFile() (FileEntry, bool) {
	if !v.open || v.current == nil {
		return nil, false
	}
	return v.current, true
}

func (v *fakeView) Selection() (Selection, bool) {
	if v.selection == nil {
		return Selection{}, false
	}
	return *v.selection, true
}

func (v *fakeView) FocusFile(file FileEntry) error {
	if v.focusErr != nil {
		return v.focusErr
	}
	v.focused = file.Path()
	v.current = file
	return nil
}

func (v *fakeView) MoveCursor(side DiffSide, line int) error {
	v.cursor = Selection{Side: side, Start: line, End: line}
	return nil
}

func (v *fakeView) Notify(msg string) {
	v.notices = append(v.notices, msg)
}

type fakePrompter struct {
	body    string
	editErr error
	confirm bool
	edited  []PendingThread
	asked   int
}

func (p *fakePrompter) EditThread(ctx context.Context, thread PendingThread) (string, error) {
	p.edited = append(p.edited, thread)
	return p.body, p.editErr
}

func (p *fakePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	p.asked++
	return p.confirm, nil
}

var testPR = PullRequestRef{
	Owner:  "colonyops",
	Repo:   "revu",
	Number: 42,
	NodeID: "PR_kwDO",
	Base:   NewRevisionRef("base000000000000000000000000000000000000"),
	Head:   NewRevisionRef("head000000000000000000000000000000000000"),
}

type harness struct {
	remote   *fakeRemote
	diffs    *fakeDiffs
	view     *fakeView
	prompter *fakePrompter
}

func newHarness() *harness {
	return &harness{
		remote:   &fakeRemote{},
		diffs:    &fakeDiffs{},
		view:     &fakeView{},
		prompter: &fakePrompter{},
	}
}

func (h *harness) options() SessionOptions {
	return SessionOptions{
		Remote:   h.remote,
		Diffs:    h.diffs,
		View:     h.view,
		Prompter: h.prompter,
		Viewer:   "octocat",
		Logger:   zerolog.Nop(),
	}
}

func (h *harness) session() *Session {
	return NewSession("tab-1", testPR, h.options())
}
