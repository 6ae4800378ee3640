package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Level tells which coordinate system thread anchors are read in.
type Level string

const (
	LevelPR     Level = "PR"
	LevelCommit Level = "COMMIT"
)

// SessionOptions wires a Session to its collaborators.
type SessionOptions struct {
	Remote   RemoteReviewAPI
	Diffs    DiffProvider
	View     View
	Prompter Prompter
	Viewer   string // login of the current user
	Logger   zerolog.Logger
	Now      func() time.Time
}

// Session is the review of one pull request inside one editor context.
//
// Operations block until the remote answers. Only one operation may run at a
// time; a second one fails with ErrBusy. Tearing the session down cancels the
// in-flight operation, which then returns ErrSessionClosed without touching
// session state.
type Session struct {
	key      string
	pr       PullRequestRef
	viewer   string
	remote   RemoteReviewAPI
	diffs    DiffProvider
	view     View
	prompter Prompter
	log      zerolog.Logger
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	// onTerminate is set by the owning Registry.
	onTerminate func()

	mu       sync.Mutex
	closed   bool
	inflight string
	state    State
	review   *ReviewRef
	threads  *ThreadIndex
	files    []FileEntry
	revPair  RevPair
}

// NewSession creates an uninitialized session. Sessions are normally created
// through Registry.Open.
func NewSession(key string, pr PullRequestRef, opts SessionOptions) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		key:      key,
		pr:       pr,
		viewer:   opts.Viewer,
		remote:   opts.Remote,
		diffs:    opts.Diffs,
		view:     opts.View,
		prompter: opts.Prompter,
		log:      opts.Logger.With().Str("tab", key).Str("pr", pr.String()).Logger(),
		now:      now,
		ctx:      ctx,
		cancel:   cancel,
		state:    StateUninitialized,
		threads:  NewThreadIndex(),
		revPair:  pr.RevPair(),
	}
}

// Key returns the editor-context key owning the session.
func (s *Session) Key() string { return s.key }

// PullRequest returns the reviewed pull request.
func (s *Session) PullRequest() PullRequestRef { return s.pr }

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Review returns the remote review, if one is attached.
func (s *Session) Review() (ReviewRef, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.review == nil {
		return ReviewRef{}, false
	}
	return *s.review, true
}

// RevPair returns the diff endpoints currently shown.
func (s *Session) RevPair() RevPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revPair
}

// Files returns the current file list.
func (s *Session) Files() []FileEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FileEntry, len(s.files))
	copy(out, s.files)
	return out
}

// Threads returns every indexed thread.
func (s *Session) Threads() []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threads.Select(nil)
}

// SelectThreads returns the indexed threads matching pred, ordered by path
// and line.
func (s *Session) SelectThreads(pred Predicate) []Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threads.Select(pred)
}

// Thread returns the indexed thread with the given id.
func (s *Session) Thread(id string) (Thread, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threads.Get(id)
}

// PendingThreads returns the threads holding unsubmitted comments.
func (s *Session) PendingThreads() ([]Thread, error) {
	s.mu.Lock()
	threads := s.threads.Select(PendingComments)
	s.mu.Unlock()

	if len(threads) == 0 {
		return nil, &EmptyResultError{What: "pending comments"}
	}
	return threads, nil
}

// Level reports "PR" when the shown pair is the pull request's own endpoints
// and "COMMIT" otherwise.
func (s *Session) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level()
}

func (s *Session) level() Level {
	if s.revPair.Equal(s.pr.RevPair()) {
		return LevelPR
	}
	return LevelCommit
}

// Start creates a new remote review and opens the diff at pull request scope.
// The file list is loaded first so a listing failure leaves nothing behind
// remotely; GitHub allows only one pending review per user.
func (s *Session) Start(ctx context.Context) error {
	const op = "start review"

	ctx, done, err := s.begin(ctx, op, StateUninitialized)
	if err != nil {
		return err
	}
	defer done()

	files, err := s.diffs.ChangedFiles(ctx, s.pr)
	if err != nil {
		return s.transport("list changed files", err)
	}

	payload, err := s.remote.CreateReview(ctx, s.pr)
	if err != nil {
		return s.transport(op, err)
	}

	return s.activate(payload.Review, payload.Threads, files)
}

// Resume attaches the viewer's existing pending review.
func (s *Session) Resume(ctx context.Context) error {
	const op = "resume review"

	ctx, done, err := s.begin(ctx, op, StateUninitialized)
	if err != nil {
		return err
	}
	defer done()

	pending, err := s.remote.FetchPendingReviews(ctx, s.pr)
	if err != nil {
		return s.transport(op, err)
	}

	found, err := s.viewerReview(pending.Reviews)
	if err != nil {
		return err
	}

	files, err := s.diffs.ChangedFiles(ctx, s.pr)
	if err != nil {
		return s.transport("list changed files", err)
	}

	return s.activate(found.Ref, pending.Threads, files)
}

// FocusCommit scopes the diff to the given commit pair. When the pair is the
// pull request's own endpoints the cumulative file list is shown again.
// Threads are left untouched.
func (s *Session) FocusCommit(ctx context.Context, right, left RevisionRef) error {
	const op = "focus commit"

	ctx, done, err := s.begin(ctx, op, StateActive)
	if err != nil {
		return err
	}
	defer done()

	pair := RevPair{Left: left, Right: right}

	var files []FileEntry
	if pair.Equal(s.pr.RevPair()) {
		files, err = s.diffs.ChangedFiles(ctx, s.pr)
	} else {
		files, err = s.diffs.CommitChangedFiles(ctx, s.pr, pair)
	}
	if err != nil {
		return s.transport("list changed files", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.revPair = pair
	s.files = files
	level := s.level()
	s.mu.Unlock()

	s.log.Info().Str("pair", pair.String()).Str("level", string(level)).Int("files", len(files)).Msg("diff scope changed")

	s.view.CloseDiff()
	if err := s.view.OpenDiff(pair, files); err != nil {
		return fmt.Errorf("open diff: %w", err)
	}
	s.renderMarkers()
	s.prefetch(files)

	return nil
}

// AddComment builds a pending thread on the current selection, hands it to
// the editor and creates it remotely once the user supplies a body. With
// isSuggestion the body starts as a suggestion block holding the selected
// lines. It reports whether a comment was created; an empty body cancels.
func (s *Session) AddComment(ctx context.Context, isSuggestion bool) (bool, error) {
	const op = "add comment"

	ctx, done, err := s.begin(ctx, op, StateActive)
	if err != nil {
		return false, err
	}
	defer done()

	file, ok := s.view.CurrentFile()
	if !ok {
		return false, &InvalidContextError{Op: op, Reason: "not viewing a diff pane"}
	}
	sel, ok := s.view.Selection()
	if !ok {
		return false, &InvalidContextError{Op: op, Reason: "nothing selected in the diff pane"}
	}

	start, end := sel.Start, sel.End
	if start > end {
		start, end = end, start
	}

	match, err := ValidatePlacement(file, sel.Side, start, end)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	rev := *s.review
	pair := s.revPair
	s.mu.Unlock()

	pending := BuildPendingThread(PendingSeed{
		Path:   file.Path(),
		Side:   sel.Side,
		Start:  start,
		End:    end,
		Commit: pair.Ref(sel.Side),
		Hunk:   match.Header,
		Viewer: s.viewer,
		Review: rev,
		Now:    s.now(),

		Scope:    pair,
		Position: DiffPosition(file, sel.Side, end),
	})

	if isSuggestion {
		body, err := suggestionBody(ctx, file, sel.Side, start, end)
		if err != nil {
			return false, s.transport("load suggestion lines", err)
		}
		pending = pending.WithBody(body)
	}

	body, err := s.prompter.EditThread(ctx, pending)
	if err != nil {
		return false, fmt.Errorf("edit comment: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		s.log.Debug().Str("path", file.Path()).Msg("comment cancelled")
		return false, nil
	}

	threads, err := s.remote.AddThread(ctx, s.pr, rev, pending, body)
	if err != nil {
		return false, s.transport(op, err)
	}

	if err := s.replaceThreads(threads); err != nil {
		return false, err
	}

	s.log.Info().
		Str("path", file.Path()).
		Str("side", string(sel.Side)).
		Int("start", start).
		Int("end", end).
		Msg("comment added")

	return true, nil
}

// Submit finalizes the review. The review reference is kept after success.
func (s *Session) Submit(ctx context.Context, event SubmitEvent, body string) error {
	const op = "submit review"

	ctx, done, err := s.begin(ctx, op, StateActive)
	if err != nil {
		return err
	}
	defer done()

	rev, ok := s.Review()
	if !ok {
		return &InvalidContextError{Op: op, Reason: "no active review"}
	}

	if err := s.remote.SubmitReview(ctx, s.pr, rev, event, body); err != nil {
		return s.transport(op, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.state = StateTerminated
	s.mu.Unlock()

	s.view.CloseDiff()
	s.log.Info().Int64("review_id", rev.ID).Str("event", string(event)).Msg("review submitted")

	return nil
}

// Discard deletes the viewer's pending review after confirmation and tears
// the session down. Declining the confirmation is not an error.
func (s *Session) Discard(ctx context.Context) error {
	const op = "discard review"

	ctx, done, err := s.begin(ctx, op, StateUninitialized, StateActive)
	if err != nil {
		return err
	}
	defer done()

	pending, err := s.remote.FetchPendingReviews(ctx, s.pr)
	if err != nil {
		return s.transport(op, err)
	}

	found, err := s.viewerReview(pending.Reviews)
	if err != nil {
		return err
	}

	prompt := fmt.Sprintf("Delete the pending review on %s? Its pending comments will be lost.", s.pr)
	confirmed, err := s.prompter.Confirm(ctx, prompt)
	if err != nil {
		return fmt.Errorf("confirm discard: %w", err)
	}
	if !confirmed {
		s.log.Debug().Msg("discard declined")
		return nil
	}

	if err := s.remote.DeleteReview(ctx, s.pr, found.Ref); err != nil {
		return s.transport(op, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.review = nil
	s.threads.Clear()
	s.files = nil
	s.state = StateTerminated
	onTerminate := s.onTerminate
	s.mu.Unlock()

	s.log.Info().Int64("review_id", found.Ref.ID).Msg("review discarded")

	s.view.CloseDiff()
	s.detach()
	if onTerminate != nil {
		onTerminate()
	}

	return nil
}

// JumpToThread shows the thread's file and moves the cursor to its first
// line. At commit level the original line is used since later commits may
// have moved the thread. Failures to resolve the target are reported through
// the view and otherwise ignored.
func (s *Session) JumpToThread(ctx context.Context, thread Thread) error {
	const op = "jump to thread"

	s.mu.Lock()
	state := s.state
	files := s.files
	level := s.level()
	s.mu.Unlock()

	if state != StateActive {
		return &InvalidContextError{Op: op, Reason: "review is " + state.String()}
	}

	thread = Normalize(thread)

	var file FileEntry
	for _, f := range files {
		if f.Path() == thread.Path {
			file = f
			break
		}
	}
	if file == nil {
		s.view.Notify(fmt.Sprintf("%s is not part of the current diff", thread.Path))
		return nil
	}

	line := deref(thread.StartLine)
	if level == LevelCommit {
		line = deref(thread.OriginalStartLine)
	}
	side := thread.StartDiffSide
	if side == "" {
		side = thread.DiffSide
	}

	if err := s.view.FocusFile(file); err != nil {
		s.view.Notify(fmt.Sprintf("cannot show %s: %v", thread.Path, err))
		return nil
	}
	if err := s.view.MoveCursor(side, line); err != nil {
		s.view.Notify(fmt.Sprintf("cannot move to %s:%d: %v", thread.Path, line, err))
		return nil
	}

	s.log.Debug().Ctx(ctx).Str("thread", thread.ID).Int("line", line).Str("level", string(level)).Msg("jumped to thread")
	return nil
}

// Close closes the view and detaches the session.
func (s *Session) Close() {
	s.view.CloseDiff()
	s.detach()
}

// detach marks the session closed and cancels in-flight operations.
func (s *Session) detach() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}

// begin claims the single-flight token for op after checking the session is
// in one of the allowed states. The returned context is cancelled when either
// ctx or the session is.
func (s *Session) begin(ctx context.Context, op string, allowed ...State) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrSessionClosed
	}
	if s.inflight != "" {
		return nil, nil, fmt.Errorf("%s: %w (%s)", op, ErrBusy, s.inflight)
	}

	permitted := false
	for _, st := range allowed {
		if s.state == st {
			permitted = true
			break
		}
	}
	if !permitted {
		return nil, nil, &InvalidContextError{Op: op, Reason: "review is " + s.state.String()}
	}

	s.inflight = op
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)

	return opCtx, func() {
		stop()
		cancel()
		s.mu.Lock()
		s.inflight = ""
		s.mu.Unlock()
	}, nil
}

// activate moves the session to the active state at pull request scope.
func (s *Session) activate(rev ReviewRef, threads []Thread, files []FileEntry) error {
	pair := s.pr.RevPair()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.review = &rev
	s.threads.Replace(threads)
	s.files = files
	s.revPair = pair
	s.state = StateActive
	count := s.threads.Len()
	s.mu.Unlock()

	s.log.Info().Int64("review_id", rev.ID).Int("threads", count).Int("files", len(files)).Msg("review active")

	if err := s.view.OpenDiff(pair, files); err != nil {
		return fmt.Errorf("open diff: %w", err)
	}
	s.renderMarkers()
	s.prefetch(files)

	return nil
}

func (s *Session) replaceThreads(threads []Thread) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.threads.Replace(threads)
	s.mu.Unlock()

	s.renderMarkers()
	return nil
}

// RenderMarkers redraws thread markers after the editor focused another file.
func (s *Session) RenderMarkers() {
	s.mu.Lock()
	active := s.state == StateActive && !s.closed
	s.mu.Unlock()

	if active {
		s.renderMarkers()
	}
}

// renderMarkers redraws thread markers for the file currently shown.
func (s *Session) renderMarkers() {
	file, ok := s.view.CurrentFile()
	if !ok {
		return
	}

	s.mu.Lock()
	threads := s.threads.Select(OnPath(file.Path()))
	s.mu.Unlock()

	s.view.RenderThreadMarkers(file, threads)
}

// prefetch materializes the first file in the background; it is almost
// always the next thing opened.
func (s *Session) prefetch(files []FileEntry) {
	if len(files) == 0 {
		return
	}

	ctx := s.ctx
	first := files[0]
	go func() {
		if _, err := first.Fetch(ctx); err != nil && ctx.Err() == nil {
			s.log.Debug().Err(err).Str("path", first.Path()).Msg("prefetch failed")
		}
	}()
}

func (s *Session) viewerReview(reviews []Review) (Review, error) {
	if len(reviews) == 0 {
		s.log.Info().Msg("no pending reviews")
		return Review{}, &EmptyResultError{What: "pending reviews"}
	}

	var found []Review
	for _, r := range reviews {
		if r.Author == s.viewer {
			found = append(found, r)
		}
	}

	if len(found) == 0 {
		s.log.Info().Int("reviews", len(reviews)).Msg("no pending review authored by viewer")
		return Review{}, &EmptyResultError{What: "pending reviews authored by " + s.viewer}
	}
	if len(found) > 1 {
		s.log.Warn().Int("count", len(found)).Msg("multiple pending reviews authored by viewer, using the first")
	}

	return found[0], nil
}

func (s *Session) transport(op string, err error) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	s.log.Error().Err(err).Str("op", op).Msg("remote call failed")
	return &TransportError{Op: op, Err: err}
}

func suggestionBody(ctx context.Context, file FileEntry, side DiffSide, start, end int) (string, error) {
	content, err := file.Fetch(ctx)
	if err != nil {
		return "", err
	}

	lines := content.Lines(side)
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}

	var selected []string
	if start <= end {
		selected = lines[start-1 : end]
	}

	return "```suggestion\n" + strings.Join(selected, "\n") + "\n```", nil
}
