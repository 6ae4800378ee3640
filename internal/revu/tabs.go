package revu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/colonyops/revu/internal/core/logging"
	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/tab"
	"github.com/colonyops/revu/internal/integration/github"
	"github.com/colonyops/revu/internal/view"
	"github.com/rs/zerolog"
)

// Remote is what the tab service needs from the code host.
type Remote interface {
	review.RemoteReviewAPI
	review.DiffProvider
	Viewer(ctx context.Context) (string, error)
	PullRequest(ctx context.Context, owner, repo string, number int) (review.PullRequestRef, error)
	FindCommit(ctx context.Context, pr review.PullRequestRef, id string) (review.Commit, error)
}

// Workspace is a tab's session attached to a terminal view for the length
// of one command.
type Workspace struct {
	Tab     tab.Tab
	Session *review.Session
	View    *view.Terminal
}

// Context returns ctx tagged with the tab key and, once known, the review id.
func (ws *Workspace) Context(ctx context.Context) context.Context {
	ctx = logging.WithTab(ctx, ws.Tab.Key)
	if rev, ok := ws.Session.Review(); ok {
		ctx = logging.WithReviewID(ctx, rev.ID)
	}
	return ctx
}

// TabService binds tabs to review sessions and persists what each tab shows.
type TabService struct {
	store    tab.Store
	remote   Remote
	registry *review.Registry
	markdown *view.Markdown
	log      zerolog.Logger
	out      io.Writer
	err      io.Writer
	now      func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewTabService creates a TabService. Views write to stdout and stderr.
func NewTabService(store tab.Store, remote Remote, md *view.Markdown, log zerolog.Logger, stdout, stderr io.Writer) *TabService {
	s := &TabService{
		store:      store,
		remote:     remote,
		markdown:   md,
		log:        log,
		out:        stdout,
		err:        stderr,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}

	s.registry = review.NewRegistry(review.RegistryHooks{
		OnCreate: func(key string, _ *review.Session) {
			s.log.Debug().Str("tab", key).Msg("session bound")
		},
		OnLeave: func(key string) {
			s.unbind(key)
			s.log.Debug().Str("tab", key).Msg("session left")
		},
		OnClose: s.forget,
	})

	return s
}

// Registry exposes the session registry.
func (s *TabService) Registry() *review.Registry { return s.registry }

// LeaveAll detaches every bound session without touching stored tabs.
func (s *TabService) LeaveAll() { s.registry.LeaveAll() }

// List returns all stored tabs.
func (s *TabService) List(ctx context.Context) ([]tab.Tab, error) {
	tabs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	return tabs, nil
}

// Resolve finds a tab by key or key prefix. An empty key selects the most
// recently used tab.
func (s *TabService) Resolve(ctx context.Context, key string) (tab.Tab, error) {
	if key == "" {
		t, err := s.store.Latest(ctx)
		if errors.Is(err, tab.ErrNotFound) {
			return tab.Tab{}, fmt.Errorf("no tabs: run 'revu start' first: %w", err)
		}
		return t, err
	}
	return s.store.Resolve(ctx, key)
}

// Start opens a new tab and creates a review on the pull request.
func (s *TabService) Start(ctx context.Context, ref github.Ref, prompter review.Prompter) (*Workspace, error) {
	return s.create(ctx, ref, prompter, (*review.Session).Start)
}

// Resume opens a new tab on the viewer's existing pending review.
func (s *TabService) Resume(ctx context.Context, ref github.Ref, prompter review.Prompter) (*Workspace, error) {
	return s.create(ctx, ref, prompter, (*review.Session).Resume)
}

func (s *TabService) create(ctx context.Context, ref github.Ref, prompter review.Prompter, activate func(*review.Session, context.Context) error) (*Workspace, error) {
	t := tab.New(ref.Owner, ref.Repo, ref.Number, s.now())

	ws, err := s.bind(ctx, t, prompter)
	if err != nil {
		return nil, err
	}

	if err := activate(ws.Session, ws.Context(ctx)); err != nil {
		s.registry.Leave(t.Key)
		return nil, err
	}

	if err := s.store.Save(ctx, t); err != nil {
		s.registry.Leave(t.Key)
		return nil, fmt.Errorf("save tab: %w", err)
	}

	s.log.Info().Ctx(ws.Context(ctx)).Str("pr", t.PullRequest()).Msg("tab opened")
	return ws, nil
}

// Bind attaches the tab's session without contacting the review. The session
// stays uninitialized.
func (s *TabService) Bind(ctx context.Context, key string, prompter review.Prompter) (*Workspace, error) {
	t, err := s.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if ws, ok := s.workspace(t.Key); ok {
		return ws, nil
	}
	return s.bind(ctx, t, prompter)
}

// Attach binds the tab, resumes its review and restores the diff scope,
// file and cursor saved by the previous command.
func (s *TabService) Attach(ctx context.Context, key string, prompter review.Prompter) (*Workspace, error) {
	t, err := s.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if ws, ok := s.workspace(t.Key); ok {
		if ws.Session.State() == review.StateActive {
			return ws, nil
		}
		s.registry.Leave(t.Key)
	}

	ws, err := s.bind(ctx, t, prompter)
	if err != nil {
		return nil, err
	}
	ctx = ws.Context(ctx)

	if err := ws.Session.Resume(ctx); err != nil {
		s.registry.Leave(t.Key)
		return nil, err
	}

	if pair, ok := t.Pair(); ok && !pair.Equal(ws.Session.PullRequest().RevPair()) {
		if err := ws.Session.FocusCommit(ctx, pair.Right, pair.Left); err != nil {
			s.registry.Leave(t.Key)
			return nil, fmt.Errorf("restore diff %s: %w", pair, err)
		}
	}

	if t.CurrentFile != "" {
		if err := ws.View.Restore(t.CurrentFile, t.CursorSide, t.CursorLine); err != nil {
			ws.View.Notify(fmt.Sprintf("cannot restore %s: %v", t.CurrentFile, err))
		} else {
			ws.Session.RenderMarkers()
		}
	}

	return ws, nil
}

// Save persists the workspace's diff scope, file and cursor. Terminated
// sessions are not saved.
func (s *TabService) Save(ctx context.Context, ws *Workspace) error {
	if ws.Session.State() != review.StateActive {
		return nil
	}

	t := ws.Tab
	t.Left, t.Right = "", ""
	if ws.Session.Level() == review.LevelCommit {
		pair := ws.Session.RevPair()
		t.Left, t.Right = pair.Left.Commit, pair.Right.Commit
	}

	t.CurrentFile, t.CursorSide, t.CursorLine = "", "", 0
	if f, ok := ws.View.CurrentFile(); ok {
		c := ws.View.Cursor()
		t.CurrentFile, t.CursorSide, t.CursorLine = f.Path(), c.Side, c.Line
	}

	if err := s.store.Save(ctx, t); err != nil {
		return fmt.Errorf("save tab %s: %w", t.ShortKey(), err)
	}
	ws.Tab = t
	return nil
}

// Close closes the tab. The stored tab is deleted even when no session is
// bound in this process.
func (s *TabService) Close(ctx context.Context, key string) (tab.Tab, error) {
	t, err := s.Resolve(ctx, key)
	if err != nil {
		return tab.Tab{}, err
	}

	if s.registry.Close(t.Key) {
		return t, nil
	}

	if err := s.store.Delete(ctx, t.Key); err != nil {
		return tab.Tab{}, fmt.Errorf("delete tab %s: %w", t.ShortKey(), err)
	}
	s.log.Info().Str("tab", t.Key).Msg("tab closed")
	return t, nil
}

// Focus scopes the diff to a single commit against its first parent, or back
// to the whole pull request.
func (s *TabService) Focus(ctx context.Context, ws *Workspace, commitID string, wholePR bool) error {
	pr := ws.Session.PullRequest()
	ctx = ws.Context(ctx)

	if wholePR {
		pair := pr.RevPair()
		return ws.Session.FocusCommit(ctx, pair.Right, pair.Left)
	}

	commit, err := s.remote.FindCommit(ctx, pr, commitID)
	if err != nil {
		return err
	}
	if commit.Parent.Commit == "" {
		return fmt.Errorf("commit %s has no parent to diff against", commit.Ref.Short)
	}
	return ws.Session.FocusCommit(ctx, commit.Ref, commit.Parent)
}

// Open focuses path in the workspace's diff.
func (s *TabService) Open(ws *Workspace, path string) error {
	file, ok := ws.View.File(path)
	if !ok {
		return fmt.Errorf("%s is not part of diff %s", path, ws.Session.RevPair())
	}
	if err := ws.View.FocusFile(file); err != nil {
		return err
	}
	ws.Session.RenderMarkers()
	return nil
}

// Comment selects start..end on side of the focused file and adds a comment
// there. It reports false when the editor returned no body.
func (s *TabService) Comment(ctx context.Context, ws *Workspace, side review.DiffSide, start, end int, suggestion bool) (bool, error) {
	if err := ws.View.Select(side, start, end); err != nil {
		return false, err
	}
	return ws.Session.AddComment(ws.Context(ctx), suggestion)
}

// Jump moves to the thread with the given id.
func (s *TabService) Jump(ctx context.Context, ws *Workspace, threadID string) error {
	thread, ok := ws.Session.Thread(threadID)
	if !ok {
		return fmt.Errorf("thread %s not found", threadID)
	}
	if err := ws.Session.JumpToThread(ws.Context(ctx), thread); err != nil {
		return err
	}
	ws.Session.RenderMarkers()
	return nil
}

// Submit submits the review and closes the tab.
func (s *TabService) Submit(ctx context.Context, ws *Workspace, event review.SubmitEvent, body string) error {
	if err := ws.Session.Submit(ws.Context(ctx), event, body); err != nil {
		return err
	}
	s.registry.Close(ws.Tab.Key)
	return nil
}

// Discard deletes the pending review after confirmation. It reports whether
// the review was deleted; the tab goes with it.
func (s *TabService) Discard(ctx context.Context, ws *Workspace) (bool, error) {
	if err := ws.Session.Discard(ws.Context(ctx)); err != nil {
		return false, err
	}
	return ws.Session.State() == review.StateTerminated, nil
}

func (s *TabService) bind(ctx context.Context, t tab.Tab, prompter review.Prompter) (*Workspace, error) {
	pr, err := s.remote.PullRequest(ctx, t.Owner, t.Repo, t.Number)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", t.PullRequest(), err)
	}

	viewer, err := s.remote.Viewer(ctx)
	if err != nil {
		return nil, fmt.Errorf("load viewer: %w", err)
	}

	term := view.NewTerminal(view.Options{
		Out:      s.out,
		Err:      s.err,
		Markdown: s.markdown,
		Logger:   s.log.With().Str("tab", t.Key).Logger(),
	})

	sess := s.registry.Open(t.Key, pr, review.SessionOptions{
		Remote:   s.remote,
		Diffs:    s.remote,
		View:     term,
		Prompter: prompter,
		Viewer:   viewer,
		Logger:   s.log,
		Now:      s.now,
	})

	ws := &Workspace{Tab: t, Session: sess, View: term}

	s.mu.Lock()
	s.workspaces[t.Key] = ws
	s.mu.Unlock()

	return ws, nil
}

func (s *TabService) workspace(key string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[key]
	return ws, ok
}

func (s *TabService) unbind(key string) {
	s.mu.Lock()
	delete(s.workspaces, key)
	s.mu.Unlock()
}

// forget drops a closed or discarded tab.
func (s *TabService) forget(key string) {
	s.unbind(key)

	if err := s.store.Delete(context.Background(), key); err != nil && !errors.Is(err, tab.ErrNotFound) {
		s.log.Error().Err(err).Str("tab", key).Msg("failed to delete tab")
		return
	}
	s.log.Info().Str("tab", key).Msg("tab closed")
}
