package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/colonyops/revu/internal/core/config"
	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/data/stores"
	"github.com/colonyops/revu/internal/revu"
	"github.com/colonyops/revu/internal/view"
	"github.com/colonyops/revu/pkg/iojson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

const (
	baseSHA   = "b000000000000000000000000000000000000000"
	headSHA   = "f000000000000000000000000000000000000000"
	middleSHA = "c000000000000000000000000000000000000000"
)

type testFile struct {
	path string
}

func (f *testFile) Path() string              { return f.path }
func (f *testFile) Status() review.FileStatus { return review.FileModified }
func (f *testFile) HunkHeaders() []string     { return []string{"@@ -1,4 +1,4 @@"} }

func (f *testFile) Ranges(review.DiffSide) []review.LineRange {
	return []review.LineRange{{Start: 1, End: 4}}
}

func (f *testFile) Fetch(context.Context) (review.FileContent, error) {
	return review.FileContent{Left: "one\ntwo\nthree\nfour\n", Right: "one\nTWO\nthree\nfour\n"}, nil
}

// fakeRemote keeps review state across command runs like the real service.
type fakeRemote struct {
	mu sync.Mutex

	threads   []review.Thread
	submitted []review.SubmitEvent
	deleted   int
	bodies    []string

	// resolveOthers drops existing threads when a new one is added, as if
	// they were deleted remotely in the meantime.
	resolveOthers bool
}

func (r *fakeRemote) Viewer(context.Context) (string, error) { return "octocat", nil }

func (r *fakeRemote) PullRequest(_ context.Context, owner, repo string, number int) (review.PullRequestRef, error) {
	return review.PullRequestRef{
		Owner:  owner,
		Repo:   repo,
		Number: number,
		NodeID: "PR_1",
		Base:   review.NewRevisionRef(baseSHA),
		Head:   review.NewRevisionRef(headSHA),
	}, nil
}

func (r *fakeRemote) FindCommit(_ context.Context, _ review.PullRequestRef, id string) (review.Commit, error) {
	if strings.HasPrefix(middleSHA, id) {
		return review.Commit{Ref: review.NewRevisionRef(middleSHA), Parent: review.NewRevisionRef(baseSHA)}, nil
	}
	return review.Commit{}, &review.EmptyResultError{What: "commit " + id}
}

func (r *fakeRemote) CreateReview(context.Context, review.PullRequestRef) (review.ReviewPayload, error) {
	return review.ReviewPayload{Review: review.ReviewRef{ID: 7, NodeID: "PRR_7"}, Threads: r.snapshot()}, nil
}

func (r *fakeRemote) FetchPendingReviews(context.Context, review.PullRequestRef) (review.PendingReviews, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reviews []review.Review
	if len(r.submitted) == 0 && r.deleted == 0 {
		reviews = []review.Review{{Ref: review.ReviewRef{ID: 7, NodeID: "PRR_7"}, Author: "octocat", State: "PENDING"}}
	}
	return review.PendingReviews{Reviews: reviews, Threads: slices.Clone(r.threads)}, nil
}

func (r *fakeRemote) SubmitReview(_ context.Context, _ review.PullRequestRef, _ review.ReviewRef, event review.SubmitEvent, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, event)
	return nil
}

func (r *fakeRemote) DeleteReview(context.Context, review.PullRequestRef, review.ReviewRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted++
	return nil
}

func (r *fakeRemote) AddThread(_ context.Context, _ review.PullRequestRef, _ review.ReviewRef, thread review.PendingThread, body string) ([]review.Thread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	start, end := thread.Span()
	r.bodies = append(r.bodies, body)
	if r.resolveOthers {
		r.threads = nil
	}
	r.threads = append(r.threads, review.Thread{
		ID:        "PRRT_" + string(rune('a'+len(r.threads))),
		Path:      thread.Path(),
		DiffSide:  thread.Side(),
		StartLine: review.IntPtr(start),
		Line:      review.IntPtr(end),
		Comments:  []review.Comment{{Author: "octocat", State: review.CommentPending, Body: body}},
	})
	return slices.Clone(r.threads), nil
}

func (r *fakeRemote) ChangedFiles(context.Context, review.PullRequestRef) ([]review.FileEntry, error) {
	return []review.FileEntry{&testFile{path: "main.go"}, &testFile{path: "util.go"}}, nil
}

func (r *fakeRemote) CommitChangedFiles(context.Context, review.PullRequestRef, review.RevPair) ([]review.FileEntry, error) {
	return []review.FileEntry{&testFile{path: "main.go"}}, nil
}

func (r *fakeRemote) snapshot() []review.Thread {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.threads)
}

type harness struct {
	app    *revu.App
	remote *fakeRemote
	view   *bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REVU_TAB", "")

	database, err := stores.Open(dir)
	require.NoError(t, err)

	md, err := view.NewMarkdown("notty", 80)
	require.NoError(t, err)

	store := stores.NewTabStore(database)
	remote := &fakeRemote{}
	var viewOut bytes.Buffer
	tabs := revu.NewTabService(store, remote, md, zerolog.Nop(), &viewOut, &viewOut)

	cfg := config.DefaultConfig()
	cfg.DataDir = dir

	t.Cleanup(func() {
		tabs.LeaveAll()
		_ = database.Close()
	})

	return &harness{
		app:    revu.NewApp(tabs, store, remote, &cfg, database),
		remote: remote,
		view:   &viewOut,
	}
}

// run executes one command line the way a fresh process would: sessions are
// left when the command returns.
func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	flags := &Flags{Config: h.app.Config}
	var out bytes.Buffer

	h.stderr.Reset()
	root := NewRoot(flags, h.app)
	root.Writer = &out
	root.ErrWriter = &h.stderr
	root.ExitErrHandler = func(context.Context, *cli.Command, error) {}
	root.After = func(context.Context, *cli.Command) error {
		h.app.Tabs.LeaveAll()
		return nil
	}

	err := root.Run(context.Background(), append([]string{"revu"}, args...))
	return out.String(), err
}

func TestTabs_Empty(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "tabs")
	require.NoError(t, err)
	assert.Contains(t, out, "no open tabs")
}

func TestStart_InvalidRef(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "start", "not-a-pr")
	require.Error(t, err)

	out, err := h.run(t, "tabs")
	require.NoError(t, err)
	assert.Contains(t, out, "no open tabs")
}

func TestCommands_ReviewWorkflow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)
	assert.Contains(t, out, "review started")
	assert.Contains(t, out, "colonyops/revu#12")
	assert.Contains(t, h.view.String(), "util.go")

	_, err = h.run(t, "comment", "--lines", "2")
	require.Error(t, err, "no file is open yet")

	out, err = h.run(t, "comment", "--lines", "2", "--body", "rename this", "main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "comment added on main.go:2")
	assert.Equal(t, []string{"rename this"}, h.remote.bodies)

	out, err = h.run(t, "tabs", "--json")
	require.NoError(t, err)
	var listed tabJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &listed))
	assert.Equal(t, "colonyops/revu#12", listed.PullRequest)
	assert.Equal(t, "main.go", listed.File, "the open file survives between commands")

	out, err = h.run(t, "threads", "--pending", "--json")
	require.NoError(t, err)
	var thread threadJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &thread))
	assert.Equal(t, "main.go", thread.Path)
	assert.Equal(t, 2, thread.End)
	assert.True(t, thread.Pending)

	out, err = h.run(t, "submit", "--event", "approve")
	require.NoError(t, err)
	assert.Contains(t, out, "submitted (approve)")
	assert.Equal(t, []review.SubmitEvent{review.EventApprove}, h.remote.submitted)

	out, err = h.run(t, "tabs")
	require.NoError(t, err)
	assert.Contains(t, out, "no open tabs", "submitting closes the tab")
}

func TestComment_ReportsCreatedWhenOtherThreadsVanish(t *testing.T) {
	h := newHarness(t)
	h.remote.threads = []review.Thread{{
		ID:       "PRRT_other",
		Path:     "main.go",
		DiffSide: review.SideRight,
		Line:     review.IntPtr(3),
		Comments: []review.Comment{{Author: "hubot", State: review.CommentSubmitted, Body: "old"}},
	}}
	h.remote.resolveOthers = true

	_, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)

	out, err := h.run(t, "comment", "--lines", "2", "--body", "still here", "main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "comment added on main.go:2")
	assert.NotContains(t, out, "cancelled")
}

func TestComment_BlankBodyCancels(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)

	out, err := h.run(t, "comment", "--lines", "2", "--body", "   ", "main.go")
	require.NoError(t, err)
	assert.Contains(t, out, "comment cancelled")
	assert.Empty(t, h.remote.bodies)
}

func TestFocus_PersistsPair(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)

	_, err = h.run(t, "focus")
	require.Error(t, err)

	_, err = h.run(t, "focus", "c000")
	require.NoError(t, err)

	out, err := h.run(t, "tabs", "--json")
	require.NoError(t, err)
	var listed tabJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &listed))
	assert.Equal(t, baseSHA, listed.Left)
	assert.Equal(t, middleSHA, listed.Right)

	_, err = h.run(t, "focus", "--pr")
	require.NoError(t, err)

	out, err = h.run(t, "tabs", "--json")
	require.NoError(t, err)
	var again tabJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &again))
	assert.Empty(t, again.Right)
}

func TestDiscard(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)

	_, err = h.run(t, "discard")
	require.ErrorIs(t, err, view.ErrNotInteractive)
	assert.Zero(t, h.remote.deleted)

	out, err := h.run(t, "discard", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")
	assert.Equal(t, 1, h.remote.deleted)

	out, err = h.run(t, "tabs")
	require.NoError(t, err)
	assert.Contains(t, out, "no open tabs")
}

func TestTabsClose(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "start", "colonyops/revu#12")
	require.NoError(t, err)

	out, err := h.run(t, "tabs", "--json")
	require.NoError(t, err)
	var listed tabJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &listed))

	out, err = h.run(t, "tabs", "close", listed.Key[:8])
	require.NoError(t, err)
	assert.Contains(t, out, "closed tab")
	assert.Empty(t, h.remote.submitted)
	assert.Zero(t, h.remote.deleted, "closing a tab keeps the review")
}

func TestConfigValidate_JSON(t *testing.T) {
	h := newHarness(t)
	t.Setenv(h.app.Config.GitHub.TokenEnv, "token")

	out, err := h.run(t, "config", "validate", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"valid": true`)
	assert.Empty(t, h.stderr.String())
}

func TestConfigValidate_JSONInvalid(t *testing.T) {
	h := newHarness(t)
	t.Setenv(h.app.Config.GitHub.TokenEnv, "token")
	h.app.Config.GitHub.PageSize = 0

	out, err := h.run(t, "config", "validate", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, out, `"valid": false`)

	var failure iojson.Error
	require.NoError(t, json.Unmarshal(h.stderr.Bytes(), &failure))
	assert.Equal(t, "configuration is invalid", failure.Message)
	assert.EqualValues(t, 1, failure.Data["errors"])
}

func TestFlags_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	assert.Equal(t, "/cfg/revu/config.yaml", DefaultConfigPath())
	assert.Equal(t, "/data/revu", DefaultDataDir())
	assert.Equal(t, "/state/revu/revu.log", DefaultLogFile())
}
