// Package tab defines editor contexts. A tab owns at most one review session
// and remembers what it was showing between invocations.
package tab

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a tab does not exist.
var ErrNotFound = errors.New("tab not found")

// Tab is a persisted editor context.
type Tab struct {
	Key    string
	Owner  string
	Repo   string
	Number int

	// Left and Right are the commit ids of the diff shown last. Empty means
	// the pull request's own endpoints.
	Left  string
	Right string

	CurrentFile string
	CursorSide  review.DiffSide
	CursorLine  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a tab for a pull request with a fresh key.
func New(owner, repo string, number int, now time.Time) Tab {
	return Tab{
		Key:       uuid.NewString(),
		Owner:     owner,
		Repo:      repo,
		Number:    number,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PullRequest renders the reviewed pull request as owner/repo#number.
func (t Tab) PullRequest() string {
	return t.Owner + "/" + t.Repo + "#" + strconv.Itoa(t.Number)
}

// ShortKey is the key prefix shown in listings.
func (t Tab) ShortKey() string {
	if len(t.Key) > 8 {
		return t.Key[:8]
	}
	return t.Key
}

// Pair returns the stored diff scope, if any.
func (t Tab) Pair() (review.RevPair, bool) {
	if t.Left == "" || t.Right == "" {
		return review.RevPair{}, false
	}
	return review.NewRevPair(t.Left, t.Right), true
}

// Store persists tabs.
type Store interface {
	// List returns every tab, oldest first.
	List(ctx context.Context) ([]Tab, error)
	// Get returns ErrNotFound for unknown keys.
	Get(ctx context.Context, key string) (Tab, error)
	// Latest returns the most recently used tab or ErrNotFound.
	Latest(ctx context.Context) (Tab, error)
	// Resolve accepts a full key or a unique key prefix.
	Resolve(ctx context.Context, key string) (Tab, error)
	Save(ctx context.Context, t Tab) error
	// Delete returns ErrNotFound for unknown keys.
	Delete(ctx context.Context, key string) error
}
