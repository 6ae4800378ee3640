package stores

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/tab"
	"github.com/colonyops/revu/internal/data/db"
)

// TabStore implements tab.Store using SQLite.
type TabStore struct {
	db *db.DB
}

var _ tab.Store = (*TabStore)(nil)

// NewTabStore creates a new SQLite-backed tab store.
func NewTabStore(db *db.DB) *TabStore {
	return &TabStore{db: db}
}

// List returns all tabs.
func (s *TabStore) List(ctx context.Context) ([]tab.Tab, error) {
	rows, err := s.db.Queries().ListTabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tabs: %w", err)
	}

	tabs := make([]tab.Tab, 0, len(rows))
	for _, row := range rows {
		tabs = append(tabs, rowToTab(row))
	}
	return tabs, nil
}

// Get returns a tab by key. Returns ErrNotFound if not found.
func (s *TabStore) Get(ctx context.Context, key string) (tab.Tab, error) {
	row, err := s.db.Queries().GetTab(ctx, key)
	if IsNotFoundError(err) {
		return tab.Tab{}, tab.ErrNotFound
	}
	if err != nil {
		return tab.Tab{}, fmt.Errorf("failed to get tab: %w", err)
	}
	return rowToTab(row), nil
}

// Latest returns the most recently updated tab.
func (s *TabStore) Latest(ctx context.Context) (tab.Tab, error) {
	row, err := s.db.Queries().LatestTab(ctx)
	if IsNotFoundError(err) {
		return tab.Tab{}, tab.ErrNotFound
	}
	if err != nil {
		return tab.Tab{}, fmt.Errorf("failed to get latest tab: %w", err)
	}
	return rowToTab(row), nil
}

// Resolve looks a tab up by full key, falling back to a unique prefix match.
func (s *TabStore) Resolve(ctx context.Context, key string) (tab.Tab, error) {
	t, err := s.Get(ctx, key)
	if err == nil || key == "" {
		return t, err
	}

	all, err := s.List(ctx)
	if err != nil {
		return tab.Tab{}, err
	}

	var matches []tab.Tab
	for _, candidate := range all {
		if strings.HasPrefix(candidate.Key, key) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return tab.Tab{}, tab.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return tab.Tab{}, fmt.Errorf("tab key %q is ambiguous (%d matches)", key, len(matches))
	}
}

// Save creates or updates a tab. UpdatedAt is stamped on every save.
func (s *TabStore) Save(ctx context.Context, t tab.Tab) error {
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	err := s.db.Queries().SaveTab(ctx, db.Tab{
		Key:         t.Key,
		Owner:       t.Owner,
		Repo:        t.Repo,
		Number:      int64(t.Number),
		LeftCommit:  t.Left,
		RightCommit: t.Right,
		CurrentFile: t.CurrentFile,
		CursorSide:  string(t.CursorSide),
		CursorLine:  int64(t.CursorLine),
		CreatedAt:   t.CreatedAt.UnixNano(),
		UpdatedAt:   t.UpdatedAt.UnixNano(),
	})
	if err != nil {
		return fmt.Errorf("failed to save tab: %w", err)
	}
	return nil
}

// Delete removes a tab by key. Returns ErrNotFound if not found.
func (s *TabStore) Delete(ctx context.Context, key string) error {
	n, err := s.db.Queries().DeleteTab(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to delete tab: %w", err)
	}
	if n == 0 {
		return tab.ErrNotFound
	}
	return nil
}

func rowToTab(row db.Tab) tab.Tab {
	return tab.Tab{
		Key:         row.Key,
		Owner:       row.Owner,
		Repo:        row.Repo,
		Number:      int(row.Number),
		Left:        row.LeftCommit,
		Right:       row.RightCommit,
		CurrentFile: row.CurrentFile,
		CursorSide:  review.DiffSide(row.CursorSide),
		CursorLine:  int(row.CursorLine),
		CreatedAt:   time.Unix(0, row.CreatedAt),
		UpdatedAt:   time.Unix(0, row.UpdatedAt),
	}
}
