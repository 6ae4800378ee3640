package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements run against the tabs table.
type Queries struct {
	db DBTX
}

// New binds a query set to a connection or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Tab is a row of the tabs table. Timestamps are unix nanoseconds.
type Tab struct {
	Key         string
	Owner       string
	Repo        string
	Number      int64
	LeftCommit  string
	RightCommit string
	CurrentFile string
	CursorSide  string
	CursorLine  int64
	CreatedAt   int64
	UpdatedAt   int64
}

const tabColumns = `key, owner, repo, number, left_commit, right_commit, current_file, cursor_side, cursor_line, created_at, updated_at`

const saveTab = `INSERT INTO tabs (` + tabColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
    owner = excluded.owner,
    repo = excluded.repo,
    number = excluded.number,
    left_commit = excluded.left_commit,
    right_commit = excluded.right_commit,
    current_file = excluded.current_file,
    cursor_side = excluded.cursor_side,
    cursor_line = excluded.cursor_line,
    updated_at = excluded.updated_at`

// SaveTab inserts or updates a tab. created_at is kept on update.
func (q *Queries) SaveTab(ctx context.Context, t Tab) error {
	_, err := q.db.ExecContext(ctx, saveTab,
		t.Key, t.Owner, t.Repo, t.Number,
		t.LeftCommit, t.RightCommit, t.CurrentFile, t.CursorSide, t.CursorLine,
		t.CreatedAt, t.UpdatedAt,
	)
	return err
}

const getTab = `SELECT ` + tabColumns + ` FROM tabs WHERE key = ?`

// GetTab returns sql.ErrNoRows when the key is unknown.
func (q *Queries) GetTab(ctx context.Context, key string) (Tab, error) {
	return scanTab(q.db.QueryRowContext(ctx, getTab, key))
}

const latestTab = `SELECT ` + tabColumns + ` FROM tabs ORDER BY updated_at DESC, key LIMIT 1`

// LatestTab returns the most recently updated tab.
func (q *Queries) LatestTab(ctx context.Context) (Tab, error) {
	return scanTab(q.db.QueryRowContext(ctx, latestTab))
}

const listTabs = `SELECT ` + tabColumns + ` FROM tabs ORDER BY created_at, key`

// ListTabs returns every tab, oldest first.
func (q *Queries) ListTabs(ctx context.Context) ([]Tab, error) {
	rows, err := q.db.QueryContext(ctx, listTabs)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Tab
	for rows.Next() {
		t, err := scanTab(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTab = `DELETE FROM tabs WHERE key = ?`

// DeleteTab removes a tab and reports how many rows were deleted.
func (q *Queries) DeleteTab(ctx context.Context, key string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTab, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTab(row scanner) (Tab, error) {
	var t Tab
	err := row.Scan(
		&t.Key, &t.Owner, &t.Repo, &t.Number,
		&t.LeftCommit, &t.RightCommit, &t.CurrentFile, &t.CursorSide, &t.CursorLine,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}
