// Package view is the terminal presentation of a review session. It keeps
// the state a pane-based editor would show (open diff, focused file, cursor,
// selection, thread markers) and prints it on demand.
package view

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
	"github.com/rs/zerolog"
)

// ErrNoDiff is returned by operations that need an open diff.
var ErrNoDiff = errors.New("no diff is open")

// ErrNoFile is returned by operations that need a focused file.
var ErrNoFile = errors.New("no file is focused")

// Cursor is the focused line in the diff pane.
type Cursor struct {
	Side review.DiffSide
	Line int
}

// Options configures a Terminal.
type Options struct {
	Out      io.Writer
	Err      io.Writer
	Markdown *Markdown
	Logger   zerolog.Logger
}

// Terminal implements review.View for a line-oriented terminal.
type Terminal struct {
	out    io.Writer
	errOut io.Writer
	md     *Markdown
	log    zerolog.Logger

	mu      sync.Mutex
	open    bool
	pair    review.RevPair
	files   []review.FileEntry
	current review.FileEntry
	sel     *review.Selection
	cursor  Cursor
	markers map[string][]review.Thread
}

var _ review.View = (*Terminal)(nil)

// NewTerminal creates a closed terminal view.
func NewTerminal(opts Options) *Terminal {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Err == nil {
		opts.Err = io.Discard
	}

	return &Terminal{
		out:     opts.Out,
		errOut:  opts.Err,
		md:      opts.Markdown,
		log:     opts.Logger,
		markers: map[string][]review.Thread{},
	}
}

// OpenDiff shows the file list for pair. Focus and markers start empty.
func (t *Terminal) OpenDiff(pair review.RevPair, files []review.FileEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.open = true
	t.pair = pair
	t.files = append([]review.FileEntry(nil), files...)
	t.current = nil
	t.sel = nil
	t.cursor = Cursor{}
	clear(t.markers)

	t.log.Debug().Str("pair", pair.String()).Int("files", len(files)).Msg("diff opened")
	return nil
}

// CloseDiff drops all diff state.
func (t *Terminal) CloseDiff() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return
	}

	t.open = false
	t.pair = review.RevPair{}
	t.files = nil
	t.current = nil
	t.sel = nil
	t.cursor = Cursor{}
	clear(t.markers)

	t.log.Debug().Msg("diff closed")
}

// RenderThreadMarkers records the threads to mark in file.
func (t *Terminal) RenderThreadMarkers(file review.FileEntry, threads []review.Thread) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return
	}
	t.markers[file.Path()] = append([]review.Thread(nil), threads...)
}

func (t *Terminal) CurrentFile() (review.FileEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open || t.current == nil {
		return nil, false
	}
	return t.current, true
}

func (t *Terminal) Selection() (review.Selection, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open || t.current == nil || t.sel == nil {
		return review.Selection{}, false
	}
	return *t.sel, true
}

// FocusFile shows file in the diff pane. The file must be part of the open
// diff. The cursor moves to the first changed line.
func (t *Terminal) FocusFile(file review.FileEntry) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return ErrNoDiff
	}

	entry, ok := t.lookup(file.Path())
	if !ok {
		return fmt.Errorf("%s is not part of the diff", file.Path())
	}

	t.current = entry
	t.sel = nil
	t.cursor = firstLine(entry)
	return nil
}

func (t *Terminal) MoveCursor(side review.DiffSide, line int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return ErrNoDiff
	}
	if t.current == nil {
		return ErrNoFile
	}
	if !side.IsValid() {
		return fmt.Errorf("invalid side %q", side)
	}
	if line < 1 {
		return fmt.Errorf("invalid line %d", line)
	}

	t.cursor = Cursor{Side: side, Line: line}
	return nil
}

// Notify prints msg to the error stream.
func (t *Terminal) Notify(msg string) {
	t.log.Info().Str("notice", msg).Msg("view notice")
	_, _ = fmt.Fprintln(t.errOut, styles.NoticeStyle.Render(msg))
}

// Select marks the line span start..end on side of the focused file and
// moves the cursor to start.
func (t *Terminal) Select(side review.DiffSide, start, end int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return ErrNoDiff
	}
	if t.current == nil {
		return ErrNoFile
	}
	if !side.IsValid() {
		return fmt.Errorf("invalid side %q", side)
	}
	if start < 1 || end < 1 {
		return fmt.Errorf("invalid selection %d-%d", start, end)
	}

	t.sel = &review.Selection{Side: side, Start: start, End: end}
	t.cursor = Cursor{Side: side, Line: min(start, end)}
	return nil
}

// Restore refocuses path and moves the cursor, as saved from an earlier
// invocation. A line of zero keeps the default cursor.
func (t *Terminal) Restore(path string, side review.DiffSide, line int) error {
	file, ok := t.File(path)
	if !ok {
		return fmt.Errorf("%s is not part of the diff", path)
	}
	if err := t.FocusFile(file); err != nil {
		return err
	}
	if line == 0 {
		return nil
	}
	return t.MoveCursor(side, line)
}

// File looks a file of the open diff up by path.
func (t *Terminal) File(path string) (review.FileEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.open {
		return nil, false
	}
	return t.lookup(path)
}

// Files returns the files of the open diff.
func (t *Terminal) Files() []review.FileEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]review.FileEntry(nil), t.files...)
}

func (t *Terminal) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

func (t *Terminal) Pair() review.RevPair {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pair
}

func (t *Terminal) Cursor() Cursor {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cursor
}

// Markers returns the threads marked in path.
func (t *Terminal) Markers(path string) []review.Thread {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]review.Thread(nil), t.markers[path]...)
}

func (t *Terminal) lookup(path string) (review.FileEntry, bool) {
	for _, f := range t.files {
		if f.Path() == path {
			return f, true
		}
	}
	return nil, false
}

// firstLine places the cursor on the first changed line. Removed files only
// have a left side.
func firstLine(file review.FileEntry) Cursor {
	side := review.SideRight
	if file.Status() == review.FileRemoved {
		side = review.SideLeft
	}

	line := 1
	for _, r := range file.Ranges(side) {
		if r.Start <= r.End {
			line = r.Start
			break
		}
	}
	return Cursor{Side: side, Line: line}
}
