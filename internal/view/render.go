package view

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/colonyops/revu/internal/core/review"
	"github.com/colonyops/revu/internal/core/styles"
)

var reactionGlyphs = map[review.ReactionKind]string{
	review.ReactionThumbsUp:   "+1",
	review.ReactionThumbsDown: "-1",
	review.ReactionLaugh:      "laugh",
	review.ReactionHooray:     "hooray",
	review.ReactionConfused:   "confused",
	review.ReactionHeart:      "heart",
	review.ReactionRocket:     "rocket",
	review.ReactionEyes:       "eyes",
}

// RenderFiles prints the open diff's file list. The focused file is marked.
func (t *Terminal) RenderFiles() error {
	t.mu.Lock()
	open := t.open
	pair := t.pair
	files := append([]review.FileEntry(nil), t.files...)
	current := ""
	if t.current != nil {
		current = t.current.Path()
	}
	t.mu.Unlock()

	if !open {
		return ErrNoDiff
	}

	var b strings.Builder
	b.WriteString(styles.HeaderStyle.Render("diff " + pair.String()))
	b.WriteString("\n")

	if len(files) == 0 {
		b.WriteString(styles.MutedStyle.Render("  no changed files"))
		b.WriteString("\n")
	}

	for _, f := range files {
		mark := "  "
		if f.Path() == current {
			mark = styles.MarkerStyle.Render("> ")
		}
		b.WriteString(mark)
		b.WriteString(statusLabel(f.Status()))
		b.WriteString(" ")
		b.WriteString(styles.PathStyle.Render(f.Path()))
		b.WriteString("\n")

		for _, h := range f.HunkHeaders() {
			b.WriteString("      ")
			b.WriteString(styles.HunkStyle.Render(h))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// RenderFile prints the focused file. Files carrying hunk lines are shown as
// a unified diff; others as the cursor side's changed ranges.
func (t *Terminal) RenderFile(ctx context.Context) error {
	t.mu.Lock()
	file := t.current
	cursor := t.cursor
	var sel review.Selection
	if t.sel != nil {
		sel = *t.sel
	}
	markers := append([]review.Thread(nil), t.markers[pathOf(file)]...)
	t.mu.Unlock()

	if file == nil {
		return ErrNoFile
	}

	g := gutter{cursor: cursor, sel: sel, markers: markers}

	var b strings.Builder
	b.WriteString(statusLabel(file.Status()))
	b.WriteString(" ")
	b.WriteString(styles.PathStyle.Render(file.Path()))
	b.WriteString("\n")

	if p, ok := file.(review.Patched); ok {
		renderPatch(&b, file.HunkHeaders(), p.DiffLines(), g)
	} else {
		content, err := file.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("load %s: %w", file.Path(), err)
		}
		renderRanges(&b, file, content, cursor.Side, g)
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

// RenderThreads prints threads with their comments.
func (t *Terminal) RenderThreads(threads []review.Thread) error {
	var b strings.Builder

	if len(threads) == 0 {
		b.WriteString(styles.MutedStyle.Render("no threads"))
		b.WriteString("\n")
	}

	for i, th := range threads {
		if i > 0 {
			b.WriteString("\n")
		}
		writeThread(&b, t.md, th)
	}

	_, err := io.WriteString(t.out, b.String())
	return err
}

func writeThread(b *strings.Builder, md *Markdown, th review.Thread) {
	th = review.Normalize(th)
	a := th.Anchor()

	b.WriteString(styles.PathStyle.Render(fmt.Sprintf("%s:%s", a.Path, spanLabel(a.Start, a.End))))
	b.WriteString(" ")
	b.WriteString(styles.KeyStyle.Render(string(a.Side)))
	b.WriteString(" ")
	b.WriteString(styles.MutedStyle.Render(th.ID))

	if th.HasPendingComment() {
		b.WriteString(" ")
		b.WriteString(styles.PendingStyle.Render("pending"))
	}
	if th.Resolved {
		b.WriteString(" ")
		b.WriteString(styles.ResolvedStyle.Render("resolved"))
	}
	if th.Outdated {
		b.WriteString(" ")
		b.WriteString(styles.OutdatedStyle.Render("outdated"))
	}
	b.WriteString("\n")

	for _, c := range th.Comments {
		b.WriteString("  ")
		b.WriteString(styles.AuthorStyle.Render(c.Author))
		if !c.CreatedAt.IsZero() {
			b.WriteString(" ")
			b.WriteString(styles.MutedStyle.Render(c.CreatedAt.Format("2006-01-02 15:04")))
		}
		if c.State == review.CommentPending {
			b.WriteString(" ")
			b.WriteString(styles.PendingStyle.Render("(pending)"))
		}
		b.WriteString("\n")

		for _, line := range strings.Split(md.Render(c.Body), "\n") {
			b.WriteString("    ")
			b.WriteString(line)
			b.WriteString("\n")
		}

		if r := reactionLine(c.Reactions); r != "" {
			b.WriteString("    ")
			b.WriteString(styles.ReactionStyle.Render(r))
			b.WriteString("\n")
		}
	}
}

func reactionLine(reactions []review.Reaction) string {
	var parts []string
	for _, r := range reactions {
		if r.Count == 0 {
			continue
		}
		parts = append(parts, reactionGlyphs[r.Kind]+" "+strconv.Itoa(r.Count))
	}
	return strings.Join(parts, "  ")
}

// gutter decides the per-line decorations of a rendered file.
type gutter struct {
	cursor  Cursor
	sel     review.Selection
	markers []review.Thread
}

func (g gutter) selected(side review.DiffSide, line int) bool {
	if g.sel.Side != side || line == 0 {
		return false
	}
	lo, hi := min(g.sel.Start, g.sel.End), max(g.sel.Start, g.sel.End)
	return line >= lo && line <= hi
}

func (g gutter) marked(side review.DiffSide, line int) bool {
	if line == 0 {
		return false
	}
	for _, th := range g.markers {
		a := th.Anchor()
		if a.Side == side && line >= a.Start && line <= a.End {
			return true
		}
	}
	return false
}

func (g gutter) line(left, right int, text string) string {
	isCursor := (g.cursor.Side == review.SideLeft && left != 0 && left == g.cursor.Line) ||
		(g.cursor.Side == review.SideRight && right != 0 && right == g.cursor.Line)

	mark := " "
	if g.marked(review.SideLeft, left) || g.marked(review.SideRight, right) {
		mark = styles.MarkerStyle.Render("*")
	}
	sel := " "
	if g.selected(review.SideLeft, left) || g.selected(review.SideRight, right) {
		sel = styles.KeyStyle.Render("|")
	}

	row := styles.LineNumberStyle.Render(lineNo(left)) +
		styles.LineNumberStyle.Render(lineNo(right)) +
		" " + mark + sel + " " + text
	if isCursor {
		row = styles.CursorLineStyle.Render(row)
	}
	return row
}

func renderPatch(b *strings.Builder, headers []string, lines []review.DiffLine, g gutter) {
	hunk := -1
	for _, dl := range lines {
		if dl.Hunk != hunk {
			hunk = dl.Hunk
			if hunk < len(headers) {
				b.WriteString(styles.HunkStyle.Render(headers[hunk]))
				b.WriteString("\n")
			}
		}

		var text string
		switch dl.Op {
		case review.DiffAdd:
			text = styles.StatusAddedStyle.Render("+" + dl.Text)
		case review.DiffDelete:
			text = styles.StatusRemovedStyle.Render("-" + dl.Text)
		default:
			text = " " + dl.Text
		}

		b.WriteString(g.line(dl.Left, dl.Right, text))
		b.WriteString("\n")
	}
}

func renderRanges(b *strings.Builder, file review.FileEntry, content review.FileContent, side review.DiffSide, g gutter) {
	if !side.IsValid() {
		side = review.SideRight
	}

	lines := content.Lines(side)
	ranges := file.Ranges(side)
	headers := file.HunkHeaders()
	if len(ranges) == 0 {
		ranges = []review.LineRange{{Start: 1, End: len(lines)}}
	}

	for i, r := range ranges {
		if i < len(headers) {
			b.WriteString(styles.HunkStyle.Render(headers[i]))
			b.WriteString("\n")
		}
		for n := max(r.Start, 1); n <= r.End && n <= len(lines); n++ {
			left, right := 0, n
			if side == review.SideLeft {
				left, right = n, 0
			}
			b.WriteString(g.line(left, right, " "+lines[n-1]))
			b.WriteString("\n")
		}
	}
}

func statusLabel(s review.FileStatus) string {
	switch s {
	case review.FileAdded:
		return styles.StatusAddedStyle.Render("A")
	case review.FileRemoved:
		return styles.StatusRemovedStyle.Render("D")
	case review.FileRenamed, review.FileCopied:
		return styles.StatusRenamedStyle.Render("R")
	default:
		return styles.StatusModifiedStyle.Render("M")
	}
}

func spanLabel(start, end int) string {
	if start == end || start == 0 {
		return strconv.Itoa(end)
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}

func lineNo(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func pathOf(f review.FileEntry) string {
	if f == nil {
		return ""
	}
	return f.Path()
}
