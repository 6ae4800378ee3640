package github

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/colonyops/revu/internal/core/review"
)

// hunks holds the comment-eligible ranges of one file's patch, aligned with
// the canonical hunk headers.
type hunks struct {
	left    []review.LineRange
	right   []review.LineRange
	headers []string
	lines   []review.DiffLine
}

// parseHunks reads the per-file patch GitHub returns, which carries hunks but
// no file header. A synthetic header is prepended so gitdiff accepts it.
func parseHunks(path, patch string) (hunks, error) {
	var h hunks
	if strings.TrimSpace(patch) == "" {
		return h, nil
	}
	if !strings.HasSuffix(patch, "\n") {
		patch += "\n"
	}

	src := fmt.Sprintf("--- a/%s\n+++ b/%s\n%s", path, path, patch)
	files, _, err := gitdiff.Parse(strings.NewReader(src))
	if err != nil {
		return h, fmt.Errorf("parse patch for %s: %w", path, err)
	}
	if len(files) == 0 {
		return h, nil
	}

	for i, frag := range files[0].TextFragments {
		h.left = append(h.left, fragmentRange(frag.OldPosition, frag.OldLines))
		h.right = append(h.right, fragmentRange(frag.NewPosition, frag.NewLines))
		h.headers = append(h.headers, strings.TrimSuffix(frag.Header(), "\n"))
		h.lines = append(h.lines, fragmentLines(i, frag)...)
	}

	return h, nil
}

// fragmentRange converts a hunk's start and length to an inclusive range. A
// side with no lines yields an empty range that contains nothing.
func fragmentRange(pos, lines int64) review.LineRange {
	if lines == 0 {
		return review.LineRange{Start: int(pos) + 1, End: int(pos)}
	}
	return review.LineRange{Start: int(pos), End: int(pos + lines - 1)}
}

// fragmentLines numbers each line of a hunk on the sides it exists on.
func fragmentLines(hunk int, frag *gitdiff.TextFragment) []review.DiffLine {
	left, right := int(frag.OldPosition), int(frag.NewPosition)

	out := make([]review.DiffLine, 0, len(frag.Lines))
	for _, l := range frag.Lines {
		dl := review.DiffLine{Hunk: hunk, Text: strings.TrimSuffix(l.Line, "\n")}
		switch l.Op {
		case gitdiff.OpAdd:
			dl.Op = review.DiffAdd
			dl.Right = right
			right++
		case gitdiff.OpDelete:
			dl.Op = review.DiffDelete
			dl.Left = left
			left++
		default:
			dl.Op = review.DiffContext
			dl.Left = left
			dl.Right = right
			left++
			right++
		}
		out = append(out, dl)
	}
	return out
}
