package review

import "strings"

// HunkMarker prefixes every canonical hunk header.
const HunkMarker = "@@"

// HunkMatch is the hunk a comment location falls into.
type HunkMatch struct {
	Index     int
	Range     LineRange
	Header    string
	WholeFile bool // the file is new; no particular hunk applies
}

// ValidatePlacement decides whether a comment may be created on lines
// [start, end] of the given side. Added files accept any span. Otherwise the
// first hunk range containing the whole span wins; ranges are disjoint.
func ValidatePlacement(file FileEntry, side DiffSide, start, end int) (HunkMatch, error) {
	if file.Status() == FileAdded {
		return HunkMatch{Index: -1, WholeFile: true}, nil
	}

	headers := file.HunkHeaders()
	for i, r := range file.Ranges(side) {
		if !r.Contains(start, end) {
			continue
		}

		var header string
		if i < len(headers) {
			header = normalizeHunkHeader(headers[i])
		}
		return HunkMatch{Index: i, Range: r, Header: header}, nil
	}

	return HunkMatch{}, &PlacementError{Path: file.Path(), Side: side, Start: start, End: end}
}

// normalizeHunkHeader adds the marker some diff back-ends leave off.
func normalizeHunkHeader(h string) string {
	if strings.HasPrefix(h, HunkMarker) {
		return h
	}
	return HunkMarker + " " + h
}

// DiffPosition returns the 1-based position of line on side within the file's
// unified diff, counting every hunk header after the first as a line. Zero
// means the file carries no hunk lines or the line is not part of the diff.
func DiffPosition(file FileEntry, side DiffSide, line int) int {
	patched, ok := file.(Patched)
	if !ok || line <= 0 {
		return 0
	}

	for i, dl := range patched.DiffLines() {
		n := dl.Right
		if side == SideLeft {
			n = dl.Left
		}
		if n == line {
			return i + 1 + dl.Hunk
		}
	}
	return 0
}
