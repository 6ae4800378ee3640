package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/colonyops/revu/internal/core/review"
)

// parseSide accepts LEFT/RIGHT in any case plus the old/new aliases.
func parseSide(s string) (review.DiffSide, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "RIGHT", "NEW":
		return review.SideRight, nil
	case "LEFT", "OLD":
		return review.SideLeft, nil
	default:
		return "", fmt.Errorf("invalid side %q, expected LEFT or RIGHT", s)
	}
}

// parseLines accepts "n", "a:b" or "a-b". The result is ordered.
func parseLines(s string) (start, end int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("--lines is required")
	}

	first, second, ranged := strings.Cut(s, ":")
	if !ranged {
		first, second, ranged = strings.Cut(s, "-")
	}

	start, err = strconv.Atoi(strings.TrimSpace(first))
	if err != nil || start < 1 {
		return 0, 0, fmt.Errorf("invalid line %q", first)
	}
	if !ranged {
		return start, start, nil
	}

	end, err = strconv.Atoi(strings.TrimSpace(second))
	if err != nil || end < 1 {
		return 0, 0, fmt.Errorf("invalid line %q", second)
	}

	if end < start {
		start, end = end, start
	}
	return start, end, nil
}
