package github

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Ref names a pull request by repository and number.
type Ref struct {
	Owner  string
	Repo   string
	Number int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParseRef accepts "owner/repo#123", "owner/repo/pull/123" and pull request
// URLs.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty pull request reference")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return Ref{}, fmt.Errorf("parse pull request url: %w", err)
		}
		s = strings.Trim(u.Path, "/")
	}

	var repoPart, numPart string
	if i := strings.LastIndexByte(s, '#'); i >= 0 {
		repoPart, numPart = s[:i], s[i+1:]
	} else {
		parts := strings.Split(s, "/")
		if len(parts) != 4 || (parts[2] != "pull" && parts[2] != "pulls") {
			return Ref{}, fmt.Errorf("invalid pull request reference %q, expected owner/repo#number", s)
		}
		repoPart, numPart = parts[0]+"/"+parts[1], parts[3]
	}

	owner, repo, ok := strings.Cut(repoPart, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Ref{}, fmt.Errorf("invalid repository %q, expected owner/repo", repoPart)
	}

	number, err := strconv.Atoi(numPart)
	if err != nil || number <= 0 {
		return Ref{}, fmt.Errorf("invalid pull request number %q", numPart)
	}

	return Ref{Owner: owner, Repo: repo, Number: number}, nil
}
