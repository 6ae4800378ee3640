package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/revu/internal/core/review"
	gh "github.com/google/go-github/v68/github"
)

// fileEntry is a changed file between two revisions. Content is fetched on
// first use and cached.
type fileEntry struct {
	client   *Client
	owner    string
	repo     string
	pair     review.RevPair
	path     string
	prevPath string
	status   review.FileStatus
	hunks    hunks

	mu      sync.Mutex
	content *review.FileContent
}

var (
	_ review.FileEntry = (*fileEntry)(nil)
	_ review.Patched   = (*fileEntry)(nil)
)

func (f *fileEntry) Path() string              { return f.path }
func (f *fileEntry) Status() review.FileStatus { return f.status }

// PreviousPath returns the path on the left side, which differs from Path
// for renames.
func (f *fileEntry) PreviousPath() string {
	if f.prevPath != "" {
		return f.prevPath
	}
	return f.path
}

func (f *fileEntry) Ranges(side review.DiffSide) []review.LineRange {
	src := f.hunks.right
	if side == review.SideLeft {
		src = f.hunks.left
	}
	out := make([]review.LineRange, len(src))
	copy(out, src)
	return out
}

func (f *fileEntry) DiffLines() []review.DiffLine {
	out := make([]review.DiffLine, len(f.hunks.lines))
	copy(out, f.hunks.lines)
	return out
}

func (f *fileEntry) HunkHeaders() []string {
	out := make([]string, len(f.hunks.headers))
	copy(out, f.hunks.headers)
	return out
}

// Fetch loads both sides of the file. Sides that do not exist, like the left
// side of an added file, are empty.
func (f *fileEntry) Fetch(ctx context.Context) (review.FileContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.content != nil {
		return *f.content, nil
	}

	var content review.FileContent
	var err error

	if f.status != review.FileAdded {
		content.Left, err = f.client.fileAt(ctx, f.owner, f.repo, f.PreviousPath(), f.pair.Left.Commit)
		if err != nil {
			return review.FileContent{}, err
		}
	}
	if f.status != review.FileRemoved {
		content.Right, err = f.client.fileAt(ctx, f.owner, f.repo, f.path, f.pair.Right.Commit)
		if err != nil {
			return review.FileContent{}, err
		}
	}

	f.content = &content
	return content, nil
}

// ChangedFiles lists the files changed by the pull request as a whole.
func (c *Client) ChangedFiles(ctx context.Context, pr review.PullRequestRef) ([]review.FileEntry, error) {
	var raw []*gh.CommitFile

	opts := &gh.ListOptions{PerPage: c.pageSize}
	for {
		page, resp, err := c.api.PullRequests.ListFiles(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull request files: %w", err)
		}
		raw = append(raw, page...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return c.entries(pr, pr.RevPair(), raw)
}

// CommitChangedFiles lists the files changed between the pair's endpoints.
func (c *Client) CommitChangedFiles(ctx context.Context, pr review.PullRequestRef, pair review.RevPair) ([]review.FileEntry, error) {
	cmp, _, err := c.api.Repositories.CompareCommits(ctx, pr.Owner, pr.Repo, pair.Left.Commit, pair.Right.Commit, &gh.ListOptions{PerPage: c.pageSize})
	if err != nil {
		return nil, fmt.Errorf("compare %s: %w", pair, err)
	}

	return c.entries(pr, pair, cmp.Files)
}

func (c *Client) entries(pr review.PullRequestRef, pair review.RevPair, raw []*gh.CommitFile) ([]review.FileEntry, error) {
	out := make([]review.FileEntry, 0, len(raw))
	for _, cf := range raw {
		path := cf.GetFilename()
		if c.ignored(path) {
			continue
		}

		h, err := parseHunks(path, cf.GetPatch())
		if err != nil {
			return nil, err
		}

		out = append(out, &fileEntry{
			client:   c,
			owner:    pr.Owner,
			repo:     pr.Repo,
			pair:     pair,
			path:     path,
			prevPath: cf.GetPreviousFilename(),
			status:   review.FileStatus(cf.GetStatus()),
			hunks:    h,
		})
	}
	return out, nil
}

func (c *Client) ignored(path string) bool {
	for _, pattern := range c.ignore {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// fileAt returns a file's content at ref. A missing file yields an empty
// string.
func (c *Client) fileAt(ctx context.Context, owner, repo, path, ref string) (string, error) {
	fc, _, _, err := c.api.Repositories.GetContents(ctx, owner, repo, path, &gh.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get %s at %s: %w", path, ref, err)
	}
	if fc == nil {
		return "", fmt.Errorf("get %s at %s: path is a directory", path, ref)
	}

	text, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("decode %s at %s: %w", path, ref, err)
	}
	return text, nil
}
