// Package github implements the review collaborators against the GitHub API.
// Plain REST calls go through go-github; review threads are only exposed by
// the GraphQL API, which is reached through the same client.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/colonyops/revu/internal/core/review"
	gh "github.com/google/go-github/v68/github"
	"github.com/rs/zerolog"
)

const defaultPageSize = 100

// Options configures a Client.
type Options struct {
	BaseURL   string // enterprise API url, empty for github.com
	UploadURL string
	Token     string
	Timeout   time.Duration
	PageSize  int
	Ignore    []string // doublestar globs hidden from file lists
	Logger    zerolog.Logger
}

// Client talks to GitHub. It implements review.RemoteReviewAPI and
// review.DiffProvider.
type Client struct {
	api      *gh.Client
	graphql  string
	pageSize int
	ignore   []string
	log      zerolog.Logger
}

var (
	_ review.RemoteReviewAPI = (*Client)(nil)
	_ review.DiffProvider    = (*Client)(nil)
)

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	httpClient := &http.Client{Timeout: opts.Timeout}
	api := gh.NewClient(httpClient)
	if opts.Token != "" {
		api = api.WithAuthToken(opts.Token)
	}

	graphqlPath := "graphql"
	if opts.BaseURL != "" {
		upload := opts.UploadURL
		if upload == "" {
			upload = opts.BaseURL
		}

		var err error
		api, err = api.WithEnterpriseURLs(opts.BaseURL, upload)
		if err != nil {
			return nil, fmt.Errorf("configure enterprise urls: %w", err)
		}
		// enterprise serves GraphQL at /api/graphql next to /api/v3/
		if strings.HasSuffix(api.BaseURL.Path, "/api/v3/") {
			graphqlPath = "../graphql"
		}
	}

	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Client{
		api:      api,
		graphql:  graphqlPath,
		pageSize: pageSize,
		ignore:   opts.Ignore,
		log:      opts.Logger,
	}, nil
}

// Viewer returns the login of the authenticated user.
func (c *Client) Viewer(ctx context.Context) (string, error) {
	user, _, err := c.api.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// PullRequest loads a pull request. The base endpoint is the merge base of
// the two branches, which is what the pull request diff is computed against.
func (c *Client) PullRequest(ctx context.Context, owner, repo string, number int) (review.PullRequestRef, error) {
	pr, _, err := c.api.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return review.PullRequestRef{}, fmt.Errorf("get pull request: %w", err)
	}

	head := pr.GetHead().GetSHA()
	base := pr.GetBase().GetSHA()

	cmp, _, err := c.api.Repositories.CompareCommits(ctx, owner, repo, base, head, &gh.ListOptions{PerPage: 1})
	if err != nil {
		return review.PullRequestRef{}, fmt.Errorf("compare %s...%s: %w", base, head, err)
	}
	if mb := cmp.GetMergeBaseCommit().GetSHA(); mb != "" {
		base = mb
	}

	return review.PullRequestRef{
		Owner:  owner,
		Repo:   repo,
		Number: number,
		NodeID: pr.GetNodeID(),
		Title:  pr.GetTitle(),
		Base:   review.NewRevisionRef(base),
		Head:   review.NewRevisionRef(head),
	}, nil
}

// Commits lists the pull request's commits, oldest first, each with its
// first parent.
func (c *Client) Commits(ctx context.Context, pr review.PullRequestRef) ([]review.Commit, error) {
	var out []review.Commit

	opts := &gh.ListOptions{PerPage: c.pageSize}
	for {
		page, resp, err := c.api.PullRequests.ListCommits(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("list commits: %w", err)
		}

		for _, rc := range page {
			commit := review.Commit{
				Ref:     review.NewRevisionRef(rc.GetSHA()),
				Message: firstLine(rc.GetCommit().GetMessage()),
			}
			if len(rc.Parents) > 0 {
				commit.Parent = review.NewRevisionRef(rc.Parents[0].GetSHA())
			}
			out = append(out, commit)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// FindCommit resolves a full or abbreviated commit id among the pull
// request's commits.
func (c *Client) FindCommit(ctx context.Context, pr review.PullRequestRef, id string) (review.Commit, error) {
	commits, err := c.Commits(ctx, pr)
	if err != nil {
		return review.Commit{}, err
	}
	return MatchCommit(commits, id)
}

// MatchCommit finds the commit whose id starts with id. Ambiguous prefixes
// are rejected.
func MatchCommit(commits []review.Commit, id string) (review.Commit, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return review.Commit{}, errors.New("empty commit id")
	}

	var found []review.Commit
	for _, c := range commits {
		if strings.HasPrefix(c.Ref.Commit, id) {
			found = append(found, c)
		}
	}

	switch len(found) {
	case 0:
		return review.Commit{}, &review.EmptyResultError{What: "commit matching " + id}
	case 1:
		return found[0], nil
	default:
		return review.Commit{}, fmt.Errorf("commit id %q is ambiguous (%d matches)", id, len(found))
	}
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
