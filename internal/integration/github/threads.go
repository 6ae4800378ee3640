package github

import (
	"context"
	"fmt"
	"time"

	"github.com/colonyops/revu/internal/core/review"
)

const threadsQuery = `query($owner: String!, $repo: String!, $number: Int!, $first: Int!, $after: String) {
  repository(owner: $owner, name: $repo) {
    pullRequest(number: $number) {
      reviewThreads(first: $first, after: $after) {
        pageInfo { hasNextPage endCursor }
        nodes {
          id
          path
          isResolved
          isCollapsed
          isOutdated
          diffSide
          startDiffSide
          line
          originalLine
          startLine
          originalStartLine
          comments(first: 100) {
            nodes {
              databaseId
              body
              state
              createdAt
              author { login }
              replyTo { databaseId }
              originalCommit { oid abbreviatedOid }
              viewerCanUpdate
              viewerCanDelete
              viewerDidAuthor
              pullRequestReview { databaseId }
              reactionGroups { content reactors { totalCount } }
            }
          }
        }
      }
    }
  }
}`

type threadsData struct {
	Repository *struct {
		PullRequest *struct {
			ReviewThreads struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Nodes []threadNode `json:"nodes"`
			} `json:"reviewThreads"`
		} `json:"pullRequest"`
	} `json:"repository"`
}

type threadNode struct {
	ID                string  `json:"id"`
	Path              string  `json:"path"`
	IsResolved        bool    `json:"isResolved"`
	IsCollapsed       bool    `json:"isCollapsed"`
	IsOutdated        bool    `json:"isOutdated"`
	DiffSide          string  `json:"diffSide"`
	StartDiffSide     *string `json:"startDiffSide"`
	Line              *int    `json:"line"`
	OriginalLine      *int    `json:"originalLine"`
	StartLine         *int    `json:"startLine"`
	OriginalStartLine *int    `json:"originalStartLine"`
	Comments          struct {
		Nodes []commentNode `json:"nodes"`
	} `json:"comments"`
}

type commentNode struct {
	DatabaseID int64     `json:"databaseId"`
	Body       string    `json:"body"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"createdAt"`
	Author     *struct {
		Login string `json:"login"`
	} `json:"author"`
	ReplyTo *struct {
		DatabaseID int64 `json:"databaseId"`
	} `json:"replyTo"`
	OriginalCommit *struct {
		Oid            string `json:"oid"`
		AbbreviatedOid string `json:"abbreviatedOid"`
	} `json:"originalCommit"`
	ViewerCanUpdate   bool `json:"viewerCanUpdate"`
	ViewerCanDelete   bool `json:"viewerCanDelete"`
	ViewerDidAuthor   bool `json:"viewerDidAuthor"`
	PullRequestReview *struct {
		DatabaseID int64 `json:"databaseId"`
	} `json:"pullRequestReview"`
	ReactionGroups []struct {
		Content  string `json:"content"`
		Reactors struct {
			TotalCount int `json:"totalCount"`
		} `json:"reactors"`
	} `json:"reactionGroups"`
}

// Threads fetches every review thread of the pull request.
func (c *Client) Threads(ctx context.Context, pr review.PullRequestRef) ([]review.Thread, error) {
	var (
		out   []review.Thread
		after *string
	)

	for {
		vars := map[string]any{
			"owner":  pr.Owner,
			"repo":   pr.Repo,
			"number": pr.Number,
			"first":  c.pageSize,
			"after":  after,
		}

		var data threadsData
		if err := c.graphQL(ctx, threadsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("fetch review threads: %w", err)
		}
		if data.Repository == nil || data.Repository.PullRequest == nil {
			return nil, fmt.Errorf("fetch review threads: pull request %s not found", pr)
		}

		conn := data.Repository.PullRequest.ReviewThreads
		for _, n := range conn.Nodes {
			out = append(out, n.toThread())
		}

		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor := conn.PageInfo.EndCursor
		after = &cursor
	}

	if out == nil {
		out = []review.Thread{}
	}
	return out, nil
}

func (n threadNode) toThread() review.Thread {
	t := review.Thread{
		ID:                n.ID,
		Path:              n.Path,
		Outdated:          n.IsOutdated,
		Resolved:          n.IsResolved,
		Collapsed:         n.IsCollapsed,
		DiffSide:          review.DiffSide(n.DiffSide),
		Line:              n.Line,
		OriginalLine:      n.OriginalLine,
		StartLine:         n.StartLine,
		OriginalStartLine: n.OriginalStartLine,
		Comments:          make([]review.Comment, 0, len(n.Comments.Nodes)),
	}
	if n.StartDiffSide != nil {
		t.StartDiffSide = review.DiffSide(*n.StartDiffSide)
	}

	for _, cn := range n.Comments.Nodes {
		t.Comments = append(t.Comments, cn.toComment())
	}

	return review.Normalize(t)
}

func (cn commentNode) toComment() review.Comment {
	id := cn.DatabaseID
	c := review.Comment{
		ID:              &id,
		Body:            cn.Body,
		State:           review.CommentState(cn.State),
		ViewerCanUpdate: cn.ViewerCanUpdate,
		ViewerCanDelete: cn.ViewerCanDelete,
		ViewerDidAuthor: cn.ViewerDidAuthor,
		CreatedAt:       cn.CreatedAt,
	}
	if cn.Author != nil {
		c.Author = cn.Author.Login
	}
	if cn.ReplyTo != nil {
		replyTo := cn.ReplyTo.DatabaseID
		c.ReplyTo = &replyTo
	}
	if cn.OriginalCommit != nil {
		c.OriginCommit = review.RevisionRef{Commit: cn.OriginalCommit.Oid, Short: cn.OriginalCommit.AbbreviatedOid}
	}
	if cn.PullRequestReview != nil {
		c.ReviewID = cn.PullRequestReview.DatabaseID
	}

	counts := make(map[string]int, len(cn.ReactionGroups))
	for _, g := range cn.ReactionGroups {
		counts[g.Content] = g.Reactors.TotalCount
	}
	c.Reactions = make([]review.Reaction, len(review.ReactionKinds))
	for i, kind := range review.ReactionKinds {
		c.Reactions[i] = review.Reaction{Kind: kind, Count: counts[string(kind)]}
	}

	return c
}
