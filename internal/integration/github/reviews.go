package github

import (
	"context"
	"fmt"

	"github.com/colonyops/revu/internal/core/review"
	gh "github.com/google/go-github/v68/github"
	"golang.org/x/sync/errgroup"
)

const reviewStatePending = "PENDING"

const addThreadMutation = `mutation($input: AddPullRequestReviewThreadInput!) {
  addPullRequestReviewThread(input: $input) {
    thread { id }
  }
}`

const addCommentMutation = `mutation($input: AddPullRequestReviewCommentInput!) {
  addPullRequestReviewComment(input: $input) {
    comment { id }
  }
}`

// CreateReview opens a pending review on the pull request's head commit.
// Omitting the event is what keeps the review pending.
func (c *Client) CreateReview(ctx context.Context, pr review.PullRequestRef) (review.ReviewPayload, error) {
	created, _, err := c.api.PullRequests.CreateReview(ctx, pr.Owner, pr.Repo, pr.Number, &gh.PullRequestReviewRequest{
		CommitID: gh.Ptr(pr.Head.Commit),
	})
	if err != nil {
		return review.ReviewPayload{}, fmt.Errorf("create review: %w", err)
	}

	ref := review.ReviewRef{ID: created.GetID(), NodeID: created.GetNodeID()}
	c.log.Debug().Int64("review_id", ref.ID).Str("pr", pr.String()).Msg("review created")

	threads, err := c.Threads(ctx, pr)
	if err != nil {
		return review.ReviewPayload{}, err
	}

	return review.ReviewPayload{Review: ref, Threads: threads}, nil
}

// FetchPendingReviews lists pending reviews and every review thread of the
// pull request. Both requests run concurrently.
func (c *Client) FetchPendingReviews(ctx context.Context, pr review.PullRequestRef) (review.PendingReviews, error) {
	var (
		reviews []review.Review
		threads []review.Thread
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reviews, err = c.pendingReviews(gctx, pr)
		return err
	})
	g.Go(func() error {
		var err error
		threads, err = c.Threads(gctx, pr)
		return err
	})
	if err := g.Wait(); err != nil {
		return review.PendingReviews{}, err
	}

	return review.PendingReviews{Reviews: reviews, Threads: threads}, nil
}

func (c *Client) pendingReviews(ctx context.Context, pr review.PullRequestRef) ([]review.Review, error) {
	out := []review.Review{}

	opts := &gh.ListOptions{PerPage: c.pageSize}
	for {
		page, resp, err := c.api.PullRequests.ListReviews(ctx, pr.Owner, pr.Repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}

		for _, r := range page {
			if r.GetState() != reviewStatePending {
				continue
			}
			out = append(out, review.Review{
				Ref:    review.ReviewRef{ID: r.GetID(), NodeID: r.GetNodeID()},
				Author: r.GetUser().GetLogin(),
				State:  r.GetState(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return out, nil
}

// SubmitReview finalizes a pending review with the given verdict.
func (c *Client) SubmitReview(ctx context.Context, pr review.PullRequestRef, rev review.ReviewRef, event review.SubmitEvent, body string) error {
	req := &gh.PullRequestReviewRequest{Event: gh.Ptr(string(event))}
	if body != "" {
		req.Body = gh.Ptr(body)
	}

	if _, _, err := c.api.PullRequests.SubmitReview(ctx, pr.Owner, pr.Repo, pr.Number, rev.ID, req); err != nil {
		return fmt.Errorf("submit review %d: %w", rev.ID, err)
	}
	return nil
}

// DeleteReview deletes a pending review and its pending comments.
func (c *Client) DeleteReview(ctx context.Context, pr review.PullRequestRef, rev review.ReviewRef) error {
	if _, _, err := c.api.PullRequests.DeletePendingReview(ctx, pr.Owner, pr.Repo, pr.Number, rev.ID); err != nil {
		return fmt.Errorf("delete review %d: %w", rev.ID, err)
	}
	return nil
}

// AddThread creates a thread on the pending review and returns the refreshed
// thread list. Threads placed while viewing a single commit are anchored to
// that commit by diff position; line numbers would be read against the head
// diff instead.
func (c *Client) AddThread(ctx context.Context, pr review.PullRequestRef, rev review.ReviewRef, thread review.PendingThread, body string) ([]review.Thread, error) {
	if thread.CommitScoped(pr.RevPair()) {
		input, err := commentInput(rev, thread, body)
		if err != nil {
			return nil, err
		}
		if err := c.graphQL(ctx, addCommentMutation, map[string]any{"input": input}, nil); err != nil {
			return nil, fmt.Errorf("add review comment: %w", err)
		}
		c.log.Debug().
			Str("commit", thread.Scope().Right.Short).
			Int("position", thread.Position()).
			Str("path", thread.Path()).
			Msg("commit comment added")
		return c.Threads(ctx, pr)
	}

	if err := c.graphQL(ctx, addThreadMutation, map[string]any{"input": threadInput(rev, thread, body)}, nil); err != nil {
		return nil, fmt.Errorf("add review thread: %w", err)
	}

	return c.Threads(ctx, pr)
}

// commentInput builds an AddPullRequestReviewCommentInput against the scope's
// right-hand commit. Positions address a single diff line, so a multi-line
// span is anchored at its last line.
func commentInput(rev review.ReviewRef, thread review.PendingThread, body string) (map[string]any, error) {
	if thread.Position() <= 0 {
		start, end := thread.Span()
		return nil, fmt.Errorf("add review comment: %s:%d-%d is not part of the diff of %s", thread.Path(), start, end, thread.Scope())
	}

	return map[string]any{
		"pullRequestReviewId": rev.NodeID,
		"commitOID":           thread.Scope().Right.Commit,
		"path":                thread.Path(),
		"position":            thread.Position(),
		"body":                body,
	}, nil
}

// threadInput builds an AddPullRequestReviewThreadInput. The start fields are
// only sent for multi-line threads; GitHub rejects a start equal to the end.
func threadInput(rev review.ReviewRef, thread review.PendingThread, body string) map[string]any {
	start, end := thread.Span()

	input := map[string]any{
		"pullRequestReviewId": rev.NodeID,
		"path":                thread.Path(),
		"body":                body,
		"line":                end,
		"side":                string(thread.Side()),
		"subjectType":         "LINE",
	}
	if thread.IsMultiline() {
		input["startLine"] = start
		input["startSide"] = string(thread.Side())
	}
	return input
}
