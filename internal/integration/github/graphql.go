package github

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// GraphQLError is an entry of a GraphQL response's errors list. Path mixes
// field names and list indices.
type GraphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Path    []any  `json:"path"`
}

// Location renders Path joined by dots, e.g. "repository.pullRequest.nodes.0".
func (e GraphQLError) Location() string {
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// GraphQLErrors is returned when a GraphQL response carries errors. GitHub
// answers these with status 200, so they never surface as ErrorResponse.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msg := ge.Message
		if ge.Type != "" {
			msg = ge.Type + ": " + msg
		}
		if loc := ge.Location(); loc != "" {
			msg += " at " + loc
		}
		msgs = append(msgs, msg)
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// graphQL posts query and decodes the response's data member into out.
func (c *Client) graphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	req, err := c.api.NewRequest("POST", c.graphql, graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}

	var resp graphqlResponse
	if _, err := c.api.Do(ctx, req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return GraphQLErrors(resp.Errors)
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}
