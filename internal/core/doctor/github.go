package doctor

import (
	"context"
)

// ViewerFunc returns the login the configured token authenticates as.
type ViewerFunc func(ctx context.Context) (string, error)

// GitHubCheck verifies the token is set and accepted by the API.
type GitHubCheck struct {
	tokenEnv string
	token    string
	viewer   ViewerFunc
}

// NewGitHubCheck creates a new GitHub connectivity check.
func NewGitHubCheck(tokenEnv, token string, viewer ViewerFunc) *GitHubCheck {
	return &GitHubCheck{tokenEnv: tokenEnv, token: token, viewer: viewer}
}

func (c *GitHubCheck) Name() string {
	return "GitHub"
}

func (c *GitHubCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	if c.token == "" {
		result.Items = append(result.Items, CheckItem{
			Label:  "token",
			Status: StatusFail,
			Detail: "$" + c.tokenEnv + " is not set",
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "token",
		Status: StatusPass,
		Detail: "$" + c.tokenEnv,
	})

	login, err := c.viewer(ctx)
	if err != nil {
		result.Items = append(result.Items, CheckItem{
			Label:  "api",
			Status: StatusFail,
			Detail: err.Error(),
		})
		return result
	}

	result.Items = append(result.Items, CheckItem{
		Label:  "api",
		Status: StatusPass,
		Detail: "authenticated as " + login,
	})

	return result
}
