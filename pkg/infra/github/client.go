package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
)

type client struct {
	githubClient *github.Client
}

// Option configures the GitHub client
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    string
}

// WithHTTPClient replaces the underlying HTTP client, e.g. to set a timeout
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// WithBaseURL points the client at a GitHub Enterprise Server or a test server
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// NewClient creates a GitHub client authenticated with a personal access token
func NewClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	if token == "" {
		return nil, goerr.New("GitHub access token is empty", goerr.T(types.ErrTagConfig))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	githubClient := github.NewClient(o.httpClient).WithAuthToken(token)

	if o.baseURL != "" {
		base := o.baseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid GitHub API base URL",
				goerr.V("base_url", o.baseURL), goerr.T(types.ErrTagConfig))
		}
		githubClient.BaseURL = u
	}

	return &client{
		githubClient: githubClient,
	}, nil
}

// LatestCommitSHA returns the SHA of the head commit of ref
func (c *client) LatestCommitSHA(ctx context.Context, owner, repo, ref string) (string, error) {
	sha, _, err := c.githubClient.Repositories.GetCommitSHA1(ctx, owner, repo, ref, "")
	if err != nil {
		return "", goerr.Wrap(err, "failed to get latest commit",
			goerr.V("owner", owner),
			goerr.V("repo", repo),
			goerr.V("ref", ref),
			goerr.T(types.ErrTagUpstreamPoll))
	}
	return strings.TrimSpace(sha), nil
}
