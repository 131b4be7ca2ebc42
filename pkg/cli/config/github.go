package config

import (
	"net/http"
	"time"

	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHub holds GitHub configuration
type GitHub struct {
	WebhookSecret string `masq:"secret"`
	Token         string `masq:"secret"`
	Repository    string
	Branch        string
	PollTimeout   time.Duration
	APIBaseURL    string
	DisplayName   string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret (signature verification is disabled when empty)",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_WEBHOOK_SECRET", "GITHUB_SECRET"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token used to check for new commits",
			Destination: &c.Token,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_TOKEN", "GITHUB_PAT"),
		},
		&cli.StringFlag{
			Name:        "github-repo",
			Usage:       "Tracked repository in owner/name form",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_REPO", "GITHUB_REPO"),
		},
		&cli.StringFlag{
			Name:        "github-branch",
			Usage:       "Branch compared with the last deployed commit",
			Value:       "main",
			Destination: &c.Branch,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_BRANCH"),
		},
		&cli.DurationFlag{
			Name:        "github-poll-timeout",
			Usage:       "Timeout of the GitHub update check",
			Value:       10 * time.Second,
			Destination: &c.PollTimeout,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_POLL_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:        "github-api-url",
			Usage:       "GitHub API base URL (for GitHub Enterprise)",
			Destination: &c.APIBaseURL,
			Sources:     cli.EnvVars("PUSHDEPLOY_GITHUB_API_URL"),
		},
		&cli.StringFlag{
			Name:        "display-name",
			Usage:       "Repository name shown on the dashboard (defaults to --github-repo)",
			Destination: &c.DisplayName,
			Sources:     cli.EnvVars("PUSHDEPLOY_DISPLAY_NAME", "DISPLAY_NAME"),
		},
	}
}

// NewClient returns nil without error when no token is configured
func (c *GitHub) NewClient() (interfaces.GitHubClient, error) {
	if c.Token == "" {
		return nil, nil
	}

	var opts []github.Option
	if c.PollTimeout > 0 {
		opts = append(opts, github.WithHTTPClient(&http.Client{Timeout: c.PollTimeout}))
	}
	if c.APIBaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.APIBaseURL))
	}
	return github.NewClient(c.Token, opts...)
}

// RepoDisplayName returns the name shown to operators
func (c *GitHub) RepoDisplayName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Repository
}
