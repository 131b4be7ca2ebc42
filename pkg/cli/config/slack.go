package config

import (
	"net/http"
	"time"

	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds deployment notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Timeout    time.Duration
}

// Flags returns CLI flags for Slack
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for deployment notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("PUSHDEPLOY_SLACK_WEBHOOK_URL"),
		},
		&cli.DurationFlag{
			Name:        "slack-timeout",
			Usage:       "Timeout of a Slack notification",
			Value:       10 * time.Second,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("PUSHDEPLOY_SLACK_TIMEOUT"),
		},
	}
}

// NewNotifier returns nil when no webhook URL is configured
func (c *Slack) NewNotifier(displayName string) interfaces.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL, displayName, &http.Client{Timeout: c.Timeout})
}
