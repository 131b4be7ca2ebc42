// Package slack posts deployment records to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/slack-go/slack"
)

type Notifier struct {
	webhookURL  string
	displayName string
	httpClient  *http.Client
}

var _ interfaces.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. displayName prefixes every message.
func NewNotifier(webhookURL, displayName string, httpClient *http.Client) *Notifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Notifier{
		webhookURL:  webhookURL,
		displayName: displayName,
		httpClient:  httpClient,
	}
}

func (n *Notifier) NotifyDeployment(ctx context.Context, record *model.DeploymentRecord) error {
	msg := &slack.WebhookMessage{
		Text: n.summary(record),
		Attachments: []slack.Attachment{
			{
				Color: outcomeColor(record.Outcome),
				Fields: []slack.AttachmentField{
					{Title: "Source", Value: string(record.Source), Short: true},
					{Title: "Commit", Value: orDash(record.CommitSHA), Short: true},
					{Title: "Deployment", Value: record.ID, Short: false},
				},
			},
		},
	}
	if record.Error != "" {
		msg.Attachments[0].Fields = append(msg.Attachments[0].Fields,
			slack.AttachmentField{Title: "Error", Value: record.Error})
	}

	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.httpClient, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification",
			goerr.V("deployment_id", record.ID),
			goerr.V("outcome", record.Outcome))
	}
	return nil
}

func (n *Notifier) summary(record *model.DeploymentRecord) string {
	name := n.displayName
	if name == "" {
		name = "deployment"
	}

	switch record.Outcome {
	case model.DeploymentStarted:
		return fmt.Sprintf("%s: deployment started", name)
	case model.DeploymentFailedToStart:
		return fmt.Sprintf("%s: deploy script failed to start", name)
	case model.DeploymentSucceeded:
		return fmt.Sprintf("%s: deployment finished", name)
	case model.DeploymentFailed:
		return fmt.Sprintf("%s: deployment failed (exit code %d)", name, record.ExitCode)
	default:
		return fmt.Sprintf("%s: deployment %s", name, record.Outcome)
	}
}

func outcomeColor(outcome model.DeploymentOutcome) string {
	switch outcome {
	case model.DeploymentSucceeded:
		return "good"
	case model.DeploymentFailed, model.DeploymentFailedToStart:
		return "danger"
	default:
		return "#439FE0"
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
