package interfaces

import (
	"context"

	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// WebhookUseCase dispatches inbound webhook deliveries
type WebhookUseCase interface {
	// HandleDelivery verifies and processes a delivery. It never fails; errors
	// are reported through the result.
	HandleDelivery(ctx context.Context, delivery *model.WebhookDelivery) *model.WebhookResult
}

// DeployUseCase launches the deployment script
type DeployUseCase interface {
	// TriggerDeploy launches a deployment or queues it when one is in flight
	TriggerDeploy(ctx context.Context, source model.TriggerSource, commitSHA string) (*model.DeploymentHandle, error)
}

// UpstreamChecker reports whether the tracked branch is ahead of the last deploy
type UpstreamChecker interface {
	// CheckForUpdates returns nil when the upstream state is unknown
	CheckForUpdates(ctx context.Context) *bool
}

// DashboardUseCase provides read-only views over the recorded state
type DashboardUseCase interface {
	Summary(ctx context.Context) (*model.DashboardState, error)
	Logs(ctx context.Context, limit int) ([]model.LogEntry, error)
}
