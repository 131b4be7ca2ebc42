package interfaces

import (
	"context"

	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// Spawner starts the deployment script without waiting for it
type Spawner interface {
	Spawn(ctx context.Context, req *model.DeployRequest) (Process, error)
}

// Process is a started deployment script
type Process interface {
	PID() int
	// Wait blocks until the process exits
	Wait() error
}

// Notifier announces deployment records to operators
type Notifier interface {
	NotifyDeployment(ctx context.Context, record *model.DeploymentRecord) error
}
