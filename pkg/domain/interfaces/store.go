package interfaces

import (
	"context"
	"time"

	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// EventStore keeps the append-only event log, deployment history and the
// last-known state. Implementations must be safe for concurrent use.
type EventStore interface {
	AppendLog(ctx context.Context, entry model.LogEntry) error
	// RecentLogs returns at most limit entries, newest first
	RecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error)

	AppendDeployment(ctx context.Context, record *model.DeploymentRecord) error
	// RecentDeployments returns at most limit records, newest first
	RecentDeployments(ctx context.Context, limit int) ([]*model.DeploymentRecord, error)

	GetLastState(ctx context.Context) (*model.LastState, error)
	SetLastPushAt(ctx context.Context, at time.Time) error
	SetLastDeployedCommit(ctx context.Context, sha string) error

	Close() error
}
