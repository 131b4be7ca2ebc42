package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/utils/tail"
)

const (
	DefaultSummaryLogCount    = 5
	DefaultSummaryOutputLines = 50
	DefaultSummaryDeployments = 10
	DefaultLogsLimit          = 100
)

// Dashboard answers the read-only queries of the operator dashboard
type Dashboard struct {
	store         interfaces.EventStore
	checker       interfaces.UpstreamChecker
	displayName   string
	deployLogPath string
	now           func() time.Time
}

var _ interfaces.DashboardUseCase = (*Dashboard)(nil)

type DashboardOption func(*Dashboard)

// WithUpstreamChecker enables the updates-available flag
func WithUpstreamChecker(checker interfaces.UpstreamChecker) DashboardOption {
	return func(d *Dashboard) {
		d.checker = checker
	}
}

func WithDashboardClock(now func() time.Time) DashboardOption {
	return func(d *Dashboard) {
		d.now = now
	}
}

func NewDashboard(store interfaces.EventStore, displayName, deployLogPath string, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		store:         store,
		displayName:   displayName,
		deployLogPath: deployLogPath,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Summary collects the dashboard state. The upstream check runs on every call.
func (d *Dashboard) Summary(ctx context.Context) (*model.DashboardState, error) {
	state, err := d.store.GetLastState(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read last state", goerr.T(types.ErrTagStorage))
	}

	logs, err := d.store.RecentLogs(ctx, DefaultSummaryLogCount)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read recent logs", goerr.T(types.ErrTagStorage))
	}

	deployments, err := d.store.RecentDeployments(ctx, DefaultSummaryDeployments)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read deployments", goerr.T(types.ErrTagStorage))
	}

	summary := &model.DashboardState{
		LastDeployedCommit: state.LastDeployedCommit,
		RecentLogs:         make([]string, len(logs)),
		DeploymentOutput:   d.deploymentOutput(ctx),
		Deployments:        deployments,
		Repo: model.RepoInfo{
			Name:        d.displayName,
			LastChecked: d.now().UTC(),
		},
	}
	if state.LastPushAt != nil {
		summary.LastPush = state.LastPushAt.UTC().Format(model.PushTimeFormat)
	}
	for i, entry := range logs {
		summary.RecentLogs[i] = entry.String()
	}
	if d.checker != nil {
		summary.Repo.UpdatesAvailable = d.checker.CheckForUpdates(ctx)
	}

	return summary, nil
}

// Logs returns up to limit entries, newest first. A non-positive limit means
// DefaultLogsLimit.
func (d *Dashboard) Logs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogsLimit
	}

	logs, err := d.store.RecentLogs(ctx, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read logs",
			goerr.V("limit", limit),
			goerr.T(types.ErrTagStorage))
	}
	return logs, nil
}

func (d *Dashboard) deploymentOutput(ctx context.Context) string {
	lines, err := tail.File(d.deployLogPath, DefaultSummaryOutputLines)
	switch {
	case errors.Is(err, os.ErrNotExist):
		ctxlog.From(ctx).Debug("Deployment log file not found", "path", d.deployLogPath)
		return fmt.Sprintf("No deployment log file found (expected at: %s)", d.deployLogPath)
	case err != nil:
		ctxlog.From(ctx).Warn("Failed to read deployment log", "error", err, "path", d.deployLogPath)
		return fmt.Sprintf("Error reading deployment log: %v", err)
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
