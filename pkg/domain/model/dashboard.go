package model

import "time"

// DashboardState aggregates everything the operator dashboard displays
type DashboardState struct {
	LastPush           string              `json:"last_push,omitempty"`
	LastDeployedCommit string              `json:"last_deployed_commit,omitempty"`
	RecentLogs         []string            `json:"recent_logs"`
	DeploymentOutput   string              `json:"last_deployment_output"`
	Deployments        []*DeploymentRecord `json:"deployments"`
	Repo               RepoInfo            `json:"repo_info"`
}

// RepoInfo describes the tracked repository. UpdatesAvailable is nil when the
// upstream state is unknown.
type RepoInfo struct {
	Name             string    `json:"name"`
	LastChecked      time.Time `json:"last_checked"`
	UpdatesAvailable *bool     `json:"updates_available"`
}
