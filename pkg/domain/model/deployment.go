package model

import "time"

// TriggerSource tells where a deploy request came from
type TriggerSource string

const (
	TriggerSourceWebhook TriggerSource = "webhook"
	TriggerSourceManual  TriggerSource = "manual"
)

// DeploymentOutcome is the recorded result of a deploy attempt
type DeploymentOutcome string

const (
	DeploymentStarted       DeploymentOutcome = "started"
	DeploymentFailedToStart DeploymentOutcome = "failed_to_start"
	DeploymentQueued        DeploymentOutcome = "queued"
	DeploymentRejected      DeploymentOutcome = "rejected"
	DeploymentSuperseded    DeploymentOutcome = "superseded"
	DeploymentSucceeded     DeploymentOutcome = "succeeded"
	DeploymentFailed        DeploymentOutcome = "failed"
)

// DeploymentRecord is appended to the event store on every trigger attempt and
// on process exit. Records are never modified; a completion record reuses the
// ID of the record that started the process.
type DeploymentRecord struct {
	ID          string            `json:"id" firestore:"id"`
	TriggeredAt time.Time         `json:"triggered_at" firestore:"triggered_at"`
	Source      TriggerSource     `json:"source" firestore:"source"`
	CommitSHA   string            `json:"commit_sha,omitempty" firestore:"commit_sha"`
	Outcome     DeploymentOutcome `json:"outcome" firestore:"outcome"`
	Error       string            `json:"error,omitempty" firestore:"error"`
	PID         int               `json:"pid,omitempty" firestore:"pid"`
	ExitCode    int               `json:"exit_code,omitempty" firestore:"exit_code"`
}

// DeployRequest is the input of a single deploy launch
type DeployRequest struct {
	ID        string
	Source    TriggerSource
	CommitSHA string
}

// DeploymentHandle is returned to the caller of a deploy trigger
type DeploymentHandle struct {
	ID     string            `json:"id"`
	PID    int               `json:"pid,omitempty"`
	Status DeploymentOutcome `json:"status"`
}
