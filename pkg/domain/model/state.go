package model

import (
	"fmt"
	"time"
)

const (
	// LogTimeFormat is the timestamp layout of the event log
	LogTimeFormat = "2006-01-02 15:04:05"
	// PushTimeFormat is the human readable layout of the last push marker
	PushTimeFormat = "2006-01-02 15:04:05 UTC"
)

// LastState is the durable singleton describing the latest push and deploy
type LastState struct {
	LastPushAt         *time.Time `json:"last_push_at,omitempty" firestore:"last_push_at"`
	LastDeployedCommit string     `json:"last_deployed_commit,omitempty" firestore:"last_deployed_commit"`
}

// LogEntry is a single line of the operator event log
type LogEntry struct {
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	Message   string    `json:"message" firestore:"message"`
}

// String renders the entry as it is stored in the log file
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] %s", e.Timestamp.UTC().Format(LogTimeFormat), e.Message)
}
