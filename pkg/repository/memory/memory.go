// Package memory provides an EventStore kept in process memory. State is lost
// on restart; it backs tests and dry runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

type Store struct {
	mu sync.RWMutex

	logs        []model.LogEntry
	deployments []model.DeploymentRecord
	state       model.LastState
}

var _ interfaces.EventStore = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendLog(_ context.Context, entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	return nil
}

func (s *Store) RecentLogs(_ context.Context, limit int) ([]model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.LogEntry{}
	for i := len(s.logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.logs[i])
	}
	return out, nil
}

func (s *Store) AppendDeployment(_ context.Context, record *model.DeploymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deployments = append(s.deployments, *record)
	return nil
}

func (s *Store) RecentDeployments(_ context.Context, limit int) ([]*model.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*model.DeploymentRecord{}
	for i := len(s.deployments) - 1; i >= 0 && len(out) < limit; i-- {
		rec := s.deployments[i]
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Store) GetLastState(_ context.Context) (*model.LastState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := s.state
	if s.state.LastPushAt != nil {
		at := *s.state.LastPushAt
		state.LastPushAt = &at
	}
	return &state, nil
}

func (s *Store) SetLastPushAt(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	at = at.UTC()
	s.state.LastPushAt = &at
	return nil
}

func (s *Store) SetLastDeployedCommit(_ context.Context, sha string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastDeployedCommit = sha
	return nil
}

func (s *Store) Close() error {
	return nil
}
