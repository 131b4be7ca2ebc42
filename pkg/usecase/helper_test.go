package usecase_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/mock"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// procTracker hands out fake processes that run until finish is called and
// counts how many of them are alive at once.
type procTracker struct {
	mu        sync.Mutex
	active    int
	maxActive int
	procs     []chan error
}

func (tr *procTracker) spawner() *mock.SpawnerMock {
	return &mock.SpawnerMock{
		SpawnFunc: func(ctx context.Context, req *model.DeployRequest) (interfaces.Process, error) {
			tr.mu.Lock()
			defer tr.mu.Unlock()

			done := make(chan error, 1)
			pid := 1000 + len(tr.procs)
			tr.procs = append(tr.procs, done)
			tr.active++
			if tr.active > tr.maxActive {
				tr.maxActive = tr.active
			}

			return &mock.ProcessMock{
				PIDFunc: func() int { return pid },
				WaitFunc: func() error {
					err := <-done
					tr.mu.Lock()
					tr.active--
					tr.mu.Unlock()
					return err
				},
			}, nil
		},
	}
}

func (tr *procTracker) finish(idx int, err error) {
	tr.mu.Lock()
	done := tr.procs[idx]
	tr.mu.Unlock()
	done <- err
}

func (tr *procTracker) count() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.procs)
}

func (tr *procTracker) peak() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.maxActive
}

type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *exitError) ExitCode() int { return e.code }

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not satisfied before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func logMessages(t *testing.T, store interfaces.EventStore) []string {
	t.Helper()
	entries, err := store.RecentLogs(context.Background(), 1000)
	gt.NoError(t, err)

	msgs := make([]string, len(entries))
	for i, e := range entries {
		msgs[i] = e.Message
	}
	return msgs
}

func hasMessage(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func boolPtr(b bool) *bool { return &b }
