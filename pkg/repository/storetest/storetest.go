// Package storetest is a behavioral test suite shared by EventStore implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

// Run exercises store against the EventStore contract. newStore must return an
// empty store for every call.
func Run(t *testing.T, newStore func(t *testing.T) interfaces.EventStore) {
	t.Run("empty state", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		state, err := store.GetLastState(ctx)
		gt.NoError(t, err)
		gt.Value(t, state.LastPushAt == nil).Equal(true)
		gt.Value(t, state.LastDeployedCommit).Equal("")

		logs, err := store.RecentLogs(ctx, 5)
		gt.NoError(t, err)
		gt.Value(t, len(logs)).Equal(0)

		deployments, err := store.RecentDeployments(ctx, 5)
		gt.NoError(t, err)
		gt.Value(t, len(deployments)).Equal(0)
	})

	t.Run("recent logs are newest first and bounded", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		for i := 0; i < 8; i++ {
			gt.NoError(t, store.AppendLog(ctx, model.LogEntry{
				Timestamp: base.Add(time.Duration(i) * time.Second),
				Message:   fmt.Sprintf("entry %d", i),
			}))
		}

		logs, err := store.RecentLogs(ctx, 3)
		gt.NoError(t, err)
		gt.Value(t, len(logs)).Equal(3)
		gt.Value(t, logs[0].Message).Equal("entry 7")
		gt.Value(t, logs[1].Message).Equal("entry 6")
		gt.Value(t, logs[2].Message).Equal("entry 5")
		gt.True(t, logs[0].Timestamp.Equal(base.Add(7*time.Second)))
	})

	t.Run("last state is overwritten", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		first := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		second := first.Add(time.Hour)

		gt.NoError(t, store.SetLastPushAt(ctx, first))
		gt.NoError(t, store.SetLastDeployedCommit(ctx, "abc123"))
		gt.NoError(t, store.SetLastPushAt(ctx, second))
		gt.NoError(t, store.SetLastDeployedCommit(ctx, "def456"))

		state, err := store.GetLastState(ctx)
		gt.NoError(t, err)
		gt.Value(t, state.LastPushAt != nil).Equal(true)
		gt.True(t, state.LastPushAt.Equal(second))
		gt.Value(t, state.LastDeployedCommit).Equal("def456")
	})

	t.Run("push time and commit are independent", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		gt.NoError(t, store.SetLastDeployedCommit(ctx, "abc123"))
		gt.NoError(t, store.SetLastPushAt(ctx, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

		state, err := store.GetLastState(ctx)
		gt.NoError(t, err)
		gt.Value(t, state.LastDeployedCommit).Equal("abc123")
	})

	t.Run("deployments are appended", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		id := uuid.NewString()
		at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

		gt.NoError(t, store.AppendDeployment(ctx, &model.DeploymentRecord{
			ID:          id,
			TriggeredAt: at,
			Source:      model.TriggerSourceWebhook,
			CommitSHA:   "abc123",
			Outcome:     model.DeploymentStarted,
			PID:         42,
		}))
		gt.NoError(t, store.AppendDeployment(ctx, &model.DeploymentRecord{
			ID:          id,
			TriggeredAt: at.Add(time.Minute),
			Source:      model.TriggerSourceWebhook,
			CommitSHA:   "abc123",
			Outcome:     model.DeploymentSucceeded,
		}))

		records, err := store.RecentDeployments(ctx, 10)
		gt.NoError(t, err)
		gt.Value(t, len(records)).Equal(2)
		gt.Value(t, records[0].Outcome).Equal(model.DeploymentSucceeded)
		gt.Value(t, records[1].Outcome).Equal(model.DeploymentStarted)
		gt.Value(t, records[1].ID).Equal(id)
		gt.Value(t, records[1].PID).Equal(42)
		gt.Value(t, records[1].CommitSHA).Equal("abc123")
	})

	t.Run("concurrent appends keep every entry", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		const writers = 20

		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				gt.NoError(t, store.AppendLog(ctx, model.LogEntry{
					Timestamp: time.Now().UTC(),
					Message:   fmt.Sprintf("writer %d", i),
				}))
			}(i)
		}
		wg.Wait()

		logs, err := store.RecentLogs(ctx, writers*2)
		gt.NoError(t, err)
		gt.Value(t, len(logs)).Equal(writers)

		seen := map[string]bool{}
		for _, entry := range logs {
			seen[entry.Message] = true
		}
		gt.Value(t, len(seen)).Equal(writers)
	})
}
