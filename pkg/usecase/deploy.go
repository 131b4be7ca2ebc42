package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
	"github.com/m-mizutani/pushdeploy/pkg/utils/async"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
	"golang.org/x/sync/semaphore"
)

// Deployer launches the deployment script, at most one at a time.
//
// The slot is a weight-1 semaphore. It is taken before the spawn and given
// back either right after the spawn or, with holdUntilExit, once the process
// exits. A request that finds the slot taken is either rejected or parked in
// a single pending slot; a newer request replaces the parked one.
type Deployer struct {
	store    interfaces.EventStore
	spawner  interfaces.Spawner
	notifier interfaces.Notifier
	metrics  *metrics.Registry
	log      *eventLog

	holdUntilExit bool
	queueWhenBusy bool
	now           func() time.Time

	slot *semaphore.Weighted

	// mu guards pending and orders releases of slot against parking
	mu      sync.Mutex
	pending *model.DeployRequest
}

var _ interfaces.DeployUseCase = (*Deployer)(nil)

// DeployOption configures a Deployer
type DeployOption func(*Deployer)

// WithNotifier announces every deployment record
func WithNotifier(n interfaces.Notifier) DeployOption {
	return func(d *Deployer) {
		d.notifier = n
	}
}

// WithDeployMetrics counts trigger outcomes
func WithDeployMetrics(m *metrics.Registry) DeployOption {
	return func(d *Deployer) {
		d.metrics = m
	}
}

// WithHoldUntilExit keeps the slot until the script exits (default true)
func WithHoldUntilExit(hold bool) DeployOption {
	return func(d *Deployer) {
		d.holdUntilExit = hold
	}
}

// WithQueueWhenBusy parks a request that finds the slot taken instead of
// rejecting it (default true)
func WithQueueWhenBusy(queue bool) DeployOption {
	return func(d *Deployer) {
		d.queueWhenBusy = queue
	}
}

// WithDeployClock replaces time.Now
func WithDeployClock(now func() time.Time) DeployOption {
	return func(d *Deployer) {
		d.now = now
	}
}

// NewDeployer creates a Deployer
func NewDeployer(store interfaces.EventStore, spawner interfaces.Spawner, opts ...DeployOption) *Deployer {
	d := &Deployer{
		store:         store,
		spawner:       spawner,
		holdUntilExit: true,
		queueWhenBusy: true,
		now:           time.Now,
		slot:          semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = &eventLog{store: store, now: d.now}
	return d
}

// TriggerDeploy launches the deployment script without waiting for it
func (d *Deployer) TriggerDeploy(ctx context.Context, source model.TriggerSource, commitSHA string) (*model.DeploymentHandle, error) {
	req := &model.DeployRequest{
		ID:        uuid.NewString(),
		Source:    source,
		CommitSHA: commitSHA,
	}

	if !d.slot.TryAcquire(1) {
		return d.onBusy(ctx, req)
	}
	return d.launch(ctx, req)
}

// WaitIdle blocks until no deployment holds the slot or ctx is done
func (d *Deployer) WaitIdle(ctx context.Context) error {
	if err := d.slot.Acquire(ctx, 1); err != nil {
		return goerr.Wrap(err, "deployment still in progress")
	}
	d.slot.Release(1)
	return nil
}

func (d *Deployer) onBusy(ctx context.Context, req *model.DeployRequest) (*model.DeploymentHandle, error) {
	d.mu.Lock()
	// The slot may have been released after the first attempt
	if d.slot.TryAcquire(1) {
		d.mu.Unlock()
		return d.launch(ctx, req)
	}

	if !d.queueWhenBusy {
		d.mu.Unlock()
		d.appendRecord(ctx, d.newRecord(req, model.DeploymentRejected))
		d.log.Printf(ctx, "Deploy request (%s) rejected: a deployment is already in progress", req.Source)
		return nil, goerr.New("deployment already in progress",
			goerr.V("source", req.Source),
			goerr.V("commit_sha", req.CommitSHA),
			goerr.T(types.ErrTagDeployInProgress))
	}

	replaced := d.pending
	d.pending = req
	d.mu.Unlock()

	d.appendRecord(ctx, d.newRecord(req, model.DeploymentQueued))
	if replaced != nil {
		d.appendRecord(ctx, d.newRecord(replaced, model.DeploymentSuperseded))
		d.log.Printf(ctx, "Queued deploy (%s %s) superseded by newer request (%s %s)",
			replaced.Source, shortSHA(replaced.CommitSHA), req.Source, shortSHA(req.CommitSHA))
	} else {
		d.log.Printf(ctx, "Deployment in progress; deploy request (%s %s) queued", req.Source, shortSHA(req.CommitSHA))
	}

	return &model.DeploymentHandle{
		ID:     req.ID,
		Status: model.DeploymentQueued,
	}, nil
}

// launch spawns the script. The caller owns the slot; launch hands it over to
// release on every path.
func (d *Deployer) launch(ctx context.Context, req *model.DeployRequest) (*model.DeploymentHandle, error) {
	logger := ctxlog.From(ctx)

	proc, err := d.spawner.Spawn(ctx, req)
	if err != nil {
		rec := d.newRecord(req, model.DeploymentFailedToStart)
		rec.Error = err.Error()
		d.appendRecord(ctx, rec)
		if req.Source == model.TriggerSourceManual {
			d.log.Printf(ctx, "Manual deploy failed: %v", err)
		} else {
			d.log.Printf(ctx, "Failed to execute deploy script: %v", err)
		}
		d.notify(ctx, rec)
		d.release(ctx)

		return nil, goerr.Wrap(err, "failed to trigger deployment",
			goerr.V("deployment_id", req.ID),
			goerr.V("source", req.Source),
			goerr.T(types.ErrTagSpawn))
	}

	rec := d.newRecord(req, model.DeploymentStarted)
	rec.PID = proc.PID()
	d.appendRecord(ctx, rec)

	logger.Info("Deploy script started",
		"deployment_id", req.ID,
		"source", req.Source,
		"commit_sha", req.CommitSHA,
		"pid", rec.PID,
	)

	switch req.Source {
	case model.TriggerSourceManual:
		d.log.Printf(ctx, "Manual test deploy triggered from web UI")
		if err := d.store.SetLastPushAt(ctx, d.now()); err != nil {
			errutil.Handle(ctx, "Failed to save last push time", err)
		}
	default:
		d.log.Printf(ctx, "Deployment triggered via webhook")
	}

	if req.CommitSHA != "" {
		d.saveCommit(ctx, req.CommitSHA)
	}

	d.notify(ctx, rec)
	d.supervise(ctx, req, proc)

	return &model.DeploymentHandle{
		ID:     req.ID,
		PID:    rec.PID,
		Status: model.DeploymentStarted,
	}, nil
}

func (d *Deployer) saveCommit(ctx context.Context, sha string) {
	state, err := d.store.GetLastState(ctx)
	if err != nil {
		errutil.Handle(ctx, "Failed to read last state", err)
	} else if state.LastDeployedCommit == sha {
		d.log.Printf(ctx, "Commit %s was already the last deployed commit; recording redeploy", shortSHA(sha))
	}

	if err := d.store.SetLastDeployedCommit(ctx, sha); err != nil {
		errutil.Handle(ctx, "Failed to save last deployed commit", err)
		d.log.Printf(ctx, "Failed to save last deployed commit %s: %v", shortSHA(sha), err)
	}
}

// supervise waits for the process in the background and records how it ended
func (d *Deployer) supervise(ctx context.Context, req *model.DeployRequest, proc interfaces.Process) {
	if !d.holdUntilExit {
		d.release(ctx)
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		waitErr := proc.Wait()

		rec := d.newRecord(req, model.DeploymentSucceeded)
		rec.PID = proc.PID()
		if waitErr != nil {
			rec.Outcome = model.DeploymentFailed
			rec.Error = waitErr.Error()
			rec.ExitCode = exitCode(waitErr)
		}
		d.appendRecord(ctx, rec)

		if waitErr != nil {
			d.log.Printf(ctx, "Deployment %s exited with error: %v", req.ID, waitErr)
		} else {
			d.log.Printf(ctx, "Deployment %s finished", req.ID)
		}
		d.notify(ctx, rec)

		if d.holdUntilExit {
			d.release(ctx)
		}
		return nil
	})
}

// release frees the slot, or passes it straight to the pending request
func (d *Deployer) release(ctx context.Context) {
	d.mu.Lock()
	next := d.pending
	d.pending = nil
	if next == nil {
		d.slot.Release(1)
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	d.log.Printf(ctx, "Starting queued deploy (%s %s)", next.Source, shortSHA(next.CommitSHA))
	// Failures are recorded by launch itself
	_, _ = d.launch(ctx, next)
}

func (d *Deployer) newRecord(req *model.DeployRequest, outcome model.DeploymentOutcome) *model.DeploymentRecord {
	return &model.DeploymentRecord{
		ID:          req.ID,
		TriggeredAt: d.now().UTC(),
		Source:      req.Source,
		CommitSHA:   req.CommitSHA,
		Outcome:     outcome,
	}
}

func (d *Deployer) appendRecord(ctx context.Context, rec *model.DeploymentRecord) {
	d.metrics.ObserveDeploy(string(rec.Source), string(rec.Outcome))
	if err := d.store.AppendDeployment(ctx, rec); err != nil {
		errutil.Handle(ctx, "Failed to append deployment record", err)
	}
}

func (d *Deployer) notify(ctx context.Context, rec *model.DeploymentRecord) {
	if d.notifier == nil {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return d.notifier.NotifyDeployment(ctx, rec)
	})
}

// exitCode returns the exit status carried by a Wait error, or -1
func exitCode(err error) int {
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
