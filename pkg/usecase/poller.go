package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
)

const (
	DefaultPollBranch  = "main"
	DefaultPollTimeout = 10 * time.Second
)

// Poller compares the branch head on GitHub with the last deployed commit.
// It never triggers a deployment.
type Poller struct {
	client  interfaces.GitHubClient
	store   interfaces.EventStore
	metrics *metrics.Registry
	log     *eventLog

	owner   string
	repo    string
	branch  string
	timeout time.Duration
}

var _ interfaces.UpstreamChecker = (*Poller)(nil)

// PollerOption configures a Poller
type PollerOption func(*Poller)

func WithPollBranch(branch string) PollerOption {
	return func(p *Poller) {
		p.branch = branch
	}
}

func WithPollTimeout(timeout time.Duration) PollerOption {
	return func(p *Poller) {
		p.timeout = timeout
	}
}

func WithPollMetrics(m *metrics.Registry) PollerOption {
	return func(p *Poller) {
		p.metrics = m
	}
}

// NewPoller creates a Poller for repository ("owner/name"). A nil client or
// an empty repository yields a Poller that always reports unknown.
func NewPoller(client interfaces.GitHubClient, store interfaces.EventStore, repository string, opts ...PollerOption) (*Poller, error) {
	p := &Poller{
		client:  client,
		store:   store,
		branch:  DefaultPollBranch,
		timeout: DefaultPollTimeout,
		log:     &eventLog{store: store, now: time.Now},
	}

	if repository != "" {
		owner, repo, ok := strings.Cut(repository, "/")
		if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return nil, goerr.New("repository must be in owner/name form",
				goerr.V("repository", repository),
				goerr.T(types.ErrTagConfig))
		}
		p.owner, p.repo = owner, repo
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CheckForUpdates reports whether the branch head differs from the last
// deployed commit. nil means unknown: polling is disabled or failed.
func (p *Poller) CheckForUpdates(ctx context.Context) *bool {
	logger := ctxlog.From(ctx)

	if p.client == nil || p.repo == "" {
		logger.Debug("GitHub token or repository not configured, skipping update check")
		p.metrics.ObservePoll("disabled")
		return nil
	}

	pollCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	latest, err := p.client.LatestCommitSHA(pollCtx, p.owner, p.repo, p.branch)
	if err != nil {
		logger.Warn("Failed to check GitHub updates", "error", err, "repo", p.owner+"/"+p.repo)
		p.log.Printf(ctx, "Failed to check GitHub updates: %v", err)
		p.metrics.ObservePoll("error")
		return nil
	}

	state, err := p.store.GetLastState(ctx)
	if err != nil {
		errutil.Handle(ctx, "Failed to read last deployed commit", err)
		p.metrics.ObservePoll("error")
		return nil
	}

	updates := latest != state.LastDeployedCommit
	p.metrics.ObservePoll("ok")
	logger.Debug("Checked GitHub updates",
		"latest", latest,
		"deployed", state.LastDeployedCommit,
		"updates_available", updates,
	)
	return &updates
}
