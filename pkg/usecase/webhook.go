package usecase

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
)

// ReasonNoMeaningfulChanges is reported when a push only touches ignored paths
const ReasonNoMeaningfulChanges = "No meaningful code changes detected"

type Webhook struct {
	secret     []byte
	classifier *Classifier
	deployer   interfaces.DeployUseCase
	store      interfaces.EventStore
	metrics    *metrics.Registry
	log        *eventLog
	now        func() time.Time

	// strictPushTimestamp moves the last push update after signature
	// verification. Otherwise every delivery, forged or not, updates it.
	strictPushTimestamp bool
}

var _ interfaces.WebhookUseCase = (*Webhook)(nil)

type WebhookOption func(*Webhook)

func WithStrictPushTimestamp(strict bool) WebhookOption {
	return func(uc *Webhook) {
		uc.strictPushTimestamp = strict
	}
}

func WithWebhookMetrics(m *metrics.Registry) WebhookOption {
	return func(uc *Webhook) {
		uc.metrics = m
	}
}

func WithWebhookClock(now func() time.Time) WebhookOption {
	return func(uc *Webhook) {
		uc.now = now
	}
}

// NewWebhook creates a new instance of WebhookUseCase. An empty secret turns
// signature verification off.
func NewWebhook(secret string, classifier *Classifier, deployer interfaces.DeployUseCase, store interfaces.EventStore, opts ...WebhookOption) *Webhook {
	uc := &Webhook{
		secret:     []byte(secret),
		classifier: classifier,
		deployer:   deployer,
		store:      store,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	uc.log = &eventLog{store: store, now: uc.now}
	return uc
}

// HandleDelivery runs a delivery through verification, classification and
// deployment. It always returns a result; errors are carried in it.
func (uc *Webhook) HandleDelivery(ctx context.Context, delivery *model.WebhookDelivery) *model.WebhookResult {
	logger := ctxlog.From(ctx).With(
		"delivery_id", delivery.DeliveryID,
		"event", delivery.EventName,
	)
	ctx = ctxlog.With(ctx, logger)

	result := uc.handle(ctx, delivery)

	uc.metrics.ObserveDelivery(string(delivery.Type()), string(result.Outcome))
	logger.Info("Webhook delivery processed",
		"outcome", result.Outcome,
		"reason", result.Reason,
	)
	return result
}

func (uc *Webhook) handle(ctx context.Context, delivery *model.WebhookDelivery) *model.WebhookResult {
	if !uc.strictPushTimestamp {
		uc.touchLastPush(ctx, delivery)
	}

	if delivery.ReadError != nil {
		uc.log.Printf(ctx, "Failed to read webhook request: %v", delivery.ReadError)
		return &model.WebhookResult{
			Outcome: model.WebhookOutcomeBadRequest,
			Error: goerr.Wrap(delivery.ReadError, "failed to read webhook body",
				goerr.T(types.ErrTagInvalidPayload)),
		}
	}

	if !VerifySignature(uc.secret, delivery.Body, delivery.Signature) {
		uc.log.Printf(ctx, "Invalid signature received")
		return &model.WebhookResult{
			Outcome: model.WebhookOutcomeRejected,
			Error: goerr.New("invalid webhook signature",
				goerr.V("delivery_id", delivery.DeliveryID),
				goerr.T(types.ErrTagAuthentication)),
		}
	}

	if uc.strictPushTimestamp {
		uc.touchLastPush(ctx, delivery)
	}

	switch delivery.Type() {
	case model.EventTypePing:
		uc.log.Printf(ctx, "Ping received")
		return &model.WebhookResult{Outcome: model.WebhookOutcomePong}

	case model.EventTypePush:
		return uc.handlePush(ctx, delivery)

	default:
		uc.log.Printf(ctx, "Ignored event: %s", delivery.EventName)
		return &model.WebhookResult{Outcome: model.WebhookOutcomeIgnoredEvent}
	}
}

func (uc *Webhook) handlePush(ctx context.Context, delivery *model.WebhookDelivery) *model.WebhookResult {
	event, err := ParsePushEvent(delivery.Body)
	if err != nil {
		uc.log.Printf(ctx, "Failed to parse push payload: %v", err)
		return &model.WebhookResult{
			Outcome: model.WebhookOutcomeBadRequest,
			Error:   err,
		}
	}

	if !uc.classifier.IsMeaningful(event.Commits) {
		uc.log.Printf(ctx, "Push received but no meaningful changes detected")
		return &model.WebhookResult{
			Outcome: model.WebhookOutcomeIgnored,
			Reason:  ReasonNoMeaningfulChanges,
		}
	}

	handle, err := uc.deployer.TriggerDeploy(ctx, model.TriggerSourceWebhook, event.After)
	if err != nil {
		if goerr.HasTag(err, types.ErrTagDeployInProgress) {
			return &model.WebhookResult{Outcome: model.WebhookOutcomeBusy, Error: err}
		}
		errutil.Handle(ctx, "Failed to trigger deployment", err)
		return &model.WebhookResult{Outcome: model.WebhookOutcomeFailed, Error: err}
	}

	if handle.Status == model.DeploymentQueued {
		return &model.WebhookResult{Outcome: model.WebhookOutcomeQueued}
	}
	return &model.WebhookResult{Outcome: model.WebhookOutcomeTriggered}
}

// touchLastPush records when the delivery arrived, falling back to the
// clock when the transport did not stamp it
func (uc *Webhook) touchLastPush(ctx context.Context, delivery *model.WebhookDelivery) {
	at := delivery.ReceivedAt
	if at.IsZero() {
		at = uc.now()
	}
	if err := uc.store.SetLastPushAt(ctx, at); err != nil {
		errutil.Handle(ctx, "Failed to save last push time", err)
	}
}

// ParsePushEvent extracts the commits and head SHA from a push payload
func ParsePushEvent(body []byte) (*model.PushEvent, error) {
	raw, err := github.ParseWebHook("push", body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse push payload",
			goerr.T(types.ErrTagInvalidPayload))
	}

	ev, ok := raw.(*github.PushEvent)
	if !ok {
		return nil, goerr.New("unexpected payload type for push event",
			goerr.T(types.ErrTagInvalidPayload))
	}

	push := &model.PushEvent{
		After: ev.GetAfter(),
		Ref:   ev.GetRef(),
	}
	for _, c := range ev.Commits {
		if c == nil {
			continue
		}
		sha := c.GetID()
		if sha == "" {
			sha = c.GetSHA()
		}

		paths := make([]string, 0, len(c.Modified)+len(c.Added)+len(c.Removed))
		paths = append(paths, c.Modified...)
		paths = append(paths, c.Added...)
		paths = append(paths, c.Removed...)

		push.Commits = append(push.Commits, model.CommitRecord{
			SHA:           sha,
			ModifiedPaths: paths,
		})
	}

	return push, nil
}
