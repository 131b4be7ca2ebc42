package model

import "time"

// WebhookEventType represents the type of webhook event received
type WebhookEventType string

const (
	EventTypePing  WebhookEventType = "ping"
	EventTypePush  WebhookEventType = "push"
	EventTypeOther WebhookEventType = "other"
)

// NewWebhookEventType maps the X-GitHub-Event header value to an event type.
// GitHub always sends the header; a missing one is treated as ping.
func NewWebhookEventType(name string) WebhookEventType {
	switch name {
	case "", "ping":
		return EventTypePing
	case "push":
		return EventTypePush
	default:
		return EventTypeOther
	}
}

// WebhookDelivery is an inbound webhook request as read by the HTTP layer
type WebhookDelivery struct {
	EventName  string    // Retrieved from X-GitHub-Event header
	DeliveryID string    // Retrieved from X-GitHub-Delivery header
	Signature  string    // Retrieved from X-Hub-Signature-256 header
	Body       []byte    // Raw JSON payload
	ReadError  error     // Set when the body could not be read
	ReceivedAt time.Time // Time when the request was received
}

// Type returns the event type of the delivery
func (d *WebhookDelivery) Type() WebhookEventType {
	return NewWebhookEventType(d.EventName)
}

// PushEvent is the part of a push payload needed to classify and deploy it
type PushEvent struct {
	After   string
	Ref     string
	Commits []CommitRecord
}

// CommitRecord is a single commit of a push. ModifiedPaths holds every path the
// commit touched (modified, added and removed).
type CommitRecord struct {
	SHA           string
	ModifiedPaths []string
}

// WebhookOutcome is the terminal state of a webhook delivery
type WebhookOutcome string

const (
	WebhookOutcomePong         WebhookOutcome = "pong"
	WebhookOutcomeIgnored      WebhookOutcome = "ignored"
	WebhookOutcomeIgnoredEvent WebhookOutcome = "ignored_event"
	WebhookOutcomeTriggered    WebhookOutcome = "triggered"
	WebhookOutcomeQueued       WebhookOutcome = "queued"
	WebhookOutcomeBusy         WebhookOutcome = "busy"
	WebhookOutcomeRejected     WebhookOutcome = "rejected"
	WebhookOutcomeBadRequest   WebhookOutcome = "bad_request"
	WebhookOutcomeFailed       WebhookOutcome = "failed"
)

// WebhookResult is returned by the dispatcher for every delivery
type WebhookResult struct {
	Outcome WebhookOutcome
	Reason  string
	Error   error
}
