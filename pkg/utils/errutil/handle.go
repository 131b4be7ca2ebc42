// Package errutil reports errors that are swallowed at a handler boundary.
package errutil

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
)

// Handle logs err and, when a Sentry client is configured, reports it.
// It is meant for errors that must not propagate any further.
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	logger := ctxlog.From(ctx)
	logger.Error(msg, "error", err)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	if evID := hub.CaptureException(err); evID != nil {
		logger.Debug("Error reported to Sentry", "event_id", string(*evID))
	}
}
