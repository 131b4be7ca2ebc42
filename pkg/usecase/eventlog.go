package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
)

// eventLog writes operator-facing entries to the event store. A failing store
// never fails the caller: the error is reported and the entry is dropped.
type eventLog struct {
	store interfaces.EventStore
	now   func() time.Time
}

func (l *eventLog) Printf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ctxlog.From(ctx).Info("Event log", "message", msg)

	entry := model.LogEntry{Timestamp: l.now().UTC(), Message: msg}
	if err := l.store.AppendLog(ctx, entry); err != nil {
		errutil.Handle(ctx, "Failed to append event log entry", err)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
