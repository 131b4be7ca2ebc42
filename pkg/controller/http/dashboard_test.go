package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
)

func getJSON(t *testing.T, h http.Handler, path string, v any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if v != nil && w.Code == http.StatusOK {
		gt.NoError(t, json.NewDecoder(w.Body).Decode(v))
	}
	return w.Code
}

func TestDashboardHandler(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, testSecret, nil)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 20 {
		gt.NoError(t, env.store.AppendLog(ctx, model.LogEntry{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Message:   fmt.Sprintf("entry %d", i),
		}))
	}
	gt.NoError(t, env.store.SetLastPushAt(ctx, base))
	gt.NoError(t, env.store.SetLastDeployedCommit(ctx, "abc123"))

	t.Run("summary", func(t *testing.T) {
		var summary model.DashboardState
		gt.Number(t, getJSON(t, env.handler, "/api/dashboard", &summary)).Equal(http.StatusOK)
		gt.Value(t, summary.LastPush).Equal("2024-03-01 00:00:00 UTC")
		gt.Value(t, summary.LastDeployedCommit).Equal("abc123")
		gt.Number(t, len(summary.RecentLogs)).Equal(5)
		gt.Value(t, summary.RecentLogs[0]).Equal("[2024-03-01 00:19:00] entry 19")
		gt.Value(t, summary.Repo.Name).Equal("octo/app")
		gt.True(t, summary.Repo.UpdatesAvailable == nil)
		gt.True(t, strings.HasPrefix(summary.DeploymentOutput, "No deployment log file found"))
	})

	t.Run("logs with limit", func(t *testing.T) {
		var resp struct {
			Logs []string `json:"logs"`
		}
		gt.Number(t, getJSON(t, env.handler, "/api/logs?limit=3", &resp)).Equal(http.StatusOK)
		gt.Value(t, resp.Logs).Equal([]string{
			"[2024-03-01 00:19:00] entry 19",
			"[2024-03-01 00:18:00] entry 18",
			"[2024-03-01 00:17:00] entry 17",
		})
	})

	t.Run("logs default limit", func(t *testing.T) {
		var resp struct {
			Logs []string `json:"logs"`
		}
		gt.Number(t, getJSON(t, env.handler, "/api/logs", &resp)).Equal(http.StatusOK)
		gt.Number(t, len(resp.Logs)).Equal(20)
	})

	t.Run("invalid limit", func(t *testing.T) {
		for _, q := range []string{"abc", "0", "-5"} {
			gt.Number(t, getJSON(t, env.handler, "/api/logs?limit="+q, nil)).Equal(http.StatusBadRequest)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		payload := []byte(`{}`)
		postWebhook(t, env.handler, "ping", generateSignature(testSecret, payload), payload)

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		gt.Number(t, w.Code).Equal(http.StatusOK)
		gt.String(t, w.Body.String()).Contains(`pushdeploy_webhook_deliveries_total{event="ping",outcome="pong"} 1`)
	})
}
