package slack_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/infra/slack"
)

func TestNotifier_NotifyDeployment(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	notifier := slack.NewNotifier(server.URL, "finarch-backend", server.Client())
	err := notifier.NotifyDeployment(context.Background(), &model.DeploymentRecord{
		ID:        "dep-1",
		Source:    model.TriggerSourceWebhook,
		CommitSHA: "deadbeef",
		Outcome:   model.DeploymentFailed,
		ExitCode:  2,
	})
	gt.NoError(t, err)
	gt.Value(t, received["text"]).Equal("finarch-backend: deployment failed (exit code 2)")
}

func TestNotifier_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := slack.NewNotifier(server.URL, "", server.Client())
	err := notifier.NotifyDeployment(context.Background(), &model.DeploymentRecord{
		ID:      "dep-2",
		Source:  model.TriggerSourceManual,
		Outcome: model.DeploymentStarted,
	})
	gt.Error(t, err)
}
