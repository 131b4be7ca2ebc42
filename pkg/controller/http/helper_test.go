package http_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"
	"testing"

	controller "github.com/m-mizutani/pushdeploy/pkg/controller/http"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/mock"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
	"github.com/m-mizutani/pushdeploy/pkg/repository/memory"
	"github.com/m-mizutani/pushdeploy/pkg/usecase"
)

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

type testEnv struct {
	handler  http.Handler
	store    *memory.Store
	spawner  *mock.SpawnerMock
	deployer *usecase.Deployer
	metrics  *metrics.Registry
}

// newTestEnv wires the real use cases on a memory store. Spawned processes
// run until the test ends.
func newTestEnv(t *testing.T, secret string, spawnErr error, deployOpts ...usecase.DeployOption) *testEnv {
	t.Helper()

	release := make(chan struct{})
	var once sync.Once
	t.Cleanup(func() { once.Do(func() { close(release) }) })

	spawner := &mock.SpawnerMock{
		SpawnFunc: func(ctx context.Context, req *model.DeployRequest) (interfaces.Process, error) {
			if spawnErr != nil {
				return nil, spawnErr
			}
			return &mock.ProcessMock{
				PIDFunc:  func() int { return 4242 },
				WaitFunc: func() error { <-release; return nil },
			}, nil
		},
	}

	store := memory.New()
	reg := metrics.NewRegistry()
	deployer := usecase.NewDeployer(store, spawner, append(deployOpts, usecase.WithDeployMetrics(reg))...)
	webhookUC := usecase.NewWebhook(secret,
		usecase.NewClassifier(usecase.DefaultIgnoredSuffixes),
		deployer,
		store,
		usecase.WithWebhookMetrics(reg),
	)
	dashboardUC := usecase.NewDashboard(store, "octo/app", "")

	server, err := controller.NewServer(
		context.Background(),
		webhookUC,
		controller.WithAddr("localhost:0"),
		controller.WithDeployUseCase(deployer),
		controller.WithDashboardUseCase(dashboardUC),
		controller.WithMetrics(reg),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	return &testEnv{
		handler:  server.Handler,
		store:    store,
		spawner:  spawner,
		deployer: deployer,
		metrics:  reg,
	}
}
