package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	githubinfra "github.com/m-mizutani/pushdeploy/pkg/infra/github"
)

func TestClient_LatestCommitSHA(t *testing.T) {
	var gotAuth, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("abc123def456"))
	}))
	defer server.Close()

	client, err := githubinfra.NewClient("test-token", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	sha, err := client.LatestCommitSHA(context.Background(), "octo", "app", "main")
	gt.NoError(t, err)
	gt.Value(t, sha).Equal("abc123def456")
	gt.Value(t, gotPath).Equal("/repos/octo/app/commits/main")
	gt.Value(t, gotAuth).Equal("Bearer test-token")
}

func TestClient_LatestCommitSHA_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer server.Close()

	client, err := githubinfra.NewClient("test-token", githubinfra.WithBaseURL(server.URL))
	gt.NoError(t, err)

	_, err = client.LatestCommitSHA(context.Background(), "octo", "app", "main")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagUpstreamPoll))
}

func TestClient_LatestCommitSHA_HTTPClientTimeout(t *testing.T) {
	unblock := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-unblock
	}))
	defer server.Close()
	defer close(unblock)

	client, err := githubinfra.NewClient("test-token",
		githubinfra.WithBaseURL(server.URL),
		githubinfra.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
	)
	gt.NoError(t, err)

	_, err = client.LatestCommitSHA(context.Background(), "octo", "app", "main")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagUpstreamPoll))
}

func TestNewClient_EmptyToken(t *testing.T) {
	_, err := githubinfra.NewClient("")
	gt.Error(t, err)
}

func TestClient_LatestCommitSHA_WithRealAPI(t *testing.T) {
	token := os.Getenv("TEST_GITHUB_TOKEN")
	repo := os.Getenv("TEST_GITHUB_REPO")
	if token == "" || repo == "" {
		t.Skip("TEST_GITHUB_TOKEN or TEST_GITHUB_REPO not provided")
	}

	owner, name, ok := strings.Cut(repo, "/")
	if !ok {
		t.Fatalf("TEST_GITHUB_REPO must be owner/repo, got %q", repo)
	}

	client, err := githubinfra.NewClient(token)
	gt.NoError(t, err)

	sha, err := client.LatestCommitSHA(context.Background(), owner, name, "HEAD")
	gt.NoError(t, err)
	gt.Number(t, len(sha)).Equal(40)
}
