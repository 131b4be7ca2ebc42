package process_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/infra/process"
)

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "deploy.sh")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0700))
	return path
}

func TestSpawner_Spawn(t *testing.T) {
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("/bin/bash is not available")
	}

	dir := t.TempDir()
	script := writeScript(t, dir, `echo "sha=$PUSHDEPLOY_COMMIT_SHA source=$PUSHDEPLOY_TRIGGER_SOURCE extra=$EXTRA"
pwd
`)

	var out bytes.Buffer
	spawner, err := process.NewSpawner(script,
		process.WithWorkDir(dir),
		process.WithEnv(map[string]string{"EXTRA": "yes"}),
		process.WithOutput(&out),
	)
	gt.NoError(t, err)

	proc, err := spawner.Spawn(context.Background(), &model.DeployRequest{
		ID:        "dep-1",
		Source:    model.TriggerSourceWebhook,
		CommitSHA: "deadbeef",
	})
	gt.NoError(t, err)
	gt.True(t, proc.PID() > 0)
	gt.NoError(t, proc.Wait())

	gt.String(t, out.String()).Contains("sha=deadbeef source=webhook extra=yes")
	resolved, err := filepath.EvalSymlinks(dir)
	gt.NoError(t, err)
	gt.True(t, strings.Contains(out.String(), dir) || strings.Contains(out.String(), resolved))
}

func TestSpawner_NonZeroExit(t *testing.T) {
	if _, err := os.Stat("/bin/bash"); err != nil {
		t.Skip("/bin/bash is not available")
	}

	script := writeScript(t, t.TempDir(), "exit 3\n")
	spawner, err := process.NewSpawner(script)
	gt.NoError(t, err)

	proc, err := spawner.Spawn(context.Background(), &model.DeployRequest{Source: model.TriggerSourceManual})
	gt.NoError(t, err)
	gt.Error(t, proc.Wait())
}

func TestSpawner_ShellMissing(t *testing.T) {
	script := writeScript(t, t.TempDir(), "true\n")
	spawner, err := process.NewSpawner(script, process.WithShell("/nonexistent/shell"))
	gt.NoError(t, err)

	_, err = spawner.Spawn(context.Background(), &model.DeployRequest{Source: model.TriggerSourceManual})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagSpawn))
}

func TestNewSpawner_ScriptMissing(t *testing.T) {
	_, err := process.NewSpawner(filepath.Join(t.TempDir(), "missing.sh"))
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestNewSpawner_ScriptIsDirectory(t *testing.T) {
	_, err := process.NewSpawner(t.TempDir())
	gt.Error(t, err)
}
