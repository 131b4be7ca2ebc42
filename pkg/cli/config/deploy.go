package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/infra/process"
	"github.com/urfave/cli/v3"
)

const (
	DefaultScriptName    = "deploy.sh"
	DefaultOutputLogName = "deploy.log"
)

// Deploy holds deployment configuration
type Deploy struct {
	BaseDir             string
	Script              string
	Shell               string
	OutputLog           string
	HoldUntilExit       bool
	Queue               bool
	CaptureOutput       bool
	StrictPushTimestamp bool
}

// Flags returns CLI flags for deployment configuration
func (c *Deploy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-dir",
			Usage:       "Directory holding the deploy script, logs and state markers",
			Value:       "/var/lib/pushdeploy",
			Destination: &c.BaseDir,
			Sources:     cli.EnvVars("PUSHDEPLOY_BASE_DIR"),
		},
		&cli.StringFlag{
			Name:        "deploy-script",
			Usage:       "Deploy script path (default: <base-dir>/deploy.sh)",
			Destination: &c.Script,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_SCRIPT"),
		},
		&cli.StringFlag{
			Name:        "deploy-shell",
			Usage:       "Interpreter running the deploy script",
			Value:       "/bin/bash",
			Destination: &c.Shell,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_SHELL"),
		},
		&cli.StringFlag{
			Name:        "deploy-output-log",
			Usage:       "Deployment output log shown on the dashboard (default: <base-dir>/deploy.log)",
			Destination: &c.OutputLog,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_OUTPUT_LOG"),
		},
		&cli.BoolFlag{
			Name:        "deploy-hold-until-exit",
			Usage:       "Allow the next deployment only after the running script exits",
			Value:       true,
			Destination: &c.HoldUntilExit,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_HOLD_UNTIL_EXIT"),
		},
		&cli.BoolFlag{
			Name:        "deploy-queue",
			Usage:       "Queue the latest request while a deployment runs instead of rejecting it",
			Value:       true,
			Destination: &c.Queue,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_QUEUE"),
		},
		&cli.BoolFlag{
			Name:        "deploy-capture-output",
			Usage:       "Append the script's stdout and stderr to the deployment output log",
			Destination: &c.CaptureOutput,
			Sources:     cli.EnvVars("PUSHDEPLOY_DEPLOY_CAPTURE_OUTPUT"),
		},
		&cli.BoolFlag{
			Name:        "strict-push-timestamp",
			Usage:       "Update the last push time only for deliveries with a valid signature",
			Destination: &c.StrictPushTimestamp,
			Sources:     cli.EnvVars("PUSHDEPLOY_STRICT_PUSH_TIMESTAMP"),
		},
	}
}

// ScriptPath returns the configured script or deploy.sh in the base directory
func (c *Deploy) ScriptPath() string {
	if c.Script != "" {
		return c.Script
	}
	return filepath.Join(c.BaseDir, DefaultScriptName)
}

// OutputLogPath returns the configured output log or deploy.log in the base
// directory
func (c *Deploy) OutputLogPath() string {
	if c.OutputLog != "" {
		return c.OutputLog
	}
	return filepath.Join(c.BaseDir, DefaultOutputLogName)
}

// NewSpawner checks the deploy script and makes sure the output log exists.
// The returned closer releases the output log when it is captured.
func (c *Deploy) NewSpawner() (*process.Spawner, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(c.OutputLogPath()), 0750); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create deployment log directory",
			goerr.V("path", c.OutputLogPath()),
			goerr.T(types.ErrTagConfig))
	}

	// #nosec G304 path comes from configuration
	out, err := os.OpenFile(c.OutputLogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open deployment output log",
			goerr.V("path", c.OutputLogPath()),
			goerr.T(types.ErrTagConfig))
	}

	opts := []process.Option{
		process.WithShell(c.Shell),
		process.WithWorkDir(c.BaseDir),
	}
	if c.CaptureOutput {
		opts = append(opts, process.WithOutput(out))
	}

	spawner, err := process.NewSpawner(c.ScriptPath(), opts...)
	if err != nil {
		_ = out.Close()
		return nil, nil, err
	}

	if !c.CaptureOutput {
		_ = out.Close()
		return spawner, io.NopCloser(nil), nil
	}
	return spawner, out, nil
}
