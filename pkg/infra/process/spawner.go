// Package process starts the deployment script as a background process.
package process

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
)

const (
	EnvCommitSHA     = "PUSHDEPLOY_COMMIT_SHA"
	EnvTriggerSource = "PUSHDEPLOY_TRIGGER_SOURCE"
	EnvDeploymentID  = "PUSHDEPLOY_DEPLOYMENT_ID"
)

// Spawner runs `<shell> <script>` for every request
type Spawner struct {
	shell   string
	script  string
	workDir string
	env     map[string]string
	output  io.Writer
}

var _ interfaces.Spawner = (*Spawner)(nil)

// Option configures a Spawner
type Option func(*Spawner)

// WithShell sets the interpreter, /bin/bash by default
func WithShell(shell string) Option {
	return func(s *Spawner) {
		s.shell = shell
	}
}

// WithWorkDir sets the working directory of the script
func WithWorkDir(dir string) Option {
	return func(s *Spawner) {
		s.workDir = dir
	}
}

// WithEnv adds environment variables on top of the current environment
func WithEnv(env map[string]string) Option {
	return func(s *Spawner) {
		for k, v := range env {
			s.env[k] = v
		}
	}
}

// WithOutput receives the script's stdout and stderr. Without it the output
// is discarded and the script is expected to write its own log.
func WithOutput(w io.Writer) Option {
	return func(s *Spawner) {
		s.output = w
	}
}

// NewSpawner checks that script exists and is a regular file
func NewSpawner(script string, opts ...Option) (*Spawner, error) {
	info, err := os.Stat(script)
	if err != nil {
		return nil, goerr.Wrap(err, "deploy script missing",
			goerr.V("script", script), goerr.T(types.ErrTagConfig))
	}
	if !info.Mode().IsRegular() {
		return nil, goerr.New("deploy script is not a regular file",
			goerr.V("script", script), goerr.T(types.ErrTagConfig))
	}

	s := &Spawner{
		shell:  "/bin/bash",
		script: script,
		env:    map[string]string{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Spawn starts the script and returns without waiting for it. The process is
// not bound to ctx: a finished request must not kill a running deployment.
func (s *Spawner) Spawn(_ context.Context, req *model.DeployRequest) (interfaces.Process, error) {
	cmd := exec.Command(s.shell, s.script) // #nosec G204 script path comes from configuration
	cmd.Dir = s.workDir
	cmd.Stdout = s.output
	cmd.Stderr = s.output

	cmd.Env = os.Environ()
	for k, v := range s.env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("%s=%s", EnvCommitSHA, req.CommitSHA),
		fmt.Sprintf("%s=%s", EnvTriggerSource, req.Source),
		fmt.Sprintf("%s=%s", EnvDeploymentID, req.ID),
	)

	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(err, "failed to start deploy script",
			goerr.V("shell", s.shell),
			goerr.V("script", s.script),
			goerr.T(types.ErrTagSpawn))
	}

	return &process{cmd: cmd}, nil
}

type process struct {
	cmd *exec.Cmd
}

func (p *process) PID() int {
	return p.cmd.Process.Pid
}

func (p *process) Wait() error {
	return p.cmd.Wait()
}
