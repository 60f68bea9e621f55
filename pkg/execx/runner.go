package execx

import (
	"context"
	"os/exec"
)

// Runner shells out to external tools. The ffmpeg invocation goes through
// this so tests can substitute a fake engine.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type CommandRunner struct{}

func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run executes the command and returns its combined output. The process is
// killed when ctx expires or is cancelled.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	return cmd.CombinedOutput()
}
