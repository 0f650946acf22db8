package sqlplus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Executor runs the sqlplus process. A non-zero exit status is reported in
// Output.ExitStatus, not as an error; errors mean the process could not be
// run or was interrupted.
type Executor interface {
	Execute(ctx context.Context, name string, args []string, stdin string) (Output, error)
}

// ProcessExecutor runs commands with os/exec.
type ProcessExecutor struct {
	// Env, when set, replaces the environment of the child process.
	Env []string
	// WaitDelay bounds how long output pipes are drained after the process
	// is killed; zero means DefaultWaitDelay.
	WaitDelay time.Duration
}

// DefaultWaitDelay is used when ProcessExecutor.WaitDelay is zero.
const DefaultWaitDelay = 2 * time.Second

// Execute implements Executor.
func (e ProcessExecutor) Execute(ctx context.Context, name string, args []string, stdin string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	cmd.Stdin = strings.NewReader(stdin)
	cmd.WaitDelay = e.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("%s interrupted: %w", name, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitStatus = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to run %s: %w", name, err)
	}
	return out, nil
}
