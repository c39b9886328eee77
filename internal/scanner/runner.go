package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ExitCodeTimeout is the sentinel exit code reported when the scanner was
// killed because it exceeded the batch deadline.
const ExitCodeTimeout = -1

// RunOutput is the captured outcome of one scanner subprocess call.
type RunOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Runner executes the scanner binary. The argument list is passed verbatim as
// an argument vector; no shell is involved.
type Runner interface {
	Run(ctx context.Context, binary string, args []string, timeout time.Duration) (RunOutput, error)
}

// ProcessRunner runs the scanner as a child process with a hard wall-clock
// timeout. On timeout the child is killed and the call still returns the
// output captured so far.
type ProcessRunner struct {
	logger hclog.Logger
}

func NewProcessRunner(logger hclog.Logger) *ProcessRunner {
	return &ProcessRunner{logger: logger}
}

// Run executes binary with args. A non-zero exit code is not an error here:
// the caller decides what partial output is worth. The returned error is
// reserved for failures to launch or wait on the process itself.
func (r *ProcessRunner) Run(ctx context.Context, binary string, args []string, timeout time.Duration) (RunOutput, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, binary, args...)
	// Wait must return even if the child leaked the pipes to a grandchild.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(&stderr, r.logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	}))

	r.logger.Debug("launching scanner", "binary", binary, "args", args, "timeout", timeout)
	err := cmd.Run()

	out := RunOutput{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		out.TimedOut = true
		out.ExitCode = ExitCodeTimeout
		out.Stderr = fmt.Sprintf("%s\nscanner killed after exceeding the %s deadline", out.Stderr, timeout)
		r.logger.Warn("scanner timed out", "binary", binary, "timeout", timeout)
		return out, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			r.logger.Debug("scanner exited with non-zero code", "code", out.ExitCode)
			return out, nil
		}
		return out, fmt.Errorf("failed to run scanner %q: %w", binary, err)
	}

	out.ExitCode = cmd.ProcessState.ExitCode()
	return out, nil
}
