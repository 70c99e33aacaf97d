package ffmpeg

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
)

// OutcomeStatus tags the result of one supervised encoder run.
type OutcomeStatus string

const (
	OutcomeSuccess  OutcomeStatus = "success"
	OutcomeFailure  OutcomeStatus = "failure"
	OutcomeTimedOut OutcomeStatus = "timed_out"
)

// Outcome is the result of running a Command to completion, failure or
// timeout. Exactly one status applies.
type Outcome struct {
	Status     OutcomeStatus
	OutputPath string
	Duration   time.Duration
	ExitCode   int
	StderrTail string
	Reason     FailureReason
}

// Runner supervises encoder child processes. Safe for concurrent use;
// all per-run state is local to Run.
type Runner struct {
	killGrace time.Duration
	tailBytes int
	log       *logger.Logger
}

// NewRunner creates a supervisor. killGrace is the window between
// SIGTERM and SIGKILL on timeout; tailBytes bounds retained stderr.
func NewRunner(killGrace time.Duration, tailBytes int, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Runner{
		killGrace: killGrace,
		tailBytes: tailBytes,
		log:       log.WithComponent("supervisor"),
	}
}

// Run launches the command and waits for exit, enforcing the given
// wall-clock timeout. stdin is closed, stdout discarded, stderr kept as
// a bounded tail. On timeout the child receives SIGTERM and, after the
// grace period, SIGKILL. Run never retries.
func (r *Runner) Run(ctx context.Context, cmd Command, timeout time.Duration) Outcome {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tail := newTailBuffer(r.tailBytes)

	c := exec.CommandContext(runCtx, cmd.Binary, cmd.Args...) //nolint:gosec
	c.Dir = cmd.WorkDir
	c.Stdin = nil // inherited as /dev/null
	c.Stdout = io.Discard
	c.Stderr = tail
	c.Cancel = func() error {
		return c.Process.Signal(syscall.SIGTERM)
	}
	c.WaitDelay = r.killGrace

	r.log.FromContext(ctx).Debug("starting encoder",
		"binary", cmd.Binary,
		"args", len(cmd.Args),
		"timeout", timeout.String(),
	)

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	if runCtx.Err() != nil {
		// Deadline or caller cancellation; either way the child was
		// terminated and the job's clock has run out.
		r.log.FromContext(ctx).Warn("encoder timed out",
			"elapsed_ms", elapsed.Milliseconds(),
			"stderr_tail", tail.String(),
		)
		return Outcome{
			Status:     OutcomeTimedOut,
			Duration:   elapsed,
			StderrTail: tail.String(),
		}
	}

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		stderr := tail.String()
		return Outcome{
			Status:     OutcomeFailure,
			Duration:   elapsed,
			ExitCode:   exitCode,
			StderrTail: stderr,
			Reason:     classifyStderr(stderr),
		}
	}

	// Zero exit alone is not success: the declared output must exist
	// and be non-empty.
	st, statErr := os.Stat(cmd.OutputPath)
	if statErr != nil || st.Size() == 0 {
		return Outcome{
			Status:     OutcomeFailure,
			Duration:   elapsed,
			ExitCode:   0,
			StderrTail: tail.String(),
			Reason:     ReasonNoOutput,
		}
	}

	r.log.FromContext(ctx).Debug("encoder finished",
		"elapsed_ms", elapsed.Milliseconds(),
		"output_bytes", st.Size(),
	)
	return Outcome{
		Status:     OutcomeSuccess,
		OutputPath: cmd.OutputPath,
		Duration:   elapsed,
	}
}
