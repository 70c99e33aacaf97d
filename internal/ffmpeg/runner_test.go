package ffmpeg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
)

func testRunner(tailBytes int) *Runner {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	return NewRunner(200*time.Millisecond, tailBytes, log)
}

// shCommand wraps a shell script as a Command so the supervisor can be
// exercised without a real encoder.
func shCommand(workDir, outputPath, script string) Command {
	return Command{
		Binary:     "/bin/sh",
		Args:       []string{"-c", script},
		WorkDir:    workDir,
		OutputPath: outputPath,
	}
}

func TestRunSuccess(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	cmd := shCommand(dir, out, "printf encoded > "+out)
	outcome := testRunner(4096).Run(context.Background(), cmd, 5*time.Second)

	if outcome.Status != OutcomeSuccess {
		t.Fatalf("expected success, got %s (stderr: %s)", outcome.Status, outcome.StderrTail)
	}
	if outcome.OutputPath != out {
		t.Errorf("expected output path %s, got %s", out, outcome.OutputPath)
	}
	if outcome.Duration <= 0 {
		t.Error("expected positive duration")
	}
}

func TestRunFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	cmd := shCommand(dir, out, "echo 'Error initializing filter drawtext' 1>&2; exit 3")
	outcome := testRunner(4096).Run(context.Background(), cmd, 5*time.Second)

	if outcome.Status != OutcomeFailure {
		t.Fatalf("expected failure, got %s", outcome.Status)
	}
	if outcome.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", outcome.ExitCode)
	}
	if outcome.Reason != ReasonFilter {
		t.Errorf("expected filter reason, got %s", outcome.Reason)
	}
	if outcome.StderrTail == "" {
		t.Error("expected stderr tail to be captured")
	}
}

func TestRunMissingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	cmd := shCommand(dir, out, "true")
	outcome := testRunner(4096).Run(context.Background(), cmd, 5*time.Second)

	if outcome.Status != OutcomeFailure {
		t.Fatalf("expected failure for missing output, got %s", outcome.Status)
	}
	if outcome.Reason != ReasonNoOutput {
		t.Errorf("expected no_output reason, got %s", outcome.Reason)
	}
}

func TestRunEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")
	if err := os.WriteFile(out, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := shCommand(dir, out, "true")
	outcome := testRunner(4096).Run(context.Background(), cmd, 5*time.Second)

	if outcome.Status != OutcomeFailure || outcome.Reason != ReasonNoOutput {
		t.Errorf("expected no_output failure for empty file, got %s/%s", outcome.Status, outcome.Reason)
	}
}

func TestRunTimeout(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	cmd := shCommand(dir, out, "sleep 10")
	start := time.Now()
	outcome := testRunner(4096).Run(context.Background(), cmd, 200*time.Millisecond)
	elapsed := time.Since(start)

	if outcome.Status != OutcomeTimedOut {
		t.Fatalf("expected timeout, got %s", outcome.Status)
	}
	// Must return within timeout + grace, with margin for CI noise.
	if elapsed > 3*time.Second {
		t.Errorf("timeout enforcement took too long: %v", elapsed)
	}
}

func TestRunParentCancellation(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	cmd := shCommand(dir, out, "sleep 10")
	outcome := testRunner(4096).Run(ctx, cmd, time.Minute)

	if outcome.Status != OutcomeTimedOut {
		t.Fatalf("expected cancellation to surface as timeout, got %s", outcome.Status)
	}
}

func TestRunStderrBounded(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "output.mp4")

	const tailBytes = 256
	cmd := shCommand(dir, out, "i=0; while [ $i -lt 200 ]; do echo 'noisy diagnostic line from the encoder' 1>&2; i=$((i+1)); done; exit 1")
	outcome := testRunner(tailBytes).Run(context.Background(), cmd, 10*time.Second)

	if outcome.Status != OutcomeFailure {
		t.Fatalf("expected failure, got %s", outcome.Status)
	}
	if len(outcome.StderrTail) > tailBytes+len("...") {
		t.Errorf("stderr tail exceeds bound: %d bytes", len(outcome.StderrTail))
	}
}
