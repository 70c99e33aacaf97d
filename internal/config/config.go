// Package config reads the worker's fixed deployment configuration from
// environment variables, once at start-up. Nothing here changes while
// the process runs.
package config

import (
	"fmt"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/util"
)

// Config is the process-wide, read-only worker configuration.
type Config struct {
	// RedisAddr is the queue endpoint delivering jobs.
	RedisAddr string
	// JobQueue is the Redis list the runtime pushes job envelopes to.
	JobQueue string
	// ResultQueue is the Redis list job results are pushed back to.
	ResultQueue string
	// DatabaseURL enables the job ledger when non-empty.
	DatabaseURL string

	// ScratchPath is the writable root for job-scoped temp directories.
	ScratchPath string
	// FFmpegPath is the encoder binary.
	FFmpegPath string
	// FontDir holds the bundled caption fonts.
	FontDir string

	// EncodeTimeout bounds a single ffmpeg run.
	EncodeTimeout time.Duration
	// JobTimeout bounds the whole job (fetch + encode + upload). It
	// must be strictly greater than EncodeTimeout.
	JobTimeout time.Duration
	// KillGrace is how long a timed-out encoder gets between SIGTERM
	// and SIGKILL.
	KillGrace time.Duration
	// FetchTimeout bounds a single remote source download.
	FetchTimeout time.Duration
	// ShutdownTimeout bounds graceful teardown.
	ShutdownTimeout time.Duration

	// StderrTailKB is how many kilobytes of encoder stderr to retain.
	StderrTailKB int

	// HealthAddr is the ops HTTP listen address; empty disables it.
	HealthAddr string
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		RedisAddr:       util.MustEnv("REDIS_ADDR"),
		JobQueue:        util.Env("JOB_QUEUE_NAME", "ffmpeg:jobs"),
		ResultQueue:     util.Env("RESULT_QUEUE_NAME", "ffmpeg:results"),
		DatabaseURL:     util.Env("DATABASE_URL", ""),
		ScratchPath:     util.Env("SCRATCH_PATH", "/tmp"),
		FFmpegPath:      util.Env("FFMPEG_PATH", "ffmpeg"),
		FontDir:         util.Env("FONT_DIR", "/usr/share/fonts/truetype/noto"),
		EncodeTimeout:   util.DurationEnv("ENCODE_TIMEOUT", 5*time.Minute),
		JobTimeout:      util.DurationEnv("JOB_TIMEOUT", 8*time.Minute),
		KillGrace:       util.DurationEnv("KILL_GRACE", 10*time.Second),
		FetchTimeout:    util.DurationEnv("FETCH_TIMEOUT", 60*time.Second),
		ShutdownTimeout: util.DurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		StderrTailKB:    util.IntEnv("STDERR_TAIL_KB", 64),
		HealthAddr:      util.Env("HEALTH_ADDR", ":8080"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the pipeline relies on.
func (c Config) Validate() error {
	if c.EncodeTimeout <= 0 {
		return fmt.Errorf("config: ENCODE_TIMEOUT must be positive, got %v", c.EncodeTimeout)
	}
	if c.JobTimeout <= c.EncodeTimeout {
		return fmt.Errorf("config: JOB_TIMEOUT (%v) must be greater than ENCODE_TIMEOUT (%v)", c.JobTimeout, c.EncodeTimeout)
	}
	if c.KillGrace <= 0 {
		return fmt.Errorf("config: KILL_GRACE must be positive, got %v", c.KillGrace)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("config: FETCH_TIMEOUT must be positive, got %v", c.FetchTimeout)
	}
	if c.StderrTailKB <= 0 {
		return fmt.Errorf("config: STDERR_TAIL_KB must be positive, got %d", c.StderrTailKB)
	}
	if c.ScratchPath == "" {
		return fmt.Errorf("config: SCRATCH_PATH must not be empty")
	}
	return nil
}
