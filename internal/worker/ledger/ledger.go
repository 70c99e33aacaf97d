// Package ledger keeps an optional, write-only record of finished jobs
// in Postgres. The pipeline never reads it back; it exists for
// operators auditing what the worker produced.
package ledger

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS job_results (
	job_id       TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	error_kind   TEXT,
	error_msg    TEXT,
	locator      TEXT,
	provider     TEXT,
	size_bytes   BIGINT,
	duration_ms  BIGINT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Ledger records results. A nil pool disables it; every method is safe
// to call in that state.
type Ledger struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// New creates a ledger over pool, which may be nil.
func New(pool *pgxpool.Pool, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Ledger{pool: pool, log: log.WithComponent("ledger")}
}

// Enabled reports whether results are being recorded.
func (l *Ledger) Enabled() bool {
	return l.pool != nil
}

// EnsureSchema creates the results table if missing.
func (l *Ledger) EnsureSchema(ctx context.Context) error {
	if l.pool == nil {
		return nil
	}
	_, err := l.pool.Exec(ctx, schema)
	return err
}

// Record writes one result. Best effort: a write failure is logged and
// swallowed, it never affects the job outcome already reported to the
// runtime.
func (l *Ledger) Record(ctx context.Context, res job.Result) {
	if l.pool == nil {
		return
	}

	var kind, msg, locator, provider *string
	var size *int64
	if res.Error != nil {
		k := string(res.Error.Kind)
		kind, msg = &k, &res.Error.Message
	}
	if res.Output != nil {
		locator, provider, size = &res.Output.Locator, &res.Output.Provider, &res.Output.SizeBytes
	}

	_, err := l.pool.Exec(ctx, `
		INSERT INTO job_results (job_id, status, error_kind, error_msg, locator, provider, size_bytes, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (job_id) DO NOTHING`,
		res.ID, string(res.Status), kind, msg, locator, provider, size, res.DurationMs,
	)
	if err != nil {
		l.log.FromContext(ctx).Warn("failed to record job result",
			"job_id", res.ID,
			"error", err.Error(),
		)
	}
}
