// Package worker runs the job loop: pop an envelope from the queue,
// process it, push the result back. One job at a time; the serverless
// platform scales by running more workers.
package worker

import (
	"context"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/ledger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/processor"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/queue"
)

// respondTimeout bounds pushing one result back to the runtime. Results
// are sent on a fresh background context so a job that exhausted its
// own deadline can still be reported.
const respondTimeout = 10 * time.Second

func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	q := queue.NewRedisQueue(d.RDB, d.Config.JobQueue, d.Config.ResultQueue)
	led := ledger.New(d.Pool, log)
	p := processor.New(processor.Deps{
		Config: d.Config,
		SP:     d.SP,
		Log:    log,
	})

	log.Info("worker started",
		"job_queue", d.Config.JobQueue,
		"result_queue", d.Config.ResultQueue,
		"ledger", led.Enabled(),
	)

	for {
		select {
		case <-ctx.Done():
			log.Info("worker stopping")
			return ctx.Err()
		default:
		}

		raw, err := q.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping")
				return ctx.Err()
			}
			log.Warn("queue pop error, retrying", "error", err.Error())
			time.Sleep(time.Second)
			continue
		}
		if raw == nil {
			continue
		}

		result := handleEnvelope(ctx, p, raw, log)

		// Report on a background context: the job context may already
		// be spent, and an unreported result is a lost job.
		respondCtx, cancel := context.WithTimeout(context.Background(), respondTimeout)
		if err := q.Respond(respondCtx, result); err != nil {
			log.Error("failed to push result",
				"job_id", result.ID,
				"error", err.Error(),
			)
		}
		led.Record(respondCtx, result)
		cancel()
	}
}

// handleEnvelope decodes one queue message and runs it. A malformed
// envelope still yields a failure result so the runtime hears back.
func handleEnvelope(ctx context.Context, p *processor.Processor, raw []byte, log *logger.Logger) job.Result {
	env, err := processor.ParseEnvelope(raw)
	if err != nil {
		log.Error("dropping malformed envelope", "error", err.Error())
		return job.Failed("unknown", job.KindInvalidInput, "malformed job envelope", 0)
	}

	jobCtx := logger.ContextWithJobID(ctx, env.ID)
	log.WithJobID(env.ID).Info("processing job")
	return p.Handle(jobCtx, env.ID, env.Input)
}
