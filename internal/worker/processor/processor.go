// Package processor runs one captioned-encode job end to end: validate
// the request, materialize its inputs, supervise the encoder, deliver
// the artifact. Each job is handled in isolation inside its own scratch
// directory and always produces exactly one result.
package processor

import (
	"context"
	"os"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/config"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ffmpeg"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"
)

// EncodeRunner supervises one encoder invocation.
type EncodeRunner interface {
	Run(ctx context.Context, cmd ffmpeg.Command, timeout time.Duration) ffmpeg.Outcome
}

// Deps are the processor's collaborators. Runner may be left nil to get
// the real ffmpeg supervisor.
type Deps struct {
	Config config.Config
	SP     ports.StorageProvider
	Runner EncodeRunner
	Log    *logger.Logger
}

// Processor executes jobs. Stateless between jobs; safe for use from a
// single worker loop.
type Processor struct {
	cfg    config.Config
	runner EncodeRunner
	log    *logger.Logger

	resolver *Resolver
	fonts    *FontRegistry
	packager *Packager
}

// New wires a processor from its dependencies.
func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("processor")

	runner := d.Runner
	if runner == nil {
		runner = ffmpeg.NewRunner(d.Config.KillGrace, d.Config.StderrTailKB*1024, log)
	}

	return &Processor{
		cfg:      d.Config,
		runner:   runner,
		log:      log,
		resolver: NewResolver(d.Config.ScratchPath, d.Config.FetchTimeout, log),
		fonts:    NewFontRegistry(d.Config.FontDir),
		packager: NewPackager(d.SP, log),
	}
}

// Handle runs one job to completion and returns its result. It never
// returns an error and never panics: every failure, including a panic
// in a stage, is folded into a failed result so the worker loop always
// has something to report.
func (p *Processor) Handle(ctx context.Context, jobID string, req job.Request) (result job.Result) {
	start := time.Now()
	log := p.log.FromContext(ctx).WithJobID(jobID)

	defer func() {
		if r := recover(); r != nil {
			log.Error("job panicked", "panic", r)
			result = job.Failed(jobID, job.KindInternal, "internal worker fault", time.Since(start).Milliseconds())
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, p.cfg.JobTimeout)
	defer cancel()

	out, err := p.run(jobCtx, log, jobID, req)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		kind := job.KindFromError(err)
		msg := failureMessage(err)
		if jobCtx.Err() != nil {
			// The job clock ran out mid-stage; whatever the stage
			// reported, the truthful category is timeout.
			kind = job.KindTimeout
			msg = "job timed out"
		}
		log.Error("job failed",
			"kind", string(kind),
			"error", err.Error(),
			"duration_ms", elapsed,
		)
		return job.Failed(jobID, kind, msg, elapsed)
	}

	log.Info("job completed",
		"locator", out.Locator,
		"provider", out.Provider,
		"bytes", out.SizeBytes,
		"duration_ms", elapsed,
	)
	return job.Completed(jobID, out, elapsed)
}

// run executes the pipeline stages in order, short-circuiting on the
// first failure.
func (p *Processor) run(ctx context.Context, log *logger.Logger, jobID string, req job.Request) (job.Output, error) {
	if err := validateRequest(req); err != nil {
		return job.Output{}, err
	}

	log.Debug("resolving inputs", "sources", 1+len(req.ExtraSources))
	resolved, err := p.resolver.Resolve(ctx, jobID, req)
	if err != nil {
		return job.Output{}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(resolved.WorkDir); rmErr != nil {
			log.Warn("failed to remove work dir", "path", resolved.WorkDir, "error", rmErr.Error())
		}
	}()

	fontPath := ""
	if req.Caption.Requested() {
		fontPath, err = p.fonts.Resolve(req.Caption.Style)
		if err != nil {
			return job.Output{}, err
		}
	}

	cmd := ffmpeg.Build(ffmpeg.BuildInput{
		Binary:        p.cfg.FFmpegPath,
		WorkDir:       resolved.WorkDir,
		Sources:       resolved.Sources,
		NarrationPath: resolved.NarrationPath,
		FontPath:      fontPath,
		Caption:       req.Caption,
		Layout:        req.Layout,
		Quality:       req.Quality,
	})

	log.Debug("starting encode", "args", len(cmd.Args))
	outcome := p.runner.Run(ctx, cmd, p.cfg.EncodeTimeout)

	return p.packager.Package(ctx, jobID, outcome)
}

// failureMessage picks the message reported to the runtime. Coded
// errors already carry a user-facing message; anything else is masked
// as an internal fault so stack details stay in the logs.
func failureMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) && e.Code != errors.CodeInternal {
		return e.Message
	}
	return "internal worker fault"
}
