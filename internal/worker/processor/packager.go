package processor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ffmpeg"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"
)

const outputContentType = "video/mp4"

// Packager turns a finished encoder outcome into the job's durable
// output, or the structured error the runtime gets instead.
type Packager struct {
	sp  ports.StorageProvider
	log *logger.Logger
}

// NewPackager creates a packager uploading through the given provider.
func NewPackager(sp ports.StorageProvider, log *logger.Logger) *Packager {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Packager{sp: sp, log: log.WithComponent("packager")}
}

// Package consumes the encoder outcome. On success the artifact is
// uploaded and described; every other status becomes a coded error so
// the caller's result mapping stays in one place.
func (p *Packager) Package(ctx context.Context, jobID string, outcome ffmpeg.Outcome) (job.Output, error) {
	switch outcome.Status {
	case ffmpeg.OutcomeSuccess:
		return p.upload(ctx, jobID, outcome.OutputPath)

	case ffmpeg.OutcomeTimedOut:
		return job.Output{}, errors.Timeout("encode").
			WithField("stderr_tail", outcome.StderrTail)

	case ffmpeg.OutcomeFailure:
		msg := fmt.Sprintf("encoder exited with code %d (%s)", outcome.ExitCode, outcome.Reason)
		if tail := lastStderrLine(outcome.StderrTail); tail != "" {
			msg += ": " + tail
		}
		return job.Output{}, errors.EncodeFailed(msg).
			WithField("exit_code", outcome.ExitCode).
			WithField("reason", string(outcome.Reason))

	default:
		return job.Output{}, errors.Internalf("unknown encoder outcome %q", outcome.Status)
	}
}

// upload streams the artifact to the storage provider under a
// job-scoped key.
func (p *Packager) upload(ctx context.Context, jobID, path string) (job.Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return job.Output{}, errors.Wrap(err, "packager.open", "failed to open encoded output")
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return job.Output{}, errors.Wrap(err, "packager.stat", "failed to stat encoded output")
	}

	key := fmt.Sprintf("renders/%s/%s", jobID, ffmpeg.OutputFileName)
	out, err := p.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   key,
		ContentType: outputContentType,
		Reader:      f,
		Size:        st.Size(),
	})
	if err != nil {
		return job.Output{}, errors.WrapWithCode(err, errors.CodeUploadFailed, "packager.upload", "failed to upload encoded output").
			WithField("object_key", key)
	}

	p.log.FromContext(ctx).Info("artifact uploaded",
		"provider", p.sp.Provider(),
		"locator", out.ObjectKey,
		"bytes", out.Size,
	)
	return job.Output{
		Locator:   out.ObjectKey,
		Provider:  p.sp.Provider(),
		SizeBytes: out.Size,
	}, nil
}

// lastStderrLine extracts the final non-empty stderr line, which is
// where ffmpeg puts the actual error.
func lastStderrLine(tail string) string {
	lines := strings.Split(strings.TrimSpace(tail), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
