package processor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
)


// maxFetchBytes bounds a single remote download.
const maxFetchBytes = 2 << 30

// Resolved is the materialized job input: every clip and the optional
// narration as local files, plus the job-scoped work dir the outputs
// will land in. The caller owns the work dir and must remove it on
// every exit path.
type Resolved struct {
	WorkDir       string
	Sources       []string
	NarrationPath string
}

// Resolver turns request locators into local files. Remote sources are
// downloaded into the job work dir; local sources are validated in
// place and never copied.
type Resolver struct {
	scratch      string
	fetchTimeout time.Duration
	client       *http.Client
	log          *logger.Logger
}

// NewResolver creates a resolver writing under scratch.
func NewResolver(scratch string, fetchTimeout time.Duration, log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Resolver{
		scratch:      scratch,
		fetchTimeout: fetchTimeout,
		client:       &http.Client{},
		log:          log.WithComponent("resolver"),
	}
}

// Resolve creates the work dir and stages everything the encode needs.
// On any error the work dir is removed before returning; on success it
// is handed to the caller.
func (r *Resolver) Resolve(ctx context.Context, jobID string, req job.Request) (Resolved, error) {
	workDir, err := os.MkdirTemp(r.scratch, "job-"+jobID+"-")
	if err != nil {
		return Resolved{}, errors.Wrap(err, "resolver.workdir", "failed to create work dir")
	}

	res, err := r.stage(ctx, workDir, req)
	if err != nil {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			r.log.FromContext(ctx).Warn("failed to remove work dir", "path", workDir, "error", rmErr.Error())
		}
		return Resolved{}, err
	}
	return res, nil
}

func (r *Resolver) stage(ctx context.Context, workDir string, req job.Request) (Resolved, error) {
	res := Resolved{WorkDir: workDir}

	locators := append([]string{req.Source}, req.ExtraSources...)
	for i, loc := range locators {
		path, err := r.stageSource(ctx, workDir, i, loc)
		if err != nil {
			return Resolved{}, err
		}
		res.Sources = append(res.Sources, path)
	}

	switch {
	case req.NarrationBase64 != "":
		path, err := r.stageNarrationBase64(workDir, req.NarrationBase64)
		if err != nil {
			return Resolved{}, err
		}
		res.NarrationPath = path
	case req.NarrationURL != "":
		path, err := r.stageNarrationURL(ctx, workDir, req.NarrationURL)
		if err != nil {
			return Resolved{}, err
		}
		res.NarrationPath = path
	}

	return res, nil
}

// stageSource materializes one clip locator as a local file.
func (r *Resolver) stageSource(ctx context.Context, workDir string, index int, locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", errors.Wrapf(err, "resolver.source", "unparseable source %q", locator).
			WithField("source", locator)
	}

	switch u.Scheme {
	case "http", "https":
		dest := filepath.Join(workDir, fmt.Sprintf("source_%d%s", index, sourceExt(u.Path)))
		if err := r.fetch(ctx, locator, dest); err != nil {
			return "", err
		}
		if err := checkMediaHeader(dest); err != nil {
			return "", errors.Wrapf(err, "resolver.sniff", "fetched source %d is not playable media", index).
				WithField("source", locator)
		}
		return dest, nil

	case "", "file":
		path := locator
		if u.Scheme == "file" {
			path = u.Path
		}
		if !filepath.IsAbs(path) {
			return "", errors.InvalidInputf("local source must be an absolute path, got %q", path)
		}
		st, err := os.Stat(path)
		if err != nil {
			return "", errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.source", "local source not found").
				WithField("source", path)
		}
		if st.IsDir() || st.Size() == 0 {
			return "", errors.InvalidInputf("local source %q is not a regular non-empty file", path)
		}
		if err := checkMediaHeader(path); err != nil {
			return "", errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.sniff", "local source is not playable media").
				WithField("source", path)
		}
		return path, nil

	default:
		return "", errors.InvalidInputf("unsupported source scheme %q", u.Scheme).
			WithField("source", locator)
	}
}

func (r *Resolver) stageNarrationBase64(workDir, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.narration", "narration audio is not valid base64")
	}

	ext, err := audioExtension(data)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.narration", "narration audio is not a recognized format")
	}

	dest := filepath.Join(workDir, "narration"+ext)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", errors.Wrap(err, "resolver.narration", "failed to write narration file")
	}
	return dest, nil
}

func (r *Resolver) stageNarrationURL(ctx context.Context, workDir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.InvalidInputf("narration URL must be http(s), got %q", rawURL)
	}

	staged := filepath.Join(workDir, "narration.download")
	if err := r.fetch(ctx, rawURL, staged); err != nil {
		return "", err
	}

	ext, err := sniffAudioExt(staged)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.narration", "fetched narration is not a recognized format").
			WithField("url", rawURL)
	}

	dest := filepath.Join(workDir, "narration"+ext)
	if err := os.Rename(staged, dest); err != nil {
		return "", errors.Wrap(err, "resolver.narration", "failed to stage narration file")
	}
	return dest, nil
}

// fetch downloads one URL to dest, bounded by the per-download timeout
// and size cap.
func (r *Resolver) fetch(ctx context.Context, rawURL, dest string) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.fetch", "invalid source URL").
			WithField("url", rawURL)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.fetch", "fetch failed").
			WithField("url", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.InvalidInputf("fetch failed: %s returned status %d", rawURL, resp.StatusCode).
			WithField("url", rawURL)
	}

	f, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "resolver.fetch", "failed to create staging file")
	}

	written, err := io.Copy(f, io.LimitReader(resp.Body, maxFetchBytes+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidInput, "resolver.fetch", "fetch failed mid-transfer").
			WithField("url", rawURL)
	}
	if written > maxFetchBytes {
		return errors.InvalidInputf("fetch failed: %s exceeds the %d byte download cap", rawURL, int64(maxFetchBytes))
	}

	r.log.FromContext(ctx).Debug("fetched source", "url", rawURL, "bytes", written)
	return nil
}

// sourceExt keeps the remote file extension when it looks like one, so
// staged names stay recognizable in logs.
func sourceExt(urlPath string) string {
	ext := filepath.Ext(urlPath)
	if len(ext) > 1 && len(ext) <= 5 {
		return ext
	}
	return ".mp4"
}
