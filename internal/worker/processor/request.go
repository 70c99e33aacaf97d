package processor

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
)

// Closed option sets. Requests carry names, never encoder arguments;
// anything outside these sets is rejected before any IO happens.
var (
	validLayouts = map[string]bool{
		"":         true,
		"source":   true,
		"vertical": true,
	}
	validQualities = map[string]bool{
		"":       true,
		"low":    true,
		"medium": true,
		"high":   true,
	}
	validPositions = map[string]bool{
		"":       true,
		"bottom": true,
		"center": true,
		"top":    true,
	}
	validColors = map[string]bool{
		"":       true,
		"white":  true,
		"black":  true,
		"yellow": true,
		"red":    true,
		"green":  true,
		"blue":   true,
	}
)

const maxExtraSources = 8

// ParseEnvelope decodes one raw queue message. A missing job ID gets a
// generated one so the failure result can still be correlated.
func ParseEnvelope(raw []byte) (job.Envelope, error) {
	var env job.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return job.Envelope{}, errors.Wrapf(err, "processor.parse", "malformed job envelope").
			WithField("bytes", len(raw))
	}
	if env.ID == "" {
		env.ID = uuid.NewString()
	}
	return env, nil
}

// validateRequest checks the request shape before touching the
// filesystem or network. Every rejection is an invalid-input error with
// a message naming the offending field.
func validateRequest(req job.Request) error {
	if strings.TrimSpace(req.Source) == "" {
		return errors.InvalidInput("source is required")
	}
	if len(req.ExtraSources) > maxExtraSources {
		return errors.InvalidInputf("too many extra sources: %d (max %d)", len(req.ExtraSources), maxExtraSources)
	}
	for i, src := range req.ExtraSources {
		if strings.TrimSpace(src) == "" {
			return errors.InvalidInputf("extra source %d is empty", i)
		}
	}

	if req.NarrationURL != "" && req.NarrationBase64 != "" {
		return errors.InvalidInput("narration_url and narration_audio_base64 are mutually exclusive")
	}

	if !validLayouts[req.Layout] {
		return errors.InvalidInputf("unknown layout %q", req.Layout)
	}
	if !validQualities[req.Quality] {
		return errors.InvalidInputf("unknown quality %q", req.Quality)
	}

	return validateCaption(req.Caption)
}

func validateCaption(c job.Caption) error {
	if !validPositions[c.Position] {
		return errors.InvalidInputf("unknown caption position %q", c.Position)
	}
	if !validColors[c.Color] {
		return errors.InvalidInputf("unknown caption color %q", c.Color)
	}
	if c.FontSize < 0 {
		return errors.InvalidInputf("caption font size must not be negative, got %d", c.FontSize)
	}

	if strings.TrimSpace(c.Text) != "" && len(c.Words) > 0 {
		return errors.InvalidInput("caption text and timed words are mutually exclusive")
	}

	for i, w := range c.Words {
		if strings.TrimSpace(w.Text) == "" {
			return errors.InvalidInputf("timed word %d has empty text", i)
		}
		if w.Start < 0 {
			return errors.InvalidInputf("timed word %d starts before 0", i)
		}
		if w.End <= w.Start {
			return errors.InvalidInputf("timed word %d ends at or before its start", i)
		}
	}
	return nil
}
