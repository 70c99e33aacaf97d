// Package job defines the values exchanged with the host runtime: the
// job request delivered per invocation and the result returned for it.
package job

import (
	"strings"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
)

// Request is the immutable job input. Source is a local path or an
// http(s) URL; everything user-tunable is an enumerated option, never
// free-form encoder arguments.
type Request struct {
	// Source is the primary media locator (local path or http(s) URL).
	Source string `json:"source"`
	// ExtraSources are optional additional clips concatenated after Source.
	ExtraSources []string `json:"extra_sources,omitempty"`
	// NarrationURL optionally points at a narration audio file.
	NarrationURL string `json:"narration_url,omitempty"`
	// NarrationBase64 optionally carries narration audio inline.
	NarrationBase64 string `json:"narration_audio_base64,omitempty"`

	Caption Caption `json:"caption"`

	// Layout selects the output framing ("" or "source", "vertical").
	Layout string `json:"layout,omitempty"`
	// Quality selects the encode quality ("" or "medium", "low", "high").
	Quality string `json:"quality,omitempty"`
}

// Caption holds the burn-in text and its enumerated styling.
type Caption struct {
	// Text is a single static caption shown for the whole clip.
	Text string `json:"text,omitempty"`
	// Words are timed captions; each word is shown for [Start, End).
	Words []Word `json:"words,omitempty"`
	// Style names a bundled font ("" selects the default).
	Style string `json:"style,omitempty"`
	// Position is "bottom" (default), "center" or "top".
	Position string `json:"position,omitempty"`
	// FontSize in points; 0 selects the default.
	FontSize int `json:"font_size,omitempty"`
	// Color names an enumerated font color ("" selects white).
	Color string `json:"color,omitempty"`
}

// Word is one timed caption entry.
type Word struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Requested reports whether any caption burn-in was asked for.
func (c Caption) Requested() bool {
	return strings.TrimSpace(c.Text) != "" || len(c.Words) > 0
}

// Envelope is the wire form the runtime pushes onto the job queue.
type Envelope struct {
	ID    string  `json:"id"`
	Input Request `json:"input"`
}

// Status of a finished job.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrorKind is the closed set of failure categories reported to the
// runtime. Callers may retry entire jobs on transient kinds
// (upload_failed) but should not retry invalid_input.
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindEncodeFailed ErrorKind = "encode_failed"
	KindTimeout      ErrorKind = "timeout"
	KindUploadFailed ErrorKind = "upload_failed"
	KindInternal     ErrorKind = "internal"
)

// Result is the value returned to the runtime for one job. Exactly one
// of Output and Error is set.
type Result struct {
	ID         string       `json:"id"`
	Status     Status       `json:"status"`
	Output     *Output      `json:"output,omitempty"`
	Error      *ResultError `json:"error,omitempty"`
	DurationMs int64        `json:"duration_ms"`
}

// Output describes the delivered artifact.
type Output struct {
	// Locator is the durable artifact reference (object key, file ID
	// or local path, depending on the storage provider).
	Locator string `json:"locator"`
	// Provider names the storage provider holding the artifact.
	Provider string `json:"provider"`
	// SizeBytes is the artifact size.
	SizeBytes int64 `json:"size_bytes"`
}

// ResultError is the structured failure payload.
type ResultError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Completed builds a successful result.
func Completed(id string, out Output, durationMs int64) Result {
	return Result{
		ID:         id,
		Status:     StatusCompleted,
		Output:     &out,
		DurationMs: durationMs,
	}
}

// Failed builds a failure result.
func Failed(id string, kind ErrorKind, message string, durationMs int64) Result {
	return Result{
		ID:         id,
		Status:     StatusFailed,
		Error:      &ResultError{Kind: kind, Message: message},
		DurationMs: durationMs,
	}
}

// KindFromError maps an error onto the closed ErrorKind set. Errors
// without a recognized code are internal.
func KindFromError(err error) ErrorKind {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput:
		return KindInvalidInput
	case errors.CodeEncodeFailed:
		return KindEncodeFailed
	case errors.CodeTimeout:
		return KindTimeout
	case errors.CodeUploadFailed:
		return KindUploadFailed
	default:
		return KindInternal
	}
}
