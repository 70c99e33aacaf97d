package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "unsupported source")

	if err.Code != CodeInvalidInput {
		t.Errorf("expected code=%s, got %s", CodeInvalidInput, err.Code)
	}
	if err.Message != "unsupported source" {
		t.Errorf("expected message='unsupported source', got %s", err.Message)
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeEncodeFailed, "ffmpeg exited with code %d", 1)

	if err.Code != CodeEncodeFailed {
		t.Errorf("expected code=%s, got %s", CodeEncodeFailed, err.Code)
	}
	if err.Message != "ffmpeg exited with code 1" {
		t.Errorf("expected formatted message, got %s", err.Message)
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "simple error",
			err:      New(CodeInvalidInput, "invalid media"),
			contains: []string{"INVALID_INPUT", "invalid media"},
		},
		{
			name: "error with op",
			err: &Error{
				Code:    CodeUploadFailed,
				Message: "put object failed",
				Op:      "packager.upload",
			},
			contains: []string{"packager.upload", "UPLOAD_FAILED", "put object failed"},
		},
		{
			name: "error with underlying",
			err: &Error{
				Code:    CodeInternal,
				Message: "wrapper",
				Err:     fmt.Errorf("underlying error"),
			},
			contains: []string{"wrapper", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			str := tt.err.Error()
			for _, c := range tt.contains {
				if !strings.Contains(str, c) {
					t.Errorf("expected error string to contain %q, got: %s", c, str)
				}
			}
		})
	}
}

func TestWrapPreservesCode(t *testing.T) {
	original := InvalidInput("zero-length source")
	wrapped := Wrap(original, "resolver.stage", "staging failed")

	if wrapped.Code != CodeInvalidInput {
		t.Errorf("expected wrapped error to keep code %s, got %s", CodeInvalidInput, wrapped.Code)
	}
	if !errors.Is(wrapped, original) {
		t.Error("expected wrapped error to match original via errors.Is")
	}
}

func TestWrapPlainError(t *testing.T) {
	original := fmt.Errorf("connection refused")
	wrapped := Wrap(original, "queue.pop", "pop failed")

	if wrapped.Code != CodeInternal {
		t.Errorf("expected plain error wrap to be internal, got %s", wrapped.Code)
	}
	if wrapped.Op != "queue.pop" {
		t.Errorf("expected op='queue.pop', got %s", wrapped.Op)
	}
	if !errors.Is(wrapped, original) {
		t.Error("expected errors.Is to find the underlying error")
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "op", "msg") != nil {
		t.Error("expected Wrap(nil) to return nil")
	}
	if WrapWithCode(nil, CodeTimeout, "op", "msg") != nil {
		t.Error("expected WrapWithCode(nil) to return nil")
	}
}

func TestWrapWithCode(t *testing.T) {
	original := fmt.Errorf("status 503")
	wrapped := WrapWithCode(original, CodeUploadFailed, "packager.upload", "upload failed")

	if wrapped.Code != CodeUploadFailed {
		t.Errorf("expected code=%s, got %s", CodeUploadFailed, wrapped.Code)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"typed error", Timeout("encode"), CodeTimeout},
		{"wrapped typed error", fmt.Errorf("outer: %w", UploadFailed("boom")), CodeUploadFailed},
		{"plain error", fmt.Errorf("plain"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %s, expected %s", got, tt.expected)
			}
		})
	}
}

func TestIsCodeHelpers(t *testing.T) {
	if !IsInvalidInput(InvalidInput("bad scheme")) {
		t.Error("expected IsInvalidInput to be true")
	}
	if !IsTimeout(Timeout("encode")) {
		t.Error("expected IsTimeout to be true")
	}
	if IsTimeout(InvalidInput("bad scheme")) {
		t.Error("expected IsTimeout to be false for invalid input")
	}
}

func TestWithField(t *testing.T) {
	err := InvalidInput("unknown font").WithField("style", "gothic")

	fields := GetFields(err)
	if fields == nil {
		t.Fatal("expected fields to be present")
	}
	if fields["style"] != "gothic" {
		t.Errorf("expected style field, got %v", fields["style"])
	}
}
