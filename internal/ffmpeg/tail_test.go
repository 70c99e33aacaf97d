package ffmpeg

import (
	"strings"
	"testing"
)

func TestTailBufferKeepsEverythingUnderLimit(t *testing.T) {
	tb := newTailBuffer(64)

	tb.Write([]byte("first "))
	tb.Write([]byte("second"))

	if got := tb.String(); got != "first second" {
		t.Errorf("expected full content, got %q", got)
	}
}

func TestTailBufferDropsOldest(t *testing.T) {
	tb := newTailBuffer(10)

	tb.Write([]byte("abcdefgh"))
	tb.Write([]byte("ijkl"))

	got := tb.String()
	if !strings.HasPrefix(got, "...") {
		t.Errorf("expected truncation marker, got %q", got)
	}
	if !strings.HasSuffix(got, "ijkl") {
		t.Errorf("expected newest bytes retained, got %q", got)
	}
	if len(got) > 10+len("...") {
		t.Errorf("tail exceeds limit: %q", got)
	}
}

func TestTailBufferSingleOversizedWrite(t *testing.T) {
	tb := newTailBuffer(5)

	n, err := tb.Write([]byte("0123456789"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("Write must report full length, got %d", n)
	}
	if got := tb.String(); got != "...56789" {
		t.Errorf("expected last 5 bytes, got %q", got)
	}
}

func TestClassifyStderr(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   FailureReason
	}{
		{"decode error", "clip.mp4: Invalid data found when processing input", ReasonDecode},
		{"truncated mp4", "moov atom not found", ReasonDecode},
		{"bad filter", "No such filter: 'drawtxt'", ReasonFilter},
		{"font problem", "Cannot find a valid font for the family Sans", ReasonFilter},
		{"missing file", "/in/clip.mp4: No such file or directory", ReasonMissingFile},
		{"anything else", "Conversion failed!", ReasonUnknown},
		{"empty", "", ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStderr(tt.stderr); got != tt.want {
				t.Errorf("classifyStderr() = %s, want %s", got, tt.want)
			}
		})
	}
}
