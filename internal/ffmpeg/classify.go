package ffmpeg

import "strings"

// FailureReason is a best-effort classification of an encoder failure,
// derived from known stderr substrings. Advisory only; the exit code
// and output file are the authoritative signals.
type FailureReason string

const (
	ReasonDecode      FailureReason = "decode"
	ReasonFilter      FailureReason = "filter"
	ReasonMissingFile FailureReason = "missing_file"
	ReasonNoOutput    FailureReason = "no_output"
	ReasonUnknown     FailureReason = "unknown"
)

var reasonMarkers = []struct {
	marker string
	reason FailureReason
}{
	{"invalid data found when processing input", ReasonDecode},
	{"moov atom not found", ReasonDecode},
	{"error while decoding", ReasonDecode},
	{"could not find codec parameters", ReasonDecode},
	{"no such filter", ReasonFilter},
	{"error initializing filter", ReasonFilter},
	{"error reinitializing filters", ReasonFilter},
	{"cannot find a valid font", ReasonFilter},
	{"error parsing a filter description", ReasonFilter},
	{"no such file or directory", ReasonMissingFile},
}

// classifyStderr scans the stderr tail for known failure markers.
func classifyStderr(stderr string) FailureReason {
	lower := strings.ToLower(stderr)
	for _, m := range reasonMarkers {
		if strings.Contains(lower, m.marker) {
			return m.reason
		}
	}
	return ReasonUnknown
}
