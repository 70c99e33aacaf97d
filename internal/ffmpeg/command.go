// Package ffmpeg builds and supervises invocations of the external
// ffmpeg encoder. Commands are immutable argument lists; nothing here
// ever passes through a shell.
package ffmpeg

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
)

// Fixed encode settings. Only the enumerated request options below may
// override them.
const (
	videoCodec   = "libx264"
	videoProfile = "main"
	videoPreset  = "medium"
	audioCodec   = "aac"
	audioBitrate = "128k"
	pixelFormat  = "yuv420p"

	defaultCRF      = 23
	defaultFontSize = 96
	borderWidth     = 3
	borderColor     = "black"
	defaultColor    = "white"

	// Vertical (9:16) framing, matching the reels layout.
	verticalWidth  = 1080
	verticalHeight = 1920
	verticalBlur   = "20:1"
	foregroundH    = 1080
)

// OutputFileName is the declared output inside the job work dir.
const OutputFileName = "output.mp4"

// crfByQuality maps the enumerated quality names onto x264 CRF values.
var crfByQuality = map[string]int{
	"":       defaultCRF,
	"medium": defaultCRF,
	"low":    28,
	"high":   18,
}

// yExprByPosition maps the enumerated caption positions onto drawtext
// y expressions.
var yExprByPosition = map[string]string{
	"":       "h*0.75",
	"bottom": "h*0.75",
	"center": "(h-text_h)/2",
	"top":    "h*0.1",
}

// Command is an immutable description of one encoder invocation.
type Command struct {
	Binary     string
	Args       []string
	WorkDir    string
	OutputPath string
}

// BuildInput carries everything the builder needs. All fields are
// already validated; Build performs no IO and cannot fail.
type BuildInput struct {
	Binary  string
	WorkDir string
	// Sources are the staged clip paths, in playback order.
	Sources []string
	// NarrationPath is the staged narration audio, empty when absent.
	NarrationPath string
	// FontPath is the resolved caption font file.
	FontPath string

	Caption job.Caption
	Layout  string
	Quality string
}

// Build translates resolved inputs and request options into a concrete
// encoder invocation. The output path is always a fresh path inside the
// job work dir, never caller supplied.
func Build(in BuildInput) Command {
	outputPath := filepath.Join(in.WorkDir, OutputFileName)

	args := []string{"-y", "-hide_banner"}
	for _, src := range in.Sources {
		args = append(args, "-i", src)
	}
	if in.NarrationPath != "" {
		args = append(args, "-i", in.NarrationPath)
	}

	graph, videoLabel, audioLabel := buildFilterGraph(in)
	if graph != "" {
		args = append(args, "-filter_complex", graph)
		args = append(args, "-map", videoLabel)
	} else {
		args = append(args, "-map", "0:v")
	}

	switch {
	case in.NarrationPath != "":
		// Narration is always the last input; video length follows it.
		narrationIndex := len(in.Sources)
		args = append(args, "-map", fmt.Sprintf("%d:a", narrationIndex), "-shortest")
	case audioLabel != "":
		args = append(args, "-map", audioLabel)
	default:
		args = append(args, "-map", "0:a?")
	}

	args = append(args,
		"-c:v", videoCodec,
		"-profile:v", videoProfile,
		"-preset", videoPreset,
		"-crf", strconv.Itoa(crfByQuality[in.Quality]),
		"-c:a", audioCodec,
		"-b:a", audioBitrate,
		"-pix_fmt", pixelFormat,
		outputPath,
	)

	return Command{
		Binary:     in.Binary,
		Args:       args,
		WorkDir:    in.WorkDir,
		OutputPath: outputPath,
	}
}

// buildFilterGraph assembles the filter_complex string. It returns the
// empty string when no filtering is needed (single clip, source layout,
// no caption).
func buildFilterGraph(in BuildInput) (graph, videoLabel, audioLabel string) {
	var chains []string
	current := "[0:v]"

	if len(in.Sources) > 1 {
		// With narration the clips' audio is discarded; without it the
		// clip audio must be concatenated too, or the first clip's
		// track would play over the whole stitched video.
		concatAudio := in.NarrationPath == ""

		var streams strings.Builder
		for i := range in.Sources {
			fmt.Fprintf(&streams, "[%d:v]", i)
			if concatAudio {
				fmt.Fprintf(&streams, "[%d:a]", i)
			}
		}
		if concatAudio {
			chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=1[stitched_v][stitched_a]", streams.String(), len(in.Sources)))
			audioLabel = "[stitched_a]"
		} else {
			chains = append(chains, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[stitched_v]", streams.String(), len(in.Sources)))
		}
		current = "[stitched_v]"
	}

	if in.Layout == "vertical" {
		chains = append(chains, fmt.Sprintf(
			"%ssplit=2[v_main][v_bg];"+
				"[v_bg]scale=%d:%d,boxblur=%s[bg];"+
				"[v_main]scale=-1:%d[fg];"+
				"[bg][fg]overlay=(W-w)/2:(H-h)/2[formatted_v]",
			current, verticalWidth, verticalHeight, verticalBlur, foregroundH))
		current = "[formatted_v]"
	}

	if in.Caption.Requested() {
		chains = append(chains, current+strings.Join(drawtextFilters(in), ",")+"[final_v]")
		current = "[final_v]"
	}

	if len(chains) == 0 {
		return "", "", ""
	}
	return strings.Join(chains, ";"), current, audioLabel
}

// drawtextFilters renders the caption as one drawtext per timed word,
// or a single untimed drawtext for static text.
func drawtextFilters(in BuildInput) []string {
	c := in.Caption

	fontSize := c.FontSize
	if fontSize <= 0 {
		fontSize = defaultFontSize
	}
	color := c.Color
	if color == "" {
		color = defaultColor
	}
	yExpr := yExprByPosition[c.Position]

	base := fmt.Sprintf(
		"drawtext=fontfile=%s:fontcolor=%s:fontsize=%d:borderw=%d:bordercolor=%s:x=(w-text_w)/2:y=%s:expansion=none",
		EscapeFilterText(in.FontPath), color, fontSize, borderWidth, borderColor, yExpr)

	if len(c.Words) == 0 {
		return []string{base + ":text=" + EscapeFilterText(strings.TrimSpace(c.Text))}
	}

	filters := make([]string, 0, len(c.Words))
	for _, w := range c.Words {
		filters = append(filters, fmt.Sprintf(
			"%s:text=%s:enable='between(t,%s,%s)'",
			base,
			EscapeFilterText(strings.TrimSpace(w.Text)),
			formatSeconds(w.Start),
			formatSeconds(w.End),
		))
	}
	return filters
}

// EscapeFilterText quotes arbitrary text for use as a filter option
// value. The text is wrapped in single quotes, inside which the filter
// parser copies everything verbatim; embedded quotes are emitted as
// '\'' (close quote, escaped quote, reopen), the same convention shells
// use. This neutralizes the filter-graph special characters (colon,
// backslash, comma, semicolon, brackets) deterministically.
func EscapeFilterText(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		if r == '\'' {
			b.WriteString(`'\''`)
			continue
		}
		b.WriteRune(r)
	}
	b.WriteByte('\'')
	return b.String()
}

// formatSeconds renders a timestamp without trailing zeros.
func formatSeconds(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
