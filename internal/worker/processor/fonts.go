package processor

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/errors"
)

// fontByStyle is the closed enumeration of caption styles. The empty
// style selects the bundled default; anything not listed here is
// rejected, there is no fallback.
var fontByStyle = map[string]string{
	"":           "NotoSans-Bold.ttf",
	"sans-bold":  "NotoSans-Bold.ttf",
	"sans":       "NotoSans-Regular.ttf",
	"serif-bold": "NotoSerif-Bold.ttf",
}

// FontRegistry resolves enumerated caption styles to font files under
// the deployment's font directory. The directory is read-only and
// shared by all jobs.
type FontRegistry struct {
	dir string
}

// NewFontRegistry creates a registry over the given font directory.
func NewFontRegistry(dir string) *FontRegistry {
	return &FontRegistry{dir: dir}
}

// Resolve maps a style name to an absolute font path. An unknown style
// is an input error; a known style whose file is missing is a
// deployment fault and surfaces as internal.
func (f *FontRegistry) Resolve(style string) (string, error) {
	name, ok := fontByStyle[style]
	if !ok {
		return "", errors.InvalidInputf("unknown caption style %q", style).
			WithField("style", style)
	}

	path := filepath.Join(f.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", errors.Wrapf(err, "fonts.resolve", "font file missing for style %q", style)
	}
	return path, nil
}

// Styles returns the known style names, sorted, for diagnostics.
func (f *FontRegistry) Styles() []string {
	styles := make([]string, 0, len(fontByStyle))
	for s := range fontByStyle {
		if s != "" {
			styles = append(styles, s)
		}
	}
	sort.Strings(styles)
	return styles
}
