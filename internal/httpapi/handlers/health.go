package handlers

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"time"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/httpkit"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/processor"
)

// Health reports worker liveness. With ?deep=true it also probes the
// queue, the storage provider, the encoder binary and the font
// directory.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"service": "ffmpeg-worker",
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := h.deepHealthCheck(r.Context())
		health["checks"] = checks

		for _, check := range checks {
			if checkMap, ok := check.(map[string]any); ok {
				if checkMap["status"] != "ok" {
					health["status"] = "degraded"
					break
				}
			}
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

func (h *Handler) deepHealthCheck(ctx context.Context) map[string]any {
	checks := map[string]any{
		"redis":   h.checkRedis(ctx),
		"storage": h.checkStorage(),
		"ffmpeg":  h.checkFFmpeg(),
		"fonts":   h.checkFonts(),
	}
	if h.pool != nil {
		checks["postgres"] = h.checkPostgres(ctx)
	}
	return checks
}

func (h *Handler) checkRedis(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.rdb.Ping(checkCtx).Err(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkPostgres(ctx context.Context) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := h.pool.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	} else {
		stats := h.pool.Stat()
		result["total_conns"] = stats.TotalConns()
		result["idle_conns"] = stats.IdleConns()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkStorage() map[string]any {
	return map[string]any{
		"status":   "ok",
		"provider": h.sp.Provider(),
	}
}

func (h *Handler) checkFFmpeg() map[string]any {
	result := map[string]any{"status": "ok", "path": h.cfg.FFmpegPath}
	if _, err := exec.LookPath(h.cfg.FFmpegPath); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	return result
}

func (h *Handler) checkFonts() map[string]any {
	reg := processor.NewFontRegistry(h.cfg.FontDir)
	result := map[string]any{
		"status": "ok",
		"dir":    h.cfg.FontDir,
		"styles": reg.Styles(),
	}

	st, err := os.Stat(h.cfg.FontDir)
	switch {
	case err != nil:
		result["status"] = "error"
		result["error"] = err.Error()
		return result
	case !st.IsDir():
		result["status"] = "error"
		result["error"] = "font path is not a directory"
		return result
	}

	// Every advertised style must resolve to a present file.
	var missing []string
	for _, style := range reg.Styles() {
		if _, err := reg.Resolve(style); err != nil {
			missing = append(missing, style)
		}
	}
	if len(missing) > 0 {
		result["status"] = "error"
		result["missing_styles"] = missing
	}
	return result
}
