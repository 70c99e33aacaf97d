// Package httpapi assembles the worker's ops HTTP surface.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/config"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/httpapi/handlers"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/middleware"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"
)

type Deps struct {
	Config config.Config
	Pool   *pgxpool.Pool
	RDB    *redis.Client
	SP     ports.StorageProvider
	Log    *logger.Logger
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))

	h := handlers.New(handlers.Deps{
		Config: d.Config,
		Pool:   d.Pool,
		RDB:    d.RDB,
		SP:     d.SP,
	})

	r.Get("/health", h.Health)

	return r
}
