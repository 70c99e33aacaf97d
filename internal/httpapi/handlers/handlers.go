// Package handlers implements the worker's ops endpoints. These serve
// operators and orchestration probes, never job traffic.
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/config"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"
)

type Deps struct {
	Config config.Config
	Pool   *pgxpool.Pool
	RDB    *redis.Client
	SP     ports.StorageProvider
}

type Handler struct {
	cfg  config.Config
	pool *pgxpool.Pool
	rdb  *redis.Client
	sp   ports.StorageProvider
}

func New(d Deps) *Handler {
	return &Handler{
		cfg:  d.Config,
		pool: d.Pool,
		rdb:  d.RDB,
		sp:   d.SP,
	}
}
