package worker

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/config"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/ports"
)

// Deps wires the worker loop. Pool is optional; everything else is
// required.
type Deps struct {
	Config config.Config
	RDB    *redis.Client
	Pool   *pgxpool.Pool
	SP     ports.StorageProvider
	Log    *logger.Logger
}
