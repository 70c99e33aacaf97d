// The worker consumes captioned-encode jobs from a Redis queue, runs
// ffmpeg on each, and delivers the artifact through the configured
// storage provider.
package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/config"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/httpapi"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/logger"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/pkg/shutdown"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/storage"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker"
	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/worker/ledger"
)

func main() {
	log := logger.New(logger.DefaultConfig())

	cfg, err := config.Load()
	if err != nil {
		log.LogFatal("invalid configuration", err)
	}

	ctx, stop := shutdown.SignalContext(context.Background())
	defer stop()

	sm := shutdown.NewManager(log, cfg.ShutdownTimeout)

	sp, err := storage.NewProvider()
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	sm.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.LogFatal("failed to connect to database", err)
		}
		sm.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})

		if err := ledger.New(pool, log).EnsureSchema(ctx); err != nil {
			log.LogFatal("failed to prepare job ledger", err)
		}
	}

	if cfg.HealthAddr != "" {
		srv := &http.Server{
			Addr: cfg.HealthAddr,
			Handler: httpapi.NewRouter(httpapi.Deps{
				Config: cfg,
				Pool:   pool,
				RDB:    rdb,
				SP:     sp,
				Log:    log,
			}),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("health server failed", "error", err.Error())
			}
		}()
		sm.Register("health server", srv.Shutdown)
	}

	log.Info("worker starting",
		"redis", cfg.RedisAddr,
		"storage", sp.Provider(),
		"health_addr", cfg.HealthAddr,
	)

	err = worker.Run(ctx, worker.Deps{
		Config: cfg,
		RDB:    rdb,
		Pool:   pool,
		SP:     sp,
		Log:    log,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker loop exited", "error", err.Error())
	}

	sm.Shutdown()
}
