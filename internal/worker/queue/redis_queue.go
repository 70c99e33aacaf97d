// Package queue adapts the Redis lists the runtime uses to deliver job
// envelopes and collect results.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Aditya-singhal03/runpod-ffmpeg-fact-page-worker/internal/job"
)

// popBlock bounds one BRPOP so the worker loop can observe shutdown
// between waits.
const popBlock = 5 * time.Second

type RedisQueue struct {
	rdb     *redis.Client
	jobs    string
	results string
}

func NewRedisQueue(rdb *redis.Client, jobQueue, resultQueue string) *RedisQueue {
	return &RedisQueue{rdb: rdb, jobs: jobQueue, results: resultQueue}
}

// Pop blocks for up to popBlock waiting for a job envelope. An empty
// message with nil error means the wait expired with nothing queued.
func (q *RedisQueue) Pop(ctx context.Context) ([]byte, error) {
	res, err := q.rdb.BRPop(ctx, popBlock, q.jobs).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("queue: pop from %s: %w", q.jobs, err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return []byte(res[1]), nil
}

// Respond pushes the job result onto the result list.
func (q *RedisQueue) Respond(ctx context.Context, result job.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("queue: marshal result for job %s: %w", result.ID, err)
	}
	if err := q.rdb.LPush(ctx, q.results, payload).Err(); err != nil {
		return fmt.Errorf("queue: push result for job %s: %w", result.ID, err)
	}
	return nil
}

// Ping checks queue connectivity, for health reporting.
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}
