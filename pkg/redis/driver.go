package redis

import (
	"context"
	"time"

	redisv8 "github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/eden-guild/pianobot/pkg/rediskey"
)

type Parameters struct {
	Addr     string
	Username string
	Password string
}

// Driver wraps the redis client with the bot's cache and bookkeeping
// operations. All operations are best-effort: a failing redis only costs
// cache hits and diagnostics, never job correctness.
type Driver struct {
	client *redisv8.Client
}

func (d *Driver) Init(params Parameters) error {
	d.client = redisv8.NewClient(&redisv8.Options{
		Addr:     params.Addr,
		Username: params.Username,
		Password: params.Password,
		DB:       0,
	})
	return d.client.Ping(context.Background()).Err()
}

func (d *Driver) Client() *redisv8.Client {
	return d.client
}

func (d *Driver) Close() error {
	return d.client.Close()
}

func (d *Driver) SetVersionAndCommit(version, commit string) {
	ctx := context.Background()
	if err := d.client.Set(ctx, rediskey.Version, version, 0).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to store version in redis")
	}
	if err := d.client.Set(ctx, rediskey.Commit, commit, 0).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to store commit in redis")
	}
}

// GetPayload and SetPayload implement the API client's payload cache.
func (d *Driver) GetPayload(ctx context.Context, key string) ([]byte, bool) {
	v, err := d.client.Get(ctx, rediskey.APIPayload(key)).Bytes()
	if err != nil {
		return nil, false
	}
	return v, true
}

func (d *Driver) SetPayload(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := d.client.Set(ctx, rediskey.APIPayload(key), payload, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to cache api payload")
	}
}

// RecordTaskRun bumps the run counter and stores the last run timestamp and
// duration for a task, for the metrics collector and the status API.
func (d *Driver) RecordTaskRun(task string, ranAt time.Time, duration time.Duration) {
	ctx := context.Background()
	if err := d.client.Incr(ctx, rediskey.TaskRuns(task)).Err(); err != nil {
		log.Warn().Err(err).Str("task", task).Msg("failed to increment task run counter")
		return
	}
	d.client.Set(ctx, rediskey.TaskLastRun(task), ranAt.Unix(), 0)
	d.client.Set(ctx, rediskey.TaskLastDurationMs(task), duration.Milliseconds(), 0)
}

func (d *Driver) RecordTaskError(task string) {
	if err := d.client.Incr(context.Background(), rediskey.TaskErrors(task)).Err(); err != nil {
		log.Warn().Err(err).Str("task", task).Msg("failed to increment task error counter")
	}
}

func (d *Driver) IncrSquadDropped() {
	if err := d.client.Incr(context.Background(), rediskey.SquadQueueDropped).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to increment dropped squad counter")
	}
}

func (d *Driver) GetCounter(key string) (int64, error) {
	return d.client.Get(context.Background(), key).Int64()
}

// TaskStats summarizes per-task bookkeeping for the status API.
type TaskStats struct {
	Runs           int64 `json:"runs"`
	Errors         int64 `json:"errors"`
	LastRunUnix    int64 `json:"last_run_unix"`
	LastDurationMs int64 `json:"last_duration_ms"`
}

func (d *Driver) GetTaskStats(task string) TaskStats {
	ctx := context.Background()
	stats := TaskStats{}
	stats.Runs, _ = d.client.Get(ctx, rediskey.TaskRuns(task)).Int64()
	stats.Errors, _ = d.client.Get(ctx, rediskey.TaskErrors(task)).Int64()
	stats.LastRunUnix, _ = d.client.Get(ctx, rediskey.TaskLastRun(task)).Int64()
	stats.LastDurationMs, _ = d.client.Get(ctx, rediskey.TaskLastDurationMs(task)).Int64()
	return stats
}
