package task

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Names lists every job the scheduler can run, for the metrics collector and
// the status API.
var Names = []string{
	"worlds",
	"players",
	"territories",
	"member_activity",
	"guild_raids",
	"guild_activity",
	"guild_awards",
	"guild_xp",
	"members",
}

// Recorder receives per-job run bookkeeping, satisfied by the redis driver.
type Recorder interface {
	RecordTaskRun(task string, ranAt time.Time, duration time.Duration)
	RecordTaskError(task string)
}

// JobFunc is one reconciliation job.
type JobFunc func(context.Context, *Env) error

type namedJob struct {
	name string
	fn   JobFunc
}

// Scheduler drives the reconciliation jobs in four interval buckets. Jobs in
// a bucket run strictly in sequence; buckets overlap freely with each other
// but never with themselves (a still-running bucket skips its next tick).
// A failing job is logged and recorded, and never stops its bucket.
type Scheduler struct {
	env      *Env
	recorder Recorder
	cron     *cron.Cron
	duration *prometheus.HistogramVec
}

func NewScheduler(env *Env, recorder Recorder, reg prometheus.Registerer) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		env:      env,
		recorder: recorder,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(logger),
			cron.Recover(logger),
		)),
		duration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pianobot_task_duration_seconds",
			Help:    "Duration of reconciliation job runs.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"task"}),
	}
}

// Start registers the buckets and launches the cron loop plus the squad
// worker pool. Everything stops when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	buckets := map[string][]namedJob{
		"30s": {
			{"worlds", Worlds},
			{"players", Players},
		},
		"1m": {{"member_activity", MemberActivity}},
		"2m": {{"guild_raids", GuildRaids}},
		"5m": {
			{"guild_activity", GuildActivity},
			{"guild_awards", GuildAwards},
			{"guild_xp", GuildXP},
			{"members", Members},
		},
	}
	if s.env.Conf.EnableTracking {
		buckets["30s"] = append([]namedJob{{"territories", Territories}}, buckets["30s"]...)
	}

	for interval, jobs := range buckets {
		jobs := jobs
		_, err := s.cron.AddFunc("@every "+interval, func() {
			s.runBucket(ctx, jobs)
		})
		if err != nil {
			return fmt.Errorf("registering %s bucket: %w", interval, err)
		}
	}

	if s.env.Squads != nil {
		s.env.Squads.Start(ctx)
	}
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
	return nil
}

func (s *Scheduler) runBucket(ctx context.Context, jobs []namedJob) {
	for _, job := range jobs {
		s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job namedJob) {
	start := time.Now()
	err := job.fn(ctx, s.env)
	elapsed := time.Since(start)

	s.duration.WithLabelValues(job.name).Observe(elapsed.Seconds())
	if s.recorder != nil {
		s.recorder.RecordTaskRun(job.name, start, elapsed)
	}
	if err != nil {
		log.Warn().Err(err).Str("task", job.name).Dur("duration", elapsed).Msg("task failed")
		if s.recorder != nil {
			s.recorder.RecordTaskError(job.name)
		}
		return
	}
	log.Debug().Str("task", job.name).Dur("duration", elapsed).Msg("task finished")
}

// cronLogger bridges robfig/cron's logging to zerolog. Skip notices from the
// single-flight wrapper land here.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
