package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eden-guild/pianobot/pkg/redis"
	"github.com/eden-guild/pianobot/pkg/rediskey"
	"github.com/eden-guild/pianobot/pkg/task"
)

// Collector exposes the redis-backed job bookkeeping as prometheus metrics.
// The counters survive restarts, unlike the in-process histograms the
// scheduler registers directly.
type Collector struct {
	runsDesc    *prometheus.Desc
	errorsDesc  *prometheus.Desc
	droppedDesc *prometheus.Desc
	driver      *redis.Driver
}

func NewCollector(driver *redis.Driver) *Collector {
	return &Collector{
		runsDesc: prometheus.NewDesc("pianobot_task_runs_total",
			"Number of reconciliation job runs, by task", []string{"task"}, nil),
		errorsDesc: prometheus.NewDesc("pianobot_task_errors_total",
			"Number of failed reconciliation job runs, by task", []string{"task"}, nil),
		droppedDesc: prometheus.NewDesc("pianobot_squad_batches_dropped_total",
			"Number of raid squad batches dropped because the queue was full", nil, nil),
		driver: driver,
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.runsDesc
	ch <- c.errorsDesc
	ch <- c.droppedDesc
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, name := range task.Names {
		stats := c.driver.GetTaskStats(name)
		ch <- prometheus.MustNewConstMetric(c.runsDesc, prometheus.CounterValue,
			float64(stats.Runs), name)
		ch <- prometheus.MustNewConstMetric(c.errorsDesc, prometheus.CounterValue,
			float64(stats.Errors), name)
	}

	dropped, err := c.driver.GetCounter(rediskey.SquadQueueDropped)
	if err != nil {
		dropped = 0
	}
	ch <- prometheus.MustNewConstMetric(c.droppedDesc, prometheus.CounterValue, float64(dropped))
}
