package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_tasks_started_total",
		Help: "Total number of tracked downloads started",
	})

	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_tasks_completed_total",
		Help: "Total number of tracked downloads completed",
	})

	TasksFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_tasks_failed_total",
		Help: "Total number of tracked downloads failed",
	})

	TasksTimedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_tasks_timed_out_total",
		Help: "Total number of tracked downloads that hit the overall poll timeout",
	})

	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_poll_cycles_total",
		Help: "Total number of status poll cycles",
	})

	PollTransportErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "downtrack_poll_transport_errors_total",
		Help: "Total number of poll cycles that failed at the transport level",
	})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "downtrack_poll_duration_seconds",
		Help:    "Status poll round-trip duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
)

// RegisterActiveTasks exposes the current number of live task records as a
// gauge. Called once at startup with the store's Len.
func RegisterActiveTasks(count func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "downtrack_active_tasks",
		Help: "Number of task records currently tracked",
	}, func() float64 {
		return float64(count())
	})
}
