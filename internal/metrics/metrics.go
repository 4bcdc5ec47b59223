package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PollCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionflow_poll_cycles_total",
			Help: "Total number of poll cycles by outcome",
		},
		[]string{"status"}, // status: success|error|cancelled
	)

	FeedLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "optionflow_feed_latency_seconds",
			Help:    "Options chain fetch latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	SkippedSnapshots = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "optionflow_skipped_snapshots_total",
			Help: "Chain elements dropped because they were malformed",
		},
	)

	ClassifiedTrades = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optionflow_classified_trades_total",
			Help: "Trades classified by aggressor side",
		},
		[]string{"side"},
	)

	HistoryBatches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "optionflow_history_batches",
			Help: "Batches currently retained in history",
		},
	)

	LastCommit = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "optionflow_last_commit_timestamp",
			Help: "Unix timestamp of the last batch committed to history",
		},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PollCycles)
		prometheus.MustRegister(FeedLatency)
		prometheus.MustRegister(SkippedSnapshots)
		prometheus.MustRegister(ClassifiedTrades)
		prometheus.MustRegister(HistoryBatches)
		prometheus.MustRegister(LastCommit)
	})
}

// Handler returns the HTTP handler for the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPoll records the outcome and latency of one fetch.
func RecordPoll(status string, latency time.Duration, skipped int) {
	PollCycles.WithLabelValues(status).Inc()
	FeedLatency.Observe(latency.Seconds())
	if skipped > 0 {
		SkippedSnapshots.Add(float64(skipped))
	}
}

// RecordCommit records a batch committed to history.
func RecordCommit(sides map[string]int, retained int) {
	for side, n := range sides {
		ClassifiedTrades.WithLabelValues(side).Add(float64(n))
	}
	HistoryBatches.Set(float64(retained))
	LastCommit.SetToCurrentTime()
}
