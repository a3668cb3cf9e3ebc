package poller

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the poll loop.
type Metrics struct {
	Ticks         *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	Stale         *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ticks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hwdash",
			Name:      "ticks_total",
			Help:      "Poll cycles started, by trigger.",
		}, []string{"trigger"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hwdash",
			Name:      "fetch_failures_total",
			Help:      "Failed backend fetches, by endpoint and failure kind.",
		}, []string{"endpoint", "kind"}),
		Stale: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hwdash",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer one was already applied.",
		}, []string{"endpoint"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hwdash",
			Name:      "fetch_duration_seconds",
			Help:      "Backend fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(m.Ticks, m.FetchFailures, m.Stale, m.FetchDuration)
	}
	return m
}
