package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	realtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Push events received per type",
		},
		[]string{"type"},
	)

	realtimeReconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_reconnects_total",
			Help: "Realtime channel reconnects per transport",
		},
		[]string{"transport"},
	)

	refetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_refetch_duration_seconds",
			Help:    "Duration of authoritative refetches",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"store"},
	)

	staleResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_stale_responses_total",
			Help: "Fetch responses dropped because a newer fetch finished first",
		},
		[]string{"store"},
	)

	bidFlows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bid_flows_total",
			Help: "Payment-backed submissions per kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	trackedAuctions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracked_auctions_total",
			Help: "Auctions currently tracked with a live countdown",
		},
	)

	goroutineCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_goroutines_total",
			Help: "Current number of goroutines",
		},
	)
)

type Monitor struct{}

func NewMonitor() *Monitor {
	monitor := &Monitor{}
	go monitor.collect()
	return monitor
}

func (m *Monitor) collect() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		goroutineCount.Set(float64(runtime.NumGoroutine()))
	}
}

func TrackRealtimeEvent(eventType string) {
	realtimeEvents.WithLabelValues(eventType).Inc()
}

func TrackReconnect(transport string) {
	realtimeReconnects.WithLabelValues(transport).Inc()
}

func TrackRefetch(store string, duration time.Duration) {
	refetchDuration.WithLabelValues(store).Observe(duration.Seconds())
}

func TrackStaleResponse(store string) {
	staleResponses.WithLabelValues(store).Inc()
}

func TrackBidFlow(kind, outcome string) {
	bidFlows.WithLabelValues(kind, outcome).Inc()
}

func SetTrackedAuctions(n int) {
	trackedAuctions.Set(float64(n))
}
