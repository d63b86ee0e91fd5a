package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Eviction reasons reported by the hub.
const (
	EvictLiveness  = "liveness"
	EvictTransport = "transport"
	EvictShutdown  = "shutdown"
)

// Delivery results reported per target session.
const (
	DeliveryOK     = "ok"
	DeliveryFailed = "failed"
)

// Metrics groups every hub collector. It is registered once on the given registerer,
// tests use a fresh prometheus.NewRegistry() each.
type Metrics struct {
	Sessions             prometheus.Gauge
	EventsDispatched     *prometheus.CounterVec
	Deliveries           *prometheus.CounterVec
	Evictions            *prometheus.CounterVec
	MembershipViolations prometheus.Counter
	DispatchDuration     prometheus.Histogram
	AuthFailures         prometheus.Counter

	ProcessRSSBytes   prometheus.Gauge
	ProcessCPUPercent prometheus.Gauge
	EventQueueLength  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Sessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "chirp_hub_sessions",
			Help: "Live sessions currently registered",
		}),
		EventsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chirp_hub_events_dispatched_total",
			Help: "Domain events processed by the dispatcher",
		}, []string{"event"}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chirp_hub_deliveries_total",
			Help: "Frames delivered to sessions",
		}, []string{"event", "result"}),
		Evictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "chirp_hub_evictions_total",
			Help: "Sessions closed by the hub",
		}, []string{"reason"}),
		MembershipViolations: f.NewCounter(prometheus.CounterOpts{
			Name: "chirp_hub_membership_violations_total",
			Help: "Messages discarded because the sender is not a member of the chat",
		}),
		DispatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "chirp_hub_dispatch_duration_seconds",
			Help:    "Time to fan out one domain event",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}),
		AuthFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "chirp_hub_auth_failures_total",
			Help: "Connections refused because the credential was rejected",
		}),
		ProcessRSSBytes: f.NewGauge(prometheus.GaugeOpts{
			Name: "chirp_hub_process_rss_bytes",
			Help: "Resident memory of the hub process",
		}),
		ProcessCPUPercent: f.NewGauge(prometheus.GaugeOpts{
			Name: "chirp_hub_process_cpu_percent",
			Help: "CPU usage of the hub process",
		}),
		EventQueueLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "chirp_hub_event_queue_length",
			Help: "Domain events waiting for the dispatcher",
		}),
	}
}

// NewNopMetrics registers on a private registry, for callers that do not expose metrics.
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
