// Package metrics exposes the Prometheus registry and the application's
// counters and histograms.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "attendly"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo exposes application version information as labels (value always 1)
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// AdmissionDecisions counts participation request admission outcomes.
// outcome: confirmed|pending|rejected|conflict|busy
var AdmissionDecisions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_decisions_total",
		Help:      "Total participation request admission decisions by outcome",
	},
	[]string{"outcome"},
)

// EventStateTransitions counts event lifecycle transitions by action.
var EventStateTransitions = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_state_transitions_total",
		Help:      "Total event state machine transitions by action",
	},
	[]string{"action"},
)

// LockTimeouts counts admission transactions aborted because the event row
// lock could not be acquired within the configured lock timeout.
var LockTimeouts = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admission_lock_timeouts_total",
		Help:      "Total admission transactions aborted on lock timeout",
	},
)

// EndpointHitsRecorded counts view hits accepted by the stats collector.
var EndpointHitsRecorded = promauto.With(Registry).NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "endpoint_hits_recorded_total",
		Help:      "Total endpoint hits recorded by the stats collector",
	},
)

// Init registers runtime collectors and sets version information.
func Init(version, commit, buildDate string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
