package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics records gate checks and polling refresh activity.
type DashboardMetrics struct {
	gateChecks   *prometheus.CounterVec
	gateDuration *prometheus.HistogramVec
	pollTicks    *prometheus.CounterVec
	pollDuration *prometheus.HistogramVec
}

// NewDashboardMetrics registers the dashboard metrics on the provided registerer.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		return &DashboardMetrics{}
	}
	gateChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "manager_gate_checks_total",
		Help: "Manager authorization checks by outcome.",
	}, []string{"outcome"})
	gateDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "manager_gate_check_seconds",
		Help:    "Duration of manager authorization checks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	pollTicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "poll_ticks_total",
		Help: "Polling refresh ticks by view and outcome.",
	}, []string{"view", "outcome"})
	pollDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poll_fetch_seconds",
		Help:    "Duration of polling refresh fetches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"view"})
	reg.MustRegister(gateChecks, gateDuration, pollTicks, pollDuration)
	return &DashboardMetrics{
		gateChecks:   gateChecks,
		gateDuration: gateDuration,
		pollTicks:    pollTicks,
		pollDuration: pollDuration,
	}
}

// ObserveGateCheck records one authorization check.
func (m *DashboardMetrics) ObserveGateCheck(outcome string, duration time.Duration) {
	if m == nil || m.gateChecks == nil {
		return
	}
	label := normalizeLabel(outcome)
	m.gateChecks.WithLabelValues(label).Inc()
	m.gateDuration.WithLabelValues(label).Observe(duration.Seconds())
}

// IncPollTick counts one polling tick for the named view.
func (m *DashboardMetrics) IncPollTick(view, outcome string) {
	if m == nil || m.pollTicks == nil {
		return
	}
	m.pollTicks.WithLabelValues(normalizeLabel(view), normalizeLabel(outcome)).Inc()
}

// ObservePollFetch records the duration of one refresh fetch.
func (m *DashboardMetrics) ObservePollFetch(view string, duration time.Duration) {
	if m == nil || m.pollDuration == nil {
		return
	}
	m.pollDuration.WithLabelValues(normalizeLabel(view)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
