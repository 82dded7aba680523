package metrics

import "github.com/prometheus/client_golang/prometheus"

// LeadMetrics exposes counters/histograms for the lead capture pipeline.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	webhookLatency   *prometheus.HistogramVec
	formTransitions  *prometheus.CounterVec
	retryTotal       *prometheus.CounterVec
}

// NewLeadMetrics registers the lead collectors on reg, or on the default
// registerer when reg is nil.
func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zma",
			Subsystem: "crm",
			Name:      "submissions_total",
			Help:      "Total CRM webhook submissions by form source and outcome",
		}, []string{"source", "outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zma",
			Subsystem: "crm",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of the outbound CRM webhook call",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		formTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zma",
			Subsystem: "forms",
			Name:      "transitions_total",
			Help:      "Capture form state transitions",
		}, []string{"form", "state"}),
		retryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zma",
			Subsystem: "crm",
			Name:      "retry_total",
			Help:      "Retry queue outcomes for leads that hit a transport failure",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.webhookLatency, m.formTransitions, m.retryTotal)
	return m
}

// ObserveSubmission records one webhook call; ok is the transport outcome.
func (m *LeadMetrics) ObserveSubmission(source string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := outcomeLabel(ok)
	m.submissionsTotal.WithLabelValues(source, outcome).Inc()
	m.webhookLatency.WithLabelValues(outcome).Observe(seconds)
}

// ObserveTransition counts a capture form entering state.
func (m *LeadMetrics) ObserveTransition(form, state string) {
	if m == nil {
		return
	}
	m.formTransitions.WithLabelValues(form, state).Inc()
}

// ObserveRetry records a retry queue outcome: enqueued, delivered, requeued, dropped.
func (m *LeadMetrics) ObserveRetry(outcome string) {
	if m == nil {
		return
	}
	m.retryTotal.WithLabelValues(outcome).Inc()
}

func outcomeLabel(ok bool) string {
	if ok {
		return "sent"
	}
	return "transport_failure"
}
