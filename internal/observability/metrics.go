package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// total requests per endpoint, method and status code
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// request latency in seconds per endpoint/method
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adops_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// tickets handled by the automation pipeline, labelled by outcome
	TicketsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_tickets_processed_total",
			Help: "Total tickets processed by the pipeline",
		},
		[]string{"outcome"},
	)

	// platform payloads built by the trafficking engine, labelled by action
	PayloadsBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_payloads_built_total",
			Help: "Total platform payloads built",
		},
		[]string{"action"},
	)

	// QA check verdicts, labelled by check name and result
	QACheckCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_qa_checks_total",
			Help: "Total QA check verdicts recorded",
		},
		[]string{"check", "result"},
	)

	// ticket stage transitions applied by the pipeline
	StageTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_stage_transitions_total",
			Help: "Total ticket stage transitions",
		},
		[]string{"stage"},
	)

	// alerts delivered, labelled by alert kind and channel
	AlertsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_alerts_sent_total",
			Help: "Total alerts sent",
		},
		[]string{"kind", "channel"},
	)

	// alerts suppressed by the dedupe window
	AlertsSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adops_alerts_suppressed_total",
			Help: "Total alerts suppressed as duplicates",
		},
	)

	// pipeline runs, labelled by outcome
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_pipeline_runs_total",
			Help: "Total automation pipeline runs",
		},
		[]string{"outcome"},
	)

	// end-to-end pipeline run duration
	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "adops_pipeline_duration_seconds",
			Help:    "Duration of automation pipeline runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	// tickets currently past their SLA deadline
	SLABreaches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "adops_sla_breached_tickets",
			Help: "Tickets currently past their SLA deadline",
		},
	)

	// tickets auto-assigned to traffickers
	TicketsAssigned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adops_tickets_assigned_total",
			Help: "Total tickets auto-assigned",
		},
	)

	// delivery events ingested, labelled by type
	DeliveryEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_delivery_events_total",
			Help: "Total delivery events ingested",
		},
		[]string{"type"},
	)

	// outbound platform API calls, labelled by platform and outcome
	PlatformRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_platform_requests_total",
			Help: "Total outbound platform API requests",
		},
		[]string{"platform", "outcome"},
	)

	// outbound platform API latency per platform
	PlatformLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adops_platform_request_duration_seconds",
			Help:    "Duration of outbound platform API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	// rate limit hits per platform
	RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_ratelimit_hits_total",
			Help: "Total rate limit hits per platform",
		},
		[]string{"platform"},
	)

	// rate limit requests per platform
	RateLimitRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adops_ratelimit_requests_total",
			Help: "Total rate limit requests per platform",
		},
		[]string{"platform"},
	)
)

func init() {
	// register all metrics
	prometheus.MustRegister(
		RequestCount,
		RequestLatency,
		TicketsProcessed,
		PayloadsBuilt,
		QACheckCount,
		StageTransitions,
		AlertsSent,
		AlertsSuppressed,
		PipelineRuns,
		PipelineDuration,
		SLABreaches,
		TicketsAssigned,
		DeliveryEvents,
		PlatformRequests,
		PlatformLatency,
		RateLimitHits,
		RateLimitRequests,
	)
}
