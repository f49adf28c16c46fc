package observability

import "time"

// MetricsRegistry provides an interface for recording application metrics
// This replaces direct access to global Prometheus metrics with dependency injection
type MetricsRegistry interface {
	// HTTP Request metrics
	IncrementRequests(endpoint, method, status string)
	RecordRequestLatency(endpoint, method string, duration time.Duration)

	// Pipeline metrics
	IncrementTicketsProcessed(outcome string)
	IncrementPayloadsBuilt(action string)
	IncrementQACheck(check, result string)
	IncrementStageTransition(stage string)
	IncrementPipelineRuns(outcome string)
	RecordPipelineDuration(duration time.Duration)

	// Alerting metrics
	IncrementAlertsSent(kind, channel string)
	IncrementAlertsSuppressed()

	// SLA and assignment metrics
	SetSLABreaches(count float64)
	IncrementTicketsAssigned()

	// Delivery ingest metrics
	IncrementDeliveryEvents(eventType string)

	// Outbound platform call metrics
	IncrementPlatformRequests(platform, outcome string)
	RecordPlatformLatency(platform string, duration time.Duration)

	// Rate limiting metrics
	IncrementRateLimitRequests(platform string)
	IncrementRateLimitHits(platform string)
}

// PrometheusRegistry implements MetricsRegistry using the existing global Prometheus metrics
type PrometheusRegistry struct{}

// NewPrometheusRegistry creates a new PrometheusRegistry
func NewPrometheusRegistry() *PrometheusRegistry {
	return &PrometheusRegistry{}
}

// HTTP Request metrics
func (r *PrometheusRegistry) IncrementRequests(endpoint, method, status string) {
	RequestCount.WithLabelValues(endpoint, method, status).Inc()
}

func (r *PrometheusRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {
	RequestLatency.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}

// Pipeline metrics
func (r *PrometheusRegistry) IncrementTicketsProcessed(outcome string) {
	TicketsProcessed.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) IncrementPayloadsBuilt(action string) {
	PayloadsBuilt.WithLabelValues(action).Inc()
}

func (r *PrometheusRegistry) IncrementQACheck(check, result string) {
	QACheckCount.WithLabelValues(check, result).Inc()
}

func (r *PrometheusRegistry) IncrementStageTransition(stage string) {
	StageTransitions.WithLabelValues(stage).Inc()
}

func (r *PrometheusRegistry) IncrementPipelineRuns(outcome string) {
	PipelineRuns.WithLabelValues(outcome).Inc()
}

func (r *PrometheusRegistry) RecordPipelineDuration(duration time.Duration) {
	PipelineDuration.Observe(duration.Seconds())
}

// Alerting metrics
func (r *PrometheusRegistry) IncrementAlertsSent(kind, channel string) {
	AlertsSent.WithLabelValues(kind, channel).Inc()
}

func (r *PrometheusRegistry) IncrementAlertsSuppressed() {
	AlertsSuppressed.Inc()
}

// SLA and assignment metrics
func (r *PrometheusRegistry) SetSLABreaches(count float64) {
	SLABreaches.Set(count)
}

func (r *PrometheusRegistry) IncrementTicketsAssigned() {
	TicketsAssigned.Inc()
}

// Delivery ingest metrics
func (r *PrometheusRegistry) IncrementDeliveryEvents(eventType string) {
	DeliveryEvents.WithLabelValues(eventType).Inc()
}

// Outbound platform call metrics
func (r *PrometheusRegistry) IncrementPlatformRequests(platform, outcome string) {
	PlatformRequests.WithLabelValues(platform, outcome).Inc()
}

func (r *PrometheusRegistry) RecordPlatformLatency(platform string, duration time.Duration) {
	PlatformLatency.WithLabelValues(platform).Observe(duration.Seconds())
}

// Rate limiting metrics
func (r *PrometheusRegistry) IncrementRateLimitRequests(platform string) {
	RateLimitRequests.WithLabelValues(platform).Inc()
}

func (r *PrometheusRegistry) IncrementRateLimitHits(platform string) {
	RateLimitHits.WithLabelValues(platform).Inc()
}

// NoOpRegistry implements MetricsRegistry with no-op methods for testing
type NoOpRegistry struct{}

// NewNoOpRegistry creates a new NoOpRegistry
func NewNoOpRegistry() *NoOpRegistry {
	return &NoOpRegistry{}
}

// HTTP Request metrics
func (r *NoOpRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (r *NoOpRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Pipeline metrics
func (r *NoOpRegistry) IncrementTicketsProcessed(outcome string)      {}
func (r *NoOpRegistry) IncrementPayloadsBuilt(action string)          {}
func (r *NoOpRegistry) IncrementQACheck(check, result string)         {}
func (r *NoOpRegistry) IncrementStageTransition(stage string)         {}
func (r *NoOpRegistry) IncrementPipelineRuns(outcome string)          {}
func (r *NoOpRegistry) RecordPipelineDuration(duration time.Duration) {}

// Alerting metrics
func (r *NoOpRegistry) IncrementAlertsSent(kind, channel string) {}
func (r *NoOpRegistry) IncrementAlertsSuppressed()               {}

// SLA and assignment metrics
func (r *NoOpRegistry) SetSLABreaches(count float64) {}
func (r *NoOpRegistry) IncrementTicketsAssigned()    {}

// Delivery ingest metrics
func (r *NoOpRegistry) IncrementDeliveryEvents(eventType string) {}

// Outbound platform call metrics
func (r *NoOpRegistry) IncrementPlatformRequests(platform, outcome string)            {}
func (r *NoOpRegistry) RecordPlatformLatency(platform string, duration time.Duration) {}

// Rate limiting metrics
func (r *NoOpRegistry) IncrementRateLimitRequests(platform string) {}
func (r *NoOpRegistry) IncrementRateLimitHits(platform string)     {}
