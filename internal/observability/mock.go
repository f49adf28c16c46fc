package observability

import "time"

// MockMetricsRegistry is a mock implementation of MetricsRegistry for testing
type MockMetricsRegistry struct{}

// HTTP Request metrics
func (m *MockMetricsRegistry) IncrementRequests(endpoint, method, status string)                    {}
func (m *MockMetricsRegistry) RecordRequestLatency(endpoint, method string, duration time.Duration) {}

// Pipeline metrics
func (m *MockMetricsRegistry) IncrementTicketsProcessed(outcome string)      {}
func (m *MockMetricsRegistry) IncrementPayloadsBuilt(action string)          {}
func (m *MockMetricsRegistry) IncrementQACheck(check, result string)         {}
func (m *MockMetricsRegistry) IncrementStageTransition(stage string)         {}
func (m *MockMetricsRegistry) IncrementPipelineRuns(outcome string)          {}
func (m *MockMetricsRegistry) RecordPipelineDuration(duration time.Duration) {}

// Alerting metrics
func (m *MockMetricsRegistry) IncrementAlertsSent(kind, channel string) {}
func (m *MockMetricsRegistry) IncrementAlertsSuppressed()               {}

// SLA and assignment metrics
func (m *MockMetricsRegistry) SetSLABreaches(count float64) {}
func (m *MockMetricsRegistry) IncrementTicketsAssigned()    {}

// Delivery ingest metrics
func (m *MockMetricsRegistry) IncrementDeliveryEvents(eventType string) {}

// Outbound platform call metrics
func (m *MockMetricsRegistry) IncrementPlatformRequests(platform, outcome string)            {}
func (m *MockMetricsRegistry) RecordPlatformLatency(platform string, duration time.Duration) {}

// Rate limiting metrics
func (m *MockMetricsRegistry) IncrementRateLimitRequests(platform string) {}
func (m *MockMetricsRegistry) IncrementRateLimitHits(platform string)     {}
