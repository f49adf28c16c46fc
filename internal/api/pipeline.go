package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/middleware"
)

// PipelineRunHandler handles POST /api/pipeline/run by running one automation
// pass immediately. The scheduled ticker keeps running either way; this exists
// so operators can force a pass after fixing data.
func (s *Server) PipelineRunHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "pipeline_run"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Orch == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "pipeline unavailable", http.StatusServiceUnavailable)
		return
	}

	stats, err := s.Orch.RunPipeline(r.Context())
	if err != nil {
		middleware.LoggerFromRequest(r, s.Logger).Error("pipeline run", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "pipeline run failed", http.StatusInternalServerError)
		return
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, stats)
}

// HealthCheckRunHandler handles POST /api/healthcheck/run by sweeping SLA
// breaches, zero-delivery campaigns, and pacing outliers on demand.
func (s *Server) HealthCheckRunHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "healthcheck_run"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Orch == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "health check unavailable", http.StatusServiceUnavailable)
		return
	}

	report := s.Orch.RunHealthCheck(r.Context())

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, report)
}
