package api

import (
	"net/http"
	"time"
)

// HealthzHandler responds with a simple liveness check.
func (s *Server) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "healthz"
	const method = "GET"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}

// ReadyzHandler reports whether the service can serve traffic. The in-memory
// store must be present, and if Postgres is wired it must answer a ping.
func (s *Server) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "readyz"
	const method = "GET"

	w.Header().Set("Content-Type", "application/json")

	if s.Store == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable","reason":"store not loaded"}`))
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		return
	}

	if s.PG != nil && s.PG.DB != nil {
		if err := s.PG.DB.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable","reason":"postgres unreachable"}`))
			s.Metrics.IncrementRequests(endpoint, method, "503")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ready"}`))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
}
