package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/middleware"
)

// DeliveryEventHandler handles POST /api/events/delivery. Platform reporting
// feeds post one row per campaign per day; rows are buffered and flushed to
// ClickHouse in batches, so a 202 means accepted, not yet queryable.
func (s *Server) DeliveryEventHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "delivery_ingest"
	method := r.Method
	logger := middleware.LoggerFromRequest(r, s.Logger)

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Analytics == nil {
		logger.Error("analytics unavailable")
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "analytics unavailable", http.StatusInternalServerError)
		return
	}

	var ev analytics.DeliveryEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if ev.CampaignID == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "campaign_id is required", http.StatusBadRequest)
		return
	}

	if err := s.Analytics.RecordDelivery(r.Context(), ev); err != nil {
		if errors.Is(err, analytics.ErrUnavailable) {
			s.Metrics.IncrementRequests(endpoint, method, "503")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "analytics unavailable", http.StatusServiceUnavailable)
			return
		}
		logger.Error("record delivery", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "failed to record delivery", http.StatusInternalServerError)
		return
	}

	s.Metrics.IncrementRequests(endpoint, method, "202")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"status":"accepted"}`))
}
