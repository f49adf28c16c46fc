package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/reporting"
)

// CampaignReportHandler handles GET /api/reports/campaigns/{id} requests.
// Builds a delivery report for one campaign: lifetime totals, a daily
// breakdown, and the pacing assessment.
//
// Query Parameters:
//   - days: Number of days to include (default: 30, max: 365, 0 = full history)
func (s *Server) CampaignReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	endpoint := "/api/reports/campaigns/{id}"
	method := r.Method

	// Only allow GET
	if r.Method != http.MethodGet {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.Analytics == nil {
		s.Logger.Error("analytics unavailable")
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "analytics unavailable", http.StatusInternalServerError)
		return
	}

	campaignID, ok := mux.Vars(r)["id"]
	if !ok || campaignID == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "campaign_id is required", http.StatusBadRequest)
		return
	}

	// Parse optional days query parameter. 0 requests the full history.
	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsedDays, err := strconv.Atoi(daysParam)
		if err != nil || parsedDays < 0 {
			s.Metrics.IncrementRequests(endpoint, method, "400")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		if parsedDays > 365 {
			parsedDays = 365
		}
		days = parsedDays
	}

	report, err := reporting.GenerateCampaignReport(r.Context(), s.Analytics, s.Store, campaignID, days)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.Metrics.IncrementRequests(endpoint, method, "404")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "campaign not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, analytics.ErrUnavailable) {
			s.Metrics.IncrementRequests(endpoint, method, "503")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "analytics unavailable", http.StatusServiceUnavailable)
			return
		}
		s.Logger.Error("failed to generate campaign report",
			zap.String("campaign_id", campaignID),
			zap.Int("days", days),
			zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "failed to generate report", http.StatusInternalServerError)
		return
	}

	s.Logger.Info("campaign report generated",
		zap.String("campaign_id", campaignID),
		zap.Int("days", days),
		zap.Int64("impressions", report.Totals.Impressions),
		zap.Float64("spend", report.Totals.SpendUSD))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, report)
}

// PacingSummaryResponse groups the active campaigns pacing outside the
// healthy band.
type PacingSummaryResponse struct {
	Underpacing []forecasting.PacingReport `json:"underpacing"`
	Overpacing  []forecasting.PacingReport `json:"overpacing"`
}

// PacingReportHandler handles GET /api/reports/pacing requests.
func (s *Server) PacingReportHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	endpoint := "/api/reports/pacing"
	method := r.Method

	if r.Method != http.MethodGet {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Pacer == nil {
		s.Metrics.IncrementRequests(endpoint, method, "503")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "pacing unavailable", http.StatusServiceUnavailable)
		return
	}

	under, over, err := s.Pacer.PacingSummary(r.Context())
	if err != nil {
		if errors.Is(err, analytics.ErrUnavailable) {
			s.Metrics.IncrementRequests(endpoint, method, "503")
			s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
			http.Error(w, "analytics unavailable", http.StatusServiceUnavailable)
			return
		}
		s.Logger.Error("pacing summary", zap.Error(err))
		s.Metrics.IncrementRequests(endpoint, method, "500")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "failed to build pacing summary", http.StatusInternalServerError)
		return
	}

	if under == nil {
		under = []forecasting.PacingReport{}
	}
	if over == nil {
		over = []forecasting.PacingReport{}
	}

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, PacingSummaryResponse{Underpacing: under, Overpacing: over})
}
