package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/qa"
)

// RoutePreviewRequest carries a ticket, and optionally a campaign, to dry-run
// through the router and evaluator. When the campaign is omitted it is looked
// up from the store by the ticket's campaign_id.
type RoutePreviewRequest struct {
	Ticket   models.Ticket    `json:"ticket"`
	Campaign *models.Campaign `json:"campaign,omitempty"`
}

// RoutePreviewResponse is the dry-run output: what the automation would build
// and how QA would judge it. Nothing is persisted.
type RoutePreviewResponse struct {
	RequestType models.RequestType `json:"request_type"`
	Automatable bool               `json:"automatable"`
	Payloads    []models.Payload   `json:"payloads"`
	QAResults   []models.QAResult  `json:"qa_results"`
}

// RoutePreviewHandler handles POST /api/route/preview.
func (s *Server) RoutePreviewHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	const endpoint = "route_preview"
	method := r.Method

	if r.Method != http.MethodPost {
		s.Metrics.IncrementRequests(endpoint, method, "405")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RoutePreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Ticket.RequestType == "" {
		s.Metrics.IncrementRequests(endpoint, method, "400")
		s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
		http.Error(w, "request_type is required", http.StatusBadRequest)
		return
	}

	campaign := req.Campaign
	if campaign == nil && s.Store != nil && req.Ticket.CampaignID != "" {
		campaign = s.Store.GetCampaign(req.Ticket.CampaignID)
	}

	payloads, reqType := s.Router.Route(req.Ticket, campaign)
	results := qa.Evaluate(payloads, campaign)

	if payloads == nil {
		payloads = []models.Payload{}
	}
	resp := RoutePreviewResponse{
		RequestType: reqType,
		Automatable: reqType.Automatable(),
		Payloads:    payloads,
		QAResults:   results,
	}

	s.Logger.Debug("route preview",
		zap.String("request_type", req.Ticket.RequestType),
		zap.Int("payloads", len(payloads)))

	s.Metrics.IncrementRequests(endpoint, method, "200")
	s.Metrics.RecordRequestLatency(endpoint, method, time.Since(start))
	writeJSON(w, resp)
}
