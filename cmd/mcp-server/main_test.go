package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/trafficking"
	"go.uber.org/zap"
)

func seedStore(t *testing.T) *models.InMemoryOpsDataStore {
	t.Helper()
	store := models.NewInMemoryOpsDataStore()

	now := time.Now().UTC()
	campaigns := []models.Campaign{{
		ID:              "CMP-0001",
		Name:            "DIS_Moana2_US_Acq",
		TitleName:       "Moana 2",
		TargetingGeo:    "US",
		Platform:        "DV360",
		BudgetUSD:       5000,
		StartDate:       now.AddDate(0, 0, -10).Format("2006-01-02"),
		EndDate:         now.AddDate(0, 0, 10).Format("2006-01-02"),
		Status:          models.CampaignActive,
		ImpressionsGoal: 1000000,
		AudienceDetail:  "Streaming Intenders",
	}}
	tickets := []models.Ticket{
		{
			ID:          "TKT-00001",
			CampaignID:  "CMP-0001",
			RequestType: "Creative Rotation",
			Stage:       models.StageTrafficking,
			Urgency:     models.UrgencyHigh,
			Assignee:    "Dana Cruz",
			CreatedDate: now.Add(-2 * time.Hour),
			DueDate:     now.Add(8 * time.Hour),
		},
		{
			ID:          "TKT-00002",
			CampaignID:  "CMP-0001",
			RequestType: "New Campaign Setup",
			Stage:       models.StageNew,
			Urgency:     models.UrgencyMedium,
			CreatedDate: now.Add(-1 * time.Hour),
			DueDate:     now.Add(48 * time.Hour),
		},
	}
	users := []models.User{{Name: "Dana Cruz", Role: models.RoleTrafficker}}

	if err := store.ReloadAll(tickets, campaigns, users); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func newOpsServer(t *testing.T) *OpsServer {
	t.Helper()
	return &OpsServer{
		store:  seedStore(t),
		router: trafficking.NewEngine("DV360"),
		logger: zap.NewNop(),
	}
}

func TestListTicketsAll(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListTickets(context.Background(), nil, ListTicketsInput{})
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if out.Count != 2 || len(out.Tickets) != 2 {
		t.Fatalf("expected 2 tickets, got count=%d len=%d", out.Count, len(out.Tickets))
	}
}

func TestListTicketsStageFilter(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListTickets(context.Background(), nil, ListTicketsInput{Stage: models.StageTrafficking})
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("expected 1 ticket in Trafficking, got %d", out.Count)
	}
	if out.Tickets[0].ID != "TKT-00001" {
		t.Errorf("expected TKT-00001, got %s", out.Tickets[0].ID)
	}
}

func TestListTicketsAssigneeFilter(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListTickets(context.Background(), nil, ListTicketsInput{Assignee: "Dana Cruz"})
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if out.Count != 1 || out.Tickets[0].Assignee != "Dana Cruz" {
		t.Fatalf("expected Dana Cruz's 1 ticket, got %+v", out.Tickets)
	}
}

func TestListTicketsLimit(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListTickets(context.Background(), nil, ListTicketsInput{Limit: 1})
	if err != nil {
		t.Fatalf("list tickets: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("expected limit to cap at 1 ticket, got %d", out.Count)
	}
}

func TestGetTicketWithQAHistory(t *testing.T) {
	s := newOpsServer(t)
	if err := s.store.AppendQAChecks([]models.QACheck{
		{ID: "QA-000001", TicketID: "TKT-00001", Check: models.CheckSpecCompliance, Result: models.ResultPass, CheckedBy: "eve-automation"},
	}); err != nil {
		t.Fatalf("append qa checks: %v", err)
	}

	_, out, err := s.GetTicket(context.Background(), nil, GetTicketInput{TicketID: "TKT-00001"})
	if err != nil {
		t.Fatalf("get ticket: %v", err)
	}

	// Verify the ticket and its QA history came back together
	if out.Ticket.ID != "TKT-00001" {
		t.Errorf("expected TKT-00001, got %s", out.Ticket.ID)
	}
	if len(out.QAChecks) != 1 || out.QAChecks[0].ID != "QA-000001" {
		t.Errorf("expected 1 QA check QA-000001, got %+v", out.QAChecks)
	}
}

func TestGetTicketNotFound(t *testing.T) {
	s := newOpsServer(t)

	_, _, err := s.GetTicket(context.Background(), nil, GetTicketInput{TicketID: "TKT-99999"})
	if err == nil {
		t.Fatal("expected error for unknown ticket")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestPreviewRouteNewCampaign(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.PreviewRoute(context.Background(), nil, PreviewRouteInput{
		RequestType: "New Campaign Setup",
		CampaignID:  "CMP-0001",
	})
	if err != nil {
		t.Fatalf("preview route: %v", err)
	}

	if !out.Automatable {
		t.Error("expected New Campaign Setup to be automatable")
	}
	if len(out.Payloads) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(out.Payloads))
	}
	if len(out.QAResults) != 8 {
		t.Errorf("expected 8 QA results, got %d", len(out.QAResults))
	}
}

func TestPreviewRouteUnsupported(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.PreviewRoute(context.Background(), nil, PreviewRouteInput{RequestType: "Vendor Audit"})
	if err != nil {
		t.Fatalf("preview route: %v", err)
	}

	if out.Automatable {
		t.Error("expected Vendor Audit to be unautomatable")
	}
	if len(out.Payloads) != 0 {
		t.Errorf("expected no payloads, got %d", len(out.Payloads))
	}
	if len(out.QAResults) != 1 || out.QAResults[0].Result != models.ResultFail {
		t.Errorf("expected single failing QA result, got %+v", out.QAResults)
	}
}

func TestPreviewRouteMissingRequestType(t *testing.T) {
	s := newOpsServer(t)

	_, _, err := s.PreviewRoute(context.Background(), nil, PreviewRouteInput{})
	if err == nil {
		t.Fatal("expected error for missing request_type")
	}
}

func TestClassifyTier(t *testing.T) {
	s := newOpsServer(t)

	cases := []struct {
		platform string
		channel  string
		want     string
	}{
		{"CM360", "Audio", "V2.2"},
		{"CM360", "CTV", "V2.2"},
		{"CM360", "YouTube", "V2.1"},
		{"Yahoo DSP", "", "V2"},
		{"Amazon DSP", "", "V3"},
		{"DV360", "", "V1"},
		{"Snapchat", "", "V1"},
	}
	for _, tc := range cases {
		_, out, err := s.ClassifyTier(context.Background(), nil, ClassifyTierInput{Platform: tc.platform, Channel: tc.channel})
		if err != nil {
			t.Fatalf("classify tier %s/%s: %v", tc.platform, tc.channel, err)
		}
		if out.Tier != tc.want {
			t.Errorf("%s/%s: expected tier %s, got %s", tc.platform, tc.channel, tc.want, out.Tier)
		}
	}
}

func TestClassifyTierIncludesTierDetails(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ClassifyTier(context.Background(), nil, ClassifyTierInput{Platform: "Amazon DSP"})
	if err != nil {
		t.Fatalf("classify tier: %v", err)
	}
	if out.Desc == "" || len(out.Platforms) == 0 {
		t.Errorf("expected tier details for V3, got %+v", out)
	}
}

func TestPacingReportUnavailable(t *testing.T) {
	s := newOpsServer(t)

	_, _, err := s.PacingReport(context.Background(), nil, PacingReportInput{})
	if err == nil {
		t.Fatal("expected error when analytics is not connected")
	}
	if !strings.Contains(err.Error(), "pacing unavailable") {
		t.Errorf("expected pacing unavailable error, got %v", err)
	}
}

func TestPacingReportSummary(t *testing.T) {
	s := newOpsServer(t)
	mock := analytics.NewMockAnalytics()
	s.pacer = forecasting.NewEngine(mock, s.store, zap.NewNop())

	// Mid-flight campaign with zero delivery always reads as underpacing
	_, out, err := s.PacingReport(context.Background(), nil, PacingReportInput{})
	if err != nil {
		t.Fatalf("pacing report: %v", err)
	}
	if len(out.Underpacing) != 1 || out.Underpacing[0].CampaignID != "CMP-0001" {
		t.Fatalf("expected CMP-0001 underpacing, got %+v", out.Underpacing)
	}
	if len(out.Overpacing) != 0 {
		t.Errorf("expected no overpacing campaigns, got %+v", out.Overpacing)
	}
}

func TestPacingReportSingleCampaign(t *testing.T) {
	s := newOpsServer(t)
	mock := analytics.NewMockAnalytics()
	mock.Totals["CMP-0001"] = analytics.DeliveryTotals{CampaignID: "CMP-0001", Impressions: 500000}
	s.pacer = forecasting.NewEngine(mock, s.store, zap.NewNop())

	_, out, err := s.PacingReport(context.Background(), nil, PacingReportInput{CampaignID: "CMP-0001"})
	if err != nil {
		t.Fatalf("pacing report: %v", err)
	}
	if out.Campaign == nil || out.Campaign.CampaignID != "CMP-0001" {
		t.Fatalf("expected CMP-0001 report, got %+v", out.Campaign)
	}
	if len(out.Underpacing) != 0 || len(out.Overpacing) != 0 {
		t.Error("single campaign mode should not include the summary lists")
	}
}

func TestPacingReportUnknownCampaign(t *testing.T) {
	s := newOpsServer(t)
	s.pacer = forecasting.NewEngine(analytics.NewMockAnalytics(), s.store, zap.NewNop())

	_, _, err := s.PacingReport(context.Background(), nil, PacingReportInput{CampaignID: "CMP-9999"})
	if err == nil {
		t.Fatal("expected error for unknown campaign")
	}
}

func TestListReferenceSingleTable(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListReference(context.Background(), nil, ListReferenceInput{Table: "markets"})
	if err != nil {
		t.Fatalf("list reference: %v", err)
	}
	if len(out.Markets) == 0 {
		t.Error("expected markets rows")
	}
	if len(out.Brands) != 0 || len(out.TicketTypes) != 0 {
		t.Error("expected only the requested table to be populated")
	}
}

func TestListReferenceAllTables(t *testing.T) {
	s := newOpsServer(t)

	_, out, err := s.ListReference(context.Background(), nil, ListReferenceInput{})
	if err != nil {
		t.Fatalf("list reference: %v", err)
	}
	if len(out.Markets) == 0 || len(out.Brands) == 0 || len(out.Channels) == 0 ||
		len(out.TicketTypes) == 0 || len(out.Audiences) == 0 || len(out.Tiers) == 0 {
		t.Errorf("expected every table populated, got %+v", out)
	}
}

func TestListReferenceUnknownTable(t *testing.T) {
	s := newOpsServer(t)

	_, _, err := s.ListReference(context.Background(), nil, ListReferenceInput{Table: "publishers"})
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
}
