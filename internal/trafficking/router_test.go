package trafficking

import (
	"reflect"
	"strings"
	"testing"

	"github.com/patrickwarner/openadops/internal/models"
)

func testCampaign() *models.Campaign {
	return &models.Campaign{
		ID:             "CMP-0001",
		Name:           "DBUN_Bundle_Acq_US_ProgDisplay",
		TitleName:      "Bundle",
		BrandCode:      "DBUN",
		Objective:      "Acq",
		TargetingGeo:   "US",
		Language:       "ENG",
		ChannelMapped:  "ProgDisplay",
		BudgetUSD:      250000,
		StartDate:      "2026-02-15",
		AudienceDetail: "A18-34",
	}
}

func TestRouteNewCampaign(t *testing.T) {
	engine := NewEngine("")
	ticket := models.Ticket{
		ID:          "TKT-00001",
		CampaignID:  "CMP-0001",
		RequestType: "New Campaign",
		Platform:    "DV360",
	}

	payloads, reqType := engine.Route(ticket, testCampaign())
	if reqType != models.RequestNewCampaignSetup {
		t.Fatalf("expected NewCampaignSetup classification, got %s", reqType)
	}
	if len(payloads) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(payloads))
	}

	// Verify action order: shell, placement, insertion order
	wantActions := []models.Action{
		models.ActionCreateCampaignShell,
		models.ActionCreatePlacement,
		models.ActionCreateInsertionOrder,
	}
	for i, want := range wantActions {
		if payloads[i].Action != want {
			t.Errorf("payload %d action = %s, want %s", i, payloads[i].Action, want)
		}
	}

	// Shell and placement go to CM360, the insertion order to the ticket platform
	if payloads[0].Platform != "CM360" {
		t.Errorf("shell platform = %s, want CM360", payloads[0].Platform)
	}
	if payloads[1].Platform != "CM360" {
		t.Errorf("placement platform = %s, want CM360", payloads[1].Platform)
	}
	if payloads[2].Platform != "DV360" {
		t.Errorf("insertion order platform = %s, want DV360", payloads[2].Platform)
	}

	if payloads[0].Params["name"] != "DBUN_Bundle_Acq_US_ProgDisplay" {
		t.Errorf("shell name = %v", payloads[0].Params["name"])
	}
	if payloads[0].Params["start_date"] != "2026-02-15" {
		t.Errorf("shell start_date = %v", payloads[0].Params["start_date"])
	}
	if payloads[1].Params["site"] != "DV360" {
		t.Errorf("placement site = %v, want DV360", payloads[1].Params["site"])
	}
	if payloads[2].Params["budget"] != 250000.0 {
		t.Errorf("insertion order budget = %v, want 250000", payloads[2].Params["budget"])
	}
	if payloads[2].Params["targeting"] != "A18-34" {
		t.Errorf("insertion order targeting = %v, want A18-34", payloads[2].Params["targeting"])
	}

	for i, p := range payloads {
		if p.CampaignID != "CMP-0001" {
			t.Errorf("payload %d campaign_id = %s, want CMP-0001", i, p.CampaignID)
		}
		if p.Status != models.PayloadPending {
			t.Errorf("payload %d status = %s, want Pending", i, p.Status)
		}
	}
}

func TestRouteNewCampaignFallbacks(t *testing.T) {
	engine := NewEngine("")

	// No campaign record and no platform on the ticket
	ticket := models.Ticket{ID: "TKT-00002", RequestType: "New Placements"}
	payloads, _ := engine.Route(ticket, nil)
	if len(payloads) != 3 {
		t.Fatalf("expected 3 payloads, got %d", len(payloads))
	}

	if payloads[0].Params["name"] != "New Campaign" {
		t.Errorf("shell name fallback = %v, want New Campaign", payloads[0].Params["name"])
	}
	if payloads[2].Platform != DefaultPlatform {
		t.Errorf("insertion order platform = %s, want %s", payloads[2].Platform, DefaultPlatform)
	}
	if payloads[2].Params["budget"] != 0.0 {
		t.Errorf("budget fallback = %v, want 0", payloads[2].Params["budget"])
	}
	if payloads[0].CampaignID != "CMP-UNKNOWN" {
		t.Errorf("campaign_id fallback = %s, want CMP-UNKNOWN", payloads[0].CampaignID)
	}
}

func TestRouteConfiguredDefaultPlatform(t *testing.T) {
	engine := NewEngine("Meta")

	ticket := models.Ticket{ID: "TKT-00003", CampaignID: "CMP-0002", RequestType: "Budget Change"}
	payloads, _ := engine.Route(ticket, testCampaign())
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].Platform != "Meta" {
		t.Errorf("platform = %s, want configured default Meta", payloads[0].Platform)
	}
}

func TestRouteCreativeRotation(t *testing.T) {
	engine := NewEngine("")
	ticket := models.Ticket{
		ID:          "TKT-00004",
		CampaignID:  "CMP-0001",
		RequestType: "Creative Rotation",
		Platform:    "CM360",
	}

	payloads, reqType := engine.Route(ticket, testCampaign())
	if reqType != models.RequestCreativeRotation {
		t.Fatalf("expected CreativeRotation classification, got %s", reqType)
	}
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}
	if payloads[0].Action != models.ActionRotateCreatives {
		t.Errorf("action = %s, want ROTATE_CREATIVES", payloads[0].Action)
	}
	if payloads[0].Platform != "CM360" {
		t.Errorf("platform = %s, want CM360", payloads[0].Platform)
	}

	placements, ok := payloads[0].Params["placements"].([]string)
	if !ok || len(placements) != 1 {
		t.Fatalf("placements = %v, want single-entry list", payloads[0].Params["placements"])
	}
	if want := BuildPlacementTaxonomy(ticket, testCampaign()); placements[0] != want {
		t.Errorf("placement = %q, want taxonomy %q", placements[0], want)
	}
	if assets, ok := payloads[0].Params["new_assets"].([]string); !ok || len(assets) == 0 {
		t.Errorf("new_assets = %v, want placeholder list", payloads[0].Params["new_assets"])
	}
}

func TestRouteSingleActionTypes(t *testing.T) {
	engine := NewEngine("")
	campaign := testCampaign()

	tests := []struct {
		requestType  string
		wantAction   models.Action
		wantPlatform string
	}{
		{"Budget Change", models.ActionUpdateBudget, "Yahoo DSP"},
		{"New Line Item", models.ActionCreateLineItem, "Yahoo DSP"},
		{"Targeting Update", models.ActionUpdateTargeting, "Yahoo DSP"},
		{"Site Tagging", models.ActionCreateFloodlightTag, "CM360"},
		{"Kochava", models.ActionCreateFloodlightTag, "CM360"},
	}

	for _, tt := range tests {
		t.Run(tt.requestType, func(t *testing.T) {
			ticket := models.Ticket{
				ID:          "TKT-00005",
				CampaignID:  "CMP-0001",
				RequestType: tt.requestType,
				Platform:    "Yahoo DSP",
			}
			payloads, reqType := engine.Route(ticket, campaign)
			if len(payloads) != 1 {
				t.Fatalf("expected 1 payload, got %d", len(payloads))
			}
			if payloads[0].Action != tt.wantAction {
				t.Errorf("action = %s, want %s", payloads[0].Action, tt.wantAction)
			}
			if payloads[0].Platform != tt.wantPlatform {
				t.Errorf("platform = %s, want %s", payloads[0].Platform, tt.wantPlatform)
			}
			if !reqType.Automatable() {
				t.Errorf("classification %s should be automatable", reqType)
			}
		})
	}
}

func TestRouteTargetingUpdateParams(t *testing.T) {
	engine := NewEngine("")
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "Targeting Update", Platform: "DV360"}

	payloads, _ := engine.Route(ticket, testCampaign())
	if payloads[0].Params["new_targeting"] != "A18-34" {
		t.Errorf("new_targeting = %v, want A18-34", payloads[0].Params["new_targeting"])
	}
	if payloads[0].Params["geo"] != "US" {
		t.Errorf("geo = %v, want US", payloads[0].Params["geo"])
	}
}

func TestRouteFloodlightParams(t *testing.T) {
	engine := NewEngine("")
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "Site Tagging", Platform: "DV360"}

	payloads, _ := engine.Route(ticket, nil)
	if payloads[0].Params["conversion_type"] != "Subscription" {
		t.Errorf("conversion_type = %v, want Subscription", payloads[0].Params["conversion_type"])
	}
	if payloads[0].Params["counting_method"] != "STANDARD" {
		t.Errorf("counting_method = %v, want STANDARD", payloads[0].Params["counting_method"])
	}
}

func TestRouteUnsupported(t *testing.T) {
	engine := NewEngine("")

	for _, reqType := range []string{"URL Change", "Discrepancy Investigation", "Login Request", "", "budget change"} {
		ticket := models.Ticket{ID: "TKT-00006", RequestType: reqType}
		payloads, classified := engine.Route(ticket, testCampaign())
		if len(payloads) != 0 {
			t.Errorf("%q: expected no payloads, got %d", reqType, len(payloads))
		}
		if classified != models.RequestUnsupported {
			t.Errorf("%q: classification = %s, want Unsupported", reqType, classified)
		}
	}
}

func TestRouteSubstringMatch(t *testing.T) {
	engine := NewEngine("")

	// 2ND GEAR variants contain the base type name and route identically
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "2ND GEAR New Campaign", Platform: "DV360"}
	payloads, reqType := engine.Route(ticket, testCampaign())
	if reqType != models.RequestNewCampaignSetup {
		t.Fatalf("classification = %s, want NewCampaignSetup", reqType)
	}
	if len(payloads) != 3 {
		t.Errorf("expected 3 payloads, got %d", len(payloads))
	}

	ticket.RequestType = "2ND GEAR Creative Rotation"
	payloads, reqType = engine.Route(ticket, testCampaign())
	if reqType != models.RequestCreativeRotation {
		t.Fatalf("classification = %s, want CreativeRotation", reqType)
	}
	if len(payloads) != 1 {
		t.Errorf("expected 1 payload, got %d", len(payloads))
	}
}

func TestRouteIdempotent(t *testing.T) {
	engine := NewEngine("")
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "New Campaign", Platform: "DV360"}
	campaign := testCampaign()

	first, firstType := engine.Route(ticket, campaign)
	second, secondType := engine.Route(ticket, campaign)
	if firstType != secondType {
		t.Errorf("classifications differ: %s vs %s", firstType, secondType)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Route calls produced different payloads:\n%+v\n%+v", first, second)
	}
}

func TestBuildPlacementTaxonomy(t *testing.T) {
	ticket := models.Ticket{CampaignID: "CMP-0001"}

	got := BuildPlacementTaxonomy(ticket, testCampaign())
	want := "DBUN_Bundle_Acq_US_ProgDisplay|US|ENG|DBUN|Bundle|Acq|ProgDisplay"
	if got != want {
		t.Errorf("taxonomy = %q, want %q", got, want)
	}
	if n := strings.Count(got, "|"); n != 6 {
		t.Errorf("taxonomy has %d pipes, want 6", n)
	}
}

func TestBuildPlacementTaxonomyFallbacks(t *testing.T) {
	// Every field missing: all fallbacks apply
	got := BuildPlacementTaxonomy(models.Ticket{}, nil)
	want := "UNKNOWN_CAMP|UNKNOWN_GEO|ENG|UNKNOWN_BRAND|UNKNOWN_TITLE|Acq|ProgDisplay"
	if got != want {
		t.Errorf("taxonomy = %q, want %q", got, want)
	}

	// Ticket-level geo and brand fill in before the UNKNOWN fallback
	ticket := models.Ticket{TargetingGeo: "GB", Brand: "SW"}
	got = BuildPlacementTaxonomy(ticket, &models.Campaign{Name: "SW_Andor_Acq_GB_ProgVideo"})
	want = "SW_Andor_Acq_GB_ProgVideo|GB|ENG|SW|UNKNOWN_TITLE|Acq|ProgDisplay"
	if got != want {
		t.Errorf("taxonomy = %q, want %q", got, want)
	}

	// Campaign values win over ticket values
	got = BuildPlacementTaxonomy(ticket, &models.Campaign{TargetingGeo: "DE", BrandCode: "MAR"})
	if !strings.Contains(got, "|DE|") || !strings.Contains(got, "|MAR|") {
		t.Errorf("campaign fields should override ticket fields, got %q", got)
	}
}

func TestClassifyAutomationTier(t *testing.T) {
	tests := []struct {
		platform string
		channel  string
		want     string
	}{
		{"DV360", "ProgDisplay", "V1"},
		{"Yahoo DSP", "ProgDisplay", "V2"},
		{"CM360", "YouTube", "V2.1"},
		{"CM360", "ProgAudio", "V2.2"},
		{"CM360", "ProgCTV", "V2.2"},
		{"CM360", "ProgNative", "V2.2"},
		{"Amazon DSP", "ProgCTV", "V3"},
		{"CM360", "ProgDisplay", "V1"},
		{"Snapchat", "Social", "V1"},
		{"", "", "V1"},
	}

	for _, tt := range tests {
		if got := ClassifyAutomationTier(tt.platform, tt.channel); got != tt.want {
			t.Errorf("ClassifyAutomationTier(%q, %q) = %q, want %q", tt.platform, tt.channel, got, tt.want)
		}
	}
}
