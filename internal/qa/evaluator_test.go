package qa

import (
	"reflect"
	"strings"
	"testing"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/trafficking"
)

func routedPayloads(t *testing.T, c *models.Campaign) []models.Payload {
	t.Helper()
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "New Campaign", Platform: "DV360"}
	payloads, _ := trafficking.NewEngine("").Route(ticket, c)
	if len(payloads) == 0 {
		t.Fatal("routing produced no payloads")
	}
	return payloads
}

func TestEvaluateEmptyPayloads(t *testing.T) {
	results := Evaluate(nil, &models.Campaign{})
	if len(results) != 1 {
		t.Fatalf("expected 1 result for empty payloads, got %d", len(results))
	}
	if results[0].Check != models.CheckSpecCompliance {
		t.Errorf("check = %s, want Spec Compliance", results[0].Check)
	}
	if results[0].Result != models.ResultFail {
		t.Errorf("result = %s, want Fail", results[0].Result)
	}
	if !strings.Contains(results[0].Details, "No payloads to QA.") {
		t.Errorf("details = %q, want no-payloads message", results[0].Details)
	}
}

func TestEvaluateFullBattery(t *testing.T) {
	campaign := &models.Campaign{
		Name:          "DBUN_Bundle_Acq_US_ProgDisplay",
		TargetingGeo:  "US",
		Language:      "ENG",
		BrandCode:     "DBUN",
		TitleName:     "Bundle",
		Objective:     "Acq",
		ChannelMapped: "ProgDisplay",
	}
	results := Evaluate(routedPayloads(t, campaign), campaign)
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}

	// Verify fixed check order
	wantOrder := []models.CheckName{
		models.CheckSpecCompliance,
		models.CheckTracking,
		models.CheckTargeting,
		models.CheckFrequencyCap,
		models.CheckContentExclusions,
		models.CheckLandingPage,
		models.CheckTaxonomy,
		models.CheckFloodlightTags,
	}
	for i, want := range wantOrder {
		if results[i].Check != want {
			t.Errorf("result %d check = %s, want %s", i, results[i].Check, want)
		}
	}

	// A fully populated campaign passes everything
	for _, r := range results {
		if r.Result != models.ResultPass {
			t.Errorf("%s = %s (%s), want Pass", r.Check, r.Result, r.Details)
		}
	}
	if !strings.Contains(results[2].Details, "US") {
		t.Errorf("targeting details = %q, want geo value included", results[2].Details)
	}
}

func TestEvaluateMissingGeo(t *testing.T) {
	campaign := &models.Campaign{Name: "DIS_Loki_Acq__ProgDisplay"}
	results := Evaluate(routedPayloads(t, campaign), campaign)
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}

	targeting := results[2]
	if targeting.Check != models.CheckTargeting {
		t.Fatalf("result 2 check = %s, want Targeting", targeting.Check)
	}
	if targeting.Result != models.ResultFail {
		t.Errorf("targeting result = %s, want Fail", targeting.Result)
	}
	if !strings.Contains(targeting.Details, "Missing geo") {
		t.Errorf("targeting details = %q, want Missing geo substring", targeting.Details)
	}
}

func TestEvaluateNilCampaign(t *testing.T) {
	ticket := models.Ticket{CampaignID: "CMP-0001", RequestType: "Site Tagging", Platform: "DV360"}
	payloads, _ := trafficking.NewEngine("").Route(ticket, nil)

	results := Evaluate(payloads, nil)
	if len(results) != 8 {
		t.Fatalf("expected 8 results, got %d", len(results))
	}
	// Missing campaign degrades to fallback verdicts, never panics
	if results[2].Result != models.ResultFail {
		t.Errorf("targeting without campaign = %s, want Fail", results[2].Result)
	}
	if results[5].Result != models.ResultPass {
		t.Errorf("landing page without campaign = %s, want Pass (default URL)", results[5].Result)
	}
}

func TestEvaluateSponsorship(t *testing.T) {
	campaign := &models.Campaign{Name: "ESP_Sports_Sponsorship_US", TargetingGeo: "US"}
	results := Evaluate(routedPayloads(t, campaign), campaign)

	freqCap := results[3]
	if freqCap.Result != models.ResultPass {
		t.Errorf("frequency cap = %s, want Pass", freqCap.Result)
	}
	if !strings.Contains(freqCap.Details, "Sponsorship") {
		t.Errorf("frequency cap details = %q, want sponsorship variant", freqCap.Details)
	}

	exclusions := results[4]
	if exclusions.Result != models.ResultNeedsReview {
		t.Errorf("content exclusions = %s, want Needs Review", exclusions.Result)
	}
	if !strings.Contains(exclusions.Details, "S&P review") {
		t.Errorf("content exclusions details = %q, want S&P review substring", exclusions.Details)
	}

	// BES marker triggers the same review path
	campaign = &models.Campaign{Name: "DIS_BES_Homepage_Takeover", TargetingGeo: "US"}
	results = Evaluate(routedPayloads(t, campaign), campaign)
	if results[4].Result != models.ResultNeedsReview {
		t.Errorf("BES content exclusions = %s, want Needs Review", results[4].Result)
	}
}

func TestEvaluateLandingPage(t *testing.T) {
	campaign := &models.Campaign{Name: "DIS_Loki_Acq_US_ProgDisplay", TargetingGeo: "US", LandingPage: "http://disney.com"}
	results := Evaluate(routedPayloads(t, campaign), campaign)

	landing := results[5]
	if landing.Check != models.CheckLandingPage {
		t.Fatalf("result 5 check = %s, want Landing Page", landing.Check)
	}
	if landing.Result != models.ResultFail {
		t.Errorf("landing page = %s, want Fail for http URL", landing.Result)
	}
	if !strings.Contains(landing.Details, "Non-HTTPS URL") {
		t.Errorf("landing page details = %q, want Non-HTTPS URL substring", landing.Details)
	}
	if !strings.Contains(landing.Details, "http://disney.com") {
		t.Errorf("landing page details = %q, want offending URL included", landing.Details)
	}

	// HTTPS URL passes
	campaign.LandingPage = "https://disneyplus.com/loki"
	results = Evaluate(routedPayloads(t, campaign), campaign)
	if results[5].Result != models.ResultPass {
		t.Errorf("landing page = %s, want Pass for https URL", results[5].Result)
	}
}

func TestEvaluateTaxonomy(t *testing.T) {
	// A short placement name fails the pipe-count rule
	payloads := []models.Payload{{
		CampaignID: "CMP-0001",
		Platform:   "CM360",
		Action:     models.ActionCreatePlacement,
		Params:     map[string]any{"placement_name": "DIS_Loki|US|ENG"},
		Status:     models.PayloadPending,
	}}
	results := Evaluate(payloads, &models.Campaign{TargetingGeo: "US"})

	tax := results[6]
	if tax.Check != models.CheckTaxonomy {
		t.Fatalf("result 6 check = %s, want Taxonomy Validation", tax.Check)
	}
	if tax.Result != models.ResultFail {
		t.Errorf("taxonomy = %s, want Fail for short name", tax.Result)
	}
	if !strings.Contains(tax.Details, "pipe-delimited") {
		t.Errorf("taxonomy details = %q, want convention message", tax.Details)
	}

	// Non-placement payloads are ignored by the taxonomy rule
	payloads[0].Action = models.ActionRotateCreatives
	results = Evaluate(payloads, &models.Campaign{TargetingGeo: "US"})
	if results[6].Result != models.ResultPass {
		t.Errorf("taxonomy = %s, want Pass when no placements present", results[6].Result)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	campaign := &models.Campaign{Name: "DBUN_Bundle_Acq_US_ProgDisplay", TargetingGeo: "US"}
	payloads := routedPayloads(t, campaign)

	first := Evaluate(payloads, campaign)
	second := Evaluate(payloads, campaign)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Evaluate calls produced different results:\n%+v\n%+v", first, second)
	}
}

func TestBlockingResults(t *testing.T) {
	if models.ResultPass.Blocking() {
		t.Error("Pass should not block launch")
	}
	if !models.ResultFail.Blocking() {
		t.Error("Fail should block launch")
	}
	if !models.ResultNeedsReview.Blocking() {
		t.Error("Needs Review should block launch")
	}
}
