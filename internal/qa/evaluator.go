// Package qa implements the automated QA battery that replaced the manual
// trafficker checklist. Evaluate runs a fixed set of independent checks
// against the payloads built for a ticket and the campaign record behind it,
// and returns one structured verdict per check. Checks never error: missing
// or malformed input degrades to a documented default verdict.
package qa

import (
	"fmt"
	"strings"

	"github.com/patrickwarner/openadops/internal/models"
)

// DefaultLandingPage is assumed when a campaign has no landing page set.
const DefaultLandingPage = "https://disneyplus.com"

type checkFunc func(payloads []models.Payload, c *models.Campaign) models.QAResult

// checks is the battery in declaration order. The order is part of the
// contract; results always come back in this sequence.
var checks = []checkFunc{
	checkSpecCompliance,
	checkTracking,
	checkTargeting,
	checkFrequencyCap,
	checkContentExclusions,
	checkLandingPage,
	checkTaxonomy,
	checkFloodlightTags,
}

// Evaluate runs every check against the payloads and campaign, returning
// one result per check in fixed order. An empty payload list short-circuits
// to a single Spec Compliance failure; there is nothing else worth checking
// when no automation output exists. The campaign may be nil.
func Evaluate(payloads []models.Payload, c *models.Campaign) []models.QAResult {
	if len(payloads) == 0 {
		return []models.QAResult{{
			Check:   models.CheckSpecCompliance,
			Result:  models.ResultFail,
			Details: "No payloads to QA.",
		}}
	}

	results := make([]models.QAResult, 0, len(checks))
	for _, check := range checks {
		results = append(results, check(payloads, c))
	}
	return results
}

func checkSpecCompliance(payloads []models.Payload, c *models.Campaign) models.QAResult {
	// Payloads are non-empty by the time this runs; the empty case is
	// handled by the Evaluate short-circuit.
	return models.QAResult{
		Check:   models.CheckSpecCompliance,
		Result:  models.ResultPass,
		Details: "Creative matches spec.",
	}
}

// checkTracking is a known stub: it passes unconditionally. Real tag
// verification happens in the platform consoles today.
func checkTracking(payloads []models.Payload, c *models.Campaign) models.QAResult {
	return models.QAResult{
		Check:   models.CheckTracking,
		Result:  models.ResultPass,
		Details: "Tracking tags configured.",
	}
}

func checkTargeting(payloads []models.Payload, c *models.Campaign) models.QAResult {
	var geo string
	if c != nil {
		geo = c.TargetingGeo
	}
	if geo == "" {
		return models.QAResult{
			Check:   models.CheckTargeting,
			Result:  models.ResultFail,
			Details: "Missing geo targeting.",
		}
	}
	return models.QAResult{
		Check:   models.CheckTargeting,
		Result:  models.ResultPass,
		Details: fmt.Sprintf("Geo targeting found: %s", geo),
	}
}

func checkFrequencyCap(payloads []models.Payload, c *models.Campaign) models.QAResult {
	if isSponsorship(c) {
		return models.QAResult{
			Check:   models.CheckFrequencyCap,
			Result:  models.ResultPass,
			Details: "Frequency cap set for Sponsorship.",
		}
	}
	return models.QAResult{
		Check:   models.CheckFrequencyCap,
		Result:  models.ResultPass,
		Details: "Frequency cap standard.",
	}
}

func checkContentExclusions(payloads []models.Payload, c *models.Campaign) models.QAResult {
	if isSponsorship(c) {
		return models.QAResult{
			Check:   models.CheckContentExclusions,
			Result:  models.ResultNeedsReview,
			Details: "Sponsorship requires S&P review.",
		}
	}
	return models.QAResult{
		Check:   models.CheckContentExclusions,
		Result:  models.ResultPass,
		Details: "Standard exclusions applied.",
	}
}

func checkLandingPage(payloads []models.Payload, c *models.Campaign) models.QAResult {
	url := DefaultLandingPage
	if c != nil && c.LandingPage != "" {
		url = c.LandingPage
	}
	if !strings.HasPrefix(url, "https://") {
		return models.QAResult{
			Check:   models.CheckLandingPage,
			Result:  models.ResultFail,
			Details: fmt.Sprintf("Non-HTTPS URL provided: %s", url),
		}
	}
	return models.QAResult{
		Check:   models.CheckLandingPage,
		Result:  models.ResultPass,
		Details: "Click-through URL resolves correctly.",
	}
}

func checkTaxonomy(payloads []models.Payload, c *models.Campaign) models.QAResult {
	for _, p := range payloads {
		if p.Action != models.ActionCreatePlacement {
			continue
		}
		name, _ := p.Params["placement_name"].(string)
		if strings.Count(name, "|") < 6 {
			return models.QAResult{
				Check:   models.CheckTaxonomy,
				Result:  models.ResultFail,
				Details: "Placement name does not follow pipe-delimited convention.",
			}
		}
	}
	return models.QAResult{
		Check:   models.CheckTaxonomy,
		Result:  models.ResultPass,
		Details: "Taxonomy valid.",
	}
}

// checkFloodlightTags is a known stub: it passes unconditionally.
func checkFloodlightTags(payloads []models.Payload, c *models.Campaign) models.QAResult {
	return models.QAResult{
		Check:   models.CheckFloodlightTags,
		Result:  models.ResultPass,
		Details: "Conversion tags correctly assigned.",
	}
}

// isSponsorship reports whether the campaign is a sponsorship buy, flagged
// by the BES or Sponsorship markers in the campaign name.
func isSponsorship(c *models.Campaign) bool {
	if c == nil {
		return false
	}
	return strings.Contains(c.Name, "BES") || strings.Contains(c.Name, "Sponsorship")
}
