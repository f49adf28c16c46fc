// Package trafficking implements the automated trafficking engine. It
// classifies tickets by request type, builds the ordered platform payloads
// each ticket requires, and maps platform and channel pairings to the
// automation tier that covers them.
package trafficking

import "github.com/patrickwarner/openadops/internal/models"

// DefaultPlatform is the destination used when a ticket does not name one.
const DefaultPlatform = "DV360"

// Engine builds platform payloads from tickets. Routing is deterministic:
// the same ticket and campaign always produce the same payload sequence.
type Engine struct {
	defaultPlatform string
}

// NewEngine returns an engine that routes tickets without a platform to
// defaultPlatform. Empty selects DefaultPlatform.
func NewEngine(defaultPlatform string) *Engine {
	if defaultPlatform == "" {
		defaultPlatform = DefaultPlatform
	}
	return &Engine{defaultPlatform: defaultPlatform}
}

// Route classifies the ticket and returns the ordered payloads needed to
// traffic it, plus the classification itself. Unrecognized request types
// return no payloads and models.RequestUnsupported; callers treat that as
// "no automation available", not an error. The campaign may be nil; every
// campaign field has a deterministic fallback.
func (e *Engine) Route(t models.Ticket, c *models.Campaign) ([]models.Payload, models.RequestType) {
	platform := t.Platform
	if platform == "" {
		platform = e.defaultPlatform
	}

	reqType := models.ClassifyRequestType(t.RequestType)
	switch reqType {
	case models.RequestNewCampaignSetup:
		return e.buildCampaignSetup(t, c, platform), reqType
	case models.RequestCreativeRotation:
		return e.buildCreativeRotation(t, c), reqType
	case models.RequestBudgetChange:
		return e.buildBudgetChange(t, c, platform), reqType
	case models.RequestNewLineItem:
		return e.buildNewLineItem(t, c, platform), reqType
	case models.RequestTargetingUpdate:
		return e.buildTargetingUpdate(t, c, platform), reqType
	case models.RequestTagImplementation:
		return e.buildTagImplementation(t), reqType
	default:
		return nil, models.RequestUnsupported
	}
}

// buildCampaignSetup emits the three-step setup: CM360 campaign shell, a
// CM360 placement named by taxonomy, then the insertion order on the DSP.
// The order is a contract consumers rely on: the insertion order budget is
// applied only once the placement taxonomy exists.
func (e *Engine) buildCampaignSetup(t models.Ticket, c *models.Campaign, platform string) []models.Payload {
	campID := campaignID(t)
	name := "New Campaign"
	var startDate string
	var budget float64
	var targeting string
	if c != nil {
		if c.Name != "" {
			name = c.Name
		}
		startDate = c.StartDate
		budget = c.BudgetUSD
		targeting = c.AudienceDetail
	}
	return []models.Payload{
		{
			CampaignID: campID,
			Platform:   "CM360",
			Action:     models.ActionCreateCampaignShell,
			Params:     map[string]any{"name": name, "start_date": startDate},
			Status:     models.PayloadPending,
		},
		{
			CampaignID: campID,
			Platform:   "CM360",
			Action:     models.ActionCreatePlacement,
			Params:     map[string]any{"placement_name": BuildPlacementTaxonomy(t, c), "site": platform},
			Status:     models.PayloadPending,
		},
		{
			CampaignID: campID,
			Platform:   platform,
			Action:     models.ActionCreateInsertionOrder,
			Params:     map[string]any{"budget": budget, "targeting": targeting},
			Status:     models.PayloadPending,
		},
	}
}

func (e *Engine) buildCreativeRotation(t models.Ticket, c *models.Campaign) []models.Payload {
	return []models.Payload{{
		CampaignID: campaignID(t),
		Platform:   "CM360",
		Action:     models.ActionRotateCreatives,
		Params: map[string]any{
			"placements": []string{BuildPlacementTaxonomy(t, c)},
			"new_assets": []string{"asset_1.mp4", "asset_2.jpg"},
		},
		Status: models.PayloadPending,
	}}
}

func (e *Engine) buildBudgetChange(t models.Ticket, c *models.Campaign, platform string) []models.Payload {
	var budget float64
	if c != nil {
		budget = c.BudgetUSD
	}
	return []models.Payload{{
		CampaignID: campaignID(t),
		Platform:   platform,
		Action:     models.ActionUpdateBudget,
		Params:     map[string]any{"new_budget": budget},
		Status:     models.PayloadPending,
	}}
}

func (e *Engine) buildNewLineItem(t models.Ticket, c *models.Campaign, platform string) []models.Payload {
	var targeting string
	if c != nil {
		targeting = c.AudienceDetail
	}
	return []models.Payload{{
		CampaignID: campaignID(t),
		Platform:   platform,
		Action:     models.ActionCreateLineItem,
		Params:     map[string]any{"targeting": targeting},
		Status:     models.PayloadPending,
	}}
}

func (e *Engine) buildTargetingUpdate(t models.Ticket, c *models.Campaign, platform string) []models.Payload {
	var targeting, geo string
	if c != nil {
		targeting = c.AudienceDetail
		geo = c.TargetingGeo
	}
	return []models.Payload{{
		CampaignID: campaignID(t),
		Platform:   platform,
		Action:     models.ActionUpdateTargeting,
		Params:     map[string]any{"new_targeting": targeting, "geo": geo},
		Status:     models.PayloadPending,
	}}
}

// buildTagImplementation always lands on CM360: floodlight configuration
// lives there regardless of where the media runs.
func (e *Engine) buildTagImplementation(t models.Ticket) []models.Payload {
	return []models.Payload{{
		CampaignID: campaignID(t),
		Platform:   "CM360",
		Action:     models.ActionCreateFloodlightTag,
		Params:     map[string]any{"conversion_type": "Subscription", "counting_method": "STANDARD"},
		Status:     models.PayloadPending,
	}}
}

func campaignID(t models.Ticket) string {
	if t.CampaignID == "" {
		return "CMP-UNKNOWN"
	}
	return t.CampaignID
}
