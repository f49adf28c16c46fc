package models

import "go.uber.org/zap"

// Campaign statuses as tracked in the campaign grid. Delivery monitoring only
// considers CampaignActive campaigns; the rest are ignored by pacing and
// zero-delivery checks.
const (
	CampaignActive        = "Active"
	CampaignPaused        = "Paused"
	CampaignCompleted     = "Completed"
	CampaignPendingLaunch = "Pending Launch"
)

// Campaign holds the descriptive attributes of an ad campaign that tickets
// reference. Every field is optional from the router's point of view: the
// taxonomy builder and QA checks substitute deterministic fallbacks for
// anything missing rather than erroring.
type Campaign struct {
	ID              string  `json:"campaign_id"` // External identifier, e.g. "CMP-0007".
	Name            string  `json:"campaign_name"`
	TitleID         string  `json:"title_id,omitempty"`
	TitleName       string  `json:"title_name"`
	Brand           string  `json:"brand"`      // Display brand, e.g. "Star Wars".
	BrandCode       string  `json:"brand_code"` // Central-grid code, e.g. "SW".
	Objective       string  `json:"campaign_objective"`
	TargetingGeo    string  `json:"targeting_geo"`
	Country         string  `json:"country,omitempty"`
	Language        string  `json:"language"`
	GeoCluster      string  `json:"geo_cluster,omitempty"`
	Region          string  `json:"region,omitempty"`
	Channel         string  `json:"channel,omitempty"` // Workflow channel name, e.g. "Display Static".
	ChannelMapped   string  `json:"channel_mapped"`    // Central-grid channel, e.g. "ProgDisplay".
	Platform        string  `json:"platform"`
	BudgetUSD       float64 `json:"budget_usd"`
	StartDate       string  `json:"start_date"` // YYYY-MM-DD; kept as entered, parsed where date math is needed.
	EndDate         string  `json:"end_date"`
	Status          string  `json:"status"`
	ImpressionsGoal int64   `json:"impressions_goal"`
	AudienceTactic  string  `json:"audience_tactic,omitempty"`
	AudienceDetail  string  `json:"audience_detailed"`
	LandingPage     string  `json:"landing_page,omitempty"`
}

// SetCampaigns replaces the in-memory campaign slice.
// This function delegates to the OpsDataStore for thread-safe access.
func SetCampaigns(store OpsDataStore, c []Campaign) {
	if store == nil {
		return
	}
	if err := store.SetCampaigns(c); err != nil {
		zap.L().Warn("failed to set campaigns", zap.Error(err))
	}
}

// GetCampaignByID returns the campaign matching the given ID, or nil if not found.
// This function delegates to the OpsDataStore for thread-safe access.
func GetCampaignByID(store OpsDataStore, id string) *Campaign {
	if store == nil {
		return nil
	}
	return store.GetCampaign(id)
}
