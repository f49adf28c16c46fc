// Package reporting assembles campaign delivery reports. It combines
// warehouse aggregates with campaign metadata and the pacing verdict into
// a single structure the API and CLI tooling can render.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
)

// nowFn is swapped in tests to pin the report clock.
var nowFn = time.Now

// CampaignReport contains a campaign's delivery picture: identity and
// flight metadata, lifetime delivery totals with derived metrics, daily and
// per-platform breakdowns, and the pacing assessment. Financial figures are
// USD; CTR and rates are percentages (0-100).
type CampaignReport struct {
	CampaignID      string  `json:"campaign_id"`
	Name            string  `json:"campaign_name"`
	Platform        string  `json:"platform"`         // Booked DSP platform
	Status          string  `json:"status"`           // Campaign lifecycle status
	StartDate       string  `json:"start_date"`       // Flight start, YYYY-MM-DD
	EndDate         string  `json:"end_date"`         // Flight end, YYYY-MM-DD
	BudgetUSD       float64 `json:"budget_usd"`       // Booked budget
	ImpressionsGoal int64   `json:"impressions_goal"` // Contracted delivery goal

	GeneratedAt time.Time `json:"generated_at"`

	Totals        analytics.DeliveryTotals `json:"totals"`          // Lifetime delivery aggregates
	CTR           float64                  `json:"ctr"`             // Click-through rate as percentage
	CPM           float64                  `json:"cpm"`             // Cost per mille in USD
	VASTErrorRate float64                  `json:"vast_error_rate"` // VAST errors per impression as percentage

	Daily     []analytics.DailyDelivery    `json:"daily"`     // Day-by-day breakdown, oldest first
	Platforms []analytics.PlatformDelivery `json:"platforms"` // Reported delivery by platform

	Pacing forecasting.PacingReport `json:"pacing"`
}

// GenerateCampaignReport assembles the delivery report for a campaign.
// days limits the daily breakdown window; 0 means the full flight.
func GenerateCampaignReport(ctx context.Context, svc analytics.AnalyticsService, store models.OpsDataStore, campaignID string, days int) (*CampaignReport, error) {
	campaign := store.GetCampaign(campaignID)
	if campaign == nil {
		return nil, models.ErrNotFound
	}

	totals, err := svc.CampaignTotals(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get campaign totals: %w", err)
	}

	daily, err := svc.DailySeries(ctx, campaignID, days)
	if err != nil {
		return nil, fmt.Errorf("get daily series: %w", err)
	}

	platforms, err := svc.PlatformTotals(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("get platform totals: %w", err)
	}

	now := nowFn()
	report := &CampaignReport{
		CampaignID:      campaign.ID,
		Name:            campaign.Name,
		Platform:        campaign.Platform,
		Status:          campaign.Status,
		StartDate:       campaign.StartDate,
		EndDate:         campaign.EndDate,
		BudgetUSD:       campaign.BudgetUSD,
		ImpressionsGoal: campaign.ImpressionsGoal,
		GeneratedAt:     now,
		Totals:          totals,
		CTR:             totals.CTR() * 100,
		CPM:             totals.CPM(),
		VASTErrorRate:   totals.VASTErrorRate() * 100,
		Daily:           daily,
		Platforms:       platforms,
		Pacing:          forecasting.Assess(*campaign, totals, now),
	}
	return report, nil
}
