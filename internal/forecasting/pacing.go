// Package forecasting classifies campaign delivery pacing and projects
// end-of-flight totals from the delivery history in ClickHouse.
package forecasting

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/models"
)

// Pacing statuses. A campaign is pacing against time: with 50% of the flight
// elapsed it should have delivered about 50% of its impression goal.
const (
	PacingUnder      = "Under-Pacing"
	PacingOver       = "Over-Pacing"
	PacingOnTrack    = "On Track"
	PacingNotStarted = "Not Started"
	PacingUnknown    = "Unknown"
	PacingNA         = "N/A" // campaign is not Active
)

// Ratio thresholds on delivered% / elapsed%.
const (
	underPacingRatio = 0.8
	overPacingRatio  = 1.2
)

// nowFn is used to get the current time. In production it's time.Now,
// in tests it's replaced with a fixed clock.
var nowFn = time.Now

// PacingReport is one campaign's pacing assessment.
type PacingReport struct {
	CampaignID            string  `json:"campaign_id"`
	CampaignName          string  `json:"campaign_name"`
	Platform              string  `json:"platform"`
	Status                string  `json:"pacing_status"`
	PacingRatio           float64 `json:"pacing_ratio"`
	DeliveryPct           float64 `json:"delivery_pct"`
	TimeElapsedPct        float64 `json:"time_elapsed_pct"`
	BudgetUtilizationPct  float64 `json:"budget_utilization_pct"`
	ImpressionsGoal       int64   `json:"impressions_goal"`
	DeliveredImpressions  int64   `json:"delivered_impressions"`
	ForecastedImpressions int64   `json:"forecasted_impressions"`
}

// Engine computes pacing reports from campaign metadata and delivery totals.
type Engine struct {
	Analytics analytics.AnalyticsService
	Store     models.OpsDataStore
	Logger    *zap.Logger
}

// NewEngine creates a new pacing engine
func NewEngine(svc analytics.AnalyticsService, store models.OpsDataStore, logger *zap.Logger) *Engine {
	return &Engine{
		Analytics: svc,
		Store:     store,
		Logger:    logger,
	}
}

// CampaignPacing assesses one campaign against its delivery totals.
func (e *Engine) CampaignPacing(ctx context.Context, campaignID string) (PacingReport, error) {
	c := e.Store.GetCampaign(campaignID)
	if c == nil {
		return PacingReport{}, models.ErrNotFound
	}
	totals, err := e.Analytics.CampaignTotals(ctx, campaignID)
	if err != nil {
		return PacingReport{}, fmt.Errorf("delivery totals for %s: %w", campaignID, err)
	}
	return Assess(*c, totals, nowFn()), nil
}

// PacingSummary assesses every active campaign and splits out the ones
// pacing outside the healthy band.
func (e *Engine) PacingSummary(ctx context.Context) (under, over []PacingReport, err error) {
	for _, c := range e.Store.GetAllCampaigns() {
		if c.Status != models.CampaignActive {
			continue
		}
		totals, err := e.Analytics.CampaignTotals(ctx, c.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("delivery totals for %s: %w", c.ID, err)
		}
		report := Assess(c, totals, nowFn())
		switch report.Status {
		case PacingUnder:
			under = append(under, report)
		case PacingOver:
			over = append(over, report)
		}
	}
	return under, over, nil
}

// Assess computes a pacing report for one campaign. Pure function: callers
// supply the clock.
func Assess(c models.Campaign, totals analytics.DeliveryTotals, now time.Time) PacingReport {
	report := PacingReport{
		CampaignID:           c.ID,
		CampaignName:         c.Name,
		Platform:             c.Platform,
		Status:               PacingUnknown,
		ImpressionsGoal:      c.ImpressionsGoal,
		DeliveredImpressions: totals.Impressions,
	}
	if c.BudgetUSD > 0 {
		report.BudgetUtilizationPct = totals.SpendUSD / c.BudgetUSD * 100
	}

	if c.Status != models.CampaignActive {
		report.Status = PacingNA
		return report
	}

	start, errStart := time.Parse("2006-01-02", c.StartDate)
	end, errEnd := time.Parse("2006-01-02", c.EndDate)
	if errStart != nil || errEnd != nil || !end.After(start) || c.ImpressionsGoal <= 0 {
		return report
	}
	flightDays := int(end.Sub(start).Hours() / 24)

	report.DeliveryPct = float64(totals.Impressions) / float64(c.ImpressionsGoal) * 100

	// Elapsed time is clamped to the flight window on both ends.
	ref := now
	if ref.After(end) {
		ref = end
	}
	elapsed := ref.Sub(start).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	report.TimeElapsedPct = elapsed / float64(flightDays) * 100

	if totals.Days > 0 {
		perDay := float64(totals.Impressions) / float64(totals.Days)
		report.ForecastedImpressions = int64(perDay * float64(flightDays))
	}

	if report.TimeElapsedPct == 0 {
		report.Status = PacingNotStarted
		return report
	}

	report.PacingRatio = report.DeliveryPct / report.TimeElapsedPct
	switch {
	case report.PacingRatio < underPacingRatio:
		report.Status = PacingUnder
	case report.PacingRatio > overPacingRatio:
		report.Status = PacingOver
	default:
		report.Status = PacingOnTrack
	}
	return report
}
