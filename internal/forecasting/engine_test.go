package forecasting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/models"
)

func newTestEngine(t *testing.T, campaigns []models.Campaign) (*Engine, *analytics.MockAnalytics) {
	t.Helper()
	store := models.NewInMemoryOpsDataStore()
	if err := store.SetCampaigns(campaigns); err != nil {
		t.Fatalf("Failed to set campaigns: %v", err)
	}
	svc := analytics.NewMockAnalytics()
	return NewEngine(svc, store, zap.NewNop()), svc
}

func TestCampaignPacingReport(t *testing.T) {
	oldNow := nowFn
	nowFn = midFlight
	defer func() { nowFn = oldNow }()

	engine, svc := newTestEngine(t, []models.Campaign{testPacingCampaign()})
	svc.Totals["CMP-0001"] = analytics.DeliveryTotals{
		CampaignID:  "CMP-0001",
		Impressions: 500000,
		SpendUSD:    50000,
		Days:        14,
	}

	report, err := engine.CampaignPacing(context.Background(), "CMP-0001")
	assert.NoError(t, err)

	assert.Equal(t, "CMP-0001", report.CampaignID)
	assert.Equal(t, "PLUS_Loki_Acq_US_ProgDisplay", report.CampaignName, "Report should carry the grid name")
	assert.Equal(t, "DV360", report.Platform)
	assert.Equal(t, PacingOnTrack, report.Status, "Half delivered at half flight should be on track")
	assert.Equal(t, int64(500000), report.DeliveredImpressions)
	assert.Equal(t, int64(1000000), report.ForecastedImpressions, "Half-flight run rate should project the full goal")
	assert.Equal(t, 50.0, report.BudgetUtilizationPct)
}

func TestCampaignPacingAnalyticsError(t *testing.T) {
	engine, svc := newTestEngine(t, []models.Campaign{testPacingCampaign()})
	svc.Err = analytics.ErrUnavailable

	_, err := engine.CampaignPacing(context.Background(), "CMP-0001")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, analytics.ErrUnavailable), "Analytics errors should wrap, not swallow")
}

func TestPacingSummaryAnalyticsError(t *testing.T) {
	engine, svc := newTestEngine(t, []models.Campaign{testPacingCampaign()})
	svc.Err = analytics.ErrUnavailable

	_, _, err := engine.PacingSummary(context.Background())
	assert.Error(t, err, "Summary should fail rather than report partial pacing")
}

func TestCampaignPacingNoDeliveryDays(t *testing.T) {
	oldNow := nowFn
	nowFn = midFlight
	defer func() { nowFn = oldNow }()

	// Campaign known to analytics but with no delivery rows yet
	engine, _ := newTestEngine(t, []models.Campaign{testPacingCampaign()})

	report, err := engine.CampaignPacing(context.Background(), "CMP-0001")
	assert.NoError(t, err)
	assert.Equal(t, PacingUnder, report.Status, "Mid-flight with zero delivery is under-pacing")
	assert.Equal(t, int64(0), report.ForecastedImpressions, "No delivery days means nothing to project from")
}
