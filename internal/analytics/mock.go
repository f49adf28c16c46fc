package analytics

import (
	"context"

	"github.com/patrickwarner/openadops/internal/models"
)

var _ AnalyticsService = (*MockAnalytics)(nil)

// MockAnalytics is an in-memory implementation of AnalyticsService for
// testing. Recorded events are kept in order; query results are whatever the
// test preloads into the corresponding fields.
type MockAnalytics struct {
	Recorded     []DeliveryEvent
	ZeroDelivery []models.Campaign
	Totals       map[string]DeliveryTotals
	Daily        map[string][]DailyDelivery
	Platforms    map[string][]PlatformDelivery
	Err          error // returned by every method when set
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{
		Totals:    make(map[string]DeliveryTotals),
		Daily:     make(map[string][]DailyDelivery),
		Platforms: make(map[string][]PlatformDelivery),
	}
}

// RecordDelivery appends the event to Recorded.
func (m *MockAnalytics) RecordDelivery(ctx context.Context, ev DeliveryEvent) error {
	if m.Err != nil {
		return m.Err
	}
	m.Recorded = append(m.Recorded, ev)
	return nil
}

// ZeroDeliveryCampaigns returns the preloaded ZeroDelivery slice.
func (m *MockAnalytics) ZeroDeliveryCampaigns(ctx context.Context, store models.OpsDataStore) ([]models.Campaign, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ZeroDelivery, nil
}

// CampaignTotals returns the preloaded totals for the campaign.
func (m *MockAnalytics) CampaignTotals(ctx context.Context, campaignID string) (DeliveryTotals, error) {
	if m.Err != nil {
		return DeliveryTotals{}, m.Err
	}
	return m.Totals[campaignID], nil
}

// DailySeries returns the preloaded series for the campaign.
func (m *MockAnalytics) DailySeries(ctx context.Context, campaignID string, days int) ([]DailyDelivery, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Daily[campaignID], nil
}

// PlatformTotals returns the preloaded platform breakdown for the campaign.
func (m *MockAnalytics) PlatformTotals(ctx context.Context, campaignID string) ([]PlatformDelivery, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Platforms[campaignID], nil
}
