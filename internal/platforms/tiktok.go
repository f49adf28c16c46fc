package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/ratelimit"
	"go.uber.org/zap"
)

const tiktokBaseURL = "https://business-api.tiktok.com/open_api/v1.3"

// Platform-enforced daily budget floors in USD.
const (
	tiktokCampaignBudgetFloor = 50
	tiktokAdGroupBudgetFloor  = 20
)

// TikTokClient automates campaign and ad group creation on the TikTok
// Business API. Responses arrive in an envelope; code 0 means success and
// anything else carries an error message.
type TikTokClient struct {
	cfg        config.TikTokConfig
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.PlatformLimiter
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// tiktokEnvelope is the response wrapper every TikTok endpoint uses.
// Sandbox accounts return IDs as numbers and production returns strings,
// so the data fields decode through json.Number.
type tiktokEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		CampaignID json.Number `json:"campaign_id"`
		AdGroupID  json.Number `json:"adgroup_id"`
	} `json:"data"`
}

// NewTikTokClient creates a TikTok Business API client.
func NewTikTokClient(cfg config.TikTokConfig, limiter *ratelimit.PlatformLimiter, logger *zap.Logger, metrics observability.MetricsRegistry) *TikTokClient {
	return &TikTokClient{
		cfg:        cfg,
		baseURL:    tiktokBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    limiter,
		logger:     logger,
		metrics:    metrics,
	}
}

// CreateCampaign creates a daily-budget traffic campaign and returns its
// ID. Returns ("", nil) when credentials are not configured.
func (c *TikTokClient) CreateCampaign(ctx context.Context, name string, budgetUSD float64) (string, error) {
	if !c.cfg.Configured() {
		c.logger.Info("Skipping TikTok campaign creation: credentials missing",
			zap.String("campaign_name", name))
		return "", nil
	}
	if !allowed(c.limiter, PlatformTikTok) {
		return "", fmt.Errorf("tiktok: rate limited")
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformTikTok, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformTikTok, outcome)
	}()

	payload := map[string]any{
		"advertiser_id":  c.cfg.AdvertiserID,
		"campaign_name":  name,
		"objective_type": "TRAFFIC",
		"budget_mode":    "BUDGET_MODE_DAY",
		"budget":         max(int(budgetUSD), tiktokCampaignBudgetFloor),
	}

	var res tiktokEnvelope
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/campaign/create/", c.authHeaders(), payload, &res, c.logger); err != nil {
		outcome = "failure"
		return "", fmt.Errorf("tiktok create campaign: %w", err)
	}
	if res.Code != 0 {
		outcome = "failure"
		return "", fmt.Errorf("tiktok create campaign: code %d: %s", res.Code, res.Message)
	}

	c.logger.Info("Created TikTok campaign",
		zap.String("tiktok_campaign_id", res.Data.CampaignID.String()),
		zap.String("campaign_name", name))
	return res.Data.CampaignID.String(), nil
}

// CreateAdGroup creates an ad group under a campaign, linking the given
// tracking pixel. An empty geo defaults to US. Returns ("", nil) when
// credentials are not configured.
func (c *TikTokClient) CreateAdGroup(ctx context.Context, campaignID, adGroupName, pixelCode string, budgetUSD float64, geo string) (string, error) {
	if !c.cfg.Configured() {
		c.logger.Info("Skipping TikTok ad group creation: credentials missing",
			zap.String("adgroup_name", adGroupName))
		return "", nil
	}
	if !allowed(c.limiter, PlatformTikTok) {
		return "", fmt.Errorf("tiktok: rate limited")
	}
	if geo == "" {
		geo = "US"
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformTikTok, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformTikTok, outcome)
	}()

	payload := map[string]any{
		"advertiser_id":  c.cfg.AdvertiserID,
		"campaign_id":    campaignID,
		"adgroup_name":   adGroupName,
		"placement_type": "PLACEMENT_TYPE_NORMAL",
		"placement":      []string{"PLACEMENT_TIKTOK"},
		"location":       []string{geo},
		"budget_mode":    "BUDGET_MODE_DAY",
		"budget":         max(int(budgetUSD), tiktokAdGroupBudgetFloor),
		"schedule_type":  "SCHEDULE_START_END",
		"optimize_goal":  "CLICK",
		"pixel_id":       pixelCode,
	}

	var res tiktokEnvelope
	if err := postJSON(ctx, c.httpClient, c.baseURL+"/adgroup/create/", c.authHeaders(), payload, &res, c.logger); err != nil {
		outcome = "failure"
		return "", fmt.Errorf("tiktok create adgroup: %w", err)
	}
	if res.Code != 0 {
		outcome = "failure"
		return "", fmt.Errorf("tiktok create adgroup: code %d: %s", res.Code, res.Message)
	}

	c.logger.Info("Created TikTok ad group",
		zap.String("tiktok_adgroup_id", res.Data.AdGroupID.String()),
		zap.String("adgroup_name", adGroupName))
	return res.Data.AdGroupID.String(), nil
}

func (c *TikTokClient) authHeaders() map[string]string {
	return map[string]string{
		"Access-Token": c.cfg.AccessToken,
	}
}
