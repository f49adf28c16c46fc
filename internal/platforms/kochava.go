package platforms

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	kochavaBaseURL = "https://go.kochava.com/v1/trackers"

	// App store listing installs attribute to when no destination override
	// is given.
	kochavaDefaultDestination = "https://apps.apple.com/us/app/disney/id1446075923"
)

// KochavaClient creates mobile attribution trackers. Each tracker links a
// campaign/network pair to click and impression URLs that get embedded in
// the DSP so installs attribute back to the right media partner.
type KochavaClient struct {
	cfg        config.KochavaConfig
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.PlatformLimiter
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// TrackerURLs is a Kochava tracker's click and impression measurement URLs.
type TrackerURLs struct {
	TrackerID     string `json:"tracker_id"`
	ClickURL      string `json:"click_url"`
	ImpressionURL string `json:"impression_url"`
}

// NewKochavaClient creates a Kochava attribution client.
func NewKochavaClient(cfg config.KochavaConfig, limiter *ratelimit.PlatformLimiter, logger *zap.Logger, metrics observability.MetricsRegistry) *KochavaClient {
	return &KochavaClient{
		cfg:        cfg,
		baseURL:    kochavaBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    limiter,
		logger:     logger,
		metrics:    metrics,
	}
}

// CreateTracker registers a tracking link for a campaign/network pair and
// returns the URLs to embed in the DSP. An empty destinationURL falls back
// to the default app store listing. Returns (nil, nil) when credentials
// are not configured. API failures degrade to deterministic mock URLs so
// trafficking can proceed while attribution catches up.
func (c *KochavaClient) CreateTracker(ctx context.Context, campaignName, networkName, siteID, destinationURL string) (*TrackerURLs, error) {
	if c.cfg.APIKey == "" || c.cfg.AppGUID == "" {
		c.logger.Info("Skipping Kochava tracker creation: credentials missing",
			zap.String("campaign_name", campaignName))
		return nil, nil
	}
	if !allowed(c.limiter, PlatformKochava) {
		return nil, fmt.Errorf("kochava: rate limited")
	}
	if destinationURL == "" {
		destinationURL = kochavaDefaultDestination
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformKochava, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformKochava, outcome)
	}()

	payload := map[string]any{
		"app_guid":        c.cfg.AppGUID,
		"network_name":    networkName,
		"campaign_name":   campaignName,
		"tracker_name":    fmt.Sprintf("%s_%s_Tracker", campaignName, networkName),
		"type":            "acquisition",
		"destination_url": destinationURL,
	}

	headers := map[string]string{
		"API-Key": c.cfg.APIKey,
		"Accept":  "application/json",
	}

	var res struct {
		TrackerID string `json:"tracker_id"`
	}
	if err := postJSON(ctx, c.httpClient, c.baseURL, headers, payload, &res, c.logger); err != nil {
		outcome = "failure"
		c.logger.Warn("Kochava tracker request failed, using mock attribution links",
			zap.String("campaign_name", campaignName),
			zap.Error(err))
		return c.mockTracker(campaignName, networkName), nil
	}

	if res.TrackerID == "" {
		res.TrackerID = "KCHV-MOCK-1234"
	}

	urls := &TrackerURLs{
		TrackerID:     res.TrackerID,
		ClickURL:      fmt.Sprintf("https://smart.link/%s?site_id=%s", res.TrackerID, siteID),
		ImpressionURL: fmt.Sprintf("https://imp.kochava.com/track/impression?tracker_id=%s&site_id=%s", res.TrackerID, siteID),
	}

	c.logger.Info("Generated Kochava attribution links",
		zap.String("tracker_id", res.TrackerID),
		zap.String("network_name", networkName))
	return urls, nil
}

// mockTracker builds placeholder attribution links for when the Kochava
// API is unreachable.
func (c *KochavaClient) mockTracker(campaignName, networkName string) *TrackerURLs {
	return &TrackerURLs{
		ClickURL:      fmt.Sprintf("https://smart.link/mock-kchv-%s?camp=%s", strings.ToLower(networkName), campaignName),
		ImpressionURL: fmt.Sprintf("https://imp.kochava.com/track/impression?mock=true&camp=%s", campaignName),
	}
}
