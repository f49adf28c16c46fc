package platforms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/macros"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/ratelimit"
	"go.uber.org/zap"
)

const cm360BaseURL = "https://dfareporting.googleapis.com/dfareporting/v4"

// Ad server redirect tag templates. The placement tags CM360 serves carry
// ;-delimited parameters and an [timestamp] cachebuster the publisher side
// fills at render time.
const (
	cm360ClickTagTemplate      = "https://ad.doubleclick.net/ddm/trackclk/N%s.%s/B%s.%s;dc_trk_aid=0;dc_trk_cid=0;dc_lat=;dc_rdid=;tag_for_child_directed_treatment=;tfua=;ltd="
	cm360ImpressionTagTemplate = "https://ad.doubleclick.net/ddm/trackimp/N%s.%s/B%s.%s;dc_trk_aid=0;dc_trk_cid=0;ord=[timestamp];dc_lat=;dc_rdid=;tag_for_child_directed_treatment=;tfua=;ltd=?"
)

// CM360Client automates Campaign Manager 360, the ad server of record. It
// creates campaign shells and placements and generates the 1x1 tracking
// tags that get appended to DSP payloads so CM360 sees the delivery.
type CM360Client struct {
	cfg        config.CM360Config
	baseURL    string
	httpClient *http.Client
	expander   *macros.TagExpander
	limiter    *ratelimit.PlatformLimiter
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// TrackingTags is a placement's click tracker and 1x1 impression pixel,
// still in template form (the impression pixel keeps its [timestamp]
// cachebuster until ExpandTags fills it).
type TrackingTags struct {
	CampaignID      string `json:"campaign_id"`
	PlacementID     string `json:"placement_id"`
	SiteID          string `json:"site_id"`
	ClickTag        string `json:"click_tag"`
	ImpressionPixel string `json:"impression_pixel"`
}

// NewCM360Client creates a CM360 client. A nil expander gets the default
// macro set.
func NewCM360Client(cfg config.CM360Config, expander *macros.TagExpander, limiter *ratelimit.PlatformLimiter, logger *zap.Logger, metrics observability.MetricsRegistry) *CM360Client {
	if expander == nil {
		expander = macros.NewTagExpander(logger)
	}
	return &CM360Client{
		cfg:        cfg,
		baseURL:    cm360BaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		expander:   expander,
		limiter:    limiter,
		logger:     logger,
		metrics:    metrics,
	}
}

// CreateCampaignShell creates a campaign in CM360 and returns its ID.
// Returns ("", nil) when credentials are not configured.
func (c *CM360Client) CreateCampaignShell(ctx context.Context, name, startDate, endDate string) (string, error) {
	if !c.cfg.Configured() {
		c.logger.Info("Skipping CM360 campaign creation: credentials missing",
			zap.String("campaign_name", name))
		return "", nil
	}
	if !allowed(c.limiter, PlatformCM360) {
		return "", fmt.Errorf("cm360: rate limited")
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformCM360, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformCM360, outcome)
	}()

	payload := map[string]any{
		"name":      name,
		"startDate": startDate,
		"endDate":   endDate,
		"accountId": c.cfg.NetworkID,
		"archived":  false,
	}

	var res struct {
		ID string `json:"id"`
	}
	reqURL := fmt.Sprintf("%s/userprofiles/%s/campaigns", c.baseURL, c.cfg.ProfileID)
	if err := postJSON(ctx, c.httpClient, reqURL, c.authHeaders(), payload, &res, c.logger); err != nil {
		outcome = "failure"
		return "", fmt.Errorf("cm360 create campaign: %w", err)
	}

	c.logger.Info("Created CM360 campaign shell",
		zap.String("cm360_campaign_id", res.ID),
		zap.String("campaign_name", name))
	return res.ID, nil
}

// CreatePlacement creates a placement under a CM360 campaign and returns
// the tracking-tag pair for it. Returns (nil, nil) when credentials are
// not configured.
func (c *CM360Client) CreatePlacement(ctx context.Context, campaignID, placementName, siteID string) (*TrackingTags, error) {
	if !c.cfg.Configured() {
		c.logger.Info("Skipping CM360 placement creation: credentials missing",
			zap.String("placement_name", placementName))
		return nil, nil
	}
	if !allowed(c.limiter, PlatformCM360) {
		return nil, fmt.Errorf("cm360: rate limited")
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformCM360, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformCM360, outcome)
	}()

	payload := map[string]any{
		"name":          placementName,
		"campaignId":    campaignID,
		"siteId":        siteID,
		"paymentSource": "PLACEMENT_AGENCY_PAID",
		// Click and impression tag formats
		"tagFormats": []string{"PLACEMENT_TAG_STANDARD", "PLACEMENT_TAG_TRACKING"},
	}

	var res struct {
		ID string `json:"id"`
	}
	reqURL := fmt.Sprintf("%s/userprofiles/%s/placements", c.baseURL, c.cfg.ProfileID)
	if err := postJSON(ctx, c.httpClient, reqURL, c.authHeaders(), payload, &res, c.logger); err != nil {
		outcome = "failure"
		return nil, fmt.Errorf("cm360 create placement: %w", err)
	}

	tags := c.buildTags(campaignID, res.ID, siteID)

	c.logger.Info("Created CM360 placement",
		zap.String("cm360_placement_id", res.ID),
		zap.String("placement_name", placementName))
	return tags, nil
}

// buildTags renders the redirect tag templates for a placement and checks
// them against the registered macro set so template typos surface early.
func (c *CM360Client) buildTags(campaignID, placementID, siteID string) *TrackingTags {
	tags := &TrackingTags{
		CampaignID:      campaignID,
		PlacementID:     placementID,
		SiteID:          siteID,
		ClickTag:        fmt.Sprintf(cm360ClickTagTemplate, c.cfg.NetworkID, siteID, campaignID, placementID),
		ImpressionPixel: fmt.Sprintf(cm360ImpressionTagTemplate, c.cfg.NetworkID, siteID, campaignID, placementID),
	}

	for _, tag := range []string{tags.ClickTag, tags.ImpressionPixel} {
		if unknown := c.expander.ValidateTag(tag); len(unknown) > 0 {
			c.logger.Warn("Tracking tag contains unregistered macros",
				zap.Strings("macros", unknown),
				zap.String("tag", tag))
		}
	}
	return tags
}

// ExpandTags fills the macro placeholders in a tag pair, producing URLs
// that can actually be fired. The stored templates stay untouched.
func (c *CM360Client) ExpandTags(tags TrackingTags, at time.Time) (TrackingTags, error) {
	ectx := &macros.ExpansionContext{
		CampaignID:  tags.CampaignID,
		PlacementID: tags.PlacementID,
		Site:        tags.SiteID,
		NetworkID:   c.cfg.NetworkID,
		Timestamp:   at,
	}

	click, err := c.expander.ExpandTag(tags.ClickTag, ectx)
	if err != nil {
		return tags, fmt.Errorf("expand click tag: %w", err)
	}
	pixel, err := c.expander.ExpandTag(tags.ImpressionPixel, ectx)
	if err != nil {
		return tags, fmt.Errorf("expand impression pixel: %w", err)
	}

	tags.ClickTag = click
	tags.ImpressionPixel = pixel
	return tags, nil
}

func (c *CM360Client) authHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.cfg.OAuthToken,
	}
}
