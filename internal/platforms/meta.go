package platforms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	metaAPIVersion = "v19.0"
	metaBaseURL    = "https://graph.facebook.com/" + metaAPIVersion
)

// MetaClient automates campaign creation on the Meta Graph API and fires
// server-side Conversions API events.
type MetaClient struct {
	cfg        config.MetaConfig
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.PlatformLimiter
	logger     *zap.Logger
	metrics    observability.MetricsRegistry
}

// CAPIUserData identifies the converting user. Email is hashed before it
// leaves the process; IP and user agent go through as-is per the CAPI spec.
type CAPIUserData struct {
	Email           string
	ClientIPAddress string
	ClientUserAgent string
}

// NewMetaClient creates a Meta Graph API client.
func NewMetaClient(cfg config.MetaConfig, limiter *ratelimit.PlatformLimiter, logger *zap.Logger, metrics observability.MetricsRegistry) *MetaClient {
	return &MetaClient{
		cfg:        cfg,
		baseURL:    metaBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    limiter,
		logger:     logger,
		metrics:    metrics,
	}
}

// CreateCampaign creates a paused traffic campaign on the ad account and
// returns its ID. Returns ("", nil) when credentials are not configured.
func (c *MetaClient) CreateCampaign(ctx context.Context, name string, budgetUSD float64) (string, error) {
	if !c.cfg.Configured() {
		c.logger.Info("Skipping Meta campaign creation: credentials missing",
			zap.String("campaign_name", name))
		return "", nil
	}
	if !allowed(c.limiter, PlatformMeta) {
		return "", fmt.Errorf("meta: rate limited")
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformMeta, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformMeta, outcome)
	}()

	// Graph API campaign mutations take form data; nested params are
	// JSON-encoded strings. Budget is in cents.
	values := url.Values{}
	values.Set("name", name)
	values.Set("objective", "OUTCOME_TRAFFIC")
	values.Set("status", "PAUSED")
	values.Set("special_ad_categories", "[]")
	values.Set("daily_budget", strconv.Itoa(int(budgetUSD*100)))
	values.Set("access_token", c.cfg.AccessToken)

	var res struct {
		ID string `json:"id"`
	}
	reqURL := fmt.Sprintf("%s/act_%s/campaigns", c.baseURL, c.cfg.AdAccountID)
	if err := postForm(ctx, c.httpClient, reqURL, values, &res, c.logger); err != nil {
		outcome = "failure"
		return "", fmt.Errorf("meta create campaign: %w", err)
	}

	c.logger.Info("Created Meta campaign",
		zap.String("meta_campaign_id", res.ID),
		zap.String("campaign_name", name))
	return res.ID, nil
}

// SendCAPIEvent fires a server-side conversion event. The event ID must
// match the front-end pixel event ID so Meta can deduplicate the pair.
// Returns (0, nil) when credentials are not configured.
func (c *MetaClient) SendCAPIEvent(ctx context.Context, eventName, eventID string, user CAPIUserData, customData map[string]any) (int, error) {
	if c.cfg.AccessToken == "" || c.cfg.PixelID == "" {
		c.logger.Info("Skipping Meta CAPI event: credentials missing",
			zap.String("event_name", eventName))
		return 0, nil
	}
	if !allowed(c.limiter, PlatformMeta) {
		return 0, fmt.Errorf("meta: rate limited")
	}

	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.RecordPlatformLatency(PlatformMeta, time.Since(start))
		c.metrics.IncrementPlatformRequests(PlatformMeta, outcome)
	}()

	userData := map[string]any{}
	if user.Email != "" {
		userData["em"] = []string{hashEmail(user.Email)}
	}
	if user.ClientIPAddress != "" {
		userData["client_ip_address"] = user.ClientIPAddress
	}
	if user.ClientUserAgent != "" {
		userData["client_user_agent"] = user.ClientUserAgent
	}

	event := map[string]any{
		"event_name":    eventName,
		"event_time":    time.Now().Unix(),
		"action_source": "website",
		"event_id":      eventID,
		"user_data":     userData,
	}
	if customData != nil {
		event["custom_data"] = customData
	}

	payload := map[string]any{
		"data":         []map[string]any{event},
		"access_token": c.cfg.AccessToken,
	}

	var res struct {
		EventsReceived int `json:"events_received"`
	}
	reqURL := fmt.Sprintf("%s/%s/events", c.baseURL, c.cfg.PixelID)
	if err := postJSON(ctx, c.httpClient, reqURL, nil, payload, &res, c.logger); err != nil {
		outcome = "failure"
		return 0, fmt.Errorf("meta capi event: %w", err)
	}

	c.logger.Info("Fired server-side CAPI event",
		zap.String("event_name", eventName),
		zap.Int("events_received", res.EventsReceived))
	return res.EventsReceived, nil
}

// hashEmail normalizes and SHA-256 hashes an email address the way CAPI
// expects hashed identifiers: trimmed, lowercased, hex digest.
func hashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
