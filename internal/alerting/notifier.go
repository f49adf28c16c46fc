// Package alerting posts operational alerts to Slack and Teams incoming
// webhooks. Without a webhook URL it degrades to console fallback output, so
// a bare checkout still surfaces every alert.
package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
)

// Webhook channels. QA failures route to Teams where the trafficking team
// lives; everything else goes to the Slack ops channel.
const (
	channelSlack = "slack"
	channelTeams = "teams"
)

// Alert kinds, used as dedupe key prefixes and metric labels.
const (
	KindZeroDelivery = "zero_delivery"
	KindSLABreach    = "sla_breach"
	KindPacing       = "pacing_summary"
	KindQAFailure    = "qa_failure"
)

const defaultWebhookTimeout = 5 * time.Second

// Notifier sends formatted alert texts to the configured webhooks.
type Notifier struct {
	cfg     config.AlertingConfig
	client  *http.Client
	dedupe  *Dedupe
	metrics observability.MetricsRegistry
	logger  *zap.Logger
}

// NewNotifier creates a Notifier. dedupe may be nil to disable suppression.
func NewNotifier(cfg config.AlertingConfig, dedupe *Dedupe, metrics observability.MetricsRegistry, logger *zap.Logger) *Notifier {
	timeout := cfg.WebhookTimeout
	if timeout <= 0 {
		timeout = defaultWebhookTimeout
	}
	return &Notifier{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		dedupe:  dedupe,
		metrics: metrics,
		logger:  logger,
	}
}

// SendZeroDeliveryAlert reports active campaigns that served nothing on the
// most recent delivery date. No-op for an empty list.
func (n *Notifier) SendZeroDeliveryAlert(ctx context.Context, campaigns []models.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}
	ids := make([]string, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
	}
	return n.dispatch(ctx, KindZeroDelivery, strings.Join(ids, ","), channelSlack, zeroDeliveryText(campaigns))
}

// SendSLABreachAlert reports tickets past their SLA deadline. No-op for an
// empty list.
func (n *Notifier) SendSLABreachAlert(ctx context.Context, tickets []models.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return n.dispatch(ctx, KindSLABreach, strings.Join(ids, ","), channelSlack, slaBreachText(tickets))
}

// SendPacingAlert posts the weekly pacing summary counts.
func (n *Notifier) SendPacingAlert(ctx context.Context, underpacing, overpacing int) error {
	return n.dispatch(ctx, KindPacing, "weekly", channelSlack, pacingText(underpacing, overpacing))
}

// SendQAFailureAlert reports a ticket's blocking QA verdicts.
func (n *Notifier) SendQAFailureAlert(ctx context.Context, ticket models.Ticket, failures []models.QAResult) error {
	return n.dispatch(ctx, KindQAFailure, ticket.ID, channelTeams, qaFailureText(ticket, failures))
}

// dispatch runs the dedupe gate and delivers the text on the channel.
func (n *Notifier) dispatch(ctx context.Context, kind, subject, channel, text string) error {
	if !n.dedupe.Allow(kind, subject) {
		n.metrics.IncrementAlertsSuppressed()
		return nil
	}
	if err := n.send(ctx, channel, text); err != nil {
		return err
	}
	n.metrics.IncrementAlertsSent(kind, channel)
	return nil
}

// send posts {"text": ...} to the channel's webhook, falling back to console
// output when no URL is configured.
func (n *Notifier) send(ctx context.Context, channel, text string) error {
	url := n.cfg.SlackWebhookURL
	if channel == channelTeams {
		url = n.cfg.TeamsWebhookURL
	}
	if url == "" {
		fmt.Printf("[%s FALLBACK] %s\n", strings.ToUpper(channel), text)
		return nil
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.cfg.WebhookSecret != "" {
		req.Header.Set(SignatureHeader, Sign([]byte(n.cfg.WebhookSecret), body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", channel, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil && n.logger != nil {
			n.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("send %s alert: status %d: %s", channel, resp.StatusCode, string(respBody))
	}
}

func zeroDeliveryText(campaigns []models.Campaign) string {
	var b strings.Builder
	b.WriteString("🚨 *Zero Delivery Alert*\nThe following campaigns had 0 impressions yesterday:\n")
	for _, c := range campaigns {
		platform := c.Platform
		if platform == "" {
			platform = "N/A"
		}
		fmt.Fprintf(&b, "- %s | Platform: %s\n", c.Name, platform)
	}
	return b.String()
}

func slaBreachText(tickets []models.Ticket) string {
	var b strings.Builder
	b.WriteString("⚠️ *SLA Breach Alert*\nThe following tickets missed their SLA deadline:\n")
	for _, t := range tickets {
		urgency := t.Urgency
		if urgency == "" {
			urgency = "N/A"
		}
		assignee := t.Assignee
		if assignee == "" {
			assignee = "Unassigned"
		}
		fmt.Fprintf(&b, "- %s | Priority: %s | Assignee: %s\n", t.ID, urgency, assignee)
	}
	return b.String()
}

func pacingText(underpacing, overpacing int) string {
	return fmt.Sprintf("📊 *Weekly Pacing Summary*\nUnder-pacing Campaigns: %d\nOver-pacing Campaigns: %d\n", underpacing, overpacing)
}

func qaFailureText(ticket models.Ticket, failures []models.QAResult) string {
	assignee := ticket.Assignee
	if assignee == "" {
		assignee = "Unassigned"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🛑 *QA Failed for Ticket %s* (Assignee: %s)\nFailures:\n", ticket.ID, assignee)
	for _, f := range failures {
		fmt.Fprintf(&b, "- %s: %s\n", f.Check, f.Details)
	}
	return b.String()
}
