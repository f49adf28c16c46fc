// Package orchestrator ties the automation engine together: it drains the
// ticket work queue, routes each ticket into platform payloads, runs the QA
// battery over the result, persists the verdicts, and advances tickets on
// the stage board. It also owns the scheduled delivery health check and the
// auto-assignment sweep. External collaborators (alert webhooks, platform
// APIs, Redis, analytics) are all fire-and-log: their failures degrade a run
// but never abort it.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/platforms"
	"github.com/patrickwarner/openadops/internal/qa"
	"github.com/patrickwarner/openadops/internal/trafficking"
)

const (
	// automationActor is stamped as CheckedBy on every QA row the pipeline
	// writes, distinguishing automated verdicts from manual ones.
	automationActor = "eve-automation"

	// qaFailureNotes is written to a ticket the pipeline holds in QA.
	qaFailureNotes = "Automated QA identified issues preventing launch."
)

// Live deploy budgets used when the insertion order payload carries none.
const (
	defaultMetaBudgetUSD   = 1000
	defaultTikTokBudgetUSD = 500
)

// nowFn is swappable in tests.
var nowFn = time.Now

// Alerter publishes operational alerts. *alerting.Notifier satisfies it.
type Alerter interface {
	SendQAFailureAlert(ctx context.Context, ticket models.Ticket, failures []models.QAResult) error
	SendSLABreachAlert(ctx context.Context, tickets []models.Ticket) error
	SendZeroDeliveryAlert(ctx context.Context, campaigns []models.Campaign) error
	SendPacingAlert(ctx context.Context, underpacing, overpacing int) error
}

// RecordWriter mirrors ticket mutations and QA rows to the system of record.
// *db.Postgres satisfies it. The in-memory store is always written first;
// record-store failures are logged and the run continues.
type RecordWriter interface {
	UpdateTicketStage(id, stage, notes string) error
	UpdateTicketAssignee(id, assignee, role string) error
	InsertQACheck(q models.QACheck) error
}

// CampaignDeployer creates a live campaign on an external buying platform.
// Unconfigured platform clients return an empty ID and nil error, which the
// pipeline treats as "deploy skipped".
type CampaignDeployer interface {
	CreateCampaign(ctx context.Context, name string, budgetUSD float64) (string, error)
}

// AdServerClient prepares the ad server side of a new campaign: the shell
// and the taxonomy-named placement the DSP buy delivers against.
// *platforms.CM360Client satisfies it.
type AdServerClient interface {
	CreateCampaignShell(ctx context.Context, name, startDate, endDate string) (string, error)
	CreatePlacement(ctx context.Context, campaignID, placementName, siteID string) (*platforms.TrackingTags, error)
}

// TrackerCreator registers attribution links for a deployed campaign.
// *platforms.KochavaClient satisfies it.
type TrackerCreator interface {
	CreateTracker(ctx context.Context, campaignName, networkName, siteID, destinationURL string) (*platforms.TrackerURLs, error)
}

// Orchestrator runs the pipeline, health check, and assignment sweeps.
// Store, Router, Metrics, and Logger are required (New fills safe defaults
// for the last two); every other collaborator may be left nil, in which
// case the step that needs it is skipped.
type Orchestrator struct {
	Store    models.OpsDataStore
	Router   *trafficking.Engine
	Records  RecordWriter
	Alerts   Alerter
	Meta     CampaignDeployer
	TikTok   CampaignDeployer
	AdServer AdServerClient
	Trackers TrackerCreator

	Analytics analytics.AnalyticsService
	Pacer     *forecasting.Engine
	Redis     *db.RedisStore

	Metrics observability.MetricsRegistry
	Logger  *zap.Logger
}

// New returns an orchestrator over the given store and router. Optional
// collaborators are assigned on the returned struct.
func New(store models.OpsDataStore, router *trafficking.Engine, metrics observability.MetricsRegistry, logger *zap.Logger) *Orchestrator {
	if metrics == nil {
		metrics = observability.NewNoOpRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Store:   store,
		Router:  router,
		Metrics: metrics,
		Logger:  logger,
	}
}

// PipelineStats summarizes one pipeline run.
type PipelineStats struct {
	Processed     int       `json:"processed"`
	ReadyToLaunch int       `json:"ready_to_launch"`
	QAFailed      int       `json:"qa_failed"`
	Deployed      int       `json:"deployed"`
	SLABreaches   int       `json:"sla_breaches"`
	StartedAt     time.Time `json:"started_at"`
	DurationMS    int64     `json:"duration_ms"`
}

// RunPipeline drains the work queue once: every assigned ticket in the
// Trafficking stage is routed, QA'd, persisted, and moved to QA or Ready to
// Launch. The run ends with an SLA breach sweep. Cancellation stops between
// tickets; work already done stays done.
func (o *Orchestrator) RunPipeline(ctx context.Context) (PipelineStats, error) {
	began := time.Now()
	stats := PipelineStats{StartedAt: nowFn()}
	outcome := "success"
	defer func() {
		o.Metrics.RecordPipelineDuration(time.Since(began))
		o.Metrics.IncrementPipelineRuns(outcome)
	}()

	pending := o.Store.PendingTickets()
	o.Logger.Info("pipeline run started", zap.Int("pending_tickets", len(pending)))

	for _, t := range pending {
		select {
		case <-ctx.Done():
			outcome = "canceled"
			stats.DurationMS = time.Since(began).Milliseconds()
			return stats, ctx.Err()
		default:
		}
		o.processTicket(ctx, t, &stats)
		stats.Processed++
	}

	stats.SLABreaches = o.sweepSLA(ctx)

	if o.Redis != nil {
		if err := o.Redis.SetLastPipelineRun(nowFn()); err != nil {
			o.Logger.Warn("last pipeline run not recorded", zap.Error(err))
		}
	}

	stats.DurationMS = time.Since(began).Milliseconds()
	o.Logger.Info("pipeline run complete",
		zap.Int("processed", stats.Processed),
		zap.Int("ready_to_launch", stats.ReadyToLaunch),
		zap.Int("qa_failed", stats.QAFailed),
		zap.Int("deployed", stats.Deployed),
		zap.Int64("duration_ms", stats.DurationMS))
	return stats, nil
}

// processTicket runs one ticket through route, QA, persist, and stage move.
// Tickets the router cannot automate produce no payloads, which QA turns
// into a single blocking failure, so they land in the QA stage for a human
// rather than silently staying put.
func (o *Orchestrator) processTicket(ctx context.Context, t models.Ticket, stats *PipelineStats) {
	log := o.Logger.With(zap.String("ticket_id", t.ID), zap.String("request_type", t.RequestType))

	campaign := o.Store.GetCampaign(t.CampaignID)
	payloads, reqType := o.Router.Route(t, campaign)
	for _, p := range payloads {
		o.Metrics.IncrementPayloadsBuilt(string(p.Action))
	}
	if reqType == models.RequestUnsupported {
		log.Warn("no automation available for request type")
	}

	results := qa.Evaluate(payloads, campaign)
	o.persistQAResults(t, results, log)

	var failures []models.QAResult
	for _, r := range results {
		if r.Result.Blocking() {
			failures = append(failures, r)
		}
	}

	if len(failures) > 0 {
		o.moveStage(t.ID, models.StageQA, qaFailureNotes, log)
		if o.Alerts != nil {
			if err := o.Alerts.SendQAFailureAlert(ctx, t, failures); err != nil {
				log.Warn("qa failure alert not sent", zap.Error(err))
			}
		}
		o.Metrics.IncrementTicketsProcessed("qa_failed")
		stats.QAFailed++
		log.Info("ticket held in QA", zap.Int("failed_checks", len(failures)))
	} else {
		notes := o.deployLive(ctx, t, campaign, payloads, log)
		if notes != "" {
			stats.Deployed++
		}
		o.moveStage(t.ID, models.StageReadyToLaunch, notes, log)
		o.Metrics.IncrementTicketsProcessed("ready_to_launch")
		stats.ReadyToLaunch++
		log.Info("ticket ready to launch", zap.Int("payloads", len(payloads)))
	}

	if o.Redis != nil {
		if err := o.Redis.IncrementAutomationCount(string(reqType)); err != nil {
			log.Debug("automation counter not updated", zap.Error(err))
		}
	}
}

// deployLive pushes a new campaign to the buying platform for clean tickets
// that request one on Meta or TikTok. The ad server shell and placement are
// prepared first, and attribution links are registered after a successful
// deploy; neither gates the DSP push. Returns the stage notes describing
// the deploy, or "" when no deploy applies or the platform declined.
func (o *Orchestrator) deployLive(ctx context.Context, t models.Ticket, c *models.Campaign, payloads []models.Payload, log *zap.Logger) string {
	if !strings.Contains(t.RequestType, "New Campaign") {
		return ""
	}

	o.prepareAdServer(ctx, c, payloads, log)

	var deployer CampaignDeployer
	switch t.Platform {
	case "Meta":
		deployer = o.Meta
	case "TikTok":
		deployer = o.TikTok
	}
	if deployer == nil {
		return ""
	}

	name := campaignDisplayName(c)
	budget := insertionOrderBudget(payloads)
	if budget <= 0 {
		if t.Platform == "Meta" {
			budget = defaultMetaBudgetUSD
		} else {
			budget = defaultTikTokBudgetUSD
		}
	}

	id, err := deployer.CreateCampaign(ctx, name, budget)
	if err != nil {
		log.Warn("live deploy failed", zap.String("platform", t.Platform), zap.Error(err))
		return ""
	}
	if id == "" {
		return ""
	}

	if o.Trackers != nil {
		var landing string
		if c != nil {
			landing = c.LandingPage
		}
		if _, err := o.Trackers.CreateTracker(ctx, name, t.Platform, id, landing); err != nil {
			log.Warn("attribution tracker not created", zap.Error(err))
		}
	}

	log.Info("campaign deployed",
		zap.String("platform", t.Platform),
		zap.String("platform_campaign_id", id),
		zap.Float64("budget_usd", budget))
	return fmt.Sprintf("Deployed dynamically to %s API - ID: %s", t.Platform, id)
}

// prepareAdServer creates the ad server campaign shell and the taxonomy
// placement for a new campaign. An unconfigured client returns an empty
// shell ID and the placement step is skipped with it.
func (o *Orchestrator) prepareAdServer(ctx context.Context, c *models.Campaign, payloads []models.Payload, log *zap.Logger) {
	if o.AdServer == nil {
		return
	}
	var startDate, endDate string
	if c != nil {
		startDate = c.StartDate
		endDate = c.EndDate
	}
	shellID, err := o.AdServer.CreateCampaignShell(ctx, campaignDisplayName(c), startDate, endDate)
	if err != nil {
		log.Warn("ad server shell not created", zap.Error(err))
		return
	}
	if shellID == "" {
		return
	}
	placementName, site := placementParams(payloads)
	if placementName == "" {
		return
	}
	if _, err := o.AdServer.CreatePlacement(ctx, shellID, placementName, site); err != nil {
		log.Warn("ad server placement not created", zap.Error(err))
	}
}

// campaignDisplayName returns the campaign's booked name, or a placeholder
// when the ticket has no resolvable campaign.
func campaignDisplayName(c *models.Campaign) string {
	if c != nil && c.Name != "" {
		return c.Name
	}
	return "UNKNOWN"
}

// placementParams pulls the taxonomy name and site from the placement
// payload, or empty strings when the sequence has none.
func placementParams(payloads []models.Payload) (name, site string) {
	for _, p := range payloads {
		if p.Action != models.ActionCreatePlacement {
			continue
		}
		if v, ok := p.Params["placement_name"].(string); ok {
			name = v
		}
		if v, ok := p.Params["site"].(string); ok {
			site = v
		}
		return name, site
	}
	return "", ""
}

// insertionOrderBudget pulls the budget from the insertion order payload,
// or 0 when the sequence has none.
func insertionOrderBudget(payloads []models.Payload) float64 {
	for _, p := range payloads {
		if p.Action != models.ActionCreateInsertionOrder {
			continue
		}
		if b, ok := p.Params["budget"].(float64); ok {
			return b
		}
	}
	return 0
}

// persistQAResults writes one check row per verdict to the in-memory store
// and mirrors each row to the system of record. The in-memory log is the
// read path, so it is written first; record-store failures are per-row and
// logged.
func (o *Orchestrator) persistQAResults(t models.Ticket, results []models.QAResult, log *zap.Logger) {
	now := nowFn()
	rows := make([]models.QACheck, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.QACheck{
			ID:        newQACheckID(),
			TicketID:  t.ID,
			Check:     r.Check,
			Result:    r.Result,
			Details:   r.Details,
			CheckedBy: automationActor,
			CheckedAt: now,
		})
		o.Metrics.IncrementQACheck(string(r.Check), string(r.Result))
	}

	if err := o.Store.AppendQAChecks(rows); err != nil {
		log.Warn("qa rows not appended to store", zap.Error(err))
	}
	if o.Records != nil {
		for _, row := range rows {
			if err := o.Records.InsertQACheck(row); err != nil {
				log.Warn("qa row not persisted", zap.String("qa_id", row.ID), zap.Error(err))
			}
		}
	}
}

// moveStage advances the ticket on the board and mirrors the change to the
// system of record.
func (o *Orchestrator) moveStage(id, stage, notes string, log *zap.Logger) {
	if err := o.Store.UpdateTicketStage(id, stage, notes); err != nil {
		log.Warn("stage not updated in store", zap.String("stage", stage), zap.Error(err))
		return
	}
	o.Metrics.IncrementStageTransition(stage)
	if o.Records != nil {
		if err := o.Records.UpdateTicketStage(id, stage, notes); err != nil {
			log.Warn("stage not persisted", zap.String("stage", stage), zap.Error(err))
		}
	}
}

// sweepSLA counts tickets past their SLA deadline, updates the gauge, and
// raises one breach alert covering all of them.
func (o *Orchestrator) sweepSLA(ctx context.Context) int {
	breached := o.Store.BreachedTickets(nowFn())
	o.Metrics.SetSLABreaches(float64(len(breached)))
	if len(breached) == 0 {
		return 0
	}
	o.Logger.Warn("sla breaches detected", zap.Int("count", len(breached)))
	if o.Alerts != nil {
		if err := o.Alerts.SendSLABreachAlert(ctx, breached); err != nil {
			o.Logger.Warn("sla breach alert not sent", zap.Error(err))
		}
	}
	return len(breached)
}

// newQACheckID mints a QA row ID like "QA-3F9A1C", the format used across
// the ticket board exports.
func newQACheckID() string {
	u := uuid.New()
	return fmt.Sprintf("QA-%X", u[:3])
}
