package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/qa"
	"github.com/patrickwarner/openadops/internal/reference"
	"github.com/patrickwarner/openadops/internal/trafficking"
	"go.uber.org/zap"
)

// Ops tool request/response types
type ListTicketsInput struct {
	Stage    string `json:"stage,omitempty"`    // Board stage filter
	Assignee string `json:"assignee,omitempty"` // Assignee name filter
	Limit    int    `json:"limit,omitempty"`    // Max tickets to return
}

type ListTicketsOutput struct {
	Tickets []models.Ticket `json:"tickets"`
	Count   int             `json:"count"`
}

type GetTicketInput struct {
	TicketID string `json:"ticket_id"`
}

type GetTicketOutput struct {
	Ticket   models.Ticket    `json:"ticket"`
	QAChecks []models.QACheck `json:"qa_checks"`
}

type PreviewRouteInput struct {
	RequestType string `json:"request_type"`
	CampaignID  string `json:"campaign_id,omitempty"`
	Platform    string `json:"platform,omitempty"`
}

type PreviewRouteOutput struct {
	RequestType models.RequestType `json:"request_type"`
	Automatable bool               `json:"automatable"`
	Payloads    []models.Payload   `json:"payloads"`
	QAResults   []models.QAResult  `json:"qa_results"`
}

type ClassifyTierInput struct {
	Platform string `json:"platform"`
	Channel  string `json:"channel,omitempty"` // Workflow channel value, e.g. "Digital Audio"
}

type ClassifyTierOutput struct {
	Tier      string   `json:"tier"`
	Desc      string   `json:"desc,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
}

type PacingReportInput struct {
	CampaignID string `json:"campaign_id,omitempty"` // Empty runs the full summary
}

type PacingReportOutput struct {
	Campaign    *forecasting.PacingReport  `json:"campaign,omitempty"`
	Underpacing []forecasting.PacingReport `json:"underpacing,omitempty"`
	Overpacing  []forecasting.PacingReport `json:"overpacing,omitempty"`
}

type ListReferenceInput struct {
	Table string `json:"table,omitempty"` // Empty returns every table
}

type ListReferenceOutput struct {
	Markets     []reference.Market          `json:"markets,omitempty"`
	Brands      []reference.BrandMapping    `json:"brands,omitempty"`
	Channels    []reference.ChannelMapping  `json:"channels,omitempty"`
	TicketTypes []reference.TicketType      `json:"ticket_types,omitempty"`
	Audiences   []reference.AudienceSegment `json:"audiences,omitempty"`
	Tiers       []reference.EVEVersion      `json:"tiers,omitempty"`
}

// OpsServer holds our dependencies
type OpsServer struct {
	store  models.OpsDataStore
	router *trafficking.Engine
	pacer  *forecasting.Engine
	logger *zap.Logger
}

// ListTickets implements the list_tickets tool
func (s *OpsServer) ListTickets(ctx context.Context, req *mcp.CallToolRequest, input ListTicketsInput) (*mcp.CallToolResult, ListTicketsOutput, error) {
	var tickets []models.Ticket
	if input.Stage != "" {
		tickets = s.store.TicketsByStage(input.Stage)
	} else {
		tickets = s.store.GetAllTickets()
	}

	if input.Assignee != "" {
		var filtered []models.Ticket
		for _, t := range tickets {
			if t.Assignee == input.Assignee {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	limit := input.Limit
	if limit <= 0 || limit > 200 {
		limit = 50 // Default page size
	}
	if len(tickets) > limit {
		tickets = tickets[:limit]
	}

	// Ensure we always return a valid array, even if empty
	if tickets == nil {
		tickets = []models.Ticket{}
	}

	s.logger.Info("Listing tickets",
		zap.String("stage", input.Stage),
		zap.String("assignee", input.Assignee),
		zap.Int("count", len(tickets)))

	return nil, ListTicketsOutput{Tickets: tickets, Count: len(tickets)}, nil
}

// GetTicket implements the get_ticket tool
func (s *OpsServer) GetTicket(ctx context.Context, req *mcp.CallToolRequest, input GetTicketInput) (*mcp.CallToolResult, GetTicketOutput, error) {
	t := s.store.GetTicket(input.TicketID)
	if t == nil {
		return nil, GetTicketOutput{}, fmt.Errorf("ticket %s not found", input.TicketID)
	}

	checks := s.store.QAChecksForTicket(input.TicketID)
	if checks == nil {
		checks = []models.QACheck{}
	}

	return nil, GetTicketOutput{Ticket: *t, QAChecks: checks}, nil
}

// PreviewRoute implements the preview_route tool. It routes a synthetic
// ticket and runs QA over the result without touching the store.
func (s *OpsServer) PreviewRoute(ctx context.Context, req *mcp.CallToolRequest, input PreviewRouteInput) (*mcp.CallToolResult, PreviewRouteOutput, error) {
	if input.RequestType == "" {
		return nil, PreviewRouteOutput{}, fmt.Errorf("request_type is required")
	}

	t := models.Ticket{
		RequestType: input.RequestType,
		CampaignID:  input.CampaignID,
		Platform:    input.Platform,
	}

	var campaign *models.Campaign
	if input.CampaignID != "" {
		campaign = s.store.GetCampaign(input.CampaignID)
	}

	payloads, reqType := s.router.Route(t, campaign)
	results := qa.Evaluate(payloads, campaign)
	if payloads == nil {
		payloads = []models.Payload{}
	}

	s.logger.Info("Previewed route",
		zap.String("request_type", input.RequestType),
		zap.String("campaign_id", input.CampaignID),
		zap.Int("payloads", len(payloads)))

	return nil, PreviewRouteOutput{
		RequestType: reqType,
		Automatable: reqType.Automatable(),
		Payloads:    payloads,
		QAResults:   results,
	}, nil
}

// ClassifyTier implements the classify_tier tool
func (s *OpsServer) ClassifyTier(ctx context.Context, req *mcp.CallToolRequest, input ClassifyTierInput) (*mcp.CallToolResult, ClassifyTierOutput, error) {
	if input.Platform == "" {
		return nil, ClassifyTierOutput{}, fmt.Errorf("platform is required")
	}

	mapped := reference.MapChannel(input.Channel)
	tier := trafficking.ClassifyAutomationTier(input.Platform, mapped)

	out := ClassifyTierOutput{Tier: tier}
	for _, v := range reference.EVEVersions {
		if v.Version == tier {
			out.Desc = v.Desc
			out.Platforms = v.Platforms
			break
		}
	}

	return nil, out, nil
}

// PacingReport implements the pacing_report tool
func (s *OpsServer) PacingReport(ctx context.Context, req *mcp.CallToolRequest, input PacingReportInput) (*mcp.CallToolResult, PacingReportOutput, error) {
	if s.pacer == nil {
		return nil, PacingReportOutput{}, fmt.Errorf("pacing unavailable: analytics not connected")
	}

	// Add overall timeout to prevent hanging
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if input.CampaignID != "" {
		report, err := s.pacer.CampaignPacing(ctx, input.CampaignID)
		if err != nil {
			return nil, PacingReportOutput{}, fmt.Errorf("campaign pacing: %w", err)
		}
		return nil, PacingReportOutput{Campaign: &report}, nil
	}

	under, over, err := s.pacer.PacingSummary(ctx)
	if err != nil {
		return nil, PacingReportOutput{}, fmt.Errorf("pacing summary: %w", err)
	}

	s.logger.Info("Pacing summary generated",
		zap.Int("underpacing", len(under)),
		zap.Int("overpacing", len(over)))

	return nil, PacingReportOutput{Underpacing: under, Overpacing: over}, nil
}

// ListReference implements the list_reference tool
func (s *OpsServer) ListReference(ctx context.Context, req *mcp.CallToolRequest, input ListReferenceInput) (*mcp.CallToolResult, ListReferenceOutput, error) {
	out := ListReferenceOutput{}
	switch strings.ToLower(input.Table) {
	case "markets":
		out.Markets = reference.Markets
	case "brands":
		out.Brands = reference.Brands
	case "channels":
		out.Channels = reference.Channels
	case "ticket_types":
		out.TicketTypes = reference.TicketTypes
	case "audiences":
		out.Audiences = reference.Audiences
	case "tiers":
		out.Tiers = reference.EVEVersions
	case "":
		out.Markets = reference.Markets
		out.Brands = reference.Brands
		out.Channels = reference.Channels
		out.TicketTypes = reference.TicketTypes
		out.Audiences = reference.Audiences
		out.Tiers = reference.EVEVersions
	default:
		return nil, ListReferenceOutput{}, fmt.Errorf("unknown reference table %q", input.Table)
	}
	return nil, out, nil
}

func main() {
	// Initialize logger for MCP server - use stderr to avoid stdio conflicts
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	cfg.OutputPaths = []string{"stderr"}      // Force stderr output
	cfg.ErrorOutputPaths = []string{"stderr"} // Force stderr for errors

	// Use same encoder config as observability package for consistency
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.NameKey = "logger"
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.StacktraceKey = "stacktrace"

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Add service name as a permanent field for consistency
	logger = logger.Named("openadops-mcp").With(zap.String("service", "openadops-mcp"))
	// Packages log through zap.L(); point it at the stderr logger so their
	// output never lands on the stdio transport
	zap.ReplaceGlobals(logger)

	logger.Info("Starting OpenAdOps MCP Server")

	// Initialize database connections
	postgresURL := os.Getenv("POSTGRES_DSN")
	if postgresURL == "" {
		logger.Fatal("POSTGRES_DSN environment variable is required")
	}

	pg, err := db.InitPostgres(postgresURL, 10, 5, 30*time.Minute, time.Minute)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pg.Close()
	logger.Info("Connected to PostgreSQL")

	// Initialize ClickHouse connection (for pacing reports)
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	if clickhouseDSN == "" {
		clickhouseDSN = "clickhouse://default:@localhost:9000/default"
	}

	analyticsSvc, err := analytics.InitClickHouse(clickhouseDSN, 25, 10, 30*time.Minute, time.Minute, observability.NewNoOpRegistry())
	if err != nil {
		logger.Warn("Failed to connect to ClickHouse, pacing reports will be unavailable", zap.Error(err))
		analyticsSvc = nil
	} else {
		defer analyticsSvc.Close()
		logger.Info("ClickHouse connected successfully for pacing")
	}

	// Initialize ops data store
	store := models.NewInMemoryOpsDataStore()
	if err := db.Init(pg, store); err != nil {
		logger.Fatal("Failed to load operational data", zap.Error(err))
	}

	defaultPlatform := os.Getenv("DEFAULT_PLATFORM")
	if defaultPlatform == "" {
		defaultPlatform = trafficking.DefaultPlatform
	}
	router := trafficking.NewEngine(defaultPlatform)

	var pacer *forecasting.Engine
	if analyticsSvc != nil {
		pacer = forecasting.NewEngine(analyticsSvc, store, logger)
	}

	// Create our ops tool server
	opsServer := &OpsServer{
		store:  store,
		router: router,
		pacer:  pacer,
		logger: logger,
	}

	// Create MCP server
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "openadops",
		Version: "1.0.0",
	}, nil)

	// Add ops tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_tickets",
		Description: "List trafficking tickets, optionally filtered by board stage or assignee",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"stage": map[string]interface{}{
					"type":        "string",
					"enum":        reference.Stages,
					"description": "Board stage to filter by (optional)",
				},
				"assignee": map[string]interface{}{
					"type":        "string",
					"description": "Assignee name to filter by (optional)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum tickets to return (optional, defaults to 50)",
				},
			},
		},
	}, opsServer.ListTickets)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_ticket",
		Description: "Get one ticket with its full QA check history",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"ticket_id": map[string]interface{}{
					"type":        "string",
					"description": "Ticket ID, e.g. TKT-00042",
				},
			},
			"required": []string{"ticket_id"},
		},
	}, opsServer.GetTicket)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_route",
		Description: "Preview the platform payloads and QA results a request type would produce, without persisting anything",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"request_type": map[string]interface{}{
					"type":        "string",
					"description": "Ticket request type, e.g. \"New Campaign Setup\"",
				},
				"campaign_id": map[string]interface{}{
					"type":        "string",
					"description": "Campaign to route against (optional, routing falls back to defaults when omitted or unknown)",
				},
				"platform": map[string]interface{}{
					"type":        "string",
					"enum":        reference.Platforms,
					"description": "Target platform (optional)",
				},
			},
			"required": []string{"request_type"},
		},
	}, opsServer.PreviewRoute)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "classify_tier",
		Description: "Classify which automation engine tier covers a platform and channel pairing",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"platform": map[string]interface{}{
					"type":        "string",
					"enum":        reference.Platforms,
					"description": "Target platform",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "Workflow channel value, e.g. \"Digital Audio\" (optional)",
				},
			},
			"required": []string{"platform"},
		},
	}, opsServer.ClassifyTier)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "pacing_report",
		Description: "Report campaign delivery pacing: one campaign when campaign_id is given, otherwise all under and overpacing active campaigns",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"campaign_id": map[string]interface{}{
					"type":        "string",
					"description": "Campaign ID to report on (optional, omit for the full summary)",
				},
			},
		},
	}, opsServer.PacingReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reference",
		Description: "List the static reference tables the ops workflow is built on",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"table": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"markets", "brands", "channels", "ticket_types", "audiences", "tiers"},
					"description": "Table to list (optional, omit for all tables)",
				},
			},
		},
	}, opsServer.ListReference)

	// Run the MCP server with logging transport for debugging
	stdioTransport := &mcp.StdioTransport{}

	// Add logging transport to debug MCP communication
	var logBuffer bytes.Buffer
	loggingTransport := &mcp.LoggingTransport{
		Transport: stdioTransport,
		Writer:    &logBuffer,
	}

	logger.Info("MCP Server running via stdio with logging enabled")

	if err := server.Run(context.Background(), loggingTransport); err != nil {
		logger.Fatal("Server error", zap.Error(err), zap.String("mcp_logs", logBuffer.String()))
	}
}
