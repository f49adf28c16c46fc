package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/reference"
)

var (
	campaignCount = flag.Int("campaigns", 60, "number of campaigns")
	ticketCount   = flag.Int("tickets", 120, "number of tickets")
	deliveryDays  = flag.Int("delivery-days", 30, "max days of delivery history per campaign")
	seed          = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	skipReload    = flag.Bool("skip-reload", false, "skip automatic reload after data insertion")
)

func main() {
	flag.Parse()

	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	r := rand.New(rand.NewSource(*seed))

	campaigns := randomCampaigns(r, *campaignCount)
	for _, c := range campaigns {
		if err := pg.InsertCampaign(c); err != nil {
			logger.Fatal("insert campaign", zap.Error(err))
		}
	}

	tickets := randomTickets(r, campaigns, *ticketCount)
	for _, t := range tickets {
		if err := pg.InsertTicket(t); err != nil {
			logger.Fatal("insert ticket", zap.Error(err))
		}
	}

	qaRows := 0
	for _, t := range tickets {
		for _, qc := range randomQAChecks(r, t) {
			if err := pg.InsertQACheck(qc); err != nil {
				logger.Fatal("insert qa check", zap.Error(err))
			}
			qaRows++
		}
	}

	// Delivery history goes to ClickHouse. A missing ClickHouse is not fatal:
	// the Postgres side of the lab still works, pacing reports just come back
	// empty.
	deliveryRows := 0
	ch, err := analytics.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime, observability.NewNoOpRegistry())
	if err != nil {
		logger.Warn("ClickHouse unavailable, skipping delivery history", zap.Error(err))
	} else {
		for _, c := range campaigns {
			for _, ev := range randomDelivery(r, c, *deliveryDays) {
				if err := ch.RecordDelivery(context.Background(), ev); err != nil {
					logger.Fatal("record delivery", zap.Error(err))
				}
				deliveryRows++
			}
		}
		// Close drains the buffered rows.
		if err := ch.Close(); err != nil {
			logger.Error("close clickhouse", zap.Error(err))
		}
	}

	fmt.Printf("fake data inserted: %d campaigns, %d tickets, %d qa checks, %d delivery rows\n",
		len(campaigns), len(tickets), qaRows, deliveryRows)

	if !*skipReload {
		if err := callReloadEndpoint(&cfg); err != nil {
			logger.Error("reload endpoint failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "Warning: failed to reload server data: %v\n", err)
		} else {
			fmt.Println("server data reloaded")
		}
	}
}

// random helpers

var budgetTiers = []float64{25000, 50000, 100000, 250000, 500000, 750000, 1000000}

// deployPlatforms omits Snapchat and Spotify so every generated campaign
// lands on a platform the pipeline knows how to deploy to.
var deployPlatforms = []string{"CM360", "DV360", "Meta", "TikTok", "Amazon DSP", "Yahoo DSP"}

func randomCampaigns(r *rand.Rand, n int) []models.Campaign {
	now := time.Now()
	out := make([]models.Campaign, 0, n)
	for i := 0; i < n; i++ {
		titleIdx := r.Intn(len(reference.Titles))
		title := reference.Titles[titleIdx]
		brand := reference.Brands[r.Intn(len(reference.Brands))]
		market := reference.Markets[r.Intn(len(reference.Markets))]
		channel := reference.Channels[r.Intn(len(reference.Channels))]
		objective := reference.CampaignObjectives[r.Intn(len(reference.CampaignObjectives))]
		audience := reference.Audiences[r.Intn(len(reference.Audiences))]

		budget := budgetTiers[r.Intn(len(budgetTiers))]
		// Flights straddle today so pacing math has live campaigns to report on.
		start := now.AddDate(0, 0, -r.Intn(29))
		end := start.AddDate(0, 0, 7+r.Intn(84))

		c := models.Campaign{
			ID:              fmt.Sprintf("CMP-%04d", i+1),
			Name:            fmt.Sprintf("%s_%s_%s_%s_%s", brand.Code, title, objective, market.Geo, channel.CentralGrid),
			TitleID:         fmt.Sprintf("TTL-%04d", titleIdx+1),
			TitleName:       title,
			Brand:           brand.WorkflowValue,
			BrandCode:       brand.Code,
			Objective:       objective,
			TargetingGeo:    market.Geo,
			Country:         market.Country,
			Language:        market.Language,
			GeoCluster:      market.Cluster,
			Region:          market.Region,
			Channel:         channel.WorkflowValue,
			ChannelMapped:   channel.CentralGrid,
			Platform:        deployPlatforms[r.Intn(len(deployPlatforms))],
			BudgetUSD:       budget,
			StartDate:       start.Format("2006-01-02"),
			EndDate:         end.Format("2006-01-02"),
			Status:          randomStatus(r),
			ImpressionsGoal: int64(budget) * int64(8+r.Intn(8)),
			AudienceTactic:  audience.Tactic,
			AudienceDetail:  audience.Detailed,
		}
		// Most campaigns have a landing page on file; the rest exercise the
		// landing page QA check's failure path.
		if r.Intn(100) < 70 {
			c.LandingPage = landingPageFor(title)
		}
		out = append(out, c)
	}
	return out
}

// randomStatus keeps roughly half the grid live so pacing reports and the
// zero-delivery sweep have campaigns to work with.
func randomStatus(r *rand.Rand) string {
	roll := r.Intn(100)
	switch {
	case roll < 50:
		return models.CampaignActive
	case roll < 60:
		return models.CampaignPaused
	case roll < 80:
		return models.CampaignCompleted
	default:
		return models.CampaignPendingLaunch
	}
}

func randomUrgency(r *rand.Rand) string {
	roll := r.Intn(100)
	switch {
	case roll < 5:
		return models.UrgencyCritical
	case roll < 20:
		return models.UrgencyHigh
	case roll < 70:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func landingPageFor(title string) string {
	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	slug = strings.ReplaceAll(slug, "&", "and")
	return fmt.Sprintf("https://www.disneyplus.com/welcome/%s", slug)
}

func randomTickets(r *rand.Rand, campaigns []models.Campaign, n int) []models.Ticket {
	traffickers := usersInRole(models.RoleTrafficker)
	engineers := usersInRole(models.RoleEngineer)
	pms := usersInRole(models.RoleProjectManager)

	now := time.Now()
	out := make([]models.Ticket, 0, n)
	for i := 0; i < n; i++ {
		tt := reference.TicketTypes[r.Intn(len(reference.TicketTypes))]
		camp := campaigns[r.Intn(len(campaigns))]
		urgency := randomUrgency(r)
		created := now.Add(-time.Duration(r.Intn(25*24)) * time.Hour)

		t := models.Ticket{
			ID:           fmt.Sprintf("TKT-%05d", i+1),
			CampaignID:   camp.ID,
			Title:        fmt.Sprintf("%s - %s %s %s", tt.Type, camp.TitleName, camp.TargetingGeo, camp.ChannelMapped),
			RequestType:  tt.Type,
			RoutedToRole: tt.RoutedTo,
			EVEEligible:  tt.EVEEligible,
			Urgency:      urgency,
			Stage:        reference.Stages[r.Intn(len(reference.Stages))],
			Platform:     camp.Platform,
			TargetingGeo: camp.TargetingGeo,
			Brand:        camp.BrandCode,
			RequestedBy:  reference.Requesters[r.Intn(len(reference.Requesters))],
			CreatedDate:  created,
			DueDate:      reference.DueDateFor(created, tt.Type, urgency),
			SLAHours:     reference.SLAHoursFor(tt.Type, urgency),
		}
		switch tt.RoutedTo {
		case models.RoleEngineer:
			t.Assignee = engineers[r.Intn(len(engineers))]
		case models.RoleProjectManager:
			t.Assignee = pms[r.Intn(len(pms))]
		default:
			// Trafficker queues carry a real unassigned backlog.
			pool := append([]string{"Unassigned"}, traffickers...)
			t.Assignee = pool[r.Intn(len(pool))]
		}
		if t.Assigned() {
			t.AssigneeRole = tt.RoutedTo
		}
		out = append(out, t)
	}
	return out
}

func usersInRole(role string) []string {
	var names []string
	for _, u := range reference.Users {
		if u.Role == role {
			names = append(names, u.Name)
		}
	}
	return names
}

// qaCatalog is the launch QA checklist with the sign-off note a reviewer
// records against each check.
var qaCatalog = []models.QACheck{
	{Check: models.CheckSpecCompliance, Details: "Creative matches size/duration/format spec"},
	{Check: models.CheckTracking, Details: "All tags fire correctly on click and view events"},
	{Check: models.CheckTargeting, Details: "Geo/demo/device/content targeting verified"},
	{Check: models.CheckLandingPage, Details: "Click-through URL resolves and matches IO"},
	{Check: models.CheckFrequencyCap, Details: "Frequency cap set per flight requirements"},
	{Check: models.CheckContentExclusions, Details: "Rating exclusions and genre blocks applied"},
	{Check: models.CheckTaxonomy, Details: "Placement name follows taxonomy convention"},
	{Check: models.CheckFloodlightTags, Details: "Conversion tags configured and firing"},
}

// randomQAChecks fabricates a review history for tickets that have reached QA
// or beyond. Earlier stages have no history yet.
func randomQAChecks(r *rand.Rand, t models.Ticket) []models.QACheck {
	switch t.Stage {
	case models.StageQA, models.StageReadyToLaunch, models.StageLive, models.StageCompleted:
	default:
		return nil
	}

	reviewers := usersInRole(models.RoleTrafficker)
	if len(reviewers) > 5 {
		reviewers = reviewers[:5]
	}

	// Sample 3-8 distinct checks per ticket.
	idx := r.Perm(len(qaCatalog))
	k := 3 + r.Intn(6)
	now := time.Now()

	out := make([]models.QACheck, 0, k)
	for _, j := range idx[:k] {
		u := uuid.New()
		qc := qaCatalog[j]
		qc.ID = fmt.Sprintf("QA-%X", u[:3])
		qc.TicketID = t.ID
		qc.Result = randomQAResult(r)
		qc.CheckedBy = reviewers[r.Intn(len(reviewers))]
		qc.CheckedAt = now.Add(-time.Duration(1+r.Intn(72)) * time.Hour)
		out = append(out, qc)
	}
	return out
}

func randomQAResult(r *rand.Rand) models.CheckResult {
	roll := r.Intn(100)
	switch {
	case roll < 60:
		return models.ResultPass
	case roll < 75:
		return models.ResultFail
	default:
		return models.ResultNeedsReview
	}
}

// randomDelivery builds a daily delivery series for one campaign. Paused and
// pending campaigns stay dark so the zero-delivery sweep has targets.
func randomDelivery(r *rand.Rand, c models.Campaign, maxDays int) []analytics.DeliveryEvent {
	if c.Status != models.CampaignActive && c.Status != models.CampaignCompleted {
		return nil
	}
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return nil
	}
	flightDays := int(end.Sub(start).Hours()/24) + 1
	if flightDays < 1 {
		flightDays = 1
	}
	dailyGoal := float64(c.ImpressionsGoal) / float64(flightDays)

	days := maxDays
	if flightDays < days {
		days = flightDays
	}

	now := time.Now()
	out := make([]analytics.DeliveryEvent, 0, days)
	for off := 0; off < days; off++ {
		date := start.AddDate(0, 0, off)
		if date.After(now) {
			break
		}

		// Daily delivery wobbles around goal; the occasional day drops to
		// zero like a real trafficking outage.
		factor := 1.0 + r.NormFloat64()*0.3
		if r.Intn(100) < 5 {
			factor = 0
		}
		imps := int64(dailyGoal * factor)
		if imps < 0 {
			imps = 0
		}
		clicks := int64(float64(imps) * (0.001 + r.Float64()*0.014))
		var vastErrors int64
		if r.Intn(100) < 5 {
			vastErrors = int64(1 + r.Intn(50))
		}

		out = append(out, analytics.DeliveryEvent{
			Timestamp:   date.Add(12 * time.Hour),
			Date:        date.Format("2006-01-02"),
			CampaignID:  c.ID,
			Platform:    c.Platform,
			Impressions: imps,
			Clicks:      clicks,
			SpendUSD:    float64(imps) * (0.005 + r.Float64()*0.02),
			VASTErrors:  vastErrors,
			Viewability: 0.40 + r.Float64()*0.55,
		})
	}
	return out
}

func callReloadEndpoint(cfg *config.Config) error {
	reloadURL := fmt.Sprintf("http://localhost:%s/reload", cfg.Port)
	req, err := http.NewRequest("POST", reloadURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
