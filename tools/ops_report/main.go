// Ops Report Tool generates delivery and pacing reports for ad campaigns.
//
// This tool connects to ClickHouse for delivery analytics and to Postgres for
// the campaign grid, then prints a formatted report covering delivery totals,
// pacing against the flight, daily and per-platform breakdowns, and automated
// insights a trafficker would act on.
//
// Usage:
//
//	go run ./tools/ops_report -campaign-id=CMP-0042 -days=30
//
// The tool outputs a formatted report including:
//   - Delivery totals (impressions, clicks, CTR, spend, viewability, VAST errors)
//   - Pacing assessment against the campaign flight
//   - Daily delivery breakdown
//   - Per-platform delivery breakdown
//   - Automated insights and recommendations
//
// Configuration:
//
//	-campaign-id: Required. The campaign ID to generate a report for
//	-days: Optional. Number of days in the daily breakdown (default: 30)
//	-clickhouse-dsn: Optional. ClickHouse connection string
//	-postgres-dsn: Optional. Postgres connection string
//
// Environment Variables:
//
//	CLICKHOUSE_DSN: ClickHouse connection string (overridden by -clickhouse-dsn flag)
//	POSTGRES_DSN: Postgres connection string (overridden by -postgres-dsn flag)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
)

func main() {
	var (
		campaignID = flag.String("campaign-id", "", "Campaign ID to generate report for (e.g. CMP-0042)")
		days       = flag.Int("days", 30, "Number of days in the daily breakdown")
		chDSN      = flag.String("clickhouse-dsn", getEnv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000/default"), "ClickHouse DSN")
		pgDSN      = flag.String("postgres-dsn", getEnv("POSTGRES_DSN", "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable"), "Postgres DSN")
	)
	flag.Parse()

	if *campaignID == "" {
		fmt.Fprintf(os.Stderr, "Error: campaign-id is required\n")
		flag.Usage()
		os.Exit(1)
	}

	svc, err := analytics.InitClickHouse(*chDSN, 10, 5, 30*time.Minute, time.Minute, observability.NewNoOpRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to ClickHouse: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close analytics connection: %v\n", err)
		}
	}()

	pg, err := db.InitPostgres(*pgDSN, 10, 5, 30*time.Minute, time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	campaigns, err := pg.LoadCampaigns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading campaigns: %v\n", err)
		os.Exit(1)
	}
	store := models.NewInMemoryOpsDataStore()
	if err := store.SetCampaigns(campaigns); err != nil {
		fmt.Fprintf(os.Stderr, "Error populating campaigns: %v\n", err)
		os.Exit(1)
	}
	campaign := store.GetCampaign(*campaignID)
	if campaign == nil {
		fmt.Fprintf(os.Stderr, "Error: campaign %s not found\n", *campaignID)
		os.Exit(1)
	}

	ctx := context.Background()
	totals, err := svc.CampaignTotals(ctx, *campaignID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying delivery totals: %v\n", err)
		os.Exit(1)
	}
	series, err := svc.DailySeries(ctx, *campaignID, *days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying daily series: %v\n", err)
		os.Exit(1)
	}
	platforms, err := svc.PlatformTotals(ctx, *campaignID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying platform totals: %v\n", err)
		os.Exit(1)
	}

	pacer := forecasting.NewEngine(svc, store, zap.NewNop())
	pacing, err := pacer.CampaignPacing(ctx, *campaignID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing pacing: %v\n", err)
		os.Exit(1)
	}

	printOpsReport(*campaign, totals, pacing, series, platforms, *days)
}

// printOpsReport outputs a formatted campaign delivery report to stdout: the
// campaign header, delivery totals, pacing assessment, daily and platform
// breakdowns, and automated insights.
func printOpsReport(c models.Campaign, totals analytics.DeliveryTotals, pacing forecasting.PacingReport, series []analytics.DailyDelivery, platforms []analytics.PlatformDelivery, days int) {
	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
	fmt.Printf("                              CAMPAIGN DELIVERY REPORT                             \n")
	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
	fmt.Printf("Campaign:      %s  %s\n", c.ID, c.Name)
	fmt.Printf("Flight:        %s to %s (%s)\n", c.StartDate, c.EndDate, c.Status)
	fmt.Printf("Platform:      %s\n", c.Platform)
	fmt.Printf("Budget:        $%.2f    Goal: %s impressions\n", c.BudgetUSD, formatNumber(c.ImpressionsGoal))
	fmt.Printf("Report Period: %d days (ending %s)\n", days, time.Now().Format("2006-01-02"))
	fmt.Printf("Generated:     %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	// Delivery Totals
	fmt.Printf("📊 DELIVERY TOTALS\n")
	fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
	fmt.Printf("Total Impressions:  %s\n", formatNumber(totals.Impressions))
	fmt.Printf("Total Clicks:       %s\n", formatNumber(totals.Clicks))
	fmt.Printf("Total Spend:        $%.2f\n", totals.SpendUSD)
	fmt.Printf("Overall CTR:        %.2f%%\n", totals.CTR()*100)
	fmt.Printf("Average CPM:        $%.2f\n", totals.CPM())
	fmt.Printf("Avg Viewability:    %.1f%%\n", totals.AvgViewability*100)
	fmt.Printf("VAST Error Rate:    %.2f%%\n", totals.VASTErrorRate()*100)
	fmt.Printf("Days With Delivery: %d\n\n", totals.Days)

	// Pacing
	fmt.Printf("🎯 PACING\n")
	fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
	fmt.Printf("Status:             %s\n", pacing.Status)
	fmt.Printf("Delivered:          %.1f%% of goal\n", pacing.DeliveryPct)
	fmt.Printf("Flight Elapsed:     %.1f%%\n", pacing.TimeElapsedPct)
	if pacing.PacingRatio > 0 {
		fmt.Printf("Pacing Ratio:       %.2f\n", pacing.PacingRatio)
	}
	fmt.Printf("Budget Utilized:    %.1f%%\n", pacing.BudgetUtilizationPct)
	if pacing.ForecastedImpressions > 0 {
		fmt.Printf("Flight-End Forecast: %s impressions\n", formatNumber(pacing.ForecastedImpressions))
	}
	fmt.Printf("\n")

	// Daily Breakdown
	if len(series) > 0 {
		fmt.Printf("📅 DAILY BREAKDOWN\n")
		fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
		fmt.Printf("Date        | Impressions | Clicks |   CTR   |   Spend   | Viewability\n")
		fmt.Printf("------------|-------------|--------|---------|-----------|------------\n")
		for _, d := range series {
			fmt.Printf("%-10s | %11s | %6s | %6.2f%% | $%8.2f | %10.1f%%\n",
				d.Date.Format("2006-01-02"),
				formatNumber(d.Impressions),
				formatNumber(d.Clicks),
				ctrPct(d.Clicks, d.Impressions),
				d.SpendUSD,
				d.Viewability*100,
			)
		}
		fmt.Printf("\n")
	}

	// Platform Breakdown
	if len(platforms) > 0 {
		fmt.Printf("📋 PLATFORM BREAKDOWN\n")
		fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")
		fmt.Printf("Platform     | Impressions | Clicks |   CTR   |   Spend   \n")
		fmt.Printf("-------------|-------------|--------|---------|----------\n")
		for _, p := range platforms {
			fmt.Printf("%-12s | %11s | %6s | %6.2f%% | $%8.2f\n",
				p.Platform,
				formatNumber(p.Impressions),
				formatNumber(p.Clicks),
				ctrPct(p.Clicks, p.Impressions),
				p.SpendUSD,
			)
		}
		fmt.Printf("\n")
	}

	// Insights
	fmt.Printf("💡 INSIGHTS & RECOMMENDATIONS\n")
	fmt.Printf("───────────────────────────────────────────────────────────────────────────────────\n")

	switch pacing.Status {
	case forecasting.PacingUnder:
		fmt.Printf("⚠️  Under-pacing (ratio %.2f) - consider raising bids or loosening frequency caps\n", pacing.PacingRatio)
	case forecasting.PacingOver:
		fmt.Printf("⚠️  Over-pacing (ratio %.2f) - delivery will exhaust the goal before flight end\n", pacing.PacingRatio)
	case forecasting.PacingOnTrack:
		fmt.Printf("✅ Pacing on track (ratio %.2f)\n", pacing.PacingRatio)
	case forecasting.PacingNotStarted:
		fmt.Printf("ℹ️  Flight has not started yet\n")
	case forecasting.PacingNA:
		fmt.Printf("ℹ️  Campaign is not Active - pacing not assessed\n")
	}

	ctr := totals.CTR() * 100
	if totals.Impressions > 0 {
		if ctr == 0 {
			fmt.Printf("⚠️  No clicks recorded - verify click trackers are firing\n")
		} else if ctr < 0.2 {
			fmt.Printf("⚠️  Low CTR (%.2f%%) - consider reviewing creative rotation or audiences\n", ctr)
		} else if ctr > 1.0 {
			fmt.Printf("✅ Strong CTR (%.2f%%) for programmatic delivery\n", ctr)
		}
	}

	if totals.Days > 0 && totals.AvgViewability > 0 && totals.AvgViewability < 0.5 {
		fmt.Printf("⚠️  Viewability below 50%% - review placements and inventory quality\n")
	}
	if totals.VASTErrorRate() > 0.01 {
		fmt.Printf("⚠️  VAST error rate %.2f%% - check video creative encoding and tag setup\n", totals.VASTErrorRate()*100)
	}

	zeroDays := 0
	for _, d := range series {
		if d.Impressions == 0 {
			zeroDays++
		}
	}
	if zeroDays > 0 {
		fmt.Printf("🔍 %d zero-delivery day(s) in window - check for platform pauses or trafficking gaps\n", zeroDays)
	}

	if pacing.BudgetUtilizationPct > pacing.DeliveryPct+15 {
		fmt.Printf("⚠️  Spend is running ahead of delivery - effective CPM is above plan\n")
	}

	fmt.Printf("═══════════════════════════════════════════════════════════════════════════════════\n")
}

// ctrPct computes a click-through rate as a percentage, 0 when no impressions.
func ctrPct(clicks, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	return float64(clicks) / float64(impressions) * 100
}

// formatNumber formats large integers with comma separators for improved readability.
// Example: 1234567 becomes "1,234,567"
func formatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	// Add commas for thousands separators
	result := ""
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(digit)
	}
	return result
}

// getEnv retrieves an environment variable value or returns a default value if not set.
// Used for configuration with fallback defaults.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
