package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/observability"
)

func main() {
	logger, err := observability.InitLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	var campaignID string
	var dsn string
	var days int
	flag.StringVar(&campaignID, "campaign", "", "campaign ID")
	flag.StringVar(&dsn, "dsn", "", "ClickHouse DSN")
	flag.IntVar(&days, "days", 0, "limit to the most recent N days (0 = full history)")
	flag.Parse()

	if campaignID == "" {
		fmt.Fprintln(os.Stderr, "campaign required")
		os.Exit(1)
	}
	if dsn == "" {
		cfg := config.Load()
		dsn = cfg.ClickHouseDSN
	}

	a, err := analytics.InitClickHouse(dsn, 10, 2, 5*time.Minute, 1*time.Minute, observability.NewNoOpRegistry())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect clickhouse: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	series, err := a.DailySeries(context.Background(), campaignID, days)
	if err != nil {
		fmt.Fprintf(os.Stderr, "query delivery: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(series); err != nil {
		fmt.Fprintf(os.Stderr, "encode delivery: %v\n", err)
		os.Exit(1)
	}
}
