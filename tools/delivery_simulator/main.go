package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	server          string
	campaignCSV     string
	totalEvents     int
	conc            int
	duration        time.Duration
	rate            float64
	vastErrorRate   float64
	dailyFallback   float64
	backfillDays    int
	stats           bool
	debug           bool
	label           string
	surgeInterval   time.Duration
	surgeDuration   time.Duration
	surgeMultiplier float64
	jitter          float64
)

var logger *zap.Logger

// HTTP client with proper resource limits
var httpClient *http.Client

// feedPlatforms stands in for the reporting platform when campaigns are given
// on the command line and we have no grid row to read it from.
var feedPlatforms = []string{"CM360", "DV360", "Meta", "TikTok", "Amazon DSP", "Yahoo DSP"}

const statsInterval = 5 * time.Second

var (
	countSent        uint64
	countAccepted    uint64
	countRejected    uint64
	countErrors      uint64
	countImpressions uint64
)

// target is one campaign the simulator reports delivery for.
type target struct {
	ID        string
	Platform  string
	DailyGoal float64
}

func main() {
	flag.StringVar(&server, "server", "http://localhost:8790", "ops server base URL")
	flag.StringVar(&campaignCSV, "campaigns", "", "comma-separated campaign IDs (defaults to active campaigns from Postgres)")
	flag.IntVar(&totalEvents, "events", 1000, "total delivery events to send")
	flag.IntVar(&conc, "concurrency", 8, "concurrent sends")
	flag.DurationVar(&duration, "duration", 0, "how long to stream events (0 to disable)")
	flag.Float64Var(&rate, "rate", 0, "events per second (0 for unlimited)")
	flag.Float64Var(&vastErrorRate, "vast-error-rate", 0.05, "probability a delivery row carries VAST errors")
	flag.Float64Var(&dailyFallback, "daily-impressions", 500000, "assumed daily impression goal for campaigns given via -campaigns")
	flag.IntVar(&backfillDays, "backfill", 0, "spread event dates over the past N days (0 = today only)")
	flag.BoolVar(&stats, "stats", false, "print aggregated stats periodically")
	flag.BoolVar(&debug, "debug", false, "enable verbose debug logs")
	flag.StringVar(&label, "label", "", "label to identify this run")
	flag.DurationVar(&surgeInterval, "surge-interval", 0, "interval between delivery surges (0 to disable)")
	flag.DurationVar(&surgeDuration, "surge-duration", 0, "duration of each surge window")
	flag.Float64Var(&surgeMultiplier, "surge-multiplier", 2.0, "event rate multiplier during surge period")
	flag.Float64Var(&jitter, "jitter", 0.0, "random jitter factor for event spacing")
	flag.Parse()

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	var err error
	logger, err = observability.InitLoggerWithLevel(level, "delivery-simulator")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Initialize HTTP client with proper resource limits
	httpClient = &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).Dial,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			MaxConnsPerHost:       50,
			IdleConnTimeout:       90 * time.Second,
			DisableKeepAlives:     false,
		},
	}

	if label == "" {
		label = time.Now().Format(time.RFC3339)
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	targets, err := buildTargets(r)
	if err != nil {
		logger.Fatal("resolve campaigns", zap.Error(err))
	}
	if len(targets) == 0 {
		logger.Fatal("no campaigns to report delivery for")
	}
	logger.Info("streaming delivery", zap.Int("campaigns", len(targets)), zap.String("server", server))

	var wg sync.WaitGroup
	sem := make(chan struct{}, conc)
	done := make(chan struct{})

	var baseInterval time.Duration
	if rate > 0 {
		baseInterval = time.Duration(float64(time.Second) / rate)
	} else if duration > 0 && totalEvents > 0 {
		baseInterval = duration / time.Duration(totalEvents)
	}

	start := time.Now()
	next := start

	if stats {
		go func() {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					printStats()
				case <-done:
					printStats()
					return
				}
			}
		}()
	}
	for i := 0; ; i++ {
		if totalEvents > 0 && i >= totalEvents {
			break
		}
		if duration > 0 && time.Since(start) >= duration {
			break
		}
		if baseInterval > 0 {
			effective := baseInterval
			if surgeInterval > 0 && surgeDuration > 0 && surgeMultiplier > 0 {
				elapsed := time.Since(start)
				if elapsed%surgeInterval < surgeDuration {
					effective = time.Duration(float64(effective) / surgeMultiplier)
				}
			}
			if jitter > 0 {
				jf := 1 + (r.Float64()*2-1)*jitter
				if jf < 0.1 {
					jf = 0.1
				}
				effective = time.Duration(float64(effective) * jf)
			}
			now := time.Now()
			if now.Before(next) {
				time.Sleep(next.Sub(now))
			}
			next = next.Add(effective)
		}

		tgt := targets[r.Intn(len(targets))]
		ev := randomEvent(r, tgt)

		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			atomic.AddUint64(&countSent, 1)

			blob, err := json.Marshal(ev)
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("marshal error", zap.Error(err))
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			req, err := http.NewRequestWithContext(ctx, "POST", strings.TrimRight(server, "/")+"/api/events/delivery", bytes.NewReader(blob))
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("request build error", zap.Error(err))
				return
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := httpClient.Do(req)
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("ingest request error", zap.Error(err))
				return
			}
			bodyBytes, err := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if err != nil {
				atomic.AddUint64(&countErrors, 1)
				logger.Error("read body error", zap.Error(err))
				return
			}
			switch {
			case resp.StatusCode == http.StatusAccepted:
				atomic.AddUint64(&countAccepted, 1)
				atomic.AddUint64(&countImpressions, uint64(ev.Impressions))
			case resp.StatusCode >= 400 && resp.StatusCode < 500:
				atomic.AddUint64(&countRejected, 1)
				logger.Error("event rejected", zap.Int("status", resp.StatusCode), zap.String("body", strings.TrimSpace(string(bodyBytes))))
			default:
				atomic.AddUint64(&countErrors, 1)
				logger.Error("unexpected status", zap.Int("status", resp.StatusCode), zap.String("body", strings.TrimSpace(string(bodyBytes))))
			}
			logger.Debug("event", zap.String("campaign_id", ev.CampaignID), zap.String("platform", ev.Platform), zap.Int64("impressions", ev.Impressions), zap.String("date", ev.Date))
		}()
	}
	wg.Wait()
	close(done)
	if !stats {
		printStats()
	}
}

// buildTargets resolves which campaigns to report for. An explicit -campaigns
// list needs no database; otherwise active campaigns come from Postgres with
// their real daily goals.
func buildTargets(r *rand.Rand) ([]target, error) {
	if campaignCSV != "" {
		ids := strings.Split(campaignCSV, ",")
		targets := make([]target, 0, len(ids))
		for _, id := range ids {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			targets = append(targets, target{
				ID:        id,
				Platform:  feedPlatforms[r.Intn(len(feedPlatforms))],
				DailyGoal: dailyFallback,
			})
		}
		return targets, nil
	}

	cfg := config.Load()
	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	campaigns, err := pg.LoadCampaigns()
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}

	var targets []target
	for _, c := range campaigns {
		if c.Status != models.CampaignActive {
			continue
		}
		targets = append(targets, target{
			ID:        c.ID,
			Platform:  c.Platform,
			DailyGoal: dailyGoalFor(c),
		})
	}
	return targets, nil
}

// dailyGoalFor derives the per-day impression goal from the campaign's flight.
func dailyGoalFor(c models.Campaign) float64 {
	if c.ImpressionsGoal <= 0 {
		return dailyFallback
	}
	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return dailyFallback
	}
	end, err := time.Parse("2006-01-02", c.EndDate)
	if err != nil {
		return dailyFallback
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return float64(c.ImpressionsGoal) / float64(days)
}

// randomEvent fabricates one reporting-feed row: roughly an hourly slice of
// the campaign's daily goal with realistic click, spend, and quality numbers.
func randomEvent(r *rand.Rand, tgt target) analytics.DeliveryEvent {
	factor := 1.0 + r.NormFloat64()*0.3
	if factor < 0 {
		factor = 0
	}
	imps := int64(tgt.DailyGoal / 24 * factor)
	if imps < 0 {
		imps = 0
	}
	clicks := int64(float64(imps) * (0.001 + r.Float64()*0.014))
	var vastErrors int64
	if r.Float64() < vastErrorRate {
		vastErrors = int64(1 + r.Intn(50))
	}

	date := time.Now()
	if backfillDays > 0 {
		date = date.AddDate(0, 0, -r.Intn(backfillDays+1))
	}

	return analytics.DeliveryEvent{
		Date:        date.Format("2006-01-02"),
		CampaignID:  tgt.ID,
		Platform:    tgt.Platform,
		Impressions: imps,
		Clicks:      clicks,
		SpendUSD:    float64(imps) * (0.005 + r.Float64()*0.02),
		VASTErrors:  vastErrors,
		Viewability: 0.40 + r.Float64()*0.55,
	}
}

func printStats() {
	sent := atomic.LoadUint64(&countSent)
	acc := atomic.LoadUint64(&countAccepted)
	rej := atomic.LoadUint64(&countRejected)
	errs := atomic.LoadUint64(&countErrors)
	imps := atomic.LoadUint64(&countImpressions)
	logger.Info("stats", zap.String("run", label), zap.Uint64("sent", sent), zap.Uint64("accepted", acc), zap.Uint64("rejected", rej), zap.Uint64("errors", errs), zap.Uint64("impressions", imps))
}
