// Package analytics stores and queries campaign delivery data in ClickHouse.
// Delivery rows arrive pre-aggregated per campaign and day from platform
// reporting feeds (or the simulator); the pipeline and reporting layers read
// them back for pacing, zero-delivery detection, and campaign reports.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
)

// AnalyticsService defines the interface for delivery analytics operations.
// Implementations should handle cases where underlying storage is unavailable
// by returning ErrUnavailable.
type AnalyticsService interface {
	// RecordDelivery buffers a delivery row for insertion.
	RecordDelivery(ctx context.Context, ev DeliveryEvent) error
	// ZeroDeliveryCampaigns returns active campaigns that recorded zero
	// impressions on the most recent delivery date, highest budget first.
	ZeroDeliveryCampaigns(ctx context.Context, store models.OpsDataStore) ([]models.Campaign, error)
	// CampaignTotals aggregates all delivery rows for one campaign.
	CampaignTotals(ctx context.Context, campaignID string) (DeliveryTotals, error)
	// DailySeries returns the per-day breakdown for one campaign, oldest
	// first. days limits the window; days <= 0 returns the full history.
	DailySeries(ctx context.Context, campaignID string, days int) ([]DailyDelivery, error)
	// PlatformTotals aggregates a campaign's delivery rows per platform.
	PlatformTotals(ctx context.Context, campaignID string) ([]PlatformDelivery, error)
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

const (
	flushInterval  = 2 * time.Second
	flushBatchSize = 500
	eventBufferCap = 4096
)

// DeliveryEvent mirrors a row in the delivery_events table: one campaign's
// delivery for one day on one platform.
type DeliveryEvent struct {
	ID          string    `json:"delivery_id"`
	Timestamp   time.Time `json:"timestamp"`
	Date        string    `json:"date"` // YYYY-MM-DD
	CampaignID  string    `json:"campaign_id"`
	Platform    string    `json:"platform"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	SpendUSD    float64   `json:"spend_usd"`
	VASTErrors  int64     `json:"vast_errors"`
	Viewability float64   `json:"viewability_rate"`
}

// DeliveryTotals aggregates every delivery row recorded for a campaign.
type DeliveryTotals struct {
	CampaignID     string    `json:"campaign_id"`
	Days           int       `json:"days_with_delivery"`
	Impressions    int64     `json:"total_impressions"`
	Clicks         int64     `json:"total_clicks"`
	SpendUSD       float64   `json:"total_spend_usd"`
	VASTErrors     int64     `json:"total_vast_errors"`
	AvgViewability float64   `json:"avg_viewability"`
	FirstDate      time.Time `json:"first_delivery_date"`
	LastDate       time.Time `json:"last_delivery_date"`
}

// CTR returns the click-through rate as a fraction, 0 when no impressions.
func (t DeliveryTotals) CTR() float64 {
	if t.Impressions == 0 {
		return 0
	}
	return float64(t.Clicks) / float64(t.Impressions)
}

// CPM returns the effective cost per thousand impressions.
func (t DeliveryTotals) CPM() float64 {
	if t.Impressions == 0 {
		return 0
	}
	return t.SpendUSD / float64(t.Impressions) * 1000
}

// VASTErrorRate returns errors as a fraction of attempted video serves.
func (t DeliveryTotals) VASTErrorRate() float64 {
	attempts := t.Impressions + t.VASTErrors
	if attempts == 0 {
		return 0
	}
	return float64(t.VASTErrors) / float64(attempts)
}

// DailyDelivery is one day of a campaign's delivery series.
type DailyDelivery struct {
	Date        time.Time `json:"date"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	SpendUSD    float64   `json:"spend_usd"`
	VASTErrors  int64     `json:"vast_errors"`
	Viewability float64   `json:"viewability_rate"`
}

// PlatformDelivery is a campaign's delivery aggregated per serving platform.
type PlatformDelivery struct {
	Platform    string  `json:"platform"`
	Impressions int64   `json:"impressions"`
	Clicks      int64   `json:"clicks"`
	SpendUSD    float64 `json:"spend_usd"`
}

// Analytics wraps a ClickHouse DB connection with a buffered insert path.
type Analytics struct {
	DB      *sql.DB
	Metrics observability.MetricsRegistry

	events    chan DeliveryEvent
	flushed   chan struct{}
	closeOnce sync.Once
}

// InitClickHouse connects to ClickHouse, ensures the delivery_events table
// exists, and starts the background flush loop.
func InitClickHouse(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration, metrics observability.MetricsRegistry) (*Analytics, error) {
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	create := `CREATE TABLE IF NOT EXISTS delivery_events (
       delivery_id      String,
       timestamp        DateTime,
       delivery_date    Date,
       campaign_id      String,
       platform         String,
       impressions      Int64,
       clicks           Int64,
       spend_usd        Float64,
       vast_errors      Int64,
       viewability_rate Float64
   ) ENGINE=MergeTree() ORDER BY (campaign_id, delivery_date)`
	if _, err := db.ExecContext(context.Background(), create); err != nil {
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	a := &Analytics{
		DB:      db,
		Metrics: metrics,
		events:  make(chan DeliveryEvent, eventBufferCap),
		flushed: make(chan struct{}),
	}
	go a.flushLoop()

	zap.L().Info("Connected to ClickHouse")
	return a, nil
}

// RecordDelivery buffers a delivery row for batched insertion. Missing
// identifiers and timestamps are filled in; an empty date falls back to the
// timestamp's day. When the buffer is full the row is inserted inline so
// ingest slows down instead of losing data.
func (a *Analytics) RecordDelivery(ctx context.Context, ev DeliveryEvent) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()[:8]
	}
	if ev.Date == "" {
		ev.Date = ev.Timestamp.Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", ev.Date); err != nil {
		return fmt.Errorf("delivery date %q: %w", ev.Date, err)
	}
	a.Metrics.IncrementDeliveryEvents("received")

	select {
	case a.events <- ev:
		return nil
	default:
		return a.insertBatch(ctx, []DeliveryEvent{ev})
	}
}

// flushLoop drains the event buffer into ClickHouse, flushing on a ticker or
// whenever a full batch accumulates.
func (a *Analytics) flushLoop() {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]DeliveryEvent, 0, flushBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.insertBatch(context.Background(), batch); err != nil {
			zap.L().Error("delivery event flush failed", zap.Error(err), zap.Int("rows", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case ev, ok := <-a.events:
			if !ok {
				flush()
				close(a.flushed)
				return
			}
			batch = append(batch, ev)
			if len(batch) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// insertBatch writes delivery rows in a single transaction, which the
// ClickHouse driver turns into one batched insert.
func (a *Analytics) insertBatch(ctx context.Context, events []DeliveryEvent) error {
	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO delivery_events (delivery_id, timestamp, delivery_date, campaign_id, platform, impressions, clicks, spend_usd, vast_errors, viewability_rate) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	for _, ev := range events {
		date, err := time.Parse("2006-01-02", ev.Date)
		if err != nil {
			date = ev.Timestamp
		}
		if _, err := stmt.ExecContext(ctx, ev.ID, ev.Timestamp, date, ev.CampaignID, ev.Platform, ev.Impressions, ev.Clicks, ev.SpendUSD, ev.VASTErrors, ev.Viewability); err != nil {
			_ = tx.Rollback()
			a.Metrics.IncrementDeliveryEvents("failed")
			return fmt.Errorf("append delivery row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		a.Metrics.IncrementDeliveryEvents("failed")
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ZeroDeliveryCampaigns returns active campaigns whose rows on the most
// recent delivery date sum to zero impressions, highest budget first.
func (a *Analytics) ZeroDeliveryCampaigns(ctx context.Context, store models.OpsDataStore) ([]models.Campaign, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT campaign_id FROM delivery_events
       WHERE delivery_date = (SELECT max(delivery_date) FROM delivery_events)
       GROUP BY campaign_id
       HAVING sum(impressions) = 0`
	rows, err := a.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query zero delivery: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan campaign id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return resolveZeroDelivery(store, ids), nil
}

// resolveZeroDelivery maps flagged campaign IDs to active campaigns from the
// data store, ordered by budget descending so the costliest dark campaigns
// top the alert.
func resolveZeroDelivery(store models.OpsDataStore, ids []string) []models.Campaign {
	if store == nil {
		return nil
	}
	var out []models.Campaign
	for _, id := range ids {
		c := store.GetCampaign(id)
		if c == nil || c.Status != models.CampaignActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BudgetUSD > out[j].BudgetUSD })
	return out
}

// CampaignTotals aggregates all delivery rows for one campaign.
func (a *Analytics) CampaignTotals(ctx context.Context, campaignID string) (DeliveryTotals, error) {
	if a == nil || a.DB == nil {
		return DeliveryTotals{}, ErrUnavailable
	}
	query := `SELECT count(DISTINCT delivery_date), sum(impressions), sum(clicks), sum(spend_usd), sum(vast_errors), avg(viewability_rate), min(delivery_date), max(delivery_date)
       FROM delivery_events WHERE campaign_id = ?`
	var (
		days        uint64
		totals      DeliveryTotals
		first, last time.Time
		viewability float64
	)
	row := a.DB.QueryRowContext(ctx, query, campaignID)
	if err := row.Scan(&days, &totals.Impressions, &totals.Clicks, &totals.SpendUSD, &totals.VASTErrors, &viewability, &first, &last); err != nil {
		return DeliveryTotals{}, fmt.Errorf("scan totals: %w", err)
	}
	if days == 0 {
		// No rows yet: aggregates over the empty set are driver defaults.
		return DeliveryTotals{CampaignID: campaignID}, nil
	}
	totals.CampaignID = campaignID
	totals.Days = int(days)
	totals.AvgViewability = viewability
	totals.FirstDate = first
	totals.LastDate = last
	return totals, nil
}

// DailySeries returns the per-day delivery breakdown for one campaign,
// oldest first.
func (a *Analytics) DailySeries(ctx context.Context, campaignID string, days int) ([]DailyDelivery, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT delivery_date, sum(impressions), sum(clicks), sum(spend_usd), sum(vast_errors), avg(viewability_rate)
       FROM delivery_events WHERE campaign_id = ?`
	args := []any{campaignID}
	if days > 0 {
		query += ` AND delivery_date >= ?`
		args = append(args, time.Now().AddDate(0, 0, -days))
	}
	query += ` GROUP BY delivery_date ORDER BY delivery_date`

	rows, err := a.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily series: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var series []DailyDelivery
	for rows.Next() {
		var d DailyDelivery
		if err := rows.Scan(&d.Date, &d.Impressions, &d.Clicks, &d.SpendUSD, &d.VASTErrors, &d.Viewability); err != nil {
			return nil, fmt.Errorf("scan daily row: %w", err)
		}
		series = append(series, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return series, nil
}

// PlatformTotals aggregates a campaign's delivery rows per serving platform.
// Campaigns trafficked through CM360 plus a DSP report under both.
func (a *Analytics) PlatformTotals(ctx context.Context, campaignID string) ([]PlatformDelivery, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	query := `SELECT platform, sum(impressions), sum(clicks), sum(spend_usd)
       FROM delivery_events WHERE campaign_id = ?
       GROUP BY platform ORDER BY sum(impressions) DESC`
	rows, err := a.DB.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("query platform totals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var out []PlatformDelivery
	for rows.Next() {
		var p PlatformDelivery
		if err := rows.Scan(&p.Platform, &p.Impressions, &p.Clicks, &p.SpendUSD); err != nil {
			return nil, fmt.Errorf("scan platform row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Close drains the event buffer and terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a == nil || a.DB == nil {
		return
	}
	a.closeOnce.Do(func() {
		close(a.events)
		<-a.flushed
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	})
}
