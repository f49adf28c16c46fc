package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/patrickwarner/openadops/internal/alerting"
	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/api"
	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/macros"
	"github.com/patrickwarner/openadops/internal/middleware"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/orchestrator"
	"github.com/patrickwarner/openadops/internal/platforms"
	"github.com/patrickwarner/openadops/internal/ratelimit"
	"github.com/patrickwarner/openadops/internal/trafficking"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := observability.InitLoggerWithService(cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
		}
	}()

	if err := run(logger, cfg); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, cfg config.Config) error {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		stopTracing, err := observability.InitTracing(ctx, logger, cfg.ServiceName, cfg.TempoEndpoint, cfg.TracingSampleRate)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		defer stopTracing()
	}

	pg, err := db.InitPostgres(cfg.PostgresDSN, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetime, cfg.DBConnMaxIdleTime)
	if err != nil {
		return fmt.Errorf("failed to connect postgres: %w", err)
	}
	defer pg.Close()

	// Initialize OpsDataStore first, before loading any data
	store := models.NewInMemoryOpsDataStore()
	if store == nil {
		return fmt.Errorf("failed to initialize ops data store")
	}

	if err := db.Init(pg, store); err != nil {
		return fmt.Errorf("load operational data: %w", err)
	}

	redisStore, err := db.InitRedis(cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	defer redisStore.Close()

	// Initialize metrics registry
	metricsRegistry := observability.NewPrometheusRegistry()

	analyticsSvc, err := analytics.InitClickHouse(cfg.ClickHouseDSN, cfg.CHMaxOpenConns, cfg.CHMaxIdleConns, cfg.CHConnMaxLifetime, cfg.CHConnMaxIdleTime, metricsRegistry)
	if err != nil {
		return fmt.Errorf("failed to connect clickhouse: %w", err)
	}
	defer analyticsSvc.Close()

	// Initialize rate limiter shared by all outbound platform clients
	rateLimiterConfig := ratelimit.Config{
		Capacity:   cfg.RateLimitCapacity,
		RefillRate: cfg.RateLimitRefillRate,
		Enabled:    cfg.RateLimitEnabled,
	}
	rateLimiter := ratelimit.NewPlatformLimiter(rateLimiterConfig, metricsRegistry)

	expander := macros.NewTagExpander(logger)
	cm360Client := platforms.NewCM360Client(cfg.CM360, expander, rateLimiter, logger, metricsRegistry)
	metaClient := platforms.NewMetaClient(cfg.Meta, rateLimiter, logger, metricsRegistry)
	tiktokClient := platforms.NewTikTokClient(cfg.TikTok, rateLimiter, logger, metricsRegistry)
	kochavaClient := platforms.NewKochavaClient(cfg.Kochava, rateLimiter, logger, metricsRegistry)

	dedupe := alerting.NewDedupe(redisStore, cfg.Alerts.DedupeTTL)
	notifier := alerting.NewNotifier(cfg.Alerts, dedupe, metricsRegistry, logger)

	router := trafficking.NewEngine(cfg.DefaultPlatform)
	pacer := forecasting.NewEngine(analyticsSvc, store, logger)

	orch := orchestrator.New(store, router, metricsRegistry, logger)
	orch.Records = pg
	orch.Alerts = notifier
	orch.Meta = metaClient
	orch.TikTok = tiktokClient
	orch.AdServer = cm360Client
	orch.Trackers = kochavaClient
	orch.Analytics = analyticsSvc
	orch.Pacer = pacer
	orch.Redis = redisStore

	r := mux.NewRouter()
	r.Use(middleware.WithTraceLogger(logger))

	srvDeps := api.NewServer(logger, store, pg, redisStore, analyticsSvc, router, orch, pacer, metricsRegistry, cfg)
	r.HandleFunc("/healthz", srvDeps.HealthzHandler).Methods("GET")
	r.HandleFunc("/readyz", srvDeps.ReadyzHandler).Methods("GET")
	r.HandleFunc("/reload", srvDeps.ReloadHandler).Methods("POST")

	// Ticket desk routes for the ops UI
	ops := r.PathPrefix("/api").Subrouter()
	ops.HandleFunc("/tickets", srvDeps.ListTickets).Methods("GET")
	ops.HandleFunc("/tickets", srvDeps.CreateTicket).Methods("POST")
	ops.HandleFunc("/tickets/{id}", srvDeps.GetTicketHandler).Methods("GET")
	ops.HandleFunc("/tickets/{id}/assign", srvDeps.AssignTicket).Methods("POST")
	ops.HandleFunc("/tickets/{id}/qa", srvDeps.TicketQAChecks).Methods("GET")

	ops.HandleFunc("/route/preview", srvDeps.RoutePreviewHandler).Methods("POST")
	ops.HandleFunc("/pipeline/run", srvDeps.PipelineRunHandler).Methods("POST")
	ops.HandleFunc("/healthcheck/run", srvDeps.HealthCheckRunHandler).Methods("POST")

	ops.HandleFunc("/events/delivery", srvDeps.DeliveryEventHandler).Methods("POST")
	ops.HandleFunc("/reports/campaigns/{id}", srvDeps.CampaignReportHandler).Methods("GET")
	ops.HandleFunc("/reports/pacing", srvDeps.PacingReportHandler).Methods("GET")

	// Static file server for serving static assets like HTML, CSS, JS
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	// metrics endpoint (includes rate limiting metrics)
	r.Handle("/metrics", promhttp.Handler())

	var handler http.Handler = r
	if cfg.TracingEnabled {
		handler = otelhttp.NewHandler(r, "http")
	}

	addr := ":" + cfg.Port

	readTimeout := cfg.ReadTimeout
	writeTimeout := cfg.WriteTimeout

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logger.Info("Ops server running", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	if cfg.PipelineEnabled && cfg.PipelineInterval > 0 {
		ticker := time.NewTicker(cfg.PipelineInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					if cfg.AutoAssignEnabled {
						orch.AssignUnassigned(ctx)
					}
					if _, err := orch.RunPipeline(ctx); err != nil {
						logger.Error("scheduled pipeline run", zap.Error(err))
					}
				case <-ctx.Done():
					ticker.Stop()
					return
				}
			}
		}()
	}

	if cfg.SLACheckInterval > 0 {
		ticker := time.NewTicker(cfg.SLACheckInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					orch.RunHealthCheck(ctx)
				case <-ctx.Done():
					ticker.Stop()
					return
				}
			}
		}()
	}

	if cfg.ReloadInterval > 0 {
		ticker := time.NewTicker(cfg.ReloadInterval)
		go func() {
			for {
				select {
				case <-ticker.C:
					if err := srvDeps.Reload(); err != nil {
						logger.Error("auto reload", zap.Error(err))
					}
				case <-ctx.Done():
					ticker.Stop()
					return
				}
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
