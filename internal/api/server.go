// Package api implements the HTTP surface of the ops service: ticket CRUD
// and assignment, QA history, route previews, pipeline and health check
// triggers, delivery-event ingest, and delivery reports.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/patrickwarner/openadops/internal/analytics"
	"github.com/patrickwarner/openadops/internal/config"
	"github.com/patrickwarner/openadops/internal/db"
	"github.com/patrickwarner/openadops/internal/forecasting"
	"github.com/patrickwarner/openadops/internal/models"
	"github.com/patrickwarner/openadops/internal/observability"
	"github.com/patrickwarner/openadops/internal/orchestrator"
	"github.com/patrickwarner/openadops/internal/trafficking"
)

// Server groups dependencies for HTTP handlers.
type Server struct {
	Logger    *zap.Logger
	Store     models.OpsDataStore
	PG        *db.Postgres
	Redis     *db.RedisStore
	Analytics analytics.AnalyticsService
	Router    *trafficking.Engine
	Orch      *orchestrator.Orchestrator
	Pacer     *forecasting.Engine
	Metrics   observability.MetricsRegistry
	Config    config.Config
	reloadMu  sync.Mutex
}

// NewServer constructs a Server.
func NewServer(logger *zap.Logger, store models.OpsDataStore, pg *db.Postgres, redisStore *db.RedisStore, analyticsSvc analytics.AnalyticsService, router *trafficking.Engine, orch *orchestrator.Orchestrator, pacer *forecasting.Engine, metrics observability.MetricsRegistry, cfg config.Config) *Server {
	if router == nil {
		router = trafficking.NewEngine(cfg.DefaultPlatform)
	}
	return &Server{
		Logger:    logger,
		Store:     store,
		PG:        pg,
		Redis:     redisStore,
		Analytics: analyticsSvc,
		Router:    router,
		Orch:      orch,
		Pacer:     pacer,
		Metrics:   metrics,
		Config:    cfg,
	}
}

// OpsDataUpdateChannel is the Redis pub/sub channel board mutations are
// announced on so other service instances can reload.
const OpsDataUpdateChannel = "ops-data-updates"

type UpdateMessage struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     any    `json:"id"`
}

func (s *Server) notifyUpdate(entity string, action string, id any) {
	if s.Redis == nil || s.Redis.Client == nil {
		s.Logger.Warn("redis store not available, skipping update notification")
		return
	}
	msg := UpdateMessage{Entity: entity, Action: action, ID: id}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Error("failed to marshal update message", zap.Error(err))
		return
	}

	ctx := context.Background()
	if err := s.Redis.Client.Publish(ctx, OpsDataUpdateChannel, payload).Err(); err != nil {
		s.Logger.Error("failed to publish update message", zap.Error(err))
	}
}

// Reload refreshes tickets, campaigns, users, and the QA log from Postgres.
// Serialized so the ticker and the /reload endpoint cannot interleave.
func (s *Server) Reload() error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if s.PG == nil {
		return fmt.Errorf("postgres unavailable")
	}
	return db.Reload(s.PG, s.Store)
}
