package usecase

import (
	"context"
	"sync"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	domrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/signals"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
)

// DashboardUseCase evaluates the signal engine over fresh snapshots and
// reports the results to metrics and (optionally) a downstream publisher.
type DashboardUseCase struct {
	builder    *SnapshotBuilder
	engine     *signals.Engine
	thresholds models.ThresholdConfig
	metrics    domrepo.Metrics
	publisher  domrepo.SignalPublisher
	log        *logger.Logger

	mu        sync.Mutex
	lastLevel models.ConfluenceLevel
}

func NewDashboardUseCase(
	builder *SnapshotBuilder,
	engine *signals.Engine,
	thresholds models.ThresholdConfig,
	metrics domrepo.Metrics,
	publisher domrepo.SignalPublisher,
	log *logger.Logger,
) *DashboardUseCase {
	return &DashboardUseCase{
		builder:    builder,
		engine:     engine,
		thresholds: thresholds,
		metrics:    metrics,
		publisher:  publisher,
		log:        log,
	}
}

// Snapshot returns the raw inputs of one refresh cycle.
func (uc *DashboardUseCase) Snapshot(ctx context.Context) (*models.MetricSnapshot, error) {
	return uc.builder.Build(ctx)
}

// Signals refreshes the snapshot and evaluates the full signal set.
func (uc *DashboardUseCase) Signals(ctx context.Context) (*models.SignalsResponse, error) {
	snap, err := uc.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	set := uc.engine.Evaluate(snap, uc.thresholds)
	for name, active := range set.Map() {
		uc.metrics.RecordSignal(name, active)
	}
	uc.metrics.RecordConfluence(set.ConfluenceCount)
	uc.maybePublish(ctx, &set)

	return &models.SignalsResponse{Snapshot: snap, Signals: &set}, nil
}

// Thresholds returns the session's trigger levels.
func (uc *DashboardUseCase) Thresholds() models.ThresholdConfig {
	return uc.thresholds
}

// maybePublish emits the signal set downstream whenever the confluence
// level changes. Publish failures are logged, never surfaced to the caller.
func (uc *DashboardUseCase) maybePublish(ctx context.Context, set *models.SignalSet) {
	if uc.publisher == nil {
		return
	}

	uc.mu.Lock()
	changed := set.ConfluenceLevel != uc.lastLevel
	if changed {
		uc.lastLevel = set.ConfluenceLevel
	}
	uc.mu.Unlock()
	if !changed {
		return
	}

	if err := uc.publisher.PublishSignals(ctx, set); err != nil {
		uc.log.Warn("publish signals failed",
			logger.String("level", string(set.ConfluenceLevel)), logger.Error(err))
		return
	}
	uc.log.Info("confluence level changed",
		logger.String("level", string(set.ConfluenceLevel)),
		logger.Int("count", set.ConfluenceCount))
}
