package usecase

import (
	"context"
	"sort"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/ladder"
)

// LadderUseCase builds take-profit plans. The trailing stop tracks the
// latest spot price when one is available; otherwise it anchors to the
// entry price so the plan stays useful during upstream outages.
type LadderUseCase struct {
	planner   *ladder.Planner
	dashboard *DashboardUseCase
	defaults  DefaultLadders
}

// DefaultLadders holds the configured per-asset entry prices and the
// shared ladder parameters for the stock dashboard view.
type DefaultLadders struct {
	EntryPrices     map[string]float64
	StepPct         float64
	SellPctPerStep  float64
	MaxSteps        int
	TrailingStopPct *float64
}

func NewLadderUseCase(planner *ladder.Planner, dashboard *DashboardUseCase, defaults DefaultLadders) *LadderUseCase {
	return &LadderUseCase{planner: planner, dashboard: dashboard, defaults: defaults}
}

// Plan builds the ladder for req. Only the trailing stop consults live
// data; the rungs themselves are pure arithmetic on the request.
func (uc *LadderUseCase) Plan(ctx context.Context, req *models.LadderRequest) (*models.LadderPlan, error) {
	plan := uc.planner.BuildLadder(models.LadderConfig{
		EntryPrice:      req.EntryPrice,
		StepPct:         req.StepPct,
		SellPctPerStep:  req.SellPctPerStep,
		MaxSteps:        req.MaxSteps,
		TrailingStopPct: req.TrailingStopPct,
	})
	plan.Asset = req.Asset

	if req.TrailingStopPct != nil {
		anchor := req.EntryPrice
		if req.Asset != "" {
			if snap, err := uc.dashboard.Snapshot(ctx); err == nil {
				if spot := snap.SpotPrice(req.Asset); spot != nil {
					anchor = *spot
				}
			}
		}
		plan.TrailingStop = uc.planner.TrailingStop(anchor, req.TrailingStopPct)
	}
	return &plan, nil
}

// Plans builds one ladder per configured entry price, sorted by asset so
// the response is stable. One snapshot anchors every trailing stop.
func (uc *LadderUseCase) Plans(ctx context.Context) ([]models.LadderPlan, error) {
	assets := make([]string, 0, len(uc.defaults.EntryPrices))
	for asset := range uc.defaults.EntryPrices {
		assets = append(assets, asset)
	}
	sort.Strings(assets)

	var snap *models.MetricSnapshot
	if uc.defaults.TrailingStopPct != nil {
		snap, _ = uc.dashboard.Snapshot(ctx)
	}

	plans := make([]models.LadderPlan, 0, len(assets))
	for _, asset := range assets {
		entry := uc.defaults.EntryPrices[asset]
		plan := uc.planner.BuildLadder(models.LadderConfig{
			EntryPrice:      entry,
			StepPct:         uc.defaults.StepPct,
			SellPctPerStep:  uc.defaults.SellPctPerStep,
			MaxSteps:        uc.defaults.MaxSteps,
			TrailingStopPct: uc.defaults.TrailingStopPct,
		})
		plan.Asset = asset
		if uc.defaults.TrailingStopPct != nil {
			anchor := entry
			if spot := snap.SpotPrice(asset); spot != nil {
				anchor = *spot
			}
			plan.TrailingStop = uc.planner.TrailingStop(anchor, uc.defaults.TrailingStopPct)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
