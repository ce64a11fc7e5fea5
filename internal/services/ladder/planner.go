package ladder

import (
	"math"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/util"
)

// Planner builds geometric take-profit schedules. Pure and deterministic.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

// BuildLadder computes the take-profit rungs for cfg. Each rung compounds
// the previous target by StepPct. A non-positive entry price yields an
// empty plan. Prices and gains are rounded to two decimals.
func (p *Planner) BuildLadder(cfg models.LadderConfig) models.LadderPlan {
	plan := models.LadderPlan{EntryPrice: cfg.EntryPrice}
	if cfg.EntryPrice <= 0 || cfg.MaxSteps <= 0 {
		return plan
	}

	plan.Steps = make([]models.LadderStep, 0, cfg.MaxSteps)
	factor := 1 + cfg.StepPct/100
	for i := 1; i <= cfg.MaxSteps; i++ {
		target := cfg.EntryPrice * math.Pow(factor, float64(i))
		plan.Steps = append(plan.Steps, models.LadderStep{
			Step:        i,
			TargetPrice: util.Round2(target),
			GainPct:     util.Round2((target/cfg.EntryPrice - 1) * 100),
			SellPct:     cfg.SellPctPerStep,
		})
	}

	plan.CumulativeSellPct = util.Round2(float64(cfg.MaxSteps) * cfg.SellPctPerStep)
	plan.Oversubscribed = plan.CumulativeSellPct > 100
	return plan
}

// TrailingStop returns the stop price trailing pct percent below the
// current price, or nil when either input is unusable.
func (p *Planner) TrailingStop(currentPrice float64, pct *float64) *float64 {
	if currentPrice <= 0 || pct == nil || *pct <= 0 {
		return nil
	}
	return util.FloatPtr(util.Round2(currentPrice * (1 - *pct/100)))
}
