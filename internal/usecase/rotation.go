package usecase

import (
	"context"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
)

// RotationUseCase produces the altcoin-rotation view: whether the rotation
// signal is live and which top-cap alts are candidates.
type RotationUseCase struct {
	dashboard *DashboardUseCase
	topN      int
	targetPct float64
}

func NewRotationUseCase(dashboard *DashboardUseCase, topN int, targetPct float64) *RotationUseCase {
	return &RotationUseCase{dashboard: dashboard, topN: topN, targetPct: targetPct}
}

// Advise evaluates the current signals and scans the market list. A failed
// scan degrades to an empty candidate list; the signal side still answers.
func (uc *RotationUseCase) Advise(ctx context.Context) (*models.RotationAdvice, error) {
	res, err := uc.dashboard.Signals(ctx)
	if err != nil {
		return nil, err
	}

	advice := &models.RotationAdvice{
		Active:                 res.Signals.RotateToAlts,
		TargetAltAllocationPct: uc.targetPct,
	}
	if quotes, err := uc.dashboard.builder.TopAlts(ctx, uc.topN); err == nil {
		advice.Candidates = quotes
	}
	return advice, nil
}
