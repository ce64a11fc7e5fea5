package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/ladder"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/signals"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/cache"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/util"
)

type fakeMarket struct {
	dominance    float64
	dominanceErr error
	ratio        float64
	prices       map[string]float64
	quotes       []models.AltQuote
	marketCalls  atomic.Int64
}

func (f *fakeMarket) GlobalDominance(context.Context) (float64, error) {
	return f.dominance, f.dominanceErr
}
func (f *fakeMarket) RelativeRatio(context.Context) (float64, error) { return f.ratio, nil }
func (f *fakeMarket) SpotPricesUSD(_ context.Context, ids []string) (map[string]float64, error) {
	return f.prices, nil
}
func (f *fakeMarket) TopMarkets(_ context.Context, n int) ([]models.AltQuote, error) {
	f.marketCalls.Add(1)
	return f.quotes, nil
}

type fakeSentiment struct {
	value int
	label string
	err   error
}

func (f *fakeSentiment) FearGreed(context.Context) (int, string, error) {
	return f.value, f.label, f.err
}

type fakeTechnical struct {
	readings map[string]models.TechnicalReading
}

func (f *fakeTechnical) Readings(context.Context) (map[string]models.TechnicalReading, error) {
	return f.readings, nil
}

type nopMetrics struct {
	gaps atomic.Int64
}

func (m *nopMetrics) RecordFetch(string, string)        {}
func (m *nopMetrics) RecordGap(string)                  { m.gaps.Add(1) }
func (m *nopMetrics) RecordDominance(float64)           {}
func (m *nopMetrics) RecordRatio(float64)               {}
func (m *nopMetrics) RecordSentiment(int)               {}
func (m *nopMetrics) RecordLastPrice(string, float64)   {}
func (m *nopMetrics) RecordSignal(string, bool)         {}
func (m *nopMetrics) RecordConfluence(int)              {}
func (m *nopMetrics) RecordRefreshDuration(float64)     {}

func newTestBuilder(market *fakeMarket, sentiment *fakeSentiment, metrics *nopMetrics) *SnapshotBuilder {
	store := cache.NewMemoryCache()
	return NewSnapshotBuilder(
		market, sentiment, &fakeTechnical{}, cache.NewLoader(store), metrics, logger.Nop(),
		"bitcoin", "ethereum",
		SourceTTLs{
			Prices:    time.Minute,
			Global:    5 * time.Minute,
			Sentiment: 5 * time.Minute,
			Markets:   2 * time.Minute,
		},
	)
}

func TestBuildHappyPath(t *testing.T) {
	market := &fakeMarket{
		dominance: 57.5,
		ratio:     0.055,
		prices:    map[string]float64{"bitcoin": 64000, "ethereum": 3100},
	}
	snap, err := newTestBuilder(market, &fakeSentiment{value: 76, label: "Greed"}, &nopMetrics{}).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.DominancePct == nil || *snap.DominancePct != 57.5 {
		t.Errorf("dominance = %v, want 57.5", snap.DominancePct)
	}
	if snap.RelativeRatio == nil || *snap.RelativeRatio != 0.055 {
		t.Errorf("ratio = %v, want 0.055", snap.RelativeRatio)
	}
	if snap.SentimentIndex == nil || *snap.SentimentIndex != 76 {
		t.Errorf("sentiment = %v, want 76", snap.SentimentIndex)
	}
	if p := snap.SpotPrice("bitcoin"); p == nil || *p != 64000 {
		t.Errorf("bitcoin price = %v, want 64000", p)
	}
	if snap.Degraded() {
		t.Errorf("unexpected degradation: %v", snap.Errors)
	}
}

// One failing source leaves its field nil and the rest of the snapshot
// intact.
func TestBuildIsolatesSourceFailure(t *testing.T) {
	market := &fakeMarket{
		dominanceErr: errors.New("upstream unavailable"),
		ratio:        0.055,
		prices:       map[string]float64{"bitcoin": 64000},
	}
	metrics := &nopMetrics{}
	snap, err := newTestBuilder(market, &fakeSentiment{value: 40, label: "Fear"}, metrics).
		Build(context.Background())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if snap.DominancePct != nil {
		t.Error("dominance should be nil after source failure")
	}
	if snap.RelativeRatio == nil {
		t.Error("ratio should survive a dominance failure")
	}
	if !snap.Degraded() {
		t.Fatal("snapshot should report degradation")
	}
	if _, ok := snap.Errors[models.SourceGlobal]; !ok {
		t.Fatalf("errors missing %s entry: %v", models.SourceGlobal, snap.Errors)
	}
	if metrics.gaps.Load() != 1 {
		t.Fatalf("gap count = %d, want 1", metrics.gaps.Load())
	}
}

func TestTopAltsCached(t *testing.T) {
	market := &fakeMarket{
		quotes: []models.AltQuote{{Rank: 3, Symbol: "SOL", Name: "Solana", PriceUSD: 150}},
	}
	builder := newTestBuilder(market, &fakeSentiment{}, &nopMetrics{})

	for i := 0; i < 3; i++ {
		quotes, err := builder.TopAlts(context.Background(), 50)
		if err != nil {
			t.Fatalf("TopAlts: %v", err)
		}
		if len(quotes) != 1 || quotes[0].Symbol != "SOL" {
			t.Fatalf("unexpected quotes: %+v", quotes)
		}
	}
	if calls := market.marketCalls.Load(); calls != 1 {
		t.Fatalf("market scan fetched %d times within TTL, want 1", calls)
	}
}

func TestSignalsRecordsAndEvaluates(t *testing.T) {
	market := &fakeMarket{
		dominance: 54.0,
		ratio:     0.06,
		prices:    map[string]float64{"bitcoin": 64000},
	}
	builder := newTestBuilder(market, &fakeSentiment{value: 85, label: "Extreme Greed"}, &nopMetrics{})

	uc := NewDashboardUseCase(builder, signals.NewEngine(), models.ThresholdConfig{
		DominanceBreak1:     58.29,
		DominanceBreak2:     54.66,
		RatioBreakoutLevel:  0.054,
		SentimentHigh:       80,
		TechnicalOverbought: 70,
		ConfluenceModerate:  2,
		ConfluenceHigh:      4,
	}, &nopMetrics{}, nil, logger.Nop())

	res, err := uc.Signals(context.Background())
	if err != nil {
		t.Fatalf("Signals: %v", err)
	}
	if !res.Signals.FullExitWatch {
		t.Error("full_exit_watch should be armed")
	}
	if !res.Signals.RotateToAlts {
		t.Error("rotate_to_alts should be active")
	}
	if res.Signals.ConfluenceLevel != models.ConfluenceHigh {
		t.Errorf("confluence level = %s, want high", res.Signals.ConfluenceLevel)
	}
	if res.Snapshot.SpotPrice("bitcoin") == nil {
		t.Error("snapshot should carry spot prices for display")
	}
}

func TestLadderPlanUsesSpotForTrailingStop(t *testing.T) {
	market := &fakeMarket{prices: map[string]float64{"bitcoin": 50000}}
	builder := newTestBuilder(market, &fakeSentiment{value: 50, label: "Neutral"}, &nopMetrics{})
	dashboard := NewDashboardUseCase(builder, signals.NewEngine(), models.ThresholdConfig{
		ConfluenceModerate: 2, ConfluenceHigh: 4,
	}, &nopMetrics{}, nil, logger.Nop())

	uc := NewLadderUseCase(ladder.NewPlanner(), dashboard, DefaultLadders{})
	plan, err := uc.Plan(context.Background(), &models.LadderRequest{
		Asset:           "bitcoin",
		EntryPrice:      40000,
		StepPct:         10,
		SellPctPerStep:  10,
		MaxSteps:        3,
		TrailingStopPct: util.FloatPtr(20),
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Steps) != 3 || plan.Steps[0].TargetPrice != 44000 {
		t.Fatalf("unexpected steps: %+v", plan.Steps)
	}
	if plan.TrailingStop == nil || *plan.TrailingStop != 40000 {
		t.Fatalf("trailing stop = %v, want 40000 from spot 50000", plan.TrailingStop)
	}
}
