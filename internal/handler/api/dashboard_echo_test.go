package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/ladder"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/signals"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/usecase"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/cache"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
)

type stubMarket struct{}

func (stubMarket) GlobalDominance(context.Context) (float64, error) { return 57.0, nil }
func (stubMarket) RelativeRatio(context.Context) (float64, error)   { return 0.055, nil }
func (stubMarket) SpotPricesUSD(_ context.Context, ids []string) (map[string]float64, error) {
	return map[string]float64{"bitcoin": 50000}, nil
}
func (stubMarket) TopMarkets(context.Context, int) ([]models.AltQuote, error) {
	return []models.AltQuote{{Rank: 3, Symbol: "SOL", Name: "Solana", PriceUSD: 150}}, nil
}

type stubSentiment struct{}

func (stubSentiment) FearGreed(context.Context) (int, string, error) { return 65, "Greed", nil }

type stubTechnical struct{}

func (stubTechnical) Readings(context.Context) (map[string]models.TechnicalReading, error) {
	return nil, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordFetch(string, string)      {}
func (stubMetrics) RecordGap(string)                {}
func (stubMetrics) RecordDominance(float64)         {}
func (stubMetrics) RecordRatio(float64)             {}
func (stubMetrics) RecordSentiment(int)             {}
func (stubMetrics) RecordLastPrice(string, float64) {}
func (stubMetrics) RecordSignal(string, bool)       {}
func (stubMetrics) RecordConfluence(int)            {}
func (stubMetrics) RecordRefreshDuration(float64)   {}

func newTestHandler(t *testing.T) *DashboardEchoHandler {
	t.Helper()
	builder := usecase.NewSnapshotBuilder(
		stubMarket{}, stubSentiment{}, stubTechnical{},
		cache.NewLoader(cache.NewMemoryCache()), stubMetrics{}, logger.Nop(),
		"bitcoin", "ethereum",
		usecase.SourceTTLs{
			Prices:    time.Minute,
			Global:    time.Minute,
			Sentiment: time.Minute,
			Markets:   time.Minute,
		},
	)
	dashboard := usecase.NewDashboardUseCase(builder, signals.NewEngine(), models.ThresholdConfig{
		DominanceBreak1:     58.29,
		DominanceBreak2:     54.66,
		RatioBreakoutLevel:  0.054,
		SentimentHigh:       80,
		TechnicalOverbought: 70,
		ConfluenceModerate:  2,
		ConfluenceHigh:      4,
	}, stubMetrics{}, nil, logger.Nop())
	rotation := usecase.NewRotationUseCase(dashboard, 50, 40)
	trail := 20.0
	ladderUC := usecase.NewLadderUseCase(ladder.NewPlanner(), dashboard, usecase.DefaultLadders{
		EntryPrices:     map[string]float64{"bitcoin": 40000, "ethereum": 2000},
		StepPct:         10,
		SellPctPerStep:  10,
		MaxSteps:        8,
		TrailingStopPct: &trail,
	})
	return NewDashboardEchoHandler(logger.Nop(), dashboard, rotation, ladderUC)
}

func TestHealthEndpoint(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLadderEndpoint(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)

	body := `{"asset":"bitcoin","entry_price":40000,"step_pct":10,"sell_pct_per_step":10,"max_steps":3,"trailing_stop_pct":20}`
	req := httptest.NewRequest(http.MethodPost, "/api/ladder", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data models.LadderPlan `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data.Steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(resp.Data.Steps))
	}
	if resp.Data.Steps[0].TargetPrice != 44000 {
		t.Fatalf("first target = %v, want 44000", resp.Data.Steps[0].TargetPrice)
	}
	if resp.Data.TrailingStop == nil || *resp.Data.TrailingStop != 40000 {
		t.Fatalf("trailing stop = %v, want 40000", resp.Data.TrailingStop)
	}
}

func TestLadderEndpointRejectsBadEntry(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)

	body := `{"asset":"bitcoin","entry_price":-5}`
	req := httptest.NewRequest(http.MethodPost, "/api/ladder", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The envelope carries the status; transport-level code stays 200.
	var resp struct {
		Status int `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("envelope status = %d, want 400: %s", resp.Status, rec.Body)
	}
}

func TestLaddersEndpoint(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/ladders", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data []models.LadderPlan `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("plans = %d, want 2", len(resp.Data))
	}
	// Sorted by asset id; bitcoin carries the spot-anchored stop.
	if resp.Data[0].Asset != "bitcoin" || resp.Data[1].Asset != "ethereum" {
		t.Fatalf("unexpected order: %s, %s", resp.Data[0].Asset, resp.Data[1].Asset)
	}
	if resp.Data[0].TrailingStop == nil || *resp.Data[0].TrailingStop != 40000 {
		t.Fatalf("bitcoin stop = %v, want 40000 from spot 50000", resp.Data[0].TrailingStop)
	}
}

func TestSignalsEndpoint(t *testing.T) {
	e := echo.New()
	h := newTestHandler(t)
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/signals", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data models.SignalsResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Signals == nil || resp.Data.Snapshot == nil {
		t.Fatal("response should carry both signals and snapshot")
	}
	// dominance 57.0 is below the first break only; ratio 0.055 breaks out.
	if !resp.Data.Signals.RotateToAlts {
		t.Error("rotate_to_alts should be active")
	}
	if resp.Data.Signals.FullExitWatch {
		t.Error("full_exit_watch should be off without extreme sentiment")
	}
}
