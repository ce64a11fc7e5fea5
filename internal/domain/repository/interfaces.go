package repository

import (
	"context"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
)

// MarketData provides the tracked-universe aggregates and prices.
type MarketData interface {
	// GlobalDominance returns the primary asset's share of total market
	// capitalization, in percent.
	GlobalDominance(ctx context.Context) (float64, error)
	// RelativeRatio returns the secondary asset priced in the primary.
	RelativeRatio(ctx context.Context) (float64, error)
	// SpotPricesUSD returns latest USD prices for the given asset ids.
	SpotPricesUSD(ctx context.Context, ids []string) (map[string]float64, error)
	// TopMarkets returns the top-n assets by market cap, excluding the
	// primary and secondary assets.
	TopMarkets(ctx context.Context, n int) ([]models.AltQuote, error)
}

// SentimentData provides the externally sourced sentiment index.
type SentimentData interface {
	// FearGreed returns the index value [0,100] and its text classification.
	FearGreed(ctx context.Context) (int, string, error)
}

// TechnicalData provides externally supplied technical readings.
type TechnicalData interface {
	Readings(ctx context.Context) (map[string]models.TechnicalReading, error)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(source, outcome string)
	RecordGap(source string)
	RecordDominance(pct float64)
	RecordRatio(ratio float64)
	RecordSentiment(value int)
	RecordLastPrice(asset string, price float64)
	RecordSignal(name string, active bool)
	RecordConfluence(count int)
	RecordRefreshDuration(seconds float64)
}

// SignalPublisher emits signal evaluations to downstream consumers.
type SignalPublisher interface {
	PublishSignals(ctx context.Context, set *models.SignalSet) error
	Close() error
}
