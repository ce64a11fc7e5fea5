package usecase

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	domrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/cache"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
)

// SourceTTLs maps each snapshot source to its cache window. Spot prices move
// fast; aggregates and sentiment can ride longer TTLs without going stale.
type SourceTTLs struct {
	Prices    time.Duration
	Global    time.Duration
	Sentiment time.Duration
	Markets   time.Duration
}

// sentimentValue is the cached form of the two-part fear/greed reading.
type sentimentValue struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// SnapshotBuilder assembles one MetricSnapshot per refresh. Sources are
// fetched concurrently through the cache loader; a failing source leaves
// its field nil and records the reason instead of aborting the refresh.
type SnapshotBuilder struct {
	market    domrepo.MarketData
	sentiment domrepo.SentimentData
	technical domrepo.TechnicalData
	loader    *cache.Loader
	metrics   domrepo.Metrics
	log       *logger.Logger

	primary   string
	secondary string
	ttls      SourceTTLs
	timeout   time.Duration
}

func NewSnapshotBuilder(
	market domrepo.MarketData,
	sentiment domrepo.SentimentData,
	technical domrepo.TechnicalData,
	loader *cache.Loader,
	metrics domrepo.Metrics,
	log *logger.Logger,
	primary, secondary string,
	ttls SourceTTLs,
) *SnapshotBuilder {
	return &SnapshotBuilder{
		market:    market,
		sentiment: sentiment,
		technical: technical,
		loader:    loader,
		metrics:   metrics,
		log:       log,
		primary:   primary,
		secondary: secondary,
		ttls:      ttls,
		timeout:   30 * time.Second,
	}
}

// Build refreshes every source and returns the resulting snapshot. The
// returned error is always nil today; the signature leaves room for a
// future hard-failure mode.
func (b *SnapshotBuilder) Build(ctx context.Context) (*models.MetricSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	started := time.Now()
	snap := &models.MetricSnapshot{
		Timestamp: started.UTC(),
		Errors:    map[string]string{},
	}

	type item struct {
		source string
		val    interface{}
		err    error
	}
	ch := make(chan item, 5)
	var wg sync.WaitGroup

	assetParams := map[string]string{"primary": b.primary, "secondary": b.secondary}

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := cache.GetOrFetch(ctx, b.loader,
			cache.Key(models.SourceGlobal, assetParams), b.ttls.Global,
			b.market.GlobalDominance)
		ch <- item{models.SourceGlobal, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := cache.GetOrFetch(ctx, b.loader,
			cache.Key(models.SourceRatio, assetParams), b.ttls.Global,
			b.market.RelativeRatio)
		ch <- item{models.SourceRatio, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ids := []string{b.primary, b.secondary}
		v, err := cache.GetOrFetch(ctx, b.loader,
			cache.Key(models.SourcePrices, map[string]string{"ids": strings.Join(ids, ",")}),
			b.ttls.Prices,
			func(ctx context.Context) (map[string]float64, error) {
				return b.market.SpotPricesUSD(ctx, ids)
			})
		ch <- item{models.SourcePrices, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := cache.GetOrFetch(ctx, b.loader,
			cache.Key(models.SourceSentiment, nil), b.ttls.Sentiment,
			func(ctx context.Context) (sentimentValue, error) {
				value, label, err := b.sentiment.FearGreed(ctx)
				return sentimentValue{Value: value, Label: label}, err
			})
		ch <- item{models.SourceSentiment, v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Operator-supplied readings, no caching needed.
		v, err := b.technical.Readings(ctx)
		ch <- item{models.SourceTechnical, v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			snap.Errors[it.source] = it.err.Error()
			b.metrics.RecordGap(it.source)
			b.log.Warn("source unavailable, degrading",
				logger.String("source", it.source), logger.Error(it.err))
			continue
		}
		switch it.source {
		case models.SourceGlobal:
			v := it.val.(float64)
			snap.DominancePct = &v
			b.metrics.RecordDominance(v)
		case models.SourceRatio:
			v := it.val.(float64)
			snap.RelativeRatio = &v
			b.metrics.RecordRatio(v)
		case models.SourcePrices:
			prices := it.val.(map[string]float64)
			snap.SpotPrices = make(map[string]*float64, len(prices))
			for asset, price := range prices {
				p := price
				snap.SpotPrices[asset] = &p
				b.metrics.RecordLastPrice(asset, price)
			}
		case models.SourceSentiment:
			v := it.val.(sentimentValue)
			snap.SentimentIndex = &v.Value
			snap.SentimentLabel = &v.Label
			b.metrics.RecordSentiment(v.Value)
		case models.SourceTechnical:
			snap.TechnicalFlags = it.val.(map[string]models.TechnicalReading)
		}
	}

	if len(snap.Errors) == 0 {
		snap.Errors = nil
	}
	b.metrics.RecordRefreshDuration(time.Since(started).Seconds())
	b.log.Debug("snapshot built",
		logger.Bool("degraded", snap.Degraded()),
		logger.Duration("took", time.Since(started)))
	return snap, nil
}

// TopAlts returns the cached top-n market scan.
func (b *SnapshotBuilder) TopAlts(ctx context.Context, n int) ([]models.AltQuote, error) {
	return cache.GetOrFetch(ctx, b.loader,
		cache.Key(models.SourceMarkets, map[string]string{"n": strconv.Itoa(n)}),
		b.ttls.Markets,
		func(ctx context.Context) ([]models.AltQuote, error) {
			return b.market.TopMarkets(ctx, n)
		})
}
