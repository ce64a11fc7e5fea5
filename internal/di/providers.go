package di

import (
	"fmt"

	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/models"
	domrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/domain/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/handler/api"
	internalrepo "github.com/FabienAstre/crypto-bullrun-dashboard/internal/repository"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/service/altme"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/service/coingecko"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/service/ratelimit"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/service/technical"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/ladder"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/services/signals"
	"github.com/FabienAstre/crypto-bullrun-dashboard/internal/usecase"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/cache"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/config"
	xhttp "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/http"
	pkgkafka "github.com/FabienAstre/crypto-bullrun-dashboard/pkg/kafka"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/logger"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/metrics"
	"github.com/FabienAstre/crypto-bullrun-dashboard/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCacheService picks the cache backend. Redis layers over memory
// when enabled; otherwise memory alone carries the TTL windows.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize)), nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return cache.NewLayeredCache(redisCache, cfg.Cache.MemoryMaxSize), nil
}

// ProvideLoader wraps the cache service with TTL memoization.
func ProvideLoader(store cache.Service) *cache.Loader {
	return cache.NewLoader(store)
}

// ProvideFetcher builds the shared upstream fetcher with retry, backoff and
// a client-side rate limit guarding the free-tier APIs.
func ProvideFetcher(cfg *config.Config, m domrepo.Metrics) *xhttp.Fetcher {
	return xhttp.NewFetcher(
		xhttp.NewClient(xhttp.WithTimeout(cfg.Upstream.Timeout)),
		xhttp.WithMaxRetries(cfg.Upstream.MaxRetries),
		xhttp.WithBaseBackoff(cfg.Upstream.BaseBackoff),
		xhttp.WithLimiter(ratelimit.New(), cfg.Upstream.RateLimit.Capacity, cfg.Upstream.RateLimit.RefillPerSec),
		xhttp.WithObserver(m.RecordFetch),
	)
}

// ProvideMarketData creates the CoinGecko client.
func ProvideMarketData(cfg *config.Config, fetcher *xhttp.Fetcher) domrepo.MarketData {
	return coingecko.New(cfg.Upstream.CoingeckoBaseURL, cfg.Assets.Primary, cfg.Assets.Secondary, fetcher)
}

// ProvideSentimentData creates the alternative.me client.
func ProvideSentimentData(cfg *config.Config, fetcher *xhttp.Fetcher) domrepo.SentimentData {
	return altme.New(cfg.Upstream.AlternativeBaseURL, fetcher)
}

// ProvideTechnicalData serves operator-supplied readings from config.
func ProvideTechnicalData(cfg *config.Config) domrepo.TechnicalData {
	return technical.New(cfg.Technical.RSI, cfg.Technical.MACDDivergence, cfg.Technical.VolumeDivergence)
}

// ProvideSignalPublisher creates the Kafka publisher when enabled; a nil
// publisher disables downstream emission.
func ProvideSignalPublisher(cfg *config.Config) (domrepo.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideSnapshotBuilder creates the snapshot refresh use case.
func ProvideSnapshotBuilder(
	cfg *config.Config,
	market domrepo.MarketData,
	sentiment domrepo.SentimentData,
	tech domrepo.TechnicalData,
	loader *cache.Loader,
	m domrepo.Metrics,
	log *logger.Logger,
) *usecase.SnapshotBuilder {
	return usecase.NewSnapshotBuilder(
		market, sentiment, tech, loader, m, log,
		cfg.Assets.Primary, cfg.Assets.Secondary,
		usecase.SourceTTLs{
			Prices:    cfg.Cache.TTL.Prices,
			Global:    cfg.Cache.TTL.Global,
			Sentiment: cfg.Cache.TTL.Sentiment,
			Markets:   cfg.Cache.TTL.Markets,
		},
	)
}

// ProvideDashboardUseCase creates the signal evaluation use case.
func ProvideDashboardUseCase(
	cfg *config.Config,
	builder *usecase.SnapshotBuilder,
	m domrepo.Metrics,
	publisher domrepo.SignalPublisher,
	log *logger.Logger,
) *usecase.DashboardUseCase {
	return usecase.NewDashboardUseCase(builder, signals.NewEngine(), models.ThresholdConfig{
		DominanceBreak1:     cfg.Thresholds.DominanceBreak1,
		DominanceBreak2:     cfg.Thresholds.DominanceBreak2,
		RatioBreakoutLevel:  cfg.Thresholds.RatioBreakoutLevel,
		SentimentHigh:       cfg.Thresholds.SentimentHigh,
		TechnicalOverbought: cfg.Thresholds.TechnicalOverbought,
		ConfluenceModerate:  cfg.Thresholds.ConfluenceModerate,
		ConfluenceHigh:      cfg.Thresholds.ConfluenceHigh,
	}, m, publisher, log)
}

// ProvideRotationUseCase creates the altcoin rotation use case.
func ProvideRotationUseCase(cfg *config.Config, dashboard *usecase.DashboardUseCase) *usecase.RotationUseCase {
	return usecase.NewRotationUseCase(dashboard, cfg.Rotation.TopN, cfg.Rotation.TargetAltAllocationPct)
}

// ProvideLadderUseCase creates the take-profit planner use case.
func ProvideLadderUseCase(cfg *config.Config, dashboard *usecase.DashboardUseCase) *usecase.LadderUseCase {
	return usecase.NewLadderUseCase(ladder.NewPlanner(), dashboard, usecase.DefaultLadders{
		EntryPrices:     cfg.Ladder.EntryPrices,
		StepPct:         cfg.Ladder.StepPct,
		SellPctPerStep:  cfg.Ladder.SellPctPerStep,
		MaxSteps:        cfg.Ladder.MaxSteps,
		TrailingStopPct: cfg.Ladder.TrailingStopPct,
	})
}

// ProvideHandler creates the Echo route handler.
func ProvideHandler(
	log *logger.Logger,
	dashboard *usecase.DashboardUseCase,
	rotation *usecase.RotationUseCase,
	ladderUC *usecase.LadderUseCase,
) xhttp.Handler {
	return api.NewDashboardEchoHandler(log, dashboard, rotation, ladderUC)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	store cache.Service,
	publisher domrepo.SignalPublisher,
) *server.App {
	return server.New(cfg, log, handler, store, publisher)
}
