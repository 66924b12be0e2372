package di

import (
	"context"
	"fmt"
	"time"

	domrepo "StockCast/internal/domain/repository"
	domservice "StockCast/internal/domain/service"
	"StockCast/internal/handler/api"
	internalrepo "StockCast/internal/repository"
	"StockCast/internal/services/marketdata"
	"StockCast/internal/services/narrative"
	"StockCast/internal/services/registry"
	"StockCast/internal/usecase"
	pkgcache "StockCast/pkg/cache"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	pkgkafka "StockCast/pkg/kafka"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/metrics"
	"StockCast/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideCache builds the analysis cache. With Redis enabled this is a
// layered memory+Redis cache; otherwise an in-process memory cache.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	memSize := cfg.Cache.MemoryMaxSize
	if memSize <= 0 {
		memSize = 1000
	}

	if !cfg.Cache.Redis.Enabled {
		return pkgcache.NewMemoryCache(pkgcache.WithMemoryMaxSize(memSize)), nil
	}

	redisCache, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}

	return pkgcache.NewLayeredCache(redisCache, pkgcache.WithLayeredMemorySize(memSize)), nil
}

// ProvideClickHouseClient creates the bar-history ClickHouse client.
// Returns nil when ClickHouse is disabled; the pipeline then runs without
// the persistence fallback.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideHistoryStore creates the daily-bar store on top of ClickHouse.
func ProvideHistoryStore(chClient *pkgch.Client, log *applogger.Logger) (domrepo.HistoryStore, error) {
	if chClient == nil {
		return nil, nil
	}
	store := internalrepo.NewCHHistoryStore(chClient)
	store.SetLogger(log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("history store init: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the analysis-event publisher.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvidePriceSource builds the market-data source. The remote provider is
// only constructed for "finnhub"; the service falls back to demo data when
// the remote call fails.
func ProvidePriceSource(cfg *config.Config, log *applogger.Logger) domservice.PriceSource {
	var remote *marketdata.RemoteSource
	if cfg.MarketData.Provider == marketdata.ProviderFinnhub {
		remote = marketdata.NewRemoteSource(cfg.MarketData.BaseURL, cfg.MarketData.APIKey, cfg.MarketData.Timeout)
	}
	return marketdata.NewService(cfg.MarketData.Provider, remote, log)
}

// ProvideQuoteStream creates the live quote stream, or nil when disabled.
func ProvideQuoteStream(cfg *config.Config, log *applogger.Logger) domrepo.QuoteStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return marketdata.NewStream(
		cfg.MarketData.APIKey,
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		log,
	)
}

// ProvideRegistry loads the symbol registry.
func ProvideRegistry(cfg *config.Config) (domservice.SymbolRegistry, error) {
	reg, err := registry.New(cfg.Registry.SymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("symbol registry: %w", err)
	}
	return reg, nil
}

// ProvideNarrative creates the plain-language summary generator.
func ProvideNarrative() domservice.NarrativeGenerator {
	return narrative.New()
}

// ProvideAnalyzeUseCase assembles the analysis pipeline.
func ProvideAnalyzeUseCase(
	cfg *config.Config,
	source domservice.PriceSource,
	nar domservice.NarrativeGenerator,
	cacheSvc pkgcache.Service,
	m domrepo.Metrics,
	log *applogger.Logger,
	history domrepo.HistoryStore,
	publisher domrepo.Publisher,
) *usecase.AnalyzeUseCase {
	uc := usecase.NewAnalyzeUseCase(source, nar, cacheSvc, m, log, cfg.Analysis.CacheTTL, cfg.Analysis.Timeout)
	uc.SetDefaults(cfg.Analysis.HorizonDays, cfg.Analysis.LookbackDays)
	if history != nil {
		uc.SetHistoryStore(history)
	}
	if publisher != nil {
		uc.SetPublisher(publisher)
	}
	return uc
}

// ProvideHandler creates the Echo HTTP handler.
func ProvideHandler(log *applogger.Logger, uc *usecase.AnalyzeUseCase, reg domservice.SymbolRegistry) xhttp.Handler {
	return api.NewAnalysisEchoHandler(log, uc, reg)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	stream domrepo.QuoteStream,
	m domrepo.Metrics,
	chClient *pkgch.Client,
	publisher domrepo.Publisher,
) *server.App {
	return server.New(cfg, log, handler, stream, m, chClient, publisher)
}
