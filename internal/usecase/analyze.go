package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	domservice "StockCast/internal/domain/service"
	"StockCast/internal/features"
	"StockCast/internal/forecast"
	"StockCast/internal/indicator"
	pkgcache "StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
	pkgutil "StockCast/pkg/util"
)

// ErrNoData means no price history could be obtained for the symbol from any
// source. Handlers map it to a not-found response.
var ErrNoData = errors.New("no price history available")

const (
	analysisCachePrefix = "analysis"
	minHistoryBars      = 30
	defaultLookbackDays = 252
)

// AnalyzeUseCase runs the full analysis pipeline for one symbol: history,
// indicators, features, ensemble training, projection and narrative. Results
// are cached; the pipeline runs only on cache miss.
type AnalyzeUseCase struct {
	source     domservice.PriceSource
	narrative  domservice.NarrativeGenerator
	engine     *indicator.Engine
	builder    *features.Builder
	forecaster *forecast.Forecaster
	cache      pkgcache.Service
	metrics    domrepo.Metrics
	logger     *applogger.Logger

	history   domrepo.HistoryStore // optional
	publisher domrepo.Publisher    // optional

	cacheTTL        time.Duration
	timeout         time.Duration
	defaultHorizon  int
	defaultLookback int
}

func NewAnalyzeUseCase(
	source domservice.PriceSource,
	narrative domservice.NarrativeGenerator,
	cache pkgcache.Service,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
	cacheTTL, timeout time.Duration,
) *AnalyzeUseCase {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &AnalyzeUseCase{
		source:          source,
		narrative:       narrative,
		engine:          indicator.NewEngine(),
		builder:         features.NewBuilder(),
		forecaster:      forecast.NewForecaster(),
		cache:           cache,
		metrics:         metrics,
		logger:          logger,
		cacheTTL:        cacheTTL,
		timeout:         timeout,
		defaultHorizon:  forecast.DefaultHorizon,
		defaultLookback: defaultLookbackDays,
	}
}

// SetDefaults overrides the horizon and lookback applied when a request
// leaves them unset. Non-positive values keep the built-in defaults.
func (uc *AnalyzeUseCase) SetDefaults(horizonDays, lookbackDays int) {
	if horizonDays > 0 {
		uc.defaultHorizon = horizonDays
	}
	if lookbackDays > 0 {
		uc.defaultLookback = lookbackDays
	}
}

// SetHistoryStore enables write-through persistence of fetched bars.
func (uc *AnalyzeUseCase) SetHistoryStore(s domrepo.HistoryStore) { uc.history = s }

// SetPublisher enables analysis-completed event publishing.
func (uc *AnalyzeUseCase) SetPublisher(p domrepo.Publisher) { uc.publisher = p }

type AnalyzeParams struct {
	Symbol   string
	Days     int
	Lookback int
}

func (uc *AnalyzeUseCase) Analyze(ctx context.Context, p AnalyzeParams) (*models.StockAnalysis, error) {
	symbol := pkgutil.NormalizeSymbol(p.Symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Days <= 0 {
		p.Days = uc.defaultHorizon
	}
	if p.Lookback <= 0 {
		p.Lookback = uc.defaultLookback
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	start := time.Now()

	cacheKey := pkgcache.GenerateKeyWithParams(analysisCachePrefix, symbol, p.Days, p.Lookback)
	var cached models.StockAnalysis
	if err := uc.cache.Get(ctx, cacheKey, &cached); err == nil {
		uc.metrics.RecordCacheLookup(true)
		uc.metrics.RecordAnalysis(symbol, "cached")
		cached.Cached = true
		return &cached, nil
	}
	uc.metrics.RecordCacheLookup(false)

	series, err := uc.fetchHistory(ctx, symbol, p.Lookback)
	if err != nil {
		uc.metrics.RecordError("no_data")
		uc.metrics.RecordAnalysis(symbol, "error")
		return nil, err
	}
	uc.metrics.RecordLastPrice(symbol, series.LastClose())
	uc.persistBars(series)

	set := uc.engine.CalculateAll(series)
	indicator.SanitizeSet(&set)

	matrix := uc.builder.Build(series, &set)
	pred := uc.runForecast(matrix, symbol, p.Days)

	fund := uc.fetchFundamentals(ctx, symbol)
	summary := uc.narrative.Generate(fund, set.Latest, pred)

	analysis := &models.StockAnalysis{
		Symbol:              symbol,
		GeneratedAt:         time.Now().UTC(),
		Fundamentals:        *fund,
		TechnicalIndicators: set,
		Prediction:          *pred,
		Summary:             summary,
	}

	if err := uc.cache.Set(ctx, cacheKey, analysis, uc.cacheTTL); err != nil {
		uc.logger.Warn("analysis cache set failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}
	uc.publishEvent(analysis)

	uc.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	uc.metrics.RecordAnalysis(symbol, "computed")
	uc.logger.Info("analysis computed",
		applogger.String("symbol", symbol),
		applogger.Int("bars", series.Len()),
		applogger.Int("horizon", p.Days),
		applogger.String("trend", pred.Trend),
		applogger.Duration("duration_ms", time.Since(start)))
	return analysis, nil
}

// CacheEntries reports how many items the in-process cache layer holds, or
// false when the configured cache does not expose a count.
func (uc *AnalyzeUseCase) CacheEntries() (int, bool) {
	if c, ok := uc.cache.(interface{ Entries() int }); ok {
		return c.Entries(), true
	}
	return 0, false
}

// ClearCache drops all cached analyses.
func (uc *AnalyzeUseCase) ClearCache(ctx context.Context) error {
	return uc.cache.DeleteByPattern(ctx, pkgcache.BuildPattern(analysisCachePrefix))
}

// fetchHistory asks the price source first and falls back to the last
// persisted bars when the source comes back empty.
func (uc *AnalyzeUseCase) fetchHistory(ctx context.Context, symbol string, lookback int) (*models.PriceSeries, error) {
	series, err := uc.source.GetHistory(ctx, symbol, lookback)
	if err == nil && series.Len() >= minHistoryBars {
		return series, nil
	}
	if err != nil {
		uc.logger.Warn("price source failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
	}
	if uc.history != nil {
		stored, serr := uc.history.GetLatestBars(ctx, symbol, lookback)
		if serr == nil && stored.Len() >= minHistoryBars {
			uc.logger.Info("serving persisted history",
				applogger.String("symbol", symbol),
				applogger.Int("bars", stored.Len()))
			return stored, nil
		}
	}
	if err == nil && !series.Empty() {
		// short but usable series; indicators degrade to nulls where needed
		return series, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
}

func (uc *AnalyzeUseCase) persistBars(series *models.PriceSeries) {
	if uc.history == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.history.StoreBars(ctx, series); err != nil {
			uc.logger.Warn("history persist failed",
				applogger.String("symbol", series.Symbol),
				applogger.Error(err))
		}
	}()
}

// runForecast trains and projects, degrading to an empty prediction when the
// matrix is too small. It never returns an error to the caller.
func (uc *AnalyzeUseCase) runForecast(matrix *models.FeatureMatrix, symbol string, days int) *models.Prediction {
	ens, bt, err := uc.forecaster.Train(matrix, features.TargetColumn)
	if err != nil {
		if !errors.Is(err, forecast.ErrInsufficientData) {
			uc.logger.Error("ensemble training failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
			uc.metrics.RecordError("train")
		}
		return forecast.BuildPrediction(&models.ForecastPath{}, bt)
	}
	path, err := uc.forecaster.Project(ens, matrix, features.TargetColumn, days, nil)
	if err != nil {
		uc.logger.Error("projection failed",
			applogger.String("symbol", symbol),
			applogger.Error(err))
		uc.metrics.RecordError("project")
		return forecast.BuildPrediction(&models.ForecastPath{}, bt)
	}
	return forecast.BuildPrediction(path, bt)
}

func (uc *AnalyzeUseCase) fetchFundamentals(ctx context.Context, symbol string) *models.Fundamentals {
	fund, err := uc.source.GetFundamentals(ctx, symbol)
	if err != nil || fund == nil {
		if err != nil {
			uc.logger.Warn("fundamentals fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err))
			uc.metrics.RecordError("fundamentals")
		}
		return &models.Fundamentals{Symbol: symbol}
	}
	return fund
}

func (uc *AnalyzeUseCase) publishEvent(a *models.StockAnalysis) {
	if uc.publisher == nil {
		return
	}
	ev := &models.AnalysisEvent{
		Symbol:        a.Symbol,
		Trend:         a.Prediction.Trend,
		ChangePercent: a.Prediction.ChangePercent,
		MAPE:          a.Prediction.BacktestMetrics.MAPE,
		GeneratedAt:   a.GeneratedAt,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := uc.publisher.PublishAnalysis(ctx, ev); err != nil {
			uc.logger.Warn("analysis event publish failed",
				applogger.String("symbol", ev.Symbol),
				applogger.Error(err))
		}
	}()
}
