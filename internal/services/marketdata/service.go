package marketdata

import (
	"context"
	"errors"

	"StockCast/internal/domain/models"
	"StockCast/pkg/logger"
)

var errEmptySeries = errors.New("marketdata: empty series from provider")

const (
	ProviderDemo    = "demo"
	ProviderFinnhub = "finnhub"
)

// Service is the price/fundamentals source used by the analysis pipeline.
// With the demo provider it serves synthetic data; with a remote provider it
// fetches live data and falls back to synthetic data when the upstream fails,
// so an analysis request always gets a series.
type Service struct {
	provider string
	remote   *RemoteSource
	demo     *DemoSource
	log      *logger.Logger
}

func NewService(provider string, remote *RemoteSource, log *logger.Logger) *Service {
	if provider != ProviderFinnhub || remote == nil {
		provider = ProviderDemo
	}
	return &Service{
		provider: provider,
		remote:   remote,
		demo:     NewDemoSource(),
		log:      log,
	}
}

func (s *Service) GetHistory(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error) {
	if s.provider == ProviderFinnhub {
		series, err := s.remote.FetchHistory(ctx, symbol, lookbackDays)
		if err == nil && !series.Empty() {
			return series, nil
		}
		if err == nil {
			err = errEmptySeries
		}
		s.log.Warn("remote history unavailable, serving demo data",
			logger.String("symbol", symbol),
			logger.Error(err))
	}
	return s.demo.GenerateHistory(symbol, lookbackDays), nil
}

func (s *Service) GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	if s.provider == ProviderFinnhub {
		fund, err := s.remote.FetchFundamentals(ctx, symbol)
		if err == nil {
			return fund, nil
		}
		s.log.Warn("remote fundamentals unavailable, serving demo data",
			logger.String("symbol", symbol),
			logger.Error(err))
	}
	series := s.demo.GenerateHistory(symbol, 252)
	return s.demo.GenerateFundamentals(symbol, series), nil
}
