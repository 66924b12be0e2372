package repository

import (
	"context"

	"StockCast/internal/domain/models"
)

// QuoteStream is a live last-trade feed used to keep quotes fresh between
// full history fetches.
type QuoteStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits analysis-completed events for downstream consumers.
type Publisher interface {
	PublishAnalysis(ctx context.Context, ev *models.AnalysisEvent) error
	Close() error
}

// HistoryStore persists fetched daily bars so analyses can be served when the
// upstream provider is unavailable.
type HistoryStore interface {
	Init(ctx context.Context) error
	StoreBars(ctx context.Context, series *models.PriceSeries) error
	GetLatestBars(ctx context.Context, symbol string, n int) (*models.PriceSeries, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records service-level counters and latencies.
type Metrics interface {
	RecordAnalysis(symbol, outcome string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordCacheLookup(hit bool)
}
