package service

import (
	"context"

	"StockCast/internal/domain/models"
)

// PriceSource supplies price history and fundamentals for a symbol. It may
// fail or return an empty series; the analysis pipeline degrades gracefully.
type PriceSource interface {
	GetHistory(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error)
	GetFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

// SymbolRegistry resolves and searches listed instruments.
type SymbolRegistry interface {
	Search(query string, limit int) []models.SymbolInfo
	Get(symbol string) (models.SymbolInfo, bool)
	All() []models.SymbolInfo
}

// NarrativeGenerator turns the indicator snapshot and forecast outcome into
// human-readable text.
type NarrativeGenerator interface {
	Generate(fund *models.Fundamentals, latest models.IndicatorSnapshot, pred *models.Prediction) models.Summary
}
