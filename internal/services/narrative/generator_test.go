package narrative

import (
	"strings"
	"testing"

	"StockCast/internal/domain/models"
)

func bullishInputs() (*models.Fundamentals, models.IndicatorSnapshot, *models.Prediction) {
	fund := &models.Fundamentals{PERatio: 15, ROE: 20, RevenueGrowth: 18}
	latest := models.IndicatorSnapshot{
		RSICurrent:   25,
		MACDCurrent:  1.2,
		MACDSignal:   0.8,
		PriceVsSMA20: 3,
	}
	pred := &models.Prediction{
		Predictions:   []float64{101, 102, 103, 104, 105, 106, 108},
		Trend:         "upward",
		ChangePercent: 8,
	}
	return fund, latest, pred
}

func TestVerdictBuyOnStrongSignals(t *testing.T) {
	g := New()
	summary := g.Generate(bullishInputs())
	// 15 + 10 + 15 + 10 + 10 + 10 + 15 = 85
	if summary.Verdict.Verdict != "BUY" {
		t.Fatalf("verdict = %q (score %d), want BUY", summary.Verdict.Verdict, summary.Verdict.Score)
	}
	if summary.Verdict.Score != 85 {
		t.Fatalf("score = %d, want 85", summary.Verdict.Score)
	}
	if summary.Verdict.Confidence != 95 {
		t.Fatalf("confidence = %v, want capped 95", summary.Verdict.Confidence)
	}
	if len(summary.Verdict.Reasons) != 5 {
		t.Fatalf("reasons truncated to %d, want 5", len(summary.Verdict.Reasons))
	}
	if summary.Verdict.Disclaimer == "" {
		t.Fatal("missing disclaimer")
	}
}

func TestVerdictSellOnWeakSignals(t *testing.T) {
	g := New()
	fund := &models.Fundamentals{PERatio: 55, RevenueGrowth: -8}
	latest := models.IndicatorSnapshot{
		RSICurrent:   82,
		MACDCurrent:  -0.5,
		MACDSignal:   0.1,
		PriceVsSMA20: -4,
	}
	pred := &models.Prediction{
		Predictions:   []float64{95, 94, 92},
		Trend:         "downward",
		ChangePercent: -7,
	}
	summary := g.Generate(fund, latest, pred)
	// -15 - 10 - 15 - 10 - 10 - 15 = -75
	if summary.Verdict.Verdict != "SELL" {
		t.Fatalf("verdict = %q (score %d), want SELL", summary.Verdict.Verdict, summary.Verdict.Score)
	}
}

func TestVerdictHoldOnMixedSignals(t *testing.T) {
	g := New()
	latest := models.IndicatorSnapshot{
		RSICurrent:   55,
		MACDCurrent:  0.3,
		MACDSignal:   0.1,
		PriceVsSMA20: 1,
	}
	summary := g.Generate(&models.Fundamentals{}, latest, &models.Prediction{})
	// 10 + 15 = 25, inside the hold band
	if summary.Verdict.Verdict != "HOLD" {
		t.Fatalf("verdict = %q (score %d), want HOLD", summary.Verdict.Verdict, summary.Verdict.Score)
	}
}

func TestTechnicalSummaryMentionsRegime(t *testing.T) {
	g := New()
	_, latest, _ := bullishInputs()
	summary := g.Generate(nil, latest, nil)
	if !strings.Contains(summary.TechnicalSummary, "oversold") {
		t.Fatalf("oversold RSI not mentioned: %q", summary.TechnicalSummary)
	}
	if !strings.Contains(summary.TechnicalSummary, "bullish momentum") {
		t.Fatalf("MACD regime not mentioned: %q", summary.TechnicalSummary)
	}
}

func TestPredictionSummaryHandlesEmpty(t *testing.T) {
	g := New()
	summary := g.Generate(nil, models.IndicatorSnapshot{}, nil)
	if summary.PredictionSummary != "Price prediction unavailable." {
		t.Fatalf("empty prediction text = %q", summary.PredictionSummary)
	}
}

func TestPredictionSummaryStatesHorizon(t *testing.T) {
	g := New()
	_, _, pred := bullishInputs()
	summary := g.Generate(nil, models.IndicatorSnapshot{}, pred)
	if !strings.Contains(summary.PredictionSummary, "7 days") {
		t.Fatalf("horizon missing: %q", summary.PredictionSummary)
	}
	if !strings.Contains(summary.PredictionSummary, "upward") {
		t.Fatalf("trend missing: %q", summary.PredictionSummary)
	}
}
