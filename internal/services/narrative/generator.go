package narrative

import (
	"fmt"
	"math"
	"strings"

	"StockCast/internal/domain/models"
)

const disclaimer = "This is a model-generated recommendation based on historical data and should not be considered as financial advice. Please conduct your own research and consult with a financial advisor before making investment decisions."

// Generator produces rule-based analysis text and a scored buy/hold/sell
// verdict from the indicator snapshot, fundamentals and forecast outcome.
type Generator struct{}

func New() *Generator { return &Generator{} }

func (g *Generator) Generate(fund *models.Fundamentals, latest models.IndicatorSnapshot, pred *models.Prediction) models.Summary {
	if fund == nil {
		fund = &models.Fundamentals{}
	}
	return models.Summary{
		TechnicalSummary:   technicalSummary(latest),
		FundamentalSummary: fundamentalSummary(fund),
		PredictionSummary:  predictionSummary(pred),
		Verdict:            verdict(fund, latest, pred),
	}
}

func technicalSummary(latest models.IndicatorSnapshot) string {
	var parts []string

	switch {
	case latest.RSICurrent > 70:
		parts = append(parts, fmt.Sprintf("RSI at %.1f indicates overbought conditions, suggesting potential downward pressure.", latest.RSICurrent))
	case latest.RSICurrent < 30:
		parts = append(parts, fmt.Sprintf("RSI at %.1f indicates oversold conditions, suggesting potential upward reversal.", latest.RSICurrent))
	default:
		parts = append(parts, fmt.Sprintf("RSI at %.1f is in neutral territory.", latest.RSICurrent))
	}

	if latest.MACDCurrent > latest.MACDSignal {
		parts = append(parts, "MACD shows bullish momentum with the line above signal.")
	} else {
		parts = append(parts, "MACD shows bearish momentum with the line below signal.")
	}

	if latest.PriceVsSMA20 > 5 {
		parts = append(parts, fmt.Sprintf("Price is %.1f%% above 20-day SMA, showing strong upward trend.", latest.PriceVsSMA20))
	} else if latest.PriceVsSMA20 < -5 {
		parts = append(parts, fmt.Sprintf("Price is %.1f%% below 20-day SMA, indicating weakness.", math.Abs(latest.PriceVsSMA20)))
	}

	return strings.Join(parts, " ")
}

func fundamentalSummary(f *models.Fundamentals) string {
	var parts []string

	if f.PERatio > 0 {
		switch {
		case f.PERatio < 15:
			parts = append(parts, fmt.Sprintf("P/E ratio of %.1f suggests the stock may be undervalued.", f.PERatio))
		case f.PERatio > 30:
			parts = append(parts, fmt.Sprintf("P/E ratio of %.1f indicates premium valuation.", f.PERatio))
		default:
			parts = append(parts, fmt.Sprintf("P/E ratio of %.1f is within reasonable range.", f.PERatio))
		}
	}

	if f.ROE > 15 {
		parts = append(parts, fmt.Sprintf("Strong ROE of %.1f%% indicates efficient use of equity.", f.ROE))
	} else if f.ROE > 0 {
		parts = append(parts, fmt.Sprintf("ROE of %.1f%% is moderate.", f.ROE))
	}

	if f.RevenueGrowth > 15 {
		parts = append(parts, fmt.Sprintf("Revenue growth of %.1f%% shows strong business expansion.", f.RevenueGrowth))
	} else if f.RevenueGrowth < 0 {
		parts = append(parts, fmt.Sprintf("Revenue declined by %.1f%%, which is concerning.", math.Abs(f.RevenueGrowth)))
	}

	if f.DebtToEquity > 2 {
		parts = append(parts, fmt.Sprintf("High debt-to-equity ratio of %.1f indicates elevated financial risk.", f.DebtToEquity))
	} else if f.DebtToEquity > 0 && f.DebtToEquity < 0.5 {
		parts = append(parts, "Low debt levels indicate strong financial health.")
	}

	if len(parts) == 0 {
		return "Fundamental analysis unavailable."
	}
	return strings.Join(parts, " ")
}

func predictionSummary(pred *models.Prediction) string {
	if pred == nil || len(pred.Predictions) == 0 {
		return "Price prediction unavailable."
	}
	horizon := len(pred.Predictions)
	if pred.Trend == "upward" {
		return fmt.Sprintf("Model predicts upward movement of approximately %.1f%% over the next %d days.", pred.ChangePercent, horizon)
	}
	return fmt.Sprintf("Model predicts downward movement of approximately %.1f%% over the next %d days.", math.Abs(pred.ChangePercent), horizon)
}

func verdict(f *models.Fundamentals, latest models.IndicatorSnapshot, pred *models.Prediction) models.Verdict {
	score := 0
	var reasons []string

	// technical component
	if latest.RSICurrent > 0 && latest.RSICurrent < 30 {
		score += 15
		reasons = append(reasons, "Oversold RSI suggests buying opportunity")
	} else if latest.RSICurrent > 70 {
		score -= 15
		reasons = append(reasons, "Overbought RSI suggests caution")
	}

	if latest.MACDCurrent > latest.MACDSignal {
		score += 10
		reasons = append(reasons, "Bullish MACD crossover")
	} else {
		score -= 10
		reasons = append(reasons, "Bearish MACD signal")
	}

	if latest.PriceVsSMA20 > 0 {
		score += 15
		reasons = append(reasons, "Price above 20-day moving average")
	} else {
		score -= 15
		reasons = append(reasons, "Price below 20-day moving average")
	}

	// fundamental component
	if f.PERatio > 0 && f.PERatio < 20 {
		score += 10
		reasons = append(reasons, "Attractive valuation")
	} else if f.PERatio > 40 {
		score -= 10
		reasons = append(reasons, "High valuation concerns")
	}

	if f.ROE > 15 {
		score += 10
		reasons = append(reasons, "Strong return on equity")
	}

	if f.RevenueGrowth > 10 {
		score += 10
		reasons = append(reasons, "Strong revenue growth")
	} else if f.RevenueGrowth < 0 {
		score -= 10
		reasons = append(reasons, "Declining revenues")
	}

	// forecast component
	if pred != nil {
		if pred.Trend == "upward" && pred.ChangePercent > 5 {
			score += 15
			reasons = append(reasons, "Model predicts significant upside")
		} else if pred.Trend == "downward" && pred.ChangePercent < -5 {
			score -= 15
			reasons = append(reasons, "Model predicts significant downside")
		}
	}

	var call string
	var confidence float64
	switch {
	case score >= 40:
		call = "BUY"
		confidence = math.Min(float64(70+(score-40)), 95)
	case score <= -40:
		call = "SELL"
		confidence = math.Min(float64(70+(-score-40)), 95)
	default:
		call = "HOLD"
		confidence = 60 + math.Abs(float64(score))/2
	}

	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return models.Verdict{
		Verdict:    call,
		Confidence: math.Round(confidence*10) / 10,
		Score:      score,
		Reasons:    reasons,
		Disclaimer: disclaimer,
	}
}
