package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	pkghttp "StockCast/pkg/http"
	"StockCast/pkg/util"
)

// RemoteSource fetches daily candles and company metrics from a Finnhub-style
// REST API.
type RemoteSource struct {
	baseURL string
	apiKey  string
	client  *pkghttp.Client
	now     func() time.Time
}

func NewRemoteSource(baseURL, apiKey string, timeout time.Duration) *RemoteSource {
	return &RemoteSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  pkghttp.NewClient(pkghttp.WithTimeout(timeout)),
		now:     time.Now,
	}
}

type candleResponse struct {
	Status  string    `json:"s"`
	Times   []int64   `json:"t"`
	Opens   []float64 `json:"o"`
	Highs   []float64 `json:"h"`
	Lows    []float64 `json:"l"`
	Closes  []float64 `json:"c"`
	Volumes []float64 `json:"v"`
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
}

type profileResponse struct {
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Industry string `json:"finnhubIndustry"`
}

type metricResponse struct {
	Metric map[string]float64 `json:"metric"`
}

// FetchHistory pulls daily candles covering the requested lookback window.
func (r *RemoteSource) FetchHistory(ctx context.Context, symbol string, lookbackDays int) (*models.PriceSeries, error) {
	to := r.now().UTC()
	from := to.AddDate(0, 0, -util.CalendarSpanDays(lookbackDays))

	var resp candleResponse
	err := r.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method: pkghttp.MethodGet,
		URL:    r.baseURL + "/stock/candle",
		QueryParams: map[string][]string{
			"symbol":     {util.NormalizeSymbol(symbol)},
			"resolution": {"D"},
			"from":       {strconv.FormatInt(from.Unix(), 10)},
			"to":         {strconv.FormatInt(to.Unix(), 10)},
			"token":      {r.apiKey},
		},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("fetch candles %s: %w", symbol, err)
	}
	if resp.Status != "ok" || len(resp.Times) == 0 {
		return nil, fmt.Errorf("fetch candles %s: no data (status %q)", symbol, resp.Status)
	}

	n := len(resp.Times)
	series := &models.PriceSeries{Symbol: util.NormalizeSymbol(symbol), Bars: make([]models.PriceBar, 0, n)}
	for i := 0; i < n; i++ {
		if i >= len(resp.Opens) || i >= len(resp.Highs) || i >= len(resp.Lows) || i >= len(resp.Closes) {
			break
		}
		var vol float64
		if i < len(resp.Volumes) {
			vol = resp.Volumes[i]
		}
		series.Bars = append(series.Bars, models.PriceBar{
			Date:   time.Unix(resp.Times[i], 0).UTC(),
			Open:   resp.Opens[i],
			High:   resp.Highs[i],
			Low:    resp.Lows[i],
			Close:  resp.Closes[i],
			Volume: vol,
		})
	}
	if series.Len() > lookbackDays {
		series.Bars = series.Bars[series.Len()-lookbackDays:]
	}
	return series, nil
}

// FetchFundamentals combines the quote, profile and metric endpoints into one
// snapshot. Partial upstream failures leave the affected fields zeroed.
func (r *RemoteSource) FetchFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	sym := util.NormalizeSymbol(symbol)
	f := &models.Fundamentals{Symbol: sym}

	var quote quoteResponse
	if err := r.get(ctx, "/quote", sym, nil, &quote); err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}
	f.CMP = quote.Current
	f.PreviousClose = quote.PrevClose
	f.Open = quote.Open
	f.DayHigh = quote.High
	f.DayLow = quote.Low
	f.Change = quote.Change
	f.ChangePercent = quote.ChangePercent

	var profile profileResponse
	if err := r.get(ctx, "/stock/profile2", sym, nil, &profile); err == nil {
		f.Name = profile.Name
		f.Industry = profile.Industry
	}

	var metrics metricResponse
	if err := r.get(ctx, "/stock/metric", sym, map[string]string{"metric": "all"}, &metrics); err == nil {
		m := metrics.Metric
		f.PERatio = m["peBasicExclExtraTTM"]
		f.PriceToBook = m["pbAnnual"]
		f.DividendYield = m["dividendYieldIndicatedAnnual"]
		f.EPS = m["epsBasicExclExtraItemsTTM"]
		f.Beta = m["beta"]
		f.Week52High = m["52WeekHigh"]
		f.Week52Low = m["52WeekLow"]
		f.RevenueGrowth = m["revenueGrowthTTMYoy"]
		f.ProfitMargin = m["netProfitMarginTTM"]
		f.ROE = m["roeTTM"]
		f.DebtToEquity = m["totalDebt/totalEquityAnnual"]
		f.MarketCap = m["marketCapitalization"]
	}
	return f, nil
}

func (r *RemoteSource) get(ctx context.Context, path, symbol string, extra map[string]string, dest interface{}) error {
	params := map[string][]string{
		"symbol": {symbol},
		"token":  {r.apiKey},
	}
	for k, v := range extra {
		params[k] = []string{v}
	}
	return r.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:      pkghttp.MethodGet,
		URL:         r.baseURL + path,
		QueryParams: params,
	}, dest)
}
