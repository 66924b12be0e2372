package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	pkgch "StockCast/pkg/clickhouse"
	applogger "StockCast/pkg/logger"
)

const dailyBarsTable = "stockcast.daily_bars"

var dailyBarsSchema = []string{
	`CREATE DATABASE IF NOT EXISTS stockcast`,
	`CREATE TABLE IF NOT EXISTS stockcast.daily_bars (
        day    Date,
        symbol LowCardinality(String),
        open   Float64,
        high   Float64,
        low    Float64,
        close  Float64,
        vol    Float64
    )
    ENGINE = ReplacingMergeTree
    PARTITION BY toYYYYMM(day)
    ORDER BY (symbol, day)`,
}

// CHHistoryStore persists fetched daily bars in ClickHouse so analyses can be
// served from the last good history when the upstream provider is down.
type CHHistoryStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client) *CHHistoryStore {
	return &CHHistoryStore{db: ch.DB()}
}

var _ domrepo.HistoryStore = (*CHHistoryStore)(nil)

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHHistoryStore) Init(ctx context.Context) error {
	for _, stmt := range dailyBarsSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init history schema: %w", err)
		}
	}
	return nil
}

func (s *CHHistoryStore) StoreBars(ctx context.Context, series *models.PriceSeries) error {
	if series.Empty() {
		return nil
	}
	start := time.Now()
	// multi-row VALUES insert, chunked to bound statement size
	const chunkSize = 2000
	for first := 0; first < series.Len(); first += chunkSize {
		end := first + chunkSize
		if end > series.Len() {
			end = series.Len()
		}
		values := make([]string, 0, end-first)
		args := make([]interface{}, 0, (end-first)*7)
		for _, b := range series.Bars[first:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args, b.Date, series.Symbol, b.Open, b.High, b.Low, b.Close, b.Volume)
		}
		q := fmt.Sprintf("INSERT INTO %s (day, symbol, open, high, low, close, vol) VALUES %s",
			dailyBarsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse store_bars error",
					applogger.String("symbol", series.Symbol),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("store bars: %w", err)
		}
	}
	if s.l != nil {
		s.l.Debug("clickhouse store_bars ok",
			applogger.String("symbol", series.Symbol),
			applogger.Int("rows", series.Len()),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHHistoryStore) GetLatestBars(ctx context.Context, symbol string, n int) (*models.PriceSeries, error) {
	start := time.Now()
	const qtpl = `
        SELECT day, open, high, low, close, vol
        FROM %s FINAL
        WHERE symbol = ?
        ORDER BY day DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, dailyBarsTable)
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_bars query error",
				applogger.String("symbol", symbol),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.PriceBar, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse latest_bars scan error",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to oldest-first
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse latest_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return &models.PriceSeries{Symbol: symbol, Bars: tmp}, nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHHistoryStore) Close() error {
	return nil // pool managed by pkg client
}
