package api

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	models "StockCast/internal/domain/models"
	domservice "StockCast/internal/domain/service"
	"StockCast/internal/service/ratelimit"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
)

// AnalysisEchoHandler exposes the analysis pipeline over HTTP.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analyze  *usecase.AnalyzeUseCase
	registry domservice.SymbolRegistry
	rl       *ratelimit.Limiter
	started  time.Time
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyze *usecase.AnalyzeUseCase, registry domservice.SymbolRegistry) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:   logger,
		analyze:  analyze,
		registry: registry,
		rl:       ratelimit.New(),
		started:  time.Now(),
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/stock/:symbol", h.Stock)
	g.GET("/search", h.Search)
	g.GET("/symbols", h.Symbols)
	g.GET("/health", h.Health)
	g.POST("/cache/clear", h.CacheClear)
}

func (h *AnalysisEchoHandler) Stock(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// retraining is expensive; limit per client+symbol
	if !h.rl.Allow(c.RealIP()+":"+req.Symbol, 5, 1) {
		h.logger.Warn("analysis rate_limited",
			xlogger.String("remote", c.RealIP()),
			xlogger.String("symbol", req.Symbol))
		return xhttp.DataResponse(c, 429, "rate limited")
	}

	res, err := h.analyze.Analyze(c.Request().Context(), usecase.AnalyzeParams{
		Symbol:   req.Symbol,
		Days:     req.Days,
		Lookback: req.Lookback,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no data for symbol %s", req.Symbol).WithError(err))
		}
		h.logger.Error("analyze usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Search(c echo.Context) error {
	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	results := h.registry.Search(req.Query, req.Limit)
	return xhttp.ListResponse(c, results, int64(len(results)))
}

func (h *AnalysisEchoHandler) Symbols(c echo.Context) error {
	all := h.registry.All()
	return xhttp.ListResponse(c, all, int64(len(all)))
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	health := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"symbols":        len(h.registry.All()),
	}
	if entries, ok := h.analyze.CacheEntries(); ok {
		health["cache"] = map[string]interface{}{"entries": entries}
	}
	return xhttp.SuccessResponse(c, health)
}

func (h *AnalysisEchoHandler) CacheClear(c echo.Context) error {
	// query params are not bound on POST, read the category directly
	category := c.QueryParam("category")
	if category == "" {
		category = "analysis"
	}
	if category != "analysis" {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_ONEOF",
			Field:   "category",
			Message: "category must be one of [analysis]",
		}})
	}
	if err := h.analyze.ClearCache(c.Request().Context()); err != nil {
		h.logger.Error("cache clear error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "cleared", "category": category})
}
