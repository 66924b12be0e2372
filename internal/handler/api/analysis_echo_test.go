package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"StockCast/internal/services/marketdata"
	"StockCast/internal/services/narrative"
	"StockCast/internal/services/registry"
	"StockCast/internal/usecase"
	pkgcache "StockCast/pkg/cache"
	applogger "StockCast/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordAnalysis(string, string)   {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
func (nopMetrics) RecordCacheLookup(bool)          {}

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	reg, err := registry.New("")
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	uc := usecase.NewAnalyzeUseCase(
		marketdata.NewService(marketdata.ProviderDemo, nil, l),
		narrative.New(),
		pkgcache.NewMemoryCache(),
		nopMetrics{},
		l,
		time.Minute,
		time.Minute,
	)
	e := echo.New()
	NewAnalysisEchoHandler(l, uc, reg).RegisterRoutes(e)
	return e
}

// Responses use the envelope {status, message, data} with HTTP 200 at the
// transport level; the logical status lives in the body.
type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, e *echo.Echo, method, target string) envelope {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return env
}

func TestHealthReportsCacheStats(t *testing.T) {
	e := newTestRouter(t)
	env := doRequest(t, e, "GET", "/api/health")
	if env.Status != 200 {
		t.Fatalf("status = %d, want 200", env.Status)
	}
	var body struct {
		Status  string `json:"status"`
		Symbols int    `json:"symbols"`
		Cache   *struct {
			Entries int `json:"entries"`
		} `json:"cache"`
	}
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode health data: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("health status = %q", body.Status)
	}
	if body.Symbols == 0 {
		t.Fatal("health reports zero registry symbols")
	}
	if body.Cache == nil {
		t.Fatal("health missing cache stats")
	}
	if body.Cache.Entries != 0 {
		t.Fatalf("fresh cache entries = %d, want 0", body.Cache.Entries)
	}
}

func TestCacheClearValidatesCategory(t *testing.T) {
	e := newTestRouter(t)

	env := doRequest(t, e, "POST", "/api/cache/clear?category=everything")
	if env.Status != 400 {
		t.Fatalf("unknown category status = %d, want 400", env.Status)
	}

	env = doRequest(t, e, "POST", "/api/cache/clear")
	if env.Status != 200 {
		t.Fatalf("default clear status = %d, want 200", env.Status)
	}
	var body map[string]string
	if err := json.Unmarshal(env.Data, &body); err != nil {
		t.Fatalf("decode clear data: %v", err)
	}
	if body["status"] != "cleared" || body["category"] != "analysis" {
		t.Fatalf("clear body = %v", body)
	}
}
