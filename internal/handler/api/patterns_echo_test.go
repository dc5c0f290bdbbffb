package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	icache "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/cache"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/usecase"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	candles map[string]models.Series
	calls   int
}

func seriesKey(uid string, day time.Time, tf drepo.Timeframe) string {
	return fmt.Sprintf("%s|%s|%s", uid, day.Format("2006-01-02"), tf)
}

func (f *fakeSource) GetCandles(ctx context.Context, uid string, from, to time.Time, tf drepo.Timeframe) (models.Series, error) {
	f.mu.Lock()
	f.calls++
	s := f.candles[seriesKey(uid, from, tf)]
	f.mu.Unlock()
	return s, nil
}

func (f *fakeSource) GetShares(ctx context.Context) ([]drepo.Instrument, error) {
	return []drepo.Instrument{{Ticker: "SBER", UID: "uid-sber", FIGI: "BBG004730N88"}}, nil
}

func sessionCandles(minutes int, base float64, day time.Time, step time.Duration) models.Series {
	open := day.Add(7 * time.Hour)
	s := make(models.Series, minutes)
	for i := 0; i < minutes; i++ {
		px := base + 0.1*float64(i)
		s[i] = models.Candle{
			Time:   open.Add(time.Duration(i) * step),
			Open:   px,
			High:   px + 0.5,
			Low:    px - 0.2,
			Close:  px + 0.3,
			Volume: 1000,
		}
	}
	return s
}

func newTestHandler(t *testing.T, src *fakeSource) *PatternsEchoHandler {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Output: "stderr"})
	require.NoError(t, err)
	analysis := usecase.NewPatternAnalysisUseCase(src, nil, nil, l, 0.01)
	agg := usecase.NewAnalysisAggregateUseCase(analysis, nil, l)
	scan := usecase.NewScanUseCase(src, nil, nil, l, []string{"SBER"})
	return NewPatternsEchoHandler(l, analysis, agg, scan)
}

func doRequest(h *PatternsEchoHandler, target string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestGapAndGoEndpoint(t *testing.T) {
	day := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-sber", day, drepo.TF1m): sessionCandles(30, 100, day, time.Minute),
	}}
	h := newTestHandler(t, src)

	rec := doRequest(h, "/api/gap-and-go?ticker=SBER&uid=uid-sber&date=2025-07-18")
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusOK, env.Status)

	var res models.GapAndGoResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.InDelta(t, 100.5, res.FirstCandleHigh, 1e-9)
	assert.True(t, res.Triggered)
}

func TestPatternEndpointValidation(t *testing.T) {
	h := newTestHandler(t, &fakeSource{candles: map[string]models.Series{}})

	rec := doRequest(h, "/api/gap-and-go?uid=uid-sber")
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusBadRequest, env.Status)
}

func TestPatternEndpointNoCandles(t *testing.T) {
	h := newTestHandler(t, &fakeSource{candles: map[string]models.Series{}})

	rec := doRequest(h, "/api/bull-flag?ticker=NOPE&uid=uid-nope&date=2025-07-18")
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, env.Status)
	assert.Contains(t, string(env.Data), "no candles")
}

func TestPatternEndpointCache(t *testing.T) {
	day := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-sber", day, drepo.TF1m): sessionCandles(30, 100, day, time.Minute),
	}}
	h := newTestHandler(t, src)
	h.SetCache(icache.NewMemoryCache(), time.Minute)

	first := doRequest(h, "/api/vwap-levels?ticker=SBER&uid=uid-sber&date=2025-07-18")
	require.Equal(t, http.StatusOK, first.Code)
	callsAfterFirst := src.calls

	second := doRequest(h, "/api/vwap-levels?ticker=SBER&uid=uid-sber&date=2025-07-18")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, callsAfterFirst, src.calls, "cached response must not re-fetch candles")
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestAnalysisEndpoint(t *testing.T) {
	day := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-sber", day, drepo.TF1m): sessionCandles(60, 100, day, time.Minute),
		seriesKey("uid-sber", day, drepo.TF5m): sessionCandles(24, 100, day, 5*time.Minute),
	}}
	h := newTestHandler(t, src)

	rec := doRequest(h, "/api/analysis?ticker=SBER&uid=uid-sber&date=2025-07-18")
	require.Equal(t, http.StatusOK, rec.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusOK, env.Status)

	var res models.TickerAnalysis
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "SBER", res.Ticker)
	assert.Equal(t, "2025-07-18", res.Date)
	require.NotNil(t, res.GapAndGo)
	require.NotNil(t, res.Vwap)
	assert.Contains(t, res.BullFlag, "1m")
	assert.Contains(t, res.BullFlag, "5m")
	assert.Empty(t, res.Errors)
}

func TestRateLimit(t *testing.T) {
	day := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-sber", day, drepo.TFDay): {
			{Time: day.Add(7 * time.Hour), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1e6},
		},
	}}
	h := newTestHandler(t, src)

	var limited bool
	for i := 0; i < 5; i++ {
		rec := doRequest(h, "/api/gap-scan?date=2025-07-18")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst of gap-scan requests should hit the limiter")
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, &fakeSource{candles: map[string]models.Series{}})
	rec := doRequest(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
