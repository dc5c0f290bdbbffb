package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
)

type fakeSource struct {
	mu      sync.Mutex
	candles map[string]models.Series
	shares  []drepo.Instrument
	calls   int
	err     error
}

func seriesKey(uid string, day time.Time, tf drepo.Timeframe) string {
	return fmt.Sprintf("%s|%s|%s", uid, day.Format("2006-01-02"), tf)
}

func (f *fakeSource) GetCandles(_ context.Context, uid string, from, _ time.Time, tf drepo.Timeframe) (models.Series, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.candles[seriesKey(uid, from, tf)], nil
}

func (f *fakeSource) GetShares(context.Context) ([]drepo.Instrument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.shares, nil
}

type memStore struct {
	data map[string]models.Series
}

func newMemStore() *memStore { return &memStore{data: map[string]models.Series{}} }

func (m *memStore) StoreBatch(_ context.Context, uid string, tf drepo.Timeframe, candles []models.Candle) error {
	key := seriesKey(uid, candles[0].Time.Truncate(24*time.Hour), tf)
	m.data[key] = append(m.data[key], candles...)
	return nil
}

func (m *memStore) GetCandles(_ context.Context, uid string, from, _ time.Time, tf drepo.Timeframe) (models.Series, error) {
	return m.data[seriesKey(uid, from, tf)], nil
}

func (m *memStore) GetLatestNCandles(_ context.Context, uid string, n int, tf drepo.Timeframe) (models.Series, error) {
	return nil, nil
}

var testDate = time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

func sessionCandles(minutes int, base float64) models.Series {
	open := time.Date(2025, 7, 18, 7, 0, 0, 0, time.UTC)
	s := make(models.Series, 0, minutes)
	for i := 0; i < minutes; i++ {
		p := base + float64(i)*0.1
		s = append(s, models.Candle{
			Time: open.Add(time.Duration(i) * time.Minute),
			Open: p, High: p + 0.5, Low: p - 0.5, Close: p + 0.2, Volume: 100,
		})
	}
	return s
}

func TestGapAndGoUsesOneMinuteSeries(t *testing.T) {
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-1", testDate, drepo.TF1m): sessionCandles(10, 100),
	}}
	uc := NewPatternAnalysisUseCase(src, nil, nil, nil, 0.01)

	res, err := uc.GapAndGo(context.Background(), PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate})
	require.NoError(t, err)
	assert.InDelta(t, 100.5, res.FirstCandleHigh, 1e-9)
	assert.True(t, res.Triggered)
}

func TestPatternParamsValidation(t *testing.T) {
	uc := NewPatternAnalysisUseCase(&fakeSource{}, nil, nil, nil, 0.01)

	_, err := uc.GapAndGo(context.Background(), PatternParams{UID: "uid-1", Date: testDate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker")

	_, err = uc.VwapLevels(context.Background(), PatternParams{Ticker: "SBER", Date: testDate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uid")
}

func TestSessionSeriesNoCandles(t *testing.T) {
	uc := NewPatternAnalysisUseCase(&fakeSource{candles: map[string]models.Series{}}, nil, nil, nil, 0.01)

	_, err := uc.GapAndGo(context.Background(), PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candles")
}

func TestSessionSeriesRejectsUnsorted(t *testing.T) {
	s := sessionCandles(3, 100)
	s[1], s[2] = s[2], s[1]
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-1", testDate, drepo.TF1m): s,
	}}
	uc := NewPatternAnalysisUseCase(src, nil, nil, nil, 0.01)

	_, err := uc.GapAndGo(context.Background(), PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate})
	require.Error(t, err)
	var dqe *models.DataQualityError
	assert.ErrorAs(t, err, &dqe)
}

func TestSessionSeriesCachesIntoStore(t *testing.T) {
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-1", testDate, drepo.TF1m): sessionCandles(10, 100),
	}}
	store := newMemStore()
	uc := NewPatternAnalysisUseCase(src, store, nil, nil, 0.01)
	p := PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate}

	_, err := uc.GapAndGo(context.Background(), p)
	require.NoError(t, err)
	providerCalls := src.calls

	// second run is served from the store
	_, err = uc.GapAndGo(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, providerCalls, src.calls)
}

func TestFlatBreakoutCoversBothTimeframes(t *testing.T) {
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-1", testDate, drepo.TF1m): sessionCandles(10, 100),
		seriesKey("uid-1", testDate, drepo.TF5m): sessionCandles(10, 100),
	}}
	uc := NewPatternAnalysisUseCase(src, nil, nil, nil, 0.01)

	out, err := uc.FlatBreakout(context.Background(), PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate})
	require.NoError(t, err)
	require.Contains(t, out, "1m")
	require.Contains(t, out, "5m")
}

func TestAnalyzeAggregatesErrorsPerCall(t *testing.T) {
	// only 1m candles exist, so 5m-dependent detectors fail while the
	// 1m-only calls succeed
	src := &fakeSource{candles: map[string]models.Series{
		seriesKey("uid-1", testDate, drepo.TF1m): sessionCandles(10, 100),
	}}
	analysis := NewPatternAnalysisUseCase(src, nil, nil, nil, 0.01)
	agg := NewAnalysisAggregateUseCase(analysis, nil, nil)

	res, err := agg.Analyze(context.Background(), PatternParams{Ticker: "SBER", UID: "uid-1", Date: testDate})
	require.NoError(t, err)

	assert.NotNil(t, res.Vwap)
	assert.NotNil(t, res.GapAndGo)
	require.NotNil(t, res.Errors)
	assert.Contains(t, res.Errors, "flat_breakout")
	assert.Contains(t, res.Errors, "bull_flag")
	assert.Contains(t, res.Errors, "first_pullback")
	assert.Contains(t, res.Errors, "abcd")
}
