package tinvest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
)

func TestQuotationFloat(t *testing.T) {
	assert.InDelta(t, 112.5, Quotation{Units: "112", Nano: 500000000}.Float(), 1e-9)
	assert.InDelta(t, 0.0, Quotation{}.Float(), 1e-9)
	assert.InDelta(t, -1.25, Quotation{Units: "-1", Nano: -250000000}.Float(), 1e-9)
}

func TestGetCandlesParsesResponse(t *testing.T) {
	var gotAuth string
	var gotReq candlesRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		resp := candlesResponse{Candles: []apiCandle{
			{
				Open:   Quotation{Units: "100", Nano: 0},
				High:   Quotation{Units: "101", Nano: 500000000},
				Low:    Quotation{Units: "99", Nano: 0},
				Close:  Quotation{Units: "101", Nano: 0},
				Volume: "1500",
				Time:   time.Date(2025, 7, 18, 7, 0, 0, 0, time.UTC),
			},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := New("t.secret", srv.URL, 5*time.Second, 1000)
	series, err := c.GetCandles(context.Background(), "uid-1",
		time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC),
		drepo.TF5m)
	require.NoError(t, err)

	assert.Equal(t, "Bearer t.secret", gotAuth)
	assert.Equal(t, "uid-1", gotReq.InstrumentID)
	assert.Equal(t, "CANDLE_INTERVAL_5_MIN", gotReq.Interval)

	require.Len(t, series, 1)
	assert.InDelta(t, 100.0, series[0].Open, 1e-9)
	assert.InDelta(t, 101.5, series[0].High, 1e-9)
	assert.InDelta(t, 1500.0, series[0].Volume, 1e-9)
}

func TestGetSharesParsesUniverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := sharesResponse{Instruments: []apiShare{
			{Ticker: "SBER", UID: "uid-sber", FIGI: "BBG004730N88"},
			{Ticker: "GAZP", UID: "uid-gazp", FIGI: "BBG004730RP0"},
		}}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := New("t.secret", srv.URL, 5*time.Second, 1000)
	shares, err := c.GetShares(context.Background())
	require.NoError(t, err)

	require.Len(t, shares, 2)
	assert.Equal(t, "SBER", shares[0].Ticker)
	assert.Equal(t, "uid-gazp", shares[1].UID)
}

func TestGetCandlesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-token", srv.URL, 5*time.Second, 1000)
	_, err := c.GetCandles(context.Background(), "uid-1", time.Now().Add(-time.Hour), time.Now(), drepo.TFDay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
