package repository

import (
	"context"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// Timeframe represents candle resolution buckets.
type Timeframe string

const (
	TFDay Timeframe = "day"
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
)

// CandleStore provides persistence for fetched session candles so repeated
// analyses of a finished session do not re-hit the market data provider.
type CandleStore interface {
	StoreBatch(ctx context.Context, instrumentID string, tf Timeframe, candles []models.Candle) error
	GetCandles(ctx context.Context, instrumentID string, from, to time.Time, tf Timeframe) (models.Series, error)
	GetLatestNCandles(ctx context.Context, instrumentID string, n int, tf Timeframe) (models.Series, error)
}
