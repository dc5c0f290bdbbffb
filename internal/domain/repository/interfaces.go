package repository

import (
	"context"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// Instrument is one tradable share known to the market data provider.
type Instrument struct {
	Ticker string
	UID    string
	FIGI   string
}

// CandleSource fetches candles and the instrument universe from the market
// data provider. Implementations own rate limiting and retries; detectors
// never see this interface.
type CandleSource interface {
	GetCandles(ctx context.Context, instrumentID string, from, to time.Time, tf Timeframe) (models.Series, error)
	GetShares(ctx context.Context) ([]Instrument, error)
}

// CandleStream delivers intraday candle updates over a long-lived connection.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, instrumentIDs []string) error
	Read(ctx context.Context) (<-chan StreamCandle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// StreamCandle is one live candle update with its instrument attached.
type StreamCandle struct {
	InstrumentID string
	Timeframe    Timeframe
	Candle       models.Candle
}

// SignalPublisher emits triggered pattern events to downstream consumers.
type SignalPublisher interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	Close() error
}

// Metrics records operational counters for scans and detector runs.
type Metrics interface {
	RecordScan(universe, gappers int)
	RecordPattern(pattern, ticker string, triggered bool)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
