package usecase

import (
	"context"
	"fmt"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
)

// CandleCollector consumes the live candle stream and persists closed
// candles so intraday analyses read from the store instead of re-fetching.
type CandleCollector struct {
	stream  drepo.CandleStream
	source  drepo.CandleSource
	store   drepo.CandleStore
	metrics drepo.Metrics
	l       *applogger.Logger
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(stream drepo.CandleStream, source drepo.CandleSource, store drepo.CandleStore, metrics drepo.Metrics, l *applogger.Logger) *CandleCollector {
	return &CandleCollector{stream: stream, source: source, store: store, metrics: metrics, l: l}
}

// IsConnected returns true if the candle stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

// resolveInstruments maps configured tickers to instrument ids. The stream
// subscribes by instrument id, not ticker.
func (c *CandleCollector) resolveInstruments(ctx context.Context, tickers []string) ([]string, error) {
	shares, err := c.source.GetShares(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve instruments: %w", err)
	}
	want := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		want[t] = struct{}{}
	}
	ids := make([]string, 0, len(tickers))
	for _, sh := range shares {
		if _, ok := want[sh.Ticker]; ok {
			ids = append(ids, sh.UID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("none of %d tickers resolved to an instrument", len(tickers))
	}
	return ids, nil
}

// Start connects, subscribes and consumes until ctx is cancelled.
func (c *CandleCollector) Start(ctx context.Context, tickers []string) error {
	instrumentIDs, err := c.resolveInstruments(ctx, tickers)
	if err != nil {
		return err
	}
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, instrumentIDs); err != nil {
		return err
	}
	candleCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, candleCh, errCh)
	return nil
}

func (c *CandleCollector) consume(ctx context.Context, candleCh <-chan drepo.StreamCandle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				if c.metrics != nil {
					c.metrics.RecordError("stream")
				}
				if c.l != nil {
					c.l.Warn("candle stream error, reconnecting", applogger.Error(err))
				}
				if rerr := c.stream.Reconnect(ctx); rerr != nil {
					if c.l != nil {
						c.l.Error("candle stream reconnect failed", applogger.Error(rerr))
					}
					return
				}
				candleCh, errCh = c.stream.Read(ctx)
			}
		case sc, ok := <-candleCh:
			if !ok {
				return
			}
			if sc.InstrumentID == "" {
				continue
			}
			if err := c.store.StoreBatch(ctx, sc.InstrumentID, sc.Timeframe, []models.Candle{sc.Candle}); err != nil {
				if c.metrics != nil {
					c.metrics.RecordError("stream_store")
				}
				if c.l != nil {
					c.l.Error("store stream candle failed",
						applogger.String("instrument_id", sc.InstrumentID),
						applogger.Error(err))
				}
			}
		}
	}
}

// Stop closes the stream.
func (c *CandleCollector) Stop() error { return c.stream.Close() }
