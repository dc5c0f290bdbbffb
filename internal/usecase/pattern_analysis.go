package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/services/patterns"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/services/vwap"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"
)

// ErrNoCandles marks a session with no trading data from either the store
// or the provider, for example a holiday or an unknown instrument.
var ErrNoCandles = errors.New("no candles")

// PatternAnalysisUseCase fetches session candles and runs the detectors.
// The store is an optional read-through cache in front of the provider;
// detectors themselves never touch either.
type PatternAnalysisUseCase struct {
	source   drepo.CandleSource
	store    drepo.CandleStore
	metrics  drepo.Metrics
	l        *applogger.Logger
	tickSize float64
}

func NewPatternAnalysisUseCase(source drepo.CandleSource, store drepo.CandleStore, metrics drepo.Metrics, l *applogger.Logger, tickSize float64) *PatternAnalysisUseCase {
	if tickSize <= 0 {
		tickSize = patterns.DefaultTickSize
	}
	return &PatternAnalysisUseCase{source: source, store: store, metrics: metrics, l: l, tickSize: tickSize}
}

// PatternParams identifies one instrument-session to analyze.
type PatternParams struct {
	Ticker string
	UID    string
	Date   time.Time
}

func (p PatternParams) validate() error {
	if p.Ticker == "" {
		return fmt.Errorf("ticker required")
	}
	if p.UID == "" {
		return fmt.Errorf("uid required")
	}
	return nil
}

// sessionSeries loads one session of candles, store first, provider second.
// The fetched series is validated for time ordering before any detector
// sees it.
func (uc *PatternAnalysisUseCase) sessionSeries(ctx context.Context, uid string, date time.Time, tf drepo.Timeframe) (models.Series, error) {
	from, to := util.DayBounds(date)

	if uc.store != nil {
		s, err := uc.store.GetCandles(ctx, uid, from, to, tf)
		if err == nil && len(s) > 0 {
			return s, nil
		}
		if err != nil && uc.l != nil {
			uc.l.Warn("candle store read failed, falling back to provider",
				applogger.String("instrument_id", uid),
				applogger.String("tf", string(tf)),
				applogger.Error(err))
		}
	}

	s, err := uc.source.GetCandles(ctx, uid, from, to, tf)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w for %s on %s (%s)", ErrNoCandles, uid, date.Format(util.DateLayout), tf)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	if uc.store != nil {
		if err := uc.store.StoreBatch(ctx, uid, tf, s); err != nil && uc.l != nil {
			uc.l.Warn("candle store write failed",
				applogger.String("instrument_id", uid),
				applogger.String("tf", string(tf)),
				applogger.Error(err))
		}
	}
	return s, nil
}

func (uc *PatternAnalysisUseCase) record(pattern, ticker string, trig bool, start time.Time) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.RecordPattern(pattern, ticker, trig)
	uc.metrics.RecordLatency(pattern, time.Since(start).Seconds())
}

// GapAndGo runs the gap-and-go detector on the 1m session series.
func (uc *PatternAnalysisUseCase) GapAndGo(ctx context.Context, p PatternParams) (*models.GapAndGoResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	s, err := uc.sessionSeries(ctx, p.UID, p.Date, drepo.TF1m)
	if err != nil {
		return nil, err
	}
	res := patterns.DetectGapAndGo(s)
	uc.record("gap_and_go", p.Ticker, res.Triggered, start)
	return &res, nil
}

// VwapLevels computes the session VWAP band from the 1m series.
func (uc *PatternAnalysisUseCase) VwapLevels(ctx context.Context, p PatternParams) (*models.VwapBand, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	s, err := uc.sessionSeries(ctx, p.UID, p.Date, drepo.TF1m)
	if err != nil {
		return nil, err
	}
	band, err := vwap.ComputeBand(s)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("vwap")
		}
		return nil, err
	}
	if uc.metrics != nil {
		uc.metrics.RecordLatency("vwap", time.Since(start).Seconds())
	}
	return &band, nil
}

// FlatBreakout runs both flat-breakout variants on every intraday timeframe.
func (uc *PatternAnalysisUseCase) FlatBreakout(ctx context.Context, p PatternParams) (map[string]*models.FlatBreakoutResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := make(map[string]*models.FlatBreakoutResult, 2)
	for _, tf := range drepo.IntradayTimeframes() {
		s, err := uc.sessionSeries(ctx, p.UID, p.Date, tf)
		if err != nil {
			return nil, err
		}
		res := &models.FlatBreakoutResult{
			FlatTop:    patterns.DetectFlatTop(s, uc.tickSize),
			FlatBottom: patterns.DetectFlatBottom(s, uc.tickSize),
		}
		out[string(tf)] = res
		uc.record("flat_top_"+string(tf), p.Ticker, res.FlatTop.Triggered, start)
		uc.record("flat_bottom_"+string(tf), p.Ticker, res.FlatBottom.Triggered, start)
	}
	return out, nil
}

// detectPerTimeframe runs one detector across every intraday timeframe.
func (uc *PatternAnalysisUseCase) detectPerTimeframe(ctx context.Context, p PatternParams, name string, detect func(models.Series) models.PatternResult) (map[string]*models.PatternResult, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	out := make(map[string]*models.PatternResult, 2)
	for _, tf := range drepo.IntradayTimeframes() {
		s, err := uc.sessionSeries(ctx, p.UID, p.Date, tf)
		if err != nil {
			return nil, err
		}
		res := detect(s)
		out[string(tf)] = &res
		uc.record(name+"_"+string(tf), p.Ticker, res.Triggered, start)
	}
	return out, nil
}

// BullFlag runs the bull-flag detector on every intraday timeframe.
func (uc *PatternAnalysisUseCase) BullFlag(ctx context.Context, p PatternParams) (map[string]*models.PatternResult, error) {
	return uc.detectPerTimeframe(ctx, p, "bull_flag", patterns.DetectBullFlag)
}

// FirstPullback runs the first-pullback detector on every intraday timeframe.
func (uc *PatternAnalysisUseCase) FirstPullback(ctx context.Context, p PatternParams) (map[string]*models.PatternResult, error) {
	return uc.detectPerTimeframe(ctx, p, "first_pullback", patterns.DetectFirstPullback)
}

// ABCD runs the ABCD detector on every intraday timeframe.
func (uc *PatternAnalysisUseCase) ABCD(ctx context.Context, p PatternParams) (map[string]*models.PatternResult, error) {
	return uc.detectPerTimeframe(ctx, p, "abcd", patterns.DetectABCD)
}
