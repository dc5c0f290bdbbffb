package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/services/scanner"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"
)

// ScanUseCase assembles the instrument universe, fetches its daily candles
// and runs the gap scanner over it.
type ScanUseCase struct {
	source  drepo.CandleSource
	store   drepo.CandleStore
	metrics drepo.Metrics
	l       *applogger.Logger
	tickers []string
}

func NewScanUseCase(source drepo.CandleSource, store drepo.CandleStore, metrics drepo.Metrics, l *applogger.Logger, tickers []string) *ScanUseCase {
	return &ScanUseCase{source: source, store: store, metrics: metrics, l: l, tickers: tickers}
}

// ScanParams configures one gap scan run.
type ScanParams struct {
	Date   time.Time
	MinGap float64
}

// Universe returns the instruments the scan covers. With configured
// tickers, only those shares are scanned; otherwise the whole tradable
// share list.
func (uc *ScanUseCase) Universe(ctx context.Context) ([]drepo.Instrument, error) {
	shares, err := uc.source.GetShares(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	if len(uc.tickers) == 0 {
		return shares, nil
	}

	wanted := make(map[string]bool, len(uc.tickers))
	for _, t := range uc.tickers {
		wanted[t] = true
	}
	out := make([]drepo.Instrument, 0, len(uc.tickers))
	for _, s := range shares {
		if wanted[s.Ticker] {
			out = append(out, s)
		}
	}
	return out, nil
}

// dailyCandles fetches previous-day and today daily candles for one
// instrument. Missing days come back nil; the scanner skips those.
func (uc *ScanUseCase) dailyCandles(ctx context.Context, uid string, date time.Time) (prev, today *models.Candle) {
	prevDay := util.PrevTradingDay(date)

	fetch := func(day time.Time, last bool) *models.Candle {
		from, to := util.DayBounds(day)
		var s models.Series
		var err error
		if uc.store != nil {
			s, err = uc.store.GetCandles(ctx, uid, from, to, drepo.TFDay)
		}
		if len(s) == 0 {
			s, err = uc.source.GetCandles(ctx, uid, from, to, drepo.TFDay)
			if err != nil {
				if uc.l != nil {
					uc.l.Warn("daily candle fetch failed",
						applogger.String("instrument_id", uid),
						applogger.Time("day", day),
						applogger.Error(err))
				}
				if uc.metrics != nil {
					uc.metrics.RecordError("daily_fetch")
				}
				return nil
			}
			if uc.store != nil && len(s) > 0 {
				_ = uc.store.StoreBatch(ctx, uid, drepo.TFDay, s)
			}
		}
		if len(s) == 0 {
			return nil
		}
		if last {
			c := s[len(s)-1]
			return &c
		}
		c := s[0]
		return &c
	}

	// previous close comes from the last candle of the prior day, the
	// session open from the first candle of the scan date
	prev = fetch(prevDay, true)
	if prev == nil {
		return nil, nil
	}
	today = fetch(date, false)
	return prev, today
}

// Scan runs the daily gap scan and returns gappers sorted by gap desc.
func (uc *ScanUseCase) Scan(ctx context.Context, p ScanParams) ([]models.GapRecord, error) {
	if p.MinGap < 0 {
		return nil, fmt.Errorf("min_gap must be non-negative")
	}
	start := time.Now()

	instruments, err := uc.Universe(ctx)
	if err != nil {
		return nil, err
	}

	universe := make([]models.InstrumentDaily, 0, len(instruments))
	for _, inst := range instruments {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		prev, today := uc.dailyCandles(ctx, inst.UID, p.Date)
		universe = append(universe, models.InstrumentDaily{
			Ticker:       inst.Ticker,
			InstrumentID: inst.UID,
			PrevDay:      prev,
			Today:        today,
		})
	}

	records := scanner.ScanGaps(universe, p.MinGap)
	if uc.metrics != nil {
		uc.metrics.RecordScan(len(universe), len(records))
		uc.metrics.RecordLatency("gap_scan", time.Since(start).Seconds())
	}
	if uc.l != nil {
		uc.l.Info("gap scan finished",
			applogger.Int("universe", len(universe)),
			applogger.Int("gappers", len(records)),
			applogger.Float64("min_gap", p.MinGap),
			applogger.Duration("duration_ms", time.Since(start)))
	}
	return records, nil
}
