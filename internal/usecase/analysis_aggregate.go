package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"
)

// AnalysisAggregateUseCase runs every detector for one ticker concurrently.
// Sub-call failures land in the Errors map instead of failing the whole
// aggregate, so one bad fetch does not hide the other verdicts.
type AnalysisAggregateUseCase struct {
	analysis  *PatternAnalysisUseCase
	publisher drepo.SignalPublisher
	l         *applogger.Logger
	timeout   time.Duration
}

func NewAnalysisAggregateUseCase(analysis *PatternAnalysisUseCase, publisher drepo.SignalPublisher, l *applogger.Logger) *AnalysisAggregateUseCase {
	return &AnalysisAggregateUseCase{analysis: analysis, publisher: publisher, l: l, timeout: 60 * time.Second}
}

func (uc *AnalysisAggregateUseCase) Analyze(ctx context.Context, p PatternParams) (*models.TickerAnalysis, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.TickerAnalysis{
		Ticker:       p.Ticker,
		InstrumentID: p.UID,
		Date:         p.Date.Format(util.DateLayout),
		Timestamp:    time.Now(),
		Errors:       map[string]string{},
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 6)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.VwapLevels(ctx, p)
		ch <- item{"vwap", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.GapAndGo(ctx, p)
		ch <- item{"gap_and_go", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.FlatBreakout(ctx, p)
		ch <- item{"flat_breakout", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.BullFlag(ctx, p)
		ch <- item{"bull_flag", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.FirstPullback(ctx, p)
		ch <- item{"first_pullback", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.analysis.ABCD(ctx, p)
		ch <- item{"abcd", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			continue
		}
		switch it.name {
		case "vwap":
			res.Vwap = it.val.(*models.VwapBand)
		case "gap_and_go":
			res.GapAndGo = it.val.(*models.GapAndGoResult)
		case "flat_breakout":
			res.FlatBreakout = it.val.(map[string]*models.FlatBreakoutResult)
		case "bull_flag":
			res.BullFlag = it.val.(map[string]*models.PatternResult)
		case "first_pullback":
			res.FirstPullback = it.val.(map[string]*models.PatternResult)
		case "abcd":
			res.ABCD = it.val.(map[string]*models.PatternResult)
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}

	uc.publishTriggered(ctx, res)
	return res, nil
}

// publishTriggered emits one signal per triggered verdict. Publishing is
// best effort; a broker outage must not fail the analysis.
func (uc *AnalysisAggregateUseCase) publishTriggered(ctx context.Context, a *models.TickerAnalysis) {
	if uc.publisher == nil {
		return
	}

	emit := func(pattern, tf string, r models.PatternResult) {
		if !r.Triggered || r.EntryPrice == nil || r.StopPrice == nil || r.TriggerTime == nil {
			return
		}
		sig := &models.Signal{
			Ticker:       a.Ticker,
			InstrumentID: a.InstrumentID,
			Pattern:      pattern,
			Timeframe:    tf,
			Date:         a.Date,
			EntryPrice:   *r.EntryPrice,
			StopPrice:    *r.StopPrice,
			TargetPrice:  r.TargetPrice,
			TriggerTime:  *r.TriggerTime,
		}
		if err := uc.publisher.PublishSignal(ctx, sig); err != nil && uc.l != nil {
			uc.l.Warn("signal publish failed",
				applogger.String("ticker", a.Ticker),
				applogger.String("pattern", pattern),
				applogger.Error(err))
		}
	}

	if a.GapAndGo != nil {
		emit("gap_and_go", string(drepo.TF1m), a.GapAndGo.PatternResult)
	}
	for tf, fb := range a.FlatBreakout {
		emit("flat_top", tf, fb.FlatTop)
		emit("flat_bottom", tf, fb.FlatBottom)
	}
	for tf, r := range a.BullFlag {
		emit("bull_flag", tf, *r)
	}
	for tf, r := range a.FirstPullback {
		emit("first_pullback", tf, *r)
	}
	for tf, r := range a.ABCD {
		emit("abcd", tf, *r)
	}
}
