package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/report"
	applogger "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/logger"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/queue"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/util"
)

// analyzeConcurrency bounds parallel per-ticker aggregates during a run.
const analyzeConcurrency = 4

// Orchestrator drives the daily flow: gap scan, per-gapper analysis,
// report files. With a queue attached, scheduled runs go through it so
// the queue's retry policy covers the whole run.
type Orchestrator struct {
	scan      *ScanUseCase
	aggregate *AnalysisAggregateUseCase
	reporter  *report.Writer
	queue     queue.QueueService
	l         *applogger.Logger
	minGap    float64
	runAt     string
	loc       *time.Location
}

func NewOrchestrator(scan *ScanUseCase, aggregate *AnalysisAggregateUseCase, reporter *report.Writer, q queue.QueueService, l *applogger.Logger, minGap float64, runAt string) *Orchestrator {
	// the exchange session is scheduled in Moscow time
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return &Orchestrator{
		scan:      scan,
		aggregate: aggregate,
		reporter:  reporter,
		queue:     q,
		l:         l,
		minGap:    minGap,
		runAt:     runAt,
		loc:       loc,
	}
}

// ScanDayPayload is the queued form of one daily run.
type ScanDayPayload struct {
	Date   string  `json:"date"`
	MinGap float64 `json:"min_gap"`
}

// RunOnce executes the full flow for one trade date. A non-positive
// minGap falls back to the configured threshold.
func (o *Orchestrator) RunOnce(ctx context.Context, date time.Time, minGap float64) error {
	if minGap <= 0 {
		minGap = o.minGap
	}
	dateStr := date.Format(util.DateLayout)

	gaps, err := o.scan.Scan(ctx, ScanParams{Date: date, MinGap: minGap})
	if err != nil {
		return fmt.Errorf("gap scan: %w", err)
	}

	gappers := make([]models.GapRecord, 0, len(gaps))
	for _, g := range gaps {
		if g.Fallback {
			if o.l != nil {
				o.l.Info("no gapper cleared threshold, best candidate",
					applogger.String("ticker", g.Ticker),
					applogger.Float64("gap", g.Gap))
			}
			continue
		}
		gappers = append(gappers, g)
	}
	if len(gappers) == 0 {
		if o.l != nil {
			o.l.Info("no gappers found", applogger.String("date", dateStr))
		}
		return nil
	}

	analyses := make([]*models.TickerAnalysis, len(gappers))
	sem := make(chan struct{}, analyzeConcurrency)
	var wg sync.WaitGroup
	for i, g := range gappers {
		wg.Add(1)
		go func(i int, g models.GapRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			a, err := o.aggregate.Analyze(ctx, PatternParams{Ticker: g.Ticker, UID: g.InstrumentID, Date: date})
			if err != nil {
				if o.l != nil {
					o.l.Error("gapper analysis failed",
						applogger.String("ticker", g.Ticker),
						applogger.Error(err))
				}
				return
			}
			analyses[i] = a
		}(i, g)
	}
	wg.Wait()

	rows := o.reporter.BuildRows(dateStr, gappers, analyses)
	if err := o.reporter.Write(dateStr, rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// trigger starts one run, through the queue when available.
func (o *Orchestrator) trigger(ctx context.Context, date time.Time) {
	if o.queue != nil {
		payload := ScanDayPayload{Date: date.Format(util.DateLayout), MinGap: o.minGap}
		if err := o.queue.PublishMessage(ctx, ScanDayJobType, payload); err == nil {
			return
		} else if o.l != nil {
			o.l.Warn("scan job enqueue failed, running inline", applogger.Error(err))
		}
	}
	if err := o.RunOnce(ctx, date, 0); err != nil && o.l != nil {
		o.l.Error("daily run failed", applogger.Error(err))
	}
}

// Start runs immediately and then once per day at the configured Moscow
// wall-clock time, until ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	go func() {
		o.trigger(ctx, time.Now().In(o.loc))

		for {
			next, err := o.nextRun(time.Now().In(o.loc))
			if err != nil {
				if o.l != nil {
					o.l.Error("scheduler disabled", applogger.Error(err))
				}
				return
			}
			timer := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				o.trigger(ctx, time.Now().In(o.loc))
			}
		}
	}()
}

// nextRun computes the next runAt instant strictly after now.
func (o *Orchestrator) nextRun(now time.Time) (time.Time, error) {
	at, err := time.Parse("15:04", o.runAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse run_at %q: %w", o.runAt, err)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, o.loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
