// Package patterns implements the intraday chart pattern detectors.
//
// Every detector is a pure function over an ordered candle series: no I/O,
// no shared state, deterministic output. All of them scan left to right and
// report the first qualifying occurrence, never the best-scoring one.
package patterns

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

const (
	// minInitialMove is the minimum relative move for a valid momentum run.
	minInitialMove = 0.03
	// breakoutVolumeMultiple gates breakout volume against the pullback average.
	breakoutVolumeMultiple = 2.0
	// retraceMin and retraceMax bound the acceptable ABCD retracement ratio.
	retraceMin = 0.2
	retraceMax = 0.8
	// lookbackWindow limits how far back the flagpole/impulse base is searched.
	lookbackWindow = 10
	// levelEpsilon is the equality tolerance for quantized price levels.
	levelEpsilon = 1e-9
)

func fptr(v float64) *float64 { return &v }

func triggered(entry, stop float64, at models.Candle) models.PatternResult {
	t := at.Time
	return models.PatternResult{
		Triggered:   true,
		EntryPrice:  fptr(entry),
		StopPrice:   fptr(stop),
		TriggerTime: &t,
	}
}
