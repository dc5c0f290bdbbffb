package patterns

import (
	"math"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// DefaultTickSize is used when the caller does not know the instrument's
// minimum price increment.
const DefaultTickSize = 0.01

// quantize maps a price onto its tick-size bucket. Counting touches on
// quantized buckets instead of raw floats keeps a level "flat" even when
// the feed carries sub-tick rounding noise.
func quantize(price, tick float64) int64 {
	return int64(math.Floor(price/tick + 0.5 + levelEpsilon))
}

// DetectFlatTop finds the first breakout above a flat resistance level that
// was touched at least twice. Entry is the broken level; stop is the lowest
// low between the level's last touch and the breakout candle.
func DetectFlatTop(s models.Series, tick float64) models.PatternResult {
	if len(s) < 2 {
		return models.Untriggered()
	}
	if tick <= 0 {
		tick = DefaultTickSize
	}

	touches := map[int64]int{}
	lastTouch := map[int64]int{}
	levelPrice := map[int64]float64{}

	maxKey := quantize(s[0].High, tick)
	touches[maxKey] = 1
	lastTouch[maxKey] = 0
	levelPrice[maxKey] = s[0].High

	for i := 1; i < len(s); i++ {
		k := quantize(s[i].High, tick)
		if _, seen := levelPrice[k]; !seen {
			levelPrice[k] = s[i].High
		}
		touches[k]++
		lastTouch[k] = i

		if k <= maxKey {
			continue
		}
		prev := maxKey
		maxKey = k
		if touches[prev] < 2 {
			continue
		}

		// Breakout above a twice-touched resistance. The stop sits under the
		// consolidation that followed the last touch of the level.
		lt := lastTouch[prev]
		stop := s[lt].Low
		if lt < i-1 {
			stop = s[lt+1].Low
			for j := lt + 2; j < i; j++ {
				if s[j].Low < stop {
					stop = s[j].Low
				}
			}
		}
		return triggered(levelPrice[prev], stop, s[i])
	}
	return models.Untriggered()
}

// DetectFlatBottom is the mirror of DetectFlatTop: first breakdown below a
// flat support touched at least twice, stop at the highest high between the
// last touch and the breakdown candle.
func DetectFlatBottom(s models.Series, tick float64) models.PatternResult {
	if len(s) < 2 {
		return models.Untriggered()
	}
	if tick <= 0 {
		tick = DefaultTickSize
	}

	touches := map[int64]int{}
	lastTouch := map[int64]int{}
	levelPrice := map[int64]float64{}

	minKey := quantize(s[0].Low, tick)
	touches[minKey] = 1
	lastTouch[minKey] = 0
	levelPrice[minKey] = s[0].Low

	for i := 1; i < len(s); i++ {
		k := quantize(s[i].Low, tick)
		if _, seen := levelPrice[k]; !seen {
			levelPrice[k] = s[i].Low
		}
		touches[k]++
		lastTouch[k] = i

		if k >= minKey {
			continue
		}
		prev := minKey
		minKey = k
		if touches[prev] < 2 {
			continue
		}

		lt := lastTouch[prev]
		stop := s[lt].High
		if lt < i-1 {
			stop = s[lt+1].High
			for j := lt + 2; j < i; j++ {
				if s[j].High > stop {
					stop = s[j].High
				}
			}
		}
		return triggered(levelPrice[prev], stop, s[i])
	}
	return models.Untriggered()
}
