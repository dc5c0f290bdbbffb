package patterns

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// DetectBullFlag finds the first flagpole-and-consolidation breakout:
// a local peak followed by at least two candles of declining highs, then a
// breakout above the peak on at least twice the consolidation's average
// volume. Target projects the flagpole height above the entry.
func DetectBullFlag(s models.Series) models.PatternResult {
	n := len(s)
	if n < 5 {
		return models.Untriggered()
	}

	for i := 2; i <= n-3; i++ {
		// Local peak with a confirmed start of consolidation.
		if s[i].High <= s[i-1].High || s[i].High <= s[i+1].High {
			continue
		}
		if s[i+2].High >= s[i+1].High {
			continue
		}

		peak := s[i].High
		lowestLow := peak
		j := i + 1
		for j < n && s[j].High <= peak {
			if s[j].Low < lowestLow {
				lowestLow = s[j].Low
			}
			j++
		}
		if j >= n {
			// Consolidation ran to the end of the session, no breakout.
			continue
		}

		avgVol := consolidationAvgVolume(s, i, j)
		if s[j].Volume < breakoutVolumeMultiple*avgVol {
			continue
		}

		start := i - lookbackWindow
		if start < 0 {
			start = 0
		}
		poleLow := s[start].Low
		for k := start + 1; k <= i; k++ {
			if s[k].Low < poleLow {
				poleLow = s[k].Low
			}
		}

		res := triggered(peak, lowestLow, s[j])
		res.TargetPrice = fptr(peak + (peak - poleLow))
		return res
	}
	return models.Untriggered()
}

// consolidationAvgVolume averages the volumes of candles strictly between
// the peak and the breakout. An empty window falls back to the candle right
// after the peak; a zero average is floored to one so the breakout gate
// never divides by zero.
func consolidationAvgVolume(s models.Series, peak, breakout int) float64 {
	var sum float64
	count := 0
	for k := peak + 1; k < breakout; k++ {
		sum += s[k].Volume
		count++
	}
	avg := s[peak+1].Volume
	if count > 0 {
		avg = sum / float64(count)
	}
	if avg == 0 {
		avg = 1
	}
	return avg
}
