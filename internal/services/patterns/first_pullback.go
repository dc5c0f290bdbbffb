package patterns

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// DetectFirstPullback tracks the opening momentum run, waits for the first
// candle that fails to set a new high, and triggers on the first sign of the
// run resuming. The pattern is rejected when the initial move is under 3%,
// when pullback volume does not dry up below the run's peak volume, or when
// the pullback retraces more than half the move.
func DetectFirstPullback(s models.Series) models.PatternResult {
	if len(s) < 2 {
		return models.Untriggered()
	}

	open := s[0].Open
	peak := s[0].High
	peakVolume := s[0].Volume

	// End of the initial run: first candle that does not extend the peak.
	pullbackStart := -1
	for i := 1; i < len(s); i++ {
		if s[i].High > peak {
			peak = s[i].High
			if s[i].Volume > peakVolume {
				peakVolume = s[i].Volume
			}
			continue
		}
		pullbackStart = i
		break
	}
	if pullbackStart < 0 {
		// Price never stopped making highs; no pullback formed.
		return models.Untriggered()
	}

	pullbackLow := s[pullbackStart].Low
	triggerIdx := -1
	entry := 0.0
	for j := pullbackStart; j < len(s)-1; j++ {
		if s[j].Low < pullbackLow {
			pullbackLow = s[j].Low
		}
		if s[j+1].High > s[j].High {
			triggerIdx = j + 1
			entry = s[j].High
			break
		}
	}
	if triggerIdx < 0 {
		return models.Untriggered()
	}

	if peak/open-1 < minInitialMove {
		return models.Untriggered()
	}
	maxPullVol := 0.0
	for j := pullbackStart; j < triggerIdx; j++ {
		if s[j].Volume > maxPullVol {
			maxPullVol = s[j].Volume
		}
	}
	if maxPullVol >= peakVolume {
		return models.Untriggered()
	}
	if pullbackLow < open+0.5*(peak-open) {
		return models.Untriggered()
	}

	res := triggered(entry, pullbackLow, s[triggerIdx])
	res.TargetPrice = fptr(peak)
	return res
}
