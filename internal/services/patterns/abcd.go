package patterns

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// DetectABCD locates an A-B-C-D continuation: impulse low A, local peak B,
// pullback low C held strictly above A, and a breakout D above B. The
// retracement must erase between 20% and 80% of the impulse, pullback volume
// must stay below the impulse's maximum, and the breakout needs at least
// twice the average pullback volume. Target projects the impulse height
// above B.
func DetectABCD(s models.Series) models.PatternResult {
	n := len(s)
	if n < 4 {
		return models.Untriggered()
	}

	for i := 2; i <= n-3; i++ {
		if s[i].High <= s[i-1].High || s[i].High <= s[i+1].High {
			continue
		}
		if s[i+2].High >= s[i+1].High {
			continue
		}

		b := s[i].High
		c := b
		j := i + 1
		for j < n && s[j].High <= b {
			if s[j].Low < c {
				c = s[j].Low
			}
			j++
		}
		if j >= n {
			continue
		}

		start := i - lookbackWindow
		if start < 0 {
			start = 0
		}
		a := s[start].Low
		impulseMaxVol := s[start].Volume
		for k := start + 1; k <= i; k++ {
			if s[k].Low < a {
				a = s[k].Low
			}
			if s[k].Volume > impulseMaxVol {
				impulseMaxVol = s[k].Volume
			}
		}

		// C must hold above A and retrace a healthy fraction of the impulse.
		if c <= a {
			continue
		}
		impulse := b - a
		if impulse <= 0 {
			continue
		}
		ratio := (b - c) / impulse
		if ratio < retraceMin || ratio > retraceMax {
			continue
		}

		maxPullVol := 0.0
		for k := i + 1; k < j; k++ {
			if s[k].Volume > maxPullVol {
				maxPullVol = s[k].Volume
			}
		}
		if maxPullVol >= impulseMaxVol {
			continue
		}
		if s[j].Volume < breakoutVolumeMultiple*consolidationAvgVolume(s, i, j) {
			continue
		}

		res := triggered(b, c, s[j])
		res.TargetPrice = fptr(b + impulse)
		return res
	}
	return models.Untriggered()
}
