package patterns

import (
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// gapAndGoWindow is how many opening one-minute candles the detector inspects.
const gapAndGoWindow = 5

// DetectGapAndGo checks whether any of the 2nd through 5th opening candles
// broke above the first candle's high. Entry is the first candle's high,
// stop its low. The reference levels are reported even when nothing
// triggered so the caller can still chart them.
func DetectGapAndGo(s models.Series) models.GapAndGoResult {
	if len(s) == 0 {
		return models.GapAndGoResult{PatternResult: models.Untriggered()}
	}

	fh := s[0].High
	fl := s[0].Low
	res := models.GapAndGoResult{
		FirstCandleHigh: fh,
		FirstCandleLow:  fl,
		PatternResult:   models.Untriggered(),
	}

	limit := gapAndGoWindow
	if len(s) < limit {
		limit = len(s)
	}
	for i := 1; i < limit; i++ {
		if s[i].High > fh {
			res.PatternResult = triggered(fh, fl, s[i])
			break
		}
	}
	return res
}
