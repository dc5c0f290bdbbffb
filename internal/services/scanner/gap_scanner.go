// Package scanner selects gap-up candidates from a universe of instruments
// by comparing today's daily open with the previous daily close.
package scanner

import (
	"sort"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// DefaultMinGap is the minimum relative gap for a scan candidate (10%).
const DefaultMinGap = 0.10

// ScanGaps returns every instrument whose opening gap is at least minGap,
// sorted by gap descending (stable, so equal gaps keep scan order).
// Instruments missing either daily candle are skipped; they cannot produce
// a gap value. When no instrument clears the threshold the single largest
// gap is still returned, flagged as a fallback record, so downstream
// consumers always see a candidate when any instrument had data.
func ScanGaps(universe []models.InstrumentDaily, minGap float64) []models.GapRecord {
	result := make([]models.GapRecord, 0, len(universe))

	var best *models.GapRecord
	for _, inst := range universe {
		if inst.PrevDay == nil || inst.Today == nil {
			continue
		}
		prevClose := inst.PrevDay.Close
		if prevClose == 0 {
			continue
		}
		open := inst.Today.Open
		rec := models.GapRecord{
			Ticker:       inst.Ticker,
			InstrumentID: inst.InstrumentID,
			PrevClose:    prevClose,
			Open:         open,
			Gap:          (open - prevClose) / prevClose,
		}
		if best == nil || rec.Gap > best.Gap {
			b := rec
			best = &b
		}
		if rec.Gap >= minGap {
			result = append(result, rec)
		}
	}

	if len(result) == 0 && best != nil {
		best.Fallback = true
		result = append(result, *best)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Gap > result[j].Gap
	})
	return result
}
