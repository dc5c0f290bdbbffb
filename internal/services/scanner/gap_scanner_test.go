package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

func daily(ticker, uid string, prevClose, open float64) models.InstrumentDaily {
	return models.InstrumentDaily{
		Ticker:       ticker,
		InstrumentID: uid,
		PrevDay:      &models.Candle{Close: prevClose},
		Today:        &models.Candle{Open: open},
	}
}

func TestScanGapsIncludesAndSorts(t *testing.T) {
	universe := []models.InstrumentDaily{
		daily("AAA", "uid-a", 100, 111),
		daily("BBB", "uid-b", 100, 112),
		daily("CCC", "uid-c", 100, 105),
	}

	recs := ScanGaps(universe, DefaultMinGap)
	require.Len(t, recs, 2)
	assert.Equal(t, "BBB", recs[0].Ticker)
	assert.InDelta(t, 0.12, recs[0].Gap, 1e-12)
	assert.Equal(t, 100.0, recs[0].PrevClose)
	assert.Equal(t, 112.0, recs[0].Open)
	assert.Equal(t, "AAA", recs[1].Ticker)
	assert.False(t, recs[0].Fallback)
}

func TestScanGapsTiesKeepScanOrder(t *testing.T) {
	universe := []models.InstrumentDaily{
		daily("AAA", "uid-a", 100, 111),
		daily("BBB", "uid-b", 200, 222),
	}

	recs := ScanGaps(universe, DefaultMinGap)
	require.Len(t, recs, 2)
	assert.Equal(t, "AAA", recs[0].Ticker)
	assert.Equal(t, "BBB", recs[1].Ticker)
}

func TestScanGapsFallbackRecord(t *testing.T) {
	universe := []models.InstrumentDaily{
		daily("AAA", "uid-a", 100, 103),
		daily("BBB", "uid-b", 100, 106),
	}

	recs := ScanGaps(universe, DefaultMinGap)
	require.Len(t, recs, 1)
	assert.Equal(t, "BBB", recs[0].Ticker)
	assert.True(t, recs[0].Fallback)
	assert.InDelta(t, 0.06, recs[0].Gap, 1e-12)
}

func TestScanGapsSkipsMissingCandles(t *testing.T) {
	noPrev := daily("XXX", "uid-x", 100, 150)
	noPrev.PrevDay = nil
	noToday := daily("YYY", "uid-y", 100, 150)
	noToday.Today = nil

	recs := ScanGaps([]models.InstrumentDaily{noPrev, noToday, daily("AAA", "uid-a", 100, 111)}, DefaultMinGap)
	require.Len(t, recs, 1)
	assert.Equal(t, "AAA", recs[0].Ticker)
}

func TestScanGapsEmptyUniverse(t *testing.T) {
	assert.Empty(t, ScanGaps(nil, DefaultMinGap))
}

func TestScanGapsMonotonicInOpen(t *testing.T) {
	prev := 100.0
	last := -1.0
	for open := 101.0; open <= 120; open++ {
		recs := ScanGaps([]models.InstrumentDaily{daily("AAA", "uid-a", prev, open)}, 0)
		require.Len(t, recs, 1)
		assert.Greater(t, recs[0].Gap, last)
		last = recs[0].Gap
	}
}
