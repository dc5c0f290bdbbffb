package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

func TestDetectFlatTopBreakout(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.7, 100),
		bar(1, 10.0, 9.6, 110),
		bar(2, 9.8, 9.4, 90),
		bar(3, 10.3, 10.0, 250),
	}

	res := DetectFlatTop(s, DefaultTickSize)
	require.True(t, res.Triggered)
	assert.Equal(t, 10.0, *res.EntryPrice)
	assert.Equal(t, 9.4, *res.StopPrice)
	assert.Equal(t, s[3].Time, *res.TriggerTime)
}

func TestDetectFlatTopImmediateBreakout(t *testing.T) {
	// Breakout on the candle right after the last touch: the stop falls back
	// to the last-touch candle's low.
	s := models.Series{
		bar(0, 10.0, 9.7, 100),
		bar(1, 10.0, 9.6, 110),
		bar(2, 10.3, 10.0, 250),
	}

	res := DetectFlatTop(s, DefaultTickSize)
	require.True(t, res.Triggered)
	assert.Equal(t, 10.0, *res.EntryPrice)
	assert.Equal(t, 9.6, *res.StopPrice)
}

func TestDetectFlatTopSingleTouchIsNotFlat(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.7, 100),
		bar(1, 9.8, 9.5, 110),
		bar(2, 10.3, 10.0, 250),
	}

	res := DetectFlatTop(s, DefaultTickSize)
	assert.False(t, res.Triggered)
	assert.Nil(t, res.EntryPrice)
}

func TestDetectFlatTopQuantizesTouches(t *testing.T) {
	// Sub-tick feed noise must still count as touching the same level.
	s := models.Series{
		bar(0, 10.0, 9.7, 100),
		bar(1, 10.000000004, 9.6, 110),
		bar(2, 9.8, 9.4, 90),
		bar(3, 10.3, 10.0, 250),
	}

	res := DetectFlatTop(s, 0.01)
	require.True(t, res.Triggered)
	assert.Equal(t, 10.0, *res.EntryPrice)
}

func TestDetectFlatTopEntryNeverAbovePriorHighs(t *testing.T) {
	s := models.Series{
		bar(0, 9.9, 9.6, 100),
		bar(1, 10.0, 9.7, 110),
		bar(2, 10.0, 9.8, 120),
		bar(3, 9.7, 9.5, 80),
		bar(4, 10.4, 10.0, 300),
	}

	res := DetectFlatTop(s, DefaultTickSize)
	require.True(t, res.Triggered)
	maxBefore := 0.0
	for _, c := range s[:4] {
		if c.High > maxBefore {
			maxBefore = c.High
		}
	}
	assert.LessOrEqual(t, *res.EntryPrice, maxBefore)
}

func TestDetectFlatBottomBreakdown(t *testing.T) {
	s := models.Series{
		candle(0, 9.3, 9.5, 9.0, 9.2, 100),
		candle(1, 9.2, 9.3, 9.0, 9.1, 110),
		candle(2, 9.1, 9.4, 9.1, 9.2, 90),
		candle(3, 9.0, 9.0, 8.8, 8.8, 250),
	}

	res := DetectFlatBottom(s, DefaultTickSize)
	require.True(t, res.Triggered)
	assert.Equal(t, 9.0, *res.EntryPrice)
	assert.Equal(t, 9.4, *res.StopPrice)
	assert.Equal(t, s[3].Time, *res.TriggerTime)
}

func TestDetectFlatBreakoutShortSeries(t *testing.T) {
	assert.False(t, DetectFlatTop(nil, DefaultTickSize).Triggered)
	assert.False(t, DetectFlatBottom(nil, DefaultTickSize).Triggered)

	one := models.Series{bar(0, 10.0, 9.5, 100)}
	assert.False(t, DetectFlatTop(one, DefaultTickSize).Triggered)
	assert.False(t, DetectFlatBottom(one, DefaultTickSize).Triggered)
}

func TestDetectFlatTopDeterministic(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.7, 100),
		bar(1, 10.0, 9.6, 110),
		bar(2, 9.8, 9.4, 90),
		bar(3, 10.3, 10.0, 250),
	}

	first := DetectFlatTop(s, DefaultTickSize)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectFlatTop(s, DefaultTickSize))
	}
}
