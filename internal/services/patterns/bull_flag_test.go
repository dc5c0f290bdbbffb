package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

func bullFlagSeries(breakoutVolume float64) models.Series {
	return models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 10.5, 10.0, 150),
		bar(2, 11.0, 10.4, 200), // flagpole top
		bar(3, 10.8, 10.5, 80),
		bar(4, 10.6, 10.4, 70),
		bar(5, 11.2, 10.7, breakoutVolume),
	}
}

func TestDetectBullFlagTriggers(t *testing.T) {
	s := bullFlagSeries(300)

	res := DetectBullFlag(s)
	require.True(t, res.Triggered)
	assert.Equal(t, 11.0, *res.EntryPrice)
	assert.Equal(t, 10.4, *res.StopPrice)
	// Flagpole low is 9.5, height 1.5, target = 11.0 + 1.5.
	assert.InDelta(t, 12.5, *res.TargetPrice, 1e-12)
	assert.Equal(t, s[5].Time, *res.TriggerTime)
}

func TestDetectBullFlagRejectsLowVolumeBreakout(t *testing.T) {
	// Consolidation average volume is 75; a breakout under 150 is a fake.
	res := DetectBullFlag(bullFlagSeries(149))
	assert.False(t, res.Triggered)
	assert.Nil(t, res.EntryPrice)
	assert.Nil(t, res.TargetPrice)
}

func TestDetectBullFlagVolumeGateBoundary(t *testing.T) {
	res := DetectBullFlag(bullFlagSeries(150))
	assert.True(t, res.Triggered)
}

func TestDetectBullFlagNoBreakoutBeforeSessionEnd(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 10.5, 10.0, 150),
		bar(2, 11.0, 10.4, 200),
		bar(3, 10.8, 10.5, 80),
		bar(4, 10.6, 10.4, 70),
		bar(5, 10.7, 10.5, 60),
	}

	assert.False(t, DetectBullFlag(s).Triggered)
}

func TestDetectBullFlagRequiresDecliningHighs(t *testing.T) {
	// Second consolidation candle makes a higher high than the first: the
	// flag never forms.
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 10.5, 10.0, 150),
		bar(2, 11.0, 10.4, 200),
		bar(3, 10.8, 10.5, 80),
		bar(4, 10.9, 10.6, 70),
		bar(5, 11.2, 10.7, 300),
	}

	assert.False(t, DetectBullFlag(s).Triggered)
}

func TestDetectBullFlagShortSeries(t *testing.T) {
	assert.False(t, DetectBullFlag(nil).Triggered)
	assert.False(t, DetectBullFlag(bullFlagSeries(300)[:4]).Triggered)
}
