package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

func TestDetectGapAndGoTriggers(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 9.9, 9.6, 120),
		bar(2, 10.2, 9.8, 150),
		bar(3, 10.4, 10.0, 90),
		bar(4, 10.1, 9.9, 80),
	}

	res := DetectGapAndGo(s)
	require.True(t, res.Triggered)
	require.NotNil(t, res.EntryPrice)
	require.NotNil(t, res.StopPrice)
	require.NotNil(t, res.TriggerTime)
	assert.Equal(t, 10.0, *res.EntryPrice)
	assert.Equal(t, 9.5, *res.StopPrice)
	assert.Equal(t, s[2].Time, *res.TriggerTime)
	assert.Nil(t, res.TargetPrice)
}

func TestDetectGapAndGoFirstMatchWins(t *testing.T) {
	// Candles 2 and 4 both clear the first high; the earlier one must win.
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 10.1, 9.8, 120),
		bar(2, 9.9, 9.7, 90),
		bar(3, 10.5, 10.0, 200),
		bar(4, 10.6, 10.2, 300),
	}

	res := DetectGapAndGo(s)
	require.True(t, res.Triggered)
	assert.Equal(t, s[1].Time, *res.TriggerTime)
}

func TestDetectGapAndGoUntriggeredKeepsReferenceLevels(t *testing.T) {
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 9.9, 9.6, 90),
		bar(2, 9.8, 9.5, 80),
		bar(3, 9.7, 9.4, 70),
		bar(4, 10.0, 9.6, 60),
	}

	res := DetectGapAndGo(s)
	assert.False(t, res.Triggered)
	assert.Equal(t, 10.0, res.FirstCandleHigh)
	assert.Equal(t, 9.5, res.FirstCandleLow)
	assert.Nil(t, res.EntryPrice)
	assert.Nil(t, res.StopPrice)
	assert.Nil(t, res.TriggerTime)
}

func TestDetectGapAndGoIgnoresCandlesBeyondWindow(t *testing.T) {
	// Candle 6 breaks the high but sits outside the 5-candle window.
	s := models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 9.9, 9.6, 90),
		bar(2, 9.8, 9.5, 80),
		bar(3, 9.7, 9.4, 70),
		bar(4, 9.9, 9.6, 60),
		bar(5, 11.0, 10.0, 500),
	}

	res := DetectGapAndGo(s)
	assert.False(t, res.Triggered)
}

func TestDetectGapAndGoShortSeries(t *testing.T) {
	assert.False(t, DetectGapAndGo(nil).Triggered)

	one := DetectGapAndGo(models.Series{bar(0, 10.0, 9.5, 100)})
	assert.False(t, one.Triggered)
	assert.Equal(t, 10.0, one.FirstCandleHigh)

	two := DetectGapAndGo(models.Series{
		bar(0, 10.0, 9.5, 100),
		bar(1, 10.3, 9.9, 200),
	})
	assert.True(t, two.Triggered)
}
