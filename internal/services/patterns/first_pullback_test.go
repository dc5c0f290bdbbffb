package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

func TestDetectFirstPullbackTriggers(t *testing.T) {
	s := models.Series{
		candle(0, 10.0, 10.2, 9.9, 10.1, 500),
		candle(1, 10.1, 10.5, 10.2, 10.45, 800), // run extends, peak volume
		candle(2, 10.4, 10.35, 10.28, 10.3, 300), // pullback starts
		candle(3, 10.3, 10.3, 10.25, 10.27, 200),
		candle(4, 10.3, 10.45, 10.28, 10.4, 600), // resumption
	}

	res := DetectFirstPullback(s)
	require.True(t, res.Triggered)
	assert.Equal(t, 10.3, *res.EntryPrice)
	assert.Equal(t, 10.25, *res.StopPrice)
	assert.Equal(t, 10.5, *res.TargetPrice)
	assert.Equal(t, s[4].Time, *res.TriggerTime)
}

func TestDetectFirstPullbackRejectsSmallMove(t *testing.T) {
	// 2% initial move, below the 3% gate.
	s := models.Series{
		candle(0, 10.0, 10.1, 9.9, 10.05, 500),
		candle(1, 10.05, 10.2, 10.0, 10.15, 800),
		candle(2, 10.15, 10.18, 10.12, 10.14, 300),
		candle(3, 10.14, 10.25, 10.13, 10.2, 600),
	}

	assert.False(t, DetectFirstPullback(s).Triggered)
}

func TestDetectFirstPullbackRejectsHeavyPullbackVolume(t *testing.T) {
	s := models.Series{
		candle(0, 10.0, 10.2, 9.9, 10.1, 500),
		candle(1, 10.1, 10.5, 10.2, 10.45, 800),
		candle(2, 10.4, 10.35, 10.28, 10.3, 900), // no volume dry-up
		candle(3, 10.3, 10.45, 10.28, 10.4, 600),
	}

	assert.False(t, DetectFirstPullback(s).Triggered)
}

func TestDetectFirstPullbackRejectsDeepRetrace(t *testing.T) {
	// Pullback low 10.1 undercuts the 50% level at 10.25.
	s := models.Series{
		candle(0, 10.0, 10.2, 9.9, 10.1, 500),
		candle(1, 10.1, 10.5, 10.2, 10.45, 800),
		candle(2, 10.4, 10.35, 10.1, 10.2, 300),
		candle(3, 10.2, 10.45, 10.15, 10.4, 600),
	}

	assert.False(t, DetectFirstPullback(s).Triggered)
}

func TestDetectFirstPullbackNoPullbackFormed(t *testing.T) {
	s := models.Series{
		candle(0, 10.0, 10.2, 9.9, 10.1, 500),
		candle(1, 10.1, 10.4, 10.0, 10.3, 600),
		candle(2, 10.3, 10.6, 10.2, 10.5, 700),
		candle(3, 10.5, 10.8, 10.4, 10.7, 800),
	}

	assert.False(t, DetectFirstPullback(s).Triggered)
}

func TestDetectFirstPullbackShortSeries(t *testing.T) {
	assert.False(t, DetectFirstPullback(nil).Triggered)
	assert.False(t, DetectFirstPullback(models.Series{candle(0, 10, 10.2, 9.9, 10.1, 500)}).Triggered)
}
