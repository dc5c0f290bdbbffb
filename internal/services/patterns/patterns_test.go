package patterns

import (
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

var sessionOpen = time.Date(2025, 7, 18, 7, 0, 0, 0, time.UTC)

// candle builds a 1-minute candle at the given offset from session open.
func candle(minute int, open, high, low, close, volume float64) models.Candle {
	return models.Candle{
		Time:   sessionOpen.Add(time.Duration(minute) * time.Minute),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  close,
		Volume: volume,
	}
}

// bar is a shorthand for candles where only high/low/volume matter.
func bar(minute int, high, low, volume float64) models.Candle {
	return candle(minute, low, high, low, high, volume)
}
