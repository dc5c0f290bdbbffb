package models

import "time"

// Candle represents one OHLCV bucket of an instrument's price history.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Series is an ordered candle sequence for one instrument, date and timeframe.
// Detectors assume strictly ascending timestamps; Validate enforces it.
type Series []Candle

// Validate checks candle ordering. Unsorted or duplicate timestamps are a
// data-quality problem, not an analysis outcome, so they surface as an error.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return &DataQualityError{
				Reason: "candles out of order",
				Index:  i,
			}
		}
	}
	return nil
}

// Highs returns the high prices of the series.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].High
	}
	return out
}

// Lows returns the low prices of the series.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Low
	}
	return out
}

// Volumes returns the traded volumes of the series.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Volume
	}
	return out
}

// InstrumentDaily pairs an instrument with its previous-day and today daily
// candles for gap scanning. Either candle may be nil when the market data
// provider had no trading data for that day.
type InstrumentDaily struct {
	Ticker       string
	InstrumentID string
	PrevDay      *Candle
	Today        *Candle
}

// GapRecord is one gap-up candidate produced by the scanner.
// Fallback marks the diagnostic max-gap record returned when no instrument
// cleared the threshold.
type GapRecord struct {
	Ticker       string  `json:"ticker"`
	InstrumentID string  `json:"instrument_id"`
	PrevClose    float64 `json:"prev_close"`
	Open         float64 `json:"open"`
	Gap          float64 `json:"gap"`
	Fallback     bool    `json:"fallback,omitempty"`
}
