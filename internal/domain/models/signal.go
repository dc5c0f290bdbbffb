package models

import "time"

// Signal is one triggered pattern occurrence emitted to the signals topic.
// Only triggered results become signals; target is absent for patterns that
// do not project one (gap-and-go, flat breakout).
type Signal struct {
	Ticker       string    `json:"ticker"`
	InstrumentID string    `json:"instrument_id"`
	Pattern      string    `json:"pattern"`
	Timeframe    string    `json:"timeframe"`
	Date         string    `json:"date"`
	EntryPrice   float64   `json:"entry_price"`
	StopPrice    float64   `json:"stop_price"`
	TargetPrice  *float64  `json:"target_price,omitempty"`
	TriggerTime  time.Time `json:"trigger_time"`
}
