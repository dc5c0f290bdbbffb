package models

import "time"

// PatternResult is the verdict of one detector run over one candle series.
// Optional fields are nil when the pattern did not trigger; that absence is
// part of the contract, consumers must not read it as zero values.
type PatternResult struct {
	Triggered   bool       `json:"triggered"`
	EntryPrice  *float64   `json:"entry_price,omitempty"`
	StopPrice   *float64   `json:"stop_price,omitempty"`
	TargetPrice *float64   `json:"target_price,omitempty"`
	TriggerTime *time.Time `json:"trigger_time,omitempty"`
}

// Untriggered returns the canonical negative result.
func Untriggered() PatternResult {
	return PatternResult{Triggered: false}
}

// GapAndGoResult carries the first-candle reference levels alongside the
// pattern verdict; the levels are reported even when nothing triggered.
type GapAndGoResult struct {
	FirstCandleHigh float64 `json:"first_candle_high"`
	FirstCandleLow  float64 `json:"first_candle_low"`
	PatternResult
}

// FlatBreakoutResult holds both variants for one timeframe.
type FlatBreakoutResult struct {
	FlatTop    PatternResult `json:"flat_top"`
	FlatBottom PatternResult `json:"flat_bottom"`
}

// VwapBand is the session VWAP with a one-sigma support/resistance band.
// Degenerate marks bands computed from fewer than two samples, where the
// standard deviation is undefined and reported as zero.
type VwapBand struct {
	VWAP       float64 `json:"vwap"`
	Support    float64 `json:"support"`
	Resistance float64 `json:"resistance"`
	Std        float64 `json:"std"`
	Degenerate bool    `json:"degenerate,omitempty"`
}

// TickerAnalysis is a consolidated view of every detector for one ticker on
// one date. Sub-results that failed carry their failure in Errors instead of
// being silently dropped.
type TickerAnalysis struct {
	Ticker       string              `json:"ticker"`
	InstrumentID string              `json:"instrument_id"`
	Date         string              `json:"date"`
	Timestamp    time.Time           `json:"timestamp"`
	Vwap         *VwapBand           `json:"vwap,omitempty"`
	GapAndGo     *GapAndGoResult     `json:"gap_and_go,omitempty"`
	FlatBreakout map[string]*FlatBreakoutResult `json:"flat_breakout,omitempty"`
	BullFlag     map[string]*PatternResult      `json:"bull_flag,omitempty"`
	FirstPullback map[string]*PatternResult     `json:"first_pullback,omitempty"`
	ABCD         map[string]*PatternResult      `json:"abcd,omitempty"`
	Errors       map[string]string   `json:"errors,omitempty"`
}
