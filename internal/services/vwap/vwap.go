// Package vwap computes the session volume-weighted average price and its
// one-sigma support/resistance band.
package vwap

import (
	"math"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
)

// ComputeBand calculates the running VWAP over one session's minute candles
// and a band one sample standard deviation of (close - runningVwap) wide.
//
// Zero cumulative volume makes the VWAP undefined and is reported as a
// DataQualityError rather than fabricated as zero. A series with fewer than
// two samples yields a degenerate band (std 0) that callers must special-case.
func ComputeBand(s models.Series) (models.VwapBand, error) {
	if len(s) == 0 {
		return models.VwapBand{Degenerate: true}, nil
	}

	running := make([]float64, len(s))
	var pv, vol float64
	for i, c := range s {
		pv += c.Close * c.Volume
		vol += c.Volume
		if vol == 0 {
			return models.VwapBand{}, &models.DataQualityError{
				Reason: "zero cumulative volume",
				Index:  i,
			}
		}
		running[i] = pv / vol
	}
	final := running[len(running)-1]

	if len(s) < 2 {
		return models.VwapBand{
			VWAP:       final,
			Support:    final,
			Resistance: final,
			Degenerate: true,
		}, nil
	}

	// Sample standard deviation (n-1) of close deviations from running VWAP.
	var sum float64
	for i, c := range s {
		sum += c.Close - running[i]
	}
	mean := sum / float64(len(s))
	var ss float64
	for i, c := range s {
		d := c.Close - running[i] - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(s)-1))

	return models.VwapBand{
		VWAP:       final,
		Support:    final - std,
		Resistance: final + std,
		Std:        std,
	}, nil
}
