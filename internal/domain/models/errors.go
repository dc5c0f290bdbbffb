package models

import "fmt"

// DataQualityError reports malformed input candles: unsorted series,
// duplicate timestamps, or zero cumulative volume where a volume-weighted
// value is required. It is a hard error, never silently papered over.
type DataQualityError struct {
	Reason string
	Index  int
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("data quality: %s (index %d)", e.Reason, e.Index)
}
