package models

// Requests for pattern HTTP endpoints. Defined in domain for consistency and reuse.

type ScanRequest struct {
	Date   string  `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
	MinGap float64 `query:"min_gap" json:"min_gap" default:"0.10" validate:"gte=0,lte=1"`
}

type PatternRequest struct {
	Ticker string `query:"ticker" json:"ticker" validate:"required"`
	UID    string `query:"uid" json:"uid" validate:"required"`
	Date   string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
}
