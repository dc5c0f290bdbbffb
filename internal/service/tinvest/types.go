package tinvest

import (
	"strconv"

	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
)

// Quotation is the Invest API decimal type: integer units plus nano part.
type Quotation struct {
	Units string `json:"units"`
	Nano  int64  `json:"nano"`
}

// Float converts a quotation to a float price.
func (q Quotation) Float() float64 {
	units, _ := strconv.ParseInt(q.Units, 10, 64)
	return float64(units) + float64(q.Nano)/1e9
}

// interval names used by the REST GetCandles endpoint.
func candleInterval(tf drepo.Timeframe) string {
	switch tf {
	case drepo.TF1m:
		return "CANDLE_INTERVAL_1_MIN"
	case drepo.TF5m:
		return "CANDLE_INTERVAL_5_MIN"
	default:
		return "CANDLE_INTERVAL_DAY"
	}
}

// interval names used by the market data stream subscription.
func subscriptionInterval(tf drepo.Timeframe) string {
	switch tf {
	case drepo.TF1m:
		return "SUBSCRIPTION_INTERVAL_ONE_MINUTE"
	default:
		return "SUBSCRIPTION_INTERVAL_FIVE_MINUTES"
	}
}

func timeframeFromSubscription(s string) drepo.Timeframe {
	if s == "SUBSCRIPTION_INTERVAL_ONE_MINUTE" {
		return drepo.TF1m
	}
	return drepo.TF5m
}
