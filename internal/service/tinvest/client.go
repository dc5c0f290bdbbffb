package tinvest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/service/ratelimit"
	xhttp "github.com/trade-stasvinokur/momentum-strategy-cameron/pkg/http"
)

const (
	defaultBaseURL = "https://invest-public-api.tinkoff.ru/rest"

	getCandlesPath = "/tinkoff.public.invest.api.contract.v1.MarketDataService/GetCandles"
	sharesPath     = "/tinkoff.public.invest.api.contract.v1.InstrumentsService/Shares"
)

// Client implements a CandleSource backed by the T-Invest REST API.
type Client struct {
	token     string
	baseURL   string
	http      *xhttp.Client
	limiter   *ratelimit.Limiter
	rateLimit float64
}

// New creates a new T-Invest CandleSource.
func New(token, baseURL string, requestTimeout time.Duration, rateLimit int) drepo.CandleSource {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		token:     token,
		baseURL:   baseURL,
		http:      xhttp.NewClient(xhttp.WithTimeout(requestTimeout)),
		limiter:   ratelimit.New(),
		rateLimit: float64(rateLimit),
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.token,
		"Content-Type":  "application/json",
	}
}

// waitQuota blocks until a request token is available or ctx expires.
func (c *Client) waitQuota(ctx context.Context, key string) error {
	for !c.limiter.Allow(key, c.rateLimit, c.rateLimit/60.0) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return nil
}

type candlesRequest struct {
	InstrumentID string `json:"instrumentId"`
	From         string `json:"from"`
	To           string `json:"to"`
	Interval     string `json:"interval"`
}

type apiCandle struct {
	Open   Quotation `json:"open"`
	High   Quotation `json:"high"`
	Low    Quotation `json:"low"`
	Close  Quotation `json:"close"`
	Volume string    `json:"volume"`
	Time   time.Time `json:"time"`
}

type candlesResponse struct {
	Candles []apiCandle `json:"candles"`
}

// GetCandles fetches candles for one instrument over [from, to).
func (c *Client) GetCandles(ctx context.Context, instrumentID string, from, to time.Time, tf drepo.Timeframe) (models.Series, error) {
	if err := c.waitQuota(ctx, "market_data"); err != nil {
		return nil, err
	}

	req := candlesRequest{
		InstrumentID: instrumentID,
		From:         from.UTC().Format(time.RFC3339),
		To:           to.UTC().Format(time.RFC3339),
		Interval:     candleInterval(tf),
	}

	var resp candlesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + getCandlesPath,
		Headers: c.headers(),
		Body:    req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get candles %s: %w", instrumentID, err)
	}

	series := make(models.Series, 0, len(resp.Candles))
	for _, ac := range resp.Candles {
		vol, _ := strconv.ParseInt(ac.Volume, 10, 64)
		series = append(series, models.Candle{
			Time:   ac.Time,
			Open:   ac.Open.Float(),
			High:   ac.High.Float(),
			Low:    ac.Low.Float(),
			Close:  ac.Close.Float(),
			Volume: float64(vol),
		})
	}
	return series, nil
}

type sharesRequest struct {
	InstrumentStatus string `json:"instrumentStatus"`
}

type apiShare struct {
	Ticker string `json:"ticker"`
	UID    string `json:"uid"`
	FIGI   string `json:"figi"`
}

type sharesResponse struct {
	Instruments []apiShare `json:"instruments"`
}

// GetShares returns the tradable share universe.
func (c *Client) GetShares(ctx context.Context) ([]drepo.Instrument, error) {
	if err := c.waitQuota(ctx, "instruments"); err != nil {
		return nil, err
	}

	var resp sharesResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + sharesPath,
		Headers: c.headers(),
		Body:    sharesRequest{InstrumentStatus: "INSTRUMENT_STATUS_BASE"},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("get shares: %w", err)
	}

	shares := make([]drepo.Instrument, 0, len(resp.Instruments))
	for _, s := range resp.Instruments {
		shares = append(shares, drepo.Instrument{
			Ticker: s.Ticker,
			UID:    s.UID,
			FIGI:   s.FIGI,
		})
	}
	return shares, nil
}
