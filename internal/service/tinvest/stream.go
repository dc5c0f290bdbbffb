package tinvest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a CandleStream backed by the T-Invest market data
// stream WebSocket.
type Stream struct {
	token          string
	websocketURL   string
	timeframe      drepo.Timeframe
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn        *websocket.Conn
	connected   bool
	instruments []string
}

// NewStream creates a new T-Invest CandleStream.
func NewStream(token, websocketURL string, tf drepo.Timeframe, reconnectDelay, pingInterval time.Duration) drepo.CandleStream {
	return &Stream{
		token:          token,
		websocketURL:   websocketURL,
		timeframe:      tf,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, header)
	if err != nil {
		return fmt.Errorf("tinvest stream connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	return nil
}

type subscribeInstrument struct {
	InstrumentID string `json:"instrumentId"`
	Interval     string `json:"interval"`
}

type subscribeCandlesRequest struct {
	SubscriptionAction string                `json:"subscriptionAction"`
	Instruments        []subscribeInstrument `json:"instruments"`
	WaitingClose       bool                  `json:"waitingClose"`
}

type streamRequest struct {
	SubscribeCandlesRequest *subscribeCandlesRequest `json:"subscribeCandlesRequest,omitempty"`
}

// Subscribe subscribes to closed candles for the given instruments.
func (s *Stream) Subscribe(ctx context.Context, instrumentIDs []string) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("tinvest stream not connected")
	}
	s.instruments = instrumentIDs

	instruments := make([]subscribeInstrument, 0, len(instrumentIDs))
	for _, id := range instrumentIDs {
		instruments = append(instruments, subscribeInstrument{
			InstrumentID: id,
			Interval:     subscriptionInterval(s.timeframe),
		})
	}

	req := streamRequest{SubscribeCandlesRequest: &subscribeCandlesRequest{
		SubscriptionAction: "SUBSCRIPTION_ACTION_SUBSCRIBE",
		Instruments:        instruments,
		WaitingClose:       true,
	}}
	if err := s.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("subscribe candles: %w", err)
	}
	return nil
}

type streamCandlePayload struct {
	InstrumentUID string    `json:"instrumentUid"`
	Interval      string    `json:"interval"`
	Open          Quotation `json:"open"`
	High          Quotation `json:"high"`
	Low           Quotation `json:"low"`
	Close         Quotation `json:"close"`
	Volume        string    `json:"volume"`
	Time          time.Time `json:"time"`
}

type streamMessage struct {
	Candle *streamCandlePayload `json:"candle"`
}

// Read streams candle updates and errors until ctx is cancelled or the
// connection drops.
func (s *Stream) Read(ctx context.Context) (<-chan drepo.StreamCandle, <-chan error) {
	candles := make(chan drepo.StreamCandle, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("tinvest stream conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("tinvest stream read: %w", err)
					return
				}
				var m streamMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-candle frames
					continue
				}
				if m.Candle == nil {
					continue
				}
				vol, _ := strconv.ParseInt(m.Candle.Volume, 10, 64)
				sc := drepo.StreamCandle{
					InstrumentID: m.Candle.InstrumentUID,
					Timeframe:    timeframeFromSubscription(m.Candle.Interval),
					Candle: models.Candle{
						Time:   m.Candle.Time,
						Open:   m.Candle.Open.Float(),
						High:   m.Candle.High.Float(),
						Low:    m.Candle.Low.Float(),
						Close:  m.Candle.Close.Float(),
						Volume: float64(vol),
					},
				}
				select {
				case candles <- sc:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects, restoring subscriptions.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx, s.instruments)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
