package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/models"
	drepo "github.com/trade-stasvinokur/momentum-strategy-cameron/internal/domain/repository"
)

type fakeStream struct {
	mu         sync.Mutex
	connected  bool
	subscribed []string
	candleCh   chan drepo.StreamCandle
	errCh      chan error
}

func newFakeStream() *fakeStream {
	return &fakeStream{
		candleCh: make(chan drepo.StreamCandle, 16),
		errCh:    make(chan error, 1),
	}
}

func (f *fakeStream) Connect(context.Context) error {
	f.mu.Lock()
	f.connected = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) Subscribe(_ context.Context, ids []string) error {
	f.mu.Lock()
	f.subscribed = ids
	f.mu.Unlock()
	return nil
}

func (f *fakeStream) Read(context.Context) (<-chan drepo.StreamCandle, <-chan error) {
	return f.candleCh, f.errCh
}

func (f *fakeStream) Reconnect(context.Context) error { return nil }
func (f *fakeStream) Close() error                    { close(f.candleCh); return nil }

func (f *fakeStream) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStream) subscribedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed
}

type syncStore struct {
	mu    sync.Mutex
	count map[string]int
}

func (s *syncStore) StoreBatch(_ context.Context, uid string, _ drepo.Timeframe, candles []models.Candle) error {
	s.mu.Lock()
	s.count[uid] += len(candles)
	s.mu.Unlock()
	return nil
}

func (s *syncStore) GetCandles(context.Context, string, time.Time, time.Time, drepo.Timeframe) (models.Series, error) {
	return nil, nil
}

func (s *syncStore) GetLatestNCandles(context.Context, string, int, drepo.Timeframe) (models.Series, error) {
	return nil, nil
}

func (s *syncStore) stored(uid string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count[uid]
}

func TestCandleCollectorStoresStreamCandles(t *testing.T) {
	stream := newFakeStream()
	src := &fakeSource{shares: []drepo.Instrument{
		{Ticker: "SBER", UID: "uid-sber"},
		{Ticker: "GAZP", UID: "uid-gazp"},
	}}
	store := &syncStore{count: map[string]int{}}

	c := NewCandleCollector(stream, src, store, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, c.Start(ctx, []string{"SBER"}))
	assert.Equal(t, []string{"uid-sber"}, stream.subscribedIDs())
	assert.True(t, c.IsConnected())

	stream.candleCh <- drepo.StreamCandle{
		InstrumentID: "uid-sber",
		Timeframe:    drepo.TF1m,
		Candle:       models.Candle{Time: testDate.Add(7 * time.Hour), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 50},
	}
	stream.candleCh <- drepo.StreamCandle{
		// missing instrument id, must be dropped
		Timeframe: drepo.TF1m,
		Candle:    models.Candle{Time: testDate.Add(7*time.Hour + time.Minute)},
	}

	require.Eventually(t, func() bool {
		return store.stored("uid-sber") == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCandleCollectorResolvesNoInstruments(t *testing.T) {
	stream := newFakeStream()
	src := &fakeSource{shares: []drepo.Instrument{{Ticker: "GAZP", UID: "uid-gazp"}}}
	store := &syncStore{count: map[string]int{}}

	c := NewCandleCollector(stream, src, store, nil, nil)
	err := c.Start(context.Background(), []string{"SBER"})
	require.Error(t, err)
	assert.False(t, stream.IsConnected())
}
