package market

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/yahoo"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

type stubCharts struct {
	series domain.PriceSeries
	err    error
	calls  int
}

func (s *stubCharts) GetHistory(ctx context.Context, symbol, period string) (domain.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

type stubBatch struct {
	quotes map[string]yahoo.BatchQuote
	err    error
	calls  int
}

func (s *stubBatch) GetBatchQuotes(symbols []string) (map[string]yahoo.BatchQuote, error) {
	s.calls++
	return s.quotes, s.err
}

type countingSnapshot struct {
	snap  *yahoo.Snapshot
	calls int
}

func (s *countingSnapshot) GetSnapshot(ctx context.Context, symbol string) (*yahoo.Snapshot, error) {
	s.calls++
	return s.snap, nil
}

func dailySeries(n int, start float64) domain.PriceSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.PriceSeries, n)
	for i := 0; i < n; i++ {
		series[i] = domain.PricePoint{
			Timestamp: base.AddDate(0, 0, i),
			Close:     start + float64(i),
		}
	}
	return series
}

func newTestService(snap *countingSnapshot, charts *stubCharts, batch *stubBatch) *Service {
	resolver := NewResolver(
		snap,
		&stubHistory{err: domain.ErrUpstreamUnavailable},
		&stubInfo{err: domain.ErrUpstreamUnavailable},
		nil,
		zerolog.Nop(),
	)

	return NewService(ServiceConfig{
		Cache:    cache.New(cache.DefaultTTLs, zerolog.Nop()),
		Resolver: resolver,
		Charts:   charts,
		Batch:    batch,
		Log:      zerolog.Nop(),
	})
}

func TestGetQuoteAttachesIndicators(t *testing.T) {
	snap := &countingSnapshot{snap: &yahoo.Snapshot{
		Symbol:        "AAPL.US",
		Name:          "Apple Inc.",
		Currency:      "USD",
		LastPrice:     fptr(190.123),
		PreviousClose: fptr(185),
	}}
	charts := &stubCharts{series: dailySeries(60, 100)}

	svc := newTestService(snap, charts, &stubBatch{})

	quote, err := svc.GetQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)

	assert.Equal(t, domain.KindEquity, quote.Type)
	require.NotNil(t, quote.CurrentPrice)
	assert.Equal(t, 190.12, *quote.CurrentPrice)
	require.NotNil(t, quote.Change)
	assert.InDelta(t, 5.12, *quote.Change, 0.001)

	require.NotNil(t, quote.Technicals)
	assert.NotNil(t, quote.Technicals.SMA50)
	assert.Nil(t, quote.Technicals.SMA200) // 60 sessions is too short
	assert.NotNil(t, quote.Technicals.RSI14)
}

func TestGetQuoteServedFromCache(t *testing.T) {
	snap := &countingSnapshot{snap: &yahoo.Snapshot{
		Symbol:        "AAPL.US",
		LastPrice:     fptr(190),
		PreviousClose: fptr(185),
	}}
	charts := &stubCharts{series: dailySeries(60, 100)}

	svc := newTestService(snap, charts, &stubBatch{})

	_, err := svc.GetQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)
	_, err = svc.GetQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)

	assert.Equal(t, 1, snap.calls)
	assert.Equal(t, 1, charts.calls)
}

func TestGetQuoteHistoryFailureOmitsIndicators(t *testing.T) {
	snap := &countingSnapshot{snap: &yahoo.Snapshot{
		Symbol:        "BTC-USD",
		LastPrice:     fptr(65000),
		PreviousClose: fptr(64000),
	}}
	charts := &stubCharts{err: domain.ErrUpstreamUnavailable}

	svc := newTestService(snap, charts, &stubBatch{})

	quote, err := svc.GetQuote(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, domain.KindCrypto, quote.Type)
	require.NotNil(t, quote.CurrentPrice)
	assert.Nil(t, quote.Technicals)
}

func TestGetQuoteRejectsSchemeCodes(t *testing.T) {
	svc := newTestService(&countingSnapshot{}, &stubCharts{}, &stubBatch{})

	_, err := svc.GetQuote(context.Background(), "120503")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}

func TestOverviewReturnsIndexSetWithoutIndicators(t *testing.T) {
	snap := &countingSnapshot{snap: &yahoo.Snapshot{
		Symbol:        "^NSEI",
		LastPrice:     fptr(24500),
		PreviousClose: fptr(24400),
	}}
	charts := &stubCharts{series: dailySeries(60, 100)}

	svc := newTestService(snap, charts, &stubBatch{})

	quotes, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Len(t, quotes, len(DefaultIndices))
	for _, q := range quotes {
		assert.Equal(t, domain.KindIndex, q.Type)
		assert.Nil(t, q.Technicals)
	}
	assert.Equal(t, 0, charts.calls)

	// Second read is served from the overview cache.
	resolved := snap.calls
	_, err = svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resolved, snap.calls)
}

func TestMoversSortedByChangePercent(t *testing.T) {
	batch := &stubBatch{quotes: map[string]yahoo.BatchQuote{
		"A.NS": {Symbol: "A.NS", Current: 110, Previous: 100}, // +10%
		"B.NS": {Symbol: "B.NS", Current: 95, Previous: 100},  // -5%
		"C.NS": {Symbol: "C.NS", Current: 103, Previous: 100}, // +3%
		"D.NS": {Symbol: "D.NS", Current: 88, Previous: 100},  // -12%
		"E.NS": {Symbol: "E.NS", Current: 100, Previous: 0},   // dropped
	}}

	svc := newTestService(&countingSnapshot{}, &stubCharts{}, batch)

	movers, err := svc.Movers(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, movers.Gainers)
	assert.Equal(t, "A.NS", movers.Gainers[0].Symbol)
	assert.Equal(t, 10.0, movers.Gainers[0].ChangePercent)

	require.NotEmpty(t, movers.Losers)
	assert.Equal(t, "D.NS", movers.Losers[0].Symbol)
	assert.Equal(t, -12.0, movers.Losers[0].ChangePercent)

	// Zero previous close never yields an infinite change percent.
	for _, m := range append(movers.Gainers, movers.Losers...) {
		assert.NotEqual(t, "E.NS", m.Symbol)
	}
}

func TestMoversBatchFailurePropagates(t *testing.T) {
	batch := &stubBatch{err: domain.ErrUpstreamUnavailable}
	svc := newTestService(&countingSnapshot{}, &stubCharts{}, batch)

	_, err := svc.Movers(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	// The failure must not poison the cache: a later good batch computes.
	batch.err = nil
	batch.quotes = map[string]yahoo.BatchQuote{
		"A.NS": {Symbol: "A.NS", Current: 101, Previous: 100},
	}
	movers, err := svc.Movers(context.Background())
	require.NoError(t, err)
	assert.Len(t, movers.Gainers, 1)
}
