package yahoo

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// NativeClient fetches market data through the go-yfinance library. It
// serves as the secondary source when the raw quote API returns an
// incomplete snapshot, and powers the batch scan behind top movers.
type NativeClient struct {
	log zerolog.Logger
}

// NewNativeClient creates a new native Yahoo Finance client
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		log: log.With().Str("client", "yahoo-native").Logger(),
	}
}

// GetRecentCloses returns the last two trading sessions' closes for a
// symbol. Guards against the fast snapshot being stale or absent outside
// market hours.
func (c *NativeClient) GetRecentCloses(symbol string) (current, previous float64, err error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: create ticker: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     "5d",
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fetch history: %v", domain.ErrUpstreamUnavailable, err)
	}

	if len(bars) < 2 {
		return 0, 0, fmt.Errorf("%w: need two sessions, got %d", domain.ErrInsufficientHistory, len(bars))
	}

	current = bars[len(bars)-1].Close
	previous = bars[len(bars)-2].Close
	if current <= 0 || previous <= 0 {
		return 0, 0, fmt.Errorf("%w: non-positive close in recent sessions", domain.ErrMalformedData)
	}

	return current, previous, nil
}

// GetInfoQuote looks the price pair up in the generic info/metadata fields.
// Last-resort strategy; either side may come back nil.
func (c *NativeClient) GetInfoQuote(symbol string) (current, previous *float64, err error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create ticker: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer t.Close()

	quote, quoteErr := t.Quote()
	if quoteErr == nil && quote != nil && quote.RegularMarketPrice > 0 {
		price := quote.RegularMarketPrice
		current = &price
	}

	info, infoErr := t.Info()
	if infoErr != nil {
		if current == nil {
			return nil, nil, fmt.Errorf("%w: fetch info: %v", domain.ErrUpstreamUnavailable, infoErr)
		}
		return current, nil, nil
	}

	if info != nil {
		if current == nil && info.CurrentPrice > 0 {
			price := info.CurrentPrice
			current = &price
		}
		if info.RegularMarketPreviousClose > 0 {
			prev := info.RegularMarketPreviousClose
			previous = &prev
		}
	}

	if current == nil && previous == nil {
		return nil, nil, fmt.Errorf("%w: no usable price fields for %s", domain.ErrMalformedData, symbol)
	}

	return current, previous, nil
}

// GetBatchQuotes fetches the last two session closes for multiple symbols
// in one download. Symbols that fail are logged and omitted.
func (c *NativeClient) GetBatchQuotes(symbols []string) (map[string]BatchQuote, error) {
	quotes := make(map[string]BatchQuote, len(symbols))
	if len(symbols) == 0 {
		return quotes, nil
	}

	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = "5d"
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return nil, fmt.Errorf("%w: batch download: %v", domain.ErrUpstreamUnavailable, err)
	}

	for _, symbol := range symbols {
		if bars, ok := result.Data[symbol]; ok && len(bars) >= 2 {
			last := bars[len(bars)-1]
			prev := bars[len(bars)-2]
			if last.Close > 0 && prev.Close > 0 {
				quotes[symbol] = BatchQuote{
					Symbol:   symbol,
					Current:  last.Close,
					Previous: prev.Close,
				}
				continue
			}
		}
		if barErr, ok := result.Errors[symbol]; ok {
			c.log.Warn().Err(barErr).Str("symbol", symbol).Msg("Failed to get batch quote")
		}
	}

	return quotes, nil
}
