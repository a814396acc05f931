package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// Client is a Yahoo Finance API client. It talks to the v7 quote and v8
// chart endpoints directly and normalizes the inconsistently named fields
// into one canonical shape before anything downstream sees them.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. Upstream is rate-limited,
// so requests are throttled client-side as well.
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithBaseURL("https://query1.finance.yahoo.com", log)
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// yahooQuoteResponse represents the response from the Yahoo Finance quote API
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// GetSnapshot fetches the fast point-in-time quote for a symbol.
// Field presence varies by asset class: current price may arrive as
// currentPrice or regularMarketPrice, previous close as previousClose or
// regularMarketPreviousClose. Missing fields stay nil.
func (c *Client) GetSnapshot(ctx context.Context, symbol string) (*Snapshot, error) {
	info, err := c.GetInfo(ctx, symbol)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Symbol:   symbol,
		Name:     getString(info, "longName", getString(info, "shortName", "")),
		Currency: getString(info, "currency", ""),
	}

	if price := getFloat64(info, "currentPrice"); price != nil && *price > 0 {
		snap.LastPrice = price
	} else if price := getFloat64(info, "regularMarketPrice"); price != nil && *price > 0 {
		snap.LastPrice = price
	}

	if prev := getFloat64(info, "previousClose"); prev != nil && *prev > 0 {
		snap.PreviousClose = prev
	} else if prev := getFloat64(info, "regularMarketPreviousClose"); prev != nil && *prev > 0 {
		snap.PreviousClose = prev
	}

	snap.Open = firstFloat64(info, "open", "regularMarketOpen")
	snap.DayHigh = firstFloat64(info, "dayHigh", "regularMarketDayHigh")
	snap.DayLow = firstFloat64(info, "dayLow", "regularMarketDayLow")
	if vol := firstFloat64(info, "volume", "regularMarketVolume"); vol != nil {
		v := int64(*vol)
		snap.Volume = &v
	}

	return snap, nil
}

// GetInfo fetches the raw quote field map for a symbol.
func (c *Client) GetInfo(ctx context.Context, symbol string) (map[string]interface{}, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err)
	}

	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,regularMarketPrice,currentPrice,previousClose,regularMarketPreviousClose,"+
		"regularMarketOpen,regularMarketDayHigh,regularMarketDayLow,regularMarketVolume,"+
		"currency,fullExchangeName,quoteType,longName,shortName")

	reqURL := c.baseURL + "/v7/finance/quote?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch quote: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: quote API returned status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", domain.ErrUpstreamUnavailable, err)
	}

	var result yahooQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parse quote response: %v", domain.ErrMalformedData, err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("%w: quote API error: %v", domain.ErrUpstreamUnavailable, result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: no quote data for symbol %s", domain.ErrMalformedData, symbol)
	}

	return result.QuoteResponse.Result[0], nil
}

// GetHistory fetches daily OHLCV bars via the chart API.
//
// Supports periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max
func (c *Client) GetHistory(ctx context.Context, symbol, period string) (domain.PriceSeries, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamUnavailable, err)
	}

	reqURL := c.baseURL + "/v8/finance/chart/" + url.QueryEscape(symbol)

	params := url.Values{}
	params.Add("range", period)
	params.Add("interval", "1d")
	reqURL += "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch history: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: chart API returned status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", domain.ErrUpstreamUnavailable, err)
	}

	var result struct {
		Chart struct {
			Result []struct {
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Open   []float64 `json:"open"`
						High   []float64 `json:"high"`
						Low    []float64 `json:"low"`
						Close  []float64 `json:"close"`
						Volume []int64   `json:"volume"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error interface{} `json:"error"`
		} `json:"chart"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parse chart response: %v", domain.ErrMalformedData, err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("%w: chart API error: %v", domain.ErrUpstreamUnavailable, result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No historical data returned")
		return domain.PriceSeries{}, nil
	}

	chartData := result.Chart.Result[0]
	timestamps := chartData.Timestamp
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in chart response")
		return domain.PriceSeries{}, nil
	}

	quote := chartData.Indicators.Quote[0]

	var series domain.PriceSeries
	for i := range timestamps {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}

		// Yahoo sometimes returns null rows
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		series = append(series, domain.PricePoint{
			Timestamp: time.Unix(timestamps[i], 0).UTC(),
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    volume,
		})
	}

	c.log.Debug().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(series)).
		Msg("Fetched historical prices")

	return series.Normalize(), nil
}

// Helper functions to safely extract values from the quote field map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func firstFloat64(m map[string]interface{}, keys ...string) *float64 {
	for _, key := range keys {
		if v := getFloat64(m, key); v != nil {
			return v
		}
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}
