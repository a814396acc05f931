package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// Client is an NSE (National Stock Exchange of India) quote API client.
// The exchange API requires session cookies from the homepage before it
// serves quote requests, so the first call performs a warm-up request.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger

	warmOnce sync.Once
	warmErr  error
}

// Quote is the normalized exchange quote for a domestic equity.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	LastPrice     float64 `json:"last_price"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`
	PChange       float64 `json:"p_change"`
}

// NewClient creates a new NSE quote client
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithBaseURL("https://www.nseindia.com", log)
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
		log: log.With().Str("client", "nse").Logger(),
	}
}

// NSESymbol strips the Yahoo-style .NS suffix; the exchange API takes bare
// symbols.
func NSESymbol(symbol string) string {
	upper := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(upper, ".NS")
}

// GetQuote fetches the exchange quote for a domestic equity symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if err := c.warmUp(ctx); err != nil {
		return nil, err
	}

	nseSymbol := NSESymbol(symbol)
	reqURL := c.baseURL + "/api/quote-equity?symbol=" + url.QueryEscape(nseSymbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch NSE quote: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: NSE API returned status %d", domain.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", domain.ErrUpstreamUnavailable, err)
	}

	var result struct {
		Info struct {
			Symbol      string `json:"symbol"`
			CompanyName string `json:"companyName"`
		} `json:"info"`
		PriceInfo struct {
			LastPrice     float64 `json:"lastPrice"`
			PreviousClose float64 `json:"previousClose"`
			Change        float64 `json:"change"`
			PChange       float64 `json:"pChange"`
		} `json:"priceInfo"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: parse NSE response: %v", domain.ErrMalformedData, err)
	}

	if result.PriceInfo.LastPrice <= 0 || result.PriceInfo.PreviousClose <= 0 {
		return nil, fmt.Errorf("%w: NSE quote missing price fields for %s", domain.ErrMalformedData, nseSymbol)
	}

	return &Quote{
		Symbol:        nseSymbol,
		CompanyName:   result.Info.CompanyName,
		LastPrice:     result.PriceInfo.LastPrice,
		PreviousClose: result.PriceInfo.PreviousClose,
		Change:        result.PriceInfo.Change,
		PChange:       result.PriceInfo.PChange,
	}, nil
}

// warmUp performs the cookie bootstrap request once per client.
func (c *Client) warmUp(ctx context.Context) error {
	c.warmOnce.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
		if err != nil {
			c.warmErr = fmt.Errorf("failed to create warm-up request: %w", err)
			return
		}
		c.setHeaders(req)

		resp, err := c.client.Do(req)
		if err != nil {
			c.warmErr = fmt.Errorf("%w: NSE warm-up: %v", domain.ErrUpstreamUnavailable, err)
			return
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		c.log.Debug().Int("status", resp.StatusCode).Msg("NSE session warmed up")
	})

	return c.warmErr
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
