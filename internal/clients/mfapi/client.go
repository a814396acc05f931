package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// navDateLayout is the upstream textual date format (DD-MM-YYYY).
const navDateLayout = "02-01-2006"

// Client is a client for the mfapi.in mutual-fund catalog service.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// Fund is one catalog entry.
type Fund struct {
	SchemeCode     int    `json:"schemeCode"`
	SchemeName     string `json:"schemeName"`
	SchemeCategory string `json:"schemeCategory,omitempty"`
	SchemeType     string `json:"schemeType,omitempty"`
}

// FundMeta describes a scheme as returned by the NAV history endpoint.
type FundMeta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int    `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
}

// NewClient creates a new mutual-fund catalog client
func NewClient(log zerolog.Logger) *Client {
	return NewClientWithBaseURL("https://api.mfapi.in", log)
}

// NewClientWithBaseURL creates a client against a custom endpoint. Used by
// tests.
func NewClientWithBaseURL(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("client", "mfapi").Logger(),
	}
}

// ListAllFunds fetches the full scheme catalog.
func (c *Client) ListAllFunds(ctx context.Context) ([]Fund, error) {
	body, err := c.get(ctx, "/mf")
	if err != nil {
		return nil, err
	}

	var funds []Fund
	if err := json.Unmarshal(body, &funds); err != nil {
		return nil, fmt.Errorf("%w: parse fund catalog: %v", domain.ErrMalformedData, err)
	}

	c.log.Debug().Int("count", len(funds)).Msg("Fetched fund catalog")

	return funds, nil
}

// GetNavHistory fetches and cleans the NAV history for a scheme. Rows with
// unparsable dates or non-positive NAVs are dropped here and never reach
// analytics. The returned series is sorted ascending by date.
func (c *Client) GetNavHistory(ctx context.Context, schemeCode string) (*FundMeta, domain.NavSeries, error) {
	body, err := c.get(ctx, "/mf/"+schemeCode)
	if err != nil {
		return nil, nil, err
	}

	var result struct {
		Meta FundMeta `json:"meta"`
		Data []struct {
			Date string `json:"date"`
			NAV  string `json:"nav"`
		} `json:"data"`
		Status string `json:"status"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, nil, fmt.Errorf("%w: parse NAV history: %v", domain.ErrMalformedData, err)
	}

	series := make(domain.NavSeries, 0, len(result.Data))
	dropped := 0
	for _, row := range result.Data {
		date, err := time.Parse(navDateLayout, row.Date)
		if err != nil {
			dropped++
			continue
		}

		nav, err := strconv.ParseFloat(row.NAV, 64)
		if err != nil || nav <= 0 {
			dropped++
			continue
		}

		series = append(series, domain.NavEntry{Date: date, NAV: nav})
	}

	if dropped > 0 {
		c.log.Warn().
			Str("scheme", schemeCode).
			Int("dropped", dropped).
			Msg("Dropped malformed NAV rows")
	}

	if len(series) == 0 {
		return nil, nil, fmt.Errorf("%w: no usable NAV entries for scheme %s", domain.ErrMalformedData, schemeCode)
	}

	series.Sort()

	return &result.Meta, series, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrUpstreamUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: mfapi returned status %d for %s", domain.ErrUpstreamUnavailable, resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", domain.ErrUpstreamUnavailable, err)
	}

	return body, nil
}
