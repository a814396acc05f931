package domain

import (
	"sort"
	"strings"
	"time"
)

// SecurityKind classifies an identifier into one of the supported asset classes
type SecurityKind string

const (
	KindEquity     SecurityKind = "equity"
	KindIndex      SecurityKind = "index"
	KindCrypto     SecurityKind = "cryptocurrency"
	KindMutualFund SecurityKind = "mutual_fund"
)

// Security identifies a resolvable instrument. Immutable once resolved
// for a request.
type Security struct {
	ID       string       `json:"symbol"`
	Kind     SecurityKind `json:"type"`
	Currency string       `json:"currency,omitempty"`
}

// InferKind classifies an identifier by shape:
// all digits -> mutual fund scheme code, leading caret -> index,
// a known market suffix -> listed equity, anything else -> crypto pair.
func InferKind(id string) SecurityKind {
	id = strings.TrimSpace(id)
	if id == "" {
		return KindCrypto
	}

	if isAllDigits(id) {
		return KindMutualFund
	}

	if strings.HasPrefix(id, "^") {
		return KindIndex
	}

	if hasMarketSuffix(id) {
		return KindEquity
	}

	return KindCrypto
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var marketSuffixes = []string{".NS", ".BO", ".US", ".T", ".L", ".DE", ".AT", ".PA", ".HK"}

func hasMarketSuffix(id string) bool {
	upper := strings.ToUpper(id)
	for _, suffix := range marketSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

// IsDomesticEquity reports whether the identifier is an NSE-listed symbol,
// which gets the exchange-specific quote provider tried first.
func IsDomesticEquity(id string) bool {
	return strings.HasSuffix(strings.ToUpper(id), ".NS")
}

// PricePoint is a single observation in a price series
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	Volume    int64     `json:"volume,omitempty"`
}

// PriceSeries is an ordered sequence of price points, strictly increasing
// by timestamp and deduplicated (later write wins).
type PriceSeries []PricePoint

// Normalize sorts the series ascending by timestamp and collapses duplicate
// timestamps, keeping the last-written observation for each.
func (s PriceSeries) Normalize() PriceSeries {
	if len(s) == 0 {
		return s
	}

	byTime := make(map[int64]PricePoint, len(s))
	for _, p := range s {
		byTime[p.Timestamp.UnixNano()] = p
	}

	out := make(PriceSeries, 0, len(byTime))
	for _, p := range byTime {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

// Closes projects the closing values of the series.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// NavEntry is one dated net-asset-value observation of a mutual fund
type NavEntry struct {
	Date time.Time `json:"date"`
	NAV  float64   `json:"nav"`
}

// NavSeries is a date-ascending NAV history. Entries with unparsable dates
// or non-positive NAVs are dropped at the ingestion boundary and never
// reach analytics.
type NavSeries []NavEntry

// Sort orders the series ascending by date.
func (s NavSeries) Sort() {
	sort.Slice(s, func(i, j int) bool {
		return s[i].Date.Before(s[j].Date)
	})
}

// Values projects the NAV values of the series.
func (s NavSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, e := range s {
		out[i] = e.NAV
	}
	return out
}

// Latest returns the most recent entry, or false for an empty series.
func (s NavSeries) Latest() (NavEntry, bool) {
	if len(s) == 0 {
		return NavEntry{}, false
	}
	return s[len(s)-1], true
}

// Quote is the resolved-security envelope consumed by the routing layer.
// Nullable fields stay null when upstream data is unavailable; unknown
// values are never replaced with fabricated numbers.
type Quote struct {
	Type          SecurityKind `json:"type"`
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name,omitempty"`
	CurrentPrice  *float64     `json:"current_price"`
	PreviousClose *float64     `json:"previous_close"`
	Change        *float64     `json:"change"`
	ChangePercent *float64     `json:"change_percent"`
	Open          *float64     `json:"open,omitempty"`
	DayHigh       *float64     `json:"day_high,omitempty"`
	DayLow        *float64     `json:"day_low,omitempty"`
	Volume        *int64       `json:"volume,omitempty"`
	Currency      string       `json:"currency,omitempty"`
	Technicals    *Technicals  `json:"technicals,omitempty"`
}

// Technicals carries the indicator bundle attached to a quote. Nil fields
// mean the series was too short for that indicator, not zero.
type Technicals struct {
	SMA50     *float64 `json:"sma_50"`
	SMA200    *float64 `json:"sma_200"`
	RSI14     *float64 `json:"rsi_14"`
	MACD      *float64 `json:"macd"`
	Signal    *float64 `json:"macd_signal"`
	Histogram *float64 `json:"macd_histogram"`
}

// RiskMetrics carries fund risk statistics derived from a NAV series.
type RiskMetrics struct {
	Volatility  float64  `json:"volatility"`
	MaxDrawdown float64  `json:"max_drawdown"`
	Sharpe      *float64 `json:"sharpe_ratio"`
}
