package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/nse"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/yahoo"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// SnapshotProvider is the primary provider's fast quote lookup.
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, symbol string) (*yahoo.Snapshot, error)
}

// HistoryProvider returns the last two trading sessions' closes.
type HistoryProvider interface {
	GetRecentCloses(symbol string) (current, previous float64, err error)
}

// InfoProvider is the last-resort metadata field lookup.
type InfoProvider interface {
	GetInfoQuote(symbol string) (current, previous *float64, err error)
}

// ExchangeProvider is the exchange-specific quote API tried first for
// domestic equities.
type ExchangeProvider interface {
	GetQuote(ctx context.Context, symbol string) (*nse.Quote, error)
}

// PricePair is a best-effort (current, previous close) resolution.
// Previous == 0 marks a partial resolution: the current price is usable but
// change calculation is not.
type PricePair struct {
	Current  float64
	Previous float64
	Name     string
	Currency string

	// Day-session fields, present only when the snapshot strategy served the
	// pair. The fallback strategies cannot supply them.
	Open    *float64
	DayHigh *float64
	DayLow  *float64
	Volume  *int64
}

// Complete reports whether both sides of the pair were resolved.
func (p *PricePair) Complete() bool {
	return p != nil && p.Current > 0 && p.Previous > 0
}

// ChangeStats derives change and change-percent from a complete pair.
// A previous close of exactly zero is a defined error, not an infinity.
func (p *PricePair) ChangeStats() (change, changePercent float64, err error) {
	if p.Previous == 0 {
		return 0, 0, fmt.Errorf("%w: previous close is zero", domain.ErrMalformedData)
	}

	change = p.Current - p.Previous
	changePercent = change / p.Previous * 100
	return change, changePercent, nil
}

// Resolver turns a security identifier into a price pair by trying an
// ordered list of source strategies and normalizing their shapes. Each
// strategy is attempted only when the prior one failed or came back
// incomplete.
type Resolver struct {
	snapshot SnapshotProvider
	history  HistoryProvider
	info     InfoProvider
	exchange ExchangeProvider
	timeout  time.Duration
	log      zerolog.Logger
}

// NewResolver creates a price resolver over the given providers. exchange
// may be nil when no domestic-exchange client is configured.
func NewResolver(snapshot SnapshotProvider, history HistoryProvider, info InfoProvider, exchange ExchangeProvider, log zerolog.Logger) *Resolver {
	return &Resolver{
		snapshot: snapshot,
		history:  history,
		info:     info,
		exchange: exchange,
		timeout:  5 * time.Second,
		log:      log.With().Str("component", "price_resolver").Logger(),
	}
}

// Resolve tries each strategy in priority order. It fails only when no
// strategy yields a usable current price; a current price without a
// previous close comes back as a partial pair (Previous == 0) so the caller
// can still surface the raw price.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (*PricePair, error) {
	var partial *PricePair

	// Domestic-exchange equities get the exchange quote API first.
	if r.exchange != nil && domain.IsDomesticEquity(symbol) {
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		quote, err := r.exchange.GetQuote(callCtx, symbol)
		cancel()
		if err == nil {
			return &PricePair{
				Current:  quote.LastPrice,
				Previous: quote.PreviousClose,
				Name:     quote.CompanyName,
			}, nil
		}
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("Exchange quote failed, falling back")
	}

	// Strategy 1: fast snapshot from the primary provider.
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	snap, err := r.snapshot.GetSnapshot(callCtx, symbol)
	cancel()
	if err == nil {
		if snap.Complete() {
			return &PricePair{
				Current:  *snap.LastPrice,
				Previous: *snap.PreviousClose,
				Name:     snap.Name,
				Currency: snap.Currency,
				Open:     snap.Open,
				DayHigh:  snap.DayHigh,
				DayLow:   snap.DayLow,
				Volume:   snap.Volume,
			}, nil
		}
		if snap.LastPrice != nil {
			partial = &PricePair{
				Current:  *snap.LastPrice,
				Name:     snap.Name,
				Currency: snap.Currency,
				Open:     snap.Open,
				DayHigh:  snap.DayHigh,
				DayLow:   snap.DayLow,
				Volume:   snap.Volume,
			}
		}
	} else {
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("Snapshot strategy failed")
	}

	// Strategy 2: last two sessions' closes. Guards against the snapshot
	// being stale or absent outside market hours.
	current, previous, err := r.history.GetRecentCloses(symbol)
	if err == nil {
		pair := &PricePair{Current: current, Previous: previous}
		if partial != nil {
			pair.Name = partial.Name
			pair.Currency = partial.Currency
		}
		return pair, nil
	}
	r.log.Warn().Err(err).Str("symbol", symbol).Msg("History strategy failed")

	// Strategy 3: generic info/metadata field lookup.
	cur, prev, err := r.info.GetInfoQuote(symbol)
	if err == nil && cur != nil {
		pair := &PricePair{Current: *cur}
		if prev != nil {
			pair.Previous = *prev
		}
		if partial != nil {
			pair.Name = partial.Name
			pair.Currency = partial.Currency
		}
		if pair.Complete() || partial == nil {
			return pair, nil
		}
		partial = pair
	} else if err != nil {
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("Info strategy failed")
	}

	if partial != nil {
		return partial, nil
	}

	return nil, fmt.Errorf("%w: all price strategies failed for %s", domain.ErrUpstreamUnavailable, symbol)
}
