package market

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/yahoo"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/technicals"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/formulas"
)

// ChartProvider fetches the daily price series used for indicators.
type ChartProvider interface {
	GetHistory(ctx context.Context, symbol, period string) (domain.PriceSeries, error)
}

// BatchProvider fetches recent closes for many symbols at once.
type BatchProvider interface {
	GetBatchQuotes(symbols []string) (map[string]yahoo.BatchQuote, error)
}

// DefaultIndices is the fixed index set behind the market overview.
var DefaultIndices = []string{"^NSEI", "^BSESN", "^NSEBANK", "^GSPC", "^DJI"}

// DefaultWatchlist is the tracked universe scanned for top movers.
var DefaultWatchlist = []string{
	"RELIANCE.NS", "TCS.NS", "HDFCBANK.NS", "INFY.NS", "ICICIBANK.NS",
	"HINDUNILVR.NS", "ITC.NS", "SBIN.NS", "BHARTIARTL.NS", "KOTAKBANK.NS",
	"LT.NS", "AXISBANK.NS", "MARUTI.NS", "WIPRO.NS", "TATAMOTORS.NS",
}

// Mover is one entry in the top gainers/losers scan.
type Mover struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

// TopMovers is the gainers/losers bundle.
type TopMovers struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}

// Service resolves securities into quote envelopes, reading through the
// cache so upstream call volume stays bounded per data domain.
type Service struct {
	cache     *cache.Manager
	resolver  *Resolver
	charts    ChartProvider
	batch     BatchProvider
	indices   []string
	watchlist []string
	log       zerolog.Logger
}

// ServiceConfig holds market service dependencies.
type ServiceConfig struct {
	Cache     *cache.Manager
	Resolver  *Resolver
	Charts    ChartProvider
	Batch     BatchProvider
	Indices   []string
	Watchlist []string
	Log       zerolog.Logger
}

// NewService creates a market service.
func NewService(cfg ServiceConfig) *Service {
	indices := cfg.Indices
	if len(indices) == 0 {
		indices = DefaultIndices
	}
	watchlist := cfg.Watchlist
	if len(watchlist) == 0 {
		watchlist = DefaultWatchlist
	}

	return &Service{
		cache:     cfg.Cache,
		resolver:  cfg.Resolver,
		charts:    cfg.Charts,
		batch:     cfg.Batch,
		indices:   indices,
		watchlist: watchlist,
		log:       cfg.Log.With().Str("component", "market_service").Logger(),
	}
}

// GetQuote resolves a security into its quote envelope, with indicators.
// Mutual-fund identifiers belong to the funds service.
func (s *Service) GetQuote(ctx context.Context, id string) (*domain.Quote, error) {
	kind := domain.InferKind(id)

	var dom cache.Domain
	switch kind {
	case domain.KindCrypto:
		dom = cache.DomainCrypto
	case domain.KindEquity, domain.KindIndex:
		dom = cache.DomainStocks
	default:
		return nil, fmt.Errorf("%w: %s is a mutual fund scheme code", domain.ErrInvalidParameter, id)
	}

	value, err := s.cache.GetOrCompute(dom, id, func() (interface{}, error) {
		return s.fetchQuote(ctx, id, kind, true)
	})
	if err != nil {
		return nil, err
	}

	return value.(*domain.Quote), nil
}

// Overview returns quotes for the fixed index set. Individual index
// failures degrade the overview instead of failing it.
func (s *Service) Overview(ctx context.Context) ([]*domain.Quote, error) {
	value, err := s.cache.GetOrCompute(cache.DomainMarketOverview, "overview", func() (interface{}, error) {
		quotes := make([]*domain.Quote, 0, len(s.indices))
		for _, idx := range s.indices {
			q, err := s.fetchQuote(ctx, idx, domain.KindIndex, false)
			if err != nil {
				s.log.Warn().Err(err).Str("index", idx).Msg("Index quote failed")
				continue
			}
			quotes = append(quotes, q)
		}

		if len(quotes) == 0 {
			return nil, fmt.Errorf("%w: no index quotes available", domain.ErrUpstreamUnavailable)
		}
		return quotes, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]*domain.Quote), nil
}

// Movers scans the watchlist and returns the top gainers and losers by
// day-over-day change percent.
func (s *Service) Movers(ctx context.Context) (*TopMovers, error) {
	value, err := s.cache.GetOrCompute(cache.DomainTopMovers, "top_movers", func() (interface{}, error) {
		quotes, err := s.batch.GetBatchQuotes(s.watchlist)
		if err != nil {
			return nil, err
		}

		movers := make([]Mover, 0, len(quotes))
		for _, q := range quotes {
			if q.Previous <= 0 {
				continue
			}
			change := q.Current - q.Previous
			movers = append(movers, Mover{
				Symbol:        q.Symbol,
				Price:         formulas.Round2(q.Current),
				Change:        formulas.Round2(change),
				ChangePercent: formulas.Round2(change / q.Previous * 100),
			})
		}

		if len(movers) == 0 {
			return nil, fmt.Errorf("%w: no watchlist quotes available", domain.ErrUpstreamUnavailable)
		}

		sort.Slice(movers, func(i, j int) bool {
			return movers[i].ChangePercent > movers[j].ChangePercent
		})

		top := 5
		if top > len(movers) {
			top = len(movers)
		}

		gainers := make([]Mover, top)
		copy(gainers, movers[:top])

		losers := make([]Mover, top)
		for i := 0; i < top; i++ {
			losers[i] = movers[len(movers)-1-i]
		}

		return &TopMovers{Gainers: gainers, Losers: losers}, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*TopMovers), nil
}

// fetchQuote resolves the pair and assembles the envelope. Indicator
// failures leave technicals nil; they never fail the quote.
func (s *Service) fetchQuote(ctx context.Context, id string, kind domain.SecurityKind, withIndicators bool) (*domain.Quote, error) {
	pair, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		Type:     kind,
		Symbol:   id,
		Name:     pair.Name,
		Currency: pair.Currency,
		Open:     formulas.Round2Ptr(pair.Open),
		DayHigh:  formulas.Round2Ptr(pair.DayHigh),
		DayLow:   formulas.Round2Ptr(pair.DayLow),
		Volume:   pair.Volume,
	}

	current := formulas.Round2(pair.Current)
	quote.CurrentPrice = &current

	if change, pct, err := pair.ChangeStats(); err == nil {
		previous := formulas.Round2(pair.Previous)
		c := formulas.Round2(change)
		p := formulas.Round2(pct)
		quote.PreviousClose = &previous
		quote.Change = &c
		quote.ChangePercent = &p
	}

	if withIndicators {
		series, err := s.charts.GetHistory(ctx, id, "1y")
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", id).Msg("History fetch failed, omitting technicals")
		} else if len(series) > 0 {
			quote.Technicals = technicals.Compute(series.Closes())
		}
	}

	return quote, nil
}
