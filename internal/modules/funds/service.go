package funds

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/mfapi"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
	"github.com/harshyadavv2456/wealthpulse-backend/pkg/formulas"
)

// catalogKey is the cache key holding the full scheme catalog.
const catalogKey = "catalog"

// maxSearchResults caps a catalog search response.
const maxSearchResults = 25

// CatalogProvider lists the full mutual-fund scheme catalog.
type CatalogProvider interface {
	ListAllFunds(ctx context.Context) ([]mfapi.Fund, error)
}

// NavProvider fetches a scheme's cleaned NAV history.
type NavProvider interface {
	GetNavHistory(ctx context.Context, schemeCode string) (*mfapi.FundMeta, domain.NavSeries, error)
}

// fundRecord is the cached unit for one scheme: its metadata plus the
// cleaned, date-ascending NAV series. Analytics are derived from it on
// every read so they can never go stale independently of the series.
type fundRecord struct {
	meta   *mfapi.FundMeta
	series domain.NavSeries
}

// FundDetail is the full fund response: latest NAV plus the derived
// analytics bundle.
type FundDetail struct {
	Meta       *mfapi.FundMeta    `json:"meta"`
	LatestNAV  float64            `json:"latest_nav"`
	LatestDate string             `json:"latest_date"`
	DataPoints int                `json:"data_points"`
	Returns    map[string]float64 `json:"returns"`
	Risk       domain.RiskMetrics `json:"risk_metrics"`
}

// Service serves mutual-fund details and catalog searches, reading NAV
// histories through the hourly mutual-fund cache domain.
type Service struct {
	cache   *cache.Manager
	catalog CatalogProvider
	nav     NavProvider
	log     zerolog.Logger
}

// NewService creates a funds service.
func NewService(c *cache.Manager, catalog CatalogProvider, nav NavProvider, log zerolog.Logger) *Service {
	return &Service{
		cache:   c,
		catalog: catalog,
		nav:     nav,
		log:     log.With().Str("component", "funds_service").Logger(),
	}
}

// GetFund returns the detail bundle for a scheme code.
func (s *Service) GetFund(ctx context.Context, schemeCode string) (*FundDetail, error) {
	record, err := s.record(ctx, schemeCode)
	if err != nil {
		return nil, err
	}

	latest, ok := record.series.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: scheme %s has no NAV history", domain.ErrInsufficientHistory, schemeCode)
	}

	analytics := Analyze(record.series)

	return &FundDetail{
		Meta:       record.meta,
		LatestNAV:  formulas.Round2(latest.NAV),
		LatestDate: latest.Date.Format("2006-01-02"),
		DataPoints: len(record.series),
		Returns:    analytics.Returns,
		Risk:       analytics.RiskMetrics,
	}, nil
}

// NavHistory returns the cleaned NAV series for a scheme, served through
// the same cache entry as the detail view.
func (s *Service) NavHistory(ctx context.Context, schemeCode string) (domain.NavSeries, error) {
	record, err := s.record(ctx, schemeCode)
	if err != nil {
		return nil, err
	}
	return record.series, nil
}

// Search matches schemes by case-insensitive name substring. Every token in
// the query must appear in the scheme name.
func (s *Service) Search(ctx context.Context, query string) ([]mfapi.Fund, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", domain.ErrInvalidParameter)
	}

	funds, err := s.allFunds(ctx)
	if err != nil {
		return nil, err
	}

	tokens := strings.Fields(strings.ToLower(query))
	matches := make([]mfapi.Fund, 0, maxSearchResults)
	for _, f := range funds {
		name := strings.ToLower(f.SchemeName)
		ok := true
		for _, tok := range tokens {
			if !strings.Contains(name, tok) {
				ok = false
				break
			}
		}
		if ok {
			matches = append(matches, f)
			if len(matches) == maxSearchResults {
				break
			}
		}
	}

	return matches, nil
}

// RefreshCatalog fetches the full scheme catalog and writes it into the
// cache unconditionally. Called by the background refresh job; a failure
// leaves the previous catalog in place.
func (s *Service) RefreshCatalog(ctx context.Context) (int, error) {
	funds, err := s.catalog.ListAllFunds(ctx)
	if err != nil {
		return 0, err
	}

	s.cache.Put(cache.DomainMutualFunds, catalogKey, funds)
	s.log.Info().Int("schemes", len(funds)).Msg("Fund catalog refreshed")

	return len(funds), nil
}

func (s *Service) record(ctx context.Context, schemeCode string) (*fundRecord, error) {
	schemeCode = strings.TrimSpace(schemeCode)
	if schemeCode == "" || domain.InferKind(schemeCode) != domain.KindMutualFund {
		return nil, fmt.Errorf("%w: %q is not a numeric scheme code", domain.ErrInvalidParameter, schemeCode)
	}

	value, err := s.cache.GetOrCompute(cache.DomainMutualFunds, "scheme:"+schemeCode, func() (interface{}, error) {
		meta, series, err := s.nav.GetNavHistory(ctx, schemeCode)
		if err != nil {
			return nil, err
		}
		return &fundRecord{meta: meta, series: series}, nil
	})
	if err != nil {
		return nil, err
	}

	return value.(*fundRecord), nil
}

func (s *Service) allFunds(ctx context.Context) ([]mfapi.Fund, error) {
	value, err := s.cache.GetOrCompute(cache.DomainMutualFunds, catalogKey, func() (interface{}, error) {
		funds, err := s.catalog.ListAllFunds(ctx)
		if err != nil {
			return nil, err
		}
		return funds, nil
	})
	if err != nil {
		return nil, err
	}

	return value.([]mfapi.Fund), nil
}
