package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/mfapi"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/nse"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/clients/yahoo"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/funds"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/market"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/projections"
)

// newTestServer wires the full route table against unreachable upstreams.
// Only endpoints that never leave the process are exercised here; module
// behavior is covered by the module tests.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	log := zerolog.Nop()
	cacheManager := cache.New(cache.DefaultTTLs, log)

	yahooClient := yahoo.NewClientWithBaseURL("http://127.0.0.1:1", log)
	nativeClient := yahoo.NewNativeClient(log)
	nseClient := nse.NewClientWithBaseURL("http://127.0.0.1:1", log)
	mfapiClient := mfapi.NewClientWithBaseURL("http://127.0.0.1:1", log)

	resolver := market.NewResolver(yahooClient, nativeClient, nativeClient, nseClient, log)
	marketService := market.NewService(market.ServiceConfig{
		Cache:    cacheManager,
		Resolver: resolver,
		Charts:   yahooClient,
		Batch:    nativeClient,
		Log:      log,
	})
	fundsService := funds.NewService(cacheManager, mfapiClient, mfapiClient, log)

	return New(Config{
		Port:        0,
		DevMode:     true,
		Log:         log,
		Cache:       cacheManager,
		Market:      market.NewHandler(marketService, log),
		Funds:       funds.NewHandler(fundsService, log),
		Calculators: projections.NewHandler(fundsService, log),
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "wealthpulse-backend", body["service"])
}

func TestSystemStatusReportsCacheCounts(t *testing.T) {
	srv := newTestServer(t)
	srv.cache.Put(cache.DomainStocks, "AAPL.US", "x")

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status       string         `json:"status"`
		CacheEntries map[string]int `json:"cache_entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body.Status)
	assert.Equal(t, 1, body.CacheEntries["stocks"])
	assert.Equal(t, 0, body.CacheEntries["crypto"])
}

func TestCalculatorRouteWiredThroughRouter(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/calculators/sip?amount=5000&years=5&rate=10", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 300000.0, body["total_invested"])
}

func TestUnknownRouteReturns404(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
