package projections

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

type fakeNav struct {
	series domain.NavSeries
	err    error
}

func (f *fakeNav) NavHistory(ctx context.Context, schemeCode string) (domain.NavSeries, error) {
	return f.series, f.err
}

func doRequest(t *testing.T, h http.HandlerFunc, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func TestHandleSIP(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, body := doRequest(t, h.HandleSIP, "/api/calculators/sip?amount=10000&years=10&rate=12")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1200000.0, body["total_invested"])
	assert.Greater(t, body["future_value"].(float64), 1200000.0)
}

func TestHandleSIPMissingParam(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, body := doRequest(t, h.HandleSIP, "/api/calculators/sip?amount=10000&rate=12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "years")
}

func TestHandleSIPMalformedParam(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, _ := doRequest(t, h.HandleSIP, "/api/calculators/sip?amount=abc&years=10&rate=12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSIPDomainValidation(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, _ := doRequest(t, h.HandleSIP, "/api/calculators/sip?amount=-5&years=10&rate=12")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSWP(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, body := doRequest(t, h.HandleSWP, "/api/calculators/swp?principal=1000000&years=10&rate=8")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Greater(t, body["monthly_withdrawal"].(float64), 0.0)
	assert.Less(t, body["ending_balance"].(float64), 0.0)
}

func TestHandleHistoricalSIP(t *testing.T) {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make(domain.NavSeries, 730)
	for i := range series {
		series[i] = domain.NavEntry{Date: start.AddDate(0, 0, i), NAV: 10 + float64(i)*0.01}
	}

	h := NewHandler(&fakeNav{series: series}, zerolog.Nop())

	rec, body := doRequest(t, h.HandleHistoricalSIP,
		"/api/calculators/sip-historical?scheme_code=120503&amount=1000&years=1")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "120503", body["scheme_code"])
	result := body["result"].(map[string]interface{})
	assert.Greater(t, result["gain"].(float64), 0.0)
}

func TestHandleHistoricalSIPUpstreamFailure(t *testing.T) {
	h := NewHandler(&fakeNav{err: domain.ErrUpstreamUnavailable}, zerolog.Nop())

	rec, _ := doRequest(t, h.HandleHistoricalSIP,
		"/api/calculators/sip-historical?scheme_code=120503&amount=1000&years=1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandleHistoricalSIPRequiresSchemeCode(t *testing.T) {
	h := NewHandler(&fakeNav{}, zerolog.Nop())

	rec, _ := doRequest(t, h.HandleHistoricalSIP, "/api/calculators/sip-historical?amount=1000&years=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
