package mfapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

func TestListAllFunds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mf", r.URL.Path)
		w.Write([]byte(`[
			{"schemeCode":120503,"schemeName":"Axis Bluechip Fund - Growth"},
			{"schemeCode":118989,"schemeName":"HDFC Index Fund Nifty 50 Plan"}
		]`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	funds, err := c.ListAllFunds(context.Background())
	require.NoError(t, err)
	require.Len(t, funds, 2)
	assert.Equal(t, 120503, funds[0].SchemeCode)
	assert.Equal(t, "Axis Bluechip Fund - Growth", funds[0].SchemeName)
}

func TestGetNavHistoryCleansAndSorts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/mf/120503", r.URL.Path)
		w.Write([]byte(`{
			"meta":{"fund_house":"Axis Mutual Fund","scheme_type":"Open Ended",
				"scheme_category":"Equity Scheme - Large Cap Fund",
				"scheme_code":120503,"scheme_name":"Axis Bluechip Fund - Growth"},
			"data":[
				{"date":"17-11-2023","nav":"104.39"},
				{"date":"16-11-2023","nav":"103.85"},
				{"date":"not-a-date","nav":"99.00"},
				{"date":"15-11-2023","nav":"garbage"},
				{"date":"14-11-2023","nav":"-1.0"},
				{"date":"13-11-2023","nav":"102.70"}
			],
			"status":"SUCCESS"
		}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	meta, series, err := c.GetNavHistory(context.Background(), "120503")
	require.NoError(t, err)
	assert.Equal(t, 120503, meta.SchemeCode)
	assert.Equal(t, "Axis Mutual Fund", meta.FundHouse)

	// Malformed date, non-numeric NAV and non-positive NAV rows dropped.
	require.Len(t, series, 3)

	// Sorted ascending by date.
	assert.Equal(t, time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC), series[0].Date)
	assert.Equal(t, 102.70, series[0].NAV)
	assert.Equal(t, 104.39, series[2].NAV)
}

func TestGetNavHistoryAllRowsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meta":{},"data":[{"date":"??","nav":"??"}],"status":"SUCCESS"}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, _, err := c.GetNavHistory(context.Background(), "999999")
	assert.ErrorIs(t, err, domain.ErrMalformedData)
}

func TestGetNavHistoryUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, _, err := c.GetNavHistory(context.Background(), "120503")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
