package nse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

func TestNSESymbol(t *testing.T) {
	assert.Equal(t, "TCS", NSESymbol("TCS.NS"))
	assert.Equal(t, "RELIANCE", NSESymbol("reliance.ns"))
	assert.Equal(t, "INFY", NSESymbol(" INFY "))
}

func TestGetQuote(t *testing.T) {
	var warmed bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			warmed = true
			w.WriteHeader(http.StatusOK)
			return
		}

		require.Equal(t, "/api/quote-equity", r.URL.Path)
		assert.Equal(t, "TCS", r.URL.Query().Get("symbol"))
		w.Write([]byte(`{
			"info":{"symbol":"TCS","companyName":"Tata Consultancy Services Limited"},
			"priceInfo":{"lastPrice":4105.5,"previousClose":4050.0,"change":55.5,"pChange":1.37}
		}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	q, err := c.GetQuote(context.Background(), "TCS.NS")
	require.NoError(t, err)
	assert.True(t, warmed)
	assert.Equal(t, "TCS", q.Symbol)
	assert.Equal(t, "Tata Consultancy Services Limited", q.CompanyName)
	assert.Equal(t, 4105.5, q.LastPrice)
	assert.Equal(t, 4050.0, q.PreviousClose)
	assert.Equal(t, 1.37, q.PChange)
}

func TestGetQuoteMissingPriceFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			return
		}
		w.Write([]byte(`{"info":{"symbol":"XYZ"},"priceInfo":{"lastPrice":0,"previousClose":0}}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, err := c.GetQuote(context.Background(), "XYZ.NS")
	assert.ErrorIs(t, err, domain.ErrMalformedData)
}

func TestGetQuoteUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL(srv.URL, zerolog.Nop())

	_, err := c.GetQuote(context.Background(), "TCS.NS")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
