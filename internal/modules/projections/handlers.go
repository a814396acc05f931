package projections

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// NavProvider fetches a scheme's NAV history for the historical replay.
type NavProvider interface {
	NavHistory(ctx context.Context, schemeCode string) (domain.NavSeries, error)
}

// Handler handles calculator HTTP requests. All parameters arrive as query
// strings; malformed numbers are rejected before any calculation runs.
type Handler struct {
	nav NavProvider
	log zerolog.Logger
}

// NewHandler creates a new calculators handler
func NewHandler(nav NavProvider, log zerolog.Logger) *Handler {
	return &Handler{
		nav: nav,
		log: log.With().Str("handler", "calculators").Logger(),
	}
}

// HandleSIP projects a monthly SIP contribution.
// Query: amount, years, rate.
func (h *Handler) HandleSIP(w http.ResponseWriter, r *http.Request) {
	amount, err := floatParam(r, "amount")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	years, err := intParam(r, "years")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, err := floatParam(r, "rate")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := SIPFutureValue(amount, years, rate)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleSWP amortizes a corpus into a level monthly withdrawal.
// Query: principal, years, rate.
func (h *Handler) HandleSWP(w http.ResponseWriter, r *http.Request) {
	principal, err := floatParam(r, "principal")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	years, err := intParam(r, "years")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rate, err := floatParam(r, "rate")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := SWPPlan(principal, years, rate)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleHistoricalSIP replays a monthly SIP against a scheme's actual NAV
// history. Query: scheme_code, amount, years.
func (h *Handler) HandleHistoricalSIP(w http.ResponseWriter, r *http.Request) {
	schemeCode := r.URL.Query().Get("scheme_code")
	if schemeCode == "" {
		h.writeError(w, http.StatusBadRequest, "scheme_code is required")
		return
	}
	amount, err := floatParam(r, "amount")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	years, err := intParam(r, "years")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.nav.NavHistory(r.Context(), schemeCode)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	result, err := HistoricalSIP(series, amount, years)
	if err != nil {
		h.writeCalcError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"scheme_code": schemeCode,
		"years":       years,
		"result":      result,
	})
}

func (h *Handler) writeCalcError(w http.ResponseWriter, err error) {
	h.log.Warn().Err(err).Msg("Calculator request failed")

	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientHistory):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedData):
		h.writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func floatParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.New(name + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
