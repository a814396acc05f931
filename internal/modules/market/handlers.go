package market

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// Handler handles market-data HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "market").Logger(),
	}
}

// HandleGetStock returns the quote envelope for a listed equity or index.
func (h *Handler) HandleGetStock(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	if symbol == "" {
		h.writeError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote, err := h.service.GetQuote(r.Context(), symbol)
	if err != nil {
		h.writeResolutionError(w, symbol, err)
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

// HandleGetCrypto returns the quote envelope for a crypto pair.
func (h *Handler) HandleGetCrypto(w http.ResponseWriter, r *http.Request) {
	pair := chi.URLParam(r, "pair")
	if pair == "" {
		h.writeError(w, http.StatusBadRequest, "Pair is required")
		return
	}

	quote, err := h.service.GetQuote(r.Context(), pair)
	if err != nil {
		h.writeResolutionError(w, pair, err)
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

// HandleMarketOverview returns quotes for the fixed index set.
func (h *Handler) HandleMarketOverview(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.Overview(r.Context())
	if err != nil {
		h.writeResolutionError(w, "overview", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"indices": quotes,
	})
}

// HandleTopMovers returns the watchlist's top gainers and losers.
func (h *Handler) HandleTopMovers(w http.ResponseWriter, r *http.Request) {
	movers, err := h.service.Movers(r.Context())
	if err != nil {
		h.writeResolutionError(w, "top_movers", err)
		return
	}

	h.writeJSON(w, http.StatusOK, movers)
}

func (h *Handler) writeResolutionError(w http.ResponseWriter, subject string, err error) {
	h.log.Warn().Err(err).Str("subject", subject).Msg("Market request failed")

	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedData):
		h.writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrInsufficientHistory):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.writeError(w, http.StatusInternalServerError, err.Error())
	}
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
