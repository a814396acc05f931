package funds

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/domain"
)

// Handler handles mutual-fund HTTP requests
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new funds handler
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "funds").Logger(),
	}
}

// HandleGetFund returns the detail bundle for a scheme code.
func (h *Handler) HandleGetFund(w http.ResponseWriter, r *http.Request) {
	schemeCode := chi.URLParam(r, "schemeCode")
	if schemeCode == "" {
		h.writeError(w, http.StatusBadRequest, "Scheme code is required")
		return
	}

	detail, err := h.service.GetFund(r.Context(), schemeCode)
	if err != nil {
		h.writeServiceError(w, schemeCode, err)
		return
	}

	h.writeJSON(w, http.StatusOK, detail)
}

// HandleSearch matches catalog schemes by name.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	matches, err := h.service.Search(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, query, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": matches,
		"count":   len(matches),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, subject string, err error) {
	h.log.Warn().Err(err).Str("subject", subject).Msg("Fund request failed")

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
