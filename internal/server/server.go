package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/harshyadavv2456/wealthpulse-backend/internal/cache"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/funds"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/market"
	"github.com/harshyadavv2456/wealthpulse-backend/internal/modules/projections"
)

// Config holds server configuration
type Config struct {
	Port        int
	DevMode     bool
	Log         zerolog.Logger
	Cache       *cache.Manager
	Market      *market.Handler
	Funds       *funds.Handler
	Calculators *projections.Handler
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cache     *cache.Manager
	port      int
	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cache:     cfg.Cache,
		port:      cfg.Port,
		startedAt: time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout covers the slowest upstream chain (quote + history).
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// System
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		// Market data
		r.Get("/stock/{symbol}", cfg.Market.HandleGetStock)
		r.Get("/crypto/{pair}", cfg.Market.HandleGetCrypto)
		r.Get("/market-overview", cfg.Market.HandleMarketOverview)
		r.Get("/top-movers", cfg.Market.HandleTopMovers)

		// Mutual funds
		r.Get("/mutual-fund/{schemeCode}", cfg.Funds.HandleGetFund)
		r.Get("/mutual-funds/search", cfg.Funds.HandleSearch)

		// Calculators
		r.Route("/calculators", func(r chi.Router) {
			r.Get("/sip", cfg.Calculators.HandleSIP)
			r.Get("/swp", cfg.Calculators.HandleSWP)
			r.Get("/sip-historical", cfg.Calculators.HandleHistoricalSIP)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
