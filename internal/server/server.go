package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/custodia-labs/treasury-ledger/internal/treasury"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Log      zerolog.Logger
	Treasury *treasury.Treasury
}

// Server is the HTTP control and query surface over the treasury.
// Authorization decisions live in the treasury core; the server only
// extracts the caller principal from the X-Caller-Address header and
// passes it through.
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	treasury *treasury.Treasury
}

func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		treasury: cfg.Treasury,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(30 * time.Second))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/protocols", s.handleAddProtocol)
		r.Get("/protocols", s.handleListProtocols)
		r.Post("/deposits", s.handleDeposit)
		r.Post("/withdrawals/protocol", s.handleWithdrawProtocolAllocation)
		r.Post("/withdrawals/sweep", s.handleSweep)
		r.Post("/compound", s.handleCompound)
		r.Get("/balances", s.handleBalance)
		r.Get("/entries", s.handleEntries)
	})
}

// Start begins listening for requests.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
