package server

import (
	"context"
	"net/http"
	"time"

	"treats/domain/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Config carries the server's listen address and the daily bonus size
type Config struct {
	Addr             string
	DailyBonusAmount int64
}

// Server is the HTTP surface of the treats ledger. Authentication happens at
// the upstream gateway, which forwards the caller identity in X-Account-ID.
type Server struct {
	httpServer *http.Server

	transfers    interfaces.TransferService
	credits      interfaces.CreditService
	leaderboards interfaces.LeaderboardService
	accounts     interfaces.AccountService

	dailyBonusAmount int64
}

// New creates the server and mounts all routes
func New(cfg Config, transfers interfaces.TransferService, credits interfaces.CreditService,
	leaderboards interfaces.LeaderboardService, accounts interfaces.AccountService) *Server {

	s := &Server{
		transfers:        transfers,
		credits:          credits,
		leaderboards:     leaderboards,
		accounts:         accounts,
		dailyBonusAmount: cfg.DailyBonusAmount,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/treats/give", s.handleGive)
		r.Post("/treats/purchase", s.handlePurchase)
		r.Post("/treats/daily-bonus", s.handleDailyBonus)
		r.Get("/leaderboard/{period}", s.handleLeaderboard)
		r.Get("/accounts/{id}", s.handleGetAccount)
		r.Get("/accounts/{id}/history", s.handleGetHistory)
	})

	// Called by the identity service when a new identity is created
	r.Post("/internal/accounts", s.handleEnsureAccount)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
