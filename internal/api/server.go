// Package api serves the simulator over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/repository"
	"stocksim/internal/watch"
)

type Server struct {
	engine   *engine.Engine
	auth     *auth.Service
	watch    *watch.Service
	accounts repository.Accounts
	pinger   interface{ Ping(context.Context) error }
	logger   *zap.Logger
	cfg      config.ServerConfig
	server   *http.Server
}

func NewServer(cfg config.ServerConfig, store repository.Store, eng *engine.Engine, authSvc *auth.Service, watchSvc *watch.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:   eng,
		auth:     authSvc,
		watch:    watchSvc,
		accounts: store,
		pinger:   store,
		logger:   logger,
		cfg:      cfg,
	}
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler returns the routed API with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.authed(s.handleMe))

	mux.HandleFunc("GET /api/stock/{symbol}", s.handleQuote)

	mux.HandleFunc("POST /api/trades", s.authed(s.handleTrade))
	mux.HandleFunc("GET /api/portfolio", s.authed(s.handlePortfolio))
	mux.HandleFunc("GET /api/transactions", s.authed(s.handleHistory))
	mux.HandleFunc("GET /api/transactions/export", s.authed(s.handleExport))
	mux.HandleFunc("GET /api/transactions/{id}", s.authed(s.handleTransaction))

	mux.HandleFunc("GET /api/watchlist", s.authed(s.handleWatchList))
	mux.HandleFunc("POST /api/watchlist", s.authed(s.handleWatchAdd))
	mux.HandleFunc("DELETE /api/watchlist/{symbol}", s.authed(s.handleWatchRemove))

	mux.HandleFunc("GET /api/alerts", s.authed(s.handleAlertList))
	mux.HandleFunc("POST /api/alerts", s.authed(s.handleAlertCreate))
	mux.HandleFunc("DELETE /api/alerts/{id}", s.authed(s.handleAlertDelete))

	return s.withLogging(mux)
}

// Start serves until Stop is called. It returns at once if Stop already ran.
func (s *Server) Start() error {
	s.logger.Info("api listening", zap.String("addr", s.cfg.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type accountHandler func(w http.ResponseWriter, r *http.Request, accountID int64)

// authed resolves the bearer token and passes the account id on.
func (s *Server) authed(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, err := s.auth.Resolve(bearerToken(r))
		if err != nil {
			s.sendError(w, r, err)
			return
		}
		next(w, r, accountID)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
