package api

import (
	"net/http"

	"github.com/google/uuid"

	"stocksim/internal/watch"
	"stocksim/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.logger.Sugar().Warnw("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	acct, sess, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{Account: acct, Session: sess})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	acct, sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Account: acct, Session: sess})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, accountID int64) {
	acct, err := s.accounts.GetAccount(r.Context(), accountID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q, err := s.engine.Quote(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, accountID int64) {
	var req TradeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	result, err := s.engine.ExecuteTrade(r.Context(), types.NewTradeRequest(accountID, req.Symbol, types.Side(normalizeSide(req.Side)), req.Shares))
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func normalizeSide(side string) string {
	if parsed, err := types.ParseSide(side); err == nil {
		return string(parsed)
	}
	return side
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, accountID int64) {
	report, err := s.engine.GetPortfolio(r.Context(), accountID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, accountID int64) {
	txs, err := s.engine.History(r.Context(), accountID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if txs == nil {
		txs = []types.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request, accountID int64) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.sendError(w, r, errBadRequest)
		return
	}
	tx, err := s.engine.Transaction(r.Context(), accountID, id)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, accountID int64) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := s.engine.ExportTransactions(r.Context(), accountID, w); err != nil {
		s.sendError(w, r, err)
	}
}

func (s *Server) handleWatchList(w http.ResponseWriter, r *http.Request, accountID int64) {
	entries, err := s.watch.List(r.Context(), accountID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if entries == nil {
		entries = []watch.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleWatchAdd(w http.ResponseWriter, r *http.Request, accountID int64) {
	var req WatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	item, err := s.watch.Add(r.Context(), accountID, req.Symbol)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleWatchRemove(w http.ResponseWriter, r *http.Request, accountID int64) {
	if err := s.watch.Remove(r.Context(), accountID, r.PathValue("symbol")); err != nil {
		s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAlertList(w http.ResponseWriter, r *http.Request, accountID int64) {
	alerts, err := s.watch.Alerts(r.Context(), accountID)
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []watch.AlertStatus{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAlertCreate(w http.ResponseWriter, r *http.Request, accountID int64) {
	var req AlertRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.sendError(w, r, err)
		return
	}
	alert, err := s.watch.CreateAlert(r.Context(), accountID, watch.NewAlert{
		Symbol:      req.Symbol,
		TargetPrice: req.TargetPrice,
		Direction:   req.Direction,
		Note:        req.Note,
	})
	if err != nil {
		s.sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleAlertDelete(w http.ResponseWriter, r *http.Request, accountID int64) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.sendError(w, r, errBadRequest)
		return
	}
	if err := s.watch.DeleteAlert(r.Context(), accountID, id); err != nil {
		s.sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
