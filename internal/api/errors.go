package api

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"stocksim/internal/auth"
	"stocksim/internal/engine"
	"stocksim/internal/watch"
)

var statusByKind = map[engine.Kind]int{
	engine.KindInvalidQuantity:     http.StatusBadRequest,
	engine.KindInvalidSide:         http.StatusBadRequest,
	engine.KindInvalidSymbol:       http.StatusBadRequest,
	engine.KindInsufficientFunds:   http.StatusUnprocessableEntity,
	engine.KindInsufficientShares:  http.StatusUnprocessableEntity,
	engine.KindNoPosition:          http.StatusUnprocessableEntity,
	engine.KindPriceUnavailable:    http.StatusServiceUnavailable,
	engine.KindNotFound:            http.StatusNotFound,
	engine.KindForbidden:           http.StatusForbidden,
	engine.KindPersistenceFailure:  http.StatusInternalServerError,
	engine.KindLedgerInconsistency: http.StatusInternalServerError,
}

// requestErrors are validation failures outside the trade engine, reported
// with their own text.
var requestErrors = []struct {
	err    error
	kind   string
	status int
}{
	{auth.ErrInvalidUsername, "InvalidUsername", http.StatusBadRequest},
	{auth.ErrInvalidPassword, "InvalidPassword", http.StatusBadRequest},
	{auth.ErrUsernameTaken, "UsernameTaken", http.StatusConflict},
	{auth.ErrInvalidCredentials, "InvalidCredentials", http.StatusUnauthorized},
	{auth.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized},
	{watch.ErrInvalidTarget, "InvalidTarget", http.StatusBadRequest},
	{watch.ErrInvalidDirection, "InvalidDirection", http.StatusBadRequest},
	{watch.ErrDuplicateAlert, "DuplicateAlert", http.StatusConflict},
	{watch.ErrInvalidSymbol, string(engine.KindInvalidSymbol), http.StatusBadRequest},
}

var errBadRequest = errors.New("malformed request body")

// sendError writes err as an ErrorResponse. Internal details are logged,
// never returned.
func (s *Server) sendError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "BadRequest", Message: errBadRequest.Error()})
		return
	}
	for _, re := range requestErrors {
		if errors.Is(err, re.err) {
			writeJSON(w, re.status, ErrorResponse{Error: re.kind, Message: re.err.Error()})
			return
		}
	}

	kind := engine.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	writeJSON(w, status, ErrorResponse{Error: string(kind), Message: engine.Message(kind)})
}
