package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/guest-wallet/internal/client"
	"github.com/AlexZinkM/guest-wallet/internal/contract"
	"github.com/AlexZinkM/guest-wallet/internal/logger"
	"github.com/AlexZinkM/guest-wallet/internal/model"
	"github.com/AlexZinkM/guest-wallet/internal/session"
	"github.com/AlexZinkM/guest-wallet/near"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		lg := logger.Get()
		lg.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, model.ErrorResponse{
		Error:     err.Error(),
		Code:      code,
		RequestID: w.Header().Get("X-Request-ID"),
	})
}

func methodNotAllowed(w http.ResponseWriter, want string) {
	http.Error(w, "Method not allowed. Should be "+want, http.StatusMethodNotAllowed)
}

var contractStatus = map[contract.Kind]int{
	contract.KindTransport:         http.StatusBadGateway,
	contract.KindNotFound:          http.StatusNotFound,
	contract.KindLimitExceeded:     http.StatusTooManyRequests,
	contract.KindUnauthorized:      http.StatusForbidden,
	contract.KindInvalidArgument:   http.StatusBadRequest,
	contract.KindNotForSale:        http.StatusConflict,
	contract.KindDepositMismatch:   http.StatusConflict,
	contract.KindNothingToWithdraw: http.StatusConflict,
	contract.KindRejected:          http.StatusUnprocessableEntity,
}

// errorStatus maps domain errors to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	var ce *contract.Error
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, session.ErrSessionConflict):
		return http.StatusConflict, "session_conflict"
	case errors.Is(err, session.ErrNoCredential):
		return http.StatusNotFound, "no_credential"
	case errors.Is(err, session.ErrNotLoaded):
		return http.StatusServiceUnavailable, "not_loaded"
	case errors.Is(err, near.ErrNotSignedIn):
		return http.StatusUnauthorized, "not_signed_in"
	case errors.Is(err, near.ErrRevokeDisabled):
		return http.StatusForbidden, "revoke_disabled"
	case errors.Is(err, client.ErrRejected):
		return http.StatusForbidden, "issuer_rejected"
	case errors.Is(err, client.ErrUnreachable):
		return http.StatusBadGateway, "issuer_unreachable"
	case errors.Is(err, client.ErrUnexpectedStatus):
		return http.StatusBadGateway, "issuer_error"
	case errors.As(err, &ce):
		if status, ok := contractStatus[ce.Kind]; ok {
			return status, ce.Kind.String()
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		lg := logger.Get()
		lg.Error().Err(err).Str("code", code).Msg("request failed")
	}
	writeError(w, status, code, err)
}
