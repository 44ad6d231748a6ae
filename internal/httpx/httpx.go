// Package httpx mirrors the teacher's pkg/httpx JSON envelope: every
// response carries a request_id, and errors render as
// {"error":{"kind","message","detail"}}.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/finvault/fvl/pkg/fvlerrors"
)

func NewRequestID() string { return "req_" + uuid.NewString() }

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ReadJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// WriteError renders an fvlerrors.Error per §7's JSON-mode contract, with
// a status code derived from its Kind.
func WriteError(w http.ResponseWriter, err *fvlerrors.Error) {
	WriteJSON(w, statusFor(err.Kind), map[string]any{
		"request_id": NewRequestID(),
		"error": map[string]any{
			"kind":    err.Kind,
			"message": err.Message,
			"detail":  err.Detail,
		},
	})
}

func statusFor(kind fvlerrors.Kind) int {
	switch kind {
	case fvlerrors.KindParseError, fvlerrors.KindValidationError, fvlerrors.KindUnknownCommand,
		fvlerrors.KindBadAddress, fvlerrors.KindBadAmount, fvlerrors.KindInvalidNonce:
		return http.StatusBadRequest
	case fvlerrors.KindUnknownSystem, fvlerrors.KindUnknownOracle, fvlerrors.KindUnknownAction:
		return http.StatusNotFound
	case fvlerrors.KindUnauthorized, fvlerrors.KindNotDeployer:
		return http.StatusForbidden
	case fvlerrors.KindInsufficientBalance, fvlerrors.KindPaused, fvlerrors.KindCapExceeded, fvlerrors.KindAlreadyMinted:
		return http.StatusConflict
	case fvlerrors.KindStateDivergence, fvlerrors.KindLogCorruption, fvlerrors.KindIoFailure:
		return http.StatusInternalServerError
	case fvlerrors.KindRpcUnavailable:
		return http.StatusServiceUnavailable
	case fvlerrors.KindRpcRejected:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
