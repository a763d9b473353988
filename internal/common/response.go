package common

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// ErrorBody is the "error" object of every failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

// JSON encodes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes {"error":{"code","message","details"}}.
func JSONError(w http.ResponseWriter, status int, code, message string, details any) {
	JSON(w, status, errorEnvelope{Error: ErrorBody{Code: code, Message: message, Details: details}})
}

// WriteError maps err to its response. Errors that are not AppErrors become a
// generic 500; the cause of any 5xx is logged and kept out of the body.
func WriteError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	ae, ok := AsAppError(err)
	if !ok {
		ae = ErrInternal("internal server error", err)
	}
	if ae.HTTPStatus >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("code", ae.Code).Int("status", ae.HTTPStatus).Msg(ae.Message)
	}
	JSONError(w, ae.HTTPStatus, ae.Code, ae.Message, ae.Details)
}
