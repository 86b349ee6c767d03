// Package httputil holds the JSON request/response helpers shared by handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "trustscore/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// Validatable is implemented by request DTOs. Validate normalises the
// request in place and fills any parsed fields.
type Validatable interface {
	Validate() error
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

var statusByCode = map[dErrors.Code]int{
	dErrors.CodeBadRequest:                    http.StatusBadRequest,
	dErrors.CodeValidation:                    http.StatusBadRequest,
	dErrors.CodeInvalidConfig:                 http.StatusBadRequest,
	dErrors.CodeInvalidTimestamp:              http.StatusBadRequest,
	dErrors.CodeSourcePayloadMismatch:         http.StatusBadRequest,
	dErrors.CodeInvalidSourceProofData:        http.StatusBadRequest,
	dErrors.CodeInvalidIdentityNullifier:      http.StatusBadRequest,
	dErrors.CodeInvalidAttestationInstruction: http.StatusBadRequest,
	dErrors.CodeInvalidAttestationMessage:     http.StatusBadRequest,
	dErrors.CodeUnauthorized:                  http.StatusUnauthorized,
	dErrors.CodeNotFound:                      http.StatusNotFound,
	dErrors.CodeProofNotFound:                 http.StatusNotFound,
	dErrors.CodeConflict:                      http.StatusConflict,
	dErrors.CodeNotInitialized:                http.StatusConflict,
	dErrors.CodeAlreadyInitialized:            http.StatusConflict,
	dErrors.CodeProofHashAlreadyUsed:          http.StatusConflict,
	dErrors.CodeAttestationNonceAlreadyUsed:   http.StatusConflict,
	dErrors.CodeDuplicateIdentityClaim:        http.StatusConflict,
	dErrors.CodeIdentityRevokedPermanent:      http.StatusConflict,
	dErrors.CodeProofAlreadyRevoked:           http.StatusConflict,
	dErrors.CodeNoVerifierRotationPending:     http.StatusConflict,
	dErrors.CodeVerifierRotationNotReady:      http.StatusConflict,
	dErrors.CodeProofExpired:                  http.StatusUnprocessableEntity,
	dErrors.CodeScoreBelowThreshold:           http.StatusUnprocessableEntity,
	dErrors.CodeOverflow:                      http.StatusUnprocessableEntity,
	dErrors.CodeCooldownPeriodActive:          http.StatusTooManyRequests,
	dErrors.CodeTimeout:                       http.StatusGatewayTimeout,
	dErrors.CodeInternal:                      http.StatusInternalServerError,
}

// StatusFor maps an error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error", "error_description"}. Internal errors never
// expose their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusFor(code), resp)
}

// DecodeAndPrepare decodes the JSON body into T and validates it. On failure
// it writes the error response and returns false.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"error", err,
			"request_id", requestID,
		)
		var syntaxErr *json.SyntaxError
		msg := "invalid JSON body"
		if errors.As(err, &syntaxErr) {
			msg = "malformed JSON body"
		}
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, msg))
		return nil, false
	}

	if v, ok := any(&req).(Validatable); ok {
		if err := v.Validate(); err != nil {
			logger.WarnContext(ctx, "invalid request",
				"error", err,
				"request_id", requestID,
			)
			WriteError(w, err)
			return nil, false
		}
	}
	return &req, true
}
