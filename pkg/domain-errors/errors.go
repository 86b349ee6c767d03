// Package domainerrors provides coded errors shared by services and transports.
//
// Services return *Error values so handlers can map failures to a stable wire
// code without string matching. Every code is surfaced verbatim to callers.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of failure.
type Code string

// Transport-level codes.
const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
	CodeNotInitialized     Code = "not_initialized"
	CodeAlreadyInitialized Code = "already_initialized"
)

// Configuration and arithmetic.
const (
	CodeInvalidConfig Code = "invalid_config"
	CodeOverflow      Code = "overflow"
)

// Replay protection.
const (
	CodeProofHashAlreadyUsed        Code = "proof_hash_already_used"
	CodeAttestationNonceAlreadyUsed Code = "attestation_nonce_already_used"
	CodeDuplicateIdentityClaim      Code = "duplicate_identity_claim"
	CodeIdentityRevokedPermanent    Code = "identity_revoked_permanent"
)

// Temporal checks.
const (
	CodeInvalidTimestamp     Code = "invalid_timestamp"
	CodeProofExpired         Code = "proof_expired"
	CodeCooldownPeriodActive Code = "cooldown_period_active"
)

// Payload and attestation checks.
const (
	CodeSourcePayloadMismatch         Code = "source_payload_mismatch"
	CodeInvalidSourceProofData        Code = "invalid_source_proof_data"
	CodeInvalidIdentityNullifier      Code = "invalid_identity_nullifier"
	CodeInvalidAttestationInstruction Code = "invalid_attestation_instruction"
	CodeInvalidAttestationMessage     Code = "invalid_attestation_message"
)

// Proof lifecycle and verifier rotation.
const (
	CodeProofNotFound             Code = "proof_not_found"
	CodeProofAlreadyRevoked       Code = "proof_already_revoked"
	CodeScoreBelowThreshold       Code = "score_below_threshold"
	CodeNoVerifierRotationPending Code = "no_verifier_rotation_pending"
	CodeVerifierRotationNotReady  Code = "verifier_rotation_not_ready"
)

// Error is a coded domain error. Err optionally carries the underlying cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a coded error with the same code, so
// errors.Is(err, dErrors.New(code, "")) matches by code only.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to an underlying error.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal for
// uncoded errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the outermost coded error in the chain has code.
func HasCode(err error, code Code) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// Is is shorthand for HasCode kept for handler call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// MessageOf returns the message of the outermost coded error, or the error
// text for uncoded errors.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
