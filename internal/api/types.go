package api

import (
	"fmt"
	"net/http"
)

// Envelope is the uniform response wrapper returned by every endpoint.
// Data is set only on success, Error and Code only on failure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Success wraps a payload in a success envelope
func Success(payload any) Envelope {
	return Envelope{
		Success: true,
		Data:    payload,
	}
}

// Failure wraps an error in a failure envelope
func Failure(err *Error) Envelope {
	return Envelope{
		Success: false,
		Error:   err.Message,
		Code:    err.Code,
	}
}

// Error codes
const (
	ErrorCodeInvalidRequest    = "INVALID_REQUEST"
	ErrorCodeMissingField      = "MISSING_FIELD"
	ErrorCodeInvalidIdentifier = "INVALID_IDENTIFIER"
	ErrorCodeInvalidSecretKey  = "INVALID_SECRET_KEY"
	ErrorCodeInvalidSignature  = "INVALID_SIGNATURE"
	ErrorCodeInvalidDecimals   = "INVALID_DECIMALS"
	ErrorCodeInvalidAmount     = "INVALID_AMOUNT"
	ErrorCodeKeyReconstruction = "KEY_RECONSTRUCTION_FAILED"
	ErrorCodeInstructionBuild  = "INSTRUCTION_BUILD_FAILED"
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeInternalError     = "INTERNAL_ERROR"
)

// Error is a request failure that is reported to the caller in an Envelope
type Error struct {
	Code    string
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Field == "" || t.Field == e.Field)
}

// StatusCode maps the error to an HTTP status.
// Only build and internal failures are server errors.
func (e *Error) StatusCode() int {
	switch e.Code {
	case ErrorCodeInstructionBuild, ErrorCodeInternalError:
		return http.StatusInternalServerError
	case ErrorCodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// Sentinels for errors.Is
var (
	ErrInvalidRequest    = &Error{Code: ErrorCodeInvalidRequest}
	ErrMissingField      = &Error{Code: ErrorCodeMissingField}
	ErrInvalidIdentifier = &Error{Code: ErrorCodeInvalidIdentifier}
	ErrInvalidSecretKey  = &Error{Code: ErrorCodeInvalidSecretKey}
	ErrInvalidSignature  = &Error{Code: ErrorCodeInvalidSignature}
	ErrInvalidDecimals   = &Error{Code: ErrorCodeInvalidDecimals}
	ErrInvalidAmount     = &Error{Code: ErrorCodeInvalidAmount}
	ErrKeyReconstruction = &Error{Code: ErrorCodeKeyReconstruction}
	ErrInstructionBuild  = &Error{Code: ErrorCodeInstructionBuild}
)

func InvalidRequest(err error) *Error {
	return &Error{Code: ErrorCodeInvalidRequest, Message: "Invalid request format", Err: err}
}

func MissingField(field string) *Error {
	return &Error{
		Code:    ErrorCodeMissingField,
		Field:   field,
		Message: fmt.Sprintf("missing required field: %s", field),
	}
}

func InvalidIdentifier(field string, err error) *Error {
	return &Error{
		Code:    ErrorCodeInvalidIdentifier,
		Field:   field,
		Message: fmt.Sprintf("invalid %s: expected a base58-encoded 32-byte public key", field),
		Err:     err,
	}
}

func InvalidSecretKey(err error) *Error {
	return &Error{
		Code:    ErrorCodeInvalidSecretKey,
		Field:   "secret",
		Message: "invalid secret: expected a base58-encoded 64-byte secret key",
		Err:     err,
	}
}

func InvalidSignature(err error) *Error {
	return &Error{
		Code:    ErrorCodeInvalidSignature,
		Field:   "signature",
		Message: "invalid signature: expected a base64-encoded 64-byte signature",
		Err:     err,
	}
}

func InvalidDecimals() *Error {
	return &Error{
		Code:    ErrorCodeInvalidDecimals,
		Field:   "decimals",
		Message: "invalid decimals: must be between 0 and 18",
	}
}

func InvalidAmount() *Error {
	return &Error{
		Code:    ErrorCodeInvalidAmount,
		Field:   "amount",
		Message: "invalid amount: must be greater than 0",
	}
}

func KeyReconstruction(err error) *Error {
	return &Error{
		Code:    ErrorCodeKeyReconstruction,
		Field:   "secret",
		Message: "invalid secret: public key does not match private key seed",
		Err:     err,
	}
}

func InstructionBuild(err error) *Error {
	return &Error{
		Code:    ErrorCodeInstructionBuild,
		Message: fmt.Sprintf("failed to build instruction: %v", err),
		Err:     err,
	}
}

func NotFound() *Error {
	return &Error{Code: ErrorCodeNotFound, Message: "Route not found"}
}

func Internal(err error) *Error {
	return &Error{Code: ErrorCodeInternalError, Message: "Internal server error", Err: err}
}
