package errors

import (
	stdErrors "errors"
	"net/http"
)

// Code is the machine readable error kind returned to API clients.
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInvalidReference  Code = "INVALID_REFERENCE"
	CodeInsufficientStock Code = "INSUFFICIENT_STOCK"
	CodeNegativeStock     Code = "NEGATIVE_STOCK"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeStateConflict     Code = "STATE_CONFLICT"
	CodeIdempotency       Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit         Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal          Code = "INTERNAL_ERROR"
	CodeDependency        Code = "DEPENDENCY_ERROR"
)

// Metadata describes how a code is rendered over HTTP. Details are only sent
// for codes where they help the caller fix the request.
type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:        {http.StatusBadRequest, "validation failed", true},
	CodeInvalidReference:  {http.StatusBadRequest, "one or more referenced feed products do not exist", true},
	CodeInsufficientStock: {http.StatusConflict, "insufficient stock", true},
	CodeNegativeStock:     {http.StatusConflict, "stock cannot go below zero", true},
	CodeUnauthorized:      {http.StatusUnauthorized, "authentication required", false},
	CodeForbidden:         {http.StatusForbidden, "access denied", false},
	CodeNotFound:          {http.StatusNotFound, "resource not found", false},
	CodeConflict:          {http.StatusConflict, "conflict detected", false},
	CodeStateConflict:     {http.StatusUnprocessableEntity, "state transition disallowed", true},
	CodeIdempotency:       {http.StatusConflict, "idempotency key reused", true},
	CodeRateLimit:         {http.StatusTooManyRequests, "rate limit exceeded", false},
	CodeInternal:          {http.StatusInternalServerError, "internal server error", false},
	CodeDependency:        {http.StatusServiceUnavailable, "dependency unavailable", true},
}

// MetadataFor falls back to CodeInternal for unknown codes.
func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error services return. The message is safe to show to
// API clients for non-5xx codes; the cause never is.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e != nil {
		e.details = details
	}
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.code) + ": " + e.message
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As returns the outermost *Error in err's chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries a typed error with the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}
