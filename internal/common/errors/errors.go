// Package errors provides the standardized error taxonomy shared by the channel,
// correlation and client layers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Call outcome errors
const (
	// ErrCodeTimeout: no matching reply arrived before the request deadline,
	// or the connection was torn down while the request was pending.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeDecodeFailed: a reply payload does not have the shape its verb expects.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
	// ErrCodeInvalidRequest: the request could not be built (e.g. alter without id).
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Channel errors
const (
	ErrCodeConnectionFailed    ErrorCode = "CONNECTION_FAILED"
	ErrCodeConnectionClosed    ErrorCode = "CONNECTION_CLOSED"
	ErrCodeTransportSendFailed ErrorCode = "TRANSPORT_SEND_FAILED"
)

// Domain errors
const (
	ErrCodeInvalidRecord     ErrorCode = "INVALID_RECORD"
	ErrCodeTemplateMalformed ErrorCode = "TEMPLATE_MALFORMED"
	ErrCodeCacheFailed       ErrorCode = "CACHE_FAILED"
	ErrCodeConfigInvalid     ErrorCode = "CONFIG_INVALID"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTimeoutError reports a request that never received its reply.
func NewTimeoutError(action string, after time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("No reply for '%s'", action),
		Details:   fmt.Sprintf("deadline of %s elapsed", after),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTeardownError reports a request discarded because its connection closed.
// It carries the timeout code: callers treat both the same way.
func NewTeardownError(reason string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   "Request discarded at connection teardown",
		Details:   reason,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeFailedError reports a reply that does not match its verb's shape.
func NewDecodeFailedError(action string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailed,
		Message:   fmt.Sprintf("Malformed reply for '%s'", action),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Request could not be built",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewConnectionFailedError(url string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConnectionFailed,
		Message:   fmt.Sprintf("Could not connect to %s", url),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewConnectionClosedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeConnectionClosed,
		Message:   "Channel is closed",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTransportSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransportSendFailed,
		Message:   "Failed to write request to channel",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRecordError reports a domain record that violates its invariants.
func NewInvalidRecordError(kind string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRecord,
		Message:   fmt.Sprintf("Invalid %s record", kind),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewTemplateMalformedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateMalformed,
		Message:   "The template is incomplete",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailed,
		Message:   fmt.Sprintf("Result cache %s failed", op),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandard extracts a *StandardError from err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

func IsTimeout(err error) bool {
	return HasCode(err, ErrCodeTimeout)
}

func IsDecodeFailed(err error) bool {
	return HasCode(err, ErrCodeDecodeFailed)
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case codeStr == string(ErrCodeTimeout):
		return "TIMEOUT"
	case strings.Contains(codeStr, "DECODE"):
		return "PROTOCOL"
	case strings.Contains(codeStr, "CONNECTION") || strings.Contains(codeStr, "TRANSPORT"):
		return "CHANNEL"
	case strings.Contains(codeStr, "TEMPLATE") || strings.Contains(codeStr, "RECORD"):
		return "DOMAIN"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	default:
		return "INTERNAL"
	}
}
