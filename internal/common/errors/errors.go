// Package errors provides standardized error handling for the conversation
// pipeline. Errors fall into three families: configuration errors abort the
// turn before any remote call, provider errors abort the turn after the model
// call failed, and downstream errors are logged and swallowed so the turn
// still completes.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Configuration family: required credential/field missing for the
	// selected provider mode. Never retryable, session is not created.
	ErrCodeConfigurationMissing   ErrorCode = "CONFIGURATION_MISSING"
	ErrCodeSessionHandshakeFailed ErrorCode = "SESSION_HANDSHAKE_FAILED"

	// Provider family: model-service round trip failed.
	ErrCodeProviderCallFailed ErrorCode = "PROVIDER_CALL_FAILED"

	// Downstream family: side effects that must never block a turn.
	ErrCodeWebhookDeliveryFailed ErrorCode = "WEBHOOK_DELIVERY_FAILED"
	ErrCodeLookupQueryFailed     ErrorCode = "LOOKUP_QUERY_FAILED"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewConfigurationError reports a missing credential or provider field.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationMissing,
		Message:   "Required provider configuration is missing",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionHandshakeError reports a failed session-construction handshake
// with the generation service.
func NewSessionHandshakeError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionHandshakeFailed,
		Message:   "Chat session handshake failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderError wraps a failed model-service call. The caller may re-issue
// the same user turn, so the error is marked retryable.
func NewProviderError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderCallFailed,
		Message:   "Model service call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookDeliveryError reports a webhook POST that did not land. Callers
// log it and move on; a missed CRM sync never blocks the chat turn.
func NewWebhookDeliveryError(endpoint string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookDeliveryFailed,
		Message:   "Webhook delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
	}
}

// NewLookupQueryError reports a failed print-log query.
func NewLookupQueryError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLookupQueryFailed,
		Message:   "Print log lookup failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// IsConfiguration reports whether err belongs to the configuration family.
func IsConfiguration(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == ErrCodeConfigurationMissing || stdErr.Code == ErrCodeSessionHandshakeFailed
}

// IsProvider reports whether err is a failed model-service call.
func IsProvider(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == ErrCodeProviderCallFailed
}

// IsDownstream reports whether err belongs to the swallowed downstream family.
func IsDownstream(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == ErrCodeWebhookDeliveryFailed || stdErr.Code == ErrCodeLookupQueryFailed
}

// Code extracts the error code, or UNKNOWN_ERROR for foreign errors.
func Code(err error) string {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return string(stdErr.Code)
	}
	return "UNKNOWN_ERROR"
}
