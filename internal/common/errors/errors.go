// Package errors provides standardized error types for the dispatch pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Batch-level precondition failures. These short-circuit before any
	// dispatch work starts.
	ErrCodeNoRecipients  ErrorCode = "NO_RECIPIENTS"
	ErrCodeEmptyMessage  ErrorCode = "EMPTY_MESSAGE"
	ErrCodeUnknownAction ErrorCode = "UNKNOWN_ACTION"

	// Per-recipient delivery failures. Recorded on the delivery result,
	// never abort sibling sends.
	ErrCodeInvalidRecipientFormat ErrorCode = "INVALID_RECIPIENT_FORMAT"
	ErrCodeUnrecognizedRecipient  ErrorCode = "UNRECOGNIZED_RECIPIENT"
	ErrCodeChannelSendFailed      ErrorCode = "CHANNEL_SEND_FAILED"
	ErrCodeChannelNotConfigured   ErrorCode = "CHANNEL_NOT_CONFIGURED"

	// Routing.
	ErrCodeNoIntentMatch ErrorCode = "NO_INTENT_MATCH"

	// Service reminders.
	ErrCodeReminderNotFound    ErrorCode = "REMINDER_NOT_FOUND"
	ErrCodeDuplicateReminder   ErrorCode = "DUPLICATE_REMINDER"
	ErrCodeReminderStoreFailed ErrorCode = "REMINDER_STORE_FAILED"
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

// NewNoRecipientsError rejects a dispatch with an empty recipient list.
func NewNoRecipientsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNoRecipients,
		Message:   "No recipients supplied",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyMessageError rejects a dispatch with an empty message body.
func NewEmptyMessageError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyMessage,
		Message:   "No message specified",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownActionError rejects an intent with an unsupported action kind.
func NewUnknownActionError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownAction,
		Message:   "Unknown action",
		Details:   action,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRecipientFormatError marks a recipient whose kind mismatches
// the expected channel.
func NewInvalidRecipientFormatError(token, channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRecipientFormat,
		Message:   fmt.Sprintf("Invalid address format for %s channel", channel),
		Details:   token,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnrecognizedRecipientError marks a recipient that is neither a phone
// number nor an email address.
func NewUnrecognizedRecipientError(token string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnrecognizedRecipient,
		Message:   "Unrecognized recipient format (not phone or email)",
		Details:   token,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelSendFailedError wraps a transport or auth failure surfaced by
// a channel sender.
func NewChannelSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelSendFailed,
		Message:   fmt.Sprintf("Failed to send via %s", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewChannelNotConfiguredError marks every send on an unconfigured channel.
func NewChannelNotConfiguredError(channel string) *StandardError {
	return &StandardError{
		Code:      ErrCodeChannelNotConfigured,
		Message:   fmt.Sprintf("%s channel not configured", channel),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoIntentMatchError reports that no extractor stage produced an intent.
func NewNoIntentMatchError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoIntentMatch,
		Message:   "Could not interpret the request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReminderNotFoundError reports a missing reminder ID.
func NewReminderNotFoundError(id int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeReminderNotFound,
		Message:   fmt.Sprintf("Reminder %d not found", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateReminderError reports a reminder colliding on
// service type, vehicle and due date.
func NewDuplicateReminderError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateReminder,
		Message:   "A reminder for this service type, vehicle, and date already exists",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReminderStoreFailedError wraps a database failure in the reminder store.
func NewReminderStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReminderStoreFailed,
		Message:   "Reminder store operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
