// Package channel holds the delivery channel sender contracts and their
// provider implementations. Senders issue exactly one attempt per call;
// any retry policy belongs to the caller's provider, not here.
package channel

import (
	"context"
	"time"
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// SendResult carries provider metadata for a successful send.
type SendResult struct {
	ProviderID string    `json:"providerId,omitempty"`
	SentAt     time.Time `json:"sentAt"`
}

// SMSSender sends one text message to one normalized phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) (*SendResult, error)
}

// EmailSender sends one email to one address.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) (*SendResult, error)
}
