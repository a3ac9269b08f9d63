package dispatch

import (
	"time"

	"notify-dispatch/internal/channel"
)

// Batch kinds, mirrored in metrics labels.
const (
	KindSMS        = "sms"
	KindSMSMulti   = "sms_multi"
	KindEmail      = "email"
	KindEmailMulti = "email_multi"
	KindMixed      = "mixed_multi"
)

// Delivery is the per-recipient outcome of one send attempt. Immutable
// once produced.
type Delivery struct {
	Recipient    string          `json:"recipient"`              // original, human-entered form
	NormalizedTo string          `json:"normalizedTo,omitempty"` // address actually used for sending
	Channel      channel.Channel `json:"channel"`
	Success      bool            `json:"success"`
	Error        string          `json:"error,omitempty"`
	ProviderID   string          `json:"providerId,omitempty"`
	SentAt       time.Time       `json:"sentAt,omitempty"`
}

// Batch aggregates one dispatch call. Deliveries are ordered by
// completion, which is non-deterministic across runs; callers must not
// rely on it.
type Batch struct {
	BatchID         string     `json:"batchId"`
	Kind            string     `json:"kind"`
	Total           int        `json:"totalRecipients"`
	Succeeded       int        `json:"successfulSends"`
	Failed          int        `json:"failedSends"`
	PhoneRecipients int        `json:"phoneRecipients,omitempty"`
	EmailRecipients int        `json:"emailRecipients,omitempty"`
	OtherRecipients int        `json:"otherRecipients,omitempty"`
	OriginalMessage string     `json:"originalMessage"`
	EnhancedMessage string     `json:"enhancedMessage"`
	Subject         string     `json:"subject,omitempty"`
	Success         bool       `json:"success"`
	Deliveries      []Delivery `json:"results"`
}
