// Package intent defines the structured command model and the
// natural-language extractors that produce it.
package intent

import (
	"notify-dispatch/internal/common/errors"
)

// Action identifies what a parsed command wants done.
type Action string

const (
	ActionSendSMS        Action = "send_sms"
	ActionSendSMSMulti   Action = "send_sms_multi"
	ActionSendEmail      Action = "send_email"
	ActionSendEmailMulti Action = "send_email_multi"

	// ActionSendMixed is produced only by the router's mixed-recipient
	// heuristic; the dispatch engine partitions its recipients by
	// classified kind instead of assuming one channel.
	ActionSendMixed Action = "send_mixed"
)

// Intent is the structured output of command extraction. Single-recipient
// actions carry Recipient; multi actions carry Recipients. Subject is only
// meaningful for email actions and an empty Subject means "absent, generate
// one later", never a literal empty subject.
type Intent struct {
	Action          Action   `json:"action"`
	Recipient       string   `json:"recipient,omitempty"`
	Recipients      []string `json:"recipients,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	Message         string   `json:"message"`
	OriginalMessage string   `json:"originalMessage"`
}

// AllRecipients returns the recipient set regardless of arity.
func (in *Intent) AllRecipients() []string {
	if in.Recipient != "" {
		return []string{in.Recipient}
	}
	return in.Recipients
}

// Validate rejects intents that must not reach the dispatch engine.
func (in *Intent) Validate() error {
	if in.Message == "" {
		return errors.NewEmptyMessageError()
	}
	if len(in.AllRecipients()) == 0 {
		return errors.NewNoRecipientsError()
	}
	switch in.Action {
	case ActionSendSMS, ActionSendSMSMulti, ActionSendEmail, ActionSendEmailMulti, ActionSendMixed:
		return nil
	}
	return errors.NewUnknownActionError(string(in.Action))
}
