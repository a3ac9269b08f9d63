package intent

import (
	"regexp"
	"strings"

	"notify-dispatch/internal/recipient"
)

// Each action family keeps an ordered list of natural-language templates.
// The first template whose pattern matches wins; there is no scoring.

var emailTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)send (?:an )?email to (.+?) (?:with subject (.+?) )?saying (.+)`),
	regexp.MustCompile(`(?i)email (.+?) (?:with subject (.+?) )?saying (.+)`),
	regexp.MustCompile(`(?i)send (.+?) (?:an )?email (?:with subject (.+?) )?saying (.+)`),
	regexp.MustCompile(`(?i)email (.+?) that (.+)`),
	regexp.MustCompile(`(?i)send (?:an )?email to (.+?) (.+)`),
}

var emailMultiTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)send (?:an )?email to (.+?) (?:with subject (.+?) )?saying (.+)`),
	regexp.MustCompile(`(?i)email (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)send (.+?) (?:an )?email saying (.+)`),
}

var smsTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)send (?:a )?(?:text|message|sms) to (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)text (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)message (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)send (.+?) the message (.+)`),
	regexp.MustCompile(`(?i)tell (.+?) that (.+)`),
	regexp.MustCompile(`(?i)text (.+?) (.+)`),
}

var smsMultiTemplates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)send (?:a )?(?:text|message|sms) to (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)text (.+?) saying (.+)`),
	regexp.MustCompile(`(?i)message (.+?) (?:that|saying) (.+)`),
	regexp.MustCompile(`(?i)tell (.+?) that (.+)`),
}

// ExtractSMS matches single-recipient SMS commands. Returns nil when no
// template matches; a miss is not an error.
func ExtractSMS(text string) *Intent {
	text = strings.TrimSpace(text)
	for _, re := range smsTemplates {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		message := CleanTranscript(m[2])
		return &Intent{
			Action:          ActionSendSMS,
			Recipient:       strings.TrimSpace(m[1]),
			Message:         message,
			OriginalMessage: message,
		}
	}
	return nil
}

// ExtractSMSMulti matches SMS commands whose recipient slot may name
// several recipients. Exactly one parsed recipient collapses the intent
// back to the singular action.
func ExtractSMSMulti(text string) *Intent {
	text = strings.TrimSpace(text)
	for _, re := range smsMultiTemplates {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		recipients := recipient.ParseList(m[1])
		message := CleanTranscript(m[2])

		if len(recipients) > 1 {
			return &Intent{
				Action:          ActionSendSMSMulti,
				Recipients:      recipients,
				Message:         message,
				OriginalMessage: message,
			}
		}
		single := strings.TrimSpace(m[1])
		if len(recipients) == 1 {
			single = recipients[0]
		}
		return &Intent{
			Action:          ActionSendSMS,
			Recipient:       single,
			Message:         message,
			OriginalMessage: message,
		}
	}
	return nil
}

// ExtractEmail matches single-recipient email commands. The subject slot
// is optional; when it did not match, Subject stays empty and is filled
// later by subject generation.
func ExtractEmail(text string) *Intent {
	text = strings.TrimSpace(text)
	for _, re := range emailTemplates {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var recipientTok, subject, message string
		if len(m) == 4 {
			recipientTok, subject, message = m[1], m[2], m[3]
		} else {
			recipientTok, message = m[1], m[2]
		}
		message = CleanTranscript(message)
		subject = CleanTranscript(subject)
		return &Intent{
			Action:          ActionSendEmail,
			Recipient:       strings.TrimSpace(recipientTok),
			Subject:         subject,
			Message:         message,
			OriginalMessage: message,
		}
	}
	return nil
}

// ExtractEmailMulti matches email commands with a multi-recipient slot,
// collapsing to the singular action when only one recipient results.
func ExtractEmailMulti(text string) *Intent {
	text = strings.TrimSpace(text)
	for _, re := range emailMultiTemplates {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var recipientsText, subject, message string
		if len(m) == 4 {
			recipientsText, subject, message = m[1], m[2], m[3]
		} else {
			recipientsText, message = m[1], m[2]
		}
		recipients := recipient.ParseList(recipientsText)
		message = CleanTranscript(message)
		subject = CleanTranscript(subject)

		if len(recipients) > 1 {
			return &Intent{
				Action:          ActionSendEmailMulti,
				Recipients:      recipients,
				Subject:         subject,
				Message:         message,
				OriginalMessage: message,
			}
		}
		single := strings.TrimSpace(recipientsText)
		if len(recipients) == 1 {
			single = recipients[0]
		}
		return &Intent{
			Action:          ActionSendEmail,
			Recipient:       single,
			Subject:         subject,
			Message:         message,
			OriginalMessage: message,
		}
	}
	return nil
}
