// Package router turns free-form command text into a structured intent
// by trying extraction stages in a fixed order.
package router

import (
	"context"
	"regexp"
	"strings"

	"notify-dispatch/internal/common/errors"
	"notify-dispatch/internal/common/logger"
	"notify-dispatch/internal/common/metrics"
	"notify-dispatch/internal/intent"
	"notify-dispatch/internal/recipient"
)

// Interpreter is the AI fallback used when no pattern stage matches.
type Interpreter interface {
	Interpret(ctx context.Context, text string) (*intent.Intent, error)
}

// Router resolves command text to an intent. Stage order is fixed:
// single-recipient email, multi-recipient email, single-recipient SMS,
// multi-recipient SMS, the mixed-recipient heuristic, then the AI
// interpreter. The first stage that produces an intent wins. Single
// extractors run before their multi counterparts so the optional
// subject clause in the email templates gets first claim on the text;
// the multi extractors catch the phrasings the singles miss.
type Router struct {
	interpreter Interpreter
	logger      logger.Logger
}

func New(interpreter Interpreter, log logger.Logger) *Router {
	return &Router{
		interpreter: interpreter,
		logger:      log.With(map[string]interface{}{"component": "router"}),
	}
}

// mixedPatterns back the heuristic for commands that name recipients on
// more than one channel in a single breath.
var mixedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:send|message) (.+?) (?:saying|that) (.+)`),
	regexp.MustCompile(`(?i)(?:tell|notify) (.+?) (?:that|about) (.+)`),
}

// Route resolves text to an intent, or a NO_INTENT_MATCH error when
// every stage misses.
func (r *Router) Route(ctx context.Context, text string) (*intent.Intent, error) {
	text = strings.TrimSpace(text)

	stages := []struct {
		name    string
		extract func(string) *intent.Intent
	}{
		{"email", intent.ExtractEmail},
		{"email_multi", intent.ExtractEmailMulti},
		{"sms", intent.ExtractSMS},
		{"sms_multi", intent.ExtractSMSMulti},
		{"mixed", extractMixed},
	}

	for _, stage := range stages {
		if in := stage.extract(text); in != nil {
			metrics.RouterMatches.WithLabelValues(stage.name).Inc()
			r.logger.Debug("command routed", map[string]interface{}{
				"stage":  stage.name,
				"action": in.Action,
			})
			return in, nil
		}
	}

	if r.interpreter != nil {
		in, err := r.interpreter.Interpret(ctx, text)
		if err == nil {
			metrics.RouterMatches.WithLabelValues("ai").Inc()
			return in, nil
		}
		r.logger.Warn("AI interpretation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	metrics.RouterMatches.WithLabelValues("miss").Inc()
	return nil, errors.NewNoIntentMatchError(text)
}

// extractMixed handles commands whose recipient slot names concrete
// addresses, possibly across channels. The gate is the pair of trigger
// words "send" and "message"; it only fires when at least one token
// classifies as a phone number or email address, since a list of bare
// names belongs to the channel-specific extractors or the AI.
func extractMixed(text string) *intent.Intent {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "send") && !strings.Contains(lower, "message") {
		return nil
	}

	for _, re := range mixedPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		recipients := recipient.ParseList(m[1])
		if len(recipients) == 0 {
			continue
		}

		concrete := 0
		for _, tok := range recipients {
			if recipient.Classify(tok) != recipient.KindUnknown {
				concrete++
			}
		}
		if concrete == 0 {
			continue
		}

		message := intent.CleanTranscript(m[2])
		return &intent.Intent{
			Action:          intent.ActionSendMixed,
			Recipients:      recipients,
			Message:         message,
			OriginalMessage: message,
		}
	}
	return nil
}
