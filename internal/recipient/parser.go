package recipient

import (
	"regexp"
	"strings"
)

var (
	andSeparator      = regexp.MustCompile(`(?i)\s+and\s+`)
	ampSeparator      = regexp.MustCompile(`\s+&\s+`)
	commaAndSeparator = regexp.MustCompile(`(?i)\s*,\s*and\s+`)
)

// ParseList splits a free-text recipient list into discrete tokens.
// Conjunctions ("and", "&", ", and") are rewritten to commas before
// splitting. Order matches left-to-right order in the source text.
func ParseList(text string) []string {
	text = strings.TrimSpace(text)

	text = commaAndSeparator.ReplaceAllString(text, ", ")
	text = andSeparator.ReplaceAllString(text, ", ")
	text = ampSeparator.ReplaceAllString(text, ", ")

	parts := strings.Split(text, ",")
	recipients := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			recipients = append(recipients, p)
		}
	}
	return recipients
}
