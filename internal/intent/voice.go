package intent

import "strings"

var transcriptReplacer = strings.NewReplacer(
	" period", ".",
	" comma", ",",
	" question mark", "?",
	" exclamation mark", "!",
)

// CleanTranscript rewrites spoken punctuation artifacts left by voice
// transcription into the punctuation characters they name, and trims
// surrounding whitespace. Runs on every captured message and subject.
func CleanTranscript(s string) string {
	return strings.TrimSpace(transcriptReplacer.Replace(s))
}
