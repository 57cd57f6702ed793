package agent

import "strings"

// maxQuestionLen bounds accepted question length in characters.
const maxQuestionLen = 2000

// historyWindow is the number of prior exchanges included in prompts.
const historyWindow = 3

// SanitizeQuestion trims and length-bounds raw user input. An empty return
// value means the question is rejected before any attempt is made.
func SanitizeQuestion(text string) string {
	return truncateRunes(strings.TrimSpace(text), maxQuestionLen)
}

// truncateRunes bounds s to at most n characters, cutting on a rune
// boundary so multi-byte input never yields invalid UTF-8.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// boundHistory returns the last historyWindow exchanges.
func boundHistory(history []Exchange) []Exchange {
	if len(history) > historyWindow {
		return history[len(history)-historyWindow:]
	}
	return history
}
