package cleaner

import "unicode/utf8"

// EstimateTokens approximates an LLM token count as runes/3, at least 1 for
// non-empty text. It over-counts English slightly and under-counts CJK.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if est := n / 3; est > 0 {
		return est
	}
	return 1
}
