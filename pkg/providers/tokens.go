package providers

import "strings"

// tokensPerWord is the word-to-token expansion factor used when a backend
// does not report exact usage. Cost estimates elsewhere in the system rely
// on this same heuristic for comparability, so it must not be silently
// upgraded per backend.
const tokensPerWord = 1.3

// approxOutputTokens estimates the output token count of generated text
// from its word count.
func approxOutputTokens(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return int(float64(words) * tokensPerWord)
}
