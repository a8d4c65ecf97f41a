package tokenizer

import "strings"

// Special token literals shared by the GPT model family.
const (
	EndOfText   = "<|endoftext|>"
	FIMPrefix   = "<|fim_prefix|>"
	FIMMiddle   = "<|fim_middle|>"
	FIMSuffix   = "<|fim_suffix|>"
	EndOfPrompt = "<|endofprompt|>"
)

// findSpecial returns the leftmost allowed special token at or after i,
// preferring the longest literal when several start at the same offset.
// pos is -1 when none is found.
func findSpecial(s string, i int, specials map[string]Rank, allowed map[string]struct{}) (pos int, id Rank, n int) {
	pos = -1
	for lit := range allowed {
		tok, ok := specials[lit]
		if !ok || lit == "" {
			continue
		}
		at := strings.Index(s[i:], lit)
		if at < 0 {
			continue
		}
		at += i
		if pos < 0 || at < pos || (at == pos && len(lit) > n) {
			pos, id, n = at, tok, len(lit)
		}
	}
	return pos, id, n
}
