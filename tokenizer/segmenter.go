package tokenizer

import (
	"fmt"
	"iter"

	"github.com/dlclark/regexp2"
)

// Segmenter splits ordinary text into the pieces that are byte-pair encoded
// independently. The pieces of s, concatenated, are exactly s.
type Segmenter interface {
	Segments(s string) iter.Seq[string]
}

type regexSegmenter struct {
	re *regexp2.Regexp
}

// NewRegexSegmenter compiles a split pattern. The GPT patterns rely on
// negative lookahead, so they are compiled with regexp2 rather than regexp.
func NewRegexSegmenter(pattern string) (Segmenter, error) {
	re, err := regexp2.Compile(pattern, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("compile split pattern: %w", err)
	}
	return &regexSegmenter{re: re}, nil
}

func (r *regexSegmenter) Segments(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if s == "" {
			return
		}
		runes := []rune(s)
		// regexp2 reports rune offsets; slicing s by byte offsets keeps
		// invalid UTF-8 bytes intact instead of turning them into U+FFFD.
		offsets := make([]int, 0, len(runes)+1)
		for i := range s {
			offsets = append(offsets, i)
		}
		offsets = append(offsets, len(s))

		var last int
		for m, _ := r.re.FindRunesMatch(runes); m != nil; m, _ = r.re.FindNextMatch(m) {
			if m.Index > last {
				if !yield(s[offsets[last]:offsets[m.Index]]) {
					return
				}
				last = m.Index
			}
			end := m.Index + m.Length
			if end == m.Index {
				continue
			}
			if !yield(s[offsets[m.Index]:offsets[end]]) {
				return
			}
			last = end
		}
		if last < len(runes) {
			yield(s[offsets[last]:])
		}
	}
}
