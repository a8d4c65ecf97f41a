package tokenizer

// Split patterns applied before byte-pair merging. Both must stay
// byte-for-byte identical to the strings the vocabularies were trained with.
const (
	// PatternLegacy is shared by gpt2, r50k_base, p50k_base and p50k_edit.
	PatternLegacy = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(?!\S)|\s+`

	// PatternCl100k is the cl100k_base pattern. The \r and \n inside its
	// character classes are literal CR and LF characters, not escapes.
	PatternCl100k = "(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\\p{L}\\p{N}]?\\p{L}+|\\p{N}{1,3}| ?[^\\s\\p{L}\\p{N}]+[\r\n]*|\\s*[\r\n]+|\\s+(?!\\S)|\\s+"
)
