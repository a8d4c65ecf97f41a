// Package tiktoken builds the GPT byte-level BPE encodings (gpt2, r50k_base,
// p50k_base, p50k_edit and cl100k_base) from their published vocabulary files.
//
// Each encoding combines a rank table parsed from its vocabulary file (the
// legacy data-gym vocab.bpe for gpt2, the base64 .tiktoken format for the
// rest) with a fixed set of special tokens and a split pattern. Vocabulary
// text can be supplied directly with the Load* functions, or retrieved and
// cached with LoadEncoding.
package tiktoken
