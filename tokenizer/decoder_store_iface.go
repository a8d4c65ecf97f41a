package tokenizer

import "fmt"

// tokenStore abstracts storage of base token byte sequences.
// Implementations must not let references to internal storage escape.
type tokenStore interface {
	// AppendInto appends the bytes for token id into dst and returns true
	// if the id existed. Returns false when id is unknown.
	AppendInto(dst *[]byte, id uint32) bool
	// Close releases any resources held by the store.
	Close()
}

// maxSparsity bounds how many unused slots a dense store may carry per token.
const maxSparsity = 4

// denseSize returns the slot count a rank-indexed store needs for ranks.
func denseSize(ranks Ranks) (int, error) {
	if len(ranks) == 0 {
		return 0, ErrEmptyVocab
	}
	size := int(ranks.MaxRank()) + 1
	if size > maxSparsity*len(ranks)+1024 {
		return 0, fmt.Errorf("%w: max rank %d for %d tokens", ErrSparseRanks, size-1, len(ranks))
	}
	return size, nil
}

func duplicateRankError(id Rank, a string, b []byte) error {
	return fmt.Errorf("%w %d: %q and %q", ErrDuplicateRank, id, a, b)
}
