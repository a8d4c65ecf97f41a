package tokenizer

// Public thin wrappers to keep package boundary small.

// Core is an alias exposing exported methods defined on coreBPE.
type Core = coreBPE

// NewCoreBPE creates a BPE tokenizer from mergeable ranks, special tokens and
// a segmenter. It fails when the rank table cannot back a decoder: empty,
// duplicate ranks, or ranks too sparse for the dense store.
func NewCoreBPE(ranks Ranks, specials map[string]Rank, seg Segmenter) (*Core, error) {
	return newCoreBPE(ranks, specials, seg)
}
