package tokenizer

import (
	"cmp"
	"slices"
)

// Rank represents the priority/rank of a token pair in BPE encoding.
type Rank = uint32

// Ranks maps a token's raw bytes (held as a string) to its merge rank.
type Ranks map[string]Rank

// Entry is one token of a rank table.
type Entry struct {
	Token []byte
	Rank  Rank
}

// Sorted returns the table's entries ordered by rank, ties broken by bytes.
func (r Ranks) Sorted() []Entry {
	out := make([]Entry, 0, len(r))
	for k, v := range r {
		out = append(out, Entry{Token: []byte(k), Rank: v})
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Rank, b.Rank); c != 0 {
			return c
		}
		return slices.Compare(a.Token, b.Token)
	})
	return out
}

// MaxRank returns the largest rank in the table, or 0 when it is empty.
func (r Ranks) MaxRank() Rank {
	var m Rank
	for _, v := range r {
		m = max(m, v)
	}
	return m
}
