//go:build goexperiment.arenas

package tokenizer

import "arena"

// Arena-backed token store. All storage lives in a dedicated arena.
// AppendInto copies from the arena blob into the destination to avoid
// leaking arena-backed slices to the heap.
type arenaStore struct {
	a    *arena.Arena
	blob []byte
	off  []uint32
}

func newTokenStore(ranks Ranks) (tokenStore, error) {
	size, err := denseSize(ranks)
	if err != nil {
		return nil, err
	}
	a := arena.NewArena()
	toks := arena.MakeSlice[string](a, size, size)
	total := 0
	for tok, id := range ranks {
		if toks[id] != "" {
			a.Free()
			return nil, duplicateRankError(id, tok, []byte(toks[id]))
		}
		toks[id] = tok
		total += len(tok)
	}
	blob := arena.MakeSlice[byte](a, total, total)
	off := arena.MakeSlice[uint32](a, size+1, size+1)
	pos := 0
	for i, tok := range toks {
		off[i] = uint32(pos)
		pos += copy(blob[pos:], tok)
	}
	off[size] = uint32(pos)
	return &arenaStore{a: a, blob: blob, off: off}, nil
}

func (s *arenaStore) AppendInto(dst *[]byte, id uint32) bool {
	if int(id) >= len(s.off)-1 {
		return false
	}
	a := s.off[id]
	b := s.off[id+1]
	if a == b {
		return false
	}
	*dst = append(*dst, s.blob[a:b]...)
	return true
}

func (s *arenaStore) Close() { s.a.Free() }
