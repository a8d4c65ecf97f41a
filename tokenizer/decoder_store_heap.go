//go:build !goexperiment.arenas

package tokenizer

// Heap-backed token store indexed directly by rank.
// This is the default implementation and serves as the fallback when
// arenas are not enabled.

type heapStore struct {
	arr [][]byte // token bytes by rank, nil for unused ranks
}

func newTokenStore(ranks Ranks) (tokenStore, error) {
	size, err := denseSize(ranks)
	if err != nil {
		return nil, err
	}
	arr := make([][]byte, size)
	for tok, id := range ranks {
		if arr[id] != nil {
			return nil, duplicateRankError(id, tok, arr[id])
		}
		arr[id] = []byte(tok)
	}
	return &heapStore{arr: arr}, nil
}

func (s *heapStore) AppendInto(dst *[]byte, id uint32) bool {
	if int(id) >= len(s.arr) {
		return false
	}
	b := s.arr[id]
	if b == nil {
		return false
	}
	*dst = append(*dst, b...)
	return true
}

func (s *heapStore) Close() {}
