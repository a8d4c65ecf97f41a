package tokenizer

import (
	"fmt"
	"strings"
)

// byteRemap is the data-gym bijection between the 256 byte values and the
// code points that stand in for them in legacy vocab.bpe files.
type byteRemap struct {
	toByte   map[rune]byte
	fromByte [256]rune
}

// newByteRemap builds the table. Placeholder code points are handed out in
// insertion order, so the ranges must be visited exactly as below.
func newByteRemap() *byteRemap {
	m := &byteRemap{toByte: make(map[rune]byte, 256)}
	set := func(r rune, b byte) {
		m.toByte[r] = b
		m.fromByte[b] = r
	}
	for _, rg := range [][2]int{{'!', '~'}, {'¡', '¬'}, {'®', 'ÿ'}} {
		for c := rg[0]; c <= rg[1]; c++ {
			set(rune(c), byte(c))
		}
	}
	n := 0
	for _, rg := range [][2]int{{0, ' '}, {127, 160}, {173, 173}} {
		for c := rg[0]; c <= rg[1]; c++ {
			set(rune(256+n), byte(c))
			n++
		}
	}
	return m
}

// decode appends the bytes for the data-gym string s to dst. It reports the
// first code point with no mapping.
func (m *byteRemap) decode(dst []byte, s string) ([]byte, error) {
	for _, r := range s {
		b, ok := m.toByte[r]
		if !ok {
			return dst, fmt.Errorf("%q (U+%04X)", r, r)
		}
		dst = append(dst, b)
	}
	return dst, nil
}

// DataGymEncode spells b the way legacy vocab.bpe files do.
func DataGymEncode(b []byte) string {
	m := newByteRemap()
	var sb strings.Builder
	sb.Grow(len(b) * 2)
	for _, c := range b {
		sb.WriteRune(m.fromByte[c])
	}
	return sb.String()
}

// ParseDataGym reconstructs mergeable ranks from a legacy GPT-2 vocab.bpe
// file. The first line is a header and is ignored; merge lines follow until
// the first empty line. Single bytes rank by their value and the i-th merge
// line gets rank 256+i.
func ParseDataGym(contents string) (Ranks, error) {
	remap := newByteRemap()
	ranks := make(Ranks, 256)
	for b := 0; b < 256; b++ {
		ranks[string([]byte{byte(b)})] = Rank(b)
	}

	lineNo := 0
	idx := 0
	var key []byte
	for line := range strings.Lines(contents) {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		left, right, ok := strings.Cut(line, " ")
		if !ok {
			return nil, &ParseError{Format: formatDataGym, Line: lineNo, Kind: ErrMissingSeparator}
		}
		var err error
		key, err = remap.decode(key[:0], left)
		if err == nil {
			key, err = remap.decode(key, right)
		}
		if err != nil {
			return nil, &ParseError{Format: formatDataGym, Line: lineNo, Kind: ErrUndecodableCodePoint, Err: err}
		}
		if len(key) == 0 {
			return nil, &ParseError{Format: formatDataGym, Line: lineNo, Kind: ErrEmptyToken}
		}
		ranks[string(key)] = Rank(256 + idx)
		idx++
	}
	return ranks, nil
}
