package tokenizer

import (
	"bufio"
	"encoding/base64"
	"io"
	"strconv"
	"strings"
)

// ParseTiktokenBPE reads the compact vocabulary format.
// Each line: base64_token + space + rank. Blank lines are skipped.
func ParseTiktokenBPE(contents string) (Ranks, error) {
	ranks := make(Ranks)
	lineNo := 0
	for line := range strings.Lines(contents) {
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		b64, rankStr, ok := strings.Cut(line, " ")
		if !ok {
			return nil, &ParseError{Format: formatTiktoken, Line: lineNo, Kind: ErrMissingSeparator}
		}
		if b64 == "" {
			return nil, &ParseError{Format: formatTiktoken, Line: lineNo, Kind: ErrEmptyToken}
		}
		tok, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, &ParseError{Format: formatTiktoken, Line: lineNo, Kind: ErrInvalidBase64, Err: err}
		}
		rank, err := strconv.ParseUint(rankStr, 10, 32)
		if err != nil {
			return nil, &ParseError{Format: formatTiktoken, Line: lineNo, Kind: ErrInvalidRank, Err: err}
		}
		ranks[string(tok)] = Rank(rank)
	}
	return ranks, nil
}

// WriteTiktokenBPE writes ranks in the compact format, one token per line in
// rank order, so that ParseTiktokenBPE yields the same table back.
func WriteTiktokenBPE(w io.Writer, ranks Ranks) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, e := range ranks.Sorted() {
		buf = base64.StdEncoding.AppendEncode(buf[:0], e.Token)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(e.Rank), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}
