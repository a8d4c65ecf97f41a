package tiktoken

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/euforicio/tiktoken-go/tokenizer"
)

// Encoding is a ready-to-use tokenizer for one model profile.
type Encoding struct {
	name     EncodingName
	pattern  string
	ranks    tokenizer.Ranks
	specials map[string]tokenizer.Rank
	bpe      *tokenizer.Core
}

// NewEncoding hands a profile to the BPE engine. Engine construction errors
// are returned as is, wrapped with the profile name.
func NewEncoding(p Profile) (*Encoding, error) {
	seg, err := tokenizer.NewRegexSegmenter(p.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	bpe, err := tokenizer.NewCoreBPE(p.Ranks, p.Specials, seg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	return &Encoding{
		name:     p.Name,
		pattern:  p.Pattern,
		ranks:    p.Ranks,
		specials: p.Specials,
		bpe:      bpe,
	}, nil
}

// LoadEncoding retrieves the vocabulary file for name and builds the encoding.
func LoadEncoding(ctx context.Context, name EncodingName) (*Encoding, error) {
	spec, err := lookup(name)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	contents, err := tokenizer.Fetch(ctx, spec.source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	enc, err := LoadEncodingFromText(name, contents)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded encoding", "name", name, "ranks", len(enc.ranks), "specials", len(enc.specials), "elapsed", time.Since(start))
	return enc, nil
}

// LoadEncodings loads several encodings concurrently and returns the first
// error encountered.
func LoadEncodings(ctx context.Context, names ...EncodingName) (map[EncodingName]*Encoding, error) {
	out := make(map[EncodingName]*Encoding, len(names))
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(runtime.GOMAXPROCS(0), 1))
	for _, name := range names {
		g.Go(func() error {
			enc, err := LoadEncoding(ctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			out[name] = enc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

var registry struct {
	sync.Mutex
	m map[EncodingName]*Encoding
}

// GetEncoding is LoadEncoding memoised for the life of the process.
// Failed loads are not remembered.
func GetEncoding(ctx context.Context, name EncodingName) (*Encoding, error) {
	registry.Lock()
	defer registry.Unlock()
	if enc, ok := registry.m[name]; ok {
		return enc, nil
	}
	enc, err := LoadEncoding(ctx, name)
	if err != nil {
		return nil, err
	}
	if registry.m == nil {
		registry.m = make(map[EncodingName]*Encoding)
	}
	registry.m[name] = enc
	return enc, nil
}

// Name returns the encoding's canonical name.
func (e *Encoding) Name() EncodingName { return e.name }

// Pattern returns the split pattern applied before merging.
func (e *Encoding) Pattern() string { return e.pattern }

// MergeableRanks returns a copy of the rank table.
func (e *Encoding) MergeableRanks() tokenizer.Ranks { return maps.Clone(e.ranks) }

// SpecialTokens returns a copy of the special token table.
func (e *Encoding) SpecialTokens() map[string]tokenizer.Rank { return maps.Clone(e.specials) }

// EndOfText returns the id of <|endoftext|>.
func (e *Encoding) EndOfText() uint32 { return e.specials[tokenizer.EndOfText] }

// Encode encodes text, emitting the listed special tokens directly when they
// appear. Other special token literals are encoded as ordinary text.
func (e *Encoding) Encode(text string, allowedSpecial ...string) []uint32 {
	allowed := make(map[string]struct{}, len(allowedSpecial))
	for _, s := range allowedSpecial {
		allowed[s] = struct{}{}
	}
	toks, _ := e.bpe.Encode(text, allowed)
	return toks
}

// EncodeOrdinary encodes text ignoring special tokens.
func (e *Encoding) EncodeOrdinary(text string) []uint32 { return e.bpe.EncodeOrdinary(text) }

// EncodeWithSpecialTokens encodes text allowing every special token.
func (e *Encoding) EncodeWithSpecialTokens(text string) []uint32 {
	return e.bpe.EncodeWithSpecialTokens(text)
}

// Count returns the number of ordinary tokens in text.
func (e *Encoding) Count(text string) int {
	var buf []uint32
	e.bpe.EncodeIntoOrdinary(text, &buf)
	return len(buf)
}

// DecodeUTF8 decodes tokens into a UTF-8 string.
func (e *Encoding) DecodeUTF8(tokens []uint32) (string, error) {
	return e.bpe.DecodeUTF8(tokens)
}

// DecodeBytes decodes tokens into raw bytes.
func (e *Encoding) DecodeBytes(tokens []uint32) ([]byte, error) {
	return e.bpe.DecodeBytes(tokens)
}
