package tiktoken

import (
	"fmt"
	"maps"

	"github.com/euforicio/tiktoken-go/tokenizer"
)

// EncodingName identifies a supported model profile.
type EncodingName string

// Supported encodings.
const (
	GPT2       EncodingName = "gpt2"
	R50kBase   EncodingName = "r50k_base"
	P50kBase   EncodingName = "p50k_base"
	P50kEdit   EncodingName = "p50k_edit"
	Cl100kBase EncodingName = "cl100k_base"
)

const blobBase = "https://openaipublic.blob.core.windows.net/"

var (
	gpt2Source = tokenizer.Source{
		File:   "vocab.bpe",
		URL:    blobBase + "gpt-2/encodings/main/vocab.bpe",
		SHA256: "1ce1664773c50f3e0cc8842619a93edc4624525b7b7fe9e0a59ab4ff8c9f0ab3",
		Format: tokenizer.FormatDataGym,
	}
	r50kSource = tokenizer.Source{
		File:   "r50k_base.tiktoken",
		URL:    blobBase + "encodings/r50k_base.tiktoken",
		SHA256: "306cd27f03c1a714eca7108e03d66b7dc042abe8c258b44c199a7ed9838dd930",
		Format: tokenizer.FormatTiktoken,
	}
	p50kSource = tokenizer.Source{
		File:   "p50k_base.tiktoken",
		URL:    blobBase + "encodings/p50k_base.tiktoken",
		SHA256: "94b5ca7dff4d00767bc256fdd1b27e5b17361d7b8a5f968547f9f23eb70d2069",
		Format: tokenizer.FormatTiktoken,
	}
	cl100kSource = tokenizer.Source{
		File:   "cl100k_base.tiktoken",
		URL:    blobBase + "encodings/cl100k_base.tiktoken",
		SHA256: "223921b76ee99bde995b7ff738513eef100fb51d18c93597a113bcffe865b2a7",
		Format: tokenizer.FormatTiktoken,
	}
)

type profileSpec struct {
	source   tokenizer.Source
	specials map[string]tokenizer.Rank
	pattern  string
}

// Special token ids must match the released vocabularies exactly.
var profiles = map[EncodingName]profileSpec{
	GPT2: {
		source:   gpt2Source,
		specials: map[string]tokenizer.Rank{tokenizer.EndOfText: 50256},
		pattern:  tokenizer.PatternLegacy,
	},
	R50kBase: {
		source:   r50kSource,
		specials: map[string]tokenizer.Rank{tokenizer.EndOfText: 50256},
		pattern:  tokenizer.PatternLegacy,
	},
	P50kBase: {
		source:   p50kSource,
		specials: map[string]tokenizer.Rank{tokenizer.EndOfText: 50256},
		pattern:  tokenizer.PatternLegacy,
	},
	P50kEdit: {
		source: p50kSource,
		specials: map[string]tokenizer.Rank{
			tokenizer.EndOfText: 50256,
			tokenizer.FIMPrefix: 50281,
			tokenizer.FIMMiddle: 50282,
			tokenizer.FIMSuffix: 50283,
		},
		pattern: tokenizer.PatternLegacy,
	},
	Cl100kBase: {
		source: cl100kSource,
		specials: map[string]tokenizer.Rank{
			tokenizer.EndOfText:   50257,
			tokenizer.FIMPrefix:   50258,
			tokenizer.FIMMiddle:   50259,
			tokenizer.FIMSuffix:   50260,
			tokenizer.EndOfPrompt: 50276,
		},
		pattern: tokenizer.PatternCl100k,
	},
}

// Names lists the supported encodings.
func Names() []EncodingName {
	return []EncodingName{GPT2, R50kBase, P50kBase, P50kEdit, Cl100kBase}
}

// Source returns where the vocabulary file for name is retrieved from.
func Source(name EncodingName) (tokenizer.Source, error) {
	spec, err := lookup(name)
	if err != nil {
		return tokenizer.Source{}, err
	}
	return spec.source, nil
}

func lookup(name EncodingName) (profileSpec, error) {
	spec, ok := profiles[name]
	if !ok {
		return profileSpec{}, fmt.Errorf("unsupported encoding: %s", name)
	}
	return spec, nil
}

// Profile is everything the BPE engine needs for one model: the mergeable
// ranks, the special tokens and the split pattern.
type Profile struct {
	Name     EncodingName
	Ranks    tokenizer.Ranks
	Specials map[string]tokenizer.Rank
	Pattern  string
}

// BuildProfile parses vocabulary file contents with the parser matching the
// profile's file format and attaches its special tokens and pattern.
func BuildProfile(name EncodingName, contents string) (Profile, error) {
	spec, err := lookup(name)
	if err != nil {
		return Profile{}, err
	}
	ranks, err := spec.source.Parse(contents)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", name, err)
	}
	return Profile{
		Name:     name,
		Ranks:    ranks,
		Specials: maps.Clone(spec.specials),
		Pattern:  spec.pattern,
	}, nil
}

// LoadEncodingFromText builds the encoding name from already-retrieved
// vocabulary file contents.
func LoadEncodingFromText(name EncodingName, contents string) (*Encoding, error) {
	p, err := BuildProfile(name, contents)
	if err != nil {
		return nil, err
	}
	return NewEncoding(p)
}

// LoadGPT2 builds gpt2 from the contents of a legacy vocab.bpe file.
func LoadGPT2(vocabBPE string) (*Encoding, error) { return LoadEncodingFromText(GPT2, vocabBPE) }

// LoadR50kBase builds r50k_base from r50k_base.tiktoken contents.
func LoadR50kBase(contents string) (*Encoding, error) {
	return LoadEncodingFromText(R50kBase, contents)
}

// LoadP50kBase builds p50k_base from p50k_base.tiktoken contents.
func LoadP50kBase(contents string) (*Encoding, error) {
	return LoadEncodingFromText(P50kBase, contents)
}

// LoadP50kEdit builds p50k_edit from p50k_base.tiktoken contents.
func LoadP50kEdit(contents string) (*Encoding, error) {
	return LoadEncodingFromText(P50kEdit, contents)
}

// LoadCl100kBase builds cl100k_base from cl100k_base.tiktoken contents.
func LoadCl100kBase(contents string) (*Encoding, error) {
	return LoadEncodingFromText(Cl100kBase, contents)
}
