package benchmarks

import (
	"testing"

	tiktoken "github.com/euforicio/tiktoken-go"
	"github.com/euforicio/tiktoken-go/tokenizer"
)

func BenchmarkParseDataGym(b *testing.B) {
	vocab := DataGymVocab()
	b.ReportAllocs()
	b.SetBytes(int64(len(vocab)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tokenizer.ParseDataGym(vocab); err != nil {
			b.Fatalf("parse: %v", err)
		}
	}
}

func BenchmarkParseTiktoken(b *testing.B) {
	vocab := mustTiktokenVocab(b)
	b.ReportAllocs()
	b.SetBytes(int64(len(vocab)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tokenizer.ParseTiktokenBPE(vocab); err != nil {
			b.Fatalf("parse: %v", err)
		}
	}
}

func BenchmarkLoadEncodingFromText(b *testing.B) {
	vocab := mustTiktokenVocab(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tiktoken.LoadEncodingFromText(tiktoken.Cl100kBase, vocab); err != nil {
			b.Fatalf("load: %v", err)
		}
	}
}

func BenchmarkEncodeLargeCl100k(b *testing.B) {
	benchmarkEncode(b, tiktoken.Cl100kBase)
}

func BenchmarkEncodeLargeR50k(b *testing.B) {
	benchmarkEncode(b, tiktoken.R50kBase)
}

func BenchmarkDecodeLarge(b *testing.B) {
	enc := mustLoadEncoding(b, tiktoken.Cl100kBase)
	tokens := enc.EncodeOrdinary(LargeText())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.DecodeBytes(tokens); err != nil {
			b.Fatalf("decode: %v", err)
		}
	}
}

func benchmarkEncode(b *testing.B, name tiktoken.EncodingName) {
	enc := mustLoadEncoding(b, name)
	text := LargeText()
	b.ReportAllocs()
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if toks := enc.Encode(text, tokenizer.EndOfText); len(toks) == 0 {
			b.Fatal("expected tokens")
		}
	}
}

func mustTiktokenVocab(tb testing.TB) string {
	tb.Helper()
	vocab, err := TiktokenVocab()
	if err != nil {
		tb.Fatalf("synthetic vocab: %v", err)
	}
	return vocab
}

func mustLoadEncoding(tb testing.TB, name tiktoken.EncodingName) *tiktoken.Encoding {
	tb.Helper()
	enc, err := tiktoken.LoadEncodingFromText(name, mustTiktokenVocab(tb))
	if err != nil {
		tb.Fatalf("load encoding: %v", err)
	}
	return enc
}
