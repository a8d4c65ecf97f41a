package tokenizer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTiktokenBPE(t *testing.T) {
	ranks, err := ParseTiktokenBPE("QQ== 0\nQg== 1\n")
	if err != nil {
		t.Fatalf("ParseTiktokenBPE: %v", err)
	}
	want := Ranks{"A": 0, "B": 1}
	if diff := cmp.Diff(want, ranks); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTiktokenBPESkipsBlankLinesAndCR(t *testing.T) {
	ranks, err := ParseTiktokenBPE("QQ== 0\r\n\r\n\nIGhlbGxv 7\r\n")
	if err != nil {
		t.Fatalf("ParseTiktokenBPE: %v", err)
	}
	want := Ranks{"A": 0, " hello": 7}
	if diff := cmp.Diff(want, ranks); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTiktokenBPEErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind error
		line int
	}{
		{"non-integer rank", "QQ== x\n", ErrInvalidRank, 1},
		{"negative rank", "QQ== -1\n", ErrInvalidRank, 1},
		{"rank overflows uint32", "QQ== 4294967296\n", ErrInvalidRank, 1},
		{"failure after valid lines", "QQ== 0\nQg== 1\nQw== three\n", ErrInvalidRank, 3},
		{"malformed base64", "QQ== 0\n!!!! 1\n", ErrInvalidBase64, 2},
		{"missing padding", "QQ 0\n", ErrInvalidBase64, 1},
		{"missing separator", "QQ==\n", ErrMissingSeparator, 1},
		{"empty token", " 3\n", ErrEmptyToken, 1},
	}
	for _, tc := range tests {
		ranks, err := ParseTiktokenBPE(tc.in)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if ranks != nil {
			t.Fatalf("%s: partial table returned with error", tc.name)
		}
		if !errors.Is(err, tc.kind) {
			t.Fatalf("%s: error %v is not %v", tc.name, err, tc.kind)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Line != tc.line || pe.Format != "tiktoken" {
			t.Fatalf("%s: want tiktoken ParseError on line %d, got %v", tc.name, tc.line, err)
		}
	}
}

func TestParseTiktokenBPEErrorCauses(t *testing.T) {
	_, err := ParseTiktokenBPE("QQ== x\n")
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected *strconv.NumError in chain, got %v", err)
	}

	_, err = ParseTiktokenBPE("!!!! 0\n")
	var b64Err base64.CorruptInputError
	if !errors.As(err, &b64Err) {
		t.Fatalf("expected base64.CorruptInputError in chain, got %v", err)
	}
}

func TestWriteTiktokenBPERoundTrip(t *testing.T) {
	ranks := Ranks{"A": 0, "B": 1, " hello": 2, "\x00\xff": 3}
	var buf bytes.Buffer
	if err := WriteTiktokenBPE(&buf, ranks); err != nil {
		t.Fatalf("WriteTiktokenBPE: %v", err)
	}
	if got, want := buf.String(), "QQ== 0\nQg== 1\nIGhlbGxv 2\nAP8= 3\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
	back, err := ParseTiktokenBPE(buf.String())
	if err != nil {
		t.Fatalf("ParseTiktokenBPE: %v", err)
	}
	if diff := cmp.Diff(ranks, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteTiktokenBPEFromDataGym(t *testing.T) {
	legacy, err := ParseDataGym("#version: 0.2\nĠ t\nĠt he\n\n")
	if err != nil {
		t.Fatalf("ParseDataGym: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteTiktokenBPE(&buf, legacy); err != nil {
		t.Fatalf("WriteTiktokenBPE: %v", err)
	}
	compact, err := ParseTiktokenBPE(buf.String())
	if err != nil {
		t.Fatalf("ParseTiktokenBPE: %v", err)
	}
	if diff := cmp.Diff(legacy, compact); diff != "" {
		t.Fatalf("converted table mismatch (-want +got):\n%s", diff)
	}
}
