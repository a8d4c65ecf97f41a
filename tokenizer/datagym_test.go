package tokenizer

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestByteRemapIsBijection(t *testing.T) {
	m := newByteRemap()
	if len(m.toByte) != 256 {
		t.Fatalf("remap has %d code points, want 256", len(m.toByte))
	}
	seen := make(map[rune]bool, 256)
	for b := 0; b < 256; b++ {
		r := m.fromByte[b]
		if seen[r] {
			t.Fatalf("code point %U assigned twice", r)
		}
		seen[r] = true
		got, ok := m.toByte[r]
		if !ok || got != byte(b) {
			t.Fatalf("byte %d -> %U -> %d (ok=%v)", b, r, got, ok)
		}
	}
}

func TestByteRemapPlacement(t *testing.T) {
	m := newByteRemap()
	cases := []struct {
		b    byte
		want rune
	}{
		{'!', '!'},
		{'~', '~'},
		{0xA1, 0xA1},
		{0xAC, 0xAC},
		{0xAE, 0xAE},
		{0xFF, 0xFF},
		{0x00, 0x100},
		{'\n', 0x10A},
		{' ', 0x120},
		{0x7F, 0x121},
		{0xA0, 0x142},
		{0xAD, 0x143},
	}
	for _, tc := range cases {
		if got := m.fromByte[tc.b]; got != tc.want {
			t.Errorf("byte %#x -> %U, want %U", tc.b, got, tc.want)
		}
	}
}

func TestDataGymEncode(t *testing.T) {
	if got, want := DataGymEncode([]byte(" the\n")), "ĠtheĊ"; got != want {
		t.Fatalf("DataGymEncode = %q, want %q", got, want)
	}
}

func TestParseDataGymMinimal(t *testing.T) {
	ranks, err := ParseDataGym("#version: 0.2\nĠ t\nĠt he\n\n")
	if err != nil {
		t.Fatalf("ParseDataGym: %v", err)
	}
	if len(ranks) != 256+2 {
		t.Fatalf("got %d ranks, want %d", len(ranks), 256+2)
	}
	for b := 0; b < 256; b++ {
		if r := ranks[string([]byte{byte(b)})]; r != Rank(b) {
			t.Fatalf("byte %d has rank %d", b, r)
		}
	}
	if r, ok := ranks[" t"]; !ok || r != 256 {
		t.Fatalf(`rank of " t" = %d (ok=%v), want 256`, r, ok)
	}
	if r, ok := ranks[" the"]; !ok || r != 257 {
		t.Fatalf(`rank of " the" = %d (ok=%v), want 257`, r, ok)
	}
}

func TestParseDataGymStopsAtBlankLine(t *testing.T) {
	ranks, err := ParseDataGym("header\na b\n\nno-separator-here\n世 界\n")
	if err != nil {
		t.Fatalf("ParseDataGym: %v", err)
	}
	want := Ranks{"ab": 256}
	got := Ranks{}
	for k, v := range ranks {
		if len(k) > 1 {
			got[k] = v
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merges mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDataGymWithoutTrailingBlankLine(t *testing.T) {
	ranks, err := ParseDataGym("header\r\na b\r\nab c")
	if err != nil {
		t.Fatalf("ParseDataGym: %v", err)
	}
	if ranks["ab"] != 256 || ranks["abc"] != 257 || len(ranks) != 258 {
		t.Fatalf("unexpected ranks: ab=%d abc=%d len=%d", ranks["ab"], ranks["abc"], len(ranks))
	}
}

func TestParseDataGymHeaderOnly(t *testing.T) {
	for _, in := range []string{"", "#version: 0.2", "#version: 0.2\n", "#version: 0.2\n\n"} {
		ranks, err := ParseDataGym(in)
		if err != nil {
			t.Fatalf("ParseDataGym(%q): %v", in, err)
		}
		if len(ranks) != 256 {
			t.Fatalf("ParseDataGym(%q) has %d ranks, want 256", in, len(ranks))
		}
	}
}

func TestParseDataGymErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind error
		line int
	}{
		{"undecodable on second merge", "#version: 0.2\nĠ t\nĠ 世\n\n", ErrUndecodableCodePoint, 3},
		{"undecodable on left half", "h\nx世 y\n\n", ErrUndecodableCodePoint, 2},
		{"raw space is not a data-gym byte", "h\na b c\n\n", ErrUndecodableCodePoint, 2},
		{"missing separator", "h\nab\n\n", ErrMissingSeparator, 2},
		{"both halves empty", "h\n \n\n", ErrEmptyToken, 2},
		{"invalid utf8", "h\na \xff\n\n", ErrUndecodableCodePoint, 2},
	}
	for _, tc := range tests {
		ranks, err := ParseDataGym(tc.in)
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
		if !errors.As(err, &pe) {
			t.Fatalf("%s: error %T is not a *ParseError", tc.name, err)
		}
		if pe.Line != tc.line || pe.Format != "data-gym" {
			t.Fatalf("%s: got %s line %d, want data-gym line %d", tc.name, pe.Format, pe.Line, tc.line)
		}
	}
}

func TestParseDataGymRoundTripsEncodedMerges(t *testing.T) {
	merges := [][2][]byte{
		{[]byte(" "), []byte("t")},
		{[]byte{0x00, 0xAD}, []byte{0xFF, '\n'}},
		{[]byte("\r"), []byte("\n")},
	}
	in := "#version: 0.2\n"
	for _, m := range merges {
		in += DataGymEncode(m[0]) + " " + DataGymEncode(m[1]) + "\n"
	}
	in += "\n"
	ranks, err := ParseDataGym(in)
	if err != nil {
		t.Fatalf("ParseDataGym: %v", err)
	}
	for i, m := range merges {
		key := string(m[0]) + string(m[1])
		if r, ok := ranks[key]; !ok || r != Rank(256+i) {
			t.Fatalf("merge %d %q: rank %d (ok=%v)", i, key, r, ok)
		}
	}
}
