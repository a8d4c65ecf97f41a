package benchmarks

import (
	"fmt"
	"strings"

	"github.com/euforicio/tiktoken-go/tokenizer"
)

type merge struct{ left, right string }

// syntheticMerges pairs every lowercase letter, prefixes each letter with a
// space, then adds a few whole words with and without a leading space.
func syntheticMerges() []merge {
	var out []merge
	for a := 'a'; a <= 'z'; a++ {
		for c := 'a'; c <= 'z'; c++ {
			out = append(out, merge{string(a), string(c)})
		}
		out = append(out, merge{" ", string(a)})
	}
	for _, w := range strings.Fields("weather forecast itinerary museum dinner breakfast transit") {
		out = append(out, merge{w[:2], w[2:]}, merge{" ", w})
	}
	return out
}

// DataGymVocab renders the synthetic merges as a legacy vocab.bpe file.
func DataGymVocab() string {
	var sb strings.Builder
	sb.WriteString("#version: 0.2\n")
	for _, m := range syntheticMerges() {
		fmt.Fprintf(&sb, "%s %s\n", tokenizer.DataGymEncode([]byte(m.left)), tokenizer.DataGymEncode([]byte(m.right)))
	}
	return sb.String()
}

// TiktokenVocab renders the same ranks in the compact .tiktoken format.
func TiktokenVocab() (string, error) {
	ranks, err := tokenizer.ParseDataGym(DataGymVocab())
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tokenizer.WriteTiktokenBPE(&sb, ranks); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// LargeText returns prose sized for throughput measurements.
func LargeText() string {
	block := "Summarise the full itinerary including breakfast, museum visits, hikes, dinner plans, and transit notes.\n" +
		"The weather forecast calls for 12mm of rain after 3pm; pack accordingly!  \n"
	return strings.Repeat(block, 200)
}
