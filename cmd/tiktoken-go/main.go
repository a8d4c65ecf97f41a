package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	tiktoken "github.com/euforicio/tiktoken-go"
	"github.com/euforicio/tiktoken-go/envconfig"
	"github.com/euforicio/tiktoken-go/tokenizer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newCLI().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	encoding  string
	vocabFile string
	verbose   bool
}

func newCLI() *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "tiktoken-go",
		Short:         "Byte-level BPE encodings for the GPT model family",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := envconfig.LogLevel()
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), level))
		},
	}
	root.PersistentFlags().StringVarP(&opts.encoding, "encoding", "e", string(tiktoken.Cl100kBase), "encoding name")
	root.PersistentFlags().StringVar(&opts.vocabFile, "vocab-file", "", "read the vocabulary from this file instead of fetching it")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	envs := envconfig.AsMap()
	fetch := newFetchCmd()
	appendEnvDocs(fetch, []envconfig.EnvVar{
		envs["TIKTOKEN_ENCODINGS_BASE"],
		envs["TIKTOKEN_GO_CACHE_DIR"],
		envs["TIKTOKEN_OFFLINE"],
		envs["TIKTOKEN_HTTP_TIMEOUT"],
		envs["TIKTOKEN_SKIP_VERIFY"],
	})
	appendEnvDocs(root, []envconfig.EnvVar{envs["TIKTOKEN_DEBUG"]})

	root.AddCommand(
		newEncodeCmd(&opts),
		newDecodeCmd(&opts),
		newCountCmd(&opts),
		newRanksCmd(&opts),
		fetch,
		newConvertCmd(),
		newEnvCmd(),
	)
	return root
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n")
	for _, e := range envs {
		fmt.Fprintf(&sb, "      %-24s   %s\n", e.Name, e.Description)
	}
	cmd.SetUsageTemplate(cmd.UsageTemplate() + sb.String())
}

func renderTable(w io.Writer, header []string, data [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}

func loadEncoding(ctx context.Context, opts *options) (*tiktoken.Encoding, error) {
	name := tiktoken.EncodingName(opts.encoding)
	if opts.vocabFile == "" {
		return tiktoken.LoadEncoding(ctx, name)
	}
	b, err := os.ReadFile(opts.vocabFile)
	if err != nil {
		return nil, err
	}
	return tiktoken.LoadEncodingFromText(name, string(b))
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	return string(b), err
}

func newEncodeCmd(opts *options) *cobra.Command {
	var allowed []string
	var allSpecial bool
	cmd := &cobra.Command{
		Use:   "encode [text...]",
		Short: "Encode text (or stdin) to a JSON token list",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := loadEncoding(cmd.Context(), opts)
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			var toks []uint32
			if allSpecial {
				toks = enc.EncodeWithSpecialTokens(text)
			} else {
				toks = enc.Encode(text, allowed...)
			}
			if toks == nil {
				toks = []uint32{}
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(toks)
		},
	}
	cmd.Flags().StringSliceVar(&allowed, "allow-special", nil, "special tokens to emit directly")
	cmd.Flags().BoolVar(&allSpecial, "all-special", false, "emit every special token directly")
	return cmd
}

func newDecodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Decode a JSON token list from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tokens []uint32
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&tokens); err != nil {
				return err
			}
			enc, err := loadEncoding(cmd.Context(), opts)
			if err != nil {
				return err
			}
			s, err := enc.DecodeUTF8(tokens)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), s)
			return err
		},
	}
}

func newCountCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count [text...]",
		Short: "Count the tokens in text (or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := loadEncoding(cmd.Context(), opts)
			if err != nil {
				return err
			}
			text, err := inputText(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), enc.Count(text))
			return err
		},
	}
}

func newRanksCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ranks",
		Short: "List mergeable ranks with their data-gym spelling",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc, err := loadEncoding(cmd.Context(), opts)
			if err != nil {
				return err
			}
			entries := enc.MergeableRanks().Sorted()
			if limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}
			data := make([][]string, 0, len(entries))
			for _, e := range entries {
				data = append(data, []string{strconv.FormatUint(uint64(e.Rank), 10), strconv.Quote(string(e.Token)), tokenizer.DataGymEncode(e.Token)})
			}
			renderTable(cmd.OutOrStdout(), []string{"RANK", "BYTES", "DATA-GYM"}, data)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n entries (0 = all)")
	return cmd
}

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [encoding...]",
		Short: "Download and cache vocabulary files (all encodings by default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := tiktoken.Names()
			if len(args) > 0 {
				names = names[:0]
				for _, a := range args {
					names = append(names, tiktoken.EncodingName(a))
				}
			}
			// p50k_edit shares its file with p50k_base.
			sources := make(map[string]tokenizer.Source)
			for _, name := range names {
				src, err := tiktoken.Source(name)
				if err != nil {
					return err
				}
				sources[src.File] = src
			}
			sizes := make(map[string]int)
			var mu sync.Mutex
			g, ctx := errgroup.WithContext(cmd.Context())
			for _, src := range sources {
				g.Go(func() error {
					contents, err := tokenizer.Fetch(ctx, src)
					if err != nil {
						return fmt.Errorf("%s: %w", src.File, err)
					}
					mu.Lock()
					defer mu.Unlock()
					sizes[src.File] = len(contents)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			files := make([]string, 0, len(sizes))
			for f := range sizes {
				files = append(files, f)
			}
			sort.Strings(files)
			data := make([][]string, 0, len(files))
			for _, f := range files {
				data = append(data, []string{f, strconv.Itoa(sizes[f])})
			}
			renderTable(cmd.OutOrStdout(), []string{"FILE", "BYTES"}, data)
			return nil
		},
	}
}

func newConvertCmd() *cobra.Command {
	var input, output string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a legacy vocab.bpe file to the .tiktoken format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			ranks, err := tokenizer.ParseDataGym(string(b))
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return tokenizer.WriteTiktokenBPE(cmd.OutOrStdout(), ranks)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := tokenizer.WriteTiktokenBPE(f, ranks); err != nil {
				_ = f.Close()
				return err
			}
			slog.Debug("converted vocab", "input", input, "output", output, "ranks", len(ranks))
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "legacy vocab.bpe file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show the environment configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			vals := envconfig.Values()
			keys := make([]string, 0, len(vals))
			for k := range vals {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, vals[k])
			}
		},
	}
}
