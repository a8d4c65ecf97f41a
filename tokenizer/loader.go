package tokenizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/euforicio/tiktoken-go/envconfig"
)

// Format identifies the serialization of a vocabulary file.
type Format int

const (
	// FormatTiktoken is the compact "base64 rank" per line format.
	FormatTiktoken Format = iota
	// FormatDataGym is the legacy GPT-2 vocab.bpe merge list.
	FormatDataGym
)

func (f Format) String() string {
	switch f {
	case FormatTiktoken:
		return formatTiktoken
	case FormatDataGym:
		return formatDataGym
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Source describes where a vocabulary file lives and how to read it.
type Source struct {
	File   string // file name in the cache or encodings directory
	URL    string
	SHA256 string // expected hex digest of the downloaded file
	Format Format
}

// Parse turns file contents into mergeable ranks using the source's format.
func (s Source) Parse(contents string) (Ranks, error) {
	switch s.Format {
	case FormatTiktoken:
		return ParseTiktokenBPE(contents)
	case FormatDataGym:
		return ParseDataGym(contents)
	default:
		return nil, fmt.Errorf("unsupported vocab format %v", s.Format)
	}
}

// ErrHashMismatch reports a downloaded file whose digest is not the expected one.
var ErrHashMismatch = errors.New("hash mismatch")

// Fetch returns the contents of the vocabulary file described by src.
// TIKTOKEN_ENCODINGS_BASE may name a local directory holding the file, or an
// http(s) mirror that replaces the download location. Otherwise the file
// comes from the cache directory, downloading it on a miss.
func Fetch(ctx context.Context, src Source) (string, error) {
	if base := envconfig.EncodingsBase(); isURL(base) {
		src.URL = strings.TrimSuffix(base, "/") + "/" + src.File
	} else if base != "" {
		path := filepath.Join(base, src.File)
		slog.Debug("reading vocab from encodings dir", "path", path)
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	cacheDir, err := resolveCacheDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(cacheDir, src.File)
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		slog.Debug("vocab cache hit", "path", path)
		return string(b), nil
	case !errors.Is(err, os.ErrNotExist):
		return "", err
	}

	if envconfig.Offline() {
		return "", fmt.Errorf("%s missing and TIKTOKEN_OFFLINE=1; set TIKTOKEN_ENCODINGS_BASE to a local dir containing %s or unset offline", src.File, src.File)
	}
	slog.Debug("downloading vocab", "url", src.URL, "dest", path)
	if err := download(ctx, src, path); err != nil {
		return "", fmt.Errorf("fetch %s: %w", src.URL, err)
	}
	b, err = os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// resolveCacheDir makes sure the cache directory exists.
func resolveCacheDir() (string, error) {
	dir := envconfig.CacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// download writes src into dest through a temp file in the same directory so
// a failed or mismatched download never leaves a partial file behind.
func download(ctx context.Context, src Source, dest string) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+src.File+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	sum, err := downloadToFile(ctx, src.URL, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if src.SHA256 != "" && !envconfig.SkipVerify() {
		if !strings.EqualFold(sum, src.SHA256) {
			return fmt.Errorf("%w: got %s want %s", ErrHashMismatch, sum, src.SHA256)
		}
		slog.Debug("vocab digest verified", "file", src.File, "sha256", sum)
	}
	return os.Rename(tmp.Name(), dest)
}

func downloadToFile(ctx context.Context, url string, f io.Writer) (string, error) {
	// Bounded HTTP client to avoid indefinite hangs in restricted environments.
	client := &http.Client{Timeout: envconfig.HTTPTimeout()}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	h := sha256.New()
	mw := io.MultiWriter(f, h)
	if _, err := io.Copy(mw, resp.Body); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
