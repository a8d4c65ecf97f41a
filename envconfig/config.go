// Package envconfig reads the environment variables that control where
// vocabulary files come from and how they are fetched.
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Var returns an environment variable stripped of leading and trailing
// quotes and spaces.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// Bool returns a getter for a boolean variable. Unparseable non-empty
// values count as true.
func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// String returns a getter for a string variable.
func String(k string) func() string {
	return func() string {
		return Var(k)
	}
}

// Uint returns a getter for an unsigned variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

var (
	// EncodingsBase is either a local directory holding vocabulary files,
	// read in place of any download, or an http(s) mirror base URL.
	EncodingsBase = String("TIKTOKEN_ENCODINGS_BASE")
	// Offline forbids downloads; a cache miss becomes an error.
	Offline = Bool("TIKTOKEN_OFFLINE")
	// SkipVerify disables the SHA-256 check of downloaded files.
	SkipVerify = Bool("TIKTOKEN_SKIP_VERIFY")

	httpTimeout = Uint("TIKTOKEN_HTTP_TIMEOUT", 30)
)

// HTTPTimeout bounds a single vocabulary download. Configurable via
// TIKTOKEN_HTTP_TIMEOUT in seconds; zero falls back to 30s.
func HTTPTimeout() time.Duration {
	s := httpTimeout()
	if s == 0 {
		s = 30
	}
	return time.Duration(s) * time.Second
}

// CacheDir returns TIKTOKEN_GO_CACHE_DIR or a predictable temp directory.
func CacheDir() string {
	if d := Var("TIKTOKEN_GO_CACHE_DIR"); d != "" {
		return d
	}
	return filepath.Join(os.TempDir(), "tiktoken-go-cache")
}

// LogLevel returns the log level set by TIKTOKEN_DEBUG.
// 0/false = INFO (default), 1/true = DEBUG, other integers step by 4.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TIKTOKEN_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TIKTOKEN_ENCODINGS_BASE": {"TIKTOKEN_ENCODINGS_BASE", EncodingsBase(), "Directory holding vocabulary files, or an http(s) mirror to download them from"},
		"TIKTOKEN_GO_CACHE_DIR":   {"TIKTOKEN_GO_CACHE_DIR", CacheDir(), "Where downloaded vocabulary files are cached"},
		"TIKTOKEN_OFFLINE":        {"TIKTOKEN_OFFLINE", Offline(), "Fail instead of downloading missing vocabulary files"},
		"TIKTOKEN_HTTP_TIMEOUT":   {"TIKTOKEN_HTTP_TIMEOUT", HTTPTimeout(), "Download timeout in seconds (default 30)"},
		"TIKTOKEN_SKIP_VERIFY":    {"TIKTOKEN_SKIP_VERIFY", SkipVerify(), "Skip SHA-256 verification of downloads"},
		"TIKTOKEN_DEBUG":          {"TIKTOKEN_DEBUG", LogLevel(), "Show additional debug information (e.g. TIKTOKEN_DEBUG=1)"},
	}
}

// Values returns AsMap rendered as strings.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
