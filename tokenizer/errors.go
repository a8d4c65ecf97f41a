package tokenizer

import (
	"errors"
	"fmt"
)

// Line-level failure kinds reported by the vocabulary parsers.
var (
	ErrMissingSeparator     = errors.New("missing space separator")
	ErrUndecodableCodePoint = errors.New("code point has no byte mapping")
	ErrInvalidBase64        = errors.New("invalid base64 token")
	ErrInvalidRank          = errors.New("invalid rank integer")
	ErrEmptyToken           = errors.New("empty token")
)

// Engine construction failures.
var (
	ErrEmptyVocab    = errors.New("empty rank table")
	ErrDuplicateRank = errors.New("duplicate rank")
	ErrSparseRanks   = errors.New("rank space too sparse")
)

// Vocabulary file formats.
const (
	formatDataGym  = "data-gym"
	formatTiktoken = "tiktoken"
)

// ParseError reports the first malformed line of a vocabulary file.
// Kind is one of the Err* sentinels above; Err is the underlying cause when
// there is one (a base64 or strconv error, or the offending code point).
type ParseError struct {
	Format string
	Line   int // 1-based, counted over the whole input
	Kind   error
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s vocab line %d: %v: %v", e.Format, e.Line, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s vocab line %d: %v", e.Format, e.Line, e.Kind)
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
