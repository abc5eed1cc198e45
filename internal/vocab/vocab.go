// Package vocab implements the bidirectional token/code mappings used to
// encode categorical columns.
package vocab

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownToken reports a token that was not seen when the vocabulary was built.
	ErrUnknownToken = errors.New("unknown token")
	// ErrUnknownCode reports a code outside the vocabulary range.
	ErrUnknownCode = errors.New("unknown code")
)

// TokenError carries the offending token alongside ErrUnknownToken.
type TokenError struct {
	Token string
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%v: %q", ErrUnknownToken, e.Token)
}

func (e *TokenError) Unwrap() error { return ErrUnknownToken }

// Vocabulary maps distinct tokens to dense codes 0..n-1. Codes follow the
// ascending order of the tokens, so identical inputs always yield identical
// codes. A Vocabulary is immutable after New.
type Vocabulary struct {
	tokens []string
	codes  map[string]int
}

// New builds a Vocabulary over the distinct values of every column supplied.
func New(columns ...[]string) *Vocabulary {
	seen := make(map[string]struct{})
	for _, col := range columns {
		for _, token := range col {
			seen[token] = struct{}{}
		}
	}

	tokens := make([]string, 0, len(seen))
	for token := range seen {
		tokens = append(tokens, token)
	}
	slices.Sort(tokens)

	codes := make(map[string]int, len(tokens))
	for i, token := range tokens {
		codes[token] = i
	}
	return &Vocabulary{tokens: tokens, codes: codes}
}

// Encode returns the code for token.
func (v *Vocabulary) Encode(token string) (int, error) {
	code, ok := v.codes[token]
	if !ok {
		return -1, &TokenError{Token: token}
	}
	return code, nil
}

// EncodeAll encodes every token, stopping at the first unknown one.
func (v *Vocabulary) EncodeAll(tokens []string) ([]int, error) {
	out := make([]int, len(tokens))
	for i, token := range tokens {
		code, err := v.Encode(token)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// Decode returns the token for code.
func (v *Vocabulary) Decode(code int) (string, error) {
	if code < 0 || code >= len(v.tokens) {
		return "", fmt.Errorf("%w: %d", ErrUnknownCode, code)
	}
	return v.tokens[code], nil
}

// Len reports the number of distinct tokens.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns the tokens in code order.
func (v *Vocabulary) Tokens() []string {
	return slices.Clone(v.tokens)
}
