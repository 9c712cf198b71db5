// Package naming implements the heuristic grammar used by the naming
// rules: splitting identifiers into words and classifying the tense of
// the leading verb.
package naming

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidIdentifier is returned for identifiers that cannot be
// tokenized or classified, such as the empty string.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Tokenize splits a camel-case identifier into lowercase words. An
// uppercase rune other than the first one starts a new word. Digits
// and underscores never start a word.
func Tokenize(identifier string) ([]string, error) {
	if identifier == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if !utf8.ValidString(identifier) {
		return nil, fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidIdentifier, identifier)
	}

	var (
		tokens  []string
		current strings.Builder
	)
	for i, r := range identifier {
		if i > 0 && unicode.IsUpper(r) {
			tokens = append(tokens, current.String())
			current.Reset()
		}
		current.WriteRune(unicode.ToLower(r))
	}
	tokens = append(tokens, current.String())
	return tokens, nil
}

// Join rebuilds a camel-case identifier from tokens, capitalizing the
// first rune of every token but the first.
func Join(tokens []string) string {
	var b strings.Builder
	for i, token := range tokens {
		if i == 0 || token == "" {
			b.WriteString(token)
			continue
		}
		r, size := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(token[size:])
	}
	return b.String()
}

// IsPresentTenseVerb reports whether the leading word of identifier
// has the third-person-singular shape, i.e. ends with 's'. The leading
// word ends at the first uppercase rune, or at the end of the
// identifier when there is none. An identifier starting with an
// uppercase rune has an empty leading word and never passes.
//
// Plural nouns ending in 's' pass as well; that is accepted.
func IsPresentTenseVerb(identifier string) (bool, error) {
	if identifier == "" {
		return false, fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	prev := '!'
	for _, r := range identifier {
		if unicode.IsUpper(r) {
			return prev == 's', nil
		}
		prev = r
	}
	return prev == 's', nil
}
