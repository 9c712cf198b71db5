package naming

import "strings"

// leadingAdverbs are skipped before the verb is checked
// ("alwaysReturnsSum", "neverThrows").
var leadingAdverbs = map[string]bool{
	"always":    true,
	"never":     true,
	"still":     true,
	"only":      true,
	"also":      true,
	"often":     true,
	"usually":   true,
	"sometimes": true,
	"rarely":    true,
}

// negatedAuxiliaries are contracted negations that carry the
// third-person form themselves ("doesntThrow", "isntEmpty").
var negatedAuxiliaries = map[string]bool{
	"doesnt": true,
	"isnt":   true,
	"hasnt":  true,
}

// auxiliaries may be followed by "not" ("doesNotThrow", "isNotEmpty").
var auxiliaries = map[string]bool{
	"does": true,
	"is":   true,
	"has":  true,
}

// IsPresentSimple applies word-shape checks over the leading words of
// identifier:
//
//   - leading adverbs are skipped ("neverThrows", "alwaysReturnsSum");
//   - a negated auxiliary needs a complement, and after "does" that
//     complement must be a bare verb ("doesNotThrow", not "doesNot" or
//     "doesntThrows");
//   - otherwise the verb must end in 's' but not "ss", which rejects
//     bare, modal and imperative shapes such as "returnSum",
//     "shouldReturn", "doParse" and "processQueue".
func IsPresentSimple(identifier string) (bool, error) {
	tokens, err := Tokenize(identifier)
	if err != nil {
		return false, err
	}
	for len(tokens) > 1 && leadingAdverbs[tokens[0]] {
		tokens = tokens[1:]
	}
	verb, rest := tokens[0], tokens[1:]

	switch {
	case negatedAuxiliaries[verb]:
		return complement(verb, rest), nil
	case auxiliaries[verb] && len(rest) > 0 && rest[0] == "not":
		return complement(verb, rest[1:]), nil
	}
	return thirdPerson(verb), nil
}

// complement reports whether rest completes a negated auxiliary.
func complement(aux string, rest []string) bool {
	if len(rest) == 0 {
		return false
	}
	if strings.HasPrefix(aux, "does") {
		return !thirdPerson(rest[0])
	}
	return true
}

// thirdPerson reports whether word has the third-person-singular
// shape: a trailing 's' that is not part of "ss".
func thirdPerson(word string) bool {
	return strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss")
}

// ContainsWord reports whether any token of identifier equals word.
func ContainsWord(identifier, word string) (bool, error) {
	tokens, err := Tokenize(identifier)
	if err != nil {
		return false, err
	}
	word = strings.ToLower(word)
	for _, token := range tokens {
		if token == word {
			return true, nil
		}
	}
	return false, nil
}
