// Package textnorm folds product and ingredient names into a canonical
// form so that stock records and recipe ingredients can be compared.
package textnorm

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MatchMode selects how two normalized names are compared.
type MatchMode string

const (
	// MatchSubstring matches when either name contains the other.
	MatchSubstring MatchMode = "substring"
	// MatchTokens matches when both names carry the same set of words.
	MatchTokens MatchMode = "tokens"
)

// ParseMatchMode converts a configuration value into a MatchMode.
// An empty value selects MatchSubstring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchTokens:
		return MatchTokens, nil
	default:
		return "", fmt.Errorf("unknown match mode %q", s)
	}
}

// Normalize lower-cases s, strips diacritics, turns underscores into
// spaces and trims surrounding whitespace.
// "Épluchures_Carottes " becomes "epluchures carottes".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "_", " ")
	return strings.TrimSpace(folded)
}

// Display renders a snake_case catalogue name for humans.
func Display(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

// Matches reports whether two already-normalized names refer to the same
// product under the given mode. Empty names never match.
func Matches(a, b string, mode MatchMode) bool {
	if a == "" || b == "" {
		return false
	}
	if mode == MatchTokens {
		return tokenKey(a) == tokenKey(b)
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func tokenKey(s string) string {
	words := strings.Fields(s)
	sort.Strings(words)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(out) > 0 && out[len(out)-1] == w {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}
