package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/juspay/yama-sub000/internal/domain"
)

// quoteReplacer unifies quote characters so snippets differing only in quote
// style hash identically.
var quoteReplacer = strings.NewReplacer("‘", "'", "’", "'", "“", "\"", "”", "\"", "`", "'", "\"", "'")

// NormalizeSnippet collapses whitespace, unifies quotes, and strips trailing
// semicolons and braces from a code snippet.
func NormalizeSnippet(snippet string) string {
	s := quoteReplacer.Replace(strings.TrimSpace(snippet))
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ";} \t")
	return s
}

// NormalizeText lowercases, strips punctuation, and collapses whitespace in
// issue and message text. Punctuation acts as a word separator so hyphenated
// spellings normalize the same as spaced ones.
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizedFingerprint hashes a violation after normalizing its identity
// fields, so cosmetic variations collapse to one hash.
func NormalizedFingerprint(v domain.Violation) string {
	payload := strings.Join([]string{
		strings.ToLower(strings.TrimSpace(v.File)),
		NormalizeSnippet(v.CodeSnippet),
		strings.ToUpper(strings.TrimSpace(v.Severity)),
		NormalizeText(v.Category),
		NormalizeText(v.Issue),
		NormalizeText(v.Message),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// locationKey identifies a same-location group.
func locationKey(v domain.Violation) string {
	return strings.ToLower(strings.TrimSpace(v.File)) + "|" + NormalizeSnippet(v.CodeSnippet)
}

// patternStopwords are action verbs and generic nouns removed from issue text
// before grouping, so "add a null check" and "missing null check" land in the
// same candidate group.
var patternStopwords = map[string]bool{
	"a": true, "an": true, "the": true, "this": true, "that": true,
	"is": true, "are": true, "be": true, "of": true, "in": true, "to": true, "for": true,
	"add": true, "use": true, "avoid": true, "remove": true, "consider": true,
	"should": true, "must": true, "missing": true, "potential": true, "possible": true,
	"issue": true, "problem": true, "error": true, "risk": true,
	"code": true, "value": true, "variable": true, "function": true, "method": true,
	"check": false, // kept: "check" distinguishes null-check findings from others
}

const patternMessagePrefix = 100

// patternKey builds the coarse grouping key for intra-run semantic
// candidates: category, stopword-stripped issue words, and the first 100
// characters of the normalized message.
func patternKey(v domain.Violation) string {
	var words []string
	for _, w := range strings.Fields(NormalizeText(v.Issue)) {
		if patternStopwords[w] {
			continue
		}
		words = append(words, w)
	}

	message := truncateRunes(NormalizeText(v.Message), patternMessagePrefix)

	return NormalizeText(v.Category) + "|" + strings.Join(words, " ") + "|" + message
}

// truncateRunes cuts s after at most n runes, never mid-rune: normalized
// text keeps non-ASCII letters and a byte slice could leave invalid UTF-8 in
// the key.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// exactTupleKey is the local fallback identity used when the semantic scorer
// fails for a group.
func exactTupleKey(v domain.Violation) string {
	return strings.TrimSpace(v.File) + "|" + strings.TrimSpace(v.Issue) + "|" + strings.TrimSpace(v.CodeSnippet)
}
