// Package sentencepattern classifies sentences into short structural
// fingerprints so that repeated sentence shapes can be detected and avoided.
// All functions are pure and total: any input, including empty or garbage
// text, yields a usable result.
package sentencepattern

import (
	"strings"
	"unicode"
)

// UnknownFingerprint is returned for empty or unclassifiable input.
const UnknownFingerprint = "unknown"

// Feature tags that may appear in a fingerprint, in emission order.
const (
	TagQuestion    = "question"
	TagExclamation = "exclamation"
	TagComma       = "comma"
	TagSemicolon   = "semicolon"
	TagSubordinate = "subordinate"
	TagCoordinate  = "coordinate"
	TagMultiVerb   = "multi_verb"
)

// length buckets
const (
	bucketShort   = "short"
	bucketMedium  = "medium"
	bucketLong    = "long"
	bucketComplex = "complex"
)

// Fingerprint reduces a sentence to its structural shape. Two sentences with
// the same fingerprint are treated as structurally equivalent for diversity
// purposes. The format is "<length-bucket>_<feature>_<feature>..."; a plain
// short sentence with no notable features yields "short_".
func Fingerprint(sentence, language string) string {
	trimmed := strings.TrimSpace(sentence)
	if trimmed == "" {
		return UnknownFingerprint
	}

	words := fields(trimmed)
	if len(words) == 0 {
		return UnknownFingerprint
	}

	var tags []string
	if strings.Contains(trimmed, "?") {
		tags = append(tags, TagQuestion)
	}
	if strings.Contains(trimmed, "!") {
		tags = append(tags, TagExclamation)
	}
	if strings.Contains(trimmed, ",") {
		tags = append(tags, TagComma)
	}
	if strings.Contains(trimmed, ";") {
		tags = append(tags, TagSemicolon)
	}

	set := connectorsFor(language)
	lower := " " + strings.ToLower(trimmed) + " "
	if containsAnyKeyword(lower, set.subordinating) {
		tags = append(tags, TagSubordinate)
	}
	if containsAnyKeyword(lower, set.coordinating) {
		tags = append(tags, TagCoordinate)
	}
	if countVerbs(words, set) > 1 {
		tags = append(tags, TagMultiVerb)
	}

	return lengthBucket(len(words)) + "_" + strings.Join(tags, "_")
}

// Complexity scores a sentence in [0,1] as the fraction of seven structural
// features present: comma, semicolon, question mark, exclamation mark, more
// than ten words, a subordinating conjunction, a coordinating conjunction.
func Complexity(sentence, language string) float64 {
	trimmed := strings.TrimSpace(sentence)
	if trimmed == "" {
		return 0
	}

	set := connectorsFor(language)
	lower := " " + strings.ToLower(trimmed) + " "

	features := 0
	if strings.Contains(trimmed, ",") {
		features++
	}
	if strings.Contains(trimmed, ";") {
		features++
	}
	if strings.Contains(trimmed, "?") {
		features++
	}
	if strings.Contains(trimmed, "!") {
		features++
	}
	if len(fields(trimmed)) > 10 {
		features++
	}
	if containsAnyKeyword(lower, set.subordinating) {
		features++
	}
	if containsAnyKeyword(lower, set.coordinating) {
		features++
	}
	return float64(features) / 7.0
}

// FeatureCount reports how many feature tags a fingerprint carries. It is
// used as a cheap complexity proxy when only the fingerprint survives.
func FeatureCount(fingerprint string) int {
	if fingerprint == "" || fingerprint == UnknownFingerprint {
		return 0
	}
	count := 0
	for _, tag := range []string{TagQuestion, TagExclamation, TagComma, TagSemicolon, TagSubordinate, TagCoordinate, TagMultiVerb} {
		if strings.Contains(fingerprint, tag) {
			count++
		}
	}
	return count
}

// IsSimple reports whether a context pattern describes a structurally plain
// sentence: the sentinel, an explicit "simple" label, or a fingerprint that
// carries no feature tags.
func IsSimple(pattern string) bool {
	if pattern == "" || pattern == UnknownFingerprint {
		return true
	}
	if strings.Contains(pattern, "simple") {
		return true
	}
	return strings.HasSuffix(pattern, "_")
}

func lengthBucket(wordCount int) string {
	switch {
	case wordCount <= 5:
		return bucketShort
	case wordCount <= 12:
		return bucketMedium
	case wordCount <= 20:
		return bucketLong
	default:
		return bucketComplex
	}
}

// fields splits on anything that is not a letter, digit, apostrophe or hyphen,
// so punctuation never leaks into word tokens.
func fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}

// containsAnyKeyword matches whole words (the haystack is padded with spaces).
func containsAnyKeyword(paddedLower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(paddedLower, " "+kw+" ") {
			return true
		}
	}
	return false
}

func countVerbs(words []string, set connectorSet) int {
	count := 0
	for _, w := range words {
		lw := strings.ToLower(w)
		if isCommonVerb(lw, set.commonVerbs) {
			count++
			continue
		}
		// Suffix matching only kicks in for longer tokens to keep the
		// false-positive rate on short function words down.
		if len([]rune(lw)) >= 4 {
			for _, suffix := range set.verbSuffixes {
				if strings.HasSuffix(lw, suffix) {
					count++
					break
				}
			}
		}
	}
	return count
}

func isCommonVerb(word string, verbs []string) bool {
	for _, v := range verbs {
		if word == v {
			return true
		}
	}
	return false
}
