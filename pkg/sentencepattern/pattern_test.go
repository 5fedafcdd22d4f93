package sentencepattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintEmptyInput(t *testing.T) {
	assert.Equal(t, UnknownFingerprint, Fingerprint("", "en"))
	assert.Equal(t, UnknownFingerprint, Fingerprint("   ", "de"))
	assert.Equal(t, UnknownFingerprint, Fingerprint("?!.,;", "en"))
}

func TestFingerprintPlainShortSentence(t *testing.T) {
	// No punctuation features, no connectors, a single verb at most:
	// the fingerprint is just the length bucket with an empty feature list.
	assert.Equal(t, "short_", Fingerprint("Das Haus", "de"))
}

func TestFingerprintQuestion(t *testing.T) {
	fp := Fingerprint("Wo ist das Haus?", "de")
	assert.Equal(t, "short_question", fp)
}

func TestFingerprintComplexEnglish(t *testing.T) {
	fp := Fingerprint("Because it was raining, we stayed home and read books.", "en")
	assert.Equal(t, "medium_comma_subordinate_multi_verb", fp)
}

func TestFingerprintUnknownLanguageFallsBackToEnglish(t *testing.T) {
	fp := Fingerprint("We left because it rained", "zz")
	assert.Contains(t, fp, TagSubordinate)
}

func TestFingerprintIsDeterministic(t *testing.T) {
	a := Fingerprint("She sings, and he listens!", "en")
	b := Fingerprint("She sings, and he listens!", "en")
	assert.Equal(t, a, b)
}

func TestComplexityBounds(t *testing.T) {
	assert.Equal(t, 0.0, Complexity("", "en"))
	assert.InDelta(t, 0.0, Complexity("Haus", "de"), 1e-9)

	full := "Well, since you asked; why would he leave, and can you believe it happened because of that!?"
	c := Complexity(full, "en")
	assert.Equal(t, 1.0, c)
}

func TestComplexityCountsFractionOfSeven(t *testing.T) {
	// comma + subordinating + coordinating = 3 of 7 features.
	c := Complexity("Because it was raining, we stayed home and read books.", "en")
	assert.InDelta(t, 3.0/7.0, c, 1e-9)
}

func TestFeatureCount(t *testing.T) {
	assert.Equal(t, 0, FeatureCount("short_"))
	assert.Equal(t, 0, FeatureCount(UnknownFingerprint))
	assert.Equal(t, 3, FeatureCount("medium_comma_subordinate_multi_verb"))
}

func TestIsSimple(t *testing.T) {
	assert.True(t, IsSimple(""))
	assert.True(t, IsSimple(UnknownFingerprint))
	assert.True(t, IsSimple("short_"))
	assert.True(t, IsSimple("short_simple"))
	assert.False(t, IsSimple("medium_comma_subordinate"))
}
