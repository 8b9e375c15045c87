package credentials

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCanonicalPairAcrossDialects(t *testing.T) {
	// Case and separator variants of the same pair must all canonicalize
	// identically, in either token order.
	messages := []string{
		"123456/78/9 PEN-1234567",
		"pen-1234567 123456/78/9",
		"Pen_1234567 123456/78/9",
	}

	for _, msg := range messages {
		result := Parse(msg)
		assert.Equal(t, Found, result.Outcome, "message: %q", msg)
		assert.Equal(t, "123456/78/9", result.Pair.NationalID, "message: %q", msg)
		assert.Equal(t, "PEN-1234567", result.Pair.ReferenceNumber, "message: %q", msg)
	}
}

func TestParsePlainNumericNationalID(t *testing.T) {
	result := Parse("my details are 123456789 and PEN-0005000168")

	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, "123456789", result.Pair.NationalID)
	assert.Equal(t, "PEN-0005000168", result.Pair.ReferenceNumber)
}

func TestParseBareNumericReference(t *testing.T) {
	result := Parse("228597/62/1 5000168")

	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, "228597/62/1", result.Pair.NationalID)
	assert.Equal(t, "5000168", result.Pair.ReferenceNumber)
}

func TestParseTolerantOfSurroundingWords(t *testing.T) {
	result := Parse("sure, it's 228597/62/1 and my reference is PEN_0005000168, thanks")

	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, "228597/62/1", result.Pair.NationalID)
	assert.Equal(t, "PEN-0005000168", result.Pair.ReferenceNumber)
}

func TestParseDistinguishesThreeFailureModes(t *testing.T) {
	onlyID := Parse("here is 123456/78/9")
	assert.Equal(t, MissingReference, onlyID.Outcome)

	onlyRef := Parse("here is PEN-1234567")
	assert.Equal(t, MissingNationalID, onlyRef.Outcome)

	neither := Parse("I lost my card, what do I do")
	assert.Equal(t, NotFound, neither.Outcome)
}

func TestParseIgnoresTrailingPunctuation(t *testing.T) {
	result := Parse("123456/78/9, PEN-1234567.")

	assert.Equal(t, Found, result.Outcome)
	assert.Equal(t, "123456/78/9", result.Pair.NationalID)
	assert.Equal(t, "PEN-1234567", result.Pair.ReferenceNumber)
}

func TestParseNationalIDKeepsOriginalCharacters(t *testing.T) {
	segmented := Parse("123456/78/9 PEN-1234567")
	plain := Parse("123456789 PEN-1234567")

	assert.Equal(t, "123456/78/9", segmented.Pair.NationalID)
	assert.Equal(t, "123456789", plain.Pair.NationalID)
}
