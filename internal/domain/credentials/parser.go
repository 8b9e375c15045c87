// Package credentials extracts a (national id, reference number) pair from
// free text. Parsing is tolerant of ordering, casing, surrounding words and
// the common reference-number dialects, and reports which half of the pair
// was missing so callers can produce a guiding reply instead of generic
// format help.
package credentials

import (
	"regexp"
	"strings"
)

// Outcome distinguishes the parse results callers must branch on.
type Outcome int

const (
	// Found means a full credential pair was extracted.
	Found Outcome = iota
	// MissingNationalID means only a reference-shaped token was present.
	MissingNationalID
	// MissingReference means only an id-shaped token was present.
	MissingReference
	// NotFound means neither token was present.
	NotFound
)

// Pair is a parsed credential pair. The reference number is canonicalized
// (upper case, underscore separator normalized to hyphen); the national id
// keeps its original characters so both accepted formats stay
// distinguishable downstream.
type Pair struct {
	NationalID      string
	ReferenceNumber string
}

// ParseResult carries the outcome and, when found, the pair.
type ParseResult struct {
	Outcome Outcome
	Pair    *Pair
}

var (
	// Segmented (123456/78/9) or plain numeric (nine or more digits).
	nationalIDToken = regexp.MustCompile(`^(\d{6}/\d{2}/\d|\d{9,})$`)
	// Alphabetic category prefix with optional separator, or bare numeric.
	referenceToken = regexp.MustCompile(`^([A-Za-z]{2,3}[-_]?\d{4,}|\d{4,})$`)

	// Substring fallbacks for credentials buried in prose. The bare-numeric
	// reference dialect is only accepted as a standalone token; inside prose
	// it is indistinguishable from any other number.
	nationalIDAnywhere = regexp.MustCompile(`\d{6}/\d{2}/\d|\d{9,}`)
	referenceAnywhere  = regexp.MustCompile(`[A-Za-z]{2,3}[-_]?\d{4,}`)
)

// Parse extracts a credential pair from a message. Token pairs are tried
// first, scanning left-to-right over ordered token indices; if no pair
// exists, substring extraction over the raw message is attempted so that
// extra words around the credentials do not defeat parsing.
func Parse(message string) *ParseResult {
	tokens := strings.Fields(message)
	clean := make([]string, len(tokens))
	for k, t := range tokens {
		clean[k] = strings.Trim(t, ".,;:!()")
	}
	for i := range clean {
		if !nationalIDToken.MatchString(clean[i]) {
			continue
		}
		for j := range clean {
			if j == i {
				continue
			}
			if referenceToken.MatchString(clean[j]) {
				return &ParseResult{
					Outcome: Found,
					Pair: &Pair{
						NationalID:      clean[i],
						ReferenceNumber: canonicalizeReference(clean[j]),
					},
				}
			}
		}
	}

	return parseSubstrings(message)
}

// parseSubstrings handles credentials embedded in prose. The reference is
// located first and masked out so its digit run cannot be mistaken for a
// plain-numeric national id.
func parseSubstrings(message string) *ParseResult {
	ref := referenceAnywhere.FindString(message)
	masked := message
	if ref != "" {
		masked = strings.Replace(message, ref, "", 1)
	}
	id := nationalIDAnywhere.FindString(masked)

	switch {
	case id != "" && ref != "":
		return &ParseResult{
			Outcome: Found,
			Pair: &Pair{
				NationalID:      id,
				ReferenceNumber: canonicalizeReference(ref),
			},
		}
	case id != "":
		return &ParseResult{Outcome: MissingReference}
	case ref != "":
		return &ParseResult{Outcome: MissingNationalID}
	default:
		return &ParseResult{Outcome: NotFound}
	}
}

func canonicalizeReference(ref string) string {
	return strings.ToUpper(strings.ReplaceAll(ref, "_", "-"))
}
