package classify

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// signature holds the token profile a cascade rule's predicates inspect:
// word count, qualifier presence, and which word carries each punctuation
// mark. "LAST, FIRST" and "FIRST LAST," are distinct rules, so positions
// matter, not just presence.
type signature struct {
	raw      string   // normalized input
	words    []string // whitespace tokens, punctuation preserved
	stripped []string // per-word punctuation-stripped tokens

	wordCount    int
	hasQualifier bool
	qualifierAt  int // index of first word containing a qualifier token, -1
	commaAt      int // index of first word ending with a comma, -1
	ampersandAt  int // index of a standalone "&" token, -1
	slashAt      int // index of first word containing "/", -1
}

func (e *Engine) buildSignature(rawName string) signature {
	normalized := normalizers.NormalizeOwnerName(rawName)
	words := strings.Fields(normalized)

	sig := signature{
		raw:         normalized,
		words:       words,
		stripped:    make([]string, len(words)),
		wordCount:   len(words),
		qualifierAt: -1,
		commaAt:     -1,
		ampersandAt: -1,
		slashAt:     -1,
	}

	for i, w := range words {
		sig.stripped[i] = normalizers.StripWordPunctuation(w)

		if sig.qualifierAt < 0 && e.wordHasQualifier(w) {
			sig.qualifierAt = i
			sig.hasQualifier = true
		}
		if strings.HasSuffix(w, ",") && sig.commaAt < 0 {
			sig.commaAt = i
		}
		if w == "&" && sig.ampersandAt < 0 {
			sig.ampersandAt = i
		}
		if strings.Contains(w, "/") && sig.slashAt < 0 {
			sig.slashAt = i
		}
	}

	return sig
}

// wordHasQualifier reports whether a raw word is a qualifier token.
// Slash-joined dual roles ("TRUST/TRUSTEE") hide two tokens in one word;
// each half is checked on its own.
func (e *Engine) wordHasQualifier(word string) bool {
	for _, half := range strings.Split(word, "/") {
		if _, ok := e.qualifiers[normalizers.StripWordPunctuation(half)]; ok {
			return true
		}
	}
	return false
}

// slashBothQualifiers reports whether both tokens flanking the slash in a
// word are qualifiers. Required for the dual-role rule; a slash with a
// non-qualifier half (e.g. "1/2") never classifies on its own.
func (e *Engine) slashBothQualifiers(word string) bool {
	halves := strings.Split(word, "/")
	if len(halves) != 2 {
		return false
	}
	for _, half := range halves {
		if _, ok := e.qualifiers[normalizers.StripWordPunctuation(half)]; !ok {
			return false
		}
	}
	return true
}

// isLegalConstruct reports whether any token (including slash halves) is
// a legal-construct qualifier, which routes the record to LegalConstruct
// instead of Business.
func (e *Engine) isLegalConstruct(sig signature) bool {
	for _, w := range sig.words {
		for _, half := range strings.Split(w, "/") {
			if _, ok := e.legal[normalizers.StripWordPunctuation(half)]; ok {
				return true
			}
		}
	}
	return false
}
