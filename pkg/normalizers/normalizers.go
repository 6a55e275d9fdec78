// Package normalizers provides string normalization functions shared by
// classification, address parsing, and matching. Strings are normalized
// once at classification time, never per comparison.
package normalizers

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	Register("lowercase", Lowercase)
	Register("uppercase", Uppercase)
	Register("trim", Trim)
	Register("nname", NormalizeOwnerName)
	Register("nterm", NormalizeTerm)
	Register("nstreet", NormalizeStreet)
	Register("nzip", NormalizeZip)
	Register("remove_punctuation", RemovePunctuation)
	Register("strip_word_punctuation", StripWordPunctuation)
	Register("digits_only", DigitsOnly)
	Register("collapse_whitespace", CollapseWhitespace)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Uppercase converts string to uppercase
func Uppercase(s string) string {
	return strings.ToUpper(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// CollapseWhitespace collapses runs of whitespace to a single space
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// NormalizeOwnerName prepares a raw owner-name string for classification:
// uppercase, whitespace collapsed, trimmed. Punctuation is preserved
// because comma/ampersand/slash placement drives the rule cascade.
func NormalizeOwnerName(s string) string {
	return CollapseWhitespace(strings.ToUpper(s))
}

// NormalizeTerm prepares a term for variation-index lookup: uppercase and
// trimmed. A normalized term maps to at most one canonical street entry.
func NormalizeTerm(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// RemovePunctuation removes all punctuation characters
func RemovePunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsPunct(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// StripWordPunctuation removes punctuation from a single word, used for
// qualifier-list lookups where "L.L.C." and "LLC," must both hit "LLC".
func StripWordPunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// DigitsOnly keeps only digit characters
func DigitsOnly(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeZip normalizes a US zip code to 5 or 9 digits
func NormalizeZip(s string) string {
	digits := DigitsOnly(s)
	if len(digits) == 5 || len(digits) == 9 {
		return digits
	}
	return ""
}

// streetTypeAbbreviations maps full street-type words to canonical
// abbreviations so both renderings index identically.
var streetTypeAbbreviations = map[string]string{
	"STREET":    "ST",
	"AVENUE":    "AVE",
	"BOULEVARD": "BLVD",
	"DRIVE":     "DR",
	"ROAD":      "RD",
	"LANE":      "LN",
	"COURT":     "CT",
	"CIRCLE":    "CIR",
	"PLACE":     "PL",
	"TRAIL":     "TRL",
	"TERRACE":   "TER",
	"HIGHWAY":   "HWY",
	"WAY":       "WAY",
}

// streetTypeForms holds every accepted rendering of a street type.
var streetTypeForms = map[string]string{}

func init() {
	for full, abbr := range streetTypeAbbreviations {
		streetTypeForms[full] = abbr
		streetTypeForms[abbr] = abbr
	}
}

var directionalAbbreviations = map[string]string{
	"NORTH": "N",
	"SOUTH": "S",
	"EAST":  "E",
	"WEST":  "W",
}

// NormalizeStreet normalizes a street string: uppercase, strip per-word
// punctuation, abbreviate street-type and directional words, collapse
// whitespace.
func NormalizeStreet(s string) string {
	words := strings.Fields(strings.ToUpper(s))
	for i, w := range words {
		stripped := StripWordPunctuation(w)
		if abbr, ok := streetTypeForms[stripped]; ok {
			words[i] = abbr
		} else if abbr, ok := directionalAbbreviations[stripped]; ok {
			words[i] = abbr
		} else {
			words[i] = stripped
		}
	}
	return strings.Join(words, " ")
}

// StreetTypeAbbreviation returns the canonical abbreviation for a
// street-type word and whether the word is a street type at all.
func StreetTypeAbbreviation(word string) (string, bool) {
	stripped := StripWordPunctuation(strings.ToUpper(word))
	abbr, ok := streetTypeForms[stripped]
	return abbr, ok
}
