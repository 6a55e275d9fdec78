package models

import (
	"strconv"

	"github.com/Ramsey-B/fern/pkg/comparison"
)

// AttributedValue is a scalar term plus provenance: which source system it
// came from, the record position within that source, and the field name.
// Provenance is retained for audit output only and never participates in
// comparison. Values are treated as immutable once created.
type AttributedValue struct {
	Term     string `json:"term"`
	Source   string `json:"source,omitempty"`
	Position int    `json:"position,omitempty"`
	Field    string `json:"field,omitempty"`
}

// NewAttributedValue creates an attributed value
func NewAttributedValue(term, source string, position int, field string) *AttributedValue {
	return &AttributedValue{
		Term:     term,
		Source:   source,
		Position: position,
		Field:    field,
	}
}

// CompareTo scores this term against another attributed value using edit
// distance. Only terms are compared, never provenance.
func (v *AttributedValue) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(*AttributedValue)
	if !ok || o == nil {
		return 0
	}
	return comparison.Levenshtein(v.Term, o.Term)
}

// exactTerm wraps an attributed value whose comparison is all-or-nothing,
// e.g. account numbers where partial similarity is meaningless.
type exactTerm struct {
	value *AttributedValue
}

func (t exactTerm) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(exactTerm)
	if !ok || o.value == nil || t.value == nil {
		return 0
	}
	return comparison.ExactMatch(t.value.Term, o.value.Term, false)
}

// numericTerm wraps an attributed value compared by numeric proximity,
// e.g. street numbers where nearby parcels should score above unrelated
// ones. Falls back to exact term comparison when either side is not a
// parseable number.
type numericTerm struct {
	value   *AttributedValue
	maxDiff float64
}

func (t numericTerm) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(numericTerm)
	if !ok || o.value == nil || t.value == nil {
		return 0
	}
	a, errA := strconv.ParseFloat(t.value.Term, 64)
	b, errB := strconv.ParseFloat(o.value.Term, 64)
	if errA != nil || errB != nil {
		return comparison.ExactMatch(t.value.Term, o.value.Term, false)
	}
	maxDiff := t.maxDiff
	if o.maxDiff > maxDiff {
		maxDiff = o.maxDiff
	}
	return comparison.NumericProximity(a, b, maxDiff)
}
