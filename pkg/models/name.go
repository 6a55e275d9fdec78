package models

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/comparison"
)

// NameVariant discriminates structured name types in serialized entities.
// Deserialization selects a constructor from nameConstructors by this tag;
// there is no runtime type inspection.
type NameVariant string

const (
	NameVariantIndividual NameVariant = "individual"
	NameVariantHousehold  NameVariant = "household"
	NameVariantBusiness   NameVariant = "business"
)

// Name is a structured owner name scored under the comparison contract.
// Same-variant comparisons use the variant's component weights; cross
// variant comparisons fall back to edit distance over the rendered
// complete terms so individual-vs-household scoring degrades gracefully
// instead of zeroing out.
type Name interface {
	comparison.Comparable
	Variant() NameVariant
	Render() string
}

// nameConstructors maps each variant to its constructor, built at compile
// time. Used by entity deserialization.
var nameConstructors = map[NameVariant]func() Name{
	NameVariantIndividual: func() Name { return &IndividualName{} },
	NameVariantHousehold:  func() Name { return &HouseholdName{} },
	NameVariantBusiness:   func() Name { return &BusinessName{} },
}

// Comparison weight maps are package-level and shared across every
// comparison in a batch; they are never mutated.
var individualNameWeights = map[string]float64{
	"first":  1.0,
	"middle": 0.25,
	"last":   2.0,
	"suffix": 0.1,
}

// IndividualName is a parsed personal name. Middle and Suffix are
// frequently absent; absent components never penalize a comparison.
type IndividualName struct {
	First    *AttributedValue `json:"first,omitempty"`
	Middle   *AttributedValue `json:"middle,omitempty"`
	Last     *AttributedValue `json:"last,omitempty"`
	Suffix   *AttributedValue `json:"suffix,omitempty"`
	Complete *AttributedValue `json:"complete"`
}

func (n *IndividualName) Variant() NameVariant { return NameVariantIndividual }

func (n *IndividualName) Render() string {
	if n.Complete != nil {
		return n.Complete.Term
	}
	parts := make([]string, 0, 4)
	for _, v := range []*AttributedValue{n.First, n.Middle, n.Last, n.Suffix} {
		if v != nil && v.Term != "" {
			parts = append(parts, v.Term)
		}
	}
	return strings.Join(parts, " ")
}

func (n *IndividualName) ComparisonWeights() map[string]float64 { return individualNameWeights }

func (n *IndividualName) Component(name string) comparison.Comparable {
	var v *AttributedValue
	switch name {
	case "first":
		v = n.First
	case "middle":
		v = n.Middle
	case "last":
		v = n.Last
	case "suffix":
		v = n.Suffix
	case "complete":
		v = n.Complete
	}
	if v == nil {
		return nil
	}
	return v
}

func (n *IndividualName) CompareTo(other comparison.Comparable) float64 {
	switch o := other.(type) {
	case *IndividualName:
		return comparison.Weighted(n, o)
	case Name:
		return comparison.Levenshtein(n.Render(), o.Render())
	default:
		return 0
	}
}

// HouseholdName is a freeform composite term for joint or family
// ownership, e.g. "SMITH JOHN & MARY".
type HouseholdName struct {
	Composite *AttributedValue `json:"composite"`
}

func (n *HouseholdName) Variant() NameVariant { return NameVariantHousehold }

func (n *HouseholdName) Render() string {
	if n.Composite == nil {
		return ""
	}
	return n.Composite.Term
}

func (n *HouseholdName) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(Name)
	if !ok {
		return 0
	}
	return comparison.Levenshtein(n.Render(), o.Render())
}

// BusinessName holds an institutional or legal-construct name verbatim,
// with no token decomposition.
type BusinessName struct {
	Verbatim *AttributedValue `json:"verbatim"`
}

func (n *BusinessName) Variant() NameVariant { return NameVariantBusiness }

func (n *BusinessName) Render() string {
	if n.Verbatim == nil {
		return ""
	}
	return n.Verbatim.Term
}

func (n *BusinessName) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(Name)
	if !ok {
		return 0
	}
	return comparison.Levenshtein(n.Render(), o.Render())
}
