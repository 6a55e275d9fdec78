package models

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/comparison"
)

// AliasMethod records which canonical-street alias category set the
// is-local flag on a parsed address.
type AliasMethod string

const (
	AliasMethodNone      AliasMethod = ""
	AliasMethodPrimary   AliasMethod = "primary"
	AliasMethodHomonym   AliasMethod = "homonym"
	AliasMethodSynonym   AliasMethod = "synonym"
	AliasMethodCandidate AliasMethod = "candidate"
)

// streetNumberMaxDiff bounds numeric street-number proximity; parcels more
// than this far apart score zero on the number component.
const streetNumberMaxDiff = 20

var addressWeights = map[string]float64{
	"street_number": 1.5,
	"street_name":   2.0,
	"street_type":   0.5,
	"unit_type":     0.25,
	"unit_number":   0.5,
	"city":          0.75,
	"state":         0.25,
	"zip":           1.0,
}

// Address is a structured mailing/site address. Every field is optional;
// unparseable fragments default to absent and are excluded from scoring.
type Address struct {
	StreetNumber *AttributedValue `json:"street_number,omitempty"`
	StreetName   *AttributedValue `json:"street_name,omitempty"`
	StreetType   *AttributedValue `json:"street_type,omitempty"`
	UnitType     *AttributedValue `json:"unit_type,omitempty"`
	UnitNumber   *AttributedValue `json:"unit_number,omitempty"`
	City         *AttributedValue `json:"city,omitempty"`
	State        *AttributedValue `json:"state,omitempty"`
	Zip          *AttributedValue `json:"zip,omitempty"`

	// IsLocal is true when the street name resolved against the canonical
	// street database; AliasMethod records how.
	IsLocal     bool        `json:"is_local"`
	AliasMethod AliasMethod `json:"alias_method,omitempty"`
}

// IsEmpty reports whether no field was parsed at all.
func (a *Address) IsEmpty() bool {
	return a.StreetNumber == nil && a.StreetName == nil && a.StreetType == nil &&
		a.UnitType == nil && a.UnitNumber == nil && a.City == nil &&
		a.State == nil && a.Zip == nil
}

// Render returns a display form of the address for logs and review tools.
func (a *Address) Render() string {
	parts := make([]string, 0, 8)
	for _, v := range []*AttributedValue{a.StreetNumber, a.StreetName, a.StreetType, a.UnitType, a.UnitNumber, a.City, a.State, a.Zip} {
		if v != nil && v.Term != "" {
			parts = append(parts, v.Term)
		}
	}
	return strings.Join(parts, " ")
}

func (a *Address) ComparisonWeights() map[string]float64 { return addressWeights }

func (a *Address) Component(name string) comparison.Comparable {
	switch name {
	case "street_number":
		if a.StreetNumber == nil {
			return nil
		}
		return numericTerm{value: a.StreetNumber, maxDiff: streetNumberMaxDiff}
	case "street_name":
		if a.StreetName == nil {
			return nil
		}
		return a.StreetName
	case "street_type":
		if a.StreetType == nil {
			return nil
		}
		return a.StreetType
	case "unit_type":
		if a.UnitType == nil {
			return nil
		}
		return a.UnitType
	case "unit_number":
		if a.UnitNumber == nil {
			return nil
		}
		return a.UnitNumber
	case "city":
		if a.City == nil {
			return nil
		}
		return a.City
	case "state":
		if a.State == nil {
			return nil
		}
		return a.State
	case "zip":
		if a.Zip == nil {
			return nil
		}
		return a.Zip
	}
	return nil
}

func (a *Address) CompareTo(other comparison.Comparable) float64 {
	o, ok := other.(*Address)
	if !ok || o == nil {
		return 0
	}
	return comparison.Weighted(a, o)
}
