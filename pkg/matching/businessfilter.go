package matching

import (
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// defaultExclusionNames are institutional owners that must never surface
// as match candidates. Municipal and utility parcels appear thousands of
// times and would otherwise flood every review queue.
var defaultExclusionNames = []string{
	"TOWN OF NEW SHOREHAM",
	"STATE OF RHODE ISLAND",
	"BLOCK ISLAND LAND TRUST",
	"BLOCK ISLAND CONSERVANCY",
	"BLOCK ISLAND POWER COMPANY",
	"BLOCK ISLAND UTILITY DISTRICT",
	"THE NATURE CONSERVANCY",
	"US POSTAL SERVICE",
	"UNITED STATES OF AMERICA",
}

// defaultBusinessTerms are stripped from business names before
// comparison so "HARBOR POND LLC" and "HARBOR POND" can match.
var defaultBusinessTerms = []string{
	"LLC", "INC", "CORP", "CORPORATION", "CO", "COMPANY", "LTD",
	"LP", "LLP", "TRUST", "TRUSTEE", "TRUSTEES", "ESTATE",
	"REALTY", "PROPERTIES", "HOLDINGS", "ASSOCIATES", "PARTNERS",
}

// BusinessFilter applies the two-tier business treatment: a complete
// exclusion list checked first, then noise-term stripping for whatever
// remains.
type BusinessFilter struct {
	exclusions map[string]bool
	terms      map[string]bool
}

// NewBusinessFilter builds a filter from the deployed defaults.
func NewBusinessFilter() *BusinessFilter {
	return NewBusinessFilterWith(defaultExclusionNames, defaultBusinessTerms)
}

// NewBusinessFilterWith builds a filter from tenant-curated lists.
func NewBusinessFilterWith(exclusionNames, businessTerms []string) *BusinessFilter {
	f := &BusinessFilter{
		exclusions: make(map[string]bool, len(exclusionNames)),
		terms:      make(map[string]bool, len(businessTerms)),
	}
	for _, name := range exclusionNames {
		f.exclusions[normalizers.NormalizeTerm(name)] = true
	}
	for _, term := range businessTerms {
		f.terms[normalizers.NormalizeTerm(term)] = true
	}
	return f
}

// IsExcluded reports whether an entity's name is on the complete
// exclusion list. Excluded entities sit out individual-type matching;
// the engine still reconciles them against business-kind pools.
func (f *BusinessFilter) IsExcluded(entity *models.Entity) bool {
	if entity == nil || entity.Name == nil {
		return false
	}
	name := normalizers.NormalizeTerm(entity.Name.Render())
	if f.exclusions[name] {
		return true
	}
	// A name made entirely of business noise terms carries no identity
	// signal; treat it like an exclusion.
	stripped, _ := f.StripBusinessTerms(name)
	return stripped == ""
}

// StripBusinessTerms removes business noise words from a name and
// reports whether anything was removed.
func (f *BusinessFilter) StripBusinessTerms(name string) (string, bool) {
	words := strings.Fields(name)
	kept := make([]string, 0, len(words))
	stripped := false
	for _, w := range words {
		if f.terms[normalizers.StripWordPunctuation(w)] {
			stripped = true
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " "), stripped
}

// ComparableName returns the name string an entity should be compared
// with. Business and legal-construct names are stripped of noise terms;
// other kinds pass through untouched.
func (f *BusinessFilter) ComparableName(entity *models.Entity) string {
	if entity == nil || entity.Name == nil {
		return ""
	}
	name := normalizers.NormalizeTerm(entity.Name.Render())
	switch entity.Kind {
	case models.EntityKindBusiness, models.EntityKindLegalConstruct:
		stripped, _ := f.StripBusinessTerms(name)
		if stripped != "" {
			return stripped
		}
		return name
	}
	return name
}
