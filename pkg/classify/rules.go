package classify

import (
	"fmt"
	"strings"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Classification is the outcome of one cascade evaluation.
type Classification struct {
	Entity *models.Entity
	Rule   string
}

// buildRules assembles the ordered cascade. Order is load-bearing:
// specific before general, catch-all last.
func (e *Engine) buildRules() []rule {
	return []rule{
		{
			// "SMITH,JOHN": one token, embedded comma
			name: "single_word_embedded_comma",
			applies: func(sig signature) bool {
				if sig.wordCount != 1 || sig.hasQualifier || sig.slashAt >= 0 {
					return false
				}
				halves := strings.SplitN(sig.words[0], ",", 2)
				return len(halves) == 2 && halves[0] != "" && halves[1] != ""
			},
			build: func(in Input, sig signature) (*Classification, error) {
				halves := strings.SplitN(sig.words[0], ",", 2)
				return e.individual(in, halves[1], "", halves[0], sig)
			},
		},
		{
			// "SMITH, JOHN": comma terminates the first word
			name: "two_word_comma_first",
			applies: func(sig signature) bool {
				return sig.wordCount == 2 && !sig.hasQualifier && sig.commaAt == 0 && sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.individual(in, sig.stripped[1], "", sig.stripped[0], sig)
			},
		},
		{
			// "JOHN SMITH,": trailing comma on the second word is noise
			name: "two_word_comma_second",
			applies: func(sig signature) bool {
				return sig.wordCount == 2 && !sig.hasQualifier && sig.commaAt == 1 && sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.individual(in, sig.stripped[0], "", sig.stripped[1], sig)
			},
		},
		{
			// "JOHN SMITH": two plain words
			name: "two_word_plain",
			applies: func(sig signature) bool {
				return sig.wordCount == 2 && !sig.hasQualifier && sig.commaAt < 0 &&
					sig.ampersandAt < 0 && sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.individual(in, sig.stripped[0], "", sig.stripped[1], sig)
			},
		},
		{
			// "SMITH TRUST", "ACME LLC": two words, one a qualifier
			name: "two_word_qualifier",
			applies: func(sig signature) bool {
				return sig.wordCount == 2 && sig.hasQualifier
			},
			build: e.institution,
		},
		{
			// "SMITH JOHN TRUST/TRUSTEE": dual role, both tokens
			// flanking the slash must themselves be qualifiers
			name: "slash_dual_role",
			applies: func(sig signature) bool {
				return sig.slashAt >= 0 && e.slashBothQualifiers(sig.words[sig.slashAt])
			},
			build: e.institution,
		},
		{
			// "SMITH, JOHN A": comma after surname, middle present
			name: "three_word_comma_first",
			applies: func(sig signature) bool {
				return sig.wordCount == 3 && !sig.hasQualifier && sig.commaAt == 0 &&
					sig.ampersandAt < 0 && sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.individual(in, sig.stripped[1], sig.stripped[2], sig.stripped[0], sig)
			},
		},
		{
			// "JOHN A SMITH": three plain words
			name: "three_word_plain",
			applies: func(sig signature) bool {
				return sig.wordCount == 3 && !sig.hasQualifier && sig.commaAt < 0 &&
					sig.ampersandAt < 0 && sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.individual(in, sig.stripped[0], sig.stripped[1], sig.stripped[2], sig)
			},
		},
		{
			// "SMITH, JOHN & MARY" / "SMITH, JOHN B & MARY": shared
			// surname first, ampersand-joined members. The comma is
			// required only within the first member's segment; none is
			// expected after the ampersand. Preserved as-is against the
			// historical data; do not symmetrize.
			name: "household_amp_comma",
			applies: func(sig signature) bool {
				return (sig.wordCount == 4 || sig.wordCount == 5) && !sig.hasQualifier &&
					sig.commaAt == 0 && sig.ampersandAt >= 2 && sig.ampersandAt < sig.wordCount-1 &&
					sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				surname := sig.stripped[0]
				first := sig.stripped[1:sig.ampersandAt]
				second := sig.stripped[sig.ampersandAt+1:]
				return e.household(in, sig, surname, first, second)
			},
		},
		{
			// "JOHN & MARY SMITH" / "JOHN A & MARY SMITH": shared
			// surname last, no comma anywhere
			name: "household_amp_surname_last",
			applies: func(sig signature) bool {
				return (sig.wordCount == 4 || sig.wordCount == 5) && !sig.hasQualifier &&
					sig.commaAt < 0 && sig.ampersandAt >= 1 && sig.ampersandAt <= sig.wordCount-3 &&
					sig.slashAt < 0
			},
			build: func(in Input, sig signature) (*Classification, error) {
				surname := sig.stripped[sig.wordCount-1]
				first := sig.stripped[:sig.ampersandAt]
				second := sig.stripped[sig.ampersandAt+1 : sig.wordCount-1]
				return e.household(in, sig, surname, first, second)
			},
		},
		{
			// Any other ampersand-joined entry: household by composite
			// name, members not recoverable
			name: "household_ampersand",
			applies: func(sig signature) bool {
				return sig.ampersandAt >= 0 && !sig.hasQualifier
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.householdComposite(in, sig, nil)
			},
		},
		{
			// Qualifier anywhere: institutional name, kept verbatim
			name: "qualifier_entity",
			applies: func(sig signature) bool {
				return sig.hasQualifier
			},
			build: e.institution,
		},
		{
			// Catch-all: five or more words, no qualifier. Accepts
			// anything not already matched; must never move above a
			// specific rule.
			name: "household_catch_all",
			applies: func(sig signature) bool {
				return sig.wordCount >= 5 && !sig.hasQualifier
			},
			build: func(in Input, sig signature) (*Classification, error) {
				return e.householdComposite(in, sig, nil)
			},
		},
	}
}

// value builds an attributed value carrying the record's provenance.
func (e *Engine) value(in Input, term string) *models.AttributedValue {
	return models.NewAttributedValue(term, in.SourceSystem, in.Position, "owner_name")
}

// individual builds an Individual entity from name parts. Middle may be
// empty.
func (e *Engine) individual(in Input, first, middle, last string, sig signature) (*Classification, error) {
	if first == "" || last == "" {
		return nil, fmt.Errorf("individual name missing first or last token")
	}

	name := &models.IndividualName{
		First: e.value(in, first),
		Last:  e.value(in, last),
	}
	if middle != "" {
		name.Middle = e.value(in, middle)
	}

	complete := first
	if middle != "" {
		complete += " " + middle
	}
	complete += " " + last
	name.Complete = e.value(in, complete)

	return &Classification{
		Entity: &models.Entity{
			TenantID:     in.TenantID,
			SourceSystem: in.SourceSystem,
			Kind:         models.EntityKindIndividual,
			LocationID:   in.LocationID,
			Name:         name,
		},
	}, nil
}

// household builds a Household entity with parsed member individuals
// sharing a surname. Member segments are [first] or [first middle].
func (e *Engine) household(in Input, sig signature, surname string, segments ...[]string) (*Classification, error) {
	members := make([]*models.Entity, 0, len(segments))
	for _, segment := range segments {
		if len(segment) == 0 || len(segment) > 2 {
			return nil, fmt.Errorf("household member segment has %d tokens", len(segment))
		}
		first := segment[0]
		middle := ""
		if len(segment) == 2 {
			middle = segment[1]
		}
		member, err := e.individual(in, first, middle, surname, sig)
		if err != nil {
			return nil, err
		}
		members = append(members, member.Entity)
	}
	return e.householdComposite(in, sig, members)
}

// householdComposite builds a Household entity from the full normalized
// string, optionally with parsed members.
func (e *Engine) householdComposite(in Input, sig signature, members []*models.Entity) (*Classification, error) {
	return &Classification{
		Entity: &models.Entity{
			TenantID:     in.TenantID,
			SourceSystem: in.SourceSystem,
			Kind:         models.EntityKindHousehold,
			LocationID:   in.LocationID,
			Name: &models.HouseholdName{
				Composite: e.value(in, sig.raw),
			},
			Members: members,
		},
	}, nil
}

// institution builds a Business or LegalConstruct entity. The full string
// is retained verbatim with no token decomposition.
func (e *Engine) institution(in Input, sig signature) (*Classification, error) {
	kind := models.EntityKindBusiness
	if e.isLegalConstruct(sig) {
		kind = models.EntityKindLegalConstruct
	}
	return &Classification{
		Entity: &models.Entity{
			TenantID:     in.TenantID,
			SourceSystem: in.SourceSystem,
			Kind:         kind,
			LocationID:   in.LocationID,
			Name: &models.BusinessName{
				Verbatim: e.value(in, sig.raw),
			},
		},
	}, nil
}
