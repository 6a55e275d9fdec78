package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func classifyName(t *testing.T, rawName string) *Classification {
	t.Helper()
	engine := NewEngine(nil)
	result, err := engine.Classify(Input{
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		LocationID:   "plat-12-lot-4",
		RawName:      rawName,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Entity)
	return result
}

func individualName(t *testing.T, entity *models.Entity) *models.IndividualName {
	t.Helper()
	name, ok := entity.Name.(*models.IndividualName)
	require.True(t, ok, "expected individual name, got %T", entity.Name)
	return name
}

func TestClassify_Individuals(t *testing.T) {
	t.Run("single word with embedded comma", func(t *testing.T) {
		result := classifyName(t, "SMITH,JOHN")
		assert.Equal(t, "single_word_embedded_comma", result.Rule)
		assert.Equal(t, models.EntityKindIndividual, result.Entity.Kind)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
		assert.Nil(t, name.Middle)
	})

	t.Run("comma after surname", func(t *testing.T) {
		result := classifyName(t, "SMITH, JOHN")
		assert.Equal(t, "two_word_comma_first", result.Rule)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("trailing comma is noise", func(t *testing.T) {
		result := classifyName(t, "JOHN SMITH,")
		assert.Equal(t, "two_word_comma_second", result.Rule)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("two plain words read first-last", func(t *testing.T) {
		result := classifyName(t, "JOHN SMITH")
		assert.Equal(t, "two_word_plain", result.Rule)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("asymmetric comma rule", func(t *testing.T) {
		// The same two tokens classify differently depending on where the
		// comma sits. Preserved against historical data; do not symmetrize.
		commaFirst := classifyName(t, "SMITH, JOHN")
		commaSecond := classifyName(t, "SMITH JOHN,")

		assert.Equal(t, "JOHN", individualName(t, commaFirst.Entity).First.Term)
		assert.Equal(t, "SMITH", individualName(t, commaSecond.Entity).First.Term)
	})

	t.Run("three words with comma keep middle", func(t *testing.T) {
		result := classifyName(t, "SMITH, JOHN A")
		assert.Equal(t, "three_word_comma_first", result.Rule)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "A", name.Middle.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("three plain words", func(t *testing.T) {
		result := classifyName(t, "JOHN A SMITH")
		assert.Equal(t, "three_word_plain", result.Rule)

		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "A", name.Middle.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("complete name assembled in first-middle-last order", func(t *testing.T) {
		result := classifyName(t, "SMITH, JOHN A")
		name := individualName(t, result.Entity)
		assert.Equal(t, "JOHN A SMITH", name.Complete.Term)
	})

	t.Run("provenance carried on every value", func(t *testing.T) {
		result := classifyName(t, "JOHN SMITH")
		name := individualName(t, result.Entity)
		assert.Equal(t, "assessor", name.First.Source)
		assert.Equal(t, "owner_name", name.First.Field)
	})
}

func TestClassify_Households(t *testing.T) {
	t.Run("surname first with ampersand members", func(t *testing.T) {
		result := classifyName(t, "SMITH, JOHN & MARY")
		assert.Equal(t, "household_amp_comma", result.Rule)
		assert.Equal(t, models.EntityKindHousehold, result.Entity.Kind)

		require.Len(t, result.Entity.Members, 2)
		first := individualName(t, result.Entity.Members[0])
		second := individualName(t, result.Entity.Members[1])
		assert.Equal(t, "JOHN", first.First.Term)
		assert.Equal(t, "SMITH", first.Last.Term)
		assert.Equal(t, "MARY", second.First.Term)
		assert.Equal(t, "SMITH", second.Last.Term)
	})

	t.Run("first member may carry a middle initial", func(t *testing.T) {
		result := classifyName(t, "SMITH, JOHN B & MARY")
		assert.Equal(t, "household_amp_comma", result.Rule)

		require.Len(t, result.Entity.Members, 2)
		first := individualName(t, result.Entity.Members[0])
		assert.Equal(t, "JOHN", first.First.Term)
		assert.Equal(t, "B", first.Middle.Term)
	})

	t.Run("surname last without comma", func(t *testing.T) {
		result := classifyName(t, "JOHN & MARY SMITH")
		assert.Equal(t, "household_amp_surname_last", result.Rule)

		require.Len(t, result.Entity.Members, 2)
		first := individualName(t, result.Entity.Members[0])
		second := individualName(t, result.Entity.Members[1])
		assert.Equal(t, "JOHN", first.First.Term)
		assert.Equal(t, "SMITH", first.Last.Term)
		assert.Equal(t, "MARY", second.First.Term)
	})

	t.Run("unparseable ampersand form keeps composite only", func(t *testing.T) {
		result := classifyName(t, "SMITH JOHN & JONES MARY ANN ET AL")
		assert.Equal(t, "household_ampersand", result.Rule)
		assert.Equal(t, models.EntityKindHousehold, result.Entity.Kind)
		assert.Empty(t, result.Entity.Members)

		name, ok := result.Entity.Name.(*models.HouseholdName)
		require.True(t, ok)
		assert.Equal(t, "SMITH JOHN & JONES MARY ANN ET AL", name.Composite.Term)
	})

	t.Run("many plain words fall through to catch-all", func(t *testing.T) {
		result := classifyName(t, "SMITH JOHN MARY ROBERT ANN")
		assert.Equal(t, "household_catch_all", result.Rule)
		assert.Equal(t, models.EntityKindHousehold, result.Entity.Kind)
		assert.Empty(t, result.Entity.Members)
	})
}

func TestClassify_Institutions(t *testing.T) {
	t.Run("two words with business qualifier", func(t *testing.T) {
		result := classifyName(t, "ACME LLC")
		assert.Equal(t, "two_word_qualifier", result.Rule)
		assert.Equal(t, models.EntityKindBusiness, result.Entity.Kind)

		name, ok := result.Entity.Name.(*models.BusinessName)
		require.True(t, ok)
		assert.Equal(t, "ACME LLC", name.Verbatim.Term)
	})

	t.Run("trust routes to legal construct", func(t *testing.T) {
		result := classifyName(t, "SMITH TRUST")
		assert.Equal(t, "two_word_qualifier", result.Rule)
		assert.Equal(t, models.EntityKindLegalConstruct, result.Entity.Kind)
	})

	t.Run("slash dual role requires qualifiers on both halves", func(t *testing.T) {
		result := classifyName(t, "SMITH JOHN TRUST/TRUSTEE")
		assert.Equal(t, "slash_dual_role", result.Rule)
		assert.Equal(t, models.EntityKindLegalConstruct, result.Entity.Kind)
	})

	t.Run("slash with non-qualifier half does not classify as dual role", func(t *testing.T) {
		// "1/2" is a fractional interest, not a dual role; with no other
		// rule applicable the record surfaces as a failure for review.
		engine := NewEngine(nil)
		_, err := engine.Classify(Input{RawName: "SMITH JOHN 1/2 INT"})
		var classErr *ClassificationError
		require.ErrorAs(t, err, &classErr)
	})

	t.Run("qualifier anywhere wins over word-count rules", func(t *testing.T) {
		result := classifyName(t, "FIRST NATIONAL BANK OF BLOCK ISLAND INC")
		assert.Equal(t, "qualifier_entity", result.Rule)
		assert.Equal(t, models.EntityKindBusiness, result.Entity.Kind)
	})

	t.Run("institution names are kept verbatim", func(t *testing.T) {
		result := classifyName(t, "HARBOR POND REALTY CORP")
		name, ok := result.Entity.Name.(*models.BusinessName)
		require.True(t, ok)
		assert.Equal(t, "HARBOR POND REALTY CORP", name.Verbatim.Term)
	})

	t.Run("punctuated qualifier still hits", func(t *testing.T) {
		result := classifyName(t, "ACME L.L.C.")
		assert.Equal(t, models.EntityKindBusiness, result.Entity.Kind)
	})
}

func TestClassify_Failures(t *testing.T) {
	engine := NewEngine(nil)

	t.Run("empty name", func(t *testing.T) {
		_, err := engine.Classify(Input{RawName: "   "})
		var classErr *ClassificationError
		require.ErrorAs(t, err, &classErr)
		assert.Equal(t, "empty name", classErr.Reason)
	})

	t.Run("single plain word matches no rule", func(t *testing.T) {
		_, err := engine.Classify(Input{RawName: "SMITH"})
		var classErr *ClassificationError
		require.ErrorAs(t, err, &classErr)
		assert.Equal(t, "SMITH", classErr.RawName)
	})
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Every input fires at most one rule; re-running is deterministic.
	engine := NewEngine(nil)
	inputs := []string{
		"SMITH, JOHN",
		"SMITH, JOHN & MARY",
		"ACME LLC",
		"SMITH JOHN TRUST/TRUSTEE",
		"SMITH JOHN MARY ROBERT ANN",
	}
	for _, raw := range inputs {
		first, err := engine.Classify(Input{RawName: raw})
		require.NoError(t, err)
		second, err := engine.Classify(Input{RawName: raw})
		require.NoError(t, err)
		assert.Equal(t, first.Rule, second.Rule, "rule for %q", raw)
		assert.Equal(t, first.Entity.Kind, second.Entity.Kind, "kind for %q", raw)
	}
}

func TestClassify_CaseAndWhitespaceNormalized(t *testing.T) {
	result := classifyName(t, "  smith,   john  ")
	assert.Equal(t, models.EntityKindIndividual, result.Entity.Kind)
	name := individualName(t, result.Entity)
	assert.Equal(t, "JOHN", name.First.Term)
	assert.Equal(t, "SMITH", name.Last.Term)
}
