package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/fern/pkg/models"
)

func businessEntity(name string) *models.Entity {
	return &models.Entity{
		Kind: models.EntityKindBusiness,
		Name: &models.BusinessName{Verbatim: models.NewAttributedValue(name, "assessor", 0, "owner_name")},
	}
}

func TestBusinessFilter_IsExcluded(t *testing.T) {
	filter := NewBusinessFilter()

	t.Run("institutional owners are excluded", func(t *testing.T) {
		assert.True(t, filter.IsExcluded(businessEntity("TOWN OF NEW SHOREHAM")))
		assert.True(t, filter.IsExcluded(businessEntity("Town of New Shoreham")))
	})

	t.Run("ordinary businesses are not", func(t *testing.T) {
		assert.False(t, filter.IsExcluded(businessEntity("HARBOR POND LLC")))
	})

	t.Run("a name made entirely of noise terms is excluded", func(t *testing.T) {
		assert.True(t, filter.IsExcluded(businessEntity("REALTY TRUST")))
	})

	t.Run("nil name", func(t *testing.T) {
		assert.False(t, filter.IsExcluded(&models.Entity{Kind: models.EntityKindBusiness}))
		assert.False(t, filter.IsExcluded(nil))
	})
}

func TestBusinessFilter_StripBusinessTerms(t *testing.T) {
	filter := NewBusinessFilter()

	t.Run("strips trailing qualifier", func(t *testing.T) {
		stripped, changed := filter.StripBusinessTerms("HARBOR POND LLC")
		assert.Equal(t, "HARBOR POND", stripped)
		assert.True(t, changed)
	})

	t.Run("punctuated qualifier still strips", func(t *testing.T) {
		stripped, changed := filter.StripBusinessTerms("HARBOR POND L.L.C.")
		assert.Equal(t, "HARBOR POND", stripped)
		assert.True(t, changed)
	})

	t.Run("no noise terms is a no-op", func(t *testing.T) {
		stripped, changed := filter.StripBusinessTerms("CORN NECK FARM")
		assert.Equal(t, "CORN NECK FARM", stripped)
		assert.False(t, changed)
	})
}

func TestBusinessFilter_ComparableName(t *testing.T) {
	filter := NewBusinessFilter()

	t.Run("business names are compared stripped", func(t *testing.T) {
		assert.Equal(t, "HARBOR POND", filter.ComparableName(businessEntity("HARBOR POND LLC")))
	})

	t.Run("legal constructs are stripped too", func(t *testing.T) {
		entity := businessEntity("SMITH FAMILY TRUST")
		entity.Kind = models.EntityKindLegalConstruct
		assert.Equal(t, "SMITH FAMILY", filter.ComparableName(entity))
	})

	t.Run("a name that strips to nothing is compared whole", func(t *testing.T) {
		assert.Equal(t, "REALTY TRUST", filter.ComparableName(businessEntity("REALTY TRUST")))
	})

	t.Run("individuals pass through untouched", func(t *testing.T) {
		entity := &models.Entity{
			Kind: models.EntityKindIndividual,
			Name: &models.IndividualName{
				Complete: models.NewAttributedValue("JOHN TRUST", "assessor", 0, "owner_name"),
			},
		}
		assert.Equal(t, "JOHN TRUST", filter.ComparableName(entity))
	})
}

func TestBusinessFilter_TenantLists(t *testing.T) {
	filter := NewBusinessFilterWith([]string{"ACME"}, []string{"GROUP"})

	assert.True(t, filter.IsExcluded(businessEntity("ACME")))
	assert.False(t, filter.IsExcluded(businessEntity("TOWN OF NEW SHOREHAM")))

	stripped, changed := filter.StripBusinessTerms("HARBOR GROUP")
	assert.Equal(t, "HARBOR", stripped)
	assert.True(t, changed)

	stripped, changed = filter.StripBusinessTerms("HARBOR POND LLC")
	assert.Equal(t, "HARBOR POND LLC", stripped)
	assert.False(t, changed)
}
