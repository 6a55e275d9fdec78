package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityJSON_NameVariantDispatch(t *testing.T) {
	t.Run("individual name restores its concrete type", func(t *testing.T) {
		entity := &Entity{
			ID:       "e-1",
			TenantID: "tenant-1",
			Kind:     EntityKindIndividual,
			Name: &IndividualName{
				First: NewAttributedValue("JOHN", "assessor", 0, "owner_name"),
				Last:  NewAttributedValue("SMITH", "assessor", 1, "owner_name"),
			},
		}

		data, err := json.Marshal(entity)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"name_variant":"individual"`)

		var restored Entity
		require.NoError(t, json.Unmarshal(data, &restored))

		name, ok := restored.Name.(*IndividualName)
		require.True(t, ok)
		assert.Equal(t, "JOHN", name.First.Term)
		assert.Equal(t, "SMITH", name.Last.Term)
	})

	t.Run("household members keep their own names", func(t *testing.T) {
		entity := &Entity{
			Kind: EntityKindHousehold,
			Name: &HouseholdName{Composite: NewAttributedValue("SMITH JOHN & MARY", "assessor", 0, "owner_name")},
			Members: []*Entity{
				{
					Kind: EntityKindIndividual,
					Name: &IndividualName{
						First: NewAttributedValue("MARY", "assessor", 0, "owner_name"),
						Last:  NewAttributedValue("SMITH", "assessor", 1, "owner_name"),
					},
				},
			},
		}

		data, err := json.Marshal(entity)
		require.NoError(t, err)

		var restored Entity
		require.NoError(t, json.Unmarshal(data, &restored))

		_, ok := restored.Name.(*HouseholdName)
		require.True(t, ok)
		require.Len(t, restored.Members, 1)
		member, ok := restored.Members[0].Name.(*IndividualName)
		require.True(t, ok)
		assert.Equal(t, "MARY", member.First.Term)
	})

	t.Run("unknown variant is an error", func(t *testing.T) {
		var entity Entity
		err := json.Unmarshal([]byte(`{"kind":"business","name_variant":"corporate","name":{}}`), &entity)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown name variant")
	})

	t.Run("nameless entity round trips", func(t *testing.T) {
		data, err := json.Marshal(&Entity{ID: "e-2", Kind: EntityKindBusiness})
		require.NoError(t, err)

		var restored Entity
		require.NoError(t, json.Unmarshal(data, &restored))
		assert.Nil(t, restored.Name)
		assert.Equal(t, "e-2", restored.ID)
	})
}

func TestNameComparisons(t *testing.T) {
	t.Run("same variant uses component weights", func(t *testing.T) {
		a := &IndividualName{
			First: NewAttributedValue("JOHN", "assessor", 0, "owner_name"),
			Last:  NewAttributedValue("SMITH", "assessor", 1, "owner_name"),
		}
		b := &IndividualName{
			First: NewAttributedValue("JOHN", "donor", 0, "name"),
			Last:  NewAttributedValue("SMITH", "donor", 1, "name"),
		}
		assert.Equal(t, 1.0, a.CompareTo(b))
	})

	t.Run("cross variant degrades to rendered terms", func(t *testing.T) {
		individual := &IndividualName{
			Complete: NewAttributedValue("JOHN SMITH", "assessor", 0, "owner_name"),
		}
		household := &HouseholdName{
			Composite: NewAttributedValue("JOHN SMITH", "assessor", 0, "owner_name"),
		}
		assert.Equal(t, 1.0, individual.CompareTo(household))
		assert.Equal(t, 1.0, household.CompareTo(individual))
	})

	t.Run("absent components never penalize", func(t *testing.T) {
		withMiddle := &IndividualName{
			First:  NewAttributedValue("JOHN", "assessor", 0, "owner_name"),
			Middle: NewAttributedValue("A", "assessor", 1, "owner_name"),
			Last:   NewAttributedValue("SMITH", "assessor", 2, "owner_name"),
		}
		without := &IndividualName{
			First: NewAttributedValue("JOHN", "donor", 0, "name"),
			Last:  NewAttributedValue("SMITH", "donor", 1, "name"),
		}
		assert.Equal(t, 1.0, withMiddle.CompareTo(without))
	})
}
