package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	return NewEngine(logger, nil, models.DefaultMatchConfig())
}

func individualEntity(id, first, last string) *models.Entity {
	return &models.Entity{
		ID:           id,
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		Kind:         models.EntityKindIndividual,
		Name: &models.IndividualName{
			First: models.NewAttributedValue(first, "assessor", 0, "owner_name"),
			Last:  models.NewAttributedValue(last, "assessor", 1, "owner_name"),
		},
	}
}

func householdEntity(id, composite string) *models.Entity {
	return &models.Entity{
		ID:           id,
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		Kind:         models.EntityKindHousehold,
		Name: &models.HouseholdName{
			Composite: models.NewAttributedValue(composite, "assessor", 0, "owner_name"),
		},
	}
}

func TestEngine_Score(t *testing.T) {
	engine := testEngine(t)

	t.Run("identical individuals score a perfect name component", func(t *testing.T) {
		score, components := engine.Score(
			individualEntity("a", "JOHN", "SMITH"),
			individualEntity("b", "JOHN", "SMITH"),
		)

		assert.Equal(t, 1.0, score)
		assert.Equal(t, 1.0, components["name"])
		assert.NotContains(t, components, "address")
	})

	t.Run("business qualifiers do not dilute the name score", func(t *testing.T) {
		score, _ := engine.Score(
			businessEntity("HARBOR POND LLC"),
			businessEntity("HARBOR POND INC"),
		)
		assert.Equal(t, 1.0, score)
	})

	t.Run("stripped legal constructs match individuals by name", func(t *testing.T) {
		legal := businessEntity("HARBOR POND TRUST")
		legal.Kind = models.EntityKindLegalConstruct
		individual := individualEntity("i", "HARBOR", "POND")

		score, components := engine.Score(legal, individual)
		assert.Equal(t, 1.0, components["name"])
		assert.Equal(t, 1.0, score)

		reversed, _ := engine.Score(individual, legal)
		assert.Equal(t, 1.0, reversed)
	})
}

func TestEngine_FindBestMatches(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t)

	t.Run("scores and selects per target kind", func(t *testing.T) {
		base := individualEntity("base", "JOHN", "SMITH")
		candidates := map[models.EntityKind][]*models.Entity{
			models.EntityKindIndividual: {
				individualEntity("exact", "JOHN", "SMITH"),
				individualEntity("near", "JON", "SMITH"),
				individualEntity("far", "ALICE", "JOHNSON"),
			},
		}

		result, err := engine.FindBestMatches(ctx, base, candidates)
		require.NoError(t, err)

		matches := result.MatchesByKind[models.EntityKindIndividual]
		require.Len(t, matches, 2)
		assert.Equal(t, "exact", matches[0].EntityID)
		assert.Equal(t, 1.0, matches[0].Score)
		assert.Equal(t, "near", matches[1].EntityID)
		assert.Equal(t, 2, result.TotalMatches)
	})

	t.Run("never matches an entity against itself", func(t *testing.T) {
		base := individualEntity("base", "JOHN", "SMITH")
		twin := individualEntity("base", "JOHN", "SMITH")

		result, err := engine.FindBestMatches(ctx, base, map[models.EntityKind][]*models.Entity{
			models.EntityKindIndividual: {twin},
		})
		require.NoError(t, err)

		assert.Zero(t, result.TotalMatches)
	})

	t.Run("excluded base skips individual and household pools", func(t *testing.T) {
		base := businessEntity("TOWN OF NEW SHOREHAM")
		base.ID = "town"

		result, err := engine.FindBestMatches(ctx, base, map[models.EntityKind][]*models.Entity{
			models.EntityKindIndividual: {individualEntity("i", "TOWN", "SHOREHAM")},
			models.EntityKindHousehold:  {householdEntity("h", "TOWN OF NEW SHOREHAM")},
		})
		require.NoError(t, err)

		assert.Zero(t, result.TotalMatches)
	})

	t.Run("excluded candidates never reach individual bases", func(t *testing.T) {
		base := individualEntity("base", "JOHN", "SMITH")
		excluded := businessEntity("TOWN OF NEW SHOREHAM")
		excluded.ID = "town"

		result, err := engine.FindBestMatches(ctx, base, map[models.EntityKind][]*models.Entity{
			models.EntityKindBusiness: {excluded},
		})
		require.NoError(t, err)

		assert.Zero(t, result.TotalMatches)
	})

	t.Run("excluded institutions still reconcile as businesses", func(t *testing.T) {
		base := businessEntity("TOWN OF NEW SHOREHAM")
		base.ID = "town-assessor"
		counterpart := businessEntity("TOWN OF NEW SHOREHAM")
		counterpart.ID = "town-donor"
		counterpart.SourceSystem = "donor"

		result, err := engine.FindBestMatches(ctx, base, map[models.EntityKind][]*models.Entity{
			models.EntityKindBusiness: {counterpart},
		})
		require.NoError(t, err)

		matches := result.MatchesByKind[models.EntityKindBusiness]
		require.Len(t, matches, 1)
		assert.Equal(t, "town-donor", matches[0].EntityID)
		assert.Equal(t, 1.0, matches[0].Score)
	})
}
