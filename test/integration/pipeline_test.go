package integration

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/address"
	"github.com/Ramsey-B/fern/pkg/classify"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/streets"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

// classifyRecord runs one raw record through classification and address
// resolution, the same path the Kafka processor drives.
func classifyRecord(t *testing.T, engine *classify.Engine, resolver *address.Resolver, index address.IndexReader, locationID, ownerName, rawAddress string) *models.Entity {
	t.Helper()

	result, err := engine.Classify(classify.Input{
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		LocationID:   locationID,
		RawName:      ownerName,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Entity)

	if rawAddress != "" {
		addr := address.Parse(rawAddress, "assessor")
		resolver.Resolve(addr, index)
		result.Entity.Address = addr
	}
	result.Entity.ID = locationID
	return result.Entity
}

// TestPipeline_ClassifyResolveMatch drives the full in-memory pipeline:
// raw owner records are classified, their addresses parsed and resolved
// against the street database, and the resulting entities matched across
// sources.
func TestPipeline_ClassifyResolveMatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline test in short mode")
	}

	store := streets.NewStore(testLogger())
	require.NoError(t, store.Load([]*models.StreetEntry{
		{
			ID:      "street-corn-neck",
			Primary: "CORN NECK",
			Homonyms: []models.StreetAlias{
				{Term: "CORNE NECK", Source: models.AliasSourceBulkImport},
			},
		},
		{ID: "street-ocean", Primary: "OCEAN"},
	}))
	index := store.Snapshot()

	classifier := classify.NewEngine(testLogger())
	resolver := address.NewResolver(testLogger())
	engine := matching.NewEngine(testLogger(), nil, models.DefaultMatchConfig())

	// Assessor side: one parcel owner with a misspelled street.
	base := classifyRecord(t, classifier, resolver, index,
		"plat-12-lot-4", "SMITH, JOHN A", "123 CORNE NECK RD NEW SHOREHAM RI 02807")

	require.Equal(t, models.EntityKindIndividual, base.Kind)
	name, ok := base.Name.(*models.IndividualName)
	require.True(t, ok)
	assert.Equal(t, "JOHN", name.First.Term)
	assert.Equal(t, "SMITH", name.Last.Term)

	require.NotNil(t, base.Address)
	assert.True(t, base.Address.IsLocal)
	assert.Equal(t, models.AliasMethodHomonym, base.Address.AliasMethod)

	// Donor side: the same person under a different rendering, a close
	// variant, and an unrelated record.
	exact := classifyRecord(t, classifier, resolver, index,
		"donor-1", "JOHN A SMITH", "123 CORN NECK RD NEW SHOREHAM RI 02807")
	variant := classifyRecord(t, classifier, resolver, index,
		"donor-2", "JON SMITH", "")
	unrelated := classifyRecord(t, classifier, resolver, index,
		"donor-3", "ALICE JOHNSON", "9 OCEAN AVE")

	result, err := engine.FindBestMatches(context.Background(), base, map[models.EntityKind][]*models.Entity{
		models.EntityKindIndividual: {exact, variant, unrelated},
	})
	require.NoError(t, err)

	matches := result.MatchesByKind[models.EntityKindIndividual]
	require.NotEmpty(t, matches)
	assert.Equal(t, "donor-1", matches[0].EntityID)
	assert.Greater(t, matches[0].Score, 0.9)
	for _, m := range matches {
		assert.NotEqual(t, "donor-3", m.EntityID)
	}
}

// TestPipeline_ExcludedOwnerScoping covers the institutional exclusion
// path end to end: excluded owners sit out individual-type matching but
// still reconcile against their cross-source business counterpart.
func TestPipeline_ExcludedOwnerScoping(t *testing.T) {
	classifier := classify.NewEngine(testLogger())
	engine := matching.NewEngine(testLogger(), nil, models.DefaultMatchConfig())

	town, err := classifier.Classify(classify.Input{
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		LocationID:   "plat-1-lot-1",
		RawName:      "TOWN OF NEW SHOREHAM",
	})
	require.NoError(t, err)
	town.Entity.ID = "plat-1-lot-1"

	other, err := classifier.Classify(classify.Input{
		TenantID:     "tenant-1",
		SourceSystem: "donor",
		LocationID:   "donor-9",
		RawName:      "TOWN OF NEW SHOREHAM",
	})
	require.NoError(t, err)
	other.Entity.ID = "donor-9"

	person, err := classifier.Classify(classify.Input{
		TenantID:     "tenant-1",
		SourceSystem: "donor",
		LocationID:   "donor-10",
		RawName:      "SHOREHAM, TOWN",
	})
	require.NoError(t, err)
	person.Entity.ID = "donor-10"

	result, err := engine.FindBestMatches(context.Background(), town.Entity, map[models.EntityKind][]*models.Entity{
		other.Entity.Kind:           {other.Entity},
		models.EntityKindIndividual: {person.Entity},
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.TotalMatches)
	assert.Empty(t, result.MatchesByKind[models.EntityKindIndividual])

	matches := result.MatchesByKind[other.Entity.Kind]
	require.Len(t, matches, 1)
	assert.Equal(t, "donor-9", matches[0].EntityID)
}

// TestPipeline_UnclassifiableRecord confirms a cascade miss is reported,
// not fatal.
func TestPipeline_UnclassifiableRecord(t *testing.T) {
	classifier := classify.NewEngine(testLogger())

	_, err := classifier.Classify(classify.Input{
		TenantID:     "tenant-1",
		SourceSystem: "assessor",
		LocationID:   "plat-3-lot-7",
		RawName:      "SMITH JOHN 1/2 INT",
	})

	var classErr *classify.ClassificationError
	require.ErrorAs(t, err, &classErr)
	assert.Equal(t, "SMITH JOHN 1/2 INT", classErr.RawName)
}
