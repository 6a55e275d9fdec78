package streets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/models"
)

func seedEntries() []*models.StreetEntry {
	return []*models.StreetEntry{
		{
			ID:      "street-corn-neck",
			Primary: "CORN NECK",
			Homonyms: []models.StreetAlias{
				{Term: "CORNE NECK", Source: models.AliasSourceBulkImport},
			},
			Synonyms: []models.StreetAlias{
				{Term: "OLD MILL RD", Source: models.AliasSourceBulkImport},
			},
		},
		{
			ID:      "street-ocean",
			Primary: "OCEAN",
			Candidates: []models.StreetAlias{
				{Term: "OCEAN VIEW", Source: models.AliasSourceBulkImport},
			},
		},
	}
}

func TestStore_Load(t *testing.T) {
	t.Run("indexes every term across categories", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		ix := store.Snapshot()
		assert.Equal(t, 2, ix.Len())

		for _, term := range []string{"CORN NECK", "CORNE NECK", "OLD MILL RD", "OCEAN", "OCEAN VIEW"} {
			entry, ok := ix.Lookup(term)
			require.True(t, ok, "term %q", term)
			require.NotNil(t, entry)
		}
	})

	t.Run("rejects duplicate terms across entries", func(t *testing.T) {
		store := NewStore(nil)
		entries := seedEntries()
		entries[1].Candidates = append(entries[1].Candidates, models.StreetAlias{Term: "CORN NECK"})

		err := store.Load(entries)
		var dup *DuplicateTermError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "CORN NECK", dup.Term)
	})

	t.Run("entries are ordered by primary term", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		entries := store.Snapshot().Entries()
		require.Len(t, entries, 2)
		assert.Equal(t, "CORN NECK", entries[0].Primary)
		assert.Equal(t, "OCEAN", entries[1].Primary)
	})
}

func TestStore_CreateStreet(t *testing.T) {
	t.Run("creates with manual edit provenance", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		entry, err := store.CreateStreet("  beach ave ")
		require.NoError(t, err)
		assert.Equal(t, "BEACH AVE", entry.Primary)
		assert.Equal(t, models.AliasSourceManualEdit, entry.Source)
		assert.NotEmpty(t, entry.ID)

		found, ok := store.Snapshot().Lookup("BEACH AVE")
		require.True(t, ok)
		assert.Equal(t, entry.ID, found.ID)
	})

	t.Run("rejects existing term", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		_, err := store.CreateStreet("corn neck")
		var dup *DuplicateTermError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "street-corn-neck", dup.StreetID)
	})

	t.Run("rejects empty term", func(t *testing.T) {
		store := NewStore(nil)
		_, err := store.CreateStreet("   ")
		assert.Error(t, err)
	})
}

func TestStore_AddAlias(t *testing.T) {
	t.Run("appends to the right category", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		entry, err := store.AddAlias("street-ocean", "oceanview", models.AliasCategoryCandidate)
		require.NoError(t, err)
		require.Len(t, entry.Candidates, 2)
		assert.Equal(t, "OCEANVIEW", entry.Candidates[1].Term)
		assert.Equal(t, models.AliasSourceManualEdit, entry.Candidates[1].Source)
	})

	t.Run("rejects term already mapped to another street", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		_, err := store.AddAlias("street-ocean", "CORN NECK", models.AliasCategoryHomonym)
		var dup *DuplicateTermError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "street-corn-neck", dup.StreetID)
	})

	t.Run("rejects term already mapped to the same street", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		_, err := store.AddAlias("street-ocean", "OCEAN", models.AliasCategorySynonym)
		var dup *DuplicateTermError
		require.ErrorAs(t, err, &dup)
	})

	t.Run("rejects unknown street", func(t *testing.T) {
		store := NewStore(nil)
		_, err := store.AddAlias("no-such", "TERM", models.AliasCategoryHomonym)
		assert.Error(t, err)
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))
		_, err := store.AddAlias("street-ocean", "NEW TERM", models.AliasCategory("bogus"))
		assert.Error(t, err)
	})
}

func TestStore_RemoveStreet(t *testing.T) {
	t.Run("drops the entry and every indexed term", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		store.RemoveStreet("street-corn-neck")

		ix := store.Snapshot()
		assert.Equal(t, 1, ix.Len())
		for _, term := range []string{"CORN NECK", "CORNE NECK", "OLD MILL RD"} {
			_, ok := ix.Lookup(term)
			assert.False(t, ok, "term %q", term)
		}

		// A removed term is free for reuse.
		_, err := store.CreateStreet("CORN NECK")
		assert.NoError(t, err)
	})

	t.Run("unknown street is a no-op", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))
		version := store.Snapshot().Version()

		store.RemoveStreet("no-such")
		assert.Equal(t, version, store.Snapshot().Version())
	})
}

func TestStore_RemoveAlias(t *testing.T) {
	t.Run("drops one alias term", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		store.RemoveAlias("street-ocean", "OCEAN VIEW")

		ix := store.Snapshot()
		_, ok := ix.Lookup("OCEAN VIEW")
		assert.False(t, ok)
		entry, _ := ix.Get("street-ocean")
		assert.Empty(t, entry.Candidates)

		// The street itself and its primary term survive.
		_, ok = ix.Lookup("OCEAN")
		assert.True(t, ok)

		// A removed term is free for reuse.
		_, err := store.AddAlias("street-ocean", "OCEAN VIEW", models.AliasCategoryCandidate)
		assert.NoError(t, err)
	})

	t.Run("primary terms cannot be removed", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		store.RemoveAlias("street-ocean", "OCEAN")

		_, ok := store.Snapshot().Lookup("OCEAN")
		assert.True(t, ok)
	})

	t.Run("term mapped to another street is a no-op", func(t *testing.T) {
		store := NewStore(nil)
		require.NoError(t, store.Load(seedEntries()))

		store.RemoveAlias("street-ocean", "CORNE NECK")

		_, ok := store.Snapshot().Lookup("CORNE NECK")
		assert.True(t, ok)
	})
}

func TestStore_SnapshotIsolation(t *testing.T) {
	store := NewStore(nil)
	require.NoError(t, store.Load(seedEntries()))

	before := store.Snapshot()
	beforeVersion := before.Version()

	_, err := store.AddAlias("street-ocean", "NEW TERM", models.AliasCategoryHomonym)
	require.NoError(t, err)

	// The old snapshot is untouched; readers mid-pass see a stable view.
	_, ok := before.Lookup("NEW TERM")
	assert.False(t, ok)
	assert.Equal(t, beforeVersion, before.Version())

	after := store.Snapshot()
	_, ok = after.Lookup("NEW TERM")
	assert.True(t, ok)
	assert.Greater(t, after.Version(), beforeVersion)

	// Entry structs are cloned, not mutated in place.
	beforeEntry, _ := before.Get("street-ocean")
	afterEntry, _ := after.Get("street-ocean")
	assert.Len(t, beforeEntry.Homonyms, 0)
	assert.Len(t, afterEntry.Homonyms, 1)
}
