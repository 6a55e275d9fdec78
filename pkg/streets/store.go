// Package streets maintains the canonical street database: one entry per
// real-world street with homonym, synonym, and candidate alias sets, and
// a variation index mapping each normalized term to at most one entry.
//
// Reads go through immutable snapshots; curator edits build a new
// snapshot and swap it in, so an in-flight match pass never observes a
// partial edit.
package streets

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// DuplicateTermError reports an alias or street term whose normalized
// form already maps to a canonical entry. The caller decides whether to
// treat it as a no-op or surface it to a curator.
type DuplicateTermError struct {
	Term     string
	StreetID string
}

func (e *DuplicateTermError) Error() string {
	return fmt.Sprintf("term %q already maps to street %s", e.Term, e.StreetID)
}

// Index is an immutable snapshot of the canonical street database.
type Index struct {
	entries    map[string]*models.StreetEntry
	variations map[string]string // normalized term -> street ID
	ordered    []string          // street IDs sorted by primary term
	version    int64
}

// Version returns the snapshot's monotonically increasing version.
func (ix *Index) Version() int64 { return ix.version }

// Len returns the number of canonical streets.
func (ix *Index) Len() int { return len(ix.entries) }

// Lookup finds the entry a normalized term maps to, if any.
func (ix *Index) Lookup(term string) (*models.StreetEntry, bool) {
	id, ok := ix.variations[normalizers.NormalizeTerm(term)]
	if !ok {
		return nil, false
	}
	return ix.entries[id], true
}

// Get returns an entry by ID.
func (ix *Index) Get(id string) (*models.StreetEntry, bool) {
	e, ok := ix.entries[id]
	return e, ok
}

// Entries iterates the canonical streets in primary-term order so scans
// are deterministic.
func (ix *Index) Entries() []*models.StreetEntry {
	out := make([]*models.StreetEntry, 0, len(ix.ordered))
	for _, id := range ix.ordered {
		out = append(out, ix.entries[id])
	}
	return out
}

// Store owns the mutable canonical street database. All edits are
// serialized; readers take Snapshot once per pass and never block.
type Store struct {
	logger  ectologger.Logger
	mu      sync.Mutex
	current atomic.Pointer[Index]
}

// NewStore creates an empty store.
func NewStore(logger ectologger.Logger) *Store {
	s := &Store{logger: logger}
	s.current.Store(&Index{
		entries:    map[string]*models.StreetEntry{},
		variations: map[string]string{},
	})
	return s
}

// Snapshot returns the current immutable index.
func (s *Store) Snapshot() *Index {
	return s.current.Load()
}

// Load replaces the database with a bulk-imported entry set, e.g. from
// the street repository at startup. Duplicate normalized terms across
// entries are rejected.
func (s *Store) Load(entries []*models.StreetEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ix := &Index{
		entries:    make(map[string]*models.StreetEntry, len(entries)),
		variations: map[string]string{},
		version:    s.current.Load().version + 1,
	}

	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.New().String()
		}
		ix.entries[entry.ID] = entry
		if err := indexEntryTerms(ix, entry); err != nil {
			return err
		}
	}

	rebuildOrder(ix)
	s.current.Store(ix)

	if s.logger != nil {
		s.logger.WithFields(map[string]any{
			"street_count": len(ix.entries),
			"term_count":   len(ix.variations),
		}).Info("Loaded canonical street database")
	}
	return nil
}

// CreateStreet creates a new canonical street from a curator-entered
// primary term. The entry is tagged with the manual-edit source so bulk
// re-ingestion can distinguish curator input. Rejects terms that already
// map to an entry.
func (s *Store) CreateStreet(term string) (*models.StreetEntry, error) {
	normalized := normalizers.NormalizeTerm(term)
	if normalized == "" {
		return nil, fmt.Errorf("street term is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	if id, ok := old.variations[normalized]; ok {
		return nil, &DuplicateTermError{Term: normalized, StreetID: id}
	}

	now := time.Now().UTC()
	entry := &models.StreetEntry{
		ID:        uuid.New().String(),
		Primary:   normalized,
		Source:    models.AliasSourceManualEdit,
		CreatedAt: now,
		UpdatedAt: now,
	}

	ix := clone(old)
	ix.entries[entry.ID] = entry
	ix.variations[normalized] = entry.ID
	rebuildOrder(ix)
	s.current.Store(ix)

	return entry, nil
}

// AddAlias appends a curator-entered alias term to a street under the
// given category, tagged with the manual-edit source. Rejects terms that
// already map to any entry, including this one.
func (s *Store) AddAlias(streetID, term string, category models.AliasCategory) (*models.StreetEntry, error) {
	normalized := normalizers.NormalizeTerm(term)
	if normalized == "" {
		return nil, fmt.Errorf("alias term is empty")
	}

	switch category {
	case models.AliasCategoryHomonym, models.AliasCategorySynonym, models.AliasCategoryCandidate:
	default:
		return nil, fmt.Errorf("unknown alias category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	entry, ok := old.entries[streetID]
	if !ok {
		return nil, fmt.Errorf("street %s not found", streetID)
	}
	if id, ok := old.variations[normalized]; ok {
		return nil, &DuplicateTermError{Term: normalized, StreetID: id}
	}

	updated := cloneEntry(entry)
	alias := models.StreetAlias{Term: normalized, Source: models.AliasSourceManualEdit}
	switch category {
	case models.AliasCategoryHomonym:
		updated.Homonyms = append(updated.Homonyms, alias)
	case models.AliasCategorySynonym:
		updated.Synonyms = append(updated.Synonyms, alias)
	case models.AliasCategoryCandidate:
		updated.Candidates = append(updated.Candidates, alias)
	}
	updated.UpdatedAt = time.Now().UTC()

	ix := clone(old)
	ix.entries[streetID] = updated
	ix.variations[normalized] = streetID
	s.current.Store(ix)

	return updated, nil
}

// RemoveStreet drops a street and every term it indexes. Used to roll
// back a curator edit whose persistence failed.
func (s *Store) RemoveStreet(streetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	if _, ok := old.entries[streetID]; !ok {
		return
	}

	ix := clone(old)
	delete(ix.entries, streetID)
	for term, id := range ix.variations {
		if id == streetID {
			delete(ix.variations, term)
		}
	}
	rebuildOrder(ix)
	s.current.Store(ix)
}

// RemoveAlias drops one alias term from a street, whichever category it
// sits in. Primary terms cannot be removed this way.
func (s *Store) RemoveAlias(streetID, term string) {
	normalized := normalizers.NormalizeTerm(term)

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.current.Load()
	entry, ok := old.entries[streetID]
	if !ok || old.variations[normalized] != streetID || normalized == entry.Primary {
		return
	}

	updated := cloneEntry(entry)
	filter := func(aliases []models.StreetAlias) []models.StreetAlias {
		out := aliases[:0]
		for _, a := range aliases {
			if a.Term != normalized {
				out = append(out, a)
			}
		}
		return out
	}
	updated.Homonyms = filter(updated.Homonyms)
	updated.Synonyms = filter(updated.Synonyms)
	updated.Candidates = filter(updated.Candidates)
	updated.UpdatedAt = time.Now().UTC()

	ix := clone(old)
	ix.entries[streetID] = updated
	delete(ix.variations, normalized)
	s.current.Store(ix)
}

func indexEntryTerms(ix *Index, entry *models.StreetEntry) error {
	add := func(term string) error {
		normalized := normalizers.NormalizeTerm(term)
		if normalized == "" {
			return nil
		}
		if id, ok := ix.variations[normalized]; ok && id != entry.ID {
			return &DuplicateTermError{Term: normalized, StreetID: id}
		}
		ix.variations[normalized] = entry.ID
		return nil
	}

	if err := add(entry.Primary); err != nil {
		return err
	}
	for _, category := range []models.AliasCategory{models.AliasCategoryHomonym, models.AliasCategorySynonym, models.AliasCategoryCandidate} {
		for _, alias := range entry.Aliases(category) {
			if err := add(alias.Term); err != nil {
				return err
			}
		}
	}
	return nil
}

func clone(old *Index) *Index {
	ix := &Index{
		entries:    make(map[string]*models.StreetEntry, len(old.entries)+1),
		variations: make(map[string]string, len(old.variations)+1),
		ordered:    old.ordered,
		version:    old.version + 1,
	}
	for id, e := range old.entries {
		ix.entries[id] = e
	}
	for term, id := range old.variations {
		ix.variations[term] = id
	}
	return ix
}

func cloneEntry(entry *models.StreetEntry) *models.StreetEntry {
	out := *entry
	out.Homonyms = append([]models.StreetAlias(nil), entry.Homonyms...)
	out.Synonyms = append([]models.StreetAlias(nil), entry.Synonyms...)
	out.Candidates = append([]models.StreetAlias(nil), entry.Candidates...)
	return &out
}

func rebuildOrder(ix *Index) {
	ids := make([]string, 0, len(ix.entries))
	for id := range ix.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ix.entries[ids[i]].Primary < ix.entries[ids[j]].Primary
	})
	ix.ordered = ids
}
