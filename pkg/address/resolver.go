package address

import (
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/comparison"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// AliasScores holds one address's similarity against a canonical street
// entry, scored per alias category. A category with no terms scores -1
// so callers can tell "no data" from "scored zero".
type AliasScores struct {
	StreetID  string  `json:"street_id"`
	Primary   float64 `json:"primary"`
	Homonym   float64 `json:"homonym"`
	Synonym   float64 `json:"synonym"`
	Candidate float64 `json:"candidate"`
}

// MatchScore returns the score used for alias resolution. Synonyms are
// known-equivalent names rather than spelling variants, so they resolve
// an address but never contribute to its similarity score.
func (s AliasScores) MatchScore() float64 {
	best := s.Primary
	if s.Homonym > best {
		best = s.Homonym
	}
	if s.Candidate > best {
		best = s.Candidate
	}
	return best
}

// Method returns the alias category that produced MatchScore.
func (s AliasScores) Method() models.AliasMethod {
	best, method := s.Primary, models.AliasMethodPrimary
	if s.Homonym > best {
		best, method = s.Homonym, models.AliasMethodHomonym
	}
	if s.Candidate > best {
		method = models.AliasMethodCandidate
	}
	return method
}

// Resolver matches parsed street names against the canonical street
// database.
type Resolver struct {
	logger ectologger.Logger

	// MinScore is the similarity floor below which a street is treated as
	// out-of-area.
	MinScore float64
}

// NewResolver creates a resolver with the default similarity floor.
func NewResolver(logger ectologger.Logger) *Resolver {
	return &Resolver{logger: logger, MinScore: 0.88}
}

// Resolve scores an address's street name against the canonical street
// database and marks the address local when a street clears the floor.
// The winning entry and its per-category scores are returned for audit;
// both are nil/zero when the address has no street name or nothing in
// the database comes close.
func (r *Resolver) Resolve(addr *models.Address, index IndexReader) (*models.StreetEntry, AliasScores) {
	if addr == nil || addr.StreetName == nil {
		return nil, AliasScores{Primary: -1, Homonym: -1, Synonym: -1, Candidate: -1}
	}

	term := normalizers.NormalizeTerm(addr.StreetName.Term)

	// Exact variation hits short-circuit the scan. Synonym hits resolve
	// the address without a similarity score.
	if entry, ok := index.Lookup(term); ok {
		scores := r.score(term, entry)
		addr.IsLocal = true
		addr.AliasMethod = exactMethod(term, entry)
		metrics.RecordStreetResolution(string(addr.AliasMethod))
		if addr.AliasMethod == models.AliasMethodSynonym {
			addr.StreetName = models.NewAttributedValue(entry.Primary, addr.StreetName.Source, addr.StreetName.Position, addr.StreetName.Field)
		}
		return entry, scores
	}

	var (
		best      *models.StreetEntry
		bestScore AliasScores
	)
	for _, entry := range index.Entries() {
		scores := r.score(term, entry)
		if best == nil || scores.MatchScore() > bestScore.MatchScore() {
			best, bestScore = entry, scores
		}
	}

	if best == nil || bestScore.MatchScore() < r.MinScore {
		addr.IsLocal = false
		addr.AliasMethod = models.AliasMethodNone
		metrics.RecordStreetResolution("none")
		return nil, AliasScores{Primary: -1, Homonym: -1, Synonym: -1, Candidate: -1}
	}

	addr.IsLocal = true
	addr.AliasMethod = bestScore.Method()
	metrics.RecordStreetResolution(string(addr.AliasMethod))
	if r.logger != nil {
		r.logger.WithFields(map[string]any{
			"street_name":  term,
			"resolved_to":  best.Primary,
			"alias_method": addr.AliasMethod,
			"score":        bestScore.MatchScore(),
		}).Debug("Resolved street alias")
	}
	return best, bestScore
}

// score compares a normalized street term against every alias category
// of one entry, keeping the best score per category. Street names are
// scored with Jaro-Winkler; its prefix boost tolerates the truncated
// and miskeyed tails assessor data is full of.
func (r *Resolver) score(term string, entry *models.StreetEntry) AliasScores {
	scores := AliasScores{
		StreetID:  entry.ID,
		Primary:   comparison.JaroWinkler(term, entry.Primary),
		Homonym:   -1,
		Synonym:   -1,
		Candidate: -1,
	}
	scores.Homonym = categoryScore(term, entry.Homonyms)
	scores.Synonym = categoryScore(term, entry.Synonyms)
	scores.Candidate = categoryScore(term, entry.Candidates)
	return scores
}

func categoryScore(term string, aliases []models.StreetAlias) float64 {
	if len(aliases) == 0 {
		return -1
	}
	best := 0.0
	for _, alias := range aliases {
		if s := comparison.JaroWinkler(term, alias.Term); s > best {
			best = s
		}
	}
	return best
}

func exactMethod(term string, entry *models.StreetEntry) models.AliasMethod {
	if term == entry.Primary {
		return models.AliasMethodPrimary
	}
	for method, aliases := range map[models.AliasMethod][]models.StreetAlias{
		models.AliasMethodHomonym:   entry.Homonyms,
		models.AliasMethodSynonym:   entry.Synonyms,
		models.AliasMethodCandidate: entry.Candidates,
	} {
		for _, alias := range aliases {
			if alias.Term == term {
				return method
			}
		}
	}
	return models.AliasMethodPrimary
}

// IndexReader is the snapshot surface the resolver needs; satisfied by
// *streets.Index.
type IndexReader interface {
	Lookup(term string) (*models.StreetEntry, bool)
	Entries() []*models.StreetEntry
}
