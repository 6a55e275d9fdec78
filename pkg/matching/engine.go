// Package matching scores classified entities against candidate pools
// and selects the best cross-source matches for review.
package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/comparison"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// pairWeights tunes component importance per kind pairing. Households
// share surnames across many unrelated families, so address carries more
// weight there; individual pairs lean on the structured name.
var pairWeights = map[models.KindPair]map[string]float64{
	{Source: models.EntityKindIndividual, Target: models.EntityKindIndividual}: {
		"name": 2.5, "address": 1.0, "account": 1.0,
	},
	{Source: models.EntityKindIndividual, Target: models.EntityKindHousehold}: {
		"name": 1.5, "address": 1.5, "account": 0.5,
	},
	{Source: models.EntityKindHousehold, Target: models.EntityKindIndividual}: {
		"name": 1.5, "address": 1.5, "account": 0.5,
	},
	{Source: models.EntityKindHousehold, Target: models.EntityKindHousehold}: {
		"name": 1.5, "address": 2.0, "account": 0.5,
	},
	{Source: models.EntityKindBusiness, Target: models.EntityKindBusiness}: {
		"name": 2.0, "address": 1.5, "account": 0.75,
	},
}

var defaultWeights = map[string]float64{
	"name": 2.0, "address": 1.0, "account": 0.75,
}

func weightsFor(source, target models.EntityKind) map[string]float64 {
	if w, ok := pairWeights[models.KindPair{Source: source, Target: target}]; ok {
		return w
	}
	return defaultWeights
}

// Engine scores one base entity against candidate pools and applies the
// adaptive selection policy.
type Engine struct {
	logger ectologger.Logger
	filter *BusinessFilter
	config models.MatchConfig
}

// NewEngine creates a match engine.
func NewEngine(logger ectologger.Logger, filter *BusinessFilter, config models.MatchConfig) *Engine {
	if filter == nil {
		filter = NewBusinessFilter()
	}
	return &Engine{logger: logger, filter: filter, config: config}
}

// comparand adapts an entity for pair scoring, overriding the name
// component with its business-stripped form where that applies.
type comparand struct {
	entity *models.Entity
	name   comparison.Comparable
}

func (c comparand) Component(name string) comparison.Comparable {
	if name == "name" {
		return c.name
	}
	return c.entity.Component(name)
}

func (e *Engine) comparand(entity *models.Entity) comparand {
	c := comparand{entity: entity}
	switch entity.Kind {
	case models.EntityKindBusiness, models.EntityKindLegalConstruct:
		if stripped := e.filter.ComparableName(entity); stripped != "" {
			// Wrapped as a Name so the stripped term compares against
			// individual and household names, not just other terms.
			c.name = &models.BusinessName{
				Verbatim: models.NewAttributedValue(stripped, entity.SourceSystem, 0, "owner_name"),
			}
			return c
		}
	}
	c.name = entity.Component("name")
	return c
}

// Score computes the weighted similarity between two entities along with
// the per-component breakdown.
func (e *Engine) Score(base, candidate *models.Entity) (float64, map[string]float64) {
	weights := weightsFor(base.Kind, candidate.Kind)
	return comparison.WeightedDetail(e.comparand(base), e.comparand(candidate), weights)
}

// personalKind reports whether a kind represents people rather than
// institutions. The complete-exclusion list only guards these pairings.
func personalKind(kind models.EntityKind) bool {
	return kind == models.EntityKindIndividual || kind == models.EntityKindHousehold
}

// FindBestMatches scores the base entity against every candidate pool
// and returns the adaptively selected best matches per kind.
//
// Entities on the complete exclusion list never participate in a pairing
// that involves an individual or household on either side; institutional
// records still reconcile against their business-kind counterparts.
// Selection keeps whichever is larger of the percentile survivors and
// the minimum group, then applies per-pair and global score floors.
func (e *Engine) FindBestMatches(ctx context.Context, base *models.Entity, candidatesByKind map[models.EntityKind][]*models.Entity) (*models.MatchResult, error) {
	_, span := tracing.StartSpan(ctx, "matching.Engine.FindBestMatches")
	defer span.End()

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"entity_id":   base.ID,
		"entity_kind": base.Kind,
	})

	result := &models.MatchResult{
		BaseEntityID:  base.ID,
		MatchesByKind: map[models.EntityKind][]models.CandidateInfo{},
	}

	baseExcluded := e.filter.IsExcluded(base)
	baseComparand := e.comparand(base)

	for kind, candidates := range candidatesByKind {
		guarded := personalKind(base.Kind) || personalKind(kind)
		if baseExcluded && guarded {
			log.WithField("target_kind", kind).Debug("Entity is on the exclusion list, skipping individual-type matching")
			continue
		}

		pair := models.KindPair{Source: base.Kind, Target: kind}
		weights := weightsFor(base.Kind, kind)
		scored := make([]models.CandidateInfo, 0, len(candidates))

		for _, candidate := range candidates {
			if candidate.ID == base.ID {
				continue
			}
			if guarded && e.filter.IsExcluded(candidate) {
				continue
			}
			score, components := comparison.WeightedDetail(baseComparand, e.comparand(candidate), weights)
			metrics.RecordMatchScore(pair.String(), score)
			scored = append(scored, models.CandidateInfo{
				EntityID:        candidate.ID,
				LocationID:      candidate.LocationID,
				Score:           score,
				ComponentScores: components,
			})
		}

		floor := e.config.PairMinimum(base.Kind, kind)
		selected := selectCandidates(scored, e.config, floor)
		if len(selected) > 0 {
			metrics.RecordCandidatesSelected(base.TenantID, pair.String(), len(selected))
			result.MatchesByKind[kind] = selected
			result.TotalMatches += len(selected)
		}
	}

	log.WithField("total_matches", result.TotalMatches).Debug("Completed match pass")
	return result, nil
}
