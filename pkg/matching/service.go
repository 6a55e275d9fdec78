package matching

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/entity"
	"github.com/Ramsey-B/fern/internal/repositories/matchcandidate"
	"github.com/Ramsey-B/fern/internal/repositories/matchconfig"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Service runs match passes: it assembles cross-source candidate pools,
// scores them, persists the selected candidates, and announces results.
type Service struct {
	logger        ectologger.Logger
	entityRepo    *entity.Repository
	candidateRepo *matchcandidate.Repository
	configRepo    *matchconfig.Repository
	emitter       *events.Emitter
}

// NewService creates a matching service.
func NewService(
	logger ectologger.Logger,
	entityRepo *entity.Repository,
	candidateRepo *matchcandidate.Repository,
	configRepo *matchconfig.Repository,
	emitter *events.Emitter,
) *Service {
	return &Service{
		logger:        logger,
		entityRepo:    entityRepo,
		candidateRepo: candidateRepo,
		configRepo:    configRepo,
		emitter:       emitter,
	}
}

// engineFor builds a match engine with the tenant's stored selection
// config and curated exclusion list, falling back to deployed defaults.
func (s *Service) engineFor(ctx context.Context, tenantID string) (*Engine, error) {
	config, exclusions, _, err := s.configRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	filter := NewBusinessFilter()
	if len(exclusions) > 0 {
		filter = NewBusinessFilterWith(exclusions, defaultBusinessTerms)
	}

	return NewEngine(s.logger, filter, config), nil
}

// MatchEntity runs one match pass for a newly classified entity against
// every other source system's entities, persists the selected candidates
// for review, and emits a matches_found event.
func (s *Service) MatchEntity(ctx context.Context, base *models.Entity) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.MatchEntity")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":   base.TenantID,
		"entity_id":   base.ID,
		"entity_kind": base.Kind,
	})

	engine, err := s.engineFor(ctx, base.TenantID)
	if err != nil {
		return nil, err
	}

	pools := make(map[models.EntityKind][]*models.Entity, len(models.EntityKinds))
	for _, kind := range models.EntityKinds {
		candidates, err := s.entityRepo.ListByKind(ctx, base.TenantID, kind, base.SourceSystem)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			pools[kind] = candidates
		}
	}

	result, err := engine.FindBestMatches(ctx, base, pools)
	if err != nil {
		return nil, err
	}

	if err := s.persistResult(ctx, base, result); err != nil {
		return nil, err
	}

	if s.emitter != nil {
		if err := s.emitter.EmitMatchesFound(ctx, base.TenantID, result); err != nil {
			// The candidates are persisted; a lost event is recoverable.
			log.WithError(err).Warn("Failed to emit matches_found event")
		}
	}

	log.WithField("total_matches", result.TotalMatches).Info("Match pass completed")
	return result, nil
}

func (s *Service) persistResult(ctx context.Context, base *models.Entity, result *models.MatchResult) error {
	var candidates []*models.MatchCandidate
	for kind, matches := range result.MatchesByKind {
		for _, match := range matches {
			details, err := json.Marshal(match.ComponentScores)
			if err != nil {
				details = []byte("{}")
			}
			candidates = append(candidates, &models.MatchCandidate{
				TenantID:          base.TenantID,
				SourceEntityID:    base.ID,
				CandidateEntityID: match.EntityID,
				CandidateKind:     kind,
				MatchScore:        match.Score,
				MatchDetails:      string(details),
			})
		}
	}

	return s.candidateRepo.CreateBatch(ctx, candidates)
}

// CalibrateThresholds proposes score floors for a kind from the stored
// score distribution, refined by resolved candidates when any exist.
func (s *Service) CalibrateThresholds(ctx context.Context, tenantID string, kind models.EntityKind) (*models.CalibrationProposal, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.CalibrateThresholds")
	defer span.End()

	scores, err := s.candidateRepo.Scores(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}

	labeled, err := s.candidateRepo.LabeledSamples(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}

	proposal, err := Calibrate(models.CalibrationRequest{Scores: scores, Labeled: labeled})
	if err != nil {
		return nil, err
	}

	if proposal.Ambiguous {
		s.logger.WithContext(ctx).WithFields(map[string]any{
			"tenant_id": tenantID,
			"kind":      kind,
		}).Warn("Calibration found overlapping true/false score ranges")
	}

	return proposal, nil
}
