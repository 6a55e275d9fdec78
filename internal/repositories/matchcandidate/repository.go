// Package matchcandidate persists potential matches pending review.
package matchcandidate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

var candidateColumns = []string{
	"id", "tenant_id", "source_entity_id", "candidate_entity_id", "candidate_kind",
	"match_score", "match_details", "status", "created_at", "updated_at", "resolved_at", "resolved_by",
}

// Repository handles match candidate persistence.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match candidate repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// CreateBatch persists a match pass's selected candidates. Re-running a
// pass over the same pair keeps the highest score seen and never
// reopens a resolved candidate.
func (r *Repository) CreateBatch(ctx context.Context, candidates []*models.MatchCandidate) error {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.CreateBatch")
	defer span.End()

	if len(candidates) == 0 {
		return nil
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("match_candidates")
	sb.Cols("id", "tenant_id", "source_entity_id", "candidate_entity_id", "candidate_kind", "match_score", "match_details", "status", "created_at", "updated_at")

	for _, c := range candidates {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		if c.Status == "" {
			c.Status = models.MatchCandidateStatusPending
		}
		sb.Values(c.ID, c.TenantID, c.SourceEntityID, c.CandidateEntityID, c.CandidateKind, c.MatchScore, c.MatchDetails, c.Status, c.CreatedAt, c.UpdatedAt)
	}

	query, args := sb.Build()
	query += ` ON CONFLICT (tenant_id, source_entity_id, candidate_entity_id) DO UPDATE
		SET match_score = GREATEST(match_candidates.match_score, EXCLUDED.match_score),
		    match_details = EXCLUDED.match_details,
		    updated_at = EXCLUDED.updated_at
		WHERE match_candidates.status = 'pending'`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create match candidates batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create match candidates")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(candidates)}).Debug("Created match candidates batch")
	return nil
}

// Get retrieves a match candidate by ID.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns...)
	sb.From("match_candidates")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var candidate models.MatchCandidate
	if err := r.db.GetContext(ctx, &candidate, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("match candidate %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get match candidate")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get match candidate")
	}

	return &candidate, nil
}

// ListPending retrieves pending match candidates for review, best
// scores first.
func (r *Repository) ListPending(ctx context.Context, tenantID string, kind models.EntityKind, limit int) ([]models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.ListPending")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns...)
	sb.From("match_candidates")
	conds := []string{
		sb.Equal("tenant_id", tenantID),
		sb.Equal("status", models.MatchCandidateStatusPending),
	}
	if kind != "" {
		conds = append(conds, sb.Equal("candidate_kind", kind))
	}
	sb.Where(conds...)
	sb.OrderBy("match_score DESC", "created_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var candidates []models.MatchCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list pending match candidates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list pending match candidates")
	}

	return candidates, nil
}

// ListByEntity retrieves match candidates involving an entity on either
// side of the pair.
func (r *Repository) ListByEntity(ctx context.Context, tenantID, entityID, status string) ([]models.MatchCandidate, error) {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.ListByEntity")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(candidateColumns...)
	sb.From("match_candidates")
	conds := []string{
		sb.Equal("tenant_id", tenantID),
		sb.Or(
			sb.Equal("source_entity_id", entityID),
			sb.Equal("candidate_entity_id", entityID),
		),
	}
	if status != "" {
		conds = append(conds, sb.Equal("status", status))
	}
	sb.Where(conds...)
	sb.OrderBy("match_score DESC", "created_at DESC")

	query, args := sb.Build()
	var candidates []models.MatchCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match candidates by entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match candidates")
	}

	return candidates, nil
}

// Scores returns every score recorded between two kinds, for threshold
// calibration.
func (r *Repository) Scores(ctx context.Context, tenantID string, kind models.EntityKind) ([]float64, error) {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.Scores")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("match_score")
	sb.From("match_candidates")
	conds := []string{sb.Equal("tenant_id", tenantID)}
	if kind != "" {
		conds = append(conds, sb.Equal("candidate_kind", kind))
	}
	sb.Where(conds...)
	sb.OrderBy("match_score").Asc()

	query, args := sb.Build()
	var scores []float64
	if err := r.db.SelectContext(ctx, &scores, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load match scores")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load match scores")
	}

	return scores, nil
}

// LabeledSamples returns resolved candidates as labeled calibration
// samples, approved pairs as true and rejected pairs as false.
func (r *Repository) LabeledSamples(ctx context.Context, tenantID string, kind models.EntityKind) ([]models.CalibrationSample, error) {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.LabeledSamples")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("match_score", "status")
	sb.From("match_candidates")
	conds := []string{
		sb.Equal("tenant_id", tenantID),
		sb.In("status", models.MatchCandidateStatusApproved, models.MatchCandidateStatusRejected),
	}
	if kind != "" {
		conds = append(conds, sb.Equal("candidate_kind", kind))
	}
	sb.Where(conds...)

	query, args := sb.Build()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load labeled samples")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load labeled samples")
	}
	defer rows.Close()

	var samples []models.CalibrationSample
	for rows.Next() {
		var score float64
		var status string
		if err := rows.Scan(&score, &status); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to scan labeled sample")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load labeled samples")
		}
		samples = append(samples, models.CalibrationSample{
			Score:   score,
			IsMatch: status == models.MatchCandidateStatusApproved,
		})
	}

	return samples, rows.Err()
}

// UpdateStatus resolves a match candidate.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id, status string, resolvedBy *string) error {
	ctx, span := tracing.StartSpan(ctx, "matchcandidate.Repository.UpdateStatus")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("match_candidates")
	sb.Set(
		sb.Assign("status", status),
		sb.Assign("resolved_at", now),
		sb.Assign("resolved_by", resolvedBy),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update match candidate status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update match candidate status")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "match candidate not found")
	}

	return nil
}
