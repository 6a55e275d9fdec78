// Package classificationfailure records owner names the cascade could
// not classify so curators can review them and extend the rules.
package classificationfailure

import (
	"context"
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

// Repository handles classification failure persistence.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new classification failure repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Record stores one unclassifiable raw name. Repeats of the same name
// bump last_seen_at rather than piling up rows.
func (r *Repository) Record(ctx context.Context, failure *models.ClassificationFailureRecord) error {
	ctx, span := tracing.StartSpan(ctx, "classificationfailure.Repository.Record")
	defer span.End()

	if failure.ID == "" {
		failure.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	failure.CreatedAt = now
	failure.LastSeenAt = now

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("classification_failures")
	sb.Cols("id", "tenant_id", "source_system", "location_id", "raw_name", "reason", "created_at", "last_seen_at")
	sb.Values(failure.ID, failure.TenantID, failure.SourceSystem, failure.LocationID, failure.RawName, failure.Reason, failure.CreatedAt, failure.LastSeenAt)

	query, args := sb.Build()
	query += ` ON CONFLICT (tenant_id, source_system, raw_name) DO UPDATE
		SET last_seen_at = EXCLUDED.last_seen_at, reason = EXCLUDED.reason`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"raw_name": failure.RawName}).Error("Failed to record classification failure")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record classification failure")
	}

	return nil
}

// List returns recent failures for curator review.
func (r *Repository) List(ctx context.Context, tenantID string, limit int) ([]models.ClassificationFailureRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "classificationfailure.Repository.List")
	defer span.End()

	if limit < 1 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "source_system", "location_id", "raw_name", "reason", "created_at", "last_seen_at")
	sb.From("classification_failures")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("last_seen_at DESC")
	sb.Limit(limit)

	query, args := sb.Build()
	var failures []models.ClassificationFailureRecord
	if err := r.db.SelectContext(ctx, &failures, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list classification failures")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list classification failures")
	}

	return failures, nil
}
