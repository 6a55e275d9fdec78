// Package matchconfig persists per-tenant selector configuration and the
// curated word lists that drive business filtering.
package matchconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
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

// Repository handles match configuration persistence.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new match config repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Get returns the tenant's selector configuration, or the deployed
// defaults when none is stored.
func (r *Repository) Get(ctx context.Context, tenantID string) (models.MatchConfig, []string, []string, error) {
	ctx, span := tracing.StartSpan(ctx, "matchconfig.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "config", "exclusion_names", "qualifier_terms", "created_at", "updated_at")
	sb.From("match_configs")
	sb.Where(sb.Equal("tenant_id", tenantID))

	query, args := sb.Build()
	var record models.MatchConfigRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DefaultMatchConfig(), nil, nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get match config")
		return models.MatchConfig{}, nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get match config")
	}

	config := models.DefaultMatchConfig()
	if len(record.Config) > 0 {
		if err := json.Unmarshal(record.Config, &config); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to decode stored match config, using defaults")
			config = models.DefaultMatchConfig()
		}
	}

	var exclusions, qualifiers []string
	if len(record.ExclusionNames) > 0 {
		if err := json.Unmarshal(record.ExclusionNames, &exclusions); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to decode exclusion names")
		}
	}
	if len(record.QualifierTerms) > 0 {
		if err := json.Unmarshal(record.QualifierTerms, &qualifiers); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to decode qualifier terms")
		}
	}

	return config, exclusions, qualifiers, nil
}

// Upsert stores the tenant's selector configuration and word lists.
func (r *Repository) Upsert(ctx context.Context, tenantID string, config models.MatchConfig, exclusionNames, qualifierTerms []string) error {
	ctx, span := tracing.StartSpan(ctx, "matchconfig.Repository.Upsert")
	defer span.End()

	configJSON, err := json.Marshal(config)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode match config")
	}
	exclusionsJSON, err := json.Marshal(exclusionNames)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode exclusion names")
	}
	qualifiersJSON, err := json.Marshal(qualifierTerms)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode qualifier terms")
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("match_configs")
	sb.Cols("id", "tenant_id", "config", "exclusion_names", "qualifier_terms", "created_at", "updated_at")
	sb.Values(uuid.New().String(), tenantID, configJSON, exclusionsJSON, qualifiersJSON, now, now)

	query, args := sb.Build()
	query += ` ON CONFLICT (tenant_id) DO UPDATE
		SET config = EXCLUDED.config,
		    exclusion_names = EXCLUDED.exclusion_names,
		    qualifier_terms = EXCLUDED.qualifier_terms,
		    updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert match config")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to save match config")
	}

	return nil
}
