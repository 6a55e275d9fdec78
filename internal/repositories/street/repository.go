// Package street persists the canonical street database.
package street

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

// Repository handles street and street-alias persistence.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new street repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// LoadAll assembles the full canonical street database for a tenant,
// primary terms plus categorized aliases, for the in-memory index.
func (r *Repository) LoadAll(ctx context.Context, tenantID string) ([]*models.StreetEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "street.Repository.LoadAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "primary_term", "created_at", "updated_at")
	sb.From("streets")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("primary_term").Asc()

	query, args := sb.Build()
	var rows []models.StreetRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load streets")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load streets")
	}

	ab := sqlbuilder.PostgreSQL.NewSelectBuilder()
	ab.Select("id", "tenant_id", "street_id", "term", "category", "source", "created_at")
	ab.From("street_aliases")
	ab.Where(ab.Equal("tenant_id", tenantID))
	ab.OrderBy("term").Asc()

	aliasQuery, aliasArgs := ab.Build()
	var aliasRows []models.StreetAliasRow
	if err := r.db.SelectContext(ctx, &aliasRows, aliasQuery, aliasArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load street aliases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load street aliases")
	}

	entries := make([]*models.StreetEntry, 0, len(rows))
	byID := make(map[string]*models.StreetEntry, len(rows))
	for _, row := range rows {
		entry := &models.StreetEntry{
			ID:        row.ID,
			Primary:   row.PrimaryTerm,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		}
		entries = append(entries, entry)
		byID[row.ID] = entry
	}

	for _, row := range aliasRows {
		entry, ok := byID[row.StreetID]
		if !ok {
			continue
		}
		alias := models.StreetAlias{Term: row.Term, Source: row.Source}
		switch row.Category {
		case models.AliasCategoryHomonym:
			entry.Homonyms = append(entry.Homonyms, alias)
		case models.AliasCategorySynonym:
			entry.Synonyms = append(entry.Synonyms, alias)
		case models.AliasCategoryCandidate:
			entry.Candidates = append(entry.Candidates, alias)
		}
	}

	return entries, nil
}

// Create persists a new canonical street.
func (r *Repository) Create(ctx context.Context, tenantID string, entry *models.StreetEntry) error {
	ctx, span := tracing.StartSpan(ctx, "street.Repository.Create")
	defer span.End()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
		entry.UpdatedAt = now
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("streets")
	sb.Cols("id", "tenant_id", "primary_term", "created_at", "updated_at")
	sb.Values(entry.ID, tenantID, entry.Primary, entry.CreatedAt, entry.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"street_id": entry.ID}).Error("Failed to create street")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to create street")
	}

	return nil
}

// AddAlias persists one alias term and touches the street's updated_at
// inside a single transaction.
func (r *Repository) AddAlias(ctx context.Context, tenantID, streetID, term string, category models.AliasCategory, source models.AliasSource) error {
	ctx, span := tracing.StartSpan(ctx, "street.Repository.AddAlias")
	defer span.End()

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add street alias")
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("street_aliases")
	ib.Cols("id", "tenant_id", "street_id", "term", "category", "source", "created_at")
	ib.Values(uuid.New().String(), tenantID, streetID, term, category, source, now)

	query, args := ib.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"street_id": streetID}).Error("Failed to insert street alias")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add street alias")
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("streets")
	ub.Set(ub.Assign("updated_at", now))
	ub.Where(
		ub.Equal("id", streetID),
		ub.Equal("tenant_id", tenantID),
	)

	updateQuery, updateArgs := ub.Build()
	if _, err := tx.ExecContext(txCtx, updateQuery, updateArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to touch street")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to add street alias")
	}

	return tx.Commit(ctx)
}

// Get retrieves one street with its aliases.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.StreetEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "street.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "primary_term", "created_at", "updated_at")
	sb.From("streets")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var row models.StreetRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("street %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get street")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get street")
	}

	ab := sqlbuilder.PostgreSQL.NewSelectBuilder()
	ab.Select("id", "tenant_id", "street_id", "term", "category", "source", "created_at")
	ab.From("street_aliases")
	ab.Where(
		ab.Equal("tenant_id", tenantID),
		ab.Equal("street_id", id),
	)

	aliasQuery, aliasArgs := ab.Build()
	var aliasRows []models.StreetAliasRow
	if err := r.db.SelectContext(ctx, &aliasRows, aliasQuery, aliasArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load street aliases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get street")
	}

	entry := &models.StreetEntry{
		ID:        row.ID,
		Primary:   row.PrimaryTerm,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	for _, aliasRow := range aliasRows {
		alias := models.StreetAlias{Term: aliasRow.Term, Source: aliasRow.Source}
		switch aliasRow.Category {
		case models.AliasCategoryHomonym:
			entry.Homonyms = append(entry.Homonyms, alias)
		case models.AliasCategorySynonym:
			entry.Synonyms = append(entry.Synonyms, alias)
		case models.AliasCategoryCandidate:
			entry.Candidates = append(entry.Candidates, alias)
		}
	}

	return entry, nil
}
