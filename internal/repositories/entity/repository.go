// Package entity persists classified entities.
package entity

import (
	"context"
	"database/sql"
	"encoding/json"
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

var entityColumns = []string{
	"id", "tenant_id", "source_system", "entity_kind", "location_id",
	"account_number", "raw_name", "data", "fingerprint", "created_at", "updated_at",
}

// Repository handles entity persistence.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new entity repository.
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Create persists a classified entity. The full structured entity is
// stored as jsonb; indexed columns carry what queries filter on.
func (r *Repository) Create(ctx context.Context, entity *models.Entity, rawName, fingerprint string) (*models.EntityRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Create")
	defer span.End()

	record, err := toRecord(entity, rawName, fingerprint)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to serialize entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to serialize entity")
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("entities")
	sb.Cols(entityColumns...)
	sb.Values(record.ID, record.TenantID, record.SourceSystem, record.EntityKind, record.LocationID,
		record.AccountNumber, record.RawName, record.Data, record.Fingerprint, record.CreatedAt, record.UpdatedAt)

	query, args := sb.Build()
	query += " ON CONFLICT (tenant_id, fingerprint) DO UPDATE SET updated_at = EXCLUDED.updated_at"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_id": record.ID}).Error("Failed to create entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create entity")
	}

	return record, nil
}

// Get retrieves an entity record by ID.
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.EntityRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var record models.EntityRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get entity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get entity")
	}

	return &record, nil
}

// GetByFingerprint finds an already-classified entity with the same
// content fingerprint, if one exists.
func (r *Repository) GetByFingerprint(ctx context.Context, tenantID, fingerprint string) (*models.EntityRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.GetByFingerprint")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("fingerprint", fingerprint),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var record models.EntityRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get entity by fingerprint")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get entity")
	}

	return &record, nil
}

// ListByKind returns all live entities of one kind for a tenant,
// excluding one source system when excludeSource is set. The matcher
// uses this to build cross-source candidate pools.
func (r *Repository) ListByKind(ctx context.Context, tenantID string, kind models.EntityKind, excludeSource string) ([]*models.Entity, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.ListByKind")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	conds := []string{
		sb.Equal("tenant_id", tenantID),
		sb.Equal("entity_kind", kind),
		sb.IsNull("deleted_at"),
	}
	if excludeSource != "" {
		conds = append(conds, sb.NotEqual("source_system", excludeSource))
	}
	sb.Where(conds...)
	sb.OrderBy("created_at").Asc()

	query, args := sb.Build()
	var records []models.EntityRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list entities by kind")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}

	entities := make([]*models.Entity, 0, len(records))
	for i := range records {
		entity, err := FromRecord(&records[i])
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_id": records[i].ID}).Warn("Skipping undecodable entity record")
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

// List returns a page of entity records for a tenant, optionally
// filtered by kind.
func (r *Repository) List(ctx context.Context, tenantID string, kind models.EntityKind, limit, offset int) ([]models.EntityRecord, int, error) {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.List")
	defer span.End()

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(entityColumns...)
	sb.From("entities")
	conds := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if kind != "" {
		conds = append(conds, sb.Equal("entity_kind", kind))
	}
	sb.Where(conds...)
	sb.OrderBy("created_at").Desc()
	sb.Limit(limit).Offset(offset)

	query, args := sb.Build()
	var records []models.EntityRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list entities")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list entities")
	}

	cb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	cb.Select("COUNT(*)")
	cb.From("entities")
	cb.Where(conds...)
	countQuery, countArgs := cb.Build()

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count entities")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count entities")
	}

	return records, total, nil
}

// Delete soft-deletes an entity.
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "entity.Repository.Delete")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("entities")
	ub.Set(ub.Assign("deleted_at", time.Now().UTC()))
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("tenant_id", tenantID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete entity")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete entity")
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("entity %s not found", id))
	}
	return nil
}

func toRecord(entity *models.Entity, rawName, fingerprint string) (*models.EntityRecord, error) {
	if entity.ID == "" {
		entity.ID = uuid.New().String()
	}

	data, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	record := &models.EntityRecord{
		ID:           entity.ID,
		TenantID:     entity.TenantID,
		SourceSystem: entity.SourceSystem,
		EntityKind:   entity.Kind,
		LocationID:   entity.LocationID,
		RawName:      rawName,
		Data:         data,
		Fingerprint:  fingerprint,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if entity.AccountNumber != nil {
		account := entity.AccountNumber.Term
		record.AccountNumber = &account
	}
	return record, nil
}

// FromRecord decodes the stored structured entity.
func FromRecord(record *models.EntityRecord) (*models.Entity, error) {
	var entity models.Entity
	if err := json.Unmarshal(record.Data, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity %s: %w", record.ID, err)
	}
	entity.ID = record.ID
	return &entity, nil
}
