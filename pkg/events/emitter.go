// Package events emits lifecycle events for classification and matching.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Event types emitted by the pipeline.
const (
	EventEntityClassified     = "entity.classified"
	EventClassificationFailed = "entity.classification_failed"
	EventMatchesFound         = "entity.matches_found"
)

// Emitter publishes pipeline lifecycle events.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter.
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{producer: producer, logger: logger}
}

// EmitEntityClassified announces a newly classified entity.
func (e *Emitter) EmitEntityClassified(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitEntityClassified")
	defer span.End()

	data, err := json.Marshal(entity)
	if err != nil {
		return err
	}

	event := &kafka.Event{
		EventType: EventEntityClassified,
		TenantID:  entity.TenantID,
		EntityID:  entity.ID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit entity.classified event")
		return err
	}
	return nil
}

// EmitClassificationFailed reports a record no cascade rule matched.
func (e *Emitter) EmitClassificationFailed(ctx context.Context, failure *models.ClassificationFailureRecord) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitClassificationFailed")
	defer span.End()

	data, err := json.Marshal(failure)
	if err != nil {
		return err
	}

	event := &kafka.Event{
		EventType: EventClassificationFailed,
		TenantID:  failure.TenantID,
		EntityID:  failure.ID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit classification_failed event")
		return err
	}
	return nil
}

// EmitMatchesFound announces the selected matches for one entity.
func (e *Emitter) EmitMatchesFound(ctx context.Context, tenantID string, result *models.MatchResult) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchesFound")
	defer span.End()

	if result.TotalMatches == 0 {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	event := &kafka.Event{
		EventType: EventMatchesFound,
		TenantID:  tenantID,
		EntityID:  result.BaseEntityID,
		Data:      data,
	}

	if err := e.producer.Publish(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit matches_found event")
		return err
	}
	return nil
}
