// Package processor is the ingestion pipeline: it consumes raw source
// records, classifies owner names, parses and resolves addresses, and
// kicks off a match pass for every new entity.
package processor

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/internal/repositories/classificationfailure"
	entityrepo "github.com/Ramsey-B/fern/internal/repositories/entity"
	"github.com/Ramsey-B/fern/pkg/address"
	"github.com/Ramsey-B/fern/pkg/classify"
	fernctx "github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/events"
	"github.com/Ramsey-B/fern/pkg/extractor"
	"github.com/Ramsey-B/fern/pkg/fingerprint"
	"github.com/Ramsey-B/fern/pkg/graph"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/matching"
	"github.com/Ramsey-B/fern/pkg/metrics"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/streets"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// SourceMapping tells the processor where a source system keeps its
// fields inside the record payload, for records whose upstream mapper
// did not lift them into the envelope.
type SourceMapping struct {
	OwnerNamePath  string `json:"owner_name_path"`
	RawAddressPath string `json:"raw_address_path"`
	AccountPath    string `json:"account_path"`
	LocationPath   string `json:"location_path"`
	PositionPath   string `json:"position_path"`
}

// Processor consumes source records end to end.
type Processor struct {
	logger      ectologger.Logger
	classifier  *classify.Engine
	resolver    *address.Resolver
	streets     *streets.Store
	extractor   *extractor.Extractor
	entityRepo  *entityrepo.Repository
	failureRepo *classificationfailure.Repository
	matcher     *matching.Service
	emitter     *events.Emitter
	projection  *graph.Projection
	mappings    map[string]SourceMapping
}

// NewProcessor creates a message processor. projection may be nil when
// the graph is disabled.
func NewProcessor(
	logger ectologger.Logger,
	classifier *classify.Engine,
	resolver *address.Resolver,
	streetStore *streets.Store,
	entityRepo *entityrepo.Repository,
	failureRepo *classificationfailure.Repository,
	matcher *matching.Service,
	emitter *events.Emitter,
	projection *graph.Projection,
	mappings map[string]SourceMapping,
) *Processor {
	return &Processor{
		logger:      logger,
		classifier:  classifier,
		resolver:    resolver,
		streets:     streetStore,
		extractor:   extractor.New(),
		entityRepo:  entityRepo,
		failureRepo: failureRepo,
		matcher:     matcher,
		emitter:     emitter,
		projection:  projection,
		mappings:    mappings,
	}
}

// HandleMessage implements kafka.MessageHandler.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) (err error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if msg.IsExecutionCompleted() {
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"execution_id": msg.ExecutionID(),
		}).Info("Ingestion run completed")
		return nil
	}

	record := msg.Record
	ctx = fernctx.SetTenantID(ctx, record.TenantID)

	start := time.Now()
	outcome := "created"
	defer func() {
		if err != nil {
			outcome = "error"
		}
		metrics.RecordIngest(record.TenantID, record.SourceSystem, outcome, time.Since(start).Seconds())
	}()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":     record.TenantID,
		"source_system": record.SourceSystem,
	})

	fields := p.resolveFields(record)
	if fields.ownerName == "" {
		log.Warn("Record has no owner name, skipping")
		outcome = "skipped"
		return nil
	}

	fp := p.fingerprintFor(record, fields)

	existing, err := p.entityRepo.GetByFingerprint(ctx, record.TenantID, fp)
	if err != nil {
		return err
	}
	if existing != nil {
		log.WithField("entity_id", existing.ID).Debug("Record unchanged, skipping")
		outcome = "unchanged"
		return nil
	}

	classification, err := p.classifier.Classify(classify.Input{
		TenantID:     record.TenantID,
		SourceSystem: record.SourceSystem,
		LocationID:   fields.locationID,
		RawName:      fields.ownerName,
		Position:     fields.position,
	})
	if err != nil {
		var classErr *classify.ClassificationError
		if errors.As(err, &classErr) {
			outcome = "unclassified"
			metrics.RecordClassificationFailure(record.TenantID, record.SourceSystem)
			return p.recordFailure(ctx, record, fields, classErr)
		}
		return err
	}

	entity := classification.Entity
	metrics.RecordClassification(record.TenantID, string(entity.Kind), classification.Rule)
	p.attachAddress(entity, fields, record.SourceSystem)
	if fields.account != "" {
		entity.AccountNumber = models.NewAttributedValue(fields.account, record.SourceSystem, 0, "account_number")
	}

	if _, err := p.entityRepo.Create(ctx, entity, fields.ownerName, fp); err != nil {
		return err
	}

	if p.projection != nil {
		if err := p.projection.UpsertEntity(ctx, entity); err != nil {
			// The graph is a projection of the database; it can be rebuilt.
			log.WithError(err).Warn("Failed to project entity to graph")
		}
	}

	if p.emitter != nil {
		if err := p.emitter.EmitEntityClassified(ctx, entity); err != nil {
			log.WithError(err).Warn("Failed to emit entity.classified event")
		}
	}

	if _, err := p.matcher.MatchEntity(ctx, entity); err != nil {
		return err
	}

	return nil
}

// recordedFields is what the processor pulled out of one record.
type recordedFields struct {
	ownerName  string
	rawAddress string
	account    string
	locationID string
	position   int
}

func (p *Processor) resolveFields(record *models.SourceRecordMessage) recordedFields {
	fields := recordedFields{
		ownerName:  record.OwnerName,
		rawAddress: record.RawAddress,
		locationID: record.LocationID,
	}

	mapping, ok := p.mappings[record.SourceSystem]
	if !ok || record.Data == nil {
		return fields
	}

	extract := func(path string) string {
		if path == "" {
			return ""
		}
		value, err := p.extractor.ExtractString(record.Data, path)
		if err != nil || value == nil {
			return ""
		}
		return *value
	}

	if fields.ownerName == "" {
		fields.ownerName = extract(mapping.OwnerNamePath)
	}
	if fields.rawAddress == "" {
		fields.rawAddress = extract(mapping.RawAddressPath)
	}
	if fields.locationID == "" {
		fields.locationID = extract(mapping.LocationPath)
	}
	fields.account = extract(mapping.AccountPath)
	if pos := extract(mapping.PositionPath); pos != "" {
		if n, err := strconv.Atoi(pos); err == nil {
			fields.position = n
		}
	}

	return fields
}

// fingerprintFor hashes the identity-bearing fields, not the whole
// payload, so upstream metadata churn does not defeat deduplication.
func (p *Processor) fingerprintFor(record *models.SourceRecordMessage, fields recordedFields) string {
	return fingerprint.Generate(map[string]any{
		"tenant_id":     record.TenantID,
		"source_system": record.SourceSystem,
		"location_id":   fields.locationID,
		"owner_name":    fields.ownerName,
		"raw_address":   fields.rawAddress,
		"account":       fields.account,
	})
}

func (p *Processor) attachAddress(entity *models.Entity, fields recordedFields, sourceSystem string) {
	if fields.rawAddress == "" {
		return
	}

	addr := address.Parse(fields.rawAddress, sourceSystem)
	if addr.IsEmpty() {
		return
	}

	p.resolver.Resolve(addr, p.streets.Snapshot())
	entity.Address = addr
	for _, member := range entity.Members {
		// A household record carries one address for the whole bundle.
		// Each member gets its own copy so later edits to one entity
		// never leak into another.
		memberAddr := *addr
		member.Address = &memberAddr
	}
}

func (p *Processor) recordFailure(ctx context.Context, record *models.SourceRecordMessage, fields recordedFields, classErr *classify.ClassificationError) error {
	failure := &models.ClassificationFailureRecord{
		TenantID:     record.TenantID,
		SourceSystem: record.SourceSystem,
		LocationID:   fields.locationID,
		RawName:      classErr.RawName,
		Reason:       classErr.Reason,
	}

	if err := p.failureRepo.Record(ctx, failure); err != nil {
		return err
	}

	if p.emitter != nil {
		if err := p.emitter.EmitClassificationFailed(ctx, failure); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Failed to emit classification_failed event")
		}
	}

	// A record the cascade cannot place is a review item, never a batch
	// failure.
	return nil
}
