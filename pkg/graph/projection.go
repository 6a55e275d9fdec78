package graph

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Projection mirrors classified entities and their relationships into
// the graph so review tooling can walk households and match clusters.
type Projection struct {
	client  *Client
	logger  ectologger.Logger
	indexed sync.Once
}

// NewProjection creates an entity graph projection.
func NewProjection(client *Client, logger ectologger.Logger) *Projection {
	return &Projection{client: client, logger: logger}
}

var labelPattern = regexp.MustCompile(`[^A-Za-z0-9_]`)

// kindLabel maps an entity kind to a safe node label.
func kindLabel(kind models.EntityKind) string {
	switch kind {
	case models.EntityKindIndividual:
		return "Individual"
	case models.EntityKindHousehold:
		return "Household"
	case models.EntityKindBusiness:
		return "Business"
	case models.EntityKindLegalConstruct:
		return "LegalConstruct"
	}
	return labelPattern.ReplaceAllString(string(kind), "")
}

// UpsertEntity creates or refreshes an entity node. Household members
// are projected as their own Individual nodes with MEMBER_OF edges.
func (p *Projection) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projection.UpsertEntity")
	defer span.End()

	// Lookup indexes are ensured once, before the first write.
	p.indexed.Do(func() {
		if err := p.client.EnsureIndexes(ctx); err != nil {
			p.logger.WithContext(ctx).WithError(err).Warn("Failed to ensure graph indexes")
		}
	})

	cypher := fmt.Sprintf(`
		MERGE (e:%s {id: $id, tenant_id: $tenant_id})
		SET e.display_name = $display_name,
		    e.source_system = $source_system,
		    e.location_id = $location_id,
		    e.updated_at = timestamp()
	`, kindLabel(entity.Kind))

	params := map[string]any{
		"id":            entity.ID,
		"tenant_id":     entity.TenantID,
		"display_name":  entity.DisplayName(),
		"source_system": entity.SourceSystem,
		"location_id":   entity.LocationID,
	}

	if _, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, cypher, params); err != nil {
			return nil, err
		}
		for i, member := range entity.Members {
			memberID := member.ID
			if memberID == "" {
				memberID = fmt.Sprintf("%s:member:%d", entity.ID, i)
			}
			memberCypher := fmt.Sprintf(`
				MERGE (m:Individual {id: $member_id, tenant_id: $tenant_id})
				SET m.display_name = $display_name
				WITH m
				MATCH (h:%s {id: $household_id, tenant_id: $tenant_id})
				MERGE (m)-[:MEMBER_OF]->(h)
			`, kindLabel(entity.Kind))
			if _, err := tx.Run(ctx, memberCypher, map[string]any{
				"member_id":    memberID,
				"tenant_id":    entity.TenantID,
				"display_name": member.DisplayName(),
				"household_id": entity.ID,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"entity_id": entity.ID}).Error("Failed to project entity to graph")
		return err
	}

	return nil
}

// LinkMatch records an approved match between two entities.
func (p *Projection) LinkMatch(ctx context.Context, tenantID, sourceID, candidateID string, score float64) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projection.LinkMatch")
	defer span.End()

	cypher := `
		MATCH (a {id: $source_id, tenant_id: $tenant_id})
		MATCH (b {id: $candidate_id, tenant_id: $tenant_id})
		MERGE (a)-[r:MATCHES]->(b)
		SET r.score = $score, r.updated_at = timestamp()
	`

	if _, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, map[string]any{
			"source_id":    sourceID,
			"candidate_id": candidateID,
			"tenant_id":    tenantID,
			"score":        score,
		})
	}); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to link match in graph")
		return err
	}

	return nil
}

// MatchCluster returns every entity reachable from one entity over
// MATCHES and MEMBER_OF edges, up to maxHops.
func (p *Projection) MatchCluster(ctx context.Context, tenantID, entityID string, maxHops int) ([]map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Projection.MatchCluster")
	defer span.End()

	if maxHops < 1 || maxHops > 5 {
		maxHops = 3
	}

	cypher := fmt.Sprintf(`
		MATCH (start {id: $entity_id, tenant_id: $tenant_id})
		MATCH path = (start)-[:MATCHES|MEMBER_OF*1..%d]-(other)
		WHERE other.tenant_id = $tenant_id
		RETURN DISTINCT other.id AS id, labels(other) AS labels,
			other.display_name AS display_name, other.source_system AS source_system
	`, maxHops)

	result, err := p.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{
			"entity_id": entityID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}

		var rows []map[string]any
		for res.Next(ctx) {
			record := res.Record()
			row := make(map[string]any, len(record.Keys))
			for _, key := range record.Keys {
				value, _ := record.Get(key)
				row[key] = value
			}
			rows = append(rows, row)
		}
		return rows, res.Err()
	})
	if err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to query match cluster")
		return nil, err
	}

	rows, _ := result.([]map[string]any)
	return rows, nil
}

// DeleteEntity removes an entity node and its relationships.
func (p *Projection) DeleteEntity(ctx context.Context, tenantID, entityID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Projection.DeleteEntity")
	defer span.End()

	cypher := `
		MATCH (e {id: $entity_id, tenant_id: $tenant_id})
		DETACH DELETE e
	`

	if _, err := p.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, map[string]any{
			"entity_id": entityID,
			"tenant_id": tenantID,
		})
	}); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error("Failed to delete entity from graph")
		return err
	}

	return nil
}
