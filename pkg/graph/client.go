// Package graph projects classified entities into Memgraph over the
// Bolt protocol so review tooling can walk households and match
// clusters.
package graph

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Client is the thin Bolt surface the projection needs: transactional
// read/write execution plus connectivity probing for health checks.
// Memgraph speaks the Neo4j driver protocol, so the driver is reused
// as-is; Memgraph has no named databases, so sessions never select one.
type Client struct {
	driver neo4j.DriverWithContext
	logger ectologger.Logger
}

// Config holds the Memgraph connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewClient opens a Bolt driver against Memgraph. The driver connects
// lazily; reachability is verified by the health checker, not here.
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("graph host is required")
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(fmt.Sprintf("bolt://%s:%d", cfg.Host, cfg.Port), auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph driver: %w", err)
	}

	return &Client{driver: driver, logger: logger}, nil
}

// Close closes the driver connection
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// VerifyConnectivity checks if the database is reachable
func (c *Client) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Client) session(ctx context.Context, accessMode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode: accessMode,
	})
}

// ExecuteWrite runs a write transaction
func (c *Client) ExecuteWrite(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteWrite")
	defer span.End()

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	return session.ExecuteWrite(ctx, work)
}

// ExecuteRead runs a read transaction
func (c *Client) ExecuteRead(ctx context.Context, work func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.ExecuteRead")
	defer span.End()

	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	return session.ExecuteRead(ctx, work)
}

// EnsureIndexes creates the label+property indexes the projection's
// MERGE lookups depend on, using Memgraph's CREATE INDEX syntax. A
// statement failing because the index already exists is logged and
// skipped; Memgraph versions differ on whether that is an error.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Client.EnsureIndexes")
	defer span.End()

	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range []string{"Individual", "Household", "Business", "LegalConstruct"} {
		statement := fmt.Sprintf("CREATE INDEX ON :%s(id)", label)
		if _, err := session.Run(ctx, statement, nil); err != nil {
			if c.logger != nil {
				c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"label": label,
				}).Debug("Graph index statement skipped")
			}
			continue
		}
	}
	return nil
}
