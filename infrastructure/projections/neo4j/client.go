package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Statement is one parameterised Cypher statement.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Writer runs statements in a single write transaction.
type Writer interface {
	Write(ctx context.Context, stmts ...Statement) error
}

// Client wraps the driver for write transactions against one database.
type Client struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewClient connects and verifies connectivity.
func NewClient(ctx context.Context, uri, username, password, database string, logger *zap.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""), func(cfg *neo4j.Config) {
		cfg.MaxConnectionPoolSize = 50
		cfg.SocketConnectTimeout = 10 * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity: %w", err)
	}

	logger.Info("Connected to Neo4j", zap.String("uri", uri), zap.String("database", database))
	return &Client{driver: driver, database: database, logger: logger}, nil
}

// Write executes the statements in one managed transaction.
func (c *Client) Write(ctx context.Context, stmts ...Statement) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, stmt := range stmts {
			res, err := tx.Run(ctx, stmt.Cypher, stmt.Params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j write transaction failed: %w", err)
	}
	return nil
}

// Ping checks connectivity for the readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

// Close releases the driver.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.driver == nil {
		return nil
	}
	return c.driver.Close(ctx)
}
