package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"
)

// Config is read from NEO4J_* variables.
type Config struct {
	URI                   string `split_words:"true" default:"neo4j://localhost:7687"`
	Username              string `split_words:"true" default:"neo4j"`
	Password              string `split_words:"true"`
	Database              string `split_words:"true"`
	MaxConnectionPoolSize int    `split_words:"true" default:"50"`
	ConnectionTimeout     int    `split_words:"true" default:"5"`
}

// New creates a driver and verifies that the server is reachable.
func (c *Config) New(ctx context.Context) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(
		c.URI,
		neo4j.BasicAuth(c.Username, c.Password, ""),
		func(cfg *config.Config) {
			if c.MaxConnectionPoolSize > 0 {
				cfg.MaxConnectionPoolSize = c.MaxConnectionPoolSize
			}
			if c.ConnectionTimeout > 0 {
				cfg.SocketConnectTimeout = time.Duration(c.ConnectionTimeout) * time.Second
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	return driver, nil
}
