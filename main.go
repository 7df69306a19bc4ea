package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/supplychain-optimizer/server/internal/agent/graph"
	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/agent/repo"
	"github.com/supplychain-optimizer/server/internal/api"
	"github.com/supplychain-optimizer/server/internal/core"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
	"github.com/supplychain-optimizer/server/internal/supplychain"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
	pkgneo4j "github.com/supplychain-optimizer/server/pkg/neo4j"
	pkgredis "github.com/supplychain-optimizer/server/pkg/redis"
	"github.com/supplychain-optimizer/server/pkg/tracing"
)

const serviceName = "supply-chain-agent"

// AppConfig defines all configurable parameters for the API server,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Env string `envconfig:"APP_ENV" default:"development"`

	// Infrastructure
	HTTP    api.Config
	Neo4j   pkgneo4j.Config
	Redis   pkgredis.Config
	Tracing tracing.Config

	// LLM provider
	Gemini model.GeminiConfig

	// Agent configs
	Agent        model.AgentModelConfig
	Planner      model.PlannerModelConfig
	Conversation model.ConversationConfig
	Tools        model.ToolConfig
}

func main() {
	if err := run(); err != nil {
		logx.Fatal().Err(err).Msg("Server exited")
	}
}

func run() error {
	if err := godotenv.Load(".env"); err != nil {
		logx.Warn().Err(err).Msg("Could not load .env file")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("failed to process environment config: %w", err)
	}

	env := core.ParseEnvironment(cfg.Env)
	logx.Init(logx.LoggerOpts{Environment: env, Service: serviceName})
	gin.SetMode(env.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logx.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	driver, err := cfg.Neo4j.New(ctx)
	if err != nil {
		return errx.WrapNeo4j(err)
	}
	defer driver.Close(context.Background())
	store := supplychain.NewStore(driver, cfg.Neo4j.Database)
	logx.Info().Str("uri", cfg.Neo4j.URI).Msg("Connected to Neo4j")

	var conversations model.ConversationRepository
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialise Redis client: %w", err)
		}
		defer rdb.Close()
		conversations = repo.NewRedisConversationRepository(rdb, cfg.Conversation.TTL)
		logx.Info().Msg("Connected to Redis")
	} else {
		conversations = repo.NewMemoryConversationRepository(cfg.Conversation.TTL)
		logx.Warn().Msg("REDIS_URL not set, keeping conversations in memory")
	}

	runner, err := graph.BuildAgentGraph(ctx, graph.Config{
		Gemini:           cfg.Gemini,
		Agent:            cfg.Agent,
		Planner:          cfg.Planner,
		Conversation:     cfg.Conversation,
		Tools:            cfg.Tools,
		ConversationRepo: conversations,
		Graph:            store,
	})
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	server, err := api.NewServer(cfg.HTTP, runner,
		api.Check{Name: "neo4j", Ping: store.Ping},
		api.Check{Name: "conversations", Ping: conversations.Ping},
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := server.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}
