package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	"github.com/supplychain-optimizer/server/internal/ui"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

// Agent answers queries and exposes the conversations it keeps.
type Agent interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.QueryResult, error)
	History(ctx context.Context, conversationID string) (*model.ConversationHistory, error)
	Clear(ctx context.Context, conversationID string) error
}

// Check is a named readiness check, e.g. a Neo4j or Redis ping.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Config is read from the environment.
type Config struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	AllowOrigins    []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
	RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	CheckTimeout    time.Duration `envconfig:"HTTP_CHECK_TIMEOUT" default:"3s"`
	UI              ui.Config
}

type Server struct {
	Engine *gin.Engine

	cfg    Config
	agent  Agent
	checks []Check
	http   *http.Server
}

// NewServer builds the engine and registers every route.
func NewServer(cfg Config, agent Agent, checks ...Check) (*Server, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent is nil")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 3 * time.Second
	}

	tpl, err := ui.Template()
	if err != nil {
		return nil, fmt.Errorf("parse ui template: %w", err)
	}

	engine := gin.New()
	engine.SetHTMLTemplate(tpl)
	engine.Use(
		gin.Recovery(),
		requestID(),
		tracingMiddleware(),
		requestLogger(),
		cors(cfg.AllowOrigins),
	)

	s := &Server{
		Engine: engine,
		cfg:    cfg,
		agent:  agent,
		checks: checks,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.Engine.GET("/", ui.Handler(s.cfg.UI))
	s.Engine.GET("/health", s.health)
	s.Engine.GET("/ready", s.ready)
	s.Engine.POST("/invoke", s.invoke)
	s.Engine.GET("/conversations/:id", s.getConversation)
	s.Engine.DELETE("/conversations/:id", s.deleteConversation)

	s.Engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Detail: "Not Found"})
	})
}

// Start serves until Shutdown is called. It returns nil on a clean shutdown.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logx.Info().Str("addr", s.http.Addr).Msg("Server starting")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logx.Info().Msg("Server shutting down")
	return s.http.Shutdown(ctx)
}
