package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/supplychain-optimizer/server/internal/agent/model"
	errx "github.com/supplychain-optimizer/server/internal/core/error"
	logx "github.com/supplychain-optimizer/server/pkg/logger"
)

func (s *Server) invoke(c *gin.Context) {
	var req InvokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, errx.Validation("malformed request body: %v", err))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		abortWithError(c, errx.Validation("query must not be empty"))
		return
	}

	ctx := c.Request.Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	result, err := s.agent.Invoke(ctx, model.QueryInput{
		ConversationID: req.ConversationID,
		Query:          req.Query,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ErrConversationNotFound is returned for ids with no stored messages; the
// stores cannot tell an unknown id from an expired one.
var ErrConversationNotFound = errx.New(nil, http.StatusNotFound, "conversation not found or expired")

func (s *Server) getConversation(c *gin.Context) {
	history, err := s.agent.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if history == nil || len(history.Messages) == 0 {
		abortWithError(c, ErrConversationNotFound)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) deleteConversation(c *gin.Context) {
	if err := s.agent.Clear(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// ready runs every check; any failure makes the service unready.
func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.CheckTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK
	for _, check := range s.checks {
		if err := check.Ping(ctx); err != nil {
			logx.Warn().Err(err).Str("check", check.Name).Msg("Readiness check failed")
			resp.Checks[check.Name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	c.JSON(status, resp)
}

// abortWithError writes {"detail": ...} with the status carried by err.
func abortWithError(c *gin.Context, err error) {
	status := errx.StatusOf(err)
	if errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	_ = c.Error(err)

	event := logx.Warn()
	if status >= http.StatusInternalServerError {
		event = logx.Error()
	}
	event.Err(err).Int("status", status).Str("request_id", c.GetString(requestIDKey)).Msg("Request failed")

	c.AbortWithStatusJSON(status, ErrorResponse{Detail: err.Error()})
}
