package errx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", New(nil, http.StatusTeapot, "boom").Error())
	assert.Equal(t, "boom: cause", New(errors.New("cause"), http.StatusTeapot, "boom").Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("cause")
	err := fmt.Errorf("outer: %w", New(cause, http.StatusBadGateway, "wrapped"))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))
	assert.Equal(t, http.StatusNotFound, StatusOf(WrapRedis(redis.Nil)))
	assert.Equal(t, http.StatusBadGateway, StatusOf(WrapRedis(errors.New("dial tcp: refused"))))
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(WrapRedis(redis.ErrClosed)))
	assert.Equal(t, http.StatusGatewayTimeout, StatusOf(WrapRedis(fmt.Errorf("lrange: %w", context.DeadlineExceeded))))
}

func TestWrapNeo4j(t *testing.T) {
	assert.NoError(t, WrapNeo4j(nil))

	syntax := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "Invalid input"}
	assert.Equal(t, http.StatusBadRequest, StatusOf(WrapNeo4j(syntax)))

	transient := &neo4j.Neo4jError{Code: "Neo.TransientError.General.DatabaseUnavailable", Msg: "down"}
	assert.Equal(t, http.StatusBadGateway, StatusOf(WrapNeo4j(transient)))
}

func TestValidation(t *testing.T) {
	err := Validation("query is %s", "empty")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Contains(t, err.Error(), "query is empty")
}

func TestStatusOfPlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("plain")))
}

func TestWrapLLMKeepsAppError(t *testing.T) {
	inner := Validation("bad")
	assert.Same(t, inner, WrapLLM(inner))
	assert.Equal(t, http.StatusBadGateway, StatusOf(WrapLLM(errors.New("quota"))))
}
