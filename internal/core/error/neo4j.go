package errx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// WrapNeo4j maps driver errors to AppError. Client-side query errors become
// 400, connectivity problems 503 and everything else 502.
func WrapNeo4j(err error) error {
	if err == nil {
		return nil
	}

	if neo4j.IsConnectivityError(err) {
		return New(err, http.StatusServiceUnavailable, GraphUnavailableMessage)
	}

	var dbErr *neo4j.Neo4jError
	if errors.As(err, &dbErr) && strings.HasPrefix(dbErr.Code, "Neo.ClientError.") {
		return New(err, http.StatusBadRequest, GraphQueryMessage)
	}

	return New(err, http.StatusBadGateway, GraphErrorMessage)
}
