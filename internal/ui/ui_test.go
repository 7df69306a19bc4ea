package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, cfg Config) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tpl, err := Template()
	require.NoError(t, err)

	engine := gin.New()
	engine.SetHTMLTemplate(tpl)
	engine.GET("/", Handler(cfg))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestPageDefaults(t *testing.T) {
	body := render(t, Config{})

	assert.Contains(t, body, "Supply Chain Optimizer Agent")
	assert.Contains(t, body, `value="Simulate the impact if Shanghai suppliers are delayed by 5 days."`)
	assert.Contains(t, body, "Invoke Agent")
	assert.Contains(t, body, "Agent is thinking...")
	assert.Contains(t, body, `const apiURL = "";`)
}

func TestPageUsesConfiguredAPI(t *testing.T) {
	body := render(t, Config{APIURL: "http://localhost:8080/", DefaultQuery: "Which warehouses ship to Rotterdam?"})

	assert.Contains(t, body, "localhost:8080")
	assert.NotContains(t, body, "localhost:8080/")
	assert.Contains(t, body, "Which warehouses ship to Rotterdam?")
}
