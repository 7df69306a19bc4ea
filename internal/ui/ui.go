package ui

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed template/index.html
var files embed.FS

const (
	pageName     = "index.html"
	defaultTitle = "Supply Chain Optimizer Agent"
)

// DefaultQuery prefills the query box.
const DefaultQuery = "Simulate the impact if Shanghai suppliers are delayed by 5 days."

// Config is read from UI_* variables.
type Config struct {
	// APIURL is where the page posts queries; empty means the serving origin.
	APIURL       string `envconfig:"UI_API_URL"`
	DefaultQuery string `envconfig:"UI_DEFAULT_QUERY"`
}

// Template parses the embedded page.
func Template() (*template.Template, error) {
	return template.ParseFS(files, "template/"+pageName)
}

// Handler renders the page. The engine must have Template installed via SetHTMLTemplate.
func Handler(cfg Config) gin.HandlerFunc {
	query := cfg.DefaultQuery
	if strings.TrimSpace(query) == "" {
		query = DefaultQuery
	}
	data := gin.H{
		"Title":        defaultTitle,
		"APIURL":       strings.TrimRight(cfg.APIURL, "/"),
		"DefaultQuery": query,
	}
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, pageName, data)
	}
}
