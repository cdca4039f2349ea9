package http

import (
	nethttp "net/http"

	"github.com/gin-gonic/gin"
)

// RouterConfig aggregates the dependencies for the route tree.
type RouterConfig struct {
	TagHandler     *TagHandler
	MetricsHandler nethttp.Handler
	Mode           string
}

// NewRouter constructs the gin engine: the tagging endpoint under /v1,
// public health, and the metrics exposition endpoint.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", cfg.TagHandler.Healthz)
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	v1 := r.Group("/v1")
	v1.POST("/tag", cfg.TagHandler.Tag)

	return r
}
