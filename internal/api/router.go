package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine for the Admission HTTP surface.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	jobs := r.Group("/jobs")
	{
		jobs.POST("", h.HandleSubmitJob)
		jobs.GET("/:id", h.HandleGetStatus)
		jobs.GET("/:id/content", h.HandleGetContent)
		jobs.GET("/:id/stream", h.HandleStream)
		jobs.DELETE("/:id", h.HandleDeleteJob)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
