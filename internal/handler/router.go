package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under the API prefix. A nil
// Exports handler leaves the export routes unregistered.
type Handlers struct {
	Allocations *AllocationHandler
	Drafts      *DraftHandler
	Exports     *ExportHandler
	Metrics     *MetricsHandler
}

// Register mounts health routes at the root and the API under prefix. write runs
// ahead of every mutating route.
func Register(r *gin.Engine, prefix string, h Handlers, write ...gin.HandlerFunc) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	mutating := api.Group("", write...)

	if h.Allocations != nil {
		api.GET("/slot-map", h.Allocations.SlotMap)
		mutating.POST("/allocations", h.Allocations.Allocate)
		mutating.POST("/allocations/upload", h.Allocations.Upload)
	}

	if h.Drafts != nil {
		api.GET("/drafts", h.Drafts.List)
		api.GET("/drafts/:id", h.Drafts.Get)
		api.GET("/drafts/:id/stats", h.Drafts.Stats)
		mutating.POST("/drafts", h.Drafts.Create)
		mutating.PUT("/drafts/:id", h.Drafts.Update)
		mutating.DELETE("/drafts/:id", h.Drafts.Delete)
		mutating.POST("/drafts/:id/allocate", h.Drafts.Allocate)
	}

	if h.Exports != nil {
		api.GET("/drafts/:id/exports", h.Exports.ListByDraft)
		api.GET("/exports/:id", h.Exports.Status)
		api.GET("/exports/download/:token", h.Exports.Download)
		mutating.POST("/drafts/:id/exports", h.Exports.Create)
	}
}
