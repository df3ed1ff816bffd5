package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smilemakc/contentforge/internal/cache"
	"github.com/smilemakc/contentforge/internal/platform/logger"
)

// Handlers binds the Admission service to gin routes.
type Handlers struct {
	admission *Admission
	statusCache *cache.StatusCache
	log       *logger.Logger
}

func NewHandlers(admission *Admission, statusCache *cache.StatusCache) *Handlers {
	return &Handlers{admission: admission, statusCache: statusCache, log: logger.Default().With("component", "api")}
}

// HandleSubmitJob handles POST /jobs.
func (h *Handlers) HandleSubmitJob(c *gin.Context) {
	var req SubmitJobRequest
	if err := bindJSON(c, &req); err != nil {
		return
	}

	jobID, err := h.admission.SubmitJob(c.Request.Context(), req)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, gin.H{"job_id": jobID})
}

// HandleGetStatus handles GET /jobs/:id.
func (h *Handlers) HandleGetStatus(c *gin.Context) {
	jobID, ok := getParam(c, "id")
	if !ok {
		return
	}

	if snap, hit := h.statusCache.Get(c.Request.Context(), jobID); hit {
		respondJSON(c, http.StatusOK, snap)
		return
	}

	status, err := h.admission.GetStatus(c.Request.Context(), jobID)
	if err != nil {
		respondAPIError(c, err)
		return
	}

	h.statusCache.Set(c.Request.Context(), jobID, cache.StatusSnapshot{
		Status:                    status.Status,
		Progress:                  status.Progress,
		TotalContentGenerated:     status.TotalContentGenerated,
		TotalBlogs:                status.TotalBlogs,
		GeneratedTitles:           status.GeneratedTitles,
		ErrorMessage:              status.ErrorMessage,
		EstimatedSecondsRemaining: status.EstimatedSecondsRemaining,
	})
	respondJSON(c, http.StatusOK, status)
}

// HandleGetContent handles GET /jobs/:id/content.
func (h *Handlers) HandleGetContent(c *gin.Context) {
	jobID, ok := getParam(c, "id")
	if !ok {
		return
	}

	content, err := h.admission.GetContent(c.Request.Context(), jobID)
	if err != nil {
		respondAPIError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, content)
}

// HandleDeleteJob handles DELETE /jobs/:id.
func (h *Handlers) HandleDeleteJob(c *gin.Context) {
	jobID, ok := getParam(c, "id")
	if !ok {
		return
	}

	if err := h.admission.DeleteJob(c.Request.Context(), jobID); err != nil {
		respondAPIError(c, err)
		return
	}
	h.statusCache.Invalidate(c.Request.Context(), jobID)
	c.Status(http.StatusNoContent)
}
