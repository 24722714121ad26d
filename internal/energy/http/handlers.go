package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/auth"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

// RunEnergyAnalysis uploads gbXML files as base runs
func (h *Handler) RunEnergyAnalysis(c *gin.Context) {
	var req domain.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ProjectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id is required"})
		return
	}

	if uid := auth.UserFirebaseUID(c); uid != "" {
		logging.New(c.Request.Context()).LogInfof("run_energy_analysis", "firebase_uid=%s project_id=%d files=%d", uid, req.ProjectID, len(req.FilePaths))
	}

	result, err := h.analysis.RunEnergyAnalysis(c.Request.Context(), req)
	if err != nil {
		writeError(c, "run_energy_analysis", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun retrieves a recorded run by GBS run id
func (h *Handler) GetRun(c *gin.Context) {
	runID, err := strconv.Atoi(c.Param("run_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id must be a number"})
		return
	}

	run, err := h.analysis.GetRun(c.Request.Context(), runID)
	if err != nil {
		writeError(c, "get_run", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

// ListProjectRuns lists the recorded runs of a project
func (h *Handler) ListProjectRuns(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id must be a number"})
		return
	}

	runs, err := h.analysis.ListProjectRuns(c.Request.Context(), projectID)
	if err != nil {
		writeError(c, "list_project_runs", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// DeleteRun removes a run from the ledger
func (h *Handler) DeleteRun(c *gin.Context) {
	runID, err := strconv.Atoi(c.Param("run_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run_id must be a number"})
		return
	}

	if err := h.analysis.DeleteRun(c.Request.Context(), runID); err != nil {
		writeError(c, "delete_run", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBatch returns the recorded runs and upload history of one batch
func (h *Handler) GetBatch(c *gin.Context) {
	batch, err := h.analysis.GetBatch(c.Request.Context(), c.Param("batch_id"))
	if err != nil {
		writeError(c, "get_batch", err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

// ListProjectHistory lists the latest upload outcomes of a project
func (h *Handler) ListProjectHistory(c *gin.Context) {
	projectID, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id must be a number"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
	}

	entries, err := h.analysis.ListProjectHistory(c.Request.Context(), projectID, limit)
	if err != nil {
		writeError(c, "list_project_history", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// ListProjects lists the GBS projects, from the cache when it is warm
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.projects.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// CreateProject resolves a project by title, creating it when missing
func (h *Handler) CreateProject(c *gin.Context) {
	var req domain.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, err := h.projects.CreateProject(c.Request.Context(), req.Title)
	if err != nil {
		writeError(c, "create_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": id})
}

// ExportMass exports the analytical zones of one mass to gbXML
func (h *Handler) ExportMass(c *gin.Context) {
	var req domain.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.exports.ExportMass(c.Request.Context(), req)
	if err != nil {
		writeError(c, "export_mass", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportZones exports the given zones to gbXML
func (h *Handler) ExportZones(c *gin.Context) {
	var req domain.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.exports.ExportZones(c.Request.Context(), req)
	if err != nil {
		writeError(c, "export_zones", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SetAzimuthAltitude sets the sun position of the active view
func (h *Handler) SetAzimuthAltitude(c *gin.Context) {
	var req domain.SolarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	out, err := h.solar.SetAzimuthAltitude(c.Request.Context(), req)
	if err != nil {
		writeError(c, "set_azimuth_altitude", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": out})
}

// writeError maps service errors to status codes. Domain errors carry a
// message meant for the user; anything else is logged and hidden.
func writeError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err, domain.ErrInvalidInput)})
	case errors.Is(err, domain.ErrAmbiguousProject):
		c.JSON(http.StatusConflict, gin.H{"error": userMessage(err, domain.ErrAmbiguousProject)})
	case errors.Is(err, domain.ErrShadingHasFloors):
		c.JSON(http.StatusConflict, gin.H{"error": userMessage(err, domain.ErrShadingHasFloors)})
	case errors.Is(err, domain.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
	case errors.Is(err, domain.ErrBatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "batch not found"})
	case errors.Is(err, domain.ErrEnergyModel):
		c.JSON(http.StatusInternalServerError, gin.H{"error": userMessage(err, domain.ErrEnergyModel)})
	case errors.Is(err, domain.ErrSunSettings):
		c.JSON(http.StatusInternalServerError, gin.H{"error": userMessage(err, domain.ErrSunSettings)})
	case errors.Is(err, host.ErrNoActiveDocument):
		c.JSON(http.StatusNotFound, gin.H{"error": "no active document"})
	default:
		logging.New(c.Request.Context()).LogError(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + strings.ReplaceAll(operation, "_", " ")})
	}
}

// userMessage strips the sentinel prefix from "<sentinel>: <message>"
func userMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return rest
	}
	return msg
}
