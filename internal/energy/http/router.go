package http

import "github.com/gin-gonic/gin"

// Register registers the energy analysis routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/analysis/runs", h.RunEnergyAnalysis)
	rg.GET("/analysis/runs/:run_id", h.GetRun)
	rg.DELETE("/analysis/runs/:run_id", h.DeleteRun)
	rg.GET("/analysis/batches/:batch_id", h.GetBatch)
	rg.GET("/analysis/projects/:project_id/runs", h.ListProjectRuns)
	rg.GET("/analysis/projects/:project_id/history", h.ListProjectHistory)

	rg.GET("/projects", h.ListProjects)
	rg.POST("/projects", h.CreateProject)

	rg.POST("/exports/mass", h.ExportMass)
	rg.POST("/exports/zones", h.ExportZones)

	rg.POST("/solar", h.SetAzimuthAltitude)
}
