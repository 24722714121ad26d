package http

import (
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/service"
)

// Handler handles HTTP requests for energy analysis
type Handler struct {
	analysis *service.AnalysisService
	projects *service.ProjectService
	exports  *service.ExportService
	solar    *service.SolarService
}

// New creates a new Handler
func New(analysis *service.AnalysisService, projects *service.ProjectService, exports *service.ExportService, solar *service.SolarService) *Handler {
	return &Handler{
		analysis: analysis,
		projects: projects,
		exports:  exports,
		solar:    solar,
	}
}
