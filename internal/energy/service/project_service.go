package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

// CultureInfo is sent with every new project
const CultureInfo = "en-US"

// ProjectCloud is the part of the GBS client project resolution needs
type ProjectCloud interface {
	Authenticate() error
	GetProjectList(ctx context.Context) ([]gbs.Project, error)
	GetDefaultUtilityCost(ctx context.Context, buildingTypeID int, lat, lon float64) (*gbs.DefaultUtilityItem, error)
	CreateProject(ctx context.Context, item gbs.NewProjectItem) (int, error)
}

// ProjectCache keeps the last project list
type ProjectCache interface {
	Get(ctx context.Context) ([]domain.Project, bool, error)
	Set(ctx context.Context, projects []domain.Project) error
	Invalidate(ctx context.Context) error
}

// ProjectService resolves GBS projects by title and creates missing ones
type ProjectService struct {
	cloud ProjectCloud
	host  host.Host
	cache ProjectCache
}

// NewProjectService creates a new ProjectService. cache may be nil.
func NewProjectService(cloud ProjectCloud, h host.Host, cache ProjectCache) *ProjectService {
	return &ProjectService{
		cloud: cloud,
		host:  h,
		cache: cache,
	}
}

// CreateProject returns the id of the project titled title, creating it
// from the active document when none exists. Titles are matched exactly.
func (s *ProjectService) CreateProject(ctx context.Context, title string) (int, error) {
	logger := logging.New(ctx)

	if strings.TrimSpace(title) == "" {
		return 0, fmt.Errorf("%w: project title is required", domain.ErrInvalidInput)
	}
	if err := s.cloud.Authenticate(); err != nil {
		return 0, fmt.Errorf("load sso: %w", err)
	}

	projects, err := s.cloud.GetProjectList(ctx)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}

	var matches []gbs.Project
	for _, p := range projects {
		if p.Title == title {
			matches = append(matches, p)
		}
	}
	if len(matches) > 1 {
		return 0, fmt.Errorf("%w: Multiple Projects with this title %s exist. Try with another name or use the project id.",
			domain.ErrAmbiguousProject, title)
	}
	if len(matches) == 1 {
		return matches[0].ID, nil
	}

	doc, err := s.host.ActiveDocument()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", host.ErrNoActiveDocument, err)
	}
	site, err := doc.SiteLocation()
	if err != nil {
		return 0, fmt.Errorf("read site location: %w", err)
	}
	settings, err := doc.EnergySettings()
	if err != nil {
		return 0, fmt.Errorf("read energy settings: %w", err)
	}

	lat := site.Latitude * 180 / math.Pi
	lon := site.Longitude * 180 / math.Pi
	buildingTypeID := gbs.RemapBuildingType(settings.BuildingType)
	scheduleID := gbs.RemapScheduleType(settings.OperatingSchedule)

	utility, err := s.cloud.GetDefaultUtilityCost(ctx, buildingTypeID, lat, lon)
	if err != nil {
		return 0, fmt.Errorf("get default utility cost: %w", err)
	}

	id, err := s.cloud.CreateProject(ctx, gbs.NewProjectItem{
		Title:          title,
		Demo:           false,
		BuildingTypeID: buildingTypeID,
		ScheduleID:     scheduleID,
		Latitude:       lat,
		Longitude:      lon,
		ElecCost:       utility.ElecCost,
		FuelCost:       utility.FuelCost,
		CultureInfo:    CultureInfo,
	})
	if err != nil {
		return 0, fmt.Errorf("create project: %w", err)
	}
	logger.LogInfof("create_project", "project_id=%d title=%q building_type=%d schedule=%d", id, title, buildingTypeID, scheduleID)

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.LogWarnf("create_project", "invalidate project cache: %v", err)
		}
	}
	return id, nil
}

// ListProjects returns the project list, from the cache when it is warm
func (s *ProjectService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	if s.cache != nil {
		projects, ok, err := s.cache.Get(ctx)
		if err != nil {
			logging.New(ctx).LogWarnf("list_projects", "project cache read: %v", err)
		} else if ok {
			return projects, nil
		}
	}
	return s.RefreshProjects(ctx)
}

// RefreshProjects fetches the project list and stores it in the cache
func (s *ProjectService) RefreshProjects(ctx context.Context) ([]domain.Project, error) {
	if err := s.cloud.Authenticate(); err != nil {
		return nil, fmt.Errorf("load sso: %w", err)
	}
	list, err := s.cloud.GetProjectList(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(list))
	for _, p := range list {
		projects = append(projects, domain.Project{ID: p.ID, Title: p.Title})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, projects); err != nil {
			logging.New(ctx).LogWarnf("list_projects", "project cache write: %v", err)
		}
	}
	return projects, nil
}
