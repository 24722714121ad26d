package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host/hosttest"
)

type memCache struct {
	projects    []domain.Project
	warm        bool
	getErr      error
	sets        int
	invalidated int
}

func (c *memCache) Get(context.Context) ([]domain.Project, bool, error) {
	return c.projects, c.warm, c.getErr
}

func (c *memCache) Set(_ context.Context, projects []domain.Project) error {
	c.projects = projects
	c.warm = true
	c.sets++
	return nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.projects = nil
	c.warm = false
	c.invalidated++
	return nil
}

func bostonHost() *hosttest.Host {
	h := hosttest.New()
	h.Doc.Site = host.SiteLocation{Latitude: 42.36 * math.Pi / 180, Longitude: -71.06 * math.Pi / 180}
	h.Doc.Settings = host.EnergySettings{BuildingType: "Hotel", OperatingSchedule: "TwentyFourHourSevenDayFacility"}
	return h
}

func TestCreateProject_ExistingTitle(t *testing.T) {
	h := bostonHost()
	cloud := &spyCloud{projects: []gbs.Project{{ID: 1, Title: "Tower"}, {ID: 2, Title: "Annex"}}}
	svc := NewProjectService(cloud, h, nil)

	id, err := svc.CreateProject(context.Background(), "Annex")
	require.NoError(t, err)
	assert.Equal(t, 2, id)
	assert.Empty(t, cloud.created)
	assert.Zero(t, h.Doc.SiteReads, "the document is only read when creating")
}

func TestCreateProject_AmbiguousTitle(t *testing.T) {
	cloud := &spyCloud{projects: []gbs.Project{{ID: 1, Title: "Tower"}, {ID: 5, Title: "Tower"}}}
	svc := NewProjectService(cloud, bostonHost(), nil)

	_, err := svc.CreateProject(context.Background(), "Tower")
	assert.ErrorIs(t, err, domain.ErrAmbiguousProject)
	assert.Contains(t, err.Error(), "Multiple Projects with this title Tower exist")
	assert.Empty(t, cloud.created)
}

func TestCreateProject_MatchIsExact(t *testing.T) {
	cloud := &spyCloud{projects: []gbs.Project{{ID: 1, Title: "tower"}, {ID: 2, Title: "Tower "}}, createID: 77}
	svc := NewProjectService(cloud, bostonHost(), nil)

	id, err := svc.CreateProject(context.Background(), "Tower")
	require.NoError(t, err)
	assert.Equal(t, 77, id)
	assert.Len(t, cloud.created, 1)
}

func TestCreateProject_CreatesFromDocument(t *testing.T) {
	h := bostonHost()
	cloud := &spyCloud{
		utility:  &gbs.DefaultUtilityItem{ElecCost: 0.12, FuelCost: 0.9},
		createID: 4242,
	}
	cache := &memCache{projects: []domain.Project{{ID: 1, Title: "Old"}}, warm: true}
	svc := NewProjectService(cloud, h, cache)

	id, err := svc.CreateProject(context.Background(), "New Tower")
	require.NoError(t, err)
	assert.Equal(t, 4242, id)

	require.Len(t, cloud.created, 1)
	item := cloud.created[0]
	assert.Equal(t, "New Tower", item.Title)
	assert.False(t, item.Demo)
	assert.Equal(t, gbs.RemapBuildingType("Hotel"), item.BuildingTypeID)
	assert.Equal(t, gbs.RemapScheduleType("TwentyFourHourSevenDayFacility"), item.ScheduleID)
	assert.InDelta(t, 42.36, item.Latitude, 1e-9)
	assert.InDelta(t, -71.06, item.Longitude, 1e-9)
	assert.Equal(t, 0.12, item.ElecCost)
	assert.Equal(t, 0.9, item.FuelCost)
	assert.Equal(t, CultureInfo, item.CultureInfo)

	require.Len(t, cloud.utilityQuery, 3)
	assert.Equal(t, float64(item.BuildingTypeID), cloud.utilityQuery[0])
	assert.InDelta(t, 42.36, cloud.utilityQuery[1], 1e-9)

	assert.Equal(t, 1, cache.invalidated)
	assert.False(t, cache.warm)
}

func TestCreateProject_Errors(t *testing.T) {
	t.Run("empty title", func(t *testing.T) {
		cloud := &spyCloud{}
		_, err := NewProjectService(cloud, bostonHost(), nil).CreateProject(context.Background(), "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, cloud.authCalls)
	})

	t.Run("sso failure", func(t *testing.T) {
		cloud := &spyCloud{authErr: errors.New("no companion")}
		_, err := NewProjectService(cloud, bostonHost(), nil).CreateProject(context.Background(), "X")
		assert.Error(t, err)
		assert.Zero(t, cloud.listCalls)
	})

	t.Run("list failure", func(t *testing.T) {
		cloud := &spyCloud{listErr: errors.New("500")}
		_, err := NewProjectService(cloud, bostonHost(), nil).CreateProject(context.Background(), "X")
		assert.Error(t, err)
		assert.Empty(t, cloud.created)
	})

	t.Run("no active document", func(t *testing.T) {
		h := bostonHost()
		h.DocErr = errors.New("closed")
		cloud := &spyCloud{}
		_, err := NewProjectService(cloud, h, nil).CreateProject(context.Background(), "X")
		assert.ErrorIs(t, err, host.ErrNoActiveDocument)
		assert.Empty(t, cloud.created)
	})
}

func TestListProjects_UsesCache(t *testing.T) {
	cloud := &spyCloud{projects: []gbs.Project{{ID: 3, Title: "Lab", BuildingTypeID: 9}}}
	cache := &memCache{}
	svc := NewProjectService(cloud, bostonHost(), cache)

	first, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Project{{ID: 3, Title: "Lab"}}, first)
	assert.Equal(t, 1, cloud.listCalls)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cloud.listCalls, "second call is served from the cache")
}

func TestListProjects_CacheErrorFallsBack(t *testing.T) {
	cloud := &spyCloud{projects: []gbs.Project{{ID: 3, Title: "Lab"}}}
	cache := &memCache{getErr: errors.New("redis down")}
	svc := NewProjectService(cloud, bostonHost(), cache)

	projects, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.Equal(t, 1, cloud.listCalls)
}

func TestListProjects_NoCache(t *testing.T) {
	cloud := &spyCloud{}
	svc := NewProjectService(cloud, bostonHost(), nil)

	projects, err := svc.ListProjects(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}
