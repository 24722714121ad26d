package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/service"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/gbs"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/host/hosttest"
)

type stubCloud struct {
	projects []gbs.Project
	runID    int
	listErr  error
}

func (c *stubCloud) Authenticate() error { return nil }

func (c *stubCloud) ExecuteMassRuns(context.Context, int, bool) error { return nil }

func (c *stubCloud) CreateBaseRun(context.Context, int, string, time.Duration) (*int, error) {
	id := c.runID
	return &id, nil
}

func (c *stubCloud) GetProjectList(context.Context) ([]gbs.Project, error) {
	return c.projects, c.listErr
}

func (c *stubCloud) GetDefaultUtilityCost(context.Context, int, float64, float64) (*gbs.DefaultUtilityItem, error) {
	return &gbs.DefaultUtilityItem{}, nil
}

func (c *stubCloud) CreateProject(context.Context, gbs.NewProjectItem) (int, error) {
	return 99, nil
}

func setupRouter(t *testing.T, cloud *stubCloud, h *hosttest.Host) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := New(
		service.NewAnalysisService(cloud, nil, nil),
		service.NewProjectService(cloud, h, nil),
		service.NewExportService(h),
		service.NewSolarService(h),
	)
	r := gin.New()
	handler.Register(r.Group("/api/v1"))
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRunEnergyAnalysisHandler(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.xml")
	require.NoError(t, os.WriteFile(path, []byte("<gbXML/>"), 0o644))
	r := setupRouter(t, &stubCloud{runID: 31}, hosttest.New())

	t.Run("uploads files", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/analysis/runs", map[string]any{
			"project_id": 7,
			"file_paths": []string{path},
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decode(t, w)
		assert.Equal(t, []any{float64(31)}, body["run_ids"])
		assert.Equal(t, []any{"Success!"}, body["reports"])
		assert.Equal(t, "applied", body["mass_runs"])
	})

	t.Run("rejects bad files with 400", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/analysis/runs", map[string]any{
			"project_id": 7,
			"file_paths": []string{filepath.Join(dir, "missing.xml")},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w)["error"], "The file doesn't exists!")
	})

	t.Run("requires a project id", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/api/v1/analysis/runs", map[string]any{"file_paths": []string{path}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analysis/runs", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetRunHandler(t *testing.T) {
	r := setupRouter(t, &stubCloud{}, hosttest.New())

	w := doJSON(r, http.MethodGet, "/api/v1/analysis/runs/12", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "no ledger configured")

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/runs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/projects/7/runs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["runs"])
}

func TestProjectHandlers(t *testing.T) {
	cloud := &stubCloud{projects: []gbs.Project{{ID: 1, Title: "Tower"}, {ID: 2, Title: "Twin"}, {ID: 3, Title: "Twin"}}}
	r := setupRouter(t, cloud, hosttest.New())

	w := doJSON(r, http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["projects"], 3)

	w = doJSON(r, http.MethodPost, "/api/v1/projects", domain.ProjectRequest{Title: "Tower"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["project_id"])

	w = doJSON(r, http.MethodPost, "/api/v1/projects", domain.ProjectRequest{Title: "New"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(99), decode(t, w)["project_id"])

	w = doJSON(r, http.MethodPost, "/api/v1/projects", domain.ProjectRequest{Title: "Twin"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Multiple Projects with this title Twin exist")
}

func TestProjectHandlers_UpstreamFailure(t *testing.T) {
	r := setupRouter(t, &stubCloud{listErr: errors.New("gbs down")}, hosttest.New())

	w := doJSON(r, http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to list projects", decode(t, w)["error"])
}

func TestExportHandlers(t *testing.T) {
	h := hosttest.New()
	h.Doc.MassModels = map[host.ElementID]host.ElementID{100: 200}
	h.Doc.Zones = map[host.ElementID][]host.ElementID{200: {301}}
	h.Doc.Levels = map[host.ElementID][]host.ElementID{150: {402}}
	r := setupRouter(t, &stubCloud{}, h)
	dir := t.TempDir()

	w := doJSON(r, http.MethodPost, "/api/v1/exports/mass", domain.ExportRequest{
		FolderPath: dir, FileName: "tower", MassID: 100, Run: true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, service.ReportExported, body["report"])
	assert.Equal(t, filepath.Join(dir, "tower.xml"), body["path"])

	w = doJSON(r, http.MethodPost, "/api/v1/exports/zones", domain.ExportRequest{
		FolderPath: dir, FileName: "zones", ZoneIDs: []int64{301}, ShadingIDs: []int64{150}, Run: true,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Item 0 in MassShadingInstances")

	w = doJSON(r, http.MethodPost, "/api/v1/exports/zones", domain.ExportRequest{FolderPath: dir, FileName: "zones"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Set 'Connect' to True!", decode(t, w)["error"])

	w = doJSON(r, http.MethodPost, "/api/v1/exports/mass", domain.ExportRequest{
		FolderPath: dir, FileName: "tower", MassID: 5, Run: true,
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode(t, w)["error"], "Could not get the MassEnergyAnalyticalModel")
}

func TestSolarHandler(t *testing.T) {
	h := hosttest.New()
	h.Doc.View = &hosttest.View{Sun: &hosttest.Sun{}}
	r := setupRouter(t, &stubCloud{}, h)

	w := doJSON(r, http.MethodPost, "/api/v1/solar", domain.SolarRequest{Azimuth: 90, Altitude: 30})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success!", decode(t, w)["result"])

	w = doJSON(r, http.MethodPost, "/api/v1/solar", domain.SolarRequest{Azimuth: 400, Altitude: 30})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Az must be between 0 and 360", decode(t, w)["error"])

	h.DocErr = errors.New("closed")
	w = doJSON(r, http.MethodPost, "/api/v1/solar", domain.SolarRequest{Azimuth: 90, Altitude: 30})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type runLedger struct {
	records []*domain.RunRecord
}

func (l *runLedger) Create(_ context.Context, rec *domain.RunRecord) error {
	l.records = append(l.records, rec)
	return nil
}

func (l *runLedger) GetByRunID(_ context.Context, runID int) (*domain.RunRecord, error) {
	for _, r := range l.records {
		if r.RunID == runID {
			return r, nil
		}
	}
	return nil, domain.ErrRunNotFound
}

func (l *runLedger) ListByProjectID(_ context.Context, projectID int) ([]*domain.RunRecord, error) {
	var out []*domain.RunRecord
	for _, r := range l.records {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *runLedger) ListByBatchID(_ context.Context, batchID string) ([]*domain.RunRecord, error) {
	var out []*domain.RunRecord
	for _, r := range l.records {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (l *runLedger) Delete(_ context.Context, runID int) error {
	for i, r := range l.records {
		if r.RunID == runID {
			l.records = append(l.records[:i], l.records[i+1:]...)
			return nil
		}
	}
	return domain.ErrRunNotFound
}

type historyLog struct {
	entries []*domain.UploadHistoryEntry
}

func (l *historyLog) Record(_ context.Context, e *domain.UploadHistoryEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *historyLog) ListByBatchID(_ context.Context, batchID string) ([]*domain.UploadHistoryEntry, error) {
	var out []*domain.UploadHistoryEntry
	for _, e := range l.entries {
		if e.BatchID == batchID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *historyLog) ListByProjectID(_ context.Context, projectID int, limit int) ([]*domain.UploadHistoryEntry, error) {
	var out []*domain.UploadHistoryEntry
	for _, e := range l.entries {
		if e.ProjectID == projectID && (limit <= 0 || len(out) < limit) {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestBatchAndHistoryHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	path := filepath.Join(dir, "a.xml")
	require.NoError(t, os.WriteFile(path, []byte("<gbXML/>"), 0o644))

	h := hosttest.New()
	cloud := &stubCloud{runID: 31}
	handler := New(
		service.NewAnalysisService(cloud, &runLedger{}, &historyLog{}),
		service.NewProjectService(cloud, h, nil),
		service.NewExportService(h),
		service.NewSolarService(h),
	)
	r := gin.New()
	handler.Register(r.Group("/api/v1"))

	w := doJSON(r, http.MethodPost, "/api/v1/analysis/runs", map[string]any{"project_id": 7, "file_paths": []string{path}})
	require.Equal(t, http.StatusOK, w.Code)
	batchID, _ := decode(t, w)["batch_id"].(string)
	require.NotEmpty(t, batchID)

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/batches/"+batchID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["runs"], 1)
	assert.Len(t, body["history"], 1)

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/batches/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/projects/7/history?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["history"], 1)

	w = doJSON(r, http.MethodGet, "/api/v1/analysis/projects/7/history?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/analysis/runs/31", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/analysis/runs/31", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/v1/analysis/runs/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHistoryHandler_NoStore(t *testing.T) {
	r := setupRouter(t, &stubCloud{}, hosttest.New())

	w := doJSON(r, http.MethodGet, "/api/v1/analysis/projects/7/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode(t, w)["history"])
}
