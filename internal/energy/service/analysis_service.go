package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/logging"
)

const (
	msgFileMissing   = "The file doesn't exists!"
	msgNotGBXML      = "Make sure to input files are gbxml files"
	gbXMLExtension   = ".xml"
	runFailedFormat  = "Couldn't run the analysis for the file: %s Try run the Analysis for this file again! "
	uploadFailFormat = "Couldn't upload gbxml file name : %s. Set timeout longer and try to run again! "
)

// RunCloud is the part of the GBS client the batch upload needs
type RunCloud interface {
	Authenticate() error
	ExecuteMassRuns(ctx context.Context, projectID int, execute bool) error
	CreateBaseRun(ctx context.Context, projectID int, gbXMLPath string, timeout time.Duration) (*int, error)
}

// RunRecorder stores successful runs
type RunRecorder interface {
	Create(ctx context.Context, rec *domain.RunRecord) error
	GetByRunID(ctx context.Context, runID int) (*domain.RunRecord, error)
	ListByProjectID(ctx context.Context, projectID int) ([]*domain.RunRecord, error)
	ListByBatchID(ctx context.Context, batchID string) ([]*domain.RunRecord, error)
	Delete(ctx context.Context, runID int) error
}

// HistoryRecorder stores every file outcome
type HistoryRecorder interface {
	Record(ctx context.Context, entry *domain.UploadHistoryEntry) error
	ListByBatchID(ctx context.Context, batchID string) ([]*domain.UploadHistoryEntry, error)
	ListByProjectID(ctx context.Context, projectID int, limit int) ([]*domain.UploadHistoryEntry, error)
}

// AnalysisService uploads gbXML files as base runs of a GBS project
type AnalysisService struct {
	cloud   RunCloud
	runs    RunRecorder
	history HistoryRecorder
}

// NewAnalysisService creates a new AnalysisService. runs and history may be nil.
func NewAnalysisService(cloud RunCloud, runs RunRecorder, history HistoryRecorder) *AnalysisService {
	return &AnalysisService{
		cloud:   cloud,
		runs:    runs,
		history: history,
	}
}

// RunEnergyAnalysis validates every file, then uploads them one by one.
// Upload failures are reported in the result, not returned.
func (s *AnalysisService) RunEnergyAnalysis(ctx context.Context, req domain.RunRequest) (*domain.BatchResult, error) {
	logger := logging.New(ctx)

	if err := validateRunFiles(req.FilePaths); err != nil {
		return nil, err
	}

	if err := s.cloud.Authenticate(); err != nil {
		return nil, fmt.Errorf("load sso: %w", err)
	}

	result := &domain.BatchResult{
		BatchID:     uuid.New().String(),
		RunIDs:      make([]domain.RunIDEntry, 0, len(req.FilePaths)),
		UploadTimes: make([]string, 0, len(req.FilePaths)),
		Reports:     make([]string, 0, len(req.FilePaths)),
		MassRuns:    domain.MassRunsApplied,
	}

	if err := s.cloud.ExecuteMassRuns(ctx, req.ProjectID, req.ExecuteParametric); err != nil {
		logger.LogWarnf("execute_mass_runs", "project_id=%d ignored error: %v", req.ProjectID, err)
		result.MassRuns = domain.MassRunsFailed
	}

	timeout := req.Timeout()
	for _, path := range req.FilePaths {
		name := filepath.Base(path)

		start := time.Now()
		runID, err := s.cloud.CreateBaseRun(ctx, req.ProjectID, path, timeout)
		elapsed := time.Since(start)

		var entry domain.RunIDEntry
		var report string
		switch {
		case err != nil:
			logger.LogErrorf("create_base_run", "file=%s: %v", name, err)
			entry.Error = fmt.Sprintf(runFailedFormat, name)
			report = fmt.Sprintf(uploadFailFormat, name)
		case runID == nil:
			logger.LogWarnf("create_base_run", "file=%s: no run id in response", name)
			report = fmt.Sprintf(uploadFailFormat, name)
		default:
			entry.ID = runID
			report = domain.ReportSuccess
		}

		uploadTime := formatElapsed(elapsed)
		result.RunIDs = append(result.RunIDs, entry)
		result.UploadTimes = append(result.UploadTimes, uploadTime)
		result.Reports = append(result.Reports, report)

		s.record(ctx, result.BatchID, req.ProjectID, path, entry.ID, elapsed, uploadTime, report)
	}

	logger.LogInfof("run_energy_analysis", "batch_id=%s project_id=%d files=%d", result.BatchID, req.ProjectID, len(req.FilePaths))
	return result, nil
}

// GetRun returns a recorded run
func (s *AnalysisService) GetRun(ctx context.Context, runID int) (*domain.RunRecord, error) {
	if s.runs == nil {
		return nil, domain.ErrRunNotFound
	}
	return s.runs.GetByRunID(ctx, runID)
}

// ListProjectRuns returns the recorded runs of a project
func (s *AnalysisService) ListProjectRuns(ctx context.Context, projectID int) ([]*domain.RunRecord, error) {
	if s.runs == nil {
		return []*domain.RunRecord{}, nil
	}
	return s.runs.ListByProjectID(ctx, projectID)
}

// DeleteRun removes a run from the ledger. The upload history is kept.
func (s *AnalysisService) DeleteRun(ctx context.Context, runID int) error {
	if s.runs == nil {
		return domain.ErrRunNotFound
	}
	if err := s.runs.Delete(ctx, runID); err != nil {
		return err
	}
	logging.New(ctx).LogInfof("delete_run", "run_id=%d", runID)
	return nil
}

// GetBatch returns the ledger runs and history entries of one batch.
// A batch nothing is known about is ErrBatchNotFound.
func (s *AnalysisService) GetBatch(ctx context.Context, batchID string) (*domain.BatchRecord, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, fmt.Errorf("%w: batch id is required", domain.ErrInvalidInput)
	}

	batch := &domain.BatchRecord{
		BatchID: batchID,
		Runs:    []*domain.RunRecord{},
		History: []*domain.UploadHistoryEntry{},
	}
	if s.runs != nil {
		runs, err := s.runs.ListByBatchID(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("list batch runs: %w", err)
		}
		if runs != nil {
			batch.Runs = runs
		}
	}
	if s.history != nil {
		entries, err := s.history.ListByBatchID(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("list batch history: %w", err)
		}
		if entries != nil {
			batch.History = entries
		}
	}

	if len(batch.Runs) == 0 && len(batch.History) == 0 {
		return nil, domain.ErrBatchNotFound
	}
	return batch, nil
}

// ListProjectHistory returns the latest upload outcomes of a project, newest
// first. Without a history store the list is empty.
func (s *AnalysisService) ListProjectHistory(ctx context.Context, projectID, limit int) ([]*domain.UploadHistoryEntry, error) {
	if s.history == nil {
		return []*domain.UploadHistoryEntry{}, nil
	}
	entries, err := s.history.ListByProjectID(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("list project history: %w", err)
	}
	return entries, nil
}

// record writes the ledger and history; failures are only logged
func (s *AnalysisService) record(ctx context.Context, batchID string, projectID int, path string, runID *int, elapsed time.Duration, uploadTime, report string) {
	logger := logging.New(ctx)

	if s.runs != nil && runID != nil {
		rec := &domain.RunRecord{
			RunID:      *runID,
			ProjectID:  projectID,
			FilePath:   path,
			UploadTime: uploadTime,
			BatchID:    batchID,
			CreatedAt:  time.Now(),
		}
		if err := s.runs.Create(ctx, rec); err != nil {
			logger.LogErrorf("record_run", "run_id=%d: %v", *runID, err)
		}
	}

	if s.history != nil {
		entry := &domain.UploadHistoryEntry{
			BatchID:   batchID,
			ProjectID: projectID,
			FilePath:  path,
			RunID:     runID,
			UploadMs:  elapsed.Milliseconds(),
			Report:    report,
		}
		if err := s.history.Record(ctx, entry); err != nil {
			logger.LogErrorf("record_history", "file=%s: %v", filepath.Base(path), err)
		}
	}
}

func validateRunFiles(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s %s", domain.ErrInvalidInput, msgFileMissing, p)
		}
		if filepath.Ext(p) != gbXMLExtension {
			return fmt.Errorf("%w: %s %s", domain.ErrInvalidInput, msgNotGBXML, p)
		}
	}
	return nil
}

// formatElapsed renders a duration as m:ss
func formatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
