package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
)

const (
	runKeyPrefix        = "energy:run:"       // Key prefix for run data: energy:run:{run_id}
	projectRunSetPrefix = "energy:project:"   // Set of run IDs for a project: energy:project:{project_id}:runs
	batchRunSetPrefix   = "energy:batch:"     // Set of run IDs uploaded together: energy:batch:{batch_id}:runs
	runTTL              = 30 * 24 * time.Hour // TTL for run data (30 days)
)

// RunRepository keeps the ledger of GBS runs in Redis
type RunRepository struct {
	client *redis.Client
}

// NewRunRepository creates a new RunRepository
func NewRunRepository(client *redis.Client) *RunRepository {
	return &RunRepository{client: client}
}

// Create stores a run and indexes it by project and batch
func (r *RunRepository) Create(ctx context.Context, rec *domain.RunRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run data: %w", err)
	}

	id := strconv.Itoa(rec.RunID)
	projectKey := r.projectRunSetKey(rec.ProjectID)

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.runKey(rec.RunID), data, runTTL)
	pipe.SAdd(ctx, projectKey, id)
	pipe.Expire(ctx, projectKey, runTTL)
	if rec.BatchID != "" {
		batchKey := r.batchRunSetKey(rec.BatchID)
		pipe.SAdd(ctx, batchKey, id)
		pipe.Expire(ctx, batchKey, runTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// GetByRunID retrieves a run by its GBS id
func (r *RunRepository) GetByRunID(ctx context.Context, runID int) (*domain.RunRecord, error) {
	data, err := r.client.Get(ctx, r.runKey(runID)).Result()
	if err == redis.Nil {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var rec domain.RunRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}
	return &rec, nil
}

// ListByProjectID returns the recorded runs of a project, oldest first.
// Index entries whose run has expired are skipped.
func (r *RunRepository) ListByProjectID(ctx context.Context, projectID int) ([]*domain.RunRecord, error) {
	return r.listSet(ctx, r.projectRunSetKey(projectID))
}

// ListByBatchID returns the runs uploaded in one batch
func (r *RunRepository) ListByBatchID(ctx context.Context, batchID string) ([]*domain.RunRecord, error) {
	return r.listSet(ctx, r.batchRunSetKey(batchID))
}

// Delete removes a run and its index entries
func (r *RunRepository) Delete(ctx context.Context, runID int) error {
	rec, err := r.GetByRunID(ctx, runID)
	if err != nil {
		return err
	}

	id := strconv.Itoa(runID)
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.runKey(runID))
	pipe.SRem(ctx, r.projectRunSetKey(rec.ProjectID), id)
	if rec.BatchID != "" {
		pipe.SRem(ctx, r.batchRunSetKey(rec.BatchID), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

func (r *RunRepository) listSet(ctx context.Context, setKey string) ([]*domain.RunRecord, error) {
	members, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	records := make([]*domain.RunRecord, 0, len(members))
	for _, m := range members {
		runID, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		rec, err := r.GetByRunID(ctx, runID)
		if err == domain.ErrRunNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].RunID < records[j].RunID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

// Helper methods for key generation
func (r *RunRepository) runKey(runID int) string {
	return fmt.Sprintf("%s%d", runKeyPrefix, runID)
}

func (r *RunRepository) projectRunSetKey(projectID int) string {
	return fmt.Sprintf("%s%d:runs", projectRunSetPrefix, projectID)
}

func (r *RunRepository) batchRunSetKey(batchID string) string {
	return fmt.Sprintf("%s%s:runs", batchRunSetPrefix, batchID)
}
