package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/go-energy-analysis/internal/energy/domain"
)

// HistoryRepository handles PostgreSQL operations for the upload history
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const historySchema = `
	CREATE TABLE IF NOT EXISTS energy_upload_history (
		id          UUID PRIMARY KEY,
		batch_id    TEXT NOT NULL,
		project_id  INTEGER NOT NULL,
		file_path   TEXT NOT NULL,
		run_id      INTEGER,
		upload_ms   BIGINT NOT NULL,
		report      TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS energy_upload_history_batch_idx ON energy_upload_history (batch_id);
	CREATE INDEX IF NOT EXISTS energy_upload_history_project_idx ON energy_upload_history (project_id, created_at DESC);
`

// EnsureSchema creates the history table when it is missing
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create upload history schema: %w", err)
	}
	return nil
}

// Record inserts one file outcome
func (r *HistoryRepository) Record(ctx context.Context, entry *domain.UploadHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	query := `
		INSERT INTO energy_upload_history (
			id, batch_id, project_id, file_path, run_id, upload_ms, report
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	var runID sql.NullInt64
	if entry.RunID != nil {
		runID = sql.NullInt64{Int64: int64(*entry.RunID), Valid: true}
	}

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query,
		entry.ID,
		entry.BatchID,
		entry.ProjectID,
		entry.FilePath,
		runID,
		entry.UploadMs,
		entry.Report,
	).Scan(&createdAt)
	if err != nil {
		return fmt.Errorf("failed to record upload history: %w", err)
	}

	entry.CreatedAt = createdAt
	return nil
}

// ListByBatchID returns the outcomes of one batch in upload order
func (r *HistoryRepository) ListByBatchID(ctx context.Context, batchID string) ([]*domain.UploadHistoryEntry, error) {
	query := `
		SELECT id, batch_id, project_id, file_path, run_id, upload_ms, report, created_at
		FROM energy_upload_history
		WHERE batch_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, batchID)
}

// ListByProjectID returns the most recent outcomes for a project
func (r *HistoryRepository) ListByProjectID(ctx context.Context, projectID int, limit int) ([]*domain.UploadHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, batch_id, project_id, file_path, run_id, upload_ms, report, created_at
		FROM energy_upload_history
		WHERE project_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, projectID, limit)
}

func (r *HistoryRepository) list(ctx context.Context, query string, args ...any) ([]*domain.UploadHistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query upload history: %w", err)
	}
	defer rows.Close()

	entries := []*domain.UploadHistoryEntry{}
	for rows.Next() {
		var e domain.UploadHistoryEntry
		var runID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.BatchID, &e.ProjectID, &e.FilePath, &runID, &e.UploadMs, &e.Report, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload history: %w", err)
		}
		if runID.Valid {
			id := int(runID.Int64)
			e.RunID = &id
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate upload history: %w", err)
	}
	return entries, nil
}
