package domain

import (
	"encoding/json"
	"time"
)

// DefaultTimeoutMs is used when a run request carries no positive timeout
const DefaultTimeoutMs = 300000

// ReportSuccess is the report of a file that got a run id
const ReportSuccess = "Success!"

// MassRunsOutcome is the result of the best-effort parametric-runs toggle
type MassRunsOutcome string

const (
	MassRunsApplied MassRunsOutcome = "applied"
	MassRunsFailed  MassRunsOutcome = "failed"
)

// RunRequest asks for one base run per gbXML file
type RunRequest struct {
	ProjectID         int      `json:"project_id"`
	FilePaths         []string `json:"file_paths"`
	ExecuteParametric bool     `json:"execute_parametric"`
	TimeoutMs         int      `json:"timeout_ms"`
}

// Timeout returns the per-upload timeout, defaulting non-positive values
func (r RunRequest) Timeout() time.Duration {
	ms := r.TimeoutMs
	if ms <= 0 {
		ms = DefaultTimeoutMs
	}
	return time.Duration(ms) * time.Millisecond
}

// RunIDEntry is one slot of the run id list: a numeric id, a failure
// message, or neither when the service answered without an id.
type RunIDEntry struct {
	ID    *int
	Error string
}

// MarshalJSON renders the slot as a number, a string or null
func (e RunIDEntry) MarshalJSON() ([]byte, error) {
	switch {
	case e.ID != nil:
		return json.Marshal(*e.ID)
	case e.Error != "":
		return json.Marshal(e.Error)
	default:
		return []byte("null"), nil
	}
}

// BatchResult holds parallel lists, one entry per input file
type BatchResult struct {
	BatchID     string          `json:"batch_id"`
	RunIDs      []RunIDEntry    `json:"run_ids"`
	UploadTimes []string        `json:"upload_times"`
	Reports     []string        `json:"reports"`
	MassRuns    MassRunsOutcome `json:"mass_runs"`
}

// RunRecord is a successful upload kept in the run ledger
type RunRecord struct {
	RunID      int       `json:"run_id"`
	ProjectID  int       `json:"project_id"`
	FilePath   string    `json:"file_path"`
	UploadTime string    `json:"upload_time"`
	BatchID    string    `json:"batch_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// UploadHistoryEntry is one file outcome in the upload history
type UploadHistoryEntry struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	ProjectID int       `json:"project_id"`
	FilePath  string    `json:"file_path"`
	RunID     *int      `json:"run_id,omitempty"`
	UploadMs  int64     `json:"upload_ms"`
	Report    string    `json:"report"`
	CreatedAt time.Time `json:"created_at"`
}

// BatchRecord gathers what was kept about one RunEnergyAnalysis call
type BatchRecord struct {
	BatchID string                `json:"batch_id"`
	Runs    []*RunRecord          `json:"runs"`
	History []*UploadHistoryEntry `json:"history"`
}

// Project is a GBS project as seen by callers
type Project struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// ProjectRequest resolves or creates a project by title
type ProjectRequest struct {
	Title string `json:"title"`
}

// ExportRequest describes a gbXML export. MassID is used by the mass
// variant, ZoneIDs by the zones variant.
type ExportRequest struct {
	FolderPath string  `json:"folder_path"`
	FileName   string  `json:"file_name"`
	MassID     int64   `json:"mass_id,omitempty"`
	ZoneIDs    []int64 `json:"zone_ids,omitempty"`
	ShadingIDs []int64 `json:"shading_ids,omitempty"`
	Run        bool    `json:"run"`
}

// ExportResult is the outcome of an export; Path is empty on failure
type ExportResult struct {
	Report string `json:"report"`
	Path   string `json:"path"`
}

// SolarRequest sets the sun position in degrees
type SolarRequest struct {
	Azimuth  float64 `json:"azimuth"`
	Altitude float64 `json:"altitude"`
}
