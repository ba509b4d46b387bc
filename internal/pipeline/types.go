package pipeline

import (
	"time"
)

// ImportConfig holds configuration for a sales import
type ImportConfig struct {
	WorkerCount   int    // Number of concurrent file workers
	BatchSize     int    // Number of daily rows to buffer before writing
	RetryAttempts int    // Attempts per file before it is reported failed
	TempDir       string // Directory for XLSX to CSV conversions
}

// DefaultImportConfig returns sensible defaults
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WorkerCount:   4,
		BatchSize:     500,
		RetryAttempts: 2,
		TempDir:       "data/intermediate/sales",
	}
}

// FileJobStatus represents the state of a single file processing job
type FileJobStatus string

const (
	FileStatusQueued     FileJobStatus = "queued"
	FileStatusProcessing FileJobStatus = "processing"
	FileStatusCompleted  FileJobStatus = "completed"
	FileStatusFailed     FileJobStatus = "failed"
)

// FileJob tracks the processing of one input file
type FileJob struct {
	FilePath     string        `json:"file_path"`
	Status       FileJobStatus `json:"status"`
	Rows         int           `json:"rows"`
	Skipped      int           `json:"skipped"`
	RetryCount   int           `json:"retry_count"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// RunStatus represents the state of an import run
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusPartial   RunStatus = "partial"
	StatusFailed    RunStatus = "failed"
)

// ImportRun summarizes one import over a set of files
type ImportRun struct {
	Status      RunStatus  `json:"status"`
	Files       []*FileJob `json:"files"`
	TotalRows   int        `json:"total_rows"`
	Skipped     int        `json:"skipped"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
}

// Failed returns the jobs that did not complete.
func (r *ImportRun) Failed() []*FileJob {
	var out []*FileJob
	for _, f := range r.Files {
		if f.Status != FileStatusCompleted {
			out = append(out, f)
		}
	}
	return out
}

// SalesRecord is one parsed line of a sales file. Either ArticleID or EAN
// identifies the article.
type SalesRecord struct {
	Line      int
	ArticleID int64
	EAN       string
	Date      time.Time
	Quantity  float64
}
