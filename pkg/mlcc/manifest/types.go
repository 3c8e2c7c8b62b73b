// Package manifest records every generation run as a JSON entry in the
// history directory.
package manifest

import "time"

// Operation is the kind of run recorded.
type Operation string

const (
	// OpGenerate is a run that wrote files.
	OpGenerate Operation = "generate"
	// OpDryRun is a run that only reported what it would write.
	OpDryRun Operation = "dry-run"
)

// Entry is one recorded run.
type Entry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Operation   Operation         `json:"operation"`
	Project     string            `json:"project"`
	Destination string            `json:"destination"`
	Answers     map[string]any    `json:"answers"`
	Sources     map[string]string `json:"sources,omitempty"`
	Excluded    []string          `json:"excluded,omitempty"`
	Files       []FileRecord      `json:"files"`
	Summary     Summary           `json:"summary"`
}

// FileRecord is one generated file.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Mode string `json:"mode"`
}

// Summary totals a run.
type Summary struct {
	TotalFiles   int64 `json:"total_files"`
	TotalBytes   int64 `json:"total_bytes"`
	SkippedFiles int64 `json:"skipped_files"`
}
