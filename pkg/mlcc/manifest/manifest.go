package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/scaffold"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// ErrNotFound is returned by Get when no entry matches.
var ErrNotFound = errors.New("entry not found")

// ErrAmbiguous is returned by Get when an ID prefix matches several entries.
var ErrAmbiguous = errors.New("ambiguous entry ID")

// Manifest stores run entries in a directory, one JSON file each.
type Manifest struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a Manifest for dir. The directory is created by EnsureDir.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Manifest{dir: dir, now: time.Now}, nil
}

// Dir returns the history directory.
func (m *Manifest) Dir() string {
	return m.dir
}

// EnsureDir creates the manifest directory if it does not exist.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// LogGeneration records a run from its answers, exclusions and report.
func (m *Manifest) LogGeneration(a types.Answers, excluded []string, report *scaffold.Report) (*Entry, error) {
	op := OpGenerate
	if report.DryRun {
		op = OpDryRun
	}

	files := make([]FileRecord, len(report.Written))
	for i, f := range report.Written {
		files[i] = FileRecord{Path: f.Path, Size: f.Size, Mode: f.Mode.String()}
	}
	sources := make(map[string]string, a.Len())
	for k, s := range a.Sources() {
		sources[k] = string(s)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := &Entry{
		ID:          uuid.NewString(),
		Timestamp:   m.now().UTC(),
		Operation:   op,
		Project:     a.String(params.ProjectName),
		Destination: report.Destination,
		Answers:     a.Map(),
		Sources:     sources,
		Excluded:    excluded,
		Files:       files,
		Summary: Summary{
			TotalFiles:   int64(len(files)),
			TotalBytes:   report.TotalBytes(),
			SkippedFiles: int64(len(report.Skipped)),
		},
	}
	if err := m.writeEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to write manifest entry: %w", err)
	}
	return entry, nil
}

// writeEntry writes atomically through a temp file and rename.
func (m *Manifest) writeEntry(entry *Entry) error {
	path := filepath.Join(m.dir, entry.ID+".json")

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// List returns entries newest first. A limit of 0 or less returns all.
// Unreadable entry files are skipped.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry whose ID equals or uniquely starts with id.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := m.readAll()
	if err != nil {
		return nil, err
	}
	var match *Entry
	for i := range entries {
		e := &entries[i]
		if e.ID == id {
			return e, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match != nil {
				return nil, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = e
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return match, nil
}

// Cleanup removes entries recorded more than retentionDays ago and
// returns how many were removed.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().AddDate(0, 0, -retentionDays)
	entries, err := m.readAll()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if !e.Timestamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, e.ID+".json")); err != nil {
			continue
		}
		removed++
	}
	return removed, nil
}

// readAll must be called with m.mu held.
func (m *Manifest) readAll() ([]Entry, error) {
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read manifest directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(m.dir, f.Name()))
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil || e.ID == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
