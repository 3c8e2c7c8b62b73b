package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"

	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
)

var logger = logging.Get("config")

// Record is the decoded global config file.
type Record map[string]any

// recordAliases maps global record keys onto parameter names.
var recordAliases = map[string]string{
	RecordRegion:         params.AWSRegion,
	RecordInstanceType:   params.InstanceType,
	RecordRoleARN:        params.RoleARN,
	RecordIncludeTesting: params.IncludeTesting,
}

// Values returns the record keyed by parameter name. Aliased keys are
// renamed; other keys pass through for the resolver to filter.
func (r Record) Values() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		if _, aliased := recordAliases[k]; aliased {
			continue
		}
		out[k] = v
	}
	// aliases win over a same-named parameter key
	for alias, key := range recordAliases {
		if v, ok := r[alias]; ok {
			out[key] = v
		}
	}
	return out
}

// GlobalStore reads and writes the per-user global config file.
type GlobalStore struct {
	path   string
	record Record
	loaded bool

	// Warnings collects non-fatal load problems.
	Warnings []string
}

// NewGlobalStore returns a store for the global file in home.
func NewGlobalStore(home string) *GlobalStore {
	return &GlobalStore{path: filepath.Join(home, GlobalFileName)}
}

// DefaultGlobalStore returns a store for the current user's home directory.
func DefaultGlobalStore() (*GlobalStore, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewGlobalStore(home), nil
}

// Path returns the global config file path.
func (s *GlobalStore) Path() string {
	return s.path
}

// Exists reports whether the global config file is present.
func (s *GlobalStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the global config file. A missing file yields nil without a
// warning. An unreadable or corrupt file yields nil and a warning.
func (s *GlobalStore) Load() Record {
	s.loaded = true
	s.record = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		s.warn(err)
		return nil
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		s.warn(err)
		return nil
	}
	if r == nil {
		// the file holds JSON null
		return nil
	}
	s.record = r
	return maps.Clone(r)
}

func (s *GlobalStore) warn(err error) {
	msg := fmt.Sprintf("failed to load global config %s: %v", s.path, err)
	s.Warnings = append(s.Warnings, msg)
	logger.Warn("failed to load global config", "path", s.path, "error", err)
}

// Save writes record as indented JSON, replacing the file. On failure the
// in-memory record is left as it was.
func (s *GlobalStore) Save(record Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		logger.Error("failed to save global config", "path", s.path, "error", err)
		return fmt.Errorf("encoding global config: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		logger.Error("failed to save global config", "path", s.path, "error", err)
		return fmt.Errorf("writing global config: %w", err)
	}
	s.record = maps.Clone(record)
	s.loaded = true
	logger.Info("saved global config", "path", s.path)
	return nil
}

// Get returns the value for key, loading the file on first use.
func (s *GlobalStore) Get(key string) (any, bool) {
	s.ensureLoaded()
	v, ok := s.record[key]
	return v, ok
}

// Set updates key in memory. Call Save with Record to persist.
func (s *GlobalStore) Set(key string, v any) {
	s.ensureLoaded()
	if s.record == nil {
		s.record = Record{}
	}
	s.record[key] = v
}

// Record returns a copy of the in-memory record, loading it on first use.
func (s *GlobalStore) Record() Record {
	s.ensureLoaded()
	return maps.Clone(s.record)
}

func (s *GlobalStore) ensureLoaded() {
	if !s.loaded {
		s.Load()
	}
}
