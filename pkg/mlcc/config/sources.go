package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// ReadProjectConfig reads a project config file. Comments and trailing
// commas are allowed. A missing file yields nil and no error.
func ReadProjectConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var values map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(data), &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return values, nil
}

// ReadPackageConfig reads the answers embedded in a package.json manifest.
// A missing file or field yields nil and no error.
func ReadPackageConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var manifest map[string]json.RawMessage
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	raw, ok := manifest[PackageField]
	if !ok {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parsing %s field %q: %w", path, PackageField, err)
	}
	return values, nil
}

// WriteProjectConfig saves answers as the project config in dir so a
// later run there resolves to the same answers. The destination itself
// is not saved.
func WriteProjectConfig(dir string, a types.Answers) (string, error) {
	values := a.Without(params.DestinationDir).Map()
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding project config: %w", err)
	}
	path := filepath.Join(dir, ProjectFileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("writing project config: %w", err)
	}
	return path, nil
}
