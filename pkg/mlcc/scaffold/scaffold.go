// Package scaffold renders a template tree into a destination directory.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/jamesainslie/mlcc/pkg/mlcc/filter"
	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/templates"
	"github.com/jamesainslie/mlcc/pkg/mlcc/trash"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var logger = logging.Get("scaffold")

// ErrDestinationExists is returned when the destination is a non-empty
// directory and Force is not set.
var ErrDestinationExists = errors.New("destination already exists and is not empty")

// TimestampKey is the template data key holding the build timestamp.
const TimestampKey = "buildTimestamp"

// Options configures Generate.
type Options struct {
	// Destination is the output directory.
	Destination string

	// Exclude lists glob patterns of template paths to skip.
	Exclude []string

	// DryRun renders everything but writes nothing.
	DryRun bool

	// Force moves a non-empty destination out of the way first.
	Force bool

	// Trash moves the old destination away. Nil uses trash.MoveToTrash.
	Trash func(path string) (trash.Result, error)
}

// File is a rendered output file.
type File struct {
	Path string
	Size int64
	Mode fs.FileMode
}

// Skip is a template path left out by an exclusion pattern.
type Skip struct {
	Path    string
	Pattern string
}

// Report summarizes a generation.
type Report struct {
	Destination string
	Written     []File
	Skipped     []Skip
	DryRun      bool

	// Trashed is set when an existing destination was moved away.
	Trashed *trash.Result
}

// TotalBytes returns the combined size of all written files.
func (r *Report) TotalBytes() int64 {
	var n int64
	for _, f := range r.Written {
		n += f.Size
	}
	return n
}

// Paths returns the written paths, relative to the destination.
func (r *Report) Paths() []string {
	out := make([]string, len(r.Written))
	for i, f := range r.Written {
		out[i] = f.Path
	}
	return out
}

// Generate renders every non-excluded file of src with data and writes it
// under opts.Destination, preserving relative paths. All files are
// rendered before anything is written, so a template error leaves the
// destination untouched.
func Generate(src templates.Source, data map[string]any, opts Options) (*Report, error) {
	if opts.Destination == "" {
		return nil, errors.New("no destination")
	}
	matcher, err := filter.New(opts.Exclude...)
	if err != nil {
		return nil, err
	}
	names, err := src.Files()
	if err != nil {
		return nil, err
	}

	report := &Report{Destination: opts.Destination, DryRun: opts.DryRun}
	rendered := make(map[string][]byte, len(names))
	for _, name := range names {
		if pattern, ok := matcher.Which(name); ok {
			report.Skipped = append(report.Skipped, Skip{Path: name, Pattern: pattern})
			continue
		}
		raw, err := src.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", name, err)
		}
		out, err := Render(name, raw, data)
		if err != nil {
			return nil, err
		}
		rendered[name] = out
		report.Written = append(report.Written, File{Path: name, Size: int64(len(out)), Mode: fileMode(name)})
	}

	if err := prepareDestination(opts, report); err != nil {
		return nil, err
	}
	if opts.DryRun {
		return report, nil
	}

	for _, f := range report.Written {
		target := filepath.Join(opts.Destination, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, rendered[f.Path], f.Mode); err != nil {
			return nil, fmt.Errorf("writing %s: %w", target, err)
		}
		// WriteFile leaves the mode of existing files alone
		if err := os.Chmod(target, f.Mode); err != nil {
			return nil, fmt.Errorf("setting mode of %s: %w", target, err)
		}
	}
	logger.Info("generated project",
		"destination", opts.Destination,
		"files", len(report.Written),
		"skipped", len(report.Skipped))
	return report, nil
}

func prepareDestination(opts Options, report *Report) error {
	empty, err := isEmptyDir(opts.Destination)
	if err != nil {
		return err
	}
	if empty {
		return nil
	}
	if !opts.Force {
		return fmt.Errorf("%s: %w", opts.Destination, ErrDestinationExists)
	}
	if opts.DryRun {
		return nil
	}
	move := opts.Trash
	if move == nil {
		move = trash.MoveToTrash
	}
	res, err := move(opts.Destination)
	if err != nil {
		return fmt.Errorf("clearing destination: %w", err)
	}
	report.Trashed = &res
	return nil
}

// isEmptyDir reports whether path is missing or an empty directory.
func isEmptyDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking destination: %w", err)
	}
	if !info.IsDir() {
		return false, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("checking destination: %w", err)
	}
	return len(entries) == 0, nil
}

func fileMode(name string) fs.FileMode {
	if strings.HasSuffix(name, ".sh") || name == "code/serve" {
		return 0o755
	}
	return 0o644
}

var funcs = template.FuncMap{
	"has":   func(items []string, v string) bool { return slices.Contains(items, v) },
	"join":  func(items []string, sep string) string { return strings.Join(items, sep) },
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// Render executes a single template. Referencing a key missing from data
// is an error.
func Render(name string, raw []byte, data map[string]any) ([]byte, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Funcs(funcs).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// TemplateData returns the data passed to templates: every parameter of
// m, with the kind's zero value when a has none, plus the build timestamp.
func TemplateData(a types.Answers, m params.Matrix, now time.Time) map[string]any {
	data := make(map[string]any, len(m.Keys())+1)
	for _, p := range m.Params() {
		if v, ok := a.Get(p.Name); ok {
			data[p.Name] = v
			continue
		}
		switch p.Kind {
		case params.KindBool:
			data[p.Name] = false
		case params.KindStringSet:
			data[p.Name] = []string{}
		default:
			data[p.Name] = ""
		}
	}
	data[TimestampKey] = params.BuildTimestamp(now)
	return data
}
