package config

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// Layer is one configuration source's contribution.
type Layer struct {
	Source types.Source
	Values map[string]any
}

// Merge applies layer on top of prev and returns the result. Keys unknown
// to the matrix are dropped, nil values never overwrite, and values are
// coerced to the parameter kind. Values that cannot be coerced are skipped
// and reported in the returned warnings.
func Merge(m params.Matrix, prev types.Answers, layer Layer) (types.Answers, []string) {
	if len(layer.Values) == 0 {
		return prev, nil
	}

	keys := make([]string, 0, len(layer.Values))
	for k := range layer.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var warnings []string
	accepted := make(map[string]any, len(keys))
	for _, k := range keys {
		v := layer.Values[k]
		if v == nil {
			continue
		}
		p, ok := m.Lookup(k)
		if !ok {
			continue
		}
		cv, err := p.Coerce(v)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("ignoring %s value: %v", layer.Source, err))
			continue
		}
		accepted[k] = cv
	}
	return prev.With(accepted, layer.Source), warnings
}

// Resolver merges the answer sources in priority order.
type Resolver struct {
	matrix  params.Matrix
	global  *GlobalStore
	workDir string

	// ErrWriter receives warnings as they occur. Nil keeps them silent.
	ErrWriter io.Writer

	// Warnings collects non-fatal issues during resolution.
	Warnings []string
}

// NewResolver returns a resolver reading project sources from workDir.
// A nil global store skips the global source.
func NewResolver(m params.Matrix, global *GlobalStore, workDir string) *Resolver {
	return &Resolver{matrix: m, global: global, workDir: workDir}
}

func (r *Resolver) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg)
	if r.ErrWriter != nil {
		fmt.Fprintf(r.ErrWriter, "Warning: %s\n", msg)
	}
}

// Layers returns every source, lowest priority first. Unreadable sources
// are reported as warnings and contribute an empty layer.
func (r *Resolver) Layers(overrides map[string]any) []Layer {
	layers := []Layer{{Source: types.SourceDefault, Values: r.matrix.Defaults()}}

	var global map[string]any
	if r.global != nil {
		before := len(r.global.Warnings)
		if rec := r.global.Record(); rec != nil {
			global = rec.Values()
		}
		for _, w := range r.global.Warnings[before:] {
			r.Warnings = append(r.Warnings, w)
			if r.ErrWriter != nil {
				fmt.Fprintf(r.ErrWriter, "Warning: %s\n", w)
			}
		}
	}
	layers = append(layers, Layer{Source: types.SourceGlobal, Values: global})

	pkg, err := ReadPackageConfig(filepath.Join(r.workDir, PackageFileName))
	if err != nil {
		r.warn(err.Error())
	}
	layers = append(layers, Layer{Source: types.SourcePackage, Values: pkg})

	project, err := ReadProjectConfig(filepath.Join(r.workDir, ProjectFileName))
	if err != nil {
		r.warn(err.Error())
	}
	layers = append(layers, Layer{Source: types.SourceProject, Values: project})

	return append(layers, Layer{Source: types.SourceFlag, Values: overrides})
}

// Resolve merges every source and derives framework-dependent values
// without validating the result.
func (r *Resolver) Resolve(overrides map[string]any) types.Answers {
	var a types.Answers
	for _, layer := range r.Layers(overrides) {
		var warnings []string
		a, warnings = Merge(r.matrix, a, layer)
		for _, w := range warnings {
			r.warn(w)
		}
		if len(layer.Values) > 0 {
			logger.Debug("merged config layer", "source", layer.Source, "keys", len(layer.Values))
		}
	}
	return params.Complete(a)
}

// ResolveAll merges every source, derives framework-dependent values and
// validates the result. The error is a *params.ValidationError naming
// every unsupported value.
func (r *Resolver) ResolveAll(overrides map[string]any) (types.Answers, error) {
	a := r.Resolve(overrides)
	if err := params.Validate(r.matrix, a); err != nil {
		return a, err
	}
	return a, nil
}
