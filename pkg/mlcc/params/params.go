// Package params declares the parameter matrix: every configurable option
// of a generated container project, its kind, default and allowed values.
// The matrix is static and read-only. Every configuration source is
// filtered through it and every resolved answer set is validated against it.
package params

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Kind is the value type of a parameter.
type Kind int

// Parameter kinds.
const (
	KindString Kind = iota
	KindBool
	KindStringSet
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindStringSet:
		return "string-set"
	default:
		return "unknown"
	}
}

// Parameter names.
const (
	ProjectName        = "projectName"
	DestinationDir     = "destinationDir"
	Framework          = "framework"
	ModelFormat        = "modelFormat"
	ModelServer        = "modelServer"
	Model              = "model"
	IncludeSampleModel = "includeSampleModel"
	IncludeTesting     = "includeTesting"
	TestTypes          = "testTypes"
	DeployTarget       = "deployTarget"
	InstanceType       = "instanceType"
	AWSRegion          = "awsRegion"
	RoleARN            = "roleArn"
)

// Param describes a single configurable option.
type Param struct {
	// Name is the answer key, e.g. "modelServer".
	Name string

	// Kind is the value type.
	Kind Kind

	// Default is the matrix default. Nil means the parameter has no default.
	Default any

	// Allowed lists the accepted values for string and string-set kinds.
	// Empty means any value is accepted.
	Allowed []string

	// Pattern, when set, must match string values.
	Pattern *regexp.Regexp

	// Optional parameters may hold the empty string.
	Optional bool

	// Flag is the command-line flag name.
	Flag string

	// Description is the help text for the flag.
	Description string
}

// Coerce converts v to the parameter's kind. Strings are accepted for
// every kind so command-line and environment values can be merged directly.
func (p Param) Coerce(v any) (any, error) {
	switch p.Kind {
	case KindString:
		switch val := v.(type) {
		case string:
			return val, nil
		case int, int64, float64:
			return fmt.Sprint(val), nil
		}
	case KindBool:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a boolean", p.Name, val)
			}
			return b, nil
		}
	case KindStringSet:
		switch val := v.(type) {
		case []string:
			return slices.Clone(val), nil
		case []any:
			out := make([]string, 0, len(val))
			for _, item := range val {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%s: list item %v is not a string", p.Name, item)
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			return splitList(val), nil
		}
	}
	return nil, fmt.Errorf("%s: cannot use %T as %s", p.Name, v, p.Kind)
}

// splitList splits a comma-separated string and trims whitespace.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Matrix is the read-only set of known parameters.
type Matrix struct {
	params map[string]Param
}

// NewMatrix builds a matrix from the given parameters.
func NewMatrix(ps ...Param) Matrix {
	m := Matrix{params: make(map[string]Param, len(ps))}
	for _, p := range ps {
		m.params[p.Name] = p
	}
	return m
}

// Lookup returns the parameter named key.
func (m Matrix) Lookup(key string) (Param, bool) {
	p, ok := m.params[key]
	return p, ok
}

// Has reports whether key is a known parameter.
func (m Matrix) Has(key string) bool {
	_, ok := m.params[key]
	return ok
}

// Keys returns all parameter names in sorted order.
func (m Matrix) Keys() []string {
	keys := make([]string, 0, len(m.params))
	for k := range m.params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Params returns all parameters sorted by name.
func (m Matrix) Params() []Param {
	out := make([]Param, 0, len(m.params))
	for _, k := range m.Keys() {
		out = append(out, m.params[k])
	}
	return out
}

// Defaults returns the declared default of every parameter that has one.
func (m Matrix) Defaults() map[string]any {
	d := make(map[string]any, len(m.params))
	for k, p := range m.params {
		if p.Default == nil {
			continue
		}
		if s, ok := p.Default.([]string); ok {
			d[k] = slices.Clone(s)
			continue
		}
		d[k] = p.Default
	}
	return d
}

var projectNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

var defaultMatrix = NewMatrix(
	Param{
		Name:        ProjectName,
		Kind:        KindString,
		Default:     "ml-container-creator",
		Pattern:     projectNamePattern,
		Flag:        "project-name",
		Description: "project name (lowercase letters, numbers and hyphens)",
	},
	Param{
		Name:        DestinationDir,
		Kind:        KindString,
		Default:     "",
		Optional:    true,
		Flag:        "destination",
		Description: "output directory (default ./<project-name>-<timestamp>)",
	},
	Param{
		Name:        Framework,
		Kind:        KindString,
		Default:     FrameworkSKLearn,
		Allowed:     Frameworks,
		Flag:        "framework",
		Description: "ML framework",
	},
	Param{
		Name:        ModelFormat,
		Kind:        KindString,
		Default:     "",
		Allowed:     allModelFormats(),
		Optional:    true,
		Flag:        "model-format",
		Description: "model serialization format",
	},
	Param{
		Name:        ModelServer,
		Kind:        KindString,
		Default:     ServerFlask,
		Allowed:     []string{ServerFlask, ServerFastAPI, ServerVLLM, ServerSGLang},
		Flag:        "model-server",
		Description: "model server",
	},
	Param{
		Name:        Model,
		Kind:        KindString,
		Default:     "",
		Allowed:     TransformerModels,
		Optional:    true,
		Flag:        "model",
		Description: "model to deploy (transformers only)",
	},
	Param{
		Name:        IncludeSampleModel,
		Kind:        KindBool,
		Default:     false,
		Flag:        "include-sample-model",
		Description: "include the sample Abalone classifier",
	},
	Param{
		Name:        IncludeTesting,
		Kind:        KindBool,
		Default:     true,
		Flag:        "include-testing",
		Description: "include the test suite",
	},
	Param{
		Name:        TestTypes,
		Kind:        KindStringSet,
		Default:     slices.Clone(TestTypeChoices),
		Allowed:     TestTypeChoices,
		Flag:        "test-types",
		Description: "test types to generate",
	},
	Param{
		Name:        DeployTarget,
		Kind:        KindString,
		Default:     DeploySageMaker,
		Allowed:     []string{DeploySageMaker},
		Flag:        "deploy-target",
		Description: "deployment target",
	},
	Param{
		Name:        InstanceType,
		Kind:        KindString,
		Default:     InstanceCPU,
		Allowed:     []string{InstanceCPU, InstanceGPU},
		Flag:        "instance-type",
		Description: "instance type",
	},
	Param{
		Name:        AWSRegion,
		Kind:        KindString,
		Default:     "us-east-1",
		Allowed:     Regions,
		Flag:        "region",
		Description: "target AWS region",
	},
	Param{
		Name:        RoleARN,
		Kind:        KindString,
		Default:     "",
		Optional:    true,
		Flag:        "role-arn",
		Description: "SageMaker execution role ARN used by deploy.sh",
	},
)

// Default returns the built-in parameter matrix.
func Default() Matrix {
	return defaultMatrix
}
