package params

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

func defaults() types.Answers {
	return types.Answers{}.With(Default().Defaults(), types.SourceDefault)
}

func TestDefaultMatrix(t *testing.T) {
	m := Default()

	assert.Len(t, m.Keys(), 13)
	for _, p := range m.Params() {
		assert.NotEmpty(t, p.Flag, "parameter %s has no flag", p.Name)
		assert.NotEmpty(t, p.Description, "parameter %s has no description", p.Name)
	}

	d := m.Defaults()
	assert.Equal(t, "sklearn", d[Framework])
	assert.Equal(t, "flask", d[ModelServer])
	assert.Equal(t, true, d[IncludeTesting])
	assert.Equal(t, false, d[IncludeSampleModel])
	assert.Equal(t, []string{"local-model-cli", "local-model-server", "hosted-model-endpoint"}, d[TestTypes])

	d[TestTypes].([]string)[0] = "mutated"
	assert.Equal(t, TestLocalModelCLI, m.Defaults()[TestTypes].([]string)[0])
}

func TestDefaultsAreValid(t *testing.T) {
	a := Complete(defaults())
	require.NoError(t, Validate(Default(), a))
	assert.Equal(t, "pkl", a.String(ModelFormat))
	assert.Equal(t, types.SourceDerived, a.Source(ModelFormat))
	assert.Equal(t, "", a.String(Model))
}

func TestParam_Coerce(t *testing.T) {
	m := Default()
	boolParam, _ := m.Lookup(IncludeTesting)
	setParam, _ := m.Lookup(TestTypes)
	strParam, _ := m.Lookup(Framework)

	tests := []struct {
		name    string
		param   Param
		in      any
		want    any
		wantErr bool
	}{
		{"bool passthrough", boolParam, true, true, false},
		{"bool from string", boolParam, "false", false, false},
		{"bool from padded string", boolParam, " true ", true, false},
		{"bool from junk", boolParam, "maybe", nil, true},
		{"bool from number", boolParam, 1.0, nil, true},
		{"set from comma string", setParam, "local-model-cli, hosted-model-endpoint", []string{"local-model-cli", "hosted-model-endpoint"}, false},
		{"set from empty string", setParam, "", []string{}, false},
		{"set from json list", setParam, []any{"local-model-cli"}, []string{"local-model-cli"}, false},
		{"set with non-string item", setParam, []any{"local-model-cli", 3.0}, nil, true},
		{"string passthrough", strParam, "xgboost", "xgboost", false},
		{"string from number", strParam, 42.0, "42", false},
		{"string from bool", strParam, true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.param.Coerce(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_AggregatesViolations(t *testing.T) {
	a := defaults().With(map[string]any{
		Framework:   "pytorch",
		ModelServer: "tornado",
		ProjectName: "My Project",
		TestTypes:   []string{"smoke"},
	}, types.SourceFlag)

	err := Validate(Default(), a)
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{Framework, ModelServer, ProjectName, TestTypes}, verr.Keys())
	assert.Contains(t, err.Error(), "4 unsupported options")
	assert.Contains(t, err.Error(), "pytorch")
}

func TestValidate_UnknownKey(t *testing.T) {
	a := Complete(defaults()).Set("color", "blue", types.SourceProject)

	err := Validate(Default(), a)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"color"}, verr.Keys())
	assert.Contains(t, err.Error(), "unknown parameter")
}

func TestValidate_FrameworkProfile(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]any
		wantKeys []string
	}{
		{
			name:     "fastapi with sklearn",
			override: map[string]any{Framework: "sklearn", ModelServer: "fastapi"},
		},
		{
			name:     "vllm with sklearn",
			override: map[string]any{Framework: "sklearn", ModelServer: "vllm"},
			wantKeys: []string{ModelServer},
		},
		{
			name:     "flask with transformers",
			override: map[string]any{Framework: "transformers", ModelServer: "flask"},
			wantKeys: []string{ModelServer},
		},
		{
			name:     "pkl with xgboost",
			override: map[string]any{Framework: "xgboost", ModelFormat: "pkl"},
			wantKeys: []string{ModelFormat},
		},
		{
			name:     "model format with transformers",
			override: map[string]any{Framework: "transformers", ModelFormat: "pkl"},
			wantKeys: []string{ModelFormat},
		},
		{
			name:     "cpu with transformers",
			override: map[string]any{Framework: "transformers", InstanceType: "cpu-optimized"},
			wantKeys: []string{InstanceType},
		},
		{
			name:     "classic test type with transformers",
			override: map[string]any{Framework: "transformers", TestTypes: []string{"local-model-cli"}},
			wantKeys: []string{TestTypes},
		},
		{
			name:     "classic test type ignored when testing is off",
			override: map[string]any{Framework: "transformers", IncludeTesting: false, TestTypes: []string{"local-model-cli"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Complete(defaults().With(tt.override, types.SourceFlag))
			err := Validate(Default(), a)
			if len(tt.wantKeys) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantKeys, verr.Keys())
		})
	}
}

func TestComplete_Transformers(t *testing.T) {
	a := defaults().With(map[string]any{
		Framework:          "transformers",
		IncludeSampleModel: true,
	}, types.SourceFlag)

	got := Complete(a)

	assert.Equal(t, "vllm", got.String(ModelServer))
	assert.Equal(t, "openai/gpt-oss-20b", got.String(Model))
	assert.Equal(t, "", got.String(ModelFormat))
	assert.Equal(t, "gpu-enabled", got.String(InstanceType))
	assert.Equal(t, []string{"hosted-model-endpoint"}, got.Strings(TestTypes))
	assert.False(t, got.Bool(IncludeSampleModel))
	assert.Equal(t, types.SourceDerived, got.Source(IncludeSampleModel))
	require.NoError(t, Validate(Default(), got))

	// the input is untouched
	assert.Equal(t, "flask", a.String(ModelServer))
}

func TestComplete_KeepsExplicitValues(t *testing.T) {
	a := defaults().With(map[string]any{
		Framework:   "transformers",
		ModelServer: "flask",
	}, types.SourceProject)

	got := Complete(a)
	assert.Equal(t, "flask", got.String(ModelServer))
	assert.Equal(t, types.SourceProject, got.Source(ModelServer))
}

func TestComplete_ReplacesGlobalValues(t *testing.T) {
	a := defaults().
		With(map[string]any{InstanceType: "cpu-optimized", ModelFormat: "pkl"}, types.SourceGlobal).
		Set(Framework, "transformers", types.SourceFlag)

	got := Complete(a)
	assert.Equal(t, "gpu-enabled", got.String(InstanceType))
	assert.Equal(t, types.SourceDerived, got.Source(InstanceType))
	assert.Equal(t, "", got.String(ModelFormat))
	require.NoError(t, Validate(Default(), got))
}

func TestComplete_ClearsHiddenDefaults(t *testing.T) {
	a := defaults().
		Set(Framework, "sklearn", types.SourcePrompt).
		Set(Model, "openai/gpt-oss-20b", types.SourceDerived)

	got := Complete(a)
	assert.Equal(t, "", got.String(Model))
	assert.Equal(t, "pkl", got.String(ModelFormat))
}

func TestComplete_UnknownFramework(t *testing.T) {
	a := defaults().Set(Framework, "pytorch", types.SourceFlag)
	assert.Equal(t, a, Complete(a))
}

func TestBuildTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 123, time.UTC)

	assert.Equal(t, "2024-03-09T14-05-07", BuildTimestamp(ts))
	assert.Equal(t, "./demo-2024-03-09T14-05-07", DefaultDestination("demo", ts))
}
