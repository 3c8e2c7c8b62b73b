package prompt

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func defaults() types.Answers {
	a := types.Answers{}.With(params.Default().Defaults(), types.SourceDefault)
	return params.Complete(a)
}

func newSequencer(p Prompter) (*Sequencer, *bytes.Buffer) {
	var out bytes.Buffer
	s := NewSequencer(params.Default(), p)
	s.Out = &out
	s.Now = func() time.Time { return fixedNow }
	return s, &out
}

func TestSequencer_DefaultsOnly(t *testing.T) {
	s, out := newSequencer(Defaults{})

	a, err := s.Run(defaults())
	require.NoError(t, err)
	require.NoError(t, params.Validate(params.Default(), a))

	assert.Equal(t, "./ml-container-creator-2024-03-09T14-05-07", a.String(params.DestinationDir))
	assert.Equal(t, types.SourceDerived, a.Source(params.DestinationDir))
	assert.Equal(t, "sklearn", a.String(params.Framework))
	assert.Equal(t, types.SourceDefault, a.Source(params.Framework))
	assert.Equal(t, "pkl", a.String(params.ModelFormat))

	for _, title := range []string{"Project Identity", "Core Configuration", "Module Selection", "Infrastructure", "Manual Deployment"} {
		assert.Contains(t, out.String(), title)
	}
}

func TestSequencer_Transformers(t *testing.T) {
	script := &Scripted{Answers: map[string]any{
		params.ProjectName: "llm",
		params.Framework:   params.FrameworkTransformers,
	}}
	s, out := newSequencer(script)

	a, err := s.Run(defaults())
	require.NoError(t, err)
	require.NoError(t, params.Validate(params.Default(), a))

	assert.NotContains(t, script.Asked, params.ModelFormat)
	assert.NotContains(t, script.Asked, params.IncludeSampleModel)
	assert.NotContains(t, script.Asked, params.Model)
	assert.Contains(t, script.Asked, params.TestTypes)

	assert.Equal(t, "", a.String(params.ModelFormat))
	assert.Equal(t, params.ServerVLLM, a.String(params.ModelServer))
	assert.Equal(t, params.InstanceGPU, a.String(params.InstanceType))
	assert.Equal(t, []string{params.TestHostedEndpoint}, a.Strings(params.TestTypes))
	assert.False(t, a.Bool(params.IncludeSampleModel))
	assert.Equal(t, "openai/gpt-oss-20b", a.String(params.Model))
	assert.Equal(t, types.SourceDerived, a.Source(params.Model))
	assert.Contains(t, out.String(), "upload_to_s3.sh")
}

func TestSequencer_ModelFollowsFramework(t *testing.T) {
	resolved := params.Complete(defaults().With(map[string]any{
		params.Framework: params.FrameworkTransformers,
		params.Model:     "meta-llama/Llama-3.2-3B-Instruct",
	}, types.SourceProject))

	kept, err := NewSequencer(params.Default(), Defaults{}).Run(resolved)
	require.NoError(t, err)
	assert.Equal(t, "meta-llama/Llama-3.2-3B-Instruct", kept.String(params.Model))
	assert.Equal(t, types.SourceProject, kept.Source(params.Model))

	script := &Scripted{Answers: map[string]any{params.Framework: params.FrameworkSKLearn}}
	switched, err := NewSequencer(params.Default(), script).Run(resolved)
	require.NoError(t, err)
	require.NoError(t, params.Validate(params.Default(), switched))
	assert.NotContains(t, script.Asked, params.Model)
	assert.Equal(t, "", switched.String(params.Model))
	assert.Equal(t, types.SourceDerived, switched.Source(params.Model))
}

func TestSequencer_TestTypesOnlyWhenTesting(t *testing.T) {
	script := &Scripted{Answers: map[string]any{params.IncludeTesting: false}}
	s, _ := newSequencer(script)

	a, err := s.Run(defaults())
	require.NoError(t, err)
	assert.NotContains(t, script.Asked, params.TestTypes)
	assert.False(t, a.Bool(params.IncludeTesting))
}

func TestSequencer_SkipsFlagKeys(t *testing.T) {
	resolved := defaults().
		Set(params.Framework, params.FrameworkXGBoost, types.SourceFlag).
		Set(params.ProjectName, "fromflag", types.SourceFlag)
	resolved = params.Complete(resolved)

	script := &Scripted{}
	s, _ := newSequencer(script)

	a, err := s.Run(resolved)
	require.NoError(t, err)
	assert.NotContains(t, script.Asked, params.Framework)
	assert.NotContains(t, script.Asked, params.ProjectName)
	assert.Equal(t, "xgboost", a.String(params.Framework))
	assert.Equal(t, "json", a.String(params.ModelFormat))
	assert.Equal(t, "./fromflag-2024-03-09T14-05-07", a.String(params.DestinationDir))
}

func TestSequencer_Abort(t *testing.T) {
	script := &Scripted{Answers: map[string]any{params.ModelServer: ErrAborted}}
	s, _ := newSequencer(script)

	_, err := s.Run(defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
}

func TestSequencer_InvalidScriptedAnswer(t *testing.T) {
	script := &Scripted{Answers: map[string]any{params.ProjectName: "Not Valid"}}
	s, _ := newSequencer(script)

	_, err := s.Run(defaults())
	assert.Error(t, err)
}

func TestQuestion_ResolvedValuesBecomeDefaults(t *testing.T) {
	s, _ := newSequencer(Defaults{})

	tests := []struct {
		name    string
		answers types.Answers
		key     string
		kind    Kind
		want    any
		choices []string
	}{
		{
			name:    "valid resolved server",
			answers: defaults().Set(params.ModelServer, params.ServerFastAPI, types.SourceProject),
			key:     params.ModelServer,
			kind:    KindSelect,
			want:    params.ServerFastAPI,
			choices: []string{params.ServerFlask, params.ServerFastAPI},
		},
		{
			name: "invalid resolved server falls back",
			answers: defaults().
				Set(params.Framework, params.FrameworkTransformers, types.SourcePrompt).
				Set(params.ModelServer, params.ServerFlask, types.SourceGlobal),
			key:     params.ModelServer,
			kind:    KindSelect,
			want:    params.ServerVLLM,
			choices: []string{params.ServerVLLM, params.ServerSGLang},
		},
		{
			name:    "confirm",
			answers: defaults().Set(params.IncludeSampleModel, true, types.SourceProject),
			key:     params.IncludeSampleModel,
			kind:    KindConfirm,
			want:    true,
		},
		{
			name:    "project name input",
			answers: defaults(),
			key:     params.ProjectName,
			kind:    KindInput,
			want:    "ml-container-creator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := s.Question(tt.answers, tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.kind, q.Kind)
			assert.Equal(t, tt.want, q.Default)
			if tt.choices != nil {
				assert.Equal(t, tt.choices, q.Choices)
			}
		})
	}
}

func TestQuestion_Hidden(t *testing.T) {
	s, _ := newSequencer(Defaults{})
	transformers := defaults().Set(params.Framework, params.FrameworkTransformers, types.SourcePrompt)

	_, ok := s.Question(transformers, params.ModelFormat)
	assert.False(t, ok)
	_, ok = s.Question(transformers, params.IncludeSampleModel)
	assert.False(t, ok)
	_, ok = s.Question(defaults(), params.Model)
	assert.False(t, ok)
	_, ok = s.Question(defaults().Set(params.IncludeTesting, false, types.SourceFlag), params.TestTypes)
	assert.False(t, ok)
	_, ok = s.Question(defaults(), "nope")
	assert.False(t, ok)
}

func TestQuestion_ProjectNameValidation(t *testing.T) {
	s, _ := newSequencer(Defaults{})
	q, ok := s.Question(defaults(), params.ProjectName)
	require.True(t, ok)
	require.NotNil(t, q.Validate)
	assert.NoError(t, q.Validate("my-model-2"))
	assert.Error(t, q.Validate("My_Model"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Core Configuration", Title("core configuration"))
}
