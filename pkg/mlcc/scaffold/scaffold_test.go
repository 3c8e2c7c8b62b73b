package scaffold

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/mlcc/pkg/mlcc/filter"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/templates"
	"github.com/jamesainslie/mlcc/pkg/mlcc/trash"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var buildTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func resolved(t *testing.T, overrides map[string]any) types.Answers {
	t.Helper()
	m := params.Default()
	a := types.Answers{}.With(m.Defaults(), types.SourceDefault).With(overrides, types.SourceFlag)
	a = params.Complete(a)
	require.NoError(t, params.Validate(m, a))
	return a
}

func generate(t *testing.T, a types.Answers, dest string) *Report {
	t.Helper()
	report, err := Generate(templates.Embedded(), TemplateData(a, params.Default(), buildTime), Options{
		Destination: dest,
		Exclude:     filter.Excludes(a),
	})
	require.NoError(t, err)
	return report
}

func TestGenerate_AllFrameworks(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		want      []string
		notWant   []string
	}{
		{
			name:      "sklearn flask with sample model",
			overrides: map[string]any{params.Framework: "sklearn", params.IncludeSampleModel: true},
			want:      []string{"code/flask/wsgi.py", "code/serve.py", "nginx.conf", "sample_model/train_abalone.py", "test/test_model_handler.py"},
			notWant:   []string{"code/serve", "deploy/upload_to_s3.sh"},
		},
		{
			name:      "xgboost fastapi",
			overrides: map[string]any{params.Framework: "xgboost", params.ModelServer: "fastapi"},
			want:      []string{"code/serve.py", "code/model_handler.py", "requirements.txt"},
			notWant:   []string{"code/flask/wsgi.py", "sample_model/train_abalone.py"},
		},
		{
			name:      "tensorflow without tests",
			overrides: map[string]any{params.Framework: "tensorflow", params.ModelFormat: "SavedModel", params.IncludeTesting: false},
			want:      []string{"Dockerfile", "code/start_server.py"},
			notWant:   []string{"test/test_endpoint.sh", "test/test_local_image.sh"},
		},
		{
			name:      "transformers sglang",
			overrides: map[string]any{params.Framework: "transformers", params.ModelServer: "sglang", params.Model: "meta-llama/Llama-3.2-3B-Instruct"},
			want:      []string{"code/serve", "deploy/upload_to_s3.sh", "test/test_endpoint.sh"},
			notWant:   []string{"nginx.conf", "requirements.txt", "code/serve.py", "code/flask/wsgi.py"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "out")
			report := generate(t, resolved(t, tt.overrides), dest)

			for _, p := range tt.want {
				assert.FileExists(t, filepath.Join(dest, p))
				assert.Contains(t, report.Paths(), p)
			}
			for _, p := range tt.notWant {
				assert.NoFileExists(t, filepath.Join(dest, p))
			}
			assert.Positive(t, report.TotalBytes())
			assert.NotEmpty(t, report.Skipped)
		})
	}
}

func TestGenerate_RendersAnswers(t *testing.T) {
	a := resolved(t, map[string]any{
		params.ProjectName: "abalone-demo",
		params.Framework:   "transformers",
		params.Model:       "meta-llama/Llama-3.2-3B-Instruct",
	})
	dest := filepath.Join(t.TempDir(), "out")
	generate(t, a, dest)

	dockerfile, err := os.ReadFile(filepath.Join(dest, "Dockerfile"))
	require.NoError(t, err)
	assert.Contains(t, string(dockerfile), "abalone-demo")
	assert.Contains(t, string(dockerfile), "2024-03-09T14-05-07")
	assert.Contains(t, string(dockerfile), "vllm/vllm-openai")
	assert.Contains(t, string(dockerfile), "meta-llama/Llama-3.2-3B-Instruct")
	assert.NotContains(t, string(dockerfile), "{{")

	readme, err := os.ReadFile(filepath.Join(dest, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "Selected test types: hosted-model-endpoint.")
	assert.NotContains(t, string(readme), "test_model_handler.py")
}

func TestGenerate_ExecutableScripts(t *testing.T) {
	a := resolved(t, map[string]any{params.Framework: "transformers"})
	dest := filepath.Join(t.TempDir(), "out")
	generate(t, a, dest)

	for _, p := range []string{"code/serve", "build_and_push.sh", "deploy/deploy.sh", "test/test_endpoint.sh"} {
		info, err := os.Stat(filepath.Join(dest, p))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm(), p)
	}
	info, err := os.Stat(filepath.Join(dest, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestGenerate_DestinationConflict(t *testing.T) {
	a := resolved(t, nil)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("mine"), 0o644))

	_, err := Generate(templates.Embedded(), TemplateData(a, params.Default(), buildTime), Options{
		Destination: dest,
		Exclude:     filter.Excludes(a),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDestinationExists))
	assert.Contains(t, err.Error(), dest)
	assert.NoFileExists(t, filepath.Join(dest, "Dockerfile"))
}

func TestGenerate_EmptyDestinationIsFine(t *testing.T) {
	a := resolved(t, nil)
	dest := t.TempDir()
	generate(t, a, dest)
	assert.FileExists(t, filepath.Join(dest, "Dockerfile"))
}

func TestGenerate_ForceTrashesDestination(t *testing.T) {
	a := resolved(t, nil)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0o644))

	var trashed string
	report, err := Generate(templates.Embedded(), TemplateData(a, params.Default(), buildTime), Options{
		Destination: dest,
		Exclude:     filter.Excludes(a),
		Force:       true,
		Trash: func(path string) (trash.Result, error) {
			trashed = path
			return trash.Result{Method: trash.MethodSystem}, os.RemoveAll(path)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, dest, trashed)
	require.NotNil(t, report.Trashed)
	assert.NoFileExists(t, filepath.Join(dest, "old.txt"))
	assert.FileExists(t, filepath.Join(dest, "Dockerfile"))
}

func TestGenerate_DryRun(t *testing.T) {
	a := resolved(t, nil)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "old.txt"), []byte("old"), 0o644))

	report, err := Generate(templates.Embedded(), TemplateData(a, params.Default(), buildTime), Options{
		Destination: dest,
		Exclude:     filter.Excludes(a),
		Force:       true,
		DryRun:      true,
		Trash: func(string) (trash.Result, error) {
			t.Fatal("dry run must not trash")
			return trash.Result{}, nil
		},
	})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.NotEmpty(t, report.Written)
	assert.FileExists(t, filepath.Join(dest, "old.txt"))
	assert.NoFileExists(t, filepath.Join(dest, "Dockerfile"))
}

func TestGenerate_TemplateErrorWritesNothing(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("{{ .projectName }}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("{{ .unknownKey }}"), 0o644))
	src, err := templates.Dir(root)
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "out")
	_, err = Generate(src, TemplateData(resolved(t, nil), params.Default(), buildTime), Options{Destination: dest})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.txt")
	assert.NoDirExists(t, dest)
}

func TestGenerate_InvalidPattern(t *testing.T) {
	_, err := Generate(templates.Embedded(), nil, Options{Destination: t.TempDir(), Exclude: []string{"[oops"}})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	data := map[string]any{
		"testTypes": []string{"local-model-cli", "hosted-model-endpoint"},
		"framework": "xgboost",
	}
	out, err := Render("x", []byte(`{{ join .testTypes "," }}|{{ has .testTypes "local-model-cli" }}|{{ upper .framework }}`), data)
	require.NoError(t, err)
	assert.Equal(t, "local-model-cli,hosted-model-endpoint|true|XGBOOST", string(out))

	_, err = Render("bad", []byte("{{ if }}"), data)
	assert.Error(t, err)
}

func TestTemplateData(t *testing.T) {
	a := types.Answers{}.With(map[string]any{params.Framework: "sklearn"}, types.SourceFlag)
	data := TemplateData(a, params.Default(), buildTime)

	assert.Equal(t, "sklearn", data[params.Framework])
	assert.Equal(t, "", data[params.Model])
	assert.Equal(t, false, data[params.IncludeTesting])
	assert.Equal(t, []string{}, data[params.TestTypes])
	assert.Equal(t, "2024-03-09T14-05-07", data[TimestampKey])
	assert.Len(t, data, len(params.Default().Keys())+1)
}
