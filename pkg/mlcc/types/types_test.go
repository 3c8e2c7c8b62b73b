package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswers_ZeroValue(t *testing.T) {
	var a Answers

	assert.Equal(t, 0, a.Len())
	assert.False(t, a.Has("framework"))
	assert.Equal(t, "", a.String("framework"))
	assert.False(t, a.Bool("includeTesting"))
	assert.Nil(t, a.Strings("testTypes"))
	assert.Equal(t, Source(""), a.Source("framework"))
	assert.Empty(t, a.Keys())
}

func TestAnswers_WithIsImmutable(t *testing.T) {
	base := Answers{}.With(map[string]any{"framework": "sklearn"}, SourceDefault)
	next := base.With(map[string]any{"framework": "xgboost"}, SourceFlag)

	assert.Equal(t, "sklearn", base.String("framework"))
	assert.Equal(t, SourceDefault, base.Source("framework"))
	assert.Equal(t, "xgboost", next.String("framework"))
	assert.Equal(t, SourceFlag, next.Source("framework"))
}

func TestAnswers_WithSkipsNil(t *testing.T) {
	base := Answers{}.With(map[string]any{"awsRegion": "us-east-1"}, SourceGlobal)
	next := base.With(map[string]any{"awsRegion": nil, "deployTarget": "sagemaker"}, SourceProject)

	assert.Equal(t, "us-east-1", next.String("awsRegion"))
	assert.Equal(t, SourceGlobal, next.Source("awsRegion"))
	assert.Equal(t, "sagemaker", next.String("deployTarget"))
}

func TestAnswers_SliceValuesAreCopied(t *testing.T) {
	input := []string{"local-model-cli", "hosted-model-endpoint"}
	a := Answers{}.Set("testTypes", input, SourcePrompt)

	input[0] = "mutated"
	assert.Equal(t, []string{"local-model-cli", "hosted-model-endpoint"}, a.Strings("testTypes"))

	out := a.Strings("testTypes")
	out[1] = "mutated"
	assert.Equal(t, []string{"local-model-cli", "hosted-model-endpoint"}, a.Strings("testTypes"))

	m := a.Map()
	m["testTypes"].([]string)[0] = "mutated"
	assert.Equal(t, "local-model-cli", a.Strings("testTypes")[0])
}

func TestAnswers_Without(t *testing.T) {
	a := Answers{}.With(map[string]any{"modelFormat": "pkl", "framework": "sklearn"}, SourceDefault)
	b := a.Without("modelFormat")

	assert.True(t, a.Has("modelFormat"))
	assert.False(t, b.Has("modelFormat"))
	assert.Equal(t, Source(""), b.Source("modelFormat"))
	assert.Equal(t, []string{"framework"}, b.Keys())

	assert.Equal(t, b, b.Without("missing"))
}

func TestAnswers_TypedAccessorsIgnoreWrongTypes(t *testing.T) {
	a := Answers{}.With(map[string]any{
		"framework":      true,
		"includeTesting": "yes",
		"testTypes":      "local-model-cli",
	}, SourceFlag)

	assert.Equal(t, "", a.String("framework"))
	assert.False(t, a.Bool("includeTesting"))
	assert.Nil(t, a.Strings("testTypes"))
}

func TestAnswers_KeysSorted(t *testing.T) {
	a := Answers{}.With(map[string]any{
		"projectName": "demo",
		"awsRegion":   "us-east-1",
		"framework":   "sklearn",
	}, SourceDefault)

	assert.Equal(t, []string{"awsRegion", "framework", "projectName"}, a.Keys())
	assert.Len(t, a.Sources(), 3)
}
