package params

import "slices"

// Frameworks.
const (
	FrameworkSKLearn      = "sklearn"
	FrameworkXGBoost      = "xgboost"
	FrameworkTensorFlow   = "tensorflow"
	FrameworkTransformers = "transformers"
)

// Model servers.
const (
	ServerFlask   = "flask"
	ServerFastAPI = "fastapi"
	ServerVLLM    = "vllm"
	ServerSGLang  = "sglang"
)

// Instance types.
const (
	InstanceCPU = "cpu-optimized"
	InstanceGPU = "gpu-enabled"
)

// Test types.
const (
	TestLocalModelCLI    = "local-model-cli"
	TestLocalModelServer = "local-model-server"
	TestHostedEndpoint   = "hosted-model-endpoint"
)

// DeploySageMaker is the only deployment target.
const DeploySageMaker = "sagemaker"

// Frameworks lists the supported frameworks in prompt order.
var Frameworks = []string{FrameworkSKLearn, FrameworkXGBoost, FrameworkTensorFlow, FrameworkTransformers}

// TestTypeChoices lists every test type in prompt order.
var TestTypeChoices = []string{TestLocalModelCLI, TestLocalModelServer, TestHostedEndpoint}

// TransformerModels lists the models offered for the transformers framework.
var TransformerModels = []string{"openai/gpt-oss-20b", "meta-llama/Llama-3.2-3B-Instruct"}

// Regions lists the supported AWS regions.
var Regions = []string{"us-east-1"}

// Profile is the framework-dependent slice of the choice matrix. A nil
// choice list means the corresponding question is not asked for the
// framework.
type Profile struct {
	ModelFormats     []string
	ModelServers     []string
	Models           []string
	SampleModel      bool
	InstanceTypes    []string
	TestTypes        []string
	DefaultTestTypes []string
}

var (
	classicServers   = []string{ServerFlask, ServerFastAPI}
	classicInstances = []string{InstanceCPU, InstanceGPU}
)

// Profiles maps each framework to its choices, defaults and question visibility.
var Profiles = map[string]Profile{
	FrameworkSKLearn: {
		ModelFormats:     []string{"pkl", "joblib"},
		ModelServers:     classicServers,
		SampleModel:      true,
		InstanceTypes:    classicInstances,
		TestTypes:        TestTypeChoices,
		DefaultTestTypes: TestTypeChoices,
	},
	FrameworkXGBoost: {
		ModelFormats:     []string{"json", "model", "ubj"},
		ModelServers:     classicServers,
		SampleModel:      true,
		InstanceTypes:    classicInstances,
		TestTypes:        TestTypeChoices,
		DefaultTestTypes: TestTypeChoices,
	},
	FrameworkTensorFlow: {
		ModelFormats:     []string{"keras", "h5", "SavedModel"},
		ModelServers:     classicServers,
		SampleModel:      true,
		InstanceTypes:    classicInstances,
		TestTypes:        TestTypeChoices,
		DefaultTestTypes: TestTypeChoices,
	},
	FrameworkTransformers: {
		ModelServers:     []string{ServerVLLM, ServerSGLang},
		Models:           TransformerModels,
		InstanceTypes:    []string{InstanceGPU},
		TestTypes:        []string{TestHostedEndpoint},
		DefaultTestTypes: []string{TestHostedEndpoint},
	},
}

// ProfileFor returns the profile for framework.
func ProfileFor(framework string) (Profile, bool) {
	p, ok := Profiles[framework]
	return p, ok
}

// Choices returns the choices for key under the given profile, or nil when
// the key has no framework-dependent choice list.
func (p Profile) Choices(key string) []string {
	switch key {
	case ModelFormat:
		return p.ModelFormats
	case ModelServer:
		return p.ModelServers
	case Model:
		return p.Models
	case InstanceType:
		return p.InstanceTypes
	case TestTypes:
		return p.TestTypes
	}
	return nil
}

// Asks reports whether the question for key is shown under the profile.
func (p Profile) Asks(key string) bool {
	switch key {
	case ModelFormat:
		return p.ModelFormats != nil
	case Model:
		return p.Models != nil
	case IncludeSampleModel:
		return p.SampleModel
	}
	return true
}

// DefaultFor returns the profile's default for key, or nil when the
// profile does not constrain key.
func (p Profile) DefaultFor(key string) any {
	if key == TestTypes {
		return slices.Clone(p.DefaultTestTypes)
	}
	if choices := p.Choices(key); len(choices) > 0 {
		return choices[0]
	}
	return nil
}

func allModelFormats() []string {
	var out []string
	for _, fw := range Frameworks {
		out = append(out, Profiles[fw].ModelFormats...)
	}
	return out
}
