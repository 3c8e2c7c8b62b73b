// Package filter selects which template files apply to an answer set.
//
// Selection works by exclusion: a fixed rule table maps answers to glob
// patterns, and a Matcher built from those patterns decides which
// template paths are skipped.
package filter

import (
	"slices"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

// Rule excludes Patterns whenever When holds.
type Rule struct {
	Name     string
	When     func(types.Answers) bool
	Patterns []string
}

// Rules is the exclusion rule table. Rules are independent; their
// patterns are unioned in table order.
var Rules = []Rule{
	{
		Name: "transformers-only serving",
		When: isTransformers,
		Patterns: []string{
			"**/code/model_handler.py",
			"**/code/start_server.py",
			"**/code/serve.py",
			"**/nginx.conf**",
			"**/requirements.txt**",
			"**/test/test_local_image.sh",
			"**/test/test_model_handler.py",
		},
	},
	{
		Name: "classic serving",
		When: func(a types.Answers) bool { return !isTransformers(a) },
		Patterns: []string{
			"**/code/serve",
			"**/deploy/upload_to_s3.sh",
		},
	},
	{
		Name:     "no flask",
		When:     func(a types.Answers) bool { return a.String(params.ModelServer) != params.ServerFlask },
		Patterns: []string{"**/code/flask/**"},
	},
	{
		Name:     "no sample model",
		When:     func(a types.Answers) bool { return !a.Bool(params.IncludeSampleModel) },
		Patterns: []string{"**/sample_model/**"},
	},
	{
		Name:     "no tests",
		When:     func(a types.Answers) bool { return !a.Bool(params.IncludeTesting) },
		Patterns: []string{"**/test/**"},
	},
	testTypeRule(params.TestLocalModelCLI, "**/test/test_model_handler.py"),
	testTypeRule(params.TestLocalModelServer, "**/test/test_local_image.sh"),
	testTypeRule(params.TestHostedEndpoint, "**/test/test_endpoint.sh"),
}

// testTypeRule drops a single test file when testing is on but the test
// type is not selected.
func testTypeRule(testType, pattern string) Rule {
	return Rule{
		Name: "unselected " + testType,
		When: func(a types.Answers) bool {
			return a.Bool(params.IncludeTesting) && !slices.Contains(a.Strings(params.TestTypes), testType)
		},
		Patterns: []string{pattern},
	}
}

func isTransformers(a types.Answers) bool {
	return a.String(params.Framework) == params.FrameworkTransformers
}

// Excludes returns the exclusion patterns for a, in rule order with
// duplicates removed. It is a pure function of a.
func Excludes(a types.Answers) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range Rules {
		if !r.When(a) {
			continue
		}
		for _, p := range r.Patterns {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
