package prompt

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var logger = logging.Get("prompt")

// Phase is a titled group of questions asked together.
type Phase struct {
	Title string
	Keys  []string
}

// Phases are asked in order. The transformers model is never asked; it
// comes from a flag or config file, or the framework default.
var Phases = []Phase{
	{Title: "project identity", Keys: []string{params.ProjectName, params.DestinationDir}},
	{Title: "core configuration", Keys: []string{params.Framework, params.ModelFormat, params.ModelServer}},
	{Title: "module selection", Keys: []string{params.IncludeSampleModel, params.IncludeTesting, params.TestTypes}},
	{Title: "infrastructure", Keys: []string{params.DeployTarget, params.InstanceType, params.AWSRegion}},
}

var messages = map[string]string{
	params.ProjectName:        "What is the project name?",
	params.DestinationDir:     "Where will the output directory be?",
	params.Framework:          "Which ML framework are you using?",
	params.ModelFormat:        "In which format is your model serialized?",
	params.ModelServer:        "Which model server are you serving with?",
	params.IncludeSampleModel: "Include sample Abalone classifier?",
	params.IncludeTesting:     "Include test suite?",
	params.TestTypes:          "Which test types?",
	params.DeployTarget:       "Deployment target?",
	params.InstanceType:       "Instance type?",
	params.AWSRegion:          "Target AWS region?",
}

// Sequencer walks the phases, asking each question that still applies.
type Sequencer struct {
	matrix   params.Matrix
	prompter Prompter

	// Out receives phase headers and the deployment notice. Nil is silent.
	Out io.Writer

	// Now is used for the default destination. Nil uses time.Now.
	Now func() time.Time
}

// NewSequencer returns a sequencer asking questions through p.
func NewSequencer(m params.Matrix, p Prompter) *Sequencer {
	return &Sequencer{matrix: m, prompter: p}
}

// Run completes resolved by asking the questions of every phase. Keys
// supplied on the command line are never asked. The returned answers are
// not validated.
func (s *Sequencer) Run(resolved types.Answers) (types.Answers, error) {
	a := resolved
	for _, phase := range Phases {
		s.printf("%s\n", phaseStyle.Render(Title(phase.Title)))
		for _, key := range phase.Keys {
			var err error
			if a, err = s.ask(a, key); err != nil {
				return a, err
			}
		}
		a = params.Complete(a)
	}
	s.notice(a)
	return a, nil
}

func (s *Sequencer) ask(a types.Answers, key string) (types.Answers, error) {
	if a.Source(key) == types.SourceFlag {
		logger.Debug("skipping question set by flag", "key", key)
		return a, nil
	}

	q, ok := s.Question(a, key)
	if !ok {
		return hide(a, key), nil
	}

	v, err := s.prompter.Ask(q)
	if err != nil {
		return a, fmt.Errorf("%s: %w", key, err)
	}

	p, _ := s.matrix.Lookup(key)
	coerced, err := p.Coerce(v)
	if err != nil {
		return a, fmt.Errorf("%s: %w", key, err)
	}

	// Accepting an existing value keeps its source.
	current, had := a.Get(key)
	if had && reflect.DeepEqual(current, coerced) && a.Source(key) != "" {
		return a, nil
	}
	src := types.SourcePrompt
	if !s.prompter.Interactive() {
		src = types.SourceDerived
	}
	a = a.Set(key, coerced, src)
	if key == params.Framework {
		a = params.Complete(a)
		// model has no question of its own
		if _, shown := s.Question(a, params.Model); !shown && a.Source(params.Model) != types.SourceFlag {
			a = hide(a, params.Model)
		}
	}
	return a, nil
}

// hide resets a question that does not apply under the current answers.
func hide(a types.Answers, key string) types.Answers {
	switch key {
	case params.ModelFormat, params.Model:
		if a.String(key) != "" {
			return a.Set(key, "", types.SourceDerived)
		}
	case params.IncludeSampleModel:
		if a.Bool(key) {
			return a.Set(key, false, types.SourceDerived)
		}
	}
	return a
}

// Question builds the question for key under the answers so far. It
// returns false when the question does not apply.
func (s *Sequencer) Question(a types.Answers, key string) (Question, bool) {
	p, ok := s.matrix.Lookup(key)
	if !ok {
		return Question{}, false
	}
	profile, hasProfile := params.ProfileFor(a.String(params.Framework))

	if hasProfile && !profile.Asks(key) {
		return Question{}, false
	}
	if key == params.TestTypes && !a.Bool(params.IncludeTesting) {
		return Question{}, false
	}

	q := Question{Key: key, Message: messages[key]}
	if q.Message == "" {
		q.Message = p.Description
	}

	var choices []string
	if hasProfile {
		choices = profile.Choices(key)
	}
	if choices == nil {
		choices = p.Allowed
	}

	switch p.Kind {
	case params.KindBool:
		q.Kind = KindConfirm
		q.Default = a.Bool(key)
	case params.KindStringSet:
		q.Kind = KindMultiSelect
		q.Choices = slices.Clone(choices)
		q.Default = validSubset(a.Strings(key), choices, profile.DefaultTestTypes)
	default:
		if len(choices) > 0 {
			q.Kind = KindSelect
			q.Choices = slices.Clone(choices)
			q.Default = validChoice(a.String(key), choices)
		} else {
			q.Kind = KindInput
			q.Default = a.String(key)
		}
	}

	if key == params.DestinationDir && a.String(key) == "" {
		q.Default = params.DefaultDestination(a.String(params.ProjectName), s.now())
	}
	if p.Pattern != nil {
		pattern := p.Pattern
		q.Validate = func(v string) error {
			if !pattern.MatchString(v) {
				return fmt.Errorf("must match %s", pattern)
			}
			return nil
		}
	}
	return q, true
}

// validChoice returns v when it is one of choices, else the first choice.
func validChoice(v string, choices []string) string {
	if slices.Contains(choices, v) {
		return v
	}
	return choices[0]
}

// validSubset returns the items of v found in choices, or fallback when
// none are.
func validSubset(v, choices, fallback []string) []string {
	var out []string
	for _, item := range v {
		if slices.Contains(choices, item) {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return slices.Clone(fallback)
	}
	return out
}

func (s *Sequencer) notice(a types.Answers) {
	lines := []string{
		Title("manual deployment"),
		"The following steps assume authentication to an AWS account",
		"and will incur charges to it.",
		"",
		"  ./build_and_push.sh    builds the image and pushes it to ECR",
	}
	if a.String(params.Framework) == params.FrameworkTransformers {
		lines = append(lines, "  ./deploy/upload_to_s3.sh  uploads model artifacts to S3")
	}
	lines = append(lines, "  ./deploy/deploy.sh     deploys the image to a SageMaker endpoint")
	if a.String(params.RoleARN) == "" {
		lines = append(lines, "", "deploy.sh needs a SageMaker execution role ARN as its argument.")
	}
	s.printf("%s\n", noticeStyle.Render(strings.Join(lines, "\n")))
}

func (s *Sequencer) printf(format string, args ...any) {
	if s.Out != nil {
		fmt.Fprintf(s.Out, format, args...)
	}
}

func (s *Sequencer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
