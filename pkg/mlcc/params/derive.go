package params

import (
	"slices"
	"time"

	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var logger = logging.Get("params")

// TimestampLayout formats build timestamps. It is file-name safe.
const TimestampLayout = "2006-01-02T15-04-05"

// BuildTimestamp formats t for use in generated files and directory names.
func BuildTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DefaultDestination returns the destination used when none was given.
func DefaultDestination(projectName string, now time.Time) string {
	return "./" + projectName + "-" + BuildTimestamp(now)
}

// Complete fills in framework-dependent values. Empty framework-dependent
// values get the profile default, default and global values are replaced
// when the profile disallows them, and hidden values are cleared. Values
// supplied by any other source are left alone for Validate to judge. The
// sample model is always off for frameworks without one.
func Complete(a types.Answers) types.Answers {
	profile, ok := ProfileFor(a.String(Framework))
	if !ok {
		return a
	}

	for _, key := range []string{ModelFormat, ModelServer, Model, InstanceType} {
		v := a.String(key)
		src := a.Source(key)
		if !profile.Asks(key) {
			if v != "" && replaceable(src) {
				a = replace(a, key, "")
			}
			continue
		}
		choices := profile.Choices(key)
		switch {
		case v == "":
			a = a.Set(key, profile.DefaultFor(key), types.SourceDerived)
		case replaceable(src) && !slices.Contains(choices, v):
			a = replace(a, key, profile.DefaultFor(key))
		}
	}

	if !a.Has(TestTypes) {
		a = a.Set(TestTypes, profile.DefaultFor(TestTypes), types.SourceDerived)
	} else if replaceable(a.Source(TestTypes)) && !subset(a.Strings(TestTypes), profile.TestTypes) {
		a = replace(a, TestTypes, profile.DefaultFor(TestTypes))
	}

	if !profile.SampleModel && a.Bool(IncludeSampleModel) {
		a = a.Set(IncludeSampleModel, false, types.SourceDerived)
	}
	return a
}

// replaceable reports whether a value from src may be rewritten to fit the
// framework. Global values are user-level defaults, not project choices.
func replaceable(src types.Source) bool {
	switch src {
	case "", types.SourceDefault, types.SourceGlobal, types.SourceDerived:
		return true
	}
	return false
}

func replace(a types.Answers, key string, v any) types.Answers {
	if src := a.Source(key); src != types.SourceDerived {
		old, _ := a.Get(key)
		logger.Debug("replacing value unsupported by framework",
			"key", key, "from", old, "source", src, "to", v)
	}
	return a.Set(key, v, types.SourceDerived)
}

func subset(items, of []string) bool {
	for _, s := range items {
		if !slices.Contains(of, s) {
			return false
		}
	}
	return true
}
