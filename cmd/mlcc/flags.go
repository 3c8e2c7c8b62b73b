package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
)

// registerParamFlags adds a flag for every parameter of m.
func registerParamFlags(fs *pflag.FlagSet, m params.Matrix) {
	for _, p := range m.Params() {
		usage := p.Description
		if len(p.Allowed) > 0 {
			usage = fmt.Sprintf("%s (%s)", usage, strings.Join(p.Allowed, ", "))
		}
		switch p.Kind {
		case params.KindBool:
			def, _ := p.Default.(bool)
			fs.Bool(p.Flag, def, usage)
		case params.KindStringSet:
			def, _ := p.Default.([]string)
			fs.StringSlice(p.Flag, def, usage)
		default:
			def, _ := p.Default.(string)
			fs.String(p.Flag, def, usage)
		}
	}
}

// collectOverrides returns the parameters whose flags were set explicitly,
// keyed by parameter name. Unset flags contribute nothing, so their
// defaults never shadow lower-priority sources.
func collectOverrides(fs *pflag.FlagSet, m params.Matrix) (map[string]any, error) {
	overrides := make(map[string]any)
	for _, p := range m.Params() {
		f := fs.Lookup(p.Flag)
		if f == nil || !f.Changed {
			continue
		}
		var (
			v   any
			err error
		)
		switch p.Kind {
		case params.KindBool:
			v, err = fs.GetBool(p.Flag)
		case params.KindStringSet:
			v, err = fs.GetStringSlice(p.Flag)
		default:
			v, err = fs.GetString(p.Flag)
		}
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", p.Flag, err)
		}
		overrides[p.Name] = v
	}
	return overrides, nil
}
