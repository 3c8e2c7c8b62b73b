package prompt

import (
	"fmt"
	"io"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
)

// Wizard collects the user-level defaults stored in the global config.
type Wizard struct {
	store    *config.GlobalStore
	prompter Prompter

	// Out receives the welcome banner. Nil is silent.
	Out io.Writer
}

// NewWizard returns a setup wizard saving to store.
func NewWizard(store *config.GlobalStore, p Prompter) *Wizard {
	return &Wizard{store: store, prompter: p}
}

// Needed reports whether the wizard should run: the global file is
// missing, or reconfigure was requested.
func (w *Wizard) Needed(reconfigure bool) bool {
	return reconfigure || !w.store.Exists()
}

// Questions returns the wizard's questions with defaults taken from
// current, the existing record.
func (w *Wizard) Questions(current config.Record) []Question {
	str := func(key, fallback string) string {
		if s, ok := current[key].(string); ok && s != "" {
			return s
		}
		return fallback
	}
	includeTesting := true
	if b, ok := current[config.RecordIncludeTesting].(bool); ok {
		includeTesting = b
	}

	return []Question{
		{
			Key:     config.RecordRegion,
			Kind:    KindSelect,
			Message: "Default AWS region:",
			Choices: params.Regions,
			Default: validChoice(str(config.RecordRegion, ""), params.Regions),
		},
		{
			Key:     config.RecordInstanceType,
			Kind:    KindSelect,
			Message: "Default instance type:",
			Choices: []string{params.InstanceCPU, params.InstanceGPU},
			Default: validChoice(str(config.RecordInstanceType, ""), []string{params.InstanceCPU, params.InstanceGPU}),
		},
		{
			Key:     config.RecordRoleARN,
			Kind:    KindInput,
			Message: "Default SageMaker execution role ARN (leave empty to skip):",
			Default: str(config.RecordRoleARN, ""),
		},
		{
			Key:     config.RecordIncludeTesting,
			Kind:    KindConfirm,
			Message: "Include testing infrastructure by default?",
			Default: includeTesting,
		},
	}
}

// Run asks the wizard's questions and saves the answers. A save failure
// is logged and the answers stay in memory, so the run can continue.
func (w *Wizard) Run() (config.Record, error) {
	current := w.store.Record()
	if w.Out != nil {
		fmt.Fprintln(w.Out, phaseStyle.Render("Welcome to ML Container Creator!"))
		fmt.Fprintln(w.Out, "Let's set up some defaults to make future runs easier.")
	}

	record := config.Record{}
	for k, v := range current {
		record[k] = v
	}
	for _, q := range w.Questions(current) {
		v, err := w.prompter.Ask(q)
		if err != nil {
			return nil, fmt.Errorf("setup %s: %w", q.Key, err)
		}
		record[q.Key] = v
	}

	if err := w.store.Save(record); err != nil {
		logger.Error("failed to save global config", "path", w.store.Path(), "error", err)
		for k, v := range record {
			w.store.Set(k, v)
		}
		return record, nil
	}
	if w.Out != nil {
		fmt.Fprintln(w.Out, answerStyle.Render("✓ Configuration saved to "+w.store.Path()))
		fmt.Fprintln(w.Out, hintStyle.Render("Run with --reconfigure to change these settings."))
	}
	return record, nil
}
