package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/filter"
	"github.com/jamesainslie/mlcc/pkg/mlcc/output"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List templates and whether each would be copied",
	Long: `List the template files and show, for the resolved answers, which would
be copied and which exclusion pattern skips the rest. Parameter flags
change the answers as they would for generation.

Examples:
  mlcc templates                            # Current answers
  mlcc templates --framework transformers   # What a transformers project gets
  mlcc templates --include-testing=false`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	registerParamFlags(templatesCmd.Flags(), params.Default())
	rootCmd.AddCommand(templatesCmd)
}

// templateStatus is one row of the templates listing.
type templateStatus struct {
	Path    string
	Pattern string // empty when the file is copied
}

// templateStatuses matches every file of src against the exclusions.
func templateStatuses(src templates.Source, excludes []string) ([]templateStatus, error) {
	matcher, err := filter.New(excludes...)
	if err != nil {
		return nil, err
	}
	files, err := src.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	out := make([]templateStatus, 0, len(files))
	for _, f := range files {
		pattern, _ := matcher.Which(f)
		out = append(out, templateStatus{Path: f, Pattern: pattern})
	}
	return out, nil
}

// runTemplates lists templates for the resolved answers.
func runTemplates(cmd *cobra.Command, args []string) error {
	m := params.Default()
	overrides, err := collectOverrides(cmd.Flags(), m)
	if err != nil {
		return err
	}
	store, err := config.DefaultGlobalStore()
	if err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	src, err := templates.Open(templatesDir())
	if err != nil {
		return err
	}

	resolver := config.NewResolver(m, store, wd)
	resolver.ErrWriter = os.Stderr
	answers := resolver.Resolve(overrides)
	if err := params.Validate(m, answers); err != nil {
		printError("%v", err)
	}

	statuses, err := templateStatuses(src, filter.Excludes(answers))
	if err != nil {
		return err
	}
	printTemplates(os.Stdout, src.Name(), answers.String(params.Framework), statuses)
	return nil
}

func printTemplates(w io.Writer, name, framework string, statuses []templateStatus) {
	copied := 0
	width := 0
	for _, s := range statuses {
		width = max(width, len(s.Path))
		if s.Pattern == "" {
			copied++
		}
	}

	if !getQuiet() {
		fmt.Fprintf(w, "%s  %s\n\n",
			output.TitleStyle.Render("Templates"),
			output.MutedStyle.Render(fmt.Sprintf("%s, framework %s", name, framework)))
	}
	for _, s := range statuses {
		pad := strings.Repeat(" ", width-len(s.Path))
		if s.Pattern == "" {
			fmt.Fprintf(w, "  %s %s\n", output.SuccessStyle.Render("✓"), s.Path)
			continue
		}
		fmt.Fprintf(w, "  %s %s%s  %s\n",
			output.ErrorStyle.Render("✗"),
			output.MutedStyle.Render(s.Path), pad,
			output.MutedStyle.Render(s.Pattern))
	}
	if !getQuiet() {
		fmt.Fprintf(w, "\n%d of %d templates copied\n", copied, len(statuses))
	}
}
