package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/filter"
	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/manifest"
	"github.com/jamesainslie/mlcc/pkg/mlcc/output"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/prompt"
	"github.com/jamesainslie/mlcc/pkg/mlcc/scaffold"
	"github.com/jamesainslie/mlcc/pkg/mlcc/templates"
	"github.com/jamesainslie/mlcc/pkg/mlcc/types"
)

var logger = logging.Get("cli")

// generateOptions configures one generation run.
type generateOptions struct {
	Matrix    params.Matrix
	Store     *config.GlobalStore
	WorkDir   string
	Overrides map[string]any

	Prompter    prompt.Prompter
	Reconfigure bool

	Templates templates.Source
	DryRun    bool
	Force     bool

	// History records the run. Nil disables it.
	History *manifest.Manifest

	// Out receives prompts, phase headers and notices. Nil is silent.
	Out io.Writer
	// ErrOut receives resolution warnings. Nil is silent.
	ErrOut io.Writer

	Now func() time.Time
}

// generateResult is what a run produced.
type generateResult struct {
	Answers       types.Answers
	Excludes      []string
	Report        *scaffold.Report
	ProjectConfig string
	HistoryID     string
}

// generate resolves, prompts, validates and copies templates.
func generate(opts generateOptions) (*generateResult, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	if opts.Prompter.Interactive() {
		wizard := prompt.NewWizard(opts.Store, opts.Prompter)
		wizard.Out = opts.Out
		if wizard.Needed(opts.Reconfigure) {
			_, err := wizard.Run()
			// the resolver only reports problems it finds itself
			printWarnings(opts.ErrOut, opts.Store.Warnings)
			if err != nil {
				return nil, err
			}
		}
	} else if opts.Reconfigure {
		logger.Warn("--reconfigure needs an interactive terminal, skipping setup")
	}

	resolver := config.NewResolver(opts.Matrix, opts.Store, opts.WorkDir)
	resolver.ErrWriter = opts.ErrOut
	resolved, err := resolver.ResolveAll(opts.Overrides)
	if err != nil {
		return nil, err
	}

	seq := prompt.NewSequencer(opts.Matrix, opts.Prompter)
	seq.Now = now
	if opts.Prompter.Interactive() {
		seq.Out = opts.Out
	}
	answers, err := seq.Run(resolved)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(opts.Matrix, answers); err != nil {
		return nil, err
	}

	dest := answers.String(params.DestinationDir)
	if dest == "" {
		dest = params.DefaultDestination(answers.String(params.ProjectName), now())
		answers = answers.Set(params.DestinationDir, dest, types.SourceDerived)
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(opts.WorkDir, dest)
	}

	excludes := filter.Excludes(answers)
	logger.Debug("selected exclusions", "patterns", excludes)

	report, err := scaffold.Generate(opts.Templates, scaffold.TemplateData(answers, opts.Matrix, now()), scaffold.Options{
		Destination: dest,
		Exclude:     excludes,
		DryRun:      opts.DryRun,
		Force:       opts.Force,
	})
	if err != nil {
		if errors.Is(err, scaffold.ErrDestinationExists) {
			return nil, fmt.Errorf("%w (use --force to replace it)", err)
		}
		return nil, err
	}

	result := &generateResult{Answers: answers, Excludes: excludes, Report: report}

	if !opts.DryRun {
		path, err := config.WriteProjectConfig(dest, answers)
		if err != nil {
			logger.Error("failed to save project config", "dir", dest, "error", err)
		} else {
			result.ProjectConfig = path
		}
	}

	if opts.History != nil {
		if err := opts.History.EnsureDir(); err != nil {
			logger.Error("failed to create history directory", "error", err)
		} else if entry, err := opts.History.LogGeneration(answers, excludes, report); err != nil {
			logger.Error("failed to record generation", "error", err)
		} else {
			result.HistoryID = entry.ID
		}
	}
	return result, nil
}

// runGenerate is the root command.
func runGenerate(cmd *cobra.Command, args []string) error {
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
	printVerbose("Using %s", src.Name())

	var p prompt.Prompter = prompt.Defaults{}
	if !viper.GetBool("no_interactive") && prompt.IsTerminal() {
		p = prompt.NewTerminal(nil, nil)
	}

	var history *manifest.Manifest
	if settings.History.Enabled {
		if history, err = manifest.New(settings.History.Path); err != nil {
			logger.Error("history disabled", "error", err)
			history = nil
		}
	}

	opts := generateOptions{
		Matrix:      m,
		Store:       store,
		WorkDir:     wd,
		Overrides:   overrides,
		Prompter:    p,
		Reconfigure: viper.GetBool("reconfigure"),
		Templates:   src,
		DryRun:      viper.GetBool("dry_run"),
		Force:       viper.GetBool("force"),
		History:     history,
		ErrOut:      os.Stderr,
	}
	if !getQuiet() {
		opts.Out = os.Stdout
	}

	result, err := generate(opts)
	if errors.Is(err, prompt.ErrAborted) {
		printInfo("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	printSummary(os.Stdout, result)
	return nil
}

// printSummary reports the generated files.
func printSummary(w io.Writer, r *generateResult) {
	if getQuiet() {
		fmt.Fprintln(w, r.Report.Destination)
		return
	}

	verb := "Generated"
	if r.Report.DryRun {
		verb = "Would generate"
	}
	fmt.Fprintf(w, "\n%s %s files (%s) in %s\n",
		output.SuccessStyle.Render(verb),
		output.SizeStyle.Render(humanize.Comma(int64(len(r.Report.Written)))),
		humanize.Bytes(uint64(r.Report.TotalBytes())),
		output.PathStyle.Render(r.Report.Destination))

	if r.Report.Trashed != nil {
		fmt.Fprintf(w, "%s previous contents moved aside (%s)\n",
			output.WarningStyle.Render("!"), r.Report.Trashed.Method)
	}

	if getVerbose() || r.Report.DryRun {
		for _, f := range r.Report.Written {
			fmt.Fprintf(w, "  %s  %s  %s\n",
				output.MutedStyle.Render(f.Mode.String()),
				output.SizeStyle.Render(fmt.Sprintf("%8s", humanize.Bytes(uint64(f.Size)))),
				f.Path)
		}
		for _, s := range r.Report.Skipped {
			fmt.Fprintf(w, "  %s  %s\n",
				output.MutedStyle.Render("skipped "+s.Path),
				output.MutedStyle.Render("("+s.Pattern+")"))
		}
	} else if len(r.Report.Skipped) > 0 {
		fmt.Fprintf(w, "%s\n", output.MutedStyle.Render(fmt.Sprintf("%d templates skipped for this configuration", len(r.Report.Skipped))))
	}

	if r.ProjectConfig != "" {
		fmt.Fprintf(w, "Answers saved to %s\n", output.PathStyle.Render(r.ProjectConfig))
	}
	if r.HistoryID != "" {
		fmt.Fprintf(w, "%s\n", output.MutedStyle.Render("History: mlcc history show "+r.HistoryID[:8]))
	}
}
