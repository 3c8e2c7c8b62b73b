package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/logging"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
)

var (
	// settings is loaded before every command runs.
	settings *config.Settings

	rootCmd = &cobra.Command{
		Use:   "mlcc",
		Short: "Scaffold a SageMaker model serving container",
		Long: `mlcc asks a few questions about your model and generates a container
project for serving it on Amazon SageMaker: Dockerfile, model server code,
build and deploy scripts, and tests.

Answers are resolved from, lowest to highest priority:
  1. built-in defaults
  2. ~/.ml-container-creator-rc.json (created by the setup wizard)
  3. the "ml-container-creator" object in ./package.json
  4. ./.ml-container-creator.json
  5. command-line flags

Examples:
  mlcc                                   # Interactive generation
  mlcc --framework transformers -n       # Non-interactive, defaults for the rest
  mlcc --model-server fastapi --dry-run  # Preview the generated files
  mlcc config show                       # Show resolved answers and their sources
  mlcc templates --framework xgboost     # Show which templates would be copied`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings()
			if err != nil {
				return err
			}
			settings = s
			return initLogging(s)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Close()
		},
	}
)

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")
	rootCmd.PersistentFlags().String("templates", "", "template directory (default: built-in templates)")

	// Generation flags
	rootCmd.Flags().BoolP("no-interactive", "n", false, "don't prompt, use resolved answers")
	rootCmd.Flags().BoolP("dry-run", "d", false, "show what would be generated without writing")
	rootCmd.Flags().BoolP("force", "f", false, "move an existing non-empty destination to the trash")
	rootCmd.Flags().Bool("reconfigure", false, "re-run the setup wizard")
	registerParamFlags(rootCmd.Flags(), params.Default())

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("templates", rootCmd.PersistentFlags().Lookup("templates"))
	_ = viper.BindPFlag("no_interactive", rootCmd.Flags().Lookup("no-interactive"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("force", rootCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("reconfigure", rootCmd.Flags().Lookup("reconfigure"))
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		return err
	}
	return nil
}

// initLogging starts file logging. Console logging is off with --quiet,
// debug with --verbose and errors only otherwise.
func initLogging(s *config.Settings) error {
	console := "error"
	switch {
	case getQuiet():
		console = ""
	case getVerbose():
		console = "debug"
	}
	level := s.Logging.Level
	if getVerbose() {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:        level,
		Path:         s.Logging.Path,
		Components:   s.Logging.Components,
		ConsoleLevel: console,
	})
}

// templatesDir returns the --templates flag or the configured directory.
func templatesDir() string {
	if dir := viper.GetString("templates"); dir != "" {
		return dir
	}
	if settings != nil {
		return settings.TemplatesDir
	}
	return ""
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...any) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...any) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printWarnings prints non-fatal problems to w. A nil w discards them.
func printWarnings(w io.Writer, warnings []string) {
	if w == nil {
		return
	}
	for _, msg := range warnings {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
