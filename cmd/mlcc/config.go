package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/output"
	"github.com/jamesainslie/mlcc/pkg/mlcc/params"
	"github.com/jamesainslie/mlcc/pkg/mlcc/prompt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage mlcc configuration.

The global config file (~/.ml-container-creator-rc.json) holds your
default answers and is created by the setup wizard on first run:
  defaultRegion          -> awsRegion
  defaultInstanceType    -> instanceType
  defaultRoleArn         -> roleArn
  defaultIncludeTesting  -> includeTesting

Tool settings (logging, history, templates) live in
$XDG_CONFIG_HOME/mlcc/config.yaml and can be overridden with MLCC_
environment variables, e.g. MLCC_OUTPUT_FORMAT=json.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show resolved answers and their sources",
	Long: `Resolve answers from every source without prompting and show where each
value came from. Parameter flags are applied as they would be for generation.`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file paths",
	RunE:  runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Run the setup wizard and create the settings file",
	Long: `Create the global config file with the setup wizard and write a default
settings file if one doesn't exist. Without a terminal the wizard's
defaults are saved.`,
	RunE: runConfigInit,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print a value from the global config file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a value in the global config file",
	Long: `Set a value in the global config file. KEY is one of the wizard keys
(defaultRegion, defaultInstanceType, defaultRoleArn, defaultIncludeTesting)
or a parameter name such as modelServer.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var (
	configFormat   string
	configSettings bool
	configForce    bool
)

func init() {
	configShowCmd.Flags().StringVarP(&configFormat, "format", "o", "", "output format: "+fmt.Sprint(output.Available()))
	registerParamFlags(configShowCmd.Flags(), params.Default())
	configPathCmd.Flags().BoolVar(&configSettings, "settings", false, "show the settings file path instead")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "re-run the wizard even if the global config exists")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the resolved answers.
func runConfigShow(cmd *cobra.Command, args []string) error {
	format := configFormat
	if format == "" {
		format = settings.OutputFormat
	}
	formatter, err := output.Get(format)
	if err != nil {
		return err
	}

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

	resolver := config.NewResolver(m, store, wd)
	answers := resolver.Resolve(overrides)
	result := output.FromAnswers(answers, resolver.Warnings)
	if err := params.Validate(m, answers); err != nil {
		result.Error = err.Error()
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, result); err != nil {
		return fmt.Errorf("failed to format answers: %w", err)
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}

// runConfigPath prints the global config or settings path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	if configSettings {
		path, err := config.SettingsPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	}

	store, err := config.DefaultGlobalStore()
	if err != nil {
		return err
	}
	fmt.Println(store.Path())
	if store.Exists() {
		printVerbose("File exists")
	} else {
		printVerbose("File does not exist (the setup wizard will create it)")
	}
	return nil
}

// runConfigInit runs the wizard and writes default settings.
func runConfigInit(cmd *cobra.Command, args []string) error {
	path, written, err := config.WriteDefaultSettings()
	if err != nil {
		return err
	}
	if written {
		printInfo("Created settings file: %s", path)
	} else {
		printVerbose("Settings file already exists: %s", path)
	}

	store, err := config.DefaultGlobalStore()
	if err != nil {
		return err
	}
	if store.Exists() && !configForce {
		printInfo("Global config already exists: %s", store.Path())
		printInfo("Use 'mlcc config init --force' or 'mlcc --reconfigure' to change it.")
		return nil
	}

	var p prompt.Prompter = prompt.Defaults{}
	if prompt.IsTerminal() {
		p = prompt.NewTerminal(nil, nil)
	}
	wizard := prompt.NewWizard(store, p)
	if !getQuiet() {
		wizard.Out = os.Stdout
	}
	_, err = wizard.Run()
	printWarnings(os.Stderr, store.Warnings)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			printInfo("Cancelled.")
			return nil
		}
		return err
	}
	return nil
}

// runConfigGet prints one global config value.
func runConfigGet(cmd *cobra.Command, args []string) error {
	store, err := config.DefaultGlobalStore()
	if err != nil {
		return err
	}
	return configGet(os.Stdout, os.Stderr, store, args[0])
}

func configGet(out, errOut io.Writer, store *config.GlobalStore, key string) error {
	v, ok := store.Get(key)
	printWarnings(errOut, store.Warnings)
	if !ok {
		return fmt.Errorf("%s is not set in %s", key, store.Path())
	}
	fmt.Fprintln(out, output.FormatValue(v))
	return nil
}

// runConfigSet stores one global config value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	v, err := parseGlobalValue(params.Default(), args[0], args[1])
	if err != nil {
		return err
	}
	store, err := config.DefaultGlobalStore()
	if err != nil {
		return err
	}
	if err := configSet(os.Stderr, store, args[0], v); err != nil {
		return err
	}
	printInfo("Set %s = %s in %s", args[0], output.FormatValue(v), store.Path())
	return nil
}

// configSet saves key in store. An unreadable file is reported before it
// is replaced.
func configSet(errOut io.Writer, store *config.GlobalStore, key string, v any) error {
	store.Set(key, v)
	printWarnings(errOut, store.Warnings)
	return store.Save(store.Record())
}

// globalKeys maps the wizard keys to the parameter each one feeds.
var globalKeys = map[string]string{
	config.RecordRegion:         params.AWSRegion,
	config.RecordInstanceType:   params.InstanceType,
	config.RecordRoleARN:        params.RoleARN,
	config.RecordIncludeTesting: params.IncludeTesting,
}

// parseGlobalValue coerces raw to the kind of the parameter key feeds and
// checks it against the parameter's allowed values.
func parseGlobalValue(m params.Matrix, key, raw string) (any, error) {
	name := key
	if mapped, ok := globalKeys[key]; ok {
		name = mapped
	}
	p, ok := m.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown key %q (valid keys: %v)", key, validGlobalKeys(m))
	}
	v, err := p.Coerce(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(p.Allowed) == 0 {
		return v, nil
	}
	var values []string
	switch tv := v.(type) {
	case string:
		values = []string{tv}
	case []string:
		values = tv
	}
	for _, s := range values {
		if !slices.Contains(p.Allowed, s) {
			return nil, fmt.Errorf("%s: %q is not one of %v", key, s, p.Allowed)
		}
	}
	return v, nil
}

func validGlobalKeys(m params.Matrix) []string {
	keys := m.Keys()
	for k := range globalKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
