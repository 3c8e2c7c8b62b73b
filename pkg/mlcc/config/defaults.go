// Package config resolves project answers from the layered configuration
// sources and manages the tool's own settings.
//
// Answers are merged from five sources, lowest priority first: the
// parameter matrix defaults, the per-user global config file, the
// "ml-container-creator" field of ./package.json, the project config
// ./.ml-container-creator.json, and explicitly set command-line flags.
//
// Tool settings (logging, history, template dir, output format) are
// loaded separately by LoadSettings from $XDG_CONFIG_HOME/mlcc/config.yaml.
package config

// File names for answer sources.
const (
	// GlobalFileName is the per-user global config file in the home directory.
	GlobalFileName = ".ml-container-creator-rc.json"

	// ProjectFileName is the project config file in the working directory.
	ProjectFileName = ".ml-container-creator.json"

	// PackageFileName is the package manifest in the working directory.
	PackageFileName = "package.json"

	// PackageField is the package manifest field holding answers.
	PackageField = "ml-container-creator"
)

// Global record keys written by the setup wizard.
const (
	RecordRegion         = "defaultRegion"
	RecordInstanceType   = "defaultInstanceType"
	RecordRoleARN        = "defaultRoleArn"
	RecordIncludeTesting = "defaultIncludeTesting"
)

// Default tool settings.
const (
	// DefaultRetentionDays is how long generation history is kept.
	DefaultRetentionDays = 90

	// DefaultOutputFormat is the format used by `config show`.
	DefaultOutputFormat = "pretty"

	// DefaultLogLevel is the log file level.
	DefaultLogLevel = "info"
)
