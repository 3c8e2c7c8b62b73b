package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingSettings configures the log file.
type LoggingSettings struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// HistorySettings configures the generation history.
type HistorySettings struct {
	Enabled       bool   `mapstructure:"enabled"`
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Settings configures the tool itself. Nothing here feeds the answer set.
type Settings struct {
	// TemplatesDir replaces the embedded templates when set.
	TemplatesDir string `mapstructure:"templates_dir"`

	// OutputFormat is the default format for `config show`.
	OutputFormat string `mapstructure:"output_format"`

	Logging LoggingSettings `mapstructure:"logging"`
	History HistorySettings `mapstructure:"history"`
}

// LoadSettings loads tool settings from the config file and environment.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/mlcc/config.yaml
//   - $HOME/.config/mlcc/config.yaml
//
// Environment variables are prefixed with MLCC_ (e.g., MLCC_OUTPUT_FORMAT).
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "mlcc"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "mlcc"))

	v.SetEnvPrefix("MLCC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("templates_dir", "")
	v.SetDefault("output_format", DefaultOutputFormat)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "") // empty means $XDG_STATE_HOME/mlcc/mlcc.log
	v.SetDefault("logging.components", map[string]string{})
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", HistoryDir())
	v.SetDefault("history.retention_days", DefaultRetentionDays)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if s.History.Path, err = ExpandPath(s.History.Path); err != nil {
		return nil, err
	}
	if s.TemplatesDir, err = ExpandPath(s.TemplatesDir); err != nil {
		return nil, err
	}
	return &s, nil
}

// ConfigDir returns the settings directory.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "mlcc"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "mlcc"), nil
}

// SettingsPath returns the settings file path.
func SettingsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// HistoryDir returns $XDG_DATA_HOME/mlcc/history.
func HistoryDir() string {
	return filepath.Join(xdg.DataHome, "mlcc", "history")
}

// WriteDefaultSettings writes a commented settings file unless one exists.
// It returns the path and whether a file was written.
func WriteDefaultSettings() (string, bool, error) {
	path, err := SettingsPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("failed to check config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}

	content := fmt.Sprintf(`# mlcc settings. Project answers are not configured here;
# see ~/%s and ./%s.

# Template directory used instead of the built-in templates
templates_dir: ""

# Default format for 'mlcc config show': pretty, plain, json, yaml, toml
output_format: %s

logging:
  # Log level: debug, info, warn, error
  level: %s
  # Log file path (empty means $XDG_STATE_HOME/mlcc/mlcc.log)
  path: ""

history:
  enabled: true
  path: %s
  retention_days: %d
`, GlobalFileName, ProjectFileName, DefaultOutputFormat, DefaultLogLevel, HistoryDir(), DefaultRetentionDays)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write default config: %w", err)
	}
	return path, true, nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
