// Package logging provides component loggers for mlcc.
//
// Every package takes a named logger at init time:
//
//	var logger = logging.Get("config")
//
// Before Init is called, loggers discard everything. Init opens the log
// file (appending) and optionally mirrors records to the console.
//
//	if err := logging.Init(logging.Config{Level: "info", ConsoleLevel: "warn"}); err != nil {
//	    return err
//	}
//	defer logging.Close()
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) charm() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the file log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Components maps component names to file log level overrides.
	Components map[string]string

	// ConsoleLevel enables console output at the given level.
	// Empty disables console output.
	ConsoleLevel string

	// Console is where console output goes. Nil means os.Stderr.
	Console io.Writer
}

// Logger writes to the log file and, when enabled, the console.
type Logger struct {
	file      *log.Logger
	console   *log.Logger
	component string
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// Component returns the component name.
func (l *Logger) Component() string { return l.component }

func (l *Logger) log(level Level, msg string, args ...any) {
	// Loggers are handed out before Init; look up the live one so
	// package-level vars pick up the configured outputs.
	live := current(l.component)
	logTo(live.file, level, msg, args...)
	if live.console != nil {
		logTo(live.console, level, msg, args...)
	}
}

func logTo(logger *log.Logger, level Level, msg string, args ...any) {
	switch level {
	case LevelDebug:
		logger.Debug(msg, args...)
	case LevelInfo:
		logger.Info(msg, args...)
	case LevelWarn:
		logger.Warn(msg, args...)
	case LevelError:
		logger.Error(msg, args...)
	}
}

type state struct {
	mu          sync.RWMutex
	initialized bool
	file        *os.File
	level       Level
	components  map[string]Level
	console     io.Writer
	consoleOn   bool
	consoleLvl  Level
	loggers     map[string]*Logger
	outputs     map[string]*Logger
}

var globalState = &state{
	loggers: make(map[string]*Logger),
	outputs: make(map[string]*Logger),
}

// Init initializes the logging system. Calling it again replaces the
// previous configuration.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	components := make(map[string]Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("parsing level for component %s: %w", comp, err)
		}
		components[comp] = parsed
	}
	var consoleLvl Level
	if cfg.ConsoleLevel != "" {
		if consoleLvl, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return fmt.Errorf("parsing console level: %w", err)
		}
	}

	path := cfg.Path
	if path == "" {
		path = DefaultLogPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		_ = globalState.file.Close()
	}
	globalState.file = f
	globalState.level = level
	globalState.components = components
	globalState.consoleOn = cfg.ConsoleLevel != ""
	globalState.consoleLvl = consoleLvl
	globalState.console = cfg.Console
	if globalState.console == nil {
		globalState.console = os.Stderr
	}
	globalState.initialized = true
	globalState.outputs = make(map[string]*Logger)
	return nil
}

// Get returns the logger for component.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if l, ok := globalState.loggers[component]; ok {
		return l
	}
	l := &Logger{component: component}
	globalState.loggers[component] = l
	return l
}

// current returns the configured outputs for component.
func current(component string) *Logger {
	globalState.mu.RLock()
	out, ok := globalState.outputs[component]
	globalState.mu.RUnlock()
	if ok {
		return out
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()
	if out, ok := globalState.outputs[component]; ok {
		return out
	}
	out = createOutputs(component)
	globalState.outputs[component] = out
	return out
}

// createOutputs must be called with globalState.mu held.
func createOutputs(component string) *Logger {
	if !globalState.initialized {
		return &Logger{
			file:      log.NewWithOptions(io.Discard, log.Options{Prefix: component}),
			component: component,
		}
	}

	level := globalState.level
	if lvl, ok := globalState.components[component]; ok {
		level = lvl
	}
	out := &Logger{
		file: log.NewWithOptions(globalState.file, log.Options{
			Level:           level.charm(),
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          component,
		}),
		component: component,
	}
	if globalState.consoleOn {
		out.console = log.NewWithOptions(globalState.console, log.Options{
			Level:  globalState.consoleLvl.charm(),
			Prefix: component,
		})
	}
	return out
}

// Close closes the log file. Loggers discard output afterwards.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if !globalState.initialized {
		return nil
	}
	globalState.initialized = false
	globalState.outputs = make(map[string]*Logger)
	if globalState.file != nil {
		f := globalState.file
		globalState.file = nil
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing log file: %w", err)
		}
	}
	return nil
}

// DefaultLogPath returns $XDG_STATE_HOME/mlcc/mlcc.log.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "mlcc", "mlcc.log")
}
